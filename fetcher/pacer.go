package fetcher

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Pacer 는 업스트림 호출 간격을 관리한다.
// 분당 요청 수 제한과, 응답 헤더가 남은 요청이 없다고 알린 경우의 리셋 대기를 함께 처리한다.
// 인메모리로 동작하며 프로세스가 재시작되면 초기화된다.
type Pacer struct {
	mu sync.Mutex

	interval     time.Duration
	maxWait      time.Duration
	nextAllowed  time.Time
	blockedUntil time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer 는 requestsPerMinute 가 0 이하면 간격 제한 없이 동작하는 Pacer 를 만든다.
// maxWait 가 0 보다 크면 리셋 대기를 그 값으로 제한한다.
func NewPacer(requestsPerMinute int, maxWait time.Duration, sleep func(ctx context.Context, d time.Duration) error) *Pacer {
	var interval time.Duration
	if requestsPerMinute > 0 {
		interval = time.Minute / time.Duration(requestsPerMinute)
	}
	if sleep == nil {
		sleep = sleepContext
	}
	return &Pacer{
		interval: interval,
		maxWait:  maxWait,
		now:      time.Now,
		sleep:    sleep,
	}
}

// Wait 는 다음 호출 슬롯을 예약하고 그 시각까지 대기한다.
// 컨텍스트가 취소되면 ctx.Err() 를 반환한다.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	now := p.now()
	slot := now
	if p.nextAllowed.After(slot) {
		slot = p.nextAllowed
	}
	if p.blockedUntil.After(slot) {
		slot = p.blockedUntil
	}
	p.nextAllowed = slot.Add(p.interval)
	p.blockedUntil = time.Time{}
	p.mu.Unlock()

	return p.sleep(ctx, slot.Sub(now))
}

// Observe 는 X-Ratelimit-Remaining 이 1 미만이면 X-Ratelimit-Reset 초 동안 호출을 막는다.
func (p *Pacer) Observe(h http.Header) {
	remaining, ok := headerSeconds(h, "X-Ratelimit-Remaining")
	if !ok || remaining >= 1 {
		return
	}
	reset, ok := headerSeconds(h, "X-Ratelimit-Reset")
	if !ok || reset <= 0 {
		return
	}
	p.mu.Lock()
	until := p.now().Add(boundedSeconds(reset, p.maxWait))
	if until.After(p.blockedUntil) {
		p.blockedUntil = until
	}
	p.mu.Unlock()
}

// retryAfter 는 429 응답의 대기 시간을 결정한다.
// Retry-After, X-Ratelimit-Reset 순으로 확인하고 둘 다 없으면 fallback 을 쓴다. 결과는 maxWait 를 넘지 않는다.
func retryAfter(h http.Header, fallback, maxWait time.Duration) time.Duration {
	for _, key := range []string{"Retry-After", "X-Ratelimit-Reset"} {
		if secs, ok := headerSeconds(h, key); ok && secs > 0 {
			return boundedSeconds(secs, maxWait)
		}
	}
	if maxWait > 0 {
		return min(fallback, maxWait)
	}
	return fallback
}

// boundedSeconds converts secs to a Duration capped at maxWait (or at the Duration range when maxWait <= 0).
func boundedSeconds(secs float64, maxWait time.Duration) time.Duration {
	limit := maxWait
	if limit <= 0 {
		limit = time.Duration(math.MaxInt64)
	}
	if secs >= limit.Seconds() {
		return limit
	}
	return time.Duration(secs * float64(time.Second))
}

func headerSeconds(h http.Header, key string) (float64, bool) {
	v := strings.TrimSpace(h.Get(key))
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
