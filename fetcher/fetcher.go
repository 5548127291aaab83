// Package fetcher retrieves a Reddit user's public posts and comments,
// paginating the upstream listing while honoring rate limits and retrying
// transient failures.
package fetcher

import (
	"context"
	"errors"
	"iter"
	"time"

	"reddit-persona/config"
	"reddit-persona/models"
)

var (
	// ErrUserNotFound 는 사용자가 없거나 정지된 경우다. 재시도하지 않는다.
	ErrUserNotFound = errors.New("user not found or suspended")
	// ErrRateLimited 는 업스트림이 429 를 반환한 경우다. 내부에서 대기 후 재개한다.
	ErrRateLimited = errors.New("rate limited by upstream")
	// ErrFetchFailed 는 재시도를 모두 소진한 경우다.
	ErrFetchFailed = errors.New("fetch failed")
)

// Fetcher yields a user's activity of one kind, newest first.
// 반환된 시퀀스는 호출마다 처음부터 다시 수집하며 중간 재개는 지원하지 않는다.
// 오류가 발생하면 (zero, err) 를 한 번 yield 하고 종료한다.
type Fetcher interface {
	Activity(ctx context.Context, handle string, kind models.ActivityKind, limit int) iter.Seq2[models.ActivityRecord, error]
}

// Options 는 페이지네이션과 재시도 정책이다.
type Options struct {
	PageSize          int
	MaxRetries        int
	RetryBaseDelay    time.Duration
	MaxRateLimitWaits int
	// DefaultRateLimitWait 는 429 응답에 대기 시간 헤더가 없을 때 사용한다.
	DefaultRateLimitWait time.Duration
	// MaxRateLimitWait 는 헤더가 요구하는 대기 시간의 상한이다.
	MaxRateLimitWait  time.Duration
	RequestsPerMinute int

	sleep func(ctx context.Context, d time.Duration) error
}

// OptionsFromConfig 는 config.yaml 의 reddit 설정으로 Options 를 만든다.
func OptionsFromConfig(cfg config.RedditConfig) Options {
	return Options{
		PageSize:             cfg.PageSize,
		MaxRetries:           cfg.MaxRetries,
		RetryBaseDelay:       cfg.RetryBaseDelay,
		MaxRateLimitWaits:    cfg.MaxRateLimitWaits,
		DefaultRateLimitWait: 60 * time.Second,
		MaxRateLimitWait:     cfg.MaxRateLimitWait,
		RequestsPerMinute:    cfg.RequestsPerMinute,
	}
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 || o.PageSize > 100 {
		o.PageSize = 100
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = time.Second
	}
	if o.MaxRateLimitWaits <= 0 {
		o.MaxRateLimitWaits = 5
	}
	if o.DefaultRateLimitWait <= 0 {
		o.DefaultRateLimitWait = 60 * time.Second
	}
	if o.MaxRateLimitWait <= 0 {
		o.MaxRateLimitWait = 5 * time.Minute
	}
	if o.sleep == nil {
		o.sleep = sleepContext
	}
	return o
}

// New 는 설정의 source 값에 따라 JSON 리스팅 또는 Atom 피드 수집기를 반환한다.
func New(cfg config.RedditConfig) Fetcher {
	if cfg.Source == "feed" {
		return NewFeedClient(cfg, OptionsFromConfig(cfg))
	}
	return NewRedditClient(cfg, OptionsFromConfig(cfg))
}

// Collect drains a sequence into a slice, stopping at the first error.
func Collect(seq iter.Seq2[models.ActivityRecord, error]) ([]models.ActivityRecord, error) {
	var out []models.ActivityRecord
	for rec, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
