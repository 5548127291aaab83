package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"reddit-persona/config"
	"reddit-persona/httpclient"
)

const maxBodyBytes = 8 << 20

// requester 는 단일 GET 요청에 대해 페이싱, 429 대기, 일시 오류 재시도를 적용한다.
type requester struct {
	client *httpclient.BaseClient
	pacer  *Pacer
	opts   Options
}

func newRequester(client *httpclient.BaseClient, opts Options) *requester {
	opts = opts.withDefaults()
	return &requester{
		client: client,
		pacer:  NewPacer(opts.RequestsPerMinute, opts.MaxRateLimitWait, opts.sleep),
		opts:   opts,
	}
}

func (r *requester) get(ctx context.Context, relPath string, query url.Values) ([]byte, error) {
	attempts := 0
	rateLimitWaits := 0

	// retry 는 일시 오류 후 백오프 대기를 수행하고, 재시도 가능하면 nil 을 반환한다.
	retry := func(cause error) error {
		attempts++
		if attempts > r.opts.MaxRetries {
			return fmt.Errorf("%w: %s after %d attempts: %v", ErrFetchFailed, relPath, attempts, cause)
		}
		delay := r.opts.RetryBaseDelay << (attempts - 1)
		config.Logger.Warnf("fetcher: %s failed (%v), retry %d/%d in %s", relPath, cause, attempts, r.opts.MaxRetries, delay)
		return r.opts.sleep(ctx, delay)
	}

	for {
		if err := r.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := r.client.NewRequest(ctx, http.MethodGet, relPath, query, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}

		resp, err := r.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if rerr := retry(err); rerr != nil {
				return nil, rerr
			}
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body.Close()
		r.pacer.Observe(resp.Header)

		switch code := resp.StatusCode; {
		case code == http.StatusNotFound || code == http.StatusForbidden:
			return nil, ErrUserNotFound
		case code == http.StatusTooManyRequests:
			rateLimitWaits++
			if rateLimitWaits > r.opts.MaxRateLimitWaits {
				return nil, fmt.Errorf("%w: %w after %d waits", ErrFetchFailed, ErrRateLimited, rateLimitWaits-1)
			}
			wait := retryAfter(resp.Header, r.opts.DefaultRateLimitWait, r.opts.MaxRateLimitWait)
			config.Logger.Warnf("fetcher: rate limited on %s, waiting %s (%d/%d)", relPath, wait, rateLimitWaits, r.opts.MaxRateLimitWaits)
			if err := r.opts.sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue
		case code >= http.StatusInternalServerError:
			if rerr := retry(fmt.Errorf("status %d", code)); rerr != nil {
				return nil, rerr
			}
			continue
		case code >= http.StatusBadRequest:
			return nil, fmt.Errorf("%w: %s returned status %d", ErrFetchFailed, relPath, code)
		}

		if readErr != nil {
			if rerr := retry(readErr); rerr != nil {
				return nil, rerr
			}
			continue
		}
		return body, nil
	}
}

