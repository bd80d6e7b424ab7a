package httpcache

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// RetryConfig mirrors spec §4.1's backoff policy: up to 3 attempts,
// exponential starting at 1s, doubling, capped at 4s. This consolidates
// the teacher's two duplicated retry helpers
// (internal/llm/providers/provider.go's BaseProvider.WithRetry and
// internal/tools/tool.go's BaseTool.WithRetry) into one shared utility.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
}

// DefaultRetryConfig implements spec §4.1 literally.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Second,
		MaxWait:     4 * time.Second,
	}
}

// RetryableStatus reports whether an HTTP status code should be retried
// per spec §4.1: "Retry only on: connect/read timeout, HTTP 5xx, HTTP
// 429. Non-retryable HTTP errors fail fast with the parsed status."
func RetryableStatus(status int) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return status >= 500 && status <= 599
}

// RetryableError reports whether a transport-level error (not an HTTP
// status) should be retried: connect/read timeouts only.
func RetryableError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return false
}

// Do runs op up to cfg.MaxAttempts times, sleeping with exponential
// backoff between attempts, stopping early if ctx is cancelled. op
// reports the HTTP status it observed (0 if the call didn't reach an
// HTTP response) so Do can decide retryability uniformly for both
// transport errors and non-2xx status codes.
func Do(ctx context.Context, cfg RetryConfig, op func(attempt int) (status int, err error)) (int, error) {
	wait := cfg.InitialWait
	var lastStatus int
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		status, err := op(attempt)
		lastStatus, lastErr = status, err

		retryable := false
		if err != nil {
			retryable = RetryableError(err)
		} else if status != 0 {
			retryable = RetryableStatus(status)
		}

		if !retryable || attempt == cfg.MaxAttempts {
			return status, err
		}

		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-time.After(wait):
		}

		wait *= 2
		if wait > cfg.MaxWait {
			wait = cfg.MaxWait
		}
	}
	return lastStatus, lastErr
}
