// Package httpcache implements the two-tier retry-cache HTTP client from
// spec §4.1: a process-local LRU (Tier 1) in front of a durable
// key-value store (Tier 2), fronting outbound calls with exponential
// backoff retry. Grounded on internal/cache/redis.go's TTL-constant and
// CacheKey conventions, generalized to a namespace-keyed fingerprint and
// a pluggable Tier2 backend (see DESIGN.md).
package httpcache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Namespace-specific TTLs, per spec §4.1.
const (
	TTLFlights = 30 * time.Minute
	TTLHotels  = 1 * time.Hour
	TTLWeather = 2 * time.Hour
	TTLPlaces  = 24 * time.Hour
)

var tracer = otel.Tracer("httpcache")

// Client is the uniform outbound HTTP surface every provider adapter
// uses. Get returns a Go error for every failure it cannot serve: a
// transport error, exhausted retries, a non-retryable HTTP status (as
// *StatusError), or context cancellation. Provider adapters translate
// that error into their own "empty + reason" result (spec §4.2).
type Client struct {
	httpClient *http.Client
	tier1      *Tier1
	tier2      Tier2
	retry      RetryConfig

	// singleflight avoids duplicate concurrent fetches for the same key
	// corrupting the cache; spec §4.1 only requires at-least-once HTTP
	// execution, so this is an optimization, not a correctness
	// requirement.
	mu      sync.Mutex
	inflight map[string]*inflightCall
}

type inflightCall struct {
	done chan struct{}
	doc  []byte
	err  error
}

// NewClient builds a Client with a default per-request timeout of 10s,
// per spec §5 ("HTTP client also honors per-request timeout (default
// 10s) separate from the retry loop").
func NewClient(tier1Size int, tier2 Tier2) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		tier1:      NewTier1(tier1Size),
		tier2:      tier2,
		retry:      DefaultRetryConfig(),
		inflight:   make(map[string]*inflightCall),
	}
}

// Get implements the get(url, params, headers, ttl) -> JSON-document
// contract of spec §4.1.
func (c *Client) Get(ctx context.Context, namespace, rawURL string, params map[string]string, headers map[string]string, ttl time.Duration) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "httpcache.Get")
	defer span.End()
	span.SetAttributes(attribute.String("httpcache.namespace", namespace), attribute.String("httpcache.url", rawURL))

	key := FingerprintKey(namespace, rawURL, params)

	if doc, ok := c.tier1.Get(key); ok {
		span.SetAttributes(attribute.Bool("httpcache.tier1_hit", true))
		return doc, nil
	}

	if c.tier2 != nil {
		if doc, ok, err := c.tier2.Get(ctx, key); err == nil && ok {
			c.tier1.Set(key, doc, ttl)
			span.SetAttributes(attribute.Bool("httpcache.tier2_hit", true))
			return doc, nil
		}
	}

	doc, err := c.fetchSingleflight(ctx, key, rawURL, params, headers)
	if err != nil {
		return nil, err
	}

	c.tier1.Set(key, doc, ttl)
	if c.tier2 != nil {
		_ = c.tier2.Set(ctx, key, doc, ttl)
	}
	return doc, nil
}

func (c *Client) fetchSingleflight(ctx context.Context, key, rawURL string, params, headers map[string]string) ([]byte, error) {
	c.mu.Lock()
	if call, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		<-call.done
		return call.doc, call.err
	}
	call := &inflightCall{done: make(chan struct{})}
	c.inflight[key] = call
	c.mu.Unlock()

	call.doc, call.err = c.fetch(ctx, rawURL, params, headers)

	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
	close(call.done)

	return call.doc, call.err
}

func (c *Client) fetch(ctx context.Context, rawURL string, params, headers map[string]string) ([]byte, error) {
	status, doc, err := Do3(ctx, c.retry, func(attempt int) (int, []byte, error) {
		return c.doOnce(ctx, rawURL, params, headers)
	})
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, &StatusError{Status: status, URL: rawURL}
	}
	return doc, nil
}

func (c *Client) doOnce(ctx context.Context, rawURL string, params, headers map[string]string) (int, []byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, nil, fmt.Errorf("httpcache: parse url: %w", err)
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, nil, fmt.Errorf("httpcache: build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool { return status >= 200 && status < 300 }

// StatusError is returned when a request completes with a non-retryable
// or exhausted-retry HTTP status, per spec §4.1's "Non-retryable HTTP
// errors fail fast with the parsed status."
type StatusError struct {
	Status int
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpcache: %s returned status %d", e.URL, e.Status)
}

// Do3 is Do specialized to carry the response body alongside the status,
// since callers need both the retry-worthiness signal (status) and the
// payload once a call finally succeeds.
func Do3(ctx context.Context, cfg RetryConfig, op func(attempt int) (status int, doc []byte, err error)) (int, []byte, error) {
	wait := cfg.InitialWait
	var lastStatus int
	var lastDoc []byte
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		status, doc, err := op(attempt)
		lastStatus, lastDoc, lastErr = status, doc, err

		retryable := false
		if err != nil {
			retryable = RetryableError(err)
		} else if status != 0 {
			retryable = RetryableStatus(status)
		}

		if !retryable || attempt == cfg.MaxAttempts {
			return status, doc, err
		}

		select {
		case <-ctx.Done():
			return status, doc, ctx.Err()
		case <-time.After(wait):
		}

		wait *= 2
		if wait > cfg.MaxWait {
			wait = cfg.MaxWait
		}
	}
	return lastStatus, lastDoc, lastErr
}
