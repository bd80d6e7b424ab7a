package httpcache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestCacheCorrectnessSingleCallUntilTTL(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(128, NewMemoryTier2())
	ctx := context.Background()

	if _, err := c.Get(ctx, "test", srv.URL, nil, nil, 50*time.Millisecond); err != nil {
		t.Fatalf("first get: %v", err)
	}
	if _, err := c.Get(ctx, "test", srv.URL, nil, nil, 50*time.Millisecond); err != nil {
		t.Fatalf("second get: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected exactly one HTTP call before TTL lapse, got %d", got)
	}

	time.Sleep(60 * time.Millisecond)
	if _, err := c.Get(ctx, "test", srv.URL, nil, nil, 50*time.Millisecond); err != nil {
		t.Fatalf("third get: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected a second HTTP call after TTL lapse, got %d", got)
	}
}

func TestRetryBoundExactlyThreeAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(128, NewMemoryTier2())
	c.retry = RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 4 * time.Millisecond}

	_, err := c.Get(context.Background(), "test", srv.URL, nil, nil, time.Second)
	if err == nil {
		t.Fatal("expected an error from a persistently failing endpoint")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", got)
	}
}

func TestNonRetryableFailsFast(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(128, NewMemoryTier2())
	_, err := c.Get(context.Background(), "test", srv.URL, nil, nil, time.Second)
	if err == nil {
		t.Fatal("expected an error for 404")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected exactly 1 attempt for a non-retryable status, got %d", got)
	}
}
