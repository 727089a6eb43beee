package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticLimiter struct {
	allow bool
}

func (s *staticLimiter) Allow() bool {
	return s.allow
}

func TestRateLimitMiddlewareBlocksWhenLimiterDenies(t *testing.T) {
	middleware := rateLimitMiddleware(&staticLimiter{allow: false}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler should not execute when rate limited")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	middleware.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "" {
		t.Fatalf("static limiter cannot estimate a retry delay")
	}
}

func TestRateLimitMiddlewarePassesWhenLimiterAllows(t *testing.T) {
	var called bool
	middleware := rateLimitMiddleware(&staticLimiter{allow: true}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	middleware.ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected handler to execute when limiter allows")
	}
}

func TestRateLimitMiddlewareSetsRetryAfter(t *testing.T) {
	limiter := newTokenBucketLimiter(1, 1)
	middleware := rateLimitMiddleware(limiter, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	middleware.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	middleware.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After 1, got %q", second.Header().Get("Retry-After"))
	}
}

func TestNewTokenBucketLimiterUsesDefaults(t *testing.T) {
	limiter := newTokenBucketLimiter(0, 0)
	if limiter == nil {
		t.Fatalf("expected limiter instance")
	}
	if !limiter.Allow() {
		t.Fatalf("expected first request to be allowed")
	}
}
