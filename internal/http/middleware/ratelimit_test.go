package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(1, 3)
	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed within burst", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatalf("request beyond burst should be denied")
	}
}

func TestRateLimiterRefills(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	if !rl.Allow("10.0.0.1") {
		t.Fatalf("first request should be allowed")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatalf("bucket should be empty")
	}

	now = now.Add(2 * time.Second)
	if !rl.Allow("10.0.0.1") {
		t.Fatalf("bucket should have refilled after 2s")
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	if !rl.Allow("10.0.0.1") {
		t.Fatalf("first client should be allowed")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatalf("second client has its own bucket")
	}
}

func TestRateLimitMiddlewareRejectsWith429(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := RateLimit(1, 1)(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	req.Header.Set("X-Real-Ip", "10.0.0.9")

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mw.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON error body, got content type %q", ct)
	}
}
