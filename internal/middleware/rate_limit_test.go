package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

func TestRateLimiter_PerIP(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/flights/search", nil)
		req.RemoteAddr = ip + ":54321"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	for i := 0; i < 2; i++ {
		if rr := call("10.0.0.1"); rr.Code != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i, rr.Code)
		}
	}

	rr := call("10.0.0.1")
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 once the burst is spent, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}

	if rr := call("10.0.0.2"); rr.Code != http.StatusOK {
		t.Errorf("Expected another client to be unaffected, got %d", rr.Code)
	}
}

func TestRateLimiter_SweepsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.getLimiter("10.0.0.1")
	now = now.Add(limiterIdleTTL + time.Minute)
	rl.getLimiter("10.0.0.2")

	if _, ok := rl.visitors["10.0.0.1"]; ok {
		t.Error("Expected idle visitor to be swept")
	}
	if len(rl.visitors) != 1 {
		t.Errorf("Expected 1 visitor, got %d", len(rl.visitors))
	}
}

func TestRateLimiter_IgnoresForwardedHeaders(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	passed := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login", nil)
		req.RemoteAddr = "203.0.113.7:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("192.0.2.%d", i))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code == http.StatusOK {
			passed++
		}
	}

	if passed != 1 {
		t.Errorf("Expected one request through for a single RemoteAddr, got %d", passed)
	}
}

func TestRateLimiter_BehindTrustedProxy(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	handler := chimw.RealIP(rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	call := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/flights/search", nil)
		req.RemoteAddr = "10.0.0.1:443"
		req.Header.Set("X-Forwarded-For", forwarded)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := call("198.51.100.1"); code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if code := call("198.51.100.1"); code != http.StatusTooManyRequests {
		t.Errorf("Expected forwarded client to be limited, got %d", code)
	}
	if code := call("198.51.100.2"); code != http.StatusOK {
		t.Errorf("Expected a different forwarded client to pass, got %d", code)
	}
}
