package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestLimiter_AllowWithinLimit(t *testing.T) {
	l := New(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("user-1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("user-1") {
		t.Error("fourth request should be limited")
	}
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l := New(1, time.Minute)

	if !l.Allow("user-1") {
		t.Fatal("first request for user-1 should be allowed")
	}
	if !l.Allow("user-2") {
		t.Error("user-2 should not be affected by user-1's window")
	}
}

func TestLimiter_WindowExpires(t *testing.T) {
	l := New(1, 10*time.Millisecond)

	if !l.Allow("user-1") {
		t.Fatal("first request should be allowed")
	}
	if l.Allow("user-1") {
		t.Fatal("second request should be limited")
	}

	time.Sleep(20 * time.Millisecond)

	if !l.Allow("user-1") {
		t.Error("request after window expiry should be allowed")
	}
}

func TestLimiter_Remaining(t *testing.T) {
	l := New(5, time.Minute)

	if got := l.Remaining("user-1"); got != 5 {
		t.Errorf("Remaining before any request = %d, want 5", got)
	}
	l.Allow("user-1")
	l.Allow("user-1")
	if got := l.Remaining("user-1"); got != 3 {
		t.Errorf("Remaining after two requests = %d, want 3", got)
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Minute)

	l.Allow("user-1")
	if l.Allow("user-1") {
		t.Fatal("should be limited before reset")
	}
	l.Reset("user-1")
	if !l.Allow("user-1") {
		t.Error("should be allowed after reset")
	}
}

func TestMiddleware_LimitsByKey(t *testing.T) {
	l := New(1, time.Minute)
	mw := Middleware(l, func(r *http.Request) string {
		return r.Header.Get("X-Test-User")
	})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/groups/abc/join", nil)
	req.Header.Set("X-Test-User", "user-1")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if !strings.Contains(rec.Body.String(), "error") {
		t.Errorf("expected JSON error body, got %q", rec.Body.String())
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestMiddleware_FallsBackToClientIP(t *testing.T) {
	l := New(1, time.Minute)
	mw := Middleware(l, func(r *http.Request) string { return "" })

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/groups", nil)
	req.RemoteAddr = "203.0.113.7:4411"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request from same IP status = %d, want 429", rec.Code)
	}
}

func TestClientIP_XForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.9, 10.0.0.1")
	req.RemoteAddr = "10.0.0.2:1234"

	if got := ClientIP(req); got != "198.51.100.9" {
		t.Errorf("ClientIP = %q, want first X-Forwarded-For entry", got)
	}
}

func TestClientIP_RemoteAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.9:1234"

	if got := ClientIP(req); got != "198.51.100.9" {
		t.Errorf("ClientIP = %q, want host part of RemoteAddr", got)
	}
}
