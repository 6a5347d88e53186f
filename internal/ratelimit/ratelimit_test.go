package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllowWithinBurst(t *testing.T) {
	l := New(10, 3)

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d within burst should be allowed", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Error("request beyond burst should be denied")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New(10, 1)

	if !l.Allow("1.2.3.4") {
		t.Fatal("first client should be allowed")
	}
	if l.Allow("1.2.3.4") {
		t.Error("first client should be exhausted")
	}
	if !l.Allow("5.6.7.8") {
		t.Error("second client must have its own bucket")
	}
}

func TestRefillOverTime(t *testing.T) {
	l := New(60, 1) // one token per second
	now := time.Now()
	l.now = func() time.Time { return now }

	if !l.Allow("1.2.3.4") {
		t.Fatal("first request should be allowed")
	}
	if l.Allow("1.2.3.4") {
		t.Fatal("bucket should be empty")
	}

	now = now.Add(2 * time.Second)
	if !l.Allow("1.2.3.4") {
		t.Error("bucket should have refilled")
	}
}

func TestPruneIdleEntries(t *testing.T) {
	l := New(10, 1)
	now := time.Now()
	l.now = func() time.Time { return now }

	l.Allow("1.2.3.4")
	l.Allow("5.6.7.8")
	if got := l.Len(); got != 2 {
		t.Fatalf("expected 2 entries, got %d", got)
	}

	now = now.Add(2 * pruneAfter)
	l.Allow("9.9.9.9")
	if got := l.Len(); got != 1 {
		t.Errorf("idle entries should be pruned, got %d", got)
	}
}

func TestMiddleware(t *testing.T) {
	l := New(10, 1)
	handler := Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:52000"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 response must carry Retry-After")
	}
}

func TestMiddlewareSeparatesClients(t *testing.T) {
	l := New(10, 1)
	handler := Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	first.RemoteAddr = "10.0.0.1:52000"
	second := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	second.RemoteAddr = "10.0.0.2:52000"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	if rec.Code != http.StatusOK {
		t.Errorf("second client must not share the first client's bucket, got %d", rec.Code)
	}
}
