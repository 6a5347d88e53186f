package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// --- mock session lookup ---

type mockSessionLookup struct {
	users map[string]*User
}

func (m *mockSessionLookup) LookupSession(ctx context.Context, token string) (*User, error) {
	u, ok := m.users[token]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

// --- Context helpers tests ---

func TestUserContext_RoundTrip(t *testing.T) {
	u := &User{ID: 7, Username: "ana", Role: "admin"}
	ctx := ContextWithUser(context.Background(), u)
	got := UserFromContext(ctx)
	if got == nil {
		t.Fatal("expected user from context, got nil")
	}
	if got.ID != u.ID || got.Username != u.Username {
		t.Errorf("expected %+v, got %+v", u, got)
	}
}

func TestUserFromContext_Empty(t *testing.T) {
	got := UserFromContext(context.Background())
	if got != nil {
		t.Errorf("expected nil from empty context, got %+v", got)
	}
}

// --- IsAdmin tests ---

func TestIsAdmin(t *testing.T) {
	if (&User{Role: "user"}).IsAdmin() {
		t.Error("role user should not be admin")
	}
	if !(&User{Role: "admin"}).IsAdmin() {
		t.Error("role admin should be admin")
	}
}

// --- ExtractToken tests ---

func TestExtractToken_Bearer(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer tok123")
	if got := ExtractToken(r); got != "tok123" {
		t.Errorf("expected tok123, got %q", got)
	}
}

func TestExtractToken_MalformedHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Basic abc")
	if got := ExtractToken(r); got != "" {
		t.Errorf("expected empty token for non-bearer header, got %q", got)
	}
}

func TestExtractToken_Cookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-tok"})
	if got := ExtractToken(r); got != "cookie-tok" {
		t.Errorf("expected cookie-tok, got %q", got)
	}
}

func TestExtractToken_HeaderWinsOverCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer header-tok")
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-tok"})
	if got := ExtractToken(r); got != "header-tok" {
		t.Errorf("expected header-tok, got %q", got)
	}
}

// --- Middleware tests ---

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestSessionMiddleware_ValidToken(t *testing.T) {
	sessions := &mockSessionLookup{users: map[string]*User{
		"tok": {ID: 1, Username: "rui", Role: "user"},
	}}

	var seen *User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := SessionMiddleware(sessions)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen == nil || seen.Username != "rui" {
		t.Errorf("expected user rui in context, got %+v", seen)
	}
}

func TestSessionMiddleware_MissingToken(t *testing.T) {
	sessions := &mockSessionLookup{users: map[string]*User{}}
	next, called := okHandler()
	handler := SessionMiddleware(sessions)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if *called {
		t.Error("next handler should not be called")
	}

	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Error.Code != "unauthorized" {
		t.Errorf("expected code unauthorized, got %q", body.Error.Code)
	}
}

func TestSessionMiddleware_InvalidToken(t *testing.T) {
	sessions := &mockSessionLookup{users: map[string]*User{}}
	next, called := okHandler()
	handler := SessionMiddleware(sessions)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if *called {
		t.Error("next handler should not be called")
	}
}

func TestAdminSessionMiddleware_NonAdmin(t *testing.T) {
	sessions := &mockSessionLookup{users: map[string]*User{
		"tok": {ID: 2, Username: "rui", Role: "user"},
	}}
	next, called := okHandler()
	handler := AdminSessionMiddleware(sessions)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if *called {
		t.Error("next handler should not be called")
	}

	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Error.Code != "forbidden" {
		t.Errorf("expected code forbidden, got %q", body.Error.Code)
	}
}

func TestAdminSessionMiddleware_Admin(t *testing.T) {
	sessions := &mockSessionLookup{users: map[string]*User{
		"tok": {ID: 3, Username: "ana", Role: "admin"},
	}}
	next, called := okHandler()
	handler := AdminSessionMiddleware(sessions)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !*called {
		t.Error("next handler should be called for admin")
	}
}
