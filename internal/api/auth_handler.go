package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/csportugues/portal/internal/auth"
	"github.com/csportugues/portal/internal/metrics"
	"github.com/csportugues/portal/internal/user"
)

// userStore is the subset of the user store used by the auth handlers.
type userStore interface {
	Create(ctx context.Context, in user.CreateUserInput) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	CreateSession(ctx context.Context, userID int64) (string, *user.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// authHandler groups authentication HTTP handlers.
type authHandler struct {
	store   userStore
	metrics *metrics.Metrics
}

func newAuthHandler(store userStore, m *metrics.Metrics) *authHandler {
	return &authHandler{store: store, metrics: m}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// userResponse is the caller-facing shape of a user account.
func userResponse(u *user.User) map[string]interface{} {
	return map[string]interface{}{
		"id":       u.ID,
		"username": u.Username,
		"role":     u.Role,
	}
}

// Register handles POST /api/auth/register. New accounts always get the user
// role; admins are promoted out of band.
func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "username and password are required")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "validation_error", "password must be at least 6 characters")
		return
	}

	u, err := h.store.Create(r.Context(), user.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Role:     user.RoleUser,
	})
	if err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			writeError(w, http.StatusConflict, "conflict", "username already taken")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create account")
		return
	}

	token, session, err := h.store.CreateSession(r.Context(), u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create session")
		return
	}

	h.ObserveAuthSuccess("register")
	setSessionCookie(w, token, session)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  userResponse(u),
	})
}

// Login handles POST /api/auth/login.
func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "username and password are required")
		return
	}

	u, err := h.store.GetByUsername(r.Context(), req.Username)
	if err != nil {
		h.ObserveAuthFailure("unknown_user")
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid username or password")
		return
	}

	if !user.CheckPassword(u, req.Password) {
		h.ObserveAuthFailure("bad_password")
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid username or password")
		return
	}

	token, session, err := h.store.CreateSession(r.Context(), u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create session")
		return
	}

	h.ObserveAuthSuccess("login")
	setSessionCookie(w, token, session)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  userResponse(u),
	})
}

// Logout handles POST /api/auth/logout.
func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := auth.ExtractToken(r); token != "" {
		_ = h.store.DeleteSession(r.Context(), token)
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me.
func (h *authHandler) Me(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":       u.ID,
		"username": u.Username,
		"role":     u.Role,
	})
}

func (h *authHandler) ObserveAuthSuccess(method string) {
	if h.metrics != nil {
		h.metrics.IncAuthSuccess(method)
	}
}

func (h *authHandler) ObserveAuthFailure(reason string) {
	if h.metrics != nil {
		h.metrics.IncAuthFailure(reason)
	}
}

func setSessionCookie(w http.ResponseWriter, token string, session *user.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
