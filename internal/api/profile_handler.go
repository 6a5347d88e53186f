package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/csportugues/portal/internal/auth"
	"github.com/csportugues/portal/internal/profile"
)

// profileStore is the subset of the profile store used by the handlers.
type profileStore interface {
	GetByUser(ctx context.Context, userID int64) (*profile.Profile, error)
	Upsert(ctx context.Context, userID int64, in profile.Input) (*profile.Profile, error)
}

// profileHandler groups user-profile HTTP handlers.
type profileHandler struct {
	store profileStore
}

func newProfileHandler(store profileStore) *profileHandler {
	return &profileHandler{store: store}
}

// Get handles GET /api/profile — the caller's own profile.
func (h *profileHandler) Get(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	p, err := h.store.GetByUser(r.Context(), u.ID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to fetch profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Update handles PUT /api/profile — replaces the caller's profile.
func (h *profileHandler) Update(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	var in profile.Input
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	p, err := h.store.Upsert(r.Context(), u.ID, in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
