package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/csportugues/portal/internal/auth"
	"github.com/csportugues/portal/internal/player"
)

// playerStore is the subset of the player store used by the handlers.
type playerStore interface {
	List(ctx context.Context) ([]*player.Profile, error)
	GetByID(ctx context.Context, id int64) (*player.Profile, error)
	Create(ctx context.Context, userID int64, in player.Input) (*player.Profile, error)
	Update(ctx context.Context, id, userID int64, in player.Input) (*player.Profile, error)
}

// playersHandler groups player-directory HTTP handlers.
type playersHandler struct {
	store playerStore
}

func newPlayersHandler(store playerStore) *playersHandler {
	return &playersHandler{store: store}
}

// List handles GET /api/players — the public matchmaking directory.
func (h *playersHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list player profiles")
		return
	}
	if profiles == nil {
		profiles = []*player.Profile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

// Get handles GET /api/players/{id}.
func (h *playersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	p, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, player.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "player profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to get player profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Create handles POST /api/players — publishes the caller's matchmaking card.
func (h *playersHandler) Create(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	var in player.Input
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	p, err := h.store.Create(r.Context(), u.ID, in)
	if err != nil {
		if errors.Is(err, player.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "conflict", "player profile already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create player profile")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Update handles PUT /api/players/{id}. The store scopes the update to the
// caller, so editing another user's profile reads as not found.
func (h *playersHandler) Update(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in player.Input
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	p, err := h.store.Update(r.Context(), id, u.ID, in)
	if err != nil {
		if errors.Is(err, player.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "player profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to update player profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
