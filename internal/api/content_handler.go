package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/csportugues/portal/internal/content"
)

// contentStore is the subset of the content store used by the handlers.
type contentStore interface {
	ListMatches(ctx context.Context) ([]*content.Match, error)
	GetMatch(ctx context.Context, id int64) (*content.Match, error)
	ListTournaments(ctx context.Context) ([]*content.Tournament, error)
	GetTournament(ctx context.Context, id int64) (*content.Tournament, error)
	ListNews(ctx context.Context) ([]*content.Article, error)
	GetArticle(ctx context.Context, id int64) (*content.Article, error)
}

// contentHandler serves the read-only match, tournament and news listings.
type contentHandler struct {
	store contentStore
}

func newContentHandler(store contentStore) *contentHandler {
	return &contentHandler{store: store}
}

// ListMatches handles GET /api/matches.
func (h *contentHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.store.ListMatches(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list matches")
		return
	}
	if matches == nil {
		matches = []*content.Match{}
	}
	writeJSON(w, http.StatusOK, matches)
}

// GetMatch handles GET /api/matches/{id}.
func (h *contentHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	m, err := h.store.GetMatch(r.Context(), id)
	if err != nil {
		writeContentError(w, err, "match")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// ListTournaments handles GET /api/tournaments.
func (h *contentHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.store.ListTournaments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list tournaments")
		return
	}
	if tournaments == nil {
		tournaments = []*content.Tournament{}
	}
	writeJSON(w, http.StatusOK, tournaments)
}

// GetTournament handles GET /api/tournaments/{id}.
func (h *contentHandler) GetTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	t, err := h.store.GetTournament(r.Context(), id)
	if err != nil {
		writeContentError(w, err, "tournament")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ListNews handles GET /api/news.
func (h *contentHandler) ListNews(w http.ResponseWriter, r *http.Request) {
	articles, err := h.store.ListNews(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list news")
		return
	}
	if articles == nil {
		articles = []*content.Article{}
	}
	writeJSON(w, http.StatusOK, articles)
}

// GetArticle handles GET /api/news/{id}.
func (h *contentHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	a, err := h.store.GetArticle(r.Context(), id)
	if err != nil {
		writeContentError(w, err, "article")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func writeContentError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, content.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", what+" not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", "failed to fetch "+what)
}
