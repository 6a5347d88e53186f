package api

import (
	"context"
	"net/http"

	"github.com/csportugues/portal/internal/auth"
	"github.com/csportugues/portal/internal/streamer"
)

// streamerService is the subset of the moderation engine used by the
// streamer handlers.
type streamerService interface {
	SubmitStreamerApplication(ctx context.Context, caller *auth.User, in streamer.CreateStreamerInput) (*streamer.PublicStreamer, error)
	VerifyStreamer(ctx context.Context, caller *auth.User, streamerID int64) (*streamer.PublicStreamer, error)
	RejectStreamerApplication(ctx context.Context, caller *auth.User, streamerID int64, reason string) error
	ListVerifiedStreamers(ctx context.Context) ([]*streamer.PublicStreamer, error)
	ListPendingStreamers(ctx context.Context, caller *auth.User) ([]*streamer.Streamer, error)
}

// streamersHandler groups streamer-related HTTP handlers.
type streamersHandler struct {
	svc streamerService
}

func newStreamersHandler(svc streamerService) *streamersHandler {
	return &streamersHandler{svc: svc}
}

// List handles GET /api/streamers — public, verified streamers only.
func (h *streamersHandler) List(w http.ResponseWriter, r *http.Request) {
	streamers, err := h.svc.ListVerifiedStreamers(r.Context())
	if err != nil {
		writeModerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, streamers)
}

// Apply handles POST /api/streamers/apply.
func (h *streamersHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var in streamer.CreateStreamerInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	st, err := h.svc.SubmitStreamerApplication(r.Context(), auth.UserFromContext(r.Context()), in)
	if err != nil {
		writeModerationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

// ListPending handles GET /api/streamers/pending — the admin review queue.
func (h *streamersHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	streamers, err := h.svc.ListPendingStreamers(r.Context(), auth.UserFromContext(r.Context()))
	if err != nil {
		writeModerationError(w, err)
		return
	}
	if streamers == nil {
		streamers = []*streamer.Streamer{}
	}
	writeJSON(w, http.StatusOK, streamers)
}

// Verify handles PUT /api/streamers/{id}/verify.
func (h *streamersHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	st, err := h.svc.VerifyStreamer(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		writeModerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Reject handles PUT /api/streamers/{id}/reject.
func (h *streamersHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength != 0 {
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
			return
		}
	}

	if err := h.svc.RejectStreamerApplication(r.Context(), auth.UserFromContext(r.Context()), id, req.Reason); err != nil {
		writeModerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
