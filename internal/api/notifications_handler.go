package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/csportugues/portal/internal/auth"
	"github.com/csportugues/portal/internal/notify"
)

// notificationStore is the subset of the notify store used by the handlers.
type notificationStore interface {
	ListByUser(ctx context.Context, userID int64) ([]*notify.Notification, error)
	MarkRead(ctx context.Context, id, userID int64) error
}

// notificationsHandler groups notification HTTP handlers.
type notificationsHandler struct {
	store notificationStore
}

func newNotificationsHandler(store notificationStore) *notificationsHandler {
	return &notificationsHandler{store: store}
}

// List handles GET /api/notifications — the caller's notifications, newest
// first.
func (h *notificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	notifications, err := h.store.ListByUser(r.Context(), u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []*notify.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

// MarkRead handles PUT /api/notifications/{id}/read. Only the owning user may
// mark a notification read; anyone else sees a 404.
func (h *notificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.MarkRead(r.Context(), id, u.ID); err != nil {
		if errors.Is(err, notify.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "notification not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to mark notification read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
