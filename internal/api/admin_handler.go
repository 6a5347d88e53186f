package api

import (
	"context"
	"net/http"

	"github.com/csportugues/portal/internal/audit"
	"github.com/csportugues/portal/internal/streamer"
	"github.com/csportugues/portal/internal/team"
)

// recentActivityLimit caps the dashboard's activity feed.
const recentActivityLimit = 10

type teamStats interface {
	CountByStatus(ctx context.Context, status string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type streamerStats interface {
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type counter interface {
	Count(ctx context.Context) (int64, error)
}

type auditReader interface {
	Recent(ctx context.Context, limit int) ([]*audit.Action, error)
}

// adminHandler serves the admin dashboard endpoints.
type adminHandler struct {
	teams     teamStats
	streamers streamerStats
	users     counter
	players   counter
	auditLog  auditReader
}

func newAdminHandler(teams teamStats, streamers streamerStats, users, players counter, auditLog auditReader) *adminHandler {
	return &adminHandler{
		teams:     teams,
		streamers: streamers,
		users:     users,
		players:   players,
		auditLog:  auditLog,
	}
}

// Stats handles GET /api/admin/stats — queue sizes, entity counts and the
// most recent admin actions.
func (h *adminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pendingTeams, err := h.teams.CountByStatus(ctx, team.StatusPending)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to compute stats")
		return
	}
	totalTeams, err := h.teams.Count(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to compute stats")
		return
	}
	pendingStreamers, err := h.streamers.CountByStatus(ctx, streamer.StatusPending)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to compute stats")
		return
	}
	totalUsers, err := h.users.Count(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to compute stats")
		return
	}
	totalPlayers, err := h.players.Count(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to compute stats")
		return
	}
	recent, err := h.auditLog.Recent(ctx, recentActivityLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load recent activity")
		return
	}
	if recent == nil {
		recent = []*audit.Action{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pendingTeams":     pendingTeams,
		"pendingStreamers": pendingStreamers,
		"totalUsers":       totalUsers,
		"totalTeams":       totalTeams,
		"totalPlayers":     totalPlayers,
		"recentActivity":   recent,
	})
}
