package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/csportugues/portal/internal/auth"
	"github.com/csportugues/portal/internal/team"
	"github.com/go-chi/chi/v5"
)

// teamService is the subset of the moderation engine used by the team
// handlers.
type teamService interface {
	SubmitTeam(ctx context.Context, caller *auth.User, in team.CreateTeamInput) (*team.PublicTeam, error)
	ApproveTeam(ctx context.Context, caller *auth.User, teamID int64) (*team.PublicTeam, error)
	RejectTeam(ctx context.Context, caller *auth.User, teamID int64, reason string) error
	RequestToJoinTeam(ctx context.Context, caller *auth.User, teamID int64) (*team.JoinRequest, error)
	ApproveTeamMember(ctx context.Context, caller *auth.User, teamID, userID int64) (*team.PublicTeam, error)
	ListApprovedTeams(ctx context.Context) ([]*team.PublicTeam, error)
	GetApprovedTeam(ctx context.Context, id int64) (*team.PublicTeam, error)
	ListOwnTeams(ctx context.Context, caller *auth.User) ([]*team.OwnerTeam, error)
	ListPendingTeams(ctx context.Context, caller *auth.User) ([]*team.Team, error)
}

// teamsHandler groups team-related HTTP handlers.
type teamsHandler struct {
	svc teamService
}

func newTeamsHandler(svc teamService) *teamsHandler {
	return &teamsHandler{svc: svc}
}

// List handles GET /api/teams — public, approved teams only.
func (h *teamsHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.svc.ListApprovedTeams(r.Context())
	if err != nil {
		writeModerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// Get handles GET /api/teams/{id} — public, approved teams only.
func (h *teamsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	t, err := h.svc.GetApprovedTeam(r.Context(), id)
	if err != nil {
		writeModerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Mine handles GET /api/teams/mine — the caller's teams with review status.
func (h *teamsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	teams, err := h.svc.ListOwnTeams(r.Context(), auth.UserFromContext(r.Context()))
	if err != nil {
		writeModerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// Create handles POST /api/teams — submits a team for review.
func (h *teamsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in team.CreateTeamInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	t, err := h.svc.SubmitTeam(r.Context(), auth.UserFromContext(r.Context()), in)
	if err != nil {
		writeModerationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// ListPending handles GET /api/teams/pending — the admin review queue.
func (h *teamsHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	teams, err := h.svc.ListPendingTeams(r.Context(), auth.UserFromContext(r.Context()))
	if err != nil {
		writeModerationError(w, err)
		return
	}
	if teams == nil {
		teams = []*team.Team{}
	}
	writeJSON(w, http.StatusOK, teams)
}

// Approve handles PUT /api/teams/{id}/approve.
func (h *teamsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	t, err := h.svc.ApproveTeam(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		writeModerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Reject handles PUT /api/teams/{id}/reject.
func (h *teamsHandler) Reject(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.RejectTeam(r.Context(), auth.UserFromContext(r.Context()), id, req.Reason); err != nil {
		writeModerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Join handles POST /api/teams/{id}/join.
func (h *teamsHandler) Join(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	req, err := h.svc.RequestToJoinTeam(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		writeModerationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// ApproveMember handles PUT /api/teams/{teamId}/members/{userId}/approve.
func (h *teamsHandler) ApproveMember(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathID(w, r, "teamId")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	t, err := h.svc.ApproveTeamMember(r.Context(), auth.UserFromContext(r.Context()), teamID, userID)
	if err != nil {
		writeModerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// pathID parses a numeric chi URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid "+name+" parameter")
		return 0, false
	}
	return id, true
}
