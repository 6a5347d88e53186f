package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/csportugues/portal/internal/audit"
	"github.com/csportugues/portal/internal/auth"
	"github.com/csportugues/portal/internal/notify"
	"github.com/csportugues/portal/internal/streamer"
	"github.com/csportugues/portal/internal/team"
)

// DefaultRejectionReason is recorded when an admin rejects without a reason.
const DefaultRejectionReason = "Sem motivo indicado"

const (
	defaultRegion = "Portugal"
	defaultTier   = "Amador"
)

// TeamRepo is the storage contract the engine needs for teams. The
// Approve/Reject updates must be conditioned on the pending state so that
// only one of two racing decisions lands; the loser gets
// team.ErrAlreadyDecided.
type TeamRepo interface {
	Create(ctx context.Context, ownerID int64, in team.CreateTeamInput) (*team.Team, error)
	GetByID(ctx context.Context, id int64) (*team.Team, error)
	ListByStatus(ctx context.Context, status string) ([]*team.Team, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*team.Team, error)
	Approve(ctx context.Context, id int64) (*team.Team, error)
	Reject(ctx context.Context, id int64, reason string) (*team.Team, error)
	CreateJoinRequest(ctx context.Context, teamID, userID int64) (*team.JoinRequest, error)
	ApproveJoinRequest(ctx context.Context, teamID, userID int64) (*team.Team, error)
}

// StreamerRepo is the storage contract for streamer applications.
type StreamerRepo interface {
	Create(ctx context.Context, userID int64, in streamer.CreateStreamerInput) (*streamer.Streamer, error)
	GetByID(ctx context.Context, id int64) (*streamer.Streamer, error)
	ListByStatus(ctx context.Context, status string) ([]*streamer.Streamer, error)
	Verify(ctx context.Context, id int64) (*streamer.Streamer, error)
	Reject(ctx context.Context, id int64, reason string) (*streamer.Streamer, error)
}

// Notifier delivers notifications to an audience.
type Notifier interface {
	Broadcast(ctx context.Context, in notify.Input) error
	Target(ctx context.Context, userID int64, in notify.Input) error
}

// AuditLog appends admin decisions to the activity log.
type AuditLog interface {
	Append(ctx context.Context, e audit.Entry) (*audit.Action, error)
}

// Metrics counts submissions and decisions. Optional.
type Metrics interface {
	IncSubmission(entityType string)
	IncDecision(entityType, outcome string)
}

// Engine implements the moderation workflow: submissions enter pending,
// admins approve or reject, and each transition fans out notifications and
// audit entries. Notification and audit failures are logged but never roll
// back a committed transition.
type Engine struct {
	teams     TeamRepo
	streamers StreamerRepo
	notifier  Notifier
	log       AuditLog
	metrics   Metrics
}

// NewEngine creates an Engine over the given collaborators.
func NewEngine(teams TeamRepo, streamers StreamerRepo, notifier Notifier, log AuditLog) *Engine {
	return &Engine{teams: teams, streamers: streamers, notifier: notifier, log: log}
}

// SetMetrics attaches submission/decision counters to the engine.
func (e *Engine) SetMetrics(m Metrics) {
	e.metrics = m
}

func (e *Engine) countSubmission(entityType string) {
	if e.metrics != nil {
		e.metrics.IncSubmission(entityType)
	}
}

func (e *Engine) countDecision(entityType, outcome string) {
	if e.metrics != nil {
		e.metrics.IncDecision(entityType, outcome)
	}
}

// requireUser ensures the caller is authenticated.
func requireUser(caller *auth.User) error {
	if caller == nil {
		return ErrUnauthorized
	}
	return nil
}

// requireAdmin ensures the caller is an authenticated admin. Every admin-gated
// operation goes through this single guard.
func requireAdmin(caller *auth.User) error {
	if caller == nil {
		return ErrUnauthorized
	}
	if !caller.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// SubmitTeam creates a pending team owned by the caller and broadcasts the
// new submission to all admins. Caller-supplied review fields are ignored by
// construction: the input carries none.
func (e *Engine) SubmitTeam(ctx context.Context, caller *auth.User, in team.CreateTeamInput) (*team.PublicTeam, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrTeamNameRequired
	}
	if in.Region == "" {
		in.Region = defaultRegion
	}
	if in.Tier == "" {
		in.Tier = defaultTier
	}

	t, err := e.teams.Create(ctx, caller.ID, in)
	if err != nil {
		return nil, fmt.Errorf("submitting team: %w", err)
	}
	e.countSubmission(audit.EntityTeam)

	e.broadcast(ctx, notify.Input{
		Type:      notify.TypeTeamPending,
		Title:     "Nova Equipa Pendente",
		Message:   fmt.Sprintf("A equipa %q está aguardando aprovação.", t.Name),
		RelatedID: t.ID,
	})

	return t.Public(), nil
}

// ApproveTeam transitions a pending team to approved, logs the decision, and
// notifies the owner.
func (e *Engine) ApproveTeam(ctx context.Context, caller *auth.User, teamID int64) (*team.PublicTeam, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	t, err := e.teams.Approve(ctx, teamID)
	if err != nil {
		return nil, mapDecisionErr(err, team.ErrNotFound, team.ErrAlreadyDecided)
	}
	e.countDecision(audit.EntityTeam, "approved")

	e.audit(ctx, audit.Entry{
		AdminID:    caller.ID,
		Action:     audit.ActionApproveTeam,
		EntityID:   t.ID,
		EntityType: audit.EntityTeam,
	})
	e.target(ctx, t.OwnerID, notify.Input{
		Type:      notify.TypeTeamApproved,
		Title:     "Equipa Aprovada",
		Message:   fmt.Sprintf("A tua equipa %q foi aprovada.", t.Name),
		RelatedID: t.ID,
	})

	return t.Public(), nil
}

// RejectTeam transitions a pending team to rejected with a reason, logs the
// decision, and notifies the owner with the reason.
func (e *Engine) RejectTeam(ctx context.Context, caller *auth.User, teamID int64, reason string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if strings.TrimSpace(reason) == "" {
		reason = DefaultRejectionReason
	}

	t, err := e.teams.Reject(ctx, teamID, reason)
	if err != nil {
		return mapDecisionErr(err, team.ErrNotFound, team.ErrAlreadyDecided)
	}
	e.countDecision(audit.EntityTeam, "rejected")

	e.audit(ctx, audit.Entry{
		AdminID:    caller.ID,
		Action:     audit.ActionRejectTeam,
		EntityID:   t.ID,
		EntityType: audit.EntityTeam,
		Reason:     reason,
	})
	e.target(ctx, t.OwnerID, notify.Input{
		Type:      notify.TypeTeamRejected,
		Title:     "Equipa Rejeitada",
		Message:   fmt.Sprintf("A tua equipa %q foi rejeitada. Motivo: %s", t.Name, reason),
		RelatedID: t.ID,
	})

	return nil
}

// SubmitStreamerApplication creates a pending application linked to the
// caller and broadcasts it to all admins.
func (e *Engine) SubmitStreamerApplication(ctx context.Context, caller *auth.User, in streamer.CreateStreamerInput) (*streamer.PublicStreamer, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrStreamerNameRequired
	}
	if in.ApplicationType == "" {
		in.ApplicationType = streamer.TypeStreamer
	}
	switch in.ApplicationType {
	case streamer.TypeStreamer, streamer.TypeCaster, streamer.TypeBoth:
	default:
		return nil, ErrApplicationTypeInvalid
	}

	st, err := e.streamers.Create(ctx, caller.ID, in)
	if err != nil {
		return nil, fmt.Errorf("submitting streamer application: %w", err)
	}
	e.countSubmission(audit.EntityStreamer)

	e.broadcast(ctx, notify.Input{
		Type:      notify.TypeStreamerPending,
		Title:     "Novo Streamer Pendente",
		Message:   fmt.Sprintf("%s candidatou-se como %s.", st.Name, st.ApplicationType),
		RelatedID: st.ID,
	})

	return st.Public(), nil
}

// VerifyStreamer transitions a pending application to approved, logs the
// decision, and notifies the linked user. An application with no linked user
// is verified without a notification.
func (e *Engine) VerifyStreamer(ctx context.Context, caller *auth.User, streamerID int64) (*streamer.PublicStreamer, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	st, err := e.streamers.Verify(ctx, streamerID)
	if err != nil {
		return nil, mapDecisionErr(err, streamer.ErrNotFound, streamer.ErrAlreadyDecided)
	}
	e.countDecision(audit.EntityStreamer, "approved")

	e.audit(ctx, audit.Entry{
		AdminID:    caller.ID,
		Action:     audit.ActionVerifyStreamer,
		EntityID:   st.ID,
		EntityType: audit.EntityStreamer,
	})
	e.target(ctx, deref(st.UserID), notify.Input{
		Type:      notify.TypeStreamerVerified,
		Title:     "Perfil de Streamer Verificado",
		Message:   fmt.Sprintf("O teu perfil de streamer %q foi verificado.", st.Name),
		RelatedID: st.ID,
	})

	return st.Public(), nil
}

// RejectStreamerApplication transitions a pending application to rejected
// with a reason, logs the decision, and notifies the linked user.
func (e *Engine) RejectStreamerApplication(ctx context.Context, caller *auth.User, streamerID int64, reason string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if strings.TrimSpace(reason) == "" {
		reason = DefaultRejectionReason
	}

	st, err := e.streamers.Reject(ctx, streamerID, reason)
	if err != nil {
		return mapDecisionErr(err, streamer.ErrNotFound, streamer.ErrAlreadyDecided)
	}
	e.countDecision(audit.EntityStreamer, "rejected")

	e.audit(ctx, audit.Entry{
		AdminID:    caller.ID,
		Action:     audit.ActionRejectStreamer,
		EntityID:   st.ID,
		EntityType: audit.EntityStreamer,
		Reason:     reason,
	})
	e.target(ctx, deref(st.UserID), notify.Input{
		Type:      notify.TypeStreamerRejected,
		Title:     "Candidatura Rejeitada",
		Message:   fmt.Sprintf("A tua candidatura %q foi rejeitada. Motivo: %s", st.Name, reason),
		RelatedID: st.ID,
	})

	return nil
}

// RequestToJoinTeam records a pending join request for the caller and
// notifies the team owner. Only approved teams accept requests.
func (e *Engine) RequestToJoinTeam(ctx context.Context, caller *auth.User, teamID int64) (*team.JoinRequest, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}

	t, err := e.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, team.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading team: %w", err)
	}
	if t.Status != team.StatusApproved {
		return nil, ErrInvalidState
	}

	req, err := e.teams.CreateJoinRequest(ctx, teamID, caller.ID)
	if err != nil {
		if errors.Is(err, team.ErrDuplicateRequest) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("creating join request: %w", err)
	}

	e.target(ctx, t.OwnerID, notify.Input{
		Type:      notify.TypeTeamJoinRequest,
		Title:     "Novo Pedido de Equipa",
		Message:   fmt.Sprintf("Um jogador pediu para entrar na tua equipa %q.", t.Name),
		RelatedID: t.ID,
	})

	return req, nil
}

// ApproveTeamMember approves the pending join request for (team, user) and
// adds the user to the member set. Only the team's owner may approve.
func (e *Engine) ApproveTeamMember(ctx context.Context, caller *auth.User, teamID, userID int64) (*team.PublicTeam, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}

	t, err := e.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, team.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading team: %w", err)
	}
	if t.OwnerID != caller.ID {
		return nil, ErrForbidden
	}

	updated, err := e.teams.ApproveJoinRequest(ctx, teamID, userID)
	if err != nil {
		if errors.Is(err, team.ErrRequestNotFound) || errors.Is(err, team.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("approving team member: %w", err)
	}

	e.target(ctx, userID, notify.Input{
		Type:      notify.TypeTeamJoinApproved,
		Title:     "Pedido Aceito",
		Message:   fmt.Sprintf("Foste aceito na equipa %q.", updated.Name),
		RelatedID: updated.ID,
	})

	return updated.Public(), nil
}

// ListApprovedTeams returns all approved teams as public projections.
func (e *Engine) ListApprovedTeams(ctx context.Context) ([]*team.PublicTeam, error) {
	teams, err := e.teams.ListByStatus(ctx, team.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("listing approved teams: %w", err)
	}
	public := make([]*team.PublicTeam, 0, len(teams))
	for _, t := range teams {
		public = append(public, t.Public())
	}
	return public, nil
}

// GetApprovedTeam returns one approved team as a public projection. Pending
// and rejected teams are indistinguishable from missing ones.
func (e *Engine) GetApprovedTeam(ctx context.Context, id int64) (*team.PublicTeam, error) {
	t, err := e.teams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, team.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting team: %w", err)
	}
	if t.Status != team.StatusApproved {
		return nil, ErrNotFound
	}
	return t.Public(), nil
}

// ListOwnTeams returns the caller's teams, including their review status.
func (e *Engine) ListOwnTeams(ctx context.Context, caller *auth.User) ([]*team.OwnerTeam, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	teams, err := e.teams.ListByOwner(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("listing own teams: %w", err)
	}
	owned := make([]*team.OwnerTeam, 0, len(teams))
	for _, t := range teams {
		owned = append(owned, t.OwnerView())
	}
	return owned, nil
}

// ListPendingTeams returns the admin review queue for teams.
func (e *Engine) ListPendingTeams(ctx context.Context, caller *auth.User) ([]*team.Team, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	teams, err := e.teams.ListByStatus(ctx, team.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("listing pending teams: %w", err)
	}
	return teams, nil
}

// ListVerifiedStreamers returns all approved applications as public
// projections.
func (e *Engine) ListVerifiedStreamers(ctx context.Context) ([]*streamer.PublicStreamer, error) {
	streamers, err := e.streamers.ListByStatus(ctx, streamer.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("listing verified streamers: %w", err)
	}
	public := make([]*streamer.PublicStreamer, 0, len(streamers))
	for _, st := range streamers {
		public = append(public, st.Public())
	}
	return public, nil
}

// ListPendingStreamers returns the admin review queue for streamer
// applications. Rejected applications never appear here.
func (e *Engine) ListPendingStreamers(ctx context.Context, caller *auth.User) ([]*streamer.Streamer, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	streamers, err := e.streamers.ListByStatus(ctx, streamer.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("listing pending streamers: %w", err)
	}
	return streamers, nil
}

// broadcast delivers an admin broadcast, logging delivery failures without
// failing the transition that triggered it.
func (e *Engine) broadcast(ctx context.Context, in notify.Input) {
	if err := e.notifier.Broadcast(ctx, in); err != nil {
		slog.Error("notification broadcast failed", "type", in.Type, "related_id", in.RelatedID, "error", err)
	}
}

// target delivers a targeted notification, logging delivery failures without
// failing the transition that triggered it.
func (e *Engine) target(ctx context.Context, userID int64, in notify.Input) {
	if err := e.notifier.Target(ctx, userID, in); err != nil {
		slog.Error("notification delivery failed", "type", in.Type, "user_id", userID, "error", err)
	}
}

// audit appends an admin action, logging failures without undoing the
// decision already committed.
func (e *Engine) audit(ctx context.Context, entry audit.Entry) {
	if _, err := e.log.Append(ctx, entry); err != nil {
		slog.Error("audit append failed", "action", entry.Action, "entity_id", entry.EntityID, "error", err)
	}
}

// mapDecisionErr converts a store decision failure into the caller-facing
// taxonomy: missing entity, already-terminal entity, or an internal error.
func mapDecisionErr(err, notFound, alreadyDecided error) error {
	switch {
	case errors.Is(err, notFound):
		return ErrNotFound
	case errors.Is(err, alreadyDecided):
		return ErrConflict
	default:
		return fmt.Errorf("applying decision: %w", err)
	}
}

func deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
