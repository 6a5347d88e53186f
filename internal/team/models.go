package team

import "time"

// Review states for a submitted team. A team starts pending and moves exactly
// once to approved or rejected.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Team represents a team application as stored, including review fields.
type Team struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Logo            string    `json:"logo"`
	OwnerID         int64     `json:"owner_id"`
	Members         []int64   `json:"members"`
	Description     string    `json:"description"`
	Region          string    `json:"region"`
	Tier            string    `json:"tier"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PublicTeam is the projection exposed on public listings. Review fields
// (status, rejection reason) are stripped.
type PublicTeam struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Logo        string    `json:"logo"`
	OwnerID     int64     `json:"owner_id"`
	Members     []int64   `json:"members"`
	Description string    `json:"description"`
	Region      string    `json:"region"`
	Tier        string    `json:"tier"`
	CreatedAt   time.Time `json:"created_at"`
}

// Public returns the public projection of the team.
func (t *Team) Public() *PublicTeam {
	members := t.Members
	if members == nil {
		members = []int64{}
	}
	return &PublicTeam{
		ID:          t.ID,
		Name:        t.Name,
		Logo:        t.Logo,
		OwnerID:     t.OwnerID,
		Members:     members,
		Description: t.Description,
		Region:      t.Region,
		Tier:        t.Tier,
		CreatedAt:   t.CreatedAt,
	}
}

// OwnerTeam is the projection returned to the team's owner. It carries the
// review status so the owner can follow their application, but not the
// internal rejection bookkeeping beyond the reason itself.
type OwnerTeam struct {
	PublicTeam
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

// OwnerView returns the owner-facing projection of the team.
func (t *Team) OwnerView() *OwnerTeam {
	return &OwnerTeam{
		PublicTeam:      *t.Public(),
		Status:          t.Status,
		RejectionReason: t.RejectionReason,
	}
}

// CreateTeamInput holds the caller-supplied fields for a team submission.
// Review fields and ownership are assigned by the system, never by the caller.
type CreateTeamInput struct {
	Name        string  `json:"name"`
	Logo        string  `json:"logo"`
	Description string  `json:"description"`
	Region      string  `json:"region"`
	Tier        string  `json:"tier"`
	Members     []int64 `json:"members"`
}

// JoinRequest represents a pending request by a user to join a team. It is
// keyed by the (team, user) pair.
type JoinRequest struct {
	TeamID      int64     `json:"team_id"`
	UserID      int64     `json:"user_id"`
	Status      string    `json:"status"`
	RequestedAt time.Time `json:"requested_at"`
}
