package notify

import "time"

// Notification types emitted by the moderation workflow.
const (
	TypeTeamPending      = "team_pending"
	TypeTeamApproved     = "team_approved"
	TypeTeamRejected     = "team_rejected"
	TypeStreamerPending  = "streamer_pending"
	TypeStreamerVerified = "streamer_verified"
	TypeStreamerRejected = "streamer_rejected"
	TypeTeamJoinRequest  = "team_join_request"
	TypeTeamJoinApproved = "team_join_approved"
)

// Notification is a per-user message created by the system. Only the owning
// user may mutate it, and only by marking it read.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	RelatedID *int64    `json:"related_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Input holds the content of a notification to be delivered. The recipient is
// chosen by the fan-out, not the input.
type Input struct {
	Type      string
	Title     string
	Message   string
	RelatedID int64
}
