package audit

import "time"

// Actions recorded by admin decisions.
const (
	ActionApproveTeam    = "approve_team"
	ActionRejectTeam     = "reject_team"
	ActionVerifyStreamer = "verify_streamer"
	ActionRejectStreamer = "reject_streamer"
)

// Entity types an admin action can reference.
const (
	EntityTeam     = "team"
	EntityStreamer = "streamer"
)

// Action is one immutable record of an admin decision. Entries are only ever
// appended; there is no update or delete.
type Action struct {
	ID         int64     `json:"id"`
	AdminID    int64     `json:"admin_id"`
	Action     string    `json:"action"`
	EntityID   int64     `json:"entity_id"`
	EntityType string    `json:"entity_type"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Entry holds the fields for a new audit record.
type Entry struct {
	AdminID    int64
	Action     string
	EntityID   int64
	EntityType string
	Reason     string
}
