package player

import "time"

// Profile is a matchmaking card a user publishes to find a team.
type Profile struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Position     string    `json:"position"`
	Experience   string    `json:"experience"`
	Availability string    `json:"availability"`
	Skills       []string  `json:"skills"`
	Contact      string    `json:"contact"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Input holds the caller-supplied fields for a profile. The owning user is
// taken from the session, never from the payload.
type Input struct {
	Position     string   `json:"position"`
	Experience   string   `json:"experience"`
	Availability string   `json:"availability"`
	Skills       []string `json:"skills"`
	Contact      string   `json:"contact"`
}
