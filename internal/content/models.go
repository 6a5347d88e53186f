package content

import (
	"encoding/json"
	"time"
)

// Match lifecycle states.
const (
	MatchUpcoming  = "upcoming"
	MatchLive      = "live"
	MatchCompleted = "completed"
)

// Tournament lifecycle states.
const (
	TournamentUpcoming  = "upcoming"
	TournamentActive    = "active"
	TournamentCompleted = "completed"
)

// Match is a scheduled or played match between two teams.
type Match struct {
	ID           int64      `json:"id"`
	TeamAID      *int64     `json:"team_a_id,omitempty"`
	TeamBID      *int64     `json:"team_b_id,omitempty"`
	TeamAScore   int        `json:"team_a_score"`
	TeamBScore   int        `json:"team_b_score"`
	Status       string     `json:"status"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	Map          string     `json:"map"`
	TournamentID *int64     `json:"tournament_id,omitempty"`
	StreamURL    string     `json:"stream_url"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Tournament is a competition teams enter. Brackets are stored as an opaque
// JSON document; the portal renders them, it does not interpret them.
type Tournament struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	StartDate   *time.Time      `json:"start_date,omitempty"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	Prize       string          `json:"prize"`
	Status      string          `json:"status"`
	Format      string          `json:"format"`
	Teams       []int64         `json:"teams"`
	Brackets    json.RawMessage `json:"brackets"`
	OrganizerID *int64          `json:"organizer_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Article is one published news item.
type Article struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Excerpt     string    `json:"excerpt"`
	Image       string    `json:"image"`
	AuthorID    *int64    `json:"author_id,omitempty"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	PublishedAt time.Time `json:"published_at"`
}
