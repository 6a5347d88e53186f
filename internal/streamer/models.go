package streamer

import "time"

// Review states for a streamer application. The original portal encoded
// rejection as "verified=false plus a reason"; the explicit status column
// makes pending and rejected distinguishable without inspecting the reason.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Application types.
const (
	TypeStreamer = "streamer"
	TypeCaster   = "caster"
	TypeBoth     = "both"
)

// Streamer represents a streamer/caster application as stored.
type Streamer struct {
	ID              int64             `json:"id"`
	Name            string            `json:"name"`
	UserID          *int64            `json:"user_id,omitempty"`
	Platform        string            `json:"platform"`
	ChannelURL      string            `json:"channel_url"`
	Description     string            `json:"description"`
	Role            string            `json:"role"`
	SocialLinks     map[string]string `json:"social_links"`
	Followers       string            `json:"followers"`
	Streams         string            `json:"streams"`
	ApplicationType string            `json:"application_type"`
	Status          string            `json:"status"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// Verified reports whether the application has been approved.
func (s *Streamer) Verified() bool {
	return s.Status == StatusApproved
}

// PublicStreamer is the projection exposed on public listings. The review
// fields, the submitter link, and the application type are stripped.
type PublicStreamer struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Role        string            `json:"role"`
	Platform    string            `json:"platform"`
	ChannelURL  string            `json:"channel_url"`
	Description string            `json:"description"`
	SocialLinks map[string]string `json:"social_links"`
	Followers   string            `json:"followers"`
	Streams     string            `json:"streams"`
	Verified    bool              `json:"verified"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Public returns the public projection of the streamer.
func (s *Streamer) Public() *PublicStreamer {
	links := s.SocialLinks
	if links == nil {
		links = map[string]string{}
	}
	return &PublicStreamer{
		ID:          s.ID,
		Name:        s.Name,
		Role:        s.Role,
		Platform:    s.Platform,
		ChannelURL:  s.ChannelURL,
		Description: s.Description,
		SocialLinks: links,
		Followers:   s.Followers,
		Streams:     s.Streams,
		Verified:    s.Verified(),
		CreatedAt:   s.CreatedAt,
	}
}

// CreateStreamerInput holds the caller-supplied fields for an application.
// Verification state and the submitter link are assigned by the system.
type CreateStreamerInput struct {
	Name            string            `json:"name"`
	Platform        string            `json:"platform"`
	ChannelURL      string            `json:"channel_url"`
	Description     string            `json:"description"`
	Role            string            `json:"role"`
	SocialLinks     map[string]string `json:"social_links"`
	Followers       string            `json:"followers"`
	Streams         string            `json:"streams"`
	ApplicationType string            `json:"application_type"`
}
