package profile

import "time"

// Profile is a user's presentation page: display name, avatar, bio and
// social links. Every registered user gets one.
type Profile struct {
	ID          int64             `json:"id"`
	UserID      int64             `json:"user_id"`
	DisplayName string            `json:"display_name"`
	AvatarURL   string            `json:"avatar_url"`
	Bio         string            `json:"bio"`
	SocialLinks map[string]string `json:"social_links"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Input holds the caller-supplied profile fields.
type Input struct {
	DisplayName string            `json:"display_name"`
	AvatarURL   string            `json:"avatar_url"`
	Bio         string            `json:"bio"`
	SocialLinks map[string]string `json:"social_links"`
}
