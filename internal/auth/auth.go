package auth

import "context"

// User represents an authenticated portal user.
type User struct {
	ID       int64
	Username string
	Role     string // "user" or "admin"
}

// IsAdmin returns true if the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

// SessionLookup is the interface for resolving session tokens to users.
type SessionLookup interface {
	LookupSession(ctx context.Context, token string) (*User, error)
}
