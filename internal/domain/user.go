package domain

import (
	"context"
	"time"
)

const (
	RoleSeeker  = "seeker"
	RoleCompany = "company"
	RoleAdmin   = "admin"
)

type User struct {
	ID        string    `json:"id"` // Supabase UUID
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Participant is the public face of a user inside matches and chats.
type Participant struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Headline string `json:"headline,omitempty"` // seeker title or company industry
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
}

// ProfileLookup resolves the participant card for users of one role.
// Lookups are keyed by role so callers never branch on it.
type ProfileLookup interface {
	Lookup(ctx context.Context, userID string) (*Participant, error)
}
