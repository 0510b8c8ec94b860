package domain

import (
	"context"
	"time"
)

// ChapterRole is a user's role within a chapter, orthogonal to RSVP status.
type ChapterRole string

const (
	RoleMember        ChapterRole = "member"
	RoleAdministrator ChapterRole = "administrator"
)

// User represents a registered user
// swagger:model User
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChapterMember links a user to a chapter, carrying the chapter-level
// subscription preference that seeds new attendance records.
type ChapterMember struct {
	ChapterID  string      `json:"chapter_id"`
	UserID     string      `json:"user_id"`
	Subscribed bool        `json:"subscribed"`
	Role       ChapterRole `json:"role"`
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
}

// ChapterMemberRepository defines the interface for chapter membership lookup.
type ChapterMemberRepository interface {
	// GetMembership returns the membership row for (chapterID, userID), or
	// ErrNotFound when the user does not follow the chapter.
	GetMembership(ctx context.Context, chapterID, userID string) (*ChapterMember, error)
	// ListAdministrators returns the subscribed administrators of a chapter
	// together with their user rows.
	ListAdministrators(ctx context.Context, chapterID string) ([]*User, error)
}
