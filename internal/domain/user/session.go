package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is an authenticated browser session, identified by the token held
// in the session cookie.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewSession opens a session for u lasting ttl.
func NewSession(u *User, ttl time.Duration, now time.Time) *Session {
	return &Session{
		Token:     uuid.NewString(),
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// IsAdmin reports whether the session carries the admin role.
func (s *Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// SessionStore persists sessions between requests.
// Get returns an error satisfying errors.IsNotFound for unknown or expired
// tokens.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}
