package models

import (
	"time"

	id "storefront/pkg/domain"
)

type Provider string

const (
	ProviderPassword  Provider = "password"
	ProviderFederated Provider = "federated"
)

// Credential binds a sign-in method to a user ID. The user ID is shared with
// the profile document.
type Credential struct {
	UserID       id.UserID
	Email        string
	PasswordHash string
	Provider     Provider
	Subject      string
	CreatedAt    time.Time
}

type SessionStatus string

const (
	SessionStatusActive SessionStatus = "active"
	SessionStatusEnded  SessionStatus = "ended"
)

type Session struct {
	ID                 id.SessionID  `json:"id"`
	UserID             id.UserID     `json:"user_id"`
	Status             SessionStatus `json:"status"`
	DeviceDisplayName  string        `json:"device_display_name,omitempty"`
	LastAccessTokenJTI string        `json:"last_access_token_jti,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	ExpiresAt          time.Time     `json:"expires_at"`
	EndedAt            *time.Time    `json:"ended_at,omitempty"`
}

// IsActive reports whether the session can still authenticate requests at now.
func (s *Session) IsActive(now time.Time) bool {
	return s.Status == SessionStatusActive && now.Before(s.ExpiresAt)
}

// End marks the session ended. Ending an ended session keeps the first EndedAt.
func (s *Session) End(now time.Time) {
	if s.Status == SessionStatusEnded {
		return
	}
	s.Status = SessionStatusEnded
	s.EndedAt = &now
}

// Identity is what a successful sign-in yields to the transport.
type Identity struct {
	UserID    id.UserID
	SessionID id.SessionID
	Email     string
	Token     string
	ExpiresAt time.Time
}
