package models

import "time"

// Session is a server-side login session. The ID is the opaque value carried
// in the client's cookie; nothing about the user is derivable from it.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
