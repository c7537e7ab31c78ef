package domain

import "time"

// Session is a server-side login session used by the OAuth deployment mode.
// Profile holds the raw provider profile JSON as returned by the provider API.
type Session struct {
	ID        string
	Profile   []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
