package credentials

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"auth-portal/internal/domain"
)

// dummyHash is compared against when the username does not match, so both
// rejection paths still pay for one bcrypt verification. It is a well-formed
// bcrypt string, not a credential.
const dummyHash = "$2b$10$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Store holds the single configured identity and verifies login attempts
// against it. It is immutable after construction and safe for concurrent use.
type Store struct {
	username     string
	passwordHash string
}

func NewStore(identity domain.Identity) *Store {
	return &Store{
		username:     identity.Username,
		passwordHash: identity.PasswordHash,
	}
}

// Verify reports whether the pair matches the configured identity. Username
// mismatch and password mismatch are indistinguishable to the caller, by
// result and by cost: a mismatched username still runs a bcrypt comparison.
func (s *Store) Verify(username, password string) bool {
	if username == "" || password == "" {
		return false
	}

	hash := s.passwordHash
	match := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	if !match {
		hash = dummyHash
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return false
	}
	return match
}

// Username returns the configured username.
func (s *Store) Username() string {
	return s.username
}
