// Package auth holds the login-flow building blocks: pure credential
// validators, bcrypt password hashing and session token minting. Nothing in
// here touches the entity collections.
package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 14

// DefaultSessionTTL is how long a minted session stays valid.
const DefaultSessionTTL = 12 * time.Hour

// HashPassword derives a bcrypt hash for storage. The caller is expected to
// have run ValidatePassword first.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
}

// PasswordMatches compares a stored hash against a login attempt. A mismatch
// is a normal false, not an error.
func PasswordMatches(hash []byte, input string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(hash, []byte(input))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Session is an authenticated user's ticket.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewSession mints a session for username with the given ttl.
func NewSession(username string, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New().String(),
		Username:  username,
		Token:     uuid.New().String(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(at time.Time) bool {
	return at.After(s.ExpiresAt)
}
