package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

// DefaultTTL is how long an admin session stays valid without re-verification.
const DefaultTTL = 12 * time.Hour

// ErrInvalid is returned for unknown, expired or revoked sessions.
var ErrInvalid = errors.New("session is invalid or expired")

// Session is a server-issued credential for a verified AdminAccount.
type Session struct {
	Token     string
	AccountID string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	RevokedAt time.Time // zero while active
}

// New issues a session with a fresh random token.
// PRE: accountID and email identify an existing account; ttl > 0
// POST: Token is 64 hex characters
func New(accountID, email string, now time.Time, ttl time.Duration) (Session, error) {
	token, err := GenerateToken()
	if err != nil {
		return Session{}, err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return Session{
		Token:     token,
		AccountID: accountID,
		Email:     email,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// IsActive reports whether the session can still authenticate requests.
// INVARIANT: Session fields are not mutated
func (s Session) IsActive(now time.Time) bool {
	if !s.RevokedAt.IsZero() {
		return false
	}
	return now.Before(s.ExpiresAt)
}

// GenerateToken returns 32 random bytes, hex encoded.
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
