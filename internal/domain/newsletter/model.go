package newsletter

import (
	"errors"
	"strings"
	"time"

	"techday/internal/domain/registration"
)

// MaxSubjectLength bounds broadcast subjects.
const MaxSubjectLength = 150

// Domain errors
var (
	ErrInvalidEmail   = errors.New("a valid email is required")
	ErrEmptySubject   = errors.New("subject cannot be empty")
	ErrSubjectTooLong = errors.New("subject cannot exceed 150 characters")
	ErrEmptyBody      = errors.New("body cannot be empty")
)

// Subscriber is one newsletter address.
type Subscriber struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Source       string    `json:"source"` // e.g. "footer", "registration"
	SubscribedAt time.Time `json:"subscribed_at"`
}

// Validate checks if the Subscriber has valid data.
func (s *Subscriber) Validate() error {
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	if !registration.ValidEmail(s.Email) {
		return ErrInvalidEmail
	}
	return nil
}

// Broadcast is an admin-authored newsletter issue.
type Broadcast struct {
	Subject  string `json:"subject"`
	Markdown string `json:"markdown"`
}

// Validate checks if the Broadcast has valid data.
func (b *Broadcast) Validate() error {
	if strings.TrimSpace(b.Subject) == "" {
		return ErrEmptySubject
	}
	if len(b.Subject) > MaxSubjectLength {
		return ErrSubjectTooLong
	}
	if strings.TrimSpace(b.Markdown) == "" {
		return ErrEmptyBody
	}
	return nil
}
