package schedule

import (
	"errors"
	"strings"
	"time"
)

// Session kind constants
const (
	KindKeynote  = "keynote"
	KindTalk     = "talk"
	KindWorkshop = "workshop"
	KindPanel    = "panel"
	KindPitch    = "pitch"
	KindBreak    = "break"
)

// ValidKinds contains all valid kind values.
var ValidKinds = []string{KindKeynote, KindTalk, KindWorkshop, KindPanel, KindPitch, KindBreak}

// MaxTitleLength bounds session titles.
const MaxTitleLength = 200

// Domain errors
var (
	ErrEmptyTitle     = errors.New("session title cannot be empty")
	ErrTitleTooLong   = errors.New("session title cannot exceed 200 characters")
	ErrInvalidKind    = errors.New("kind must be one of: keynote, talk, workshop, panel, pitch, break")
	ErrMissingTimes   = errors.New("start and end times are required")
	ErrEndBeforeStart = errors.New("session must end after it starts")
)

// Session is one slot on the conference agenda.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Abstract  string    `json:"abstract"` // markdown
	Kind      string    `json:"kind"`
	SpeakerID string    `json:"speaker_id,omitempty"`
	Track     string    `json:"track"`
	Room      string    `json:"room"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
}

// Validate checks if the Session has valid data.
// PRE: Session struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Session) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return ErrEmptyTitle
	}
	if len(s.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if !isValidKind(s.Kind) {
		return ErrInvalidKind
	}
	if s.StartsAt.IsZero() || s.EndsAt.IsZero() {
		return ErrMissingTimes
	}
	if !s.EndsAt.After(s.StartsAt) {
		return ErrEndBeforeStart
	}
	return nil
}

// Duration returns the session length.
func (s *Session) Duration() time.Duration {
	return s.EndsAt.Sub(s.StartsAt)
}

// Overlaps reports whether two sessions share a room at the same time.
// Sessions without a room never clash.
func (s *Session) Overlaps(other Session) bool {
	if s.Room == "" || !strings.EqualFold(s.Room, other.Room) {
		return false
	}
	return s.StartsAt.Before(other.EndsAt) && other.StartsAt.Before(s.EndsAt)
}

func isValidKind(kind string) bool {
	for _, k := range ValidKinds {
		if k == kind {
			return true
		}
	}
	return false
}
