package speaker

import (
	"errors"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 120
	MaxBioLength  = 4000
)

// Domain errors
var (
	ErrEmptyName   = errors.New("speaker name cannot be empty")
	ErrNameTooLong = errors.New("speaker name cannot exceed 120 characters")
	ErrBioTooLong  = errors.New("bio cannot exceed 4000 characters")
)

// Speaker is a person presenting at the conference.
type Speaker struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	Company   string `json:"company"`
	Bio       string `json:"bio"` // markdown
	PhotoURL  string `json:"photo_url"`
	SortOrder int    `json:"sort_order"`
	Featured  bool   `json:"featured"`
}

// Validate checks if the Speaker has valid data.
// PRE: Speaker struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Speaker) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if len(s.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if len(s.Bio) > MaxBioLength {
		return ErrBioTooLong
	}
	return nil
}
