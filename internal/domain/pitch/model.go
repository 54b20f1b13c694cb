package pitch

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"techday/internal/domain/registration"
)

// Stage constants
const (
	StageIdea    = "idea"
	StagePreSeed = "pre-seed"
	StageSeed    = "seed"
	StageSeriesA = "series-a"
)

// ValidStages contains all valid funding stages.
var ValidStages = []string{StageIdea, StagePreSeed, StageSeed, StageSeriesA}

// Status constants
const (
	StatusSubmitted   = "submitted"
	StatusShortlisted = "shortlisted"
	StatusApproved    = "approved"
	StatusRejected    = "rejected"
)

// MaxSummaryLength bounds the pitch summary.
const MaxSummaryLength = 3000

// Domain errors
var (
	ErrEmptyStartup    = errors.New("startup name cannot be empty")
	ErrEmptyFounder    = errors.New("founder name cannot be empty")
	ErrInvalidEmail    = errors.New("a valid email is required")
	ErrInvalidStage    = errors.New("stage must be one of: idea, pre-seed, seed, series-a")
	ErrInvalidDeckURL  = errors.New("deck link must be an https URL")
	ErrEmptySummary    = errors.New("summary cannot be empty")
	ErrSummaryTooLong  = errors.New("summary cannot exceed 3000 characters")
	ErrInvalidDecision = errors.New("decision must be one of: shortlisted, approved, rejected")
	ErrAlreadyDecided  = errors.New("pitch has already been decided")
)

// Pitch is a startup's application for the pitch stage.
type Pitch struct {
	ID          string    `json:"id"`
	Startup     string    `json:"startup"`
	Founder     string    `json:"founder"`
	Email       string    `json:"email"`
	Stage       string    `json:"stage"`
	DeckURL     string    `json:"deck_url"`
	Summary     string    `json:"summary"` // markdown
	Status      string    `json:"status"`
	ReviewNotes string    `json:"review_notes,omitempty"`
	ReviewedBy  string    `json:"reviewed_by,omitempty"`
	ReviewedAt  time.Time `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks if the Pitch has valid data.
// PRE: Pitch struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Pitch) Validate() error {
	if strings.TrimSpace(p.Startup) == "" {
		return ErrEmptyStartup
	}
	if strings.TrimSpace(p.Founder) == "" {
		return ErrEmptyFounder
	}
	if !registration.ValidEmail(p.Email) {
		return ErrInvalidEmail
	}
	if !contains(ValidStages, p.Stage) {
		return ErrInvalidStage
	}
	if p.DeckURL != "" {
		u, err := url.Parse(p.DeckURL)
		if err != nil || u.Scheme != "https" || u.Host == "" {
			return ErrInvalidDeckURL
		}
	}
	if strings.TrimSpace(p.Summary) == "" {
		return ErrEmptySummary
	}
	if len(p.Summary) > MaxSummaryLength {
		return ErrSummaryTooLong
	}
	return nil
}

// IsDecided reports whether the pitch reached a final status.
func (p *Pitch) IsDecided() bool {
	return p.Status == StatusApproved || p.Status == StatusRejected
}

// Review records a reviewer decision.
// PRE: pitch is submitted or shortlisted
// POST: Status, notes and reviewer fields updated
func (p *Pitch) Review(decision, notes, reviewer string, now time.Time) error {
	if decision != StatusShortlisted && decision != StatusApproved && decision != StatusRejected {
		return ErrInvalidDecision
	}
	if p.IsDecided() {
		return ErrAlreadyDecided
	}
	p.Status = decision
	p.ReviewNotes = strings.TrimSpace(notes)
	p.ReviewedBy = reviewer
	p.ReviewedAt = now
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
