package registration

import (
	"errors"
	"strings"
	"time"
)

// Ticket type constants
const (
	TicketGeneral  = "general"
	TicketStudent  = "student"
	TicketStartup  = "startup"
	TicketInvestor = "investor"
)

// ValidTickets contains all valid ticket types.
var ValidTickets = []string{TicketGeneral, TicketStudent, TicketStartup, TicketInvestor}

// Max length constants for user-editable fields.
const (
	MaxEmailLength = 254
	MaxNameLength  = 120
)

// Domain errors
var (
	ErrEmptyName     = errors.New("name cannot be empty")
	ErrNameTooLong   = errors.New("name cannot exceed 120 characters")
	ErrInvalidEmail  = errors.New("a valid email is required")
	ErrInvalidTicket = errors.New("ticket must be one of: general, student, startup, investor")
	ErrDuplicate     = errors.New("this email is already registered")
)

// Registration is an attendee sign-up from the public site.
type Registration struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company"`
	JobTitle  string    `json:"job_title"`
	Ticket    string    `json:"ticket"`
	CreatedAt time.Time `json:"created_at"`
}

// Normalize trims fields and lower-cases the email.
func (r *Registration) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Company = strings.TrimSpace(r.Company)
	r.JobTitle = strings.TrimSpace(r.JobTitle)
	r.Ticket = strings.ToLower(strings.TrimSpace(r.Ticket))
	if r.Ticket == "" {
		r.Ticket = TicketGeneral
	}
}

// Validate checks if the Registration has valid data.
// PRE: Normalize has been called
// POST: Returns nil if valid, error otherwise
func (r *Registration) Validate() error {
	if r.Name == "" {
		return ErrEmptyName
	}
	if len(r.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if !ValidEmail(r.Email) {
		return ErrInvalidEmail
	}
	for _, t := range ValidTickets {
		if t == r.Ticket {
			return nil
		}
	}
	return ErrInvalidTicket
}

// ValidEmail applies the same basic shape check as the public forms.
func ValidEmail(email string) bool {
	if email == "" || len(email) > MaxEmailLength || strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && at < len(email)-1 && strings.Contains(email[at:], ".")
}
