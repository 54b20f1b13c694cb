package audit

import (
	"errors"
	"strings"
	"time"
)

// Category groups audit events by back-office area.
type Category string

const (
	CategoryAuth        Category = "auth"
	CategorySponsors    Category = "sponsors"
	CategoryAgenda      Category = "agenda"
	CategorySubmissions Category = "submissions"
	CategoryNewsletter  Category = "newsletter"
	CategoryMail        Category = "mail"
)

// Action is what happened.
type Action string

const (
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionReorder      Action = "reorder"
	ActionReview       Action = "review"
	ActionBroadcast    Action = "broadcast"
	ActionSignIn       Action = "sign_in"
	ActionSignInFailed Action = "sign_in_failed"
	ActionSignOut      Action = "sign_out"
	ActionRetry        Action = "retry"
	ActionAbandon      Action = "abandon"
)

// Severity grades an event for triage.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Domain errors
var (
	ErrMissingID     = errors.New("audit event id is required")
	ErrMissingAction = errors.New("audit event needs a category and an action")
)

// Event is one entry of the admin audit trail.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Category     Category  `json:"category"`
	Action       Action    `json:"action"`
	Severity     Severity  `json:"severity"`
	ActorEmail   string    `json:"actor_email"`
	ResourceType string    `json:"resource_type,omitempty"`
	ResourceID   string    `json:"resource_id,omitempty"`
	Description  string    `json:"description,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
}

// NewEvent creates an info-level event.
// PRE: id is unique; actorEmail is the signed-in admin or the email attempted at sign-in
// POST: Returns an Event stamped with at
func NewEvent(id string, at time.Time, actorEmail string, category Category, action Action) Event {
	return Event{
		ID:         id,
		Timestamp:  at,
		Category:   category,
		Action:     action,
		Severity:   SeverityInfo,
		ActorEmail: strings.ToLower(strings.TrimSpace(actorEmail)),
	}
}

// WithSeverity sets the severity level.
func (e Event) WithSeverity(s Severity) Event {
	e.Severity = s
	return e
}

// WithResource names the record the event touched.
func (e Event) WithResource(resourceType, resourceID string) Event {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithDescription sets a short human-readable summary.
func (e Event) WithDescription(desc string) Event {
	e.Description = desc
	return e
}

// WithRequest records where the request came from.
func (e Event) WithRequest(ipAddress, userAgent string) Event {
	e.IPAddress = ipAddress
	if len(userAgent) > 256 {
		userAgent = userAgent[:256]
	}
	e.UserAgent = userAgent
	return e
}

// Validate checks if the Event has valid data.
// PRE: Event struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Event) Validate() error {
	if e.ID == "" {
		return ErrMissingID
	}
	if e.Category == "" || e.Action == "" {
		return ErrMissingAction
	}
	if e.Severity == "" {
		e.Severity = SeverityInfo
	}
	return nil
}
