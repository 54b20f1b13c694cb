package outbox

import (
	"errors"
	"time"
)

// Status constants for the entry lifecycle.
const (
	StatusPending   = "pending"
	StatusDone      = "done"
	StatusFailed    = "failed" // attempts exhausted
	StatusAbandoned = "abandoned"
)

// DefaultMaxAttempts bounds automatic retries, counting the original send.
const DefaultMaxAttempts = 6

// Domain errors.
var (
	ErrEmptyPayload = errors.New("payload is required")
	ErrTerminal     = errors.New("entry is already delivered or abandoned")
)

// Entry is a mail message whose delivery failed and is waiting for another attempt.
type Entry struct {
	ID              string    `json:"id"`
	Category        string    `json:"category"`
	Payload         string    `json:"-"` // JSON of the send request
	Status          string    `json:"status"`
	Attempts        int       `json:"attempts"`
	MaxAttempts     int       `json:"max_attempts"`
	LastAttemptedAt time.Time `json:"last_attempted_at"`
	NextAttemptAt   time.Time `json:"next_attempt_at"`
	CreatedAt       time.Time `json:"created_at"`
	MessageID       string    `json:"message_id,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
}

// NewEntry records a send that already failed once at now.
// POST: Status pending, Attempts 1, next attempt after baseDelay
func NewEntry(id, category, payload string, cause error, now time.Time, baseDelay time.Duration) Entry {
	e := Entry{
		ID:              id,
		Category:        category,
		Payload:         payload,
		Status:          StatusPending,
		Attempts:        1,
		MaxAttempts:     DefaultMaxAttempts,
		LastAttemptedAt: now,
		CreatedAt:       now,
		NextAttemptAt:   now.Add(baseDelay),
	}
	if cause != nil {
		e.ErrorMessage = cause.Error()
	}
	return e
}

// Validate checks that the Entry has valid data.
// PRE: Entry struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Entry) Validate() error {
	if e.Payload == "" {
		return ErrEmptyPayload
	}
	if e.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	if e.MaxAttempts <= 0 {
		e.MaxAttempts = DefaultMaxAttempts
	}
	return nil
}

// Due reports whether the entry should be attempted at now.
func (e *Entry) Due(now time.Time) bool {
	return e.Status == StatusPending && !now.Before(e.NextAttemptAt)
}

// IsTerminal reports whether no further attempt may be made.
func (e *Entry) IsTerminal() bool {
	return e.Status == StatusDone || e.Status == StatusAbandoned
}

// RecordSuccess marks the entry delivered.
func (e *Entry) RecordSuccess(messageID string, now time.Time) {
	e.Attempts++
	e.LastAttemptedAt = now
	e.Status = StatusDone
	e.MessageID = messageID
	e.ErrorMessage = ""
}

// RecordFailure counts a failed attempt and schedules the next one with exponential backoff.
// POST: Status failed once MaxAttempts is reached
func (e *Entry) RecordFailure(err error, now time.Time, baseDelay, maxDelay time.Duration) {
	e.Attempts++
	e.LastAttemptedAt = now
	e.ErrorMessage = err.Error()
	if e.Attempts >= e.MaxAttempts {
		e.Status = StatusFailed
		return
	}
	e.Status = StatusPending
	e.NextAttemptAt = now.Add(e.NextRetryDelay(baseDelay, maxDelay))
}

// Abandon stops further attempts.
func (e *Entry) Abandon() error {
	if e.IsTerminal() {
		return ErrTerminal
	}
	e.Status = StatusAbandoned
	return nil
}

// NextRetryDelay returns baseDelay doubled per attempt made so far, capped at maxDelay.
func (e *Entry) NextRetryDelay(baseDelay, maxDelay time.Duration) time.Duration {
	n := e.Attempts - 1
	if n < 0 {
		n = 0
	}
	if n > 30 {
		return maxDelay
	}
	delay := baseDelay * (1 << n)
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}
