package audit

import (
	"context"
	"time"

	domain "techday/internal/domain/audit"
)

// Store defines the interface for audit event persistence.
type Store interface {
	// Save appends an audit event.
	// PRE: event is valid
	// POST: Event is persisted
	Save(ctx context.Context, event domain.Event) error

	// List returns audit events matching filter, newest first.
	// PRE: limit > 0
	List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error)
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Category   domain.Category
	Action     domain.Action
	ActorEmail string
	Since      time.Time
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
