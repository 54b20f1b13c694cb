package outbox

import (
	"context"
	"time"

	domain "techday/internal/domain/outbox"
)

// Store defines the interface for mail retry queue persistence.
type Store interface {
	// GetByID retrieves an entry. Returns storage.ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// Save inserts or updates an entry.
	// PRE: entry has been validated
	Save(ctx context.Context, e domain.Entry) error

	// ListDue returns pending entries whose next attempt is at or before now, oldest first.
	// PRE: limit > 0
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Entry, error)

	// ListByStatus returns entries in status, newest first. Empty status lists everything.
	// PRE: limit > 0
	ListByStatus(ctx context.Context, status string, limit int) ([]domain.Entry, error)
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
