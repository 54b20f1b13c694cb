package schedule

import (
	"context"
	"time"

	domain "techday/internal/domain/schedule"
)

// Store persists agenda sessions.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Session, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Session, error)
	Save(ctx context.Context, value domain.Session) error
	Delete(ctx context.Context, id string) error
}

// ListFilter carries filtering parameters for List operations.
// Zero values match everything.
type ListFilter struct {
	Track string
	From  time.Time
	To    time.Time
}
