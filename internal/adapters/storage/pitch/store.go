package pitch

import (
	"context"

	domain "techday/internal/domain/pitch"
)

// Store persists startup pitch submissions.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Pitch, error)
	Save(ctx context.Context, value domain.Pitch) error
	List(ctx context.Context, filter ListFilter) ([]domain.Pitch, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Status string
	Limit  int
	Offset int
}
