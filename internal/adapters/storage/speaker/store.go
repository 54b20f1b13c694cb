package speaker

import (
	"context"

	domain "techday/internal/domain/speaker"
)

// Store persists Speaker state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Speaker, error)
	List(ctx context.Context) ([]domain.Speaker, error)
	Save(ctx context.Context, value domain.Speaker) error
	Delete(ctx context.Context, id string) error
}
