package admin

import (
	"context"
	"time"

	domain "techday/internal/domain/admin"
)

// Store persists AdminAccount state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	Save(ctx context.Context, value domain.Account) error
	RecordFailedVerify(ctx context.Context, id string, now time.Time, threshold int, lockout time.Duration) (int, time.Time, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Account, error)
	Count(ctx context.Context) (int, error)
}
