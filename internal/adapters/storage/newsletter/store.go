package newsletter

import (
	"context"

	domain "techday/internal/domain/newsletter"
)

// Store persists newsletter subscribers.
type Store interface {
	Subscribe(ctx context.Context, value domain.Subscriber) (domain.Subscriber, bool, error)
	List(ctx context.Context) ([]domain.Subscriber, error)
	Count(ctx context.Context) (int, error)
}
