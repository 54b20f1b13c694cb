package registration

import (
	"context"

	domain "techday/internal/domain/registration"
)

// Store persists attendee registrations.
type Store interface {
	Create(ctx context.Context, value domain.Registration) error
	List(ctx context.Context, filter ListFilter) ([]domain.Registration, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
	Ticket string
}
