package sponsor

import (
	"context"

	domain "techday/internal/domain/sponsor"
)

// Store persists sponsors and the per-tier order versions.
// Every change to a tier's membership or order bumps that tier's version.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Sponsor, error)
	List(ctx context.Context) ([]domain.Sponsor, error)
	ListByTier(ctx context.Context, tier domain.Tier) ([]domain.Sponsor, error)
	Versions(ctx context.Context) (map[domain.Tier]int64, error)
	Create(ctx context.Context, value domain.Sponsor) (domain.Sponsor, error)
	Update(ctx context.Context, value domain.Sponsor) (domain.Sponsor, error)
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, tier domain.Tier, version int64, ids []string) (int64, error)
}
