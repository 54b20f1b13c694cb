package projections

import (
	"context"

	"techday/internal/domain/sponsor"
)

// GetSponsorBoardDeps holds dependencies for the sponsor board projection.
type GetSponsorBoardDeps struct {
	SponsorStore SponsorStore
}

// QueryGetSponsorBoard returns every tier, in display order, with its version.
// Versions are read before sponsors: a reorder landing in between leaves the client
// with an older version than its order, so its next write conflicts instead of
// silently overwriting the newer order.
// POST: every tier is present, sponsors sorted by position
func QueryGetSponsorBoard(ctx context.Context, deps GetSponsorBoardDeps) ([]sponsor.TierGroup, error) {
	versions, err := deps.SponsorStore.Versions(ctx)
	if err != nil {
		return nil, err
	}
	all, err := deps.SponsorStore.List(ctx)
	if err != nil {
		return nil, err
	}
	return sponsor.Group(all, versions), nil
}
