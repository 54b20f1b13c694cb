package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"techday/internal/domain/sponsor"
)

// SponsorStoreForOrchestrator defines the store interface needed by sponsor orchestrators.
type SponsorStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (sponsor.Sponsor, error)
	Create(ctx context.Context, s sponsor.Sponsor) (sponsor.Sponsor, error)
	Update(ctx context.Context, s sponsor.Sponsor) (sponsor.Sponsor, error)
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, tier sponsor.Tier, version int64, ids []string) (int64, error)
}

// SponsorInput carries the editable fields of a sponsor.
type SponsorInput struct {
	Name       string
	LogoURL    string
	WebsiteURL string
	Tier       string
}

func (in SponsorInput) apply(s *sponsor.Sponsor) error {
	tier, err := sponsor.ParseTier(in.Tier)
	if err != nil {
		return err
	}
	s.Name = strings.TrimSpace(in.Name)
	s.LogoURL = strings.TrimSpace(in.LogoURL)
	s.WebsiteURL = strings.TrimSpace(in.WebsiteURL)
	s.Tier = tier
	return s.Validate()
}

// SponsorDeps holds dependencies for sponsor create, update and delete.
type SponsorDeps struct {
	SponsorStore SponsorStoreForOrchestrator
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteCreateSponsor adds a sponsor at the end of its tier.
// PRE: Tier is one of sponsor.Tiers
// POST: Sponsor persisted with Position equal to the tier's previous size
func ExecuteCreateSponsor(ctx context.Context, input SponsorInput, deps SponsorDeps) (sponsor.Sponsor, error) {
	s := sponsor.Sponsor{ID: deps.GenerateID(), CreatedAt: deps.Now()}
	if err := input.apply(&s); err != nil {
		return sponsor.Sponsor{}, err
	}
	created, err := deps.SponsorStore.Create(ctx, s)
	if err != nil {
		return sponsor.Sponsor{}, err
	}
	slog.Info("sponsor_event", "event", "created", "sponsor_id", created.ID, "tier", created.Tier, "position", created.Position)
	return created, nil
}

// ExecuteUpdateSponsor edits a sponsor; a tier change moves it to the end of the new tier.
// PRE: id names an existing sponsor
// POST: Returns the stored sponsor
func ExecuteUpdateSponsor(ctx context.Context, id string, input SponsorInput, deps SponsorDeps) (sponsor.Sponsor, error) {
	s, err := deps.SponsorStore.GetByID(ctx, id)
	if err != nil {
		return sponsor.Sponsor{}, err
	}
	from := s.Tier
	if err := input.apply(&s); err != nil {
		return sponsor.Sponsor{}, err
	}
	updated, err := deps.SponsorStore.Update(ctx, s)
	if err != nil {
		return sponsor.Sponsor{}, err
	}
	slog.Info("sponsor_event", "event", "updated", "sponsor_id", id, "from_tier", from, "tier", updated.Tier)
	return updated, nil
}

// ExecuteDeleteSponsor removes a sponsor and compacts its tier.
func ExecuteDeleteSponsor(ctx context.Context, id string, deps SponsorDeps) error {
	if err := deps.SponsorStore.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("sponsor_event", "event", "deleted", "sponsor_id", id)
	return nil
}

// ReorderSponsorsInput carries the full new order of one tier.
type ReorderSponsorsInput struct {
	Tier       string
	Version    int64
	SponsorIDs []string
	Actor      string
}

// ReorderSponsorsResult carries the tier's version after the write.
type ReorderSponsorsResult struct {
	Tier    sponsor.Tier `json:"tier"`
	Version int64        `json:"version"`
}

// ReorderSponsorsDeps holds dependencies for ReorderSponsors.
type ReorderSponsorsDeps struct {
	SponsorStore SponsorStoreForOrchestrator
}

// ExecuteReorderSponsors replaces the order of one tier atomically.
// PRE: SponsorIDs lists every sponsor of Tier exactly once; Version is the version the client read
// POST: positions follow SponsorIDs as 0..N-1, or nothing changes.
// Returns storage.ErrConflict for a stale version, sponsor.ErrOrderMismatch for a bad list.
func ExecuteReorderSponsors(ctx context.Context, input ReorderSponsorsInput, deps ReorderSponsorsDeps) (ReorderSponsorsResult, error) {
	tier, err := sponsor.ParseTier(input.Tier)
	if err != nil {
		return ReorderSponsorsResult{}, err
	}
	version, err := deps.SponsorStore.Reorder(ctx, tier, input.Version, input.SponsorIDs)
	if err != nil {
		slog.Warn("sponsor_event", "event", "reorder_rejected", "tier", tier, "version", input.Version, "actor", input.Actor, "error", err)
		return ReorderSponsorsResult{}, err
	}
	slog.Info("sponsor_event", "event", "reordered", "tier", tier, "version", version, "count", len(input.SponsorIDs), "actor", input.Actor)
	return ReorderSponsorsResult{Tier: tier, Version: version}, nil
}
