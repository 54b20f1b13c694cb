package projections

import (
	"context"

	scheduleStore "techday/internal/adapters/storage/schedule"
	"techday/internal/domain/schedule"
	"techday/internal/domain/speaker"
	"techday/internal/domain/sponsor"
)

// SpeakerStore interface for speaker queries.
type SpeakerStore interface {
	List(ctx context.Context) ([]speaker.Speaker, error)
}

// SponsorStore interface for sponsor queries.
type SponsorStore interface {
	List(ctx context.Context) ([]sponsor.Sponsor, error)
	Versions(ctx context.Context) (map[sponsor.Tier]int64, error)
}

// ScheduleStore interface for agenda queries.
type ScheduleStore interface {
	List(ctx context.Context, filter scheduleStore.ListFilter) ([]schedule.Session, error)
}
