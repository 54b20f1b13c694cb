package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"techday/internal/adapters/storage"
	"techday/internal/domain/schedule"
	"techday/internal/domain/speaker"
	"techday/internal/domain/sponsor"
)

// SeedContent is the YAML document accepted by `techday seed`.
type SeedContent struct {
	Sponsors []SeedSponsor `yaml:"sponsors"`
	Speakers []speakerYAML `yaml:"speakers"`
	Sessions []sessionYAML `yaml:"sessions"`
}

// SeedSponsor is one sponsor entry; list order within a tier is the display order.
type SeedSponsor struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Tier       string `yaml:"tier"`
	LogoURL    string `yaml:"logo_url"`
	WebsiteURL string `yaml:"website_url"`
}

type speakerYAML struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Title     string `yaml:"title"`
	Company   string `yaml:"company"`
	Bio       string `yaml:"bio"`
	PhotoURL  string `yaml:"photo_url"`
	SortOrder int    `yaml:"sort_order"`
	Featured  bool   `yaml:"featured"`
}

type sessionYAML struct {
	ID        string    `yaml:"id"`
	Title     string    `yaml:"title"`
	Abstract  string    `yaml:"abstract"`
	Kind      string    `yaml:"kind"`
	SpeakerID string    `yaml:"speaker"`
	Track     string    `yaml:"track"`
	Room      string    `yaml:"room"`
	StartsAt  time.Time `yaml:"starts_at"`
	EndsAt    time.Time `yaml:"ends_at"`
}

// ParseSeedContent decodes a seed document, rejecting unknown keys.
func ParseSeedContent(data []byte) (SeedContent, error) {
	var doc SeedContent
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return SeedContent{}, fmt.Errorf("parse seed file: %w", err)
	}
	return doc, nil
}

// SeedContentDeps holds dependencies for SeedContent.
type SeedContentDeps struct {
	SponsorStore  SponsorStoreForOrchestrator
	SpeakerStore  SpeakerStoreForOrchestrator
	ScheduleStore ScheduleStoreForOrchestrator
	Now           func() time.Time
}

// SeedContentResult counts what was written.
type SeedContentResult struct {
	Sponsors int
	Speakers int
	Sessions int
}

// ExecuteSeedContent upserts the document's content by id. Running it twice is a no-op.
// PRE: every entry has an id; session speakers appear in the same document or already exist
// POST: entries are written speakers first, then sessions, then sponsors
func ExecuteSeedContent(ctx context.Context, doc SeedContent, deps SeedContentDeps) (SeedContentResult, error) {
	var res SeedContentResult

	for _, in := range doc.Speakers {
		if in.ID == "" {
			return res, fmt.Errorf("speaker %q: id is required", in.Name)
		}
		sp := speaker.Speaker(in)
		if err := sp.Validate(); err != nil {
			return res, fmt.Errorf("speaker %s: %w", in.ID, err)
		}
		if err := deps.SpeakerStore.Save(ctx, sp); err != nil {
			return res, err
		}
		res.Speakers++
	}

	for _, in := range doc.Sessions {
		if in.ID == "" {
			return res, fmt.Errorf("session %q: id is required", in.Title)
		}
		s := schedule.Session(in)
		if err := s.Validate(); err != nil {
			return res, fmt.Errorf("session %s: %w", in.ID, err)
		}
		if err := deps.ScheduleStore.Save(ctx, s); err != nil {
			return res, err
		}
		res.Sessions++
	}

	for _, in := range doc.Sponsors {
		if in.ID == "" {
			return res, fmt.Errorf("sponsor %q: id is required", in.Name)
		}
		input := SponsorInput{Name: in.Name, Tier: in.Tier, LogoURL: in.LogoURL, WebsiteURL: in.WebsiteURL}
		existing, err := deps.SponsorStore.GetByID(ctx, in.ID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			s := sponsor.Sponsor{ID: in.ID, CreatedAt: deps.Now()}
			if err := input.apply(&s); err != nil {
				return res, fmt.Errorf("sponsor %s: %w", in.ID, err)
			}
			if _, err := deps.SponsorStore.Create(ctx, s); err != nil {
				return res, err
			}
		case err != nil:
			return res, err
		default:
			if err := input.apply(&existing); err != nil {
				return res, fmt.Errorf("sponsor %s: %w", in.ID, err)
			}
			if _, err := deps.SponsorStore.Update(ctx, existing); err != nil {
				return res, err
			}
		}
		res.Sponsors++
	}

	slog.Info("content_event", "event", "seeded", "sponsors", res.Sponsors, "speakers", res.Speakers, "sessions", res.Sessions)
	return res, nil
}
