package projections

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	scheduleStore "techday/internal/adapters/storage/schedule"
	"techday/internal/application/markdown"
	"techday/internal/domain/schedule"
	"techday/internal/domain/speaker"
	"techday/internal/domain/sponsor"
)

// GetPublicSiteDeps holds dependencies for the public site projection.
type GetPublicSiteDeps struct {
	SpeakerStore  SpeakerStore
	SponsorStore  SponsorStore
	ScheduleStore ScheduleStore
}

// PublicSpeaker is a speaker card with the bio rendered to HTML.
type PublicSpeaker struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	BioHTML  string `json:"bio_html"`
	PhotoURL string `json:"photo_url"`
	Featured bool   `json:"featured"`
}

// PublicSponsor is a sponsor logo link.
type PublicSponsor struct {
	Name       string `json:"name"`
	LogoURL    string `json:"logo_url"`
	WebsiteURL string `json:"website_url"`
}

// PublicSponsorTier is one non-empty tier in display order.
type PublicSponsorTier struct {
	Tier     sponsor.Tier    `json:"tier"`
	Sponsors []PublicSponsor `json:"sponsors"`
}

// PublicSession is an agenda slot with the abstract rendered and the speaker resolved.
type PublicSession struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	AbstractHTML string    `json:"abstract_html"`
	Kind         string    `json:"kind"`
	SpeakerName  string    `json:"speaker_name,omitempty"`
	Track        string    `json:"track"`
	Room         string    `json:"room"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
}

// PublicSite is everything the marketing pages render.
type PublicSite struct {
	Speakers []PublicSpeaker     `json:"speakers"`
	Sponsors []PublicSponsorTier `json:"sponsors"`
	Schedule []PublicSession     `json:"schedule"`
}

// QueryGetPublicSite loads speakers, sponsors and the agenda concurrently.
// PRE: none
// POST: markdown fields are rendered with raw HTML escaped; empty tiers are omitted
func QueryGetPublicSite(ctx context.Context, deps GetPublicSiteDeps) (PublicSite, error) {
	var (
		speakers []speaker.Speaker
		sponsors []sponsor.Sponsor
		sessions []schedule.Session
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		speakers, err = deps.SpeakerStore.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		sponsors, err = deps.SponsorStore.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		sessions, err = deps.ScheduleStore.List(gctx, scheduleStore.ListFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return PublicSite{}, err
	}

	site := PublicSite{
		Speakers: make([]PublicSpeaker, 0, len(speakers)),
		Sponsors: []PublicSponsorTier{},
		Schedule: make([]PublicSession, 0, len(sessions)),
	}
	names := make(map[string]string, len(speakers))
	for _, sp := range speakers {
		names[sp.ID] = sp.Name
		site.Speakers = append(site.Speakers, PublicSpeaker{
			ID:       sp.ID,
			Name:     sp.Name,
			Title:    sp.Title,
			Company:  sp.Company,
			BioHTML:  markdown.RenderOrEscape(sp.Bio),
			PhotoURL: sp.PhotoURL,
			Featured: sp.Featured,
		})
	}

	for _, group := range sponsor.Group(sponsors, nil) {
		if len(group.Sponsors) == 0 {
			continue
		}
		tier := PublicSponsorTier{Tier: group.Tier, Sponsors: make([]PublicSponsor, 0, len(group.Sponsors))}
		for _, s := range group.Sponsors {
			tier.Sponsors = append(tier.Sponsors, PublicSponsor{Name: s.Name, LogoURL: s.LogoURL, WebsiteURL: s.WebsiteURL})
		}
		site.Sponsors = append(site.Sponsors, tier)
	}

	for _, s := range sessions {
		site.Schedule = append(site.Schedule, PublicSession{
			ID:           s.ID,
			Title:        s.Title,
			AbstractHTML: markdown.RenderOrEscape(s.Abstract),
			Kind:         s.Kind,
			SpeakerName:  names[s.SpeakerID],
			Track:        s.Track,
			Room:         s.Room,
			StartsAt:     s.StartsAt,
			EndsAt:       s.EndsAt,
		})
	}
	return site, nil
}
