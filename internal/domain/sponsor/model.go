package sponsor

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Tier is a sponsorship level. Tiers display in the order of Tiers.
type Tier string

// Tier constants
const (
	TierPlatinum  Tier = "platinum"
	TierGold      Tier = "gold"
	TierSilver    Tier = "silver"
	TierBronze    Tier = "bronze"
	TierCommunity Tier = "community"
)

// Tiers lists every tier from most to least prominent.
var Tiers = []Tier{TierPlatinum, TierGold, TierSilver, TierBronze, TierCommunity}

// MaxNameLength bounds sponsor names.
const MaxNameLength = 120

// Domain errors
var (
	ErrEmptyName      = errors.New("sponsor name cannot be empty")
	ErrNameTooLong    = errors.New("sponsor name cannot exceed 120 characters")
	ErrInvalidTier    = errors.New("tier must be one of: platinum, gold, silver, bronze, community")
	ErrInvalidWebsite = errors.New("website must be an http(s) URL")
	ErrIndexRange     = errors.New("index out of range")
	ErrOrderMismatch  = errors.New("order must list every sponsor in the tier exactly once")
	ErrBadPositions   = errors.New("positions are not a permutation of 0..N-1")
)

// ParseTier converts user input into a Tier.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if t.Rank() < 0 {
		return "", ErrInvalidTier
	}
	return t, nil
}

// Rank returns the display rank of the tier, or -1 when the tier is unknown.
func (t Tier) Rank() int {
	for i, known := range Tiers {
		if t == known {
			return i
		}
	}
	return -1
}

// Sponsor is one sponsor card, ranked by Position inside its Tier.
type Sponsor struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	LogoURL    string    `json:"logo_url"`
	WebsiteURL string    `json:"website_url"`
	Tier       Tier      `json:"tier"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks if the Sponsor has valid data.
// PRE: Sponsor struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Sponsor) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if len(s.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if s.Tier.Rank() < 0 {
		return ErrInvalidTier
	}
	if s.WebsiteURL != "" {
		u, err := url.Parse(s.WebsiteURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidWebsite
		}
	}
	return nil
}

// Move returns a copy of seq with the element at from removed and reinserted at to.
// PRE: 0 <= from, to < len(seq)
// POST: seq is not modified; result has the same length
func Move[T any](seq []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(seq) || to < 0 || to >= len(seq) {
		return nil, ErrIndexRange
	}
	out := make([]T, 0, len(seq))
	item := seq[from]
	for i, v := range seq {
		if i != from {
			out = append(out, v)
		}
	}
	out = append(out[:to], append([]T{item}, out[to:]...)...)
	return out, nil
}

// Renumber assigns positions 0..N-1 following slice order.
func Renumber(seq []Sponsor) {
	for i := range seq {
		seq[i].Position = i
	}
}

// ApplyOrder rearranges a tier's sponsors to match ids and renumbers them.
// PRE: current holds every sponsor in one tier
// POST: returns ErrOrderMismatch unless ids is a permutation of current's ids
func ApplyOrder(current []Sponsor, ids []string) ([]Sponsor, error) {
	if len(ids) != len(current) {
		return nil, ErrOrderMismatch
	}
	byID := make(map[string]Sponsor, len(current))
	for _, s := range current {
		byID[s.ID] = s
	}
	out := make([]Sponsor, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, ErrOrderMismatch
		}
		delete(byID, id)
		out = append(out, s)
	}
	Renumber(out)
	return out, nil
}

// CheckPositions verifies that positions form exactly {0, ..., N-1}.
func CheckPositions(seq []Sponsor) error {
	seen := make([]bool, len(seq))
	for _, s := range seq {
		if s.Position < 0 || s.Position >= len(seq) || seen[s.Position] {
			return fmt.Errorf("%w: sponsor %s at %d", ErrBadPositions, s.ID, s.Position)
		}
		seen[s.Position] = true
	}
	return nil
}

// TierGroup is the ordered sponsor list of one tier together with its version.
type TierGroup struct {
	Tier     Tier      `json:"tier"`
	Version  int64     `json:"version"`
	Sponsors []Sponsor `json:"sponsors"`
}

// Group buckets sponsors by tier in display order, each bucket sorted by position.
// Every tier is present, even when empty.
func Group(all []Sponsor, versions map[Tier]int64) []TierGroup {
	groups := make([]TierGroup, len(Tiers))
	for i, t := range Tiers {
		groups[i] = TierGroup{Tier: t, Version: versions[t], Sponsors: []Sponsor{}}
	}
	for _, s := range all {
		if r := s.Tier.Rank(); r >= 0 {
			groups[r].Sponsors = append(groups[r].Sponsors, s)
		}
	}
	for i := range groups {
		seq := groups[i].Sponsors
		sort.SliceStable(seq, func(a, b int) bool { return seq[a].Position < seq[b].Position })
	}
	return groups
}

// IDs returns the ids of seq in order.
func IDs(seq []Sponsor) []string {
	ids := make([]string, len(seq))
	for i, s := range seq {
		ids[i] = s.ID
	}
	return ids
}
