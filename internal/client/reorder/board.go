// Package reorder keeps the admin sponsor board and persists drag reorders optimistically.
//
// A drop is applied and rendered locally before the server sees it. Each tier has at
// most one reorder request in flight; drops made meanwhile are folded into one follow-up
// request carrying the latest order. Any failed request, a stale version included,
// throws the local board away and reloads it from the server.
package reorder

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"techday/internal/client/api"
	"techday/internal/domain/sponsor"
)

// Phase is the step of the most recent drag gesture.
type Phase int

// Drag phases
const (
	Idle Phase = iota
	Dragging
	HoverTarget
	Dropped
	PersistPending
	PersistConfirmed
	PersistFailed
)

var phaseNames = [...]string{"idle", "dragging", "hover_target", "dropped", "persist_pending", "persist_confirmed", "persist_failed"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// Errors returned by gesture operations.
var (
	ErrUnknownTier = errors.New("tier is not on the board")
	ErrNotLoaded   = errors.New("board has not been loaded")
	ErrStale       = errors.New("tier is out of date, reload the board")
)

// reloadAttempts bounds the refetch after a failed persist.
const reloadAttempts = 2

// API is the part of the HTTP client the board needs.
type API interface {
	SponsorBoard(ctx context.Context) ([]sponsor.TierGroup, error)
	ReorderSponsors(ctx context.Context, tier sponsor.Tier, version int64, ids []string) (int64, error)
}

type drag struct {
	tier   sponsor.Tier
	from   int
	target int // -1 until a valid hover
}

type tierState struct {
	group    sponsor.TierGroup
	inFlight bool
	pending  bool
	stale    bool // a failed persist could not be followed by a refetch
}

// Board is the client copy of the sponsor board. Safe for concurrent use.
type Board struct {
	api      API
	ctx      context.Context
	onChange func([]sponsor.TierGroup)

	mu     sync.Mutex
	tiers  map[sponsor.Tier]*tierState
	drag   *drag
	phase  Phase
	loaded bool

	wg sync.WaitGroup
}

// Option configures a Board.
type Option func(*Board)

// OnChange registers fn to receive the full board after every local or server change.
// fn runs without the board lock held.
func OnChange(fn func([]sponsor.TierGroup)) Option {
	return func(b *Board) { b.onChange = fn }
}

// NewBoard creates an empty board. ctx bounds every background request.
func NewBoard(ctx context.Context, client API, opts ...Option) *Board {
	b := &Board{api: client, ctx: ctx, tiers: make(map[sponsor.Tier]*tierState)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load replaces the board with the server's. Tiers with a reorder in flight keep
// their local order; the request settles them when it returns.
func (b *Board) Load(ctx context.Context) error {
	groups, err := b.api.SponsorBoard(ctx)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.replaceLocked(groups)
	b.mu.Unlock()
	b.render()
	return nil
}

// Groups returns a copy of every tier in display order.
func (b *Board) Groups() []sponsor.TierGroup {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.groupsLocked()
}

// Tier returns a copy of one tier.
func (b *Board) Tier(t sponsor.Tier) (sponsor.TierGroup, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ts, ok := b.tiers[t]
	if !ok {
		return sponsor.TierGroup{}, false
	}
	return copyGroup(ts.group), true
}

// Stale reports whether tier shows an order the server rejected and could not be refetched.
func (b *Board) Stale(t sponsor.Tier) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	ts, ok := b.tiers[t]
	return ok && ts.stale
}

// Phase returns the step of the last gesture.
func (b *Board) Phase() Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase
}

// Saving reports whether any reorder is waiting on the server. Drives the "saving order..." hint.
func (b *Board) Saving() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ts := range b.tiers {
		if ts.inFlight {
			return true
		}
	}
	return false
}

// BeginDrag starts a gesture on the sponsor at index of tier.
func (b *Board) BeginDrag(tier sponsor.Tier, index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.loaded {
		return ErrNotLoaded
	}
	ts, ok := b.tiers[tier]
	if !ok {
		return ErrUnknownTier
	}
	if ts.stale {
		return ErrStale
	}
	if index < 0 || index >= len(ts.group.Sponsors) {
		return sponsor.ErrIndexRange
	}
	b.drag = &drag{tier: tier, from: index, target: -1}
	b.phase = Dragging
	return nil
}

// HoverOver reports whether index of tier is a valid drop target for the current drag.
// Only positions in the drag's own tier qualify.
func (b *Board) HoverOver(tier sponsor.Tier, index int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := b.drag
	if d == nil {
		return false
	}
	if tier != d.tier || index < 0 || index >= len(b.tiers[tier].group.Sponsors) {
		d.target = -1
		b.phase = Dragging
		return false
	}
	d.target = index
	b.phase = HoverTarget
	return true
}

// CancelDrag abandons the current gesture.
func (b *Board) CancelDrag() {
	b.mu.Lock()
	b.drag = nil
	b.phase = Idle
	b.mu.Unlock()
}

// DropAt finishes the gesture at targetIndex of tier.
// A drop on another tier or on the source index changes nothing and returns false.
// Otherwise the new order is rendered at once and persisted in the background.
func (b *Board) DropAt(tier sponsor.Tier, targetIndex int) bool {
	b.mu.Lock()
	d := b.drag
	b.drag = nil
	if d == nil || d.tier != tier || d.from == targetIndex {
		b.phase = Idle
		b.mu.Unlock()
		return false
	}
	ts := b.tiers[tier]
	moved, err := sponsor.Move(ts.group.Sponsors, d.from, targetIndex)
	if err != nil {
		b.phase = Idle
		b.mu.Unlock()
		return false
	}
	sponsor.Renumber(moved)
	ts.group.Sponsors = moved
	b.phase = Dropped
	b.mu.Unlock()

	b.render()
	b.PersistOrder(tier)
	return true
}

// PersistOrder sends the tier's current local order to the server.
// While a request for the tier is in flight the call only marks the tier dirty;
// the running request follows up with the latest order when it returns.
func (b *Board) PersistOrder(tier sponsor.Tier) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ts, ok := b.tiers[tier]
	if !ok || ts.stale {
		return
	}
	b.phase = PersistPending
	if ts.inFlight {
		ts.pending = true
		return
	}
	ts.inFlight = true
	b.wg.Add(1)
	go b.persist(tier, ts)
}

// Wait blocks until no request or reload started by the board is running.
func (b *Board) Wait() {
	b.wg.Wait()
}

func (b *Board) persist(tier sponsor.Tier, ts *tierState) {
	defer b.wg.Done()
	for {
		b.mu.Lock()
		ids := sponsor.IDs(ts.group.Sponsors)
		version := ts.group.Version
		ts.pending = false
		b.mu.Unlock()

		newVersion, err := b.api.ReorderSponsors(b.ctx, tier, version, ids)

		b.mu.Lock()
		if err != nil {
			ts.inFlight = false
			ts.pending = false
			b.phase = PersistFailed
			b.mu.Unlock()
			slog.Warn("sponsor_event", "event", "reorder_persist_failed", "tier", tier,
				"version", version, "conflict", api.IsStatus(err, http.StatusConflict), "error", err)
			b.reload(tier)
			return
		}
		ts.group.Version = newVersion
		if !ts.pending {
			ts.inFlight = false
			b.phase = PersistConfirmed
			b.mu.Unlock()
			slog.Debug("sponsor_event", "event", "reorder_persisted", "tier", tier, "version", newVersion)
			return
		}
		b.mu.Unlock()
	}
}

// reload discards local state for every idle tier and takes the server's after the
// persist of failed was rejected. If the board cannot be fetched, failed is marked stale
// and refuses new drags until the next Load.
func (b *Board) reload(failed sponsor.Tier) {
	var groups []sponsor.TierGroup
	var err error
	for range reloadAttempts {
		if groups, err = b.api.SponsorBoard(b.ctx); err == nil {
			break
		}
	}
	if err != nil {
		b.mu.Lock()
		if ts, ok := b.tiers[failed]; ok && !ts.inFlight {
			ts.stale = true
		}
		b.mu.Unlock()
		slog.Error("sponsor_event", "event", "board_reload_failed", "tier", failed, "error", err)
		b.render()
		return
	}
	b.mu.Lock()
	b.replaceLocked(groups)
	b.mu.Unlock()
	b.render()
}

// replaceLocked installs groups. Tiers that still have a request running keep their
// local order; that request reconciles them when it returns.
func (b *Board) replaceLocked(groups []sponsor.TierGroup) {
	seen := make(map[sponsor.Tier]bool, len(groups))
	for _, g := range groups {
		seen[g.Tier] = true
		ts, ok := b.tiers[g.Tier]
		if !ok {
			b.tiers[g.Tier] = &tierState{group: copyGroup(g)}
			continue
		}
		if ts.inFlight {
			continue
		}
		ts.group = copyGroup(g)
		ts.stale = false
	}
	for t, ts := range b.tiers {
		if !seen[t] && !ts.inFlight {
			delete(b.tiers, t)
		}
	}
	if b.drag != nil {
		b.drag = nil
		if b.phase == Dragging || b.phase == HoverTarget {
			b.phase = Idle
		}
	}
	b.loaded = true
}

func (b *Board) groupsLocked() []sponsor.TierGroup {
	out := make([]sponsor.TierGroup, 0, len(b.tiers))
	for _, t := range sponsor.Tiers {
		if ts, ok := b.tiers[t]; ok {
			out = append(out, copyGroup(ts.group))
		}
	}
	return out
}

func (b *Board) render() {
	if b.onChange == nil {
		return
	}
	b.onChange(b.Groups())
}

func copyGroup(g sponsor.TierGroup) sponsor.TierGroup {
	g.Sponsors = append([]sponsor.Sponsor{}, g.Sponsors...)
	return g
}
