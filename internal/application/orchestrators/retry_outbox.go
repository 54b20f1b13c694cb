package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "techday/internal/adapters/email"
	domain "techday/internal/domain/outbox"
)

// OutboxProcessor retries queued mail with exponential backoff.
type OutboxProcessor struct {
	store     OutboxStoreForOrchestrator
	sender    emailAdapter.Sender
	now       func() time.Time
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
}

// NewOutboxProcessor creates a processor. sender must be the raw provider, not a QueueingSender.
func NewOutboxProcessor(store OutboxStoreForOrchestrator, sender emailAdapter.Sender, now func() time.Time) *OutboxProcessor {
	if now == nil {
		now = time.Now
	}
	return &OutboxProcessor{
		store:     store,
		sender:    sender,
		now:       now,
		baseDelay: DefaultRetryBaseDelay,
		maxDelay:  time.Hour,
		batchSize: 20,
	}
}

// OutboxRunResult counts one pass over the queue.
type OutboxRunResult struct {
	Attempted int
	Delivered int
}

// ProcessDue attempts every entry whose retry time has come.
// PRE: Context is valid
// POST: Each attempted entry is saved with its new status
func (p *OutboxProcessor) ProcessDue(ctx context.Context) (OutboxRunResult, error) {
	var res OutboxRunResult
	entries, err := p.store.ListDue(ctx, p.now(), p.batchSize)
	if err != nil {
		return res, fmt.Errorf("list due outbox entries: %w", err)
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		res.Attempted++
		entry, err := p.attempt(ctx, entry)
		if err != nil {
			return res, err
		}
		if entry.Status == domain.StatusDone {
			res.Delivered++
		}
	}
	if res.Attempted > 0 {
		slog.Info("email_event", "event", "outbox_pass", "attempted", res.Attempted, "delivered", res.Delivered)
	}
	return res, nil
}

// Retry attempts one entry now, ignoring its backoff. Exhausted entries get one more try.
// PRE: entryID is non-empty
// POST: Entry is saved with its new status; domain.ErrTerminal for delivered or abandoned entries
func (p *OutboxProcessor) Retry(ctx context.Context, entryID string) (domain.Entry, error) {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return domain.Entry{}, err
	}
	if entry.IsTerminal() {
		return entry, domain.ErrTerminal
	}
	if entry.Attempts >= entry.MaxAttempts {
		entry.MaxAttempts = entry.Attempts + 1
	}
	return p.attempt(ctx, entry)
}

// Abandon stops retries for an entry.
// PRE: entryID is non-empty
// POST: Entry status set to abandoned
func (p *OutboxProcessor) Abandon(ctx context.Context, entryID string) (domain.Entry, error) {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return domain.Entry{}, err
	}
	if err := entry.Abandon(); err != nil {
		return entry, err
	}
	if err := p.store.Save(ctx, entry); err != nil {
		return domain.Entry{}, err
	}
	slog.Info("email_event", "event", "outbox_abandoned", "entry_id", entry.ID)
	return entry, nil
}

// attempt sends entry once and persists the outcome. Only storage errors are returned.
func (p *OutboxProcessor) attempt(ctx context.Context, entry domain.Entry) (domain.Entry, error) {
	var req emailAdapter.SendRequest
	if err := json.Unmarshal([]byte(entry.Payload), &req); err != nil {
		// A payload that cannot be decoded will never succeed.
		entry.MaxAttempts = entry.Attempts + 1
		entry.RecordFailure(fmt.Errorf("decode payload: %w", err), p.now(), p.baseDelay, p.maxDelay)
		return entry, p.store.Save(ctx, entry)
	}

	res, err := p.sender.Send(ctx, req)
	if err != nil {
		entry.RecordFailure(err, p.now(), p.baseDelay, p.maxDelay)
		slog.Warn("email_event", "event", "outbox_attempt_failed", "entry_id", entry.ID,
			"attempt", entry.Attempts, "status", entry.Status, "error", err)
	} else {
		entry.RecordSuccess(res.MessageID, p.now())
		slog.Info("email_event", "event", "outbox_delivered", "entry_id", entry.ID, "attempt", entry.Attempts)
	}
	if err := p.store.Save(ctx, entry); err != nil {
		return entry, fmt.Errorf("save outbox entry %s: %w", entry.ID, err)
	}
	return entry, nil
}

// Run processes the queue every interval until ctx is done.
// PRE: interval > 0
func (p *OutboxProcessor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("email_event", "event", "outbox_worker_stopped")
			return
		case <-ticker.C:
			if _, err := p.ProcessDue(ctx); err != nil && ctx.Err() == nil {
				slog.Error("email_event", "event", "outbox_pass_failed", "error", err)
			}
		}
	}
}
