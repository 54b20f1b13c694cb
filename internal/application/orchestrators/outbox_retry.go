package orchestrators

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	emailAdapter "techday/internal/adapters/email"
	domainOutbox "techday/internal/domain/outbox"
)

// DefaultRetryBaseDelay is the wait before the first retry of a failed mail.
const DefaultRetryBaseDelay = time.Minute

// OutboxStoreForOrchestrator defines the store interface needed by the mail queue.
type OutboxStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (domainOutbox.Entry, error)
	Save(ctx context.Context, e domainOutbox.Entry) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]domainOutbox.Entry, error)
}

// QueueingSender delivers single messages through Sender and queues failures for retry.
// Batches pass straight through; the broadcast caller reports partial delivery itself.
type QueueingSender struct {
	Sender     emailAdapter.Sender
	Store      OutboxStoreForOrchestrator
	GenerateID func() string
	Now        func() time.Time
}

var _ emailAdapter.Sender = (*QueueingSender)(nil)

// Send tries delivery once. On failure the message is queued and the original error returned.
// POST: a failed send leaves exactly one pending outbox entry
func (q *QueueingSender) Send(ctx context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	res, err := q.Sender.Send(ctx, req)
	if err == nil {
		return res, nil
	}

	payload, mErr := json.Marshal(req)
	if mErr != nil {
		slog.Error("email_event", "event", "queue_marshal_failed", "category", req.Category, "error", mErr)
		return res, err
	}
	entry := domainOutbox.NewEntry(q.GenerateID(), req.Category, string(payload), err, q.Now(), DefaultRetryBaseDelay)
	if sErr := q.Store.Save(ctx, entry); sErr != nil {
		slog.Error("email_event", "event", "queue_failed", "category", req.Category, "error", sErr)
		return res, err
	}
	slog.Info("email_event", "event", "queued_for_retry", "entry_id", entry.ID, "category", req.Category)
	return res, err
}

// SendBatch delegates to the wrapped sender.
func (q *QueueingSender) SendBatch(ctx context.Context, reqs []emailAdapter.SendRequest) ([]emailAdapter.SendResult, error) {
	return q.Sender.SendBatch(ctx, reqs)
}
