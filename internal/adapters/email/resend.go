package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// batchSize is the most messages Resend accepts in one batch call.
const batchSize = 100

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	client  *resend.Client
	from    string
	replyTo string
}

// NewResendSender creates a sender with default from and reply-to addresses.
// PRE: apiKey is a valid Resend API key; from is a valid sender address
// POST: Returns a ready-to-use sender
func NewResendSender(apiKey, from, replyTo string) *ResendSender {
	return &ResendSender{
		client:  resend.NewClient(apiKey),
		from:    from,
		replyTo: replyTo,
	}
}

func (s *ResendSender) params(req SendRequest) *resend.SendEmailRequest {
	p := &resend.SendEmailRequest{
		From:    req.From,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
		Text:    req.Text,
		ReplyTo: req.ReplyTo,
	}
	if p.From == "" {
		p.From = s.from
	}
	if p.ReplyTo == "" {
		p.ReplyTo = s.replyTo
	}
	if req.Category != "" {
		p.Tags = []resend.Tag{{Name: "category", Value: req.Category}}
	}
	return p
}

// Send sends a single email via Resend.
// PRE: req has at least one recipient and a subject
// POST: Email is queued for delivery; returns the Resend message ID
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, s.params(req))
	if err != nil {
		slog.Error("resend_send_failed", "error", err, "category", req.Category, "recipients", len(req.To))
		return SendResult{}, fmt.Errorf("resend send failed: %w", err)
	}

	slog.Info("resend_sent", "message_id", sent.Id, "category", req.Category)
	return SendResult{MessageID: sent.Id, SentAt: time.Now()}, nil
}

// SendBatch sends multiple emails via Resend's batch API in chunks of batchSize.
// POST: Results follow request order; on error the results sent so far are returned
func (s *ResendSender) SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error) {
	var allResults []SendResult
	for _, chunk := range Chunk(reqs, batchSize) {
		batchParams := make([]*resend.SendEmailRequest, 0, len(chunk))
		for _, req := range chunk {
			batchParams = append(batchParams, s.params(req))
		}

		resp, err := s.client.Batch.SendWithContext(ctx, batchParams)
		if err != nil {
			slog.Error("resend_batch_failed", "error", err, "batch_size", len(chunk), "sent_so_far", len(allResults))
			return allResults, fmt.Errorf("resend batch send failed: %w", err)
		}
		for _, item := range resp.Data {
			allResults = append(allResults, SendResult{MessageID: item.Id, SentAt: time.Now()})
		}
		slog.Info("resend_batch_sent", "count", len(chunk), "total_sent", len(allResults))
	}
	return allResults, nil
}

// Chunk splits reqs into consecutive groups of at most size.
func Chunk(reqs []SendRequest, size int) [][]SendRequest {
	if size <= 0 {
		size = batchSize
	}
	var out [][]SendRequest
	for i := 0; i < len(reqs); i += size {
		end := min(i+size, len(reqs))
		out = append(out, reqs[i:end])
	}
	return out
}
