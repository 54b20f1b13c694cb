package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// NoopSender logs sends without delivering them. Used when no Resend key is configured.
type NoopSender struct{}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the email but does not deliver it.
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	slog.Info("noop_email_send", "category", req.Category, "recipients", len(req.To), "subject", req.Subject)
	return SendResult{MessageID: fmt.Sprintf("noop-%d", time.Now().UnixNano()), SentAt: time.Now()}, nil
}

// SendBatch logs the batch but does not deliver.
func (s *NoopSender) SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error) {
	results := make([]SendResult, 0, len(reqs))
	for _, req := range reqs {
		res, _ := s.Send(ctx, req)
		results = append(results, res)
	}
	return results, nil
}

// MemorySender records every request in memory. Err, when set, fails every call.
type MemorySender struct {
	mu   sync.Mutex
	Err  error
	sent []SendRequest
}

// Send records req.
func (s *MemorySender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return SendResult{}, s.Err
	}
	s.sent = append(s.sent, req)
	return SendResult{MessageID: fmt.Sprintf("mem-%d", len(s.sent)), SentAt: time.Now()}, nil
}

// SendBatch records each request in order.
func (s *MemorySender) SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error) {
	results := make([]SendResult, 0, len(reqs))
	for _, req := range reqs {
		res, err := s.Send(ctx, req)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Sent returns a copy of the recorded requests.
func (s *MemorySender) Sent() []SendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SendRequest, len(s.sent))
	copy(out, s.sent)
	return out
}
