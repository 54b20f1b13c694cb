package email

import (
	"context"
	"time"
)

// Message categories, sent to the provider as a tag so deliveries can be filtered.
const (
	CategoryRegistration = "registration_confirmation"
	CategoryPitchReceipt = "pitch_receipt"
	CategoryPitchReview  = "pitch_review"
	CategoryNewsletter   = "newsletter"
)

// SendRequest contains the data needed to send an email via an external provider.
type SendRequest struct {
	To       []string // Recipient email addresses
	From     string   // Sender address; empty uses the sender's default
	Subject  string
	HTML     string
	Text     string // Plain-text alternative
	ReplyTo  string
	Category string
}

// SendResult contains the response from the email provider.
type SendResult struct {
	MessageID string    // Provider's message ID for tracking
	SentAt    time.Time // When the send was accepted
}

// Sender is the interface for sending emails via an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
	SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error)
}
