package newsletter_test

import (
	"errors"
	"testing"

	"techday/internal/domain/newsletter"
)

// TestSubscriber_Validate tests email normalisation.
func TestSubscriber_Validate(t *testing.T) {
	s := newsletter.Subscriber{Email: "  Fan@Example.ORG "}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if s.Email != "fan@example.org" {
		t.Errorf("Email = %q", s.Email)
	}
	bad := newsletter.Subscriber{Email: "fan"}
	if err := bad.Validate(); !errors.Is(err, newsletter.ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
}

// TestBroadcast_Validate tests validation of Broadcast.
func TestBroadcast_Validate(t *testing.T) {
	tests := []struct {
		name    string
		b       newsletter.Broadcast
		wantErr error
	}{
		{"valid", newsletter.Broadcast{Subject: "Speakers announced", Markdown: "# Hello"}, nil},
		{"no subject", newsletter.Broadcast{Markdown: "# Hello"}, newsletter.ErrEmptySubject},
		{"no body", newsletter.Broadcast{Subject: "Hi", Markdown: " "}, newsletter.ErrEmptyBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.b.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
