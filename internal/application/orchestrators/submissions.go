package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	emailAdapter "techday/internal/adapters/email"
	"techday/internal/application/markdown"
	"techday/internal/domain/newsletter"
	"techday/internal/domain/pitch"
	"techday/internal/domain/registration"
)

// RegistrationStoreForOrchestrator defines the store interface needed by RegisterAttendee.
type RegistrationStoreForOrchestrator interface {
	Create(ctx context.Context, r registration.Registration) error
}

// SubscriberStoreForOrchestrator defines the store interface needed by newsletter orchestrators.
type SubscriberStoreForOrchestrator interface {
	Subscribe(ctx context.Context, s newsletter.Subscriber) (newsletter.Subscriber, bool, error)
	List(ctx context.Context) ([]newsletter.Subscriber, error)
}

// PitchStoreForOrchestrator defines the store interface needed by pitch orchestrators.
type PitchStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (pitch.Pitch, error)
	Save(ctx context.Context, p pitch.Pitch) error
}

// EventInfo names the event in outgoing mail.
type EventInfo struct {
	Name  string // e.g. "Tech Day 2026"
	Date  string // human readable
	Venue string
}

// sendBestEffort delivers req and logs failures; mail problems never fail the caller.
func sendBestEffort(ctx context.Context, sender emailAdapter.Sender, req emailAdapter.SendRequest) {
	if sender == nil {
		return
	}
	if _, err := sender.Send(ctx, req); err != nil {
		slog.Warn("email_event", "event", "send_failed", "category", req.Category, "error", err)
	}
}

// --- Register attendee ---

// RegisterAttendeeInput carries a public registration form.
type RegisterAttendeeInput struct {
	Name       string
	Email      string
	Company    string
	JobTitle   string
	Ticket     string
	Newsletter bool // opt-in checkbox
}

// RegisterAttendeeDeps holds dependencies for RegisterAttendee.
type RegisterAttendeeDeps struct {
	RegistrationStore RegistrationStoreForOrchestrator
	SubscriberStore   SubscriberStoreForOrchestrator
	Sender            emailAdapter.Sender
	Event             EventInfo
	GenerateID        func() string
	Now               func() time.Time
}

// ExecuteRegisterAttendee records a registration and sends a confirmation.
// PRE: none; input is validated here
// POST: registration.ErrDuplicate if the email already registered
func ExecuteRegisterAttendee(ctx context.Context, input RegisterAttendeeInput, deps RegisterAttendeeDeps) (registration.Registration, error) {
	now := deps.Now()
	r := registration.Registration{
		ID:        deps.GenerateID(),
		Name:      input.Name,
		Email:     input.Email,
		Company:   input.Company,
		JobTitle:  input.JobTitle,
		Ticket:    input.Ticket,
		CreatedAt: now,
	}
	r.Normalize()
	if err := r.Validate(); err != nil {
		return registration.Registration{}, err
	}
	if err := deps.RegistrationStore.Create(ctx, r); err != nil {
		return registration.Registration{}, err
	}
	slog.Info("registration_event", "event", "registered", "registration_id", r.ID, "ticket", r.Ticket)

	if input.Newsletter && deps.SubscriberStore != nil {
		sub := newsletter.Subscriber{ID: deps.GenerateID(), Email: r.Email, Source: "registration", SubscribedAt: now}
		if _, _, err := deps.SubscriberStore.Subscribe(ctx, sub); err != nil {
			slog.Warn("newsletter_event", "event", "opt_in_failed", "error", err)
		}
	}

	body := fmt.Sprintf("Hi %s,\n\nYou're registered for **%s** with a *%s* ticket.\n\n%s, %s\n\nSee you there!",
		firstName(r.Name), deps.Event.Name, r.Ticket, deps.Event.Date, deps.Event.Venue)
	sendBestEffort(ctx, deps.Sender, emailAdapter.SendRequest{
		To:       []string{r.Email},
		Subject:  "You're registered for " + deps.Event.Name,
		HTML:     markdown.RenderOrEscape(body),
		Text:     body,
		Category: emailAdapter.CategoryRegistration,
	})
	return r, nil
}

func firstName(name string) string {
	if f := strings.Fields(name); len(f) > 0 {
		return f[0]
	}
	return name
}

// --- Pitches ---

// SubmitPitchInput carries a public pitch form.
type SubmitPitchInput struct {
	Startup string
	Founder string
	Email   string
	Stage   string
	DeckURL string
	Summary string
}

// PitchDeps holds dependencies for pitch orchestrators.
type PitchDeps struct {
	PitchStore PitchStoreForOrchestrator
	Sender     emailAdapter.Sender
	Event      EventInfo
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteSubmitPitch stores a pitch in the submitted state and sends a receipt.
func ExecuteSubmitPitch(ctx context.Context, input SubmitPitchInput, deps PitchDeps) (pitch.Pitch, error) {
	p := pitch.Pitch{
		ID:        deps.GenerateID(),
		Startup:   strings.TrimSpace(input.Startup),
		Founder:   strings.TrimSpace(input.Founder),
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Stage:     strings.ToLower(strings.TrimSpace(input.Stage)),
		DeckURL:   strings.TrimSpace(input.DeckURL),
		Summary:   strings.TrimSpace(input.Summary),
		Status:    pitch.StatusSubmitted,
		CreatedAt: deps.Now(),
	}
	if err := p.Validate(); err != nil {
		return pitch.Pitch{}, err
	}
	if err := deps.PitchStore.Save(ctx, p); err != nil {
		return pitch.Pitch{}, err
	}
	slog.Info("pitch_event", "event", "submitted", "pitch_id", p.ID, "stage", p.Stage)

	body := fmt.Sprintf("Hi %s,\n\nThanks for pitching **%s** at %s. Our panel reviews every submission and will be in touch.",
		firstName(p.Founder), p.Startup, deps.Event.Name)
	sendBestEffort(ctx, deps.Sender, emailAdapter.SendRequest{
		To:       []string{p.Email},
		Subject:  "We received your pitch",
		HTML:     markdown.RenderOrEscape(body),
		Text:     body,
		Category: emailAdapter.CategoryPitchReceipt,
	})
	return p, nil
}

// ReviewPitchInput carries a reviewer decision.
type ReviewPitchInput struct {
	PitchID  string
	Decision string
	Notes    string
	Reviewer string
}

// ExecuteReviewPitch records a decision; final decisions notify the founder.
// POST: pitch.ErrAlreadyDecided once approved or rejected
func ExecuteReviewPitch(ctx context.Context, input ReviewPitchInput, deps PitchDeps) (pitch.Pitch, error) {
	p, err := deps.PitchStore.GetByID(ctx, input.PitchID)
	if err != nil {
		return pitch.Pitch{}, err
	}
	if err := p.Review(strings.ToLower(strings.TrimSpace(input.Decision)), input.Notes, input.Reviewer, deps.Now()); err != nil {
		return pitch.Pitch{}, err
	}
	if err := deps.PitchStore.Save(ctx, p); err != nil {
		return pitch.Pitch{}, err
	}
	slog.Info("pitch_event", "event", "reviewed", "pitch_id", p.ID, "status", p.Status, "reviewer", input.Reviewer)

	if p.IsDecided() {
		var body string
		if p.Status == pitch.StatusApproved {
			body = fmt.Sprintf("Hi %s,\n\n**%s** has been selected to pitch at %s. We'll send stage details soon.", firstName(p.Founder), p.Startup, deps.Event.Name)
		} else {
			body = fmt.Sprintf("Hi %s,\n\nThank you for submitting **%s**. We won't be able to include it in this year's programme.", firstName(p.Founder), p.Startup)
		}
		sendBestEffort(ctx, deps.Sender, emailAdapter.SendRequest{
			To:       []string{p.Email},
			Subject:  "Your " + deps.Event.Name + " pitch",
			HTML:     markdown.RenderOrEscape(body),
			Text:     body,
			Category: emailAdapter.CategoryPitchReview,
		})
	}
	return p, nil
}

// --- Newsletter ---

// NewsletterDeps holds dependencies for newsletter orchestrators.
type NewsletterDeps struct {
	SubscriberStore SubscriberStoreForOrchestrator
	Sender          emailAdapter.Sender
	GenerateID      func() string
	Now             func() time.Time
}

// ExecuteSubscribeNewsletter adds an address to the list.
// POST: idempotent; re-subscribing returns the existing record and false
func ExecuteSubscribeNewsletter(ctx context.Context, email, source string, deps NewsletterDeps) (newsletter.Subscriber, bool, error) {
	sub := newsletter.Subscriber{ID: deps.GenerateID(), Email: email, Source: strings.TrimSpace(source), SubscribedAt: deps.Now()}
	if err := sub.Validate(); err != nil {
		return newsletter.Subscriber{}, false, err
	}
	stored, created, err := deps.SubscriberStore.Subscribe(ctx, sub)
	if err != nil {
		return newsletter.Subscriber{}, false, err
	}
	slog.Info("newsletter_event", "event", "subscribed", "created", created, "source", stored.Source)
	return stored, created, nil
}

// BroadcastResult summarises a newsletter send.
type BroadcastResult struct {
	Recipients int `json:"recipients"`
	Sent       int `json:"sent"`
}

// ExecuteBroadcastNewsletter renders the issue once and sends it to every subscriber,
// one message per recipient so addresses are never shared.
// POST: Sent < Recipients when the provider failed part way
func ExecuteBroadcastNewsletter(ctx context.Context, issue newsletter.Broadcast, sentBy string, deps NewsletterDeps) (BroadcastResult, error) {
	if err := issue.Validate(); err != nil {
		return BroadcastResult{}, err
	}
	html, err := markdown.Render(issue.Markdown)
	if err != nil {
		return BroadcastResult{}, err
	}
	subs, err := deps.SubscriberStore.List(ctx)
	if err != nil {
		return BroadcastResult{}, err
	}

	reqs := make([]emailAdapter.SendRequest, 0, len(subs))
	for _, s := range subs {
		reqs = append(reqs, emailAdapter.SendRequest{
			To:       []string{s.Email},
			Subject:  strings.TrimSpace(issue.Subject),
			HTML:     html,
			Text:     issue.Markdown,
			Category: emailAdapter.CategoryNewsletter,
		})
	}
	res := BroadcastResult{Recipients: len(reqs)}
	if len(reqs) == 0 {
		return res, nil
	}

	results, err := deps.Sender.SendBatch(ctx, reqs)
	res.Sent = len(results)
	slog.Info("newsletter_event", "event", "broadcast", "sent_by", sentBy, "recipients", res.Recipients, "sent", res.Sent)
	if err != nil {
		return res, fmt.Errorf("broadcast: %w", err)
	}
	return res, nil
}
