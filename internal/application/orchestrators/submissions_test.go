package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	emailAdapter "techday/internal/adapters/email"
	"techday/internal/domain/newsletter"
	"techday/internal/domain/pitch"
	"techday/internal/domain/registration"
)

var testEvent = EventInfo{Name: "Tech Day 2026", Date: "20 November 2026", Venue: "Shed 10, Auckland"}

// mockRegistrationStore implements RegistrationStoreForOrchestrator for testing.
type mockRegistrationStore struct {
	byEmail map[string]registration.Registration
}

func (m *mockRegistrationStore) Create(_ context.Context, r registration.Registration) error {
	if _, ok := m.byEmail[r.Email]; ok {
		return registration.ErrDuplicate
	}
	m.byEmail[r.Email] = r
	return nil
}

// mockSubscriberStore implements SubscriberStoreForOrchestrator for testing.
type mockSubscriberStore struct {
	subs []newsletter.Subscriber
}

func (m *mockSubscriberStore) Subscribe(_ context.Context, s newsletter.Subscriber) (newsletter.Subscriber, bool, error) {
	for _, existing := range m.subs {
		if strings.EqualFold(existing.Email, s.Email) {
			return existing, false, nil
		}
	}
	m.subs = append(m.subs, s)
	return s, true, nil
}

func (m *mockSubscriberStore) List(_ context.Context) ([]newsletter.Subscriber, error) {
	return m.subs, nil
}

// mockPitchStore implements PitchStoreForOrchestrator for testing.
type mockPitchStore struct {
	pitches map[string]pitch.Pitch
}

func (m *mockPitchStore) GetByID(_ context.Context, id string) (pitch.Pitch, error) {
	p, ok := m.pitches[id]
	if !ok {
		return pitch.Pitch{}, errors.New("not found")
	}
	return p, nil
}

func (m *mockPitchStore) Save(_ context.Context, p pitch.Pitch) error {
	m.pitches[p.ID] = p
	return nil
}

// TestExecuteRegisterAttendee_Confirmation tests normalisation, opt-in and the confirmation mail.
func TestExecuteRegisterAttendee_Confirmation(t *testing.T) {
	regs := &mockRegistrationStore{byEmail: map[string]registration.Registration{}}
	subs := &mockSubscriberStore{}
	sender := &emailAdapter.MemorySender{}
	deps := RegisterAttendeeDeps{
		RegistrationStore: regs, SubscriberStore: subs, Sender: sender, Event: testEvent,
		GenerateID: sequentialIDs("reg"), Now: fixedNow,
	}

	r, err := ExecuteRegisterAttendee(context.Background(), RegisterAttendeeInput{
		Name: " Ana Ruiz ", Email: "Ana@Example.com", Ticket: "", Newsletter: true,
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Email != "ana@example.com" || r.Ticket != registration.TicketGeneral {
		t.Errorf("registration = %+v", r)
	}
	if len(subs.subs) != 1 || subs.subs[0].Source != "registration" {
		t.Errorf("opt-in subscribers = %+v", subs.subs)
	}

	sent := sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(sent))
	}
	if sent[0].Category != emailAdapter.CategoryRegistration || sent[0].To[0] != "ana@example.com" {
		t.Errorf("mail = %+v", sent[0])
	}
	if !strings.Contains(sent[0].HTML, "<strong>Tech Day 2026</strong>") {
		t.Errorf("HTML not rendered: %s", sent[0].HTML)
	}

	if _, err := ExecuteRegisterAttendee(context.Background(), RegisterAttendeeInput{Name: "Ana", Email: "ana@example.com"}, deps); !errors.Is(err, registration.ErrDuplicate) {
		t.Errorf("duplicate = %v, want ErrDuplicate", err)
	}
}

// TestExecuteRegisterAttendee_MailFailureIgnored tests that provider errors do not fail registration.
func TestExecuteRegisterAttendee_MailFailureIgnored(t *testing.T) {
	sender := &emailAdapter.MemorySender{Err: errors.New("provider down")}
	deps := RegisterAttendeeDeps{
		RegistrationStore: &mockRegistrationStore{byEmail: map[string]registration.Registration{}},
		Sender:            sender, Event: testEvent, GenerateID: fixedID, Now: fixedNow,
	}
	if _, err := ExecuteRegisterAttendee(context.Background(), RegisterAttendeeInput{Name: "Ana", Email: "ana@example.com"}, deps); err != nil {
		t.Errorf("registration failed because of mail: %v", err)
	}
	if _, err := ExecuteRegisterAttendee(context.Background(), RegisterAttendeeInput{Name: "Ana", Email: "nope"}, deps); !errors.Is(err, registration.ErrInvalidEmail) {
		t.Errorf("bad email = %v", err)
	}
}

// TestExecuteReviewPitch tests the review lifecycle and founder notification.
func TestExecuteReviewPitch(t *testing.T) {
	store := &mockPitchStore{pitches: map[string]pitch.Pitch{}}
	sender := &emailAdapter.MemorySender{}
	deps := PitchDeps{PitchStore: store, Sender: sender, Event: testEvent, GenerateID: fixedID, Now: fixedNow}
	ctx := context.Background()

	p, err := ExecuteSubmitPitch(ctx, SubmitPitchInput{
		Startup: "Fuelcell", Founder: "Ana Ruiz", Email: "Ana@Fuelcell.example", Stage: "Seed",
		DeckURL: "https://deck.example/fuelcell", Summary: "Batteries for **everyone**",
	}, deps)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if p.Status != pitch.StatusSubmitted || p.Stage != pitch.StageSeed {
		t.Errorf("pitch = %+v", p)
	}

	if _, err := ExecuteReviewPitch(ctx, ReviewPitchInput{PitchID: p.ID, Decision: "shortlisted", Reviewer: "ops@techday.example"}, deps); err != nil {
		t.Fatalf("shortlist: %v", err)
	}
	if n := len(sender.Sent()); n != 1 {
		t.Errorf("shortlisting sent mail: %d messages", n)
	}

	approved, err := ExecuteReviewPitch(ctx, ReviewPitchInput{PitchID: p.ID, Decision: "Approved", Notes: "great", Reviewer: "ops@techday.example"}, deps)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != pitch.StatusApproved || approved.ReviewedBy != "ops@techday.example" {
		t.Errorf("approved = %+v", approved)
	}
	sent := sender.Sent()
	if len(sent) != 2 || sent[1].Category != emailAdapter.CategoryPitchReview {
		t.Errorf("sent = %+v", sent)
	}

	if _, err := ExecuteReviewPitch(ctx, ReviewPitchInput{PitchID: p.ID, Decision: "rejected"}, deps); !errors.Is(err, pitch.ErrAlreadyDecided) {
		t.Errorf("re-review = %v, want ErrAlreadyDecided", err)
	}
	if _, err := ExecuteReviewPitch(ctx, ReviewPitchInput{PitchID: p.ID, Decision: "maybe"}, deps); !errors.Is(err, pitch.ErrInvalidDecision) {
		t.Errorf("bad decision = %v, want ErrInvalidDecision", err)
	}
}

// TestExecuteBroadcastNewsletter tests one message per subscriber and partial failure reporting.
func TestExecuteBroadcastNewsletter(t *testing.T) {
	subs := &mockSubscriberStore{}
	sender := &emailAdapter.MemorySender{}
	deps := NewsletterDeps{SubscriberStore: subs, Sender: sender, GenerateID: sequentialIDs("sub"), Now: fixedNow}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, _, err := ExecuteSubscribeNewsletter(ctx, fmt.Sprintf("Reader%d@Example.com", i), "footer", deps); err != nil {
			t.Fatalf("subscribe: %v", err)
		}
	}
	if _, created, _ := ExecuteSubscribeNewsletter(ctx, "reader0@example.com", "footer", deps); created {
		t.Error("re-subscribe reported created")
	}
	if _, _, err := ExecuteSubscribeNewsletter(ctx, "bad", "footer", deps); !errors.Is(err, newsletter.ErrInvalidEmail) {
		t.Errorf("bad email = %v", err)
	}

	res, err := ExecuteBroadcastNewsletter(ctx, newsletter.Broadcast{Subject: "Speakers announced", Markdown: "Meet our **keynotes**"}, "ops@techday.example", deps)
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if res.Recipients != 3 || res.Sent != 3 {
		t.Errorf("result = %+v", res)
	}
	for _, m := range sender.Sent() {
		if len(m.To) != 1 {
			t.Errorf("message shares recipients: %v", m.To)
		}
		if !strings.Contains(m.HTML, "<strong>keynotes</strong>") {
			t.Errorf("HTML = %s", m.HTML)
		}
	}

	sender.Err = errors.New("provider down")
	res, err = ExecuteBroadcastNewsletter(ctx, newsletter.Broadcast{Subject: "Again", Markdown: "x"}, "ops", deps)
	if err == nil || res.Sent != 0 || res.Recipients != 3 {
		t.Errorf("failed broadcast = %+v, %v", res, err)
	}

	if _, err := ExecuteBroadcastNewsletter(ctx, newsletter.Broadcast{Subject: "", Markdown: "x"}, "ops", deps); !errors.Is(err, newsletter.ErrEmptySubject) {
		t.Errorf("empty subject = %v", err)
	}
}
