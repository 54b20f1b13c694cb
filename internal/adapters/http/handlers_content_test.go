package web

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"techday/internal/application/orchestrators"
	"techday/internal/domain/admin"
)

// grantAll gives the seeded admin every permission and returns a fresh session.
func (ts *testServer) grantAll(t *testing.T) *http.Cookie {
	t.Helper()
	_, _, err := orchestrators.ExecuteProvisionAdmin(context.Background(), orchestrators.ProvisionAdminInput{
		Email:       testEmail,
		Name:        "Ops Team",
		Question:    "Name of the first office dog?",
		Answer:      testAnswer,
		PIN:         testPIN,
		Permissions: admin.AllPermissions,
	}, orchestrators.ProvisionAdminDeps{
		AdminStore:     ts.stores.AdminStore,
		SessionRevoker: ts.stores.SessionStore,
		GenerateID:     generateID,
		Now:            time.Now,
	})
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	return ts.signIn(t)
}

// TestAgenda_SpeakerAndSessionFlow verifies agenda admin and its public rendering.
func TestAgenda_SpeakerAndSessionFlow(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.grantAll(t)

	rr := ts.do(t, http.MethodPost, "/api/admin/speakers", map[string]any{
		"name": "Ana Ruiz", "title": "CTO", "company": "Kite", "bio": "Ships **fast**.", "featured": true,
	}, cookie)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create speaker = %d %s", rr.Code, rr.Body.String())
	}
	spk := decodeBody(t, rr)["speaker"].(map[string]any)["id"].(string)

	start := time.Date(2026, 11, 20, 9, 0, 0, 0, time.UTC)
	session := map[string]any{
		"title": "Opening keynote", "kind": "keynote", "speaker_id": spk, "room": "Main Hall",
		"starts_at": start, "ends_at": start.Add(45 * time.Minute),
	}
	if rr := ts.do(t, http.MethodPost, "/api/admin/schedule", session, cookie); rr.Code != http.StatusCreated {
		t.Fatalf("create session = %d %s", rr.Code, rr.Body.String())
	}

	clash := map[string]any{
		"title": "Overlap", "kind": "talk", "room": "main hall",
		"starts_at": start.Add(30 * time.Minute), "ends_at": start.Add(time.Hour),
	}
	if rr := ts.do(t, http.MethodPost, "/api/admin/schedule", clash, cookie); rr.Code != http.StatusConflict {
		t.Errorf("room clash = %d, want 409", rr.Code)
	}

	ghost := map[string]any{
		"title": "Ghost talk", "kind": "talk", "speaker_id": "nobody",
		"starts_at": start.Add(2 * time.Hour), "ends_at": start.Add(3 * time.Hour),
	}
	if rr := ts.do(t, http.MethodPost, "/api/admin/schedule", ghost, cookie); rr.Code != http.StatusBadRequest {
		t.Errorf("unknown speaker = %d, want 400", rr.Code)
	}

	site := ts.do(t, http.MethodGet, "/api/public/site", nil, nil)
	if site.Code != http.StatusOK {
		t.Fatalf("site = %d", site.Code)
	}
	body := site.Body.String()
	for _, want := range []string{"Ana Ruiz", "\\u003cstrong\\u003efast\\u003c/strong\\u003e", "Opening keynote"} {
		if !strings.Contains(body, want) {
			t.Errorf("site missing %q: %s", want, body)
		}
	}

	if rr := ts.do(t, http.MethodDelete, "/api/admin/speakers/"+spk, nil, cookie); rr.Code != http.StatusOK {
		t.Errorf("delete speaker = %d", rr.Code)
	}
	rr = ts.do(t, http.MethodGet, "/api/admin/schedule", nil, cookie)
	if !strings.Contains(rr.Body.String(), "Opening keynote") {
		t.Errorf("session should survive its speaker: %s", rr.Body.String())
	}
}

// TestRegistration_PublicFlow verifies registration, duplicate rejection and admin paging.
func TestRegistration_PublicFlow(t *testing.T) {
	ts := newTestServer(t)
	reg := map[string]any{"name": "Lee Park", "email": "lee@example.com", "ticket": "student", "newsletter": true}

	if rr := ts.do(t, http.MethodPost, "/api/registrations", reg, nil); rr.Code != http.StatusCreated {
		t.Fatalf("register = %d %s", rr.Code, rr.Body.String())
	}
	reg["email"] = "LEE@example.com"
	if rr := ts.do(t, http.MethodPost, "/api/registrations", reg, nil); rr.Code != http.StatusConflict {
		t.Errorf("duplicate = %d, want 409", rr.Code)
	}
	if rr := ts.do(t, http.MethodPost, "/api/registrations", map[string]any{"name": "x", "email": "bad", "ticket": "general"}, nil); rr.Code != http.StatusBadRequest {
		t.Errorf("bad email = %d, want 400", rr.Code)
	}
	if len(ts.sender.Sent()) != 1 {
		t.Errorf("confirmation emails = %d, want 1", len(ts.sender.Sent()))
	}

	cookie := ts.grantAll(t)
	rr := ts.do(t, http.MethodGet, "/api/admin/registrations?ticket=student&per_page=10", nil, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("list = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if regs := body["registrations"].([]any); len(regs) != 1 {
		t.Errorf("registrations = %d, want 1", len(regs))
	}
	if page := body["page"].(map[string]any); page["total"].(float64) != 1 {
		t.Errorf("page = %v", page)
	}

	// opted in at registration
	rr = ts.do(t, http.MethodGet, "/api/admin/newsletter", nil, cookie)
	if decodeBody(t, rr)["count"].(float64) != 1 {
		t.Errorf("subscribers = %s", rr.Body.String())
	}
}

// TestNewsletter_SubscribeIsIdempotent verifies repeat subscriptions are accepted quietly.
func TestNewsletter_SubscribeIsIdempotent(t *testing.T) {
	ts := newTestServer(t)
	if rr := ts.do(t, http.MethodPost, "/api/newsletter", map[string]string{"email": "a@example.com"}, nil); rr.Code != http.StatusCreated {
		t.Errorf("first = %d, want 201", rr.Code)
	}
	if rr := ts.do(t, http.MethodPost, "/api/newsletter", map[string]string{"email": "A@Example.com"}, nil); rr.Code != http.StatusOK {
		t.Errorf("repeat = %d, want 200", rr.Code)
	}
	if rr := ts.do(t, http.MethodPost, "/api/newsletter", `not json`, nil); rr.Code != http.StatusBadRequest {
		t.Errorf("garbage = %d, want 400", rr.Code)
	}
}

// TestNewsletter_Broadcast verifies one message per subscriber.
func TestNewsletter_Broadcast(t *testing.T) {
	ts := newTestServer(t)
	for _, e := range []string{"a@example.com", "b@example.com"} {
		ts.do(t, http.MethodPost, "/api/newsletter", map[string]string{"email": e}, nil)
	}
	cookie := ts.grantAll(t)

	rr := ts.do(t, http.MethodPost, "/api/admin/newsletter/broadcast", map[string]string{
		"subject": "Agenda is live", "markdown": "See the **full** agenda.",
	}, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("broadcast = %d %s", rr.Code, rr.Body.String())
	}
	if body := decodeBody(t, rr); body["recipients"].(float64) != 2 || body["sent"].(float64) != 2 {
		t.Errorf("result = %v", body)
	}
	if rr := ts.do(t, http.MethodPost, "/api/admin/newsletter/broadcast", map[string]string{"subject": "", "markdown": "x"}, cookie); rr.Code != http.StatusBadRequest {
		t.Errorf("empty subject = %d, want 400", rr.Code)
	}
}

// TestPitch_SubmitAndReview verifies pitch intake and the one-time decision.
func TestPitch_SubmitAndReview(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(t, http.MethodPost, "/api/pitches", map[string]string{
		"startup": "Kite", "founder": "Sam Cole", "email": "sam@kite.example",
		"stage": "seed", "deck_url": "https://kite.example/deck", "summary": "We make **kites**.",
	}, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("submit = %d %s", rr.Code, rr.Body.String())
	}
	id := decodeBody(t, rr)["id"].(string)

	cookie := ts.grantAll(t)
	rr = ts.do(t, http.MethodGet, "/api/admin/pitches?status=submitted", nil, cookie)
	if pitches := decodeBody(t, rr)["pitches"].([]any); len(pitches) != 1 {
		t.Fatalf("pitches = %d, want 1", len(pitches))
	}

	review := map[string]string{"status": "approved", "notes": "Strong team"}
	if rr := ts.do(t, http.MethodPost, "/api/admin/pitches/"+id+"/review", review, cookie); rr.Code != http.StatusOK {
		t.Fatalf("review = %d %s", rr.Code, rr.Body.String())
	}
	if rr := ts.do(t, http.MethodPost, "/api/admin/pitches/"+id+"/review", review, cookie); rr.Code != http.StatusConflict {
		t.Errorf("second decision = %d, want 409", rr.Code)
	}
	if rr := ts.do(t, http.MethodPost, "/api/admin/pitches/missing/review", review, cookie); rr.Code != http.StatusNotFound {
		t.Errorf("missing pitch = %d, want 404", rr.Code)
	}
}
