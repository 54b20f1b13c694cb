package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"techday/internal/adapters/email"
	"techday/internal/adapters/storage"
	adminStore "techday/internal/adapters/storage/admin"
	auditStore "techday/internal/adapters/storage/audit"
	newsletterStore "techday/internal/adapters/storage/newsletter"
	outboxStore "techday/internal/adapters/storage/outbox"
	pitchStore "techday/internal/adapters/storage/pitch"
	registrationStore "techday/internal/adapters/storage/registration"
	scheduleStore "techday/internal/adapters/storage/schedule"
	sessionStore "techday/internal/adapters/storage/session"
	speakerStore "techday/internal/adapters/storage/speaker"
	sponsorStore "techday/internal/adapters/storage/sponsor"
	"techday/internal/application/orchestrators"
	"techday/internal/domain/admin"
)

func init() {
	admin.HashCost = bcrypt.MinCost
}

const (
	testEmail  = "ops@techday.example"
	testAnswer = "Blue Whale"
	testPIN    = "4821"
)

type testServer struct {
	handler http.Handler
	stores  *Stores
	sender  *email.MemorySender
}

// newTestServer wires the full mux over an in-memory database with one
// admin holding the sponsors and speakers permissions.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	stores := &Stores{
		AdminStore:        adminStore.NewSQLiteStore(db),
		SessionStore:      sessionStore.NewSQLiteStore(db),
		SponsorStore:      sponsorStore.NewSQLiteStore(db),
		SpeakerStore:      speakerStore.NewSQLiteStore(db),
		ScheduleStore:     scheduleStore.NewSQLiteStore(db),
		RegistrationStore: registrationStore.NewSQLiteStore(db),
		PitchStore:        pitchStore.NewSQLiteStore(db),
		SubscriberStore:   newsletterStore.NewSQLiteStore(db),
		AuditStore:        auditStore.NewSQLiteStore(db),
		OutboxStore:       outboxStore.NewSQLiteStore(db),
	}
	_, _, err = orchestrators.ExecuteProvisionAdmin(context.Background(), orchestrators.ProvisionAdminInput{
		Email:       testEmail,
		Name:        "Ops Team",
		Question:    "Name of the first office dog?",
		Answer:      testAnswer,
		PIN:         testPIN,
		Permissions: []admin.Permission{admin.PermSponsors, admin.PermSpeakers},
	}, orchestrators.ProvisionAdminDeps{
		AdminStore:     stores.AdminStore,
		SessionRevoker: stores.SessionStore,
		GenerateID:     generateID,
		Now:            time.Now,
	})
	if err != nil {
		t.Fatalf("provision admin: %v", err)
	}

	sender := &email.MemorySender{}
	h := NewMux(stores, Options{
		CSRFKey:                make([]byte, 32),
		RateLimitPerMinute:     10000,
		AuthRateLimitPerMinute: 10000,
		Sender:                 sender,
		Ping:                   db.PingContext,
		Event:                  orchestrators.EventInfo{Name: "Tech Day 2026", Date: "20 November 2026", Venue: "Harbour Hall"},
	})
	return &testServer{handler: h, stores: stores, sender: sender}
}

// do sends a JSON request, optionally with a session cookie.
func (ts *testServer) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// signIn verifies the seeded admin and returns the session cookie.
func (ts *testServer) signIn(t *testing.T) *http.Cookie {
	t.Helper()
	rr := ts.do(t, http.MethodPost, "/api/admin/auth/verify", map[string]string{
		"email": testEmail, "answer": testAnswer, "pin": testPIN,
	}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("verify status = %d, body = %s", rr.Code, rr.Body.String())
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == "techday_session" && c.Value != "" {
			return c
		}
	}
	t.Fatal("verify did not set a session cookie")
	return nil
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return out
}
