package orchestrators

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"techday/internal/adapters/storage"
	"techday/internal/domain/admin"
	"techday/internal/domain/session"
)

func init() {
	admin.HashCost = bcrypt.MinCost
}

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func fixedID() string { return "test-id-001" }

// sequentialIDs returns a generator yielding prefix-1, prefix-2, ...
func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// mockAdminStore implements the admin store interfaces for testing.
type mockAdminStore struct {
	mu       sync.Mutex
	accounts map[string]admin.Account // by email
	saves    int
}

func newMockAdminStore(accts ...admin.Account) *mockAdminStore {
	m := &mockAdminStore{accounts: make(map[string]admin.Account)}
	for _, a := range accts {
		m.accounts[a.Email] = a
	}
	return m
}

func (m *mockAdminStore) GetByEmail(_ context.Context, email string) (admin.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[admin.NormalizeEmail(email)]
	if !ok {
		return admin.Account{}, fmt.Errorf("admin account: %w", storage.ErrNotFound)
	}
	return a, nil
}

func (m *mockAdminStore) GetByID(_ context.Context, id string) (admin.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return admin.Account{}, fmt.Errorf("admin account: %w", storage.ErrNotFound)
}

func (m *mockAdminStore) Save(_ context.Context, a admin.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.accounts[a.Email] = a
	return nil
}

func (m *mockAdminStore) RecordFailedVerify(_ context.Context, id string, now time.Time, threshold int, lockout time.Duration) (int, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for email, a := range m.accounts {
		if a.ID == id {
			a.RecordFailedVerify(now, threshold, lockout)
			m.accounts[email] = a
			return a.FailedVerifies, a.LockedUntil, nil
		}
	}
	return 0, time.Time{}, fmt.Errorf("admin account: %w", storage.ErrNotFound)
}

// mockSessionStore implements the session store interfaces for testing.
type mockSessionStore struct {
	sessions  map[string]session.Session
	revokeErr error
	revokedBy map[string]time.Time
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]session.Session), revokedBy: make(map[string]time.Time)}
}

func (m *mockSessionStore) Save(_ context.Context, s session.Session) error {
	m.sessions[s.Token] = s
	return nil
}

func (m *mockSessionStore) Get(_ context.Context, token string) (session.Session, error) {
	s, ok := m.sessions[token]
	if !ok {
		return session.Session{}, fmt.Errorf("session: %w", storage.ErrNotFound)
	}
	return s, nil
}

func (m *mockSessionStore) Revoke(_ context.Context, token string, at time.Time) error {
	if m.revokeErr != nil {
		return m.revokeErr
	}
	if s, ok := m.sessions[token]; ok && s.RevokedAt.IsZero() {
		s.RevokedAt = at
		m.sessions[token] = s
	}
	return nil
}

func (m *mockSessionStore) RevokeAccount(_ context.Context, accountID string, at time.Time) error {
	m.revokedBy[accountID] = at
	for tok, s := range m.sessions {
		if s.AccountID == accountID && s.RevokedAt.IsZero() {
			s.RevokedAt = at
			m.sessions[tok] = s
		}
	}
	return nil
}

// provisionedAccount builds an account with answer "Blue Whale" and PIN "4821".
func provisionedAccount() admin.Account {
	a := admin.Account{
		ID:          "adm-1",
		Email:       "ops@techday.example",
		Name:        "Ops Lead",
		Question:    "Favourite animal?",
		Role:        admin.RoleAdmin,
		Permissions: []admin.Permission{admin.PermSponsors, admin.PermSpeakers},
		CreatedAt:   fixedTime,
	}
	if err := a.SetAnswer("Blue Whale"); err != nil {
		panic(err)
	}
	if err := a.SetPIN("4821"); err != nil {
		panic(err)
	}
	return a
}
