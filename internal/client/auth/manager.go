// Package auth holds the admin sign-in state for one client.
//
// A Manager walks Unauthenticated → Challenged → Authenticated and back to
// Unauthenticated on logout. It is constructed once per client and passed to
// whatever needs it; there is no package-level session.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"techday/internal/client/api"
	"techday/internal/domain/admin"
)

// State is a step of the sign-in flow.
type State int

// Sign-in states
const (
	Unauthenticated State = iota
	Challenged
	Authenticated
)

func (s State) String() string {
	switch s {
	case Challenged:
		return "challenged"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Errors surfaced under the form step that failed. Their text is shown as is.
var (
	ErrNotAuthorized      = errors.New("not found or not authorized")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrSignInFailed       = errors.New("sign-in failed, try again")
	ErrTooManyAttempts    = errors.New("too many attempts, wait a minute and try again")
	ErrNoChallenge        = errors.New("request a security question first")
	ErrEmptyEmail         = errors.New("email is required")

	// ErrSuperseded is returned to a call whose reply arrived after the flow was reset.
	ErrSuperseded = errors.New("sign-in flow was restarted")
)

// API is the part of the HTTP client the manager needs.
type API interface {
	RequestChallenge(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, email, answer, pin string) (admin.Profile, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (admin.Profile, error)
}

// View is a copy of the manager state for rendering.
type View struct {
	State    State
	Email    string
	Question string
	Answer   string
	PIN      string
	Error    string
	User     *admin.Profile
}

// Manager is the sign-in state machine. Safe for concurrent use.
type Manager struct {
	api API

	mu       sync.Mutex
	state    State
	email    string
	question string
	answer   string
	pin      string
	errMsg   string
	user     *admin.Profile
	gen      uint64 // bumped on every reset; replies from an older flow are dropped
}

// NewManager creates an unauthenticated manager.
func NewManager(client API) *Manager {
	return &Manager{api: client}
}

// View returns the current state.
func (m *Manager) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := View{
		State:    m.state,
		Email:    m.email,
		Question: m.question,
		Answer:   m.answer,
		PIN:      m.pin,
		Error:    m.errMsg,
	}
	if m.user != nil {
		u := *m.user
		u.Permissions = append([]admin.Permission(nil), m.user.Permissions...)
		v.User = &u
	}
	return v
}

// RequestChallenge asks the server for the security question of email.
// POST: Challenged with the question on success, otherwise Unauthenticated with Error set
func (m *Manager) RequestChallenge(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)

	m.mu.Lock()
	m.resetLocked()
	m.email = email
	gen := m.gen
	m.mu.Unlock()

	if email == "" {
		return m.fail(gen, Unauthenticated, ErrEmptyEmail)
	}

	question, err := m.api.RequestChallenge(ctx, email)
	if err != nil {
		return m.fail(gen, Unauthenticated, classify(err, ErrNotAuthorized))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return ErrSuperseded
	}
	m.state = Challenged
	m.question = question
	return nil
}

// Verify submits the answer and PIN for the email of the current challenge.
// The PIN is reduced to at most six digits before it is sent.
// POST: Authenticated on success, otherwise still Challenged with Error set
func (m *Manager) Verify(ctx context.Context, answer, pin string) error {
	pin = admin.SanitizePIN(pin)

	m.mu.Lock()
	if m.state != Challenged {
		m.mu.Unlock()
		return ErrNoChallenge
	}
	email := m.email
	gen := m.gen
	m.answer = answer
	m.pin = pin
	m.errMsg = ""
	m.mu.Unlock()

	user, err := m.api.Verify(ctx, email, answer, pin)
	if err != nil {
		return m.fail(gen, Challenged, classify(err, ErrInvalidCredentials))
	}

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return ErrSuperseded
	}
	m.state = Authenticated
	m.user = &user
	m.question, m.answer, m.pin, m.errMsg = "", "", "", ""
	m.mu.Unlock()
	slog.Info("auth_client_event", "event", "signed_in", "role", user.Role)
	return nil
}

// Logout ends the server session and always clears local state.
// A server error is returned for logging only; the manager is Unauthenticated either way.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.api.Logout(ctx)

	m.mu.Lock()
	m.resetLocked()
	m.email = ""
	m.mu.Unlock()

	if err != nil {
		slog.Warn("auth_client_event", "event", "logout_server_failed", "error", err)
	}
	return err
}

// Resume restores an existing server session, e.g. after a restart with a saved cookie jar.
// An expired or missing session leaves the manager Unauthenticated without error.
func (m *Manager) Resume(ctx context.Context) error {
	user, err := m.api.Me(ctx)
	if api.IsStatus(err, http.StatusUnauthorized) {
		m.mu.Lock()
		m.resetLocked()
		m.email = ""
		m.mu.Unlock()
		return nil
	}
	if err != nil {
		return ErrSignInFailed
	}
	m.mu.Lock()
	m.resetLocked()
	m.state = Authenticated
	m.email = user.Email
	m.user = &user
	m.mu.Unlock()
	return nil
}

// UseDifferentEmail returns to email entry and forgets every trace of the challenge.
func (m *Manager) UseDifferentEmail() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Authenticated {
		return
	}
	m.resetLocked()
}

// HasPermission reports whether the current session may manage area p.
// False without a session.
func (m *Manager) HasPermission(p admin.Permission) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Authenticated || m.user == nil {
		return false
	}
	for _, have := range m.user.Permissions {
		if have == p {
			return true
		}
	}
	return false
}

// Authenticated reports whether a session is held.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == Authenticated
}

// fail records err unless the flow that produced it was reset meanwhile.
func (m *Manager) fail(gen uint64, state State, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return ErrSuperseded
	}
	m.state = state
	m.errMsg = err.Error()
	return err
}

func (m *Manager) resetLocked() {
	m.gen++
	m.state = Unauthenticated
	m.question, m.answer, m.pin, m.errMsg = "", "", "", ""
	m.user = nil
}

// classify maps a client error to the message shown to the user.
// Any rejection by the server collapses into rejected so nothing leaks about which check failed.
func classify(err error, rejected error) error {
	var se *api.StatusError
	if !errors.As(err, &se) {
		return ErrSignInFailed
	}
	switch {
	case se.Status == http.StatusTooManyRequests:
		return ErrTooManyAttempts
	case se.Status >= 500:
		return ErrSignInFailed
	default:
		return rejected
	}
}
