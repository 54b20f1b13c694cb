package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"techday/internal/adapters/storage"
	"techday/internal/domain/admin"
	"techday/internal/domain/registration"
	"techday/internal/domain/session"
)

// AdminStoreForAuth defines the store interface needed by the admin sign-in flow.
type AdminStoreForAuth interface {
	GetByEmail(ctx context.Context, email string) (admin.Account, error)
	Save(ctx context.Context, a admin.Account) error
	RecordFailedVerify(ctx context.Context, id string, now time.Time, threshold int, lockout time.Duration) (int, time.Time, error)
}

// SessionStoreForAuth defines the session store interface needed by the sign-in flow.
type SessionStoreForAuth interface {
	Save(ctx context.Context, s session.Session) error
	Get(ctx context.Context, token string) (session.Session, error)
	Revoke(ctx context.Context, token string, at time.Time) error
}

// AdminLookup resolves a session's account by id.
type AdminLookup interface {
	GetByID(ctx context.Context, id string) (admin.Account, error)
}

// Auth errors. Both are deliberately generic.
var (
	ErrNotAuthorized      = errors.New("not found or not authorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// --- Request challenge ---

// RequestChallengeInput carries input for the challenge step.
type RequestChallengeInput struct {
	Email string
}

// RequestChallengeDeps holds dependencies for RequestChallenge.
type RequestChallengeDeps struct {
	AdminStore AdminStoreForAuth
}

// ExecuteRequestChallenge returns the security question for an allow-listed admin email.
// PRE: none; any string is accepted
// POST: Returns the question, or ErrNotAuthorized for every kind of miss
// INVARIANT: no state is written
func ExecuteRequestChallenge(ctx context.Context, input RequestChallengeInput, deps RequestChallengeDeps) (string, error) {
	email := admin.NormalizeEmail(input.Email)
	if !registration.ValidEmail(email) {
		slog.Info("auth_event", "event", "challenge_denied", "reason", "malformed")
		return "", ErrNotAuthorized
	}

	acct, err := deps.AdminStore.GetByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		slog.Info("auth_event", "event", "challenge_denied", "email", email, "reason", "not_found")
		return "", ErrNotAuthorized
	}
	if err != nil {
		return "", err
	}
	if acct.Role != admin.RoleAdmin {
		slog.Info("auth_event", "event", "challenge_denied", "email", email, "reason", "not_admin")
		return "", ErrNotAuthorized
	}

	slog.Info("auth_event", "event", "challenge_issued", "email", email)
	return acct.Question, nil
}

// --- Verify ---

// VerifyAdminInput carries input for the verify step.
type VerifyAdminInput struct {
	Email  string
	Answer string
	PIN    string
}

// VerifyAdminResult carries the issued session and the account's public projection.
type VerifyAdminResult struct {
	Session session.Session
	Profile admin.Profile
}

// VerifyAdminDeps holds dependencies for VerifyAdmin.
type VerifyAdminDeps struct {
	AdminStore       AdminStoreForAuth
	SessionStore     SessionStoreForAuth
	Now              func() time.Time
	SessionTTL       time.Duration
	LockoutThreshold int
	LockoutDuration  time.Duration
}

// ExecuteVerifyAdmin checks answer and PIN together and issues a session on match.
// PRE: Email is the address used for the challenge
// POST: On success a session is persisted and failure counters are cleared.
// On any failure ErrInvalidCredentials is returned, whatever factor was wrong,
// whether the account exists, and whether it is locked.
func ExecuteVerifyAdmin(ctx context.Context, input VerifyAdminInput, deps VerifyAdminDeps) (VerifyAdminResult, error) {
	now := deps.Now()
	email := admin.NormalizeEmail(input.Email)

	acct, err := deps.AdminStore.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return VerifyAdminResult{}, err
	}
	if err != nil || acct.Role != admin.RoleAdmin {
		// Same bcrypt work as a real account.
		_ = (&admin.Account{}).CheckCredentials(input.Answer, input.PIN)
		slog.Info("auth_event", "event", "verify_failed", "email", email, "reason", "not_found")
		return VerifyAdminResult{}, ErrInvalidCredentials
	}

	credErr := acct.CheckCredentials(input.Answer, input.PIN)
	if acct.IsLocked(now) {
		slog.Info("auth_event", "event", "verify_blocked", "email", email, "reason", "locked", "locked_until", acct.LockedUntil)
		return VerifyAdminResult{}, ErrInvalidCredentials
	}
	if credErr != nil {
		threshold := deps.LockoutThreshold
		if threshold == 0 {
			threshold = admin.DefaultLockoutThreshold
		}
		lockout := deps.LockoutDuration
		if lockout <= 0 {
			lockout = admin.DefaultLockoutDuration
		}
		failed, lockedUntil, err := deps.AdminStore.RecordFailedVerify(ctx, acct.ID, now, threshold, lockout)
		if err != nil {
			slog.Error("auth_event", "event", "verify_counter_save_failed", "email", email, "error", err)
		}
		slog.Info("auth_event", "event", "verify_failed", "email", email, "reason", "wrong_credentials",
			"failed_verifies", failed, "locked", now.Before(lockedUntil))
		return VerifyAdminResult{}, ErrInvalidCredentials
	}

	if acct.FailedVerifies != 0 || !acct.LockedUntil.IsZero() {
		acct.ResetFailedVerifies()
		if err := deps.AdminStore.Save(ctx, acct); err != nil {
			return VerifyAdminResult{}, err
		}
	}

	sess, err := session.New(acct.ID, acct.Email, now, deps.SessionTTL)
	if err != nil {
		return VerifyAdminResult{}, err
	}
	if err := deps.SessionStore.Save(ctx, sess); err != nil {
		return VerifyAdminResult{}, err
	}

	slog.Info("auth_event", "event", "verify_success", "email", email, "permissions", admin.JoinPermissions(acct.Permissions))
	return VerifyAdminResult{Session: sess, Profile: acct.Profile()}, nil
}

// --- Logout ---

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	SessionStore SessionStoreForAuth
	Now          func() time.Time
}

// ExecuteLogout revokes the session behind token.
// POST: idempotent; an empty or unknown token is not an error
func ExecuteLogout(ctx context.Context, token string, deps LogoutDeps) error {
	if token == "" {
		return nil
	}
	if err := deps.SessionStore.Revoke(ctx, token, deps.Now()); err != nil {
		return err
	}
	slog.Info("auth_event", "event", "logout")
	return nil
}

// --- Resolve session ---

// ResolveSessionDeps holds dependencies for ResolveSession.
type ResolveSessionDeps struct {
	SessionStore SessionStoreForAuth
	AdminStore   AdminLookup
	Now          func() time.Time
}

// ExecuteResolveSession maps a session token to its admin account.
// POST: session.ErrInvalid unless the session is active and its account still exists
func ExecuteResolveSession(ctx context.Context, token string, deps ResolveSessionDeps) (admin.Account, session.Session, error) {
	if token == "" {
		return admin.Account{}, session.Session{}, session.ErrInvalid
	}
	sess, err := deps.SessionStore.Get(ctx, token)
	if errors.Is(err, storage.ErrNotFound) {
		return admin.Account{}, session.Session{}, session.ErrInvalid
	}
	if err != nil {
		return admin.Account{}, session.Session{}, err
	}
	if !sess.IsActive(deps.Now()) {
		return admin.Account{}, session.Session{}, session.ErrInvalid
	}
	acct, err := deps.AdminStore.GetByID(ctx, sess.AccountID)
	if errors.Is(err, storage.ErrNotFound) {
		return admin.Account{}, session.Session{}, session.ErrInvalid
	}
	if err != nil {
		return admin.Account{}, session.Session{}, err
	}
	return acct, sess, nil
}
