package web

import (
	"errors"
	"log/slog"
	"net/http"

	"techday/internal/adapters/http/middleware"
	"techday/internal/application/orchestrators"
	"techday/internal/domain/admin"
	auditDomain "techday/internal/domain/audit"
)

// invalidCredentials is the one message every failed verify shows.
const invalidCredentials = "Invalid credentials"

type challengeRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email  string `json:"email"`
	Answer string `json:"answer"`
	PIN    string `json:"pin"`
}

// handleChallenge handles POST /api/admin/auth/challenge
func (a *app) handleChallenge(w http.ResponseWriter, r *http.Request) {
	var req challengeRequest
	if err := strictDecode(w, r, &req); err != nil {
		badJSON(w)
		return
	}
	question, err := orchestrators.ExecuteRequestChallenge(r.Context(),
		orchestrators.RequestChallengeInput{Email: req.Email},
		orchestrators.RequestChallengeDeps{AdminStore: a.stores.AdminStore},
	)
	if errors.Is(err, orchestrators.ErrNotAuthorized) {
		fail(w, http.StatusNotFound, orchestrators.ErrNotAuthorized.Error())
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "isValid": true, "question": question})
}

// handleVerify handles POST /api/admin/auth/verify
func (a *app) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := strictDecode(w, r, &req); err != nil {
		badJSON(w)
		return
	}
	result, err := orchestrators.ExecuteVerifyAdmin(r.Context(),
		orchestrators.VerifyAdminInput{Email: req.Email, Answer: req.Answer, PIN: req.PIN},
		orchestrators.VerifyAdminDeps{
			AdminStore:       a.stores.AdminStore,
			SessionStore:     a.stores.SessionStore,
			Now:              a.opts.Now,
			SessionTTL:       a.opts.SessionTTL,
			LockoutThreshold: a.opts.LockoutThreshold,
			LockoutDuration:  a.opts.LockoutDuration,
		},
	)
	if errors.Is(err, orchestrators.ErrInvalidCredentials) {
		a.record(r, a.auditEvent(r, req.Email, auditDomain.CategoryAuth, auditDomain.ActionSignInFailed).
			WithSeverity(auditDomain.SeverityWarning))
		fail(w, http.StatusUnauthorized, invalidCredentials)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	a.record(r, a.auditEvent(r, result.Profile.Email, auditDomain.CategoryAuth, auditDomain.ActionSignIn))
	middleware.SetSessionCookie(w, result.Session.Token, result.Session.ExpiresAt)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": result.Profile})
}

// handleLogout handles POST /api/admin/auth/logout. It always succeeds.
func (a *app) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		err := orchestrators.ExecuteLogout(r.Context(), token, orchestrators.LogoutDeps{
			SessionStore: a.stores.SessionStore,
			Now:          a.opts.Now,
		})
		if err != nil {
			slog.Error("auth_event", "event", "logout_failed", "error", err)
		}
		if ident, ok := middleware.GetIdentity(r.Context()); ok {
			a.record(r, a.auditEvent(r, ident.Email, auditDomain.CategoryAuth, auditDomain.ActionSignOut))
		}
	}
	middleware.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleMe handles GET /api/admin/auth/me
func (a *app) handleMe(w http.ResponseWriter, r *http.Request) {
	ident, _ := middleware.GetIdentity(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user": admin.Profile{
			Name:        ident.Name,
			Email:       ident.Email,
			Role:        admin.RoleAdmin,
			Permissions: ident.Permissions,
		},
		"expires_at": ident.ExpiresAt,
	})
}
