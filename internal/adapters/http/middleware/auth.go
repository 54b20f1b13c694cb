package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"techday/internal/domain/admin"
	"techday/internal/domain/session"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const identityContextKey contextKey = "identity"

// SessionCookieName is the cookie carrying the admin session token.
const SessionCookieName = "techday_session"

// SecureCookies marks session cookies Secure. Set in production.
var SecureCookies bool

// Identity is the signed-in administrator attached to a request.
type Identity struct {
	AccountID   string
	Email       string
	Name        string
	Permissions []admin.Permission
	Token       string
	ExpiresAt   time.Time
}

// Can reports whether the identity holds permission p.
// INVARIANT: Identity fields are not mutated
func (i Identity) Can(p admin.Permission) bool {
	return slices.Contains(i.Permissions, p)
}

// SessionResolver maps a session token to an Identity.
// It returns session.ErrInvalid for unknown, expired or revoked tokens.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (Identity, error)
}

// ResolverFunc adapts a function to SessionResolver.
type ResolverFunc func(ctx context.Context, token string) (Identity, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, token string) (Identity, error) {
	return f(ctx, token)
}

// Auth extracts the session from the cookie and sets the identity in context.
// It does NOT block unauthenticated requests; use RequireSession or RequirePermission for that.
func Auth(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			ident, err := resolver.Resolve(r.Context(), token)
			switch {
			case err == nil:
				r = r.WithContext(ContextWithIdentity(r.Context(), ident))
			case errors.Is(err, session.ErrInvalid):
				ClearSessionCookie(w)
			default:
				slog.Error("session_resolve_failed", "error", err)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession blocks requests without a valid session.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetIdentity(r.Context()); !ok {
			failure(w, http.StatusUnauthorized, "sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermission blocks requests whose identity lacks permission p.
func RequirePermission(p admin.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := GetIdentity(r.Context())
			if !ok {
				failure(w, http.StatusUnauthorized, "sign in required")
				return
			}
			if !ident.Can(p) {
				slog.Warn("auth_event", "event", "permission_denied", "email", ident.Email, "permission", p, "path", r.URL.Path)
				failure(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetIdentity extracts the identity from the request context.
func GetIdentity(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(identityContextKey).(Identity)
	return ident, ok
}

// ContextWithIdentity returns a context carrying ident.
func ContextWithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, ident)
}

// SessionToken returns the session token from the request cookie, or "".
func SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SetSessionCookie sets the session cookie to expire with the session.
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		Expires:  expires,
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
