// Package api is the typed HTTP client for the admin back-office endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"techday/internal/domain/admin"
	"techday/internal/domain/sponsor"
)

// DefaultTimeout bounds each request.
const DefaultTimeout = 15 * time.Second

// ErrTransport wraps every failure to reach the server or read its reply.
var ErrTransport = errors.New("transport failure")

// StatusError is a well-formed non-2xx reply.
type StatusError struct {
	Status  int
	Message string
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == code
}

// Client talks to one Tech Day server and keeps its session cookie.
type Client struct {
	base *url.URL
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying client. Its Jar must be set for sessions to stick.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a client for baseURL with a fresh cookie jar.
// PRE: baseURL is an absolute http(s) URL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{base: u, http: &http.Client{Jar: jar, Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// do sends in as JSON and decodes a 2xx reply into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil || env.Error == "" {
			env.Error = http.StatusText(resp.StatusCode)
		}
		return &StatusError{Status: resp.StatusCode, Message: env.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrTransport, path, err)
	}
	return nil
}

// RequestChallenge returns the security question for email.
func (c *Client) RequestChallenge(ctx context.Context, email string) (string, error) {
	var out struct {
		Question string `json:"question"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/admin/auth/challenge", map[string]string{"email": email}, &out); err != nil {
		return "", err
	}
	return out.Question, nil
}

// Verify submits the answer and PIN; on success the session cookie is stored in the jar.
func (c *Client) Verify(ctx context.Context, email, answer, pin string) (admin.Profile, error) {
	var out struct {
		User admin.Profile `json:"user"`
	}
	in := map[string]string{"email": email, "answer": answer, "pin": pin}
	if err := c.do(ctx, http.MethodPost, "/api/admin/auth/verify", in, &out); err != nil {
		return admin.Profile{}, err
	}
	return out.User, nil
}

// Logout ends the server session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/admin/auth/logout", nil, nil)
}

// Me returns the signed-in profile.
func (c *Client) Me(ctx context.Context) (admin.Profile, error) {
	var out struct {
		User admin.Profile `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/auth/me", nil, &out); err != nil {
		return admin.Profile{}, err
	}
	return out.User, nil
}

// SponsorBoard fetches every tier with its version.
func (c *Client) SponsorBoard(ctx context.Context) ([]sponsor.TierGroup, error) {
	var out struct {
		Tiers []sponsor.TierGroup `json:"tiers"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/sponsors", nil, &out); err != nil {
		return nil, err
	}
	return out.Tiers, nil
}

// ReorderSponsors replaces a tier's order and returns the new version.
// A stale version yields a StatusError with http.StatusConflict.
func (c *Client) ReorderSponsors(ctx context.Context, tier sponsor.Tier, version int64, ids []string) (int64, error) {
	var out struct {
		Version int64 `json:"version"`
	}
	in := map[string]any{"tier": tier, "version": version, "sponsors": ids}
	if err := c.do(ctx, http.MethodPost, "/api/admin/sponsors/reorder", in, &out); err != nil {
		return 0, err
	}
	return out.Version, nil
}
