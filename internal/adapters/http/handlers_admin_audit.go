package web

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"techday/internal/adapters/http/middleware"
	auditStore "techday/internal/adapters/storage/audit"
	auditDomain "techday/internal/domain/audit"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

// auditEvent starts an event for r. An empty actor means the signed-in admin.
func (a *app) auditEvent(r *http.Request, actor string, category auditDomain.Category, action auditDomain.Action) auditDomain.Event {
	if actor == "" {
		ident, _ := middleware.GetIdentity(r.Context())
		actor = ident.Email
	}
	return auditDomain.NewEvent(a.opts.GenerateID(), a.opts.Now(), actor, category, action).
		WithRequest(clientIP(r), r.UserAgent())
}

// record appends ev to the audit trail. Failures are logged and never reach the caller.
func (a *app) record(r *http.Request, ev auditDomain.Event) {
	if a.stores.AuditStore == nil {
		return
	}
	if err := a.stores.AuditStore.Save(r.Context(), ev); err != nil {
		slog.Error("audit_event", "event", "record_failed",
			"category", ev.Category, "action", ev.Action, "error", err)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// handleAuditTrail handles GET /api/admin/audit?category=&action=&actor=&since=&limit=
func (a *app) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	if a.stores.AuditStore == nil {
		fail(w, http.StatusNotFound, "audit trail is not enabled")
		return
	}
	q := r.URL.Query()
	filter := auditStore.Filter{
		Category:   auditDomain.Category(strings.TrimSpace(q.Get("category"))),
		Action:     auditDomain.Action(strings.TrimSpace(q.Get("action"))),
		ActorEmail: strings.TrimSpace(q.Get("actor")),
	}
	if since := q.Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			fail(w, http.StatusBadRequest, "since must be an RFC 3339 timestamp")
			return
		}
		filter.Since = t
	}
	limit := defaultAuditLimit
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			fail(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxAuditLimit)
	}

	events, err := a.stores.AuditStore.List(r.Context(), filter, limit)
	if err != nil {
		internalError(w, err)
		return
	}
	if events == nil {
		events = []auditDomain.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "events": events})
}
