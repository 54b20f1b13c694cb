package web

import (
	"net/http"
	"strconv"

	auditDomain "techday/internal/domain/audit"
	"techday/internal/domain/outbox"
)

var outboxStatuses = []string{outbox.StatusPending, outbox.StatusDone, outbox.StatusFailed, outbox.StatusAbandoned}

// handleListOutbox handles GET /api/admin/outbox?status=&limit=. Status defaults to failed.
func (a *app) handleListOutbox(w http.ResponseWriter, r *http.Request) {
	if a.outbox == nil {
		fail(w, http.StatusNotFound, "mail retry queue is not enabled")
		return
	}
	status := r.URL.Query().Get("status")
	if status == "" {
		status = outbox.StatusFailed
	}
	known := false
	for _, s := range outboxStatuses {
		known = known || s == status
	}
	if !known {
		fail(w, http.StatusBadRequest, "status must be one of: pending, done, failed, abandoned")
		return
	}
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	entries, err := a.stores.OutboxStore.ListByStatus(r.Context(), status, limit)
	if err != nil {
		internalError(w, err)
		return
	}
	if entries == nil {
		entries = []outbox.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "entries": entries})
}

// handleRetryOutbox handles POST /api/admin/outbox/{id}/retry.
// A failed attempt is still a 200; the entry's status says what happened.
func (a *app) handleRetryOutbox(w http.ResponseWriter, r *http.Request) {
	if a.outbox == nil {
		fail(w, http.StatusNotFound, "mail retry queue is not enabled")
		return
	}
	entry, err := a.outbox.Retry(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	a.record(r, a.auditEvent(r, "", auditDomain.CategoryMail, auditDomain.ActionRetry).
		WithResource("outbox", entry.ID).
		WithDescription("manual retry: "+entry.Status))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "entry": entry})
}

// handleAbandonOutbox handles POST /api/admin/outbox/{id}/abandon
func (a *app) handleAbandonOutbox(w http.ResponseWriter, r *http.Request) {
	if a.outbox == nil {
		fail(w, http.StatusNotFound, "mail retry queue is not enabled")
		return
	}
	entry, err := a.outbox.Abandon(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	a.record(r, a.auditEvent(r, "", auditDomain.CategoryMail, auditDomain.ActionAbandon).
		WithResource("outbox", entry.ID))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "entry": entry})
}
