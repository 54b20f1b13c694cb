package web

import (
	"net/http"
	"time"

	"techday/internal/application/projections"
)

// handlePublicSite handles GET /api/public/site
func (a *app) handlePublicSite(w http.ResponseWriter, r *http.Request) {
	site, err := projections.QueryGetPublicSite(r.Context(), projections.GetPublicSiteDeps{
		SpeakerStore:  a.stores.SpeakerStore,
		SponsorStore:  a.stores.SponsorStore,
		ScheduleStore: a.stores.ScheduleStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=60")
	writeJSON(w, http.StatusOK, site)
}

// handleStats handles GET /api/admin/stats: request latency over the last hour and query counters.
func (a *app) handleStats(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"success":  true,
		"requests": a.opts.Collector.Snapshot(a.opts.Now().Add(-time.Hour), 20),
	}
	if a.opts.DBStats != nil {
		body["queries"] = a.opts.DBStats()
	}
	writeJSON(w, http.StatusOK, body)
}

// handleHealthz handles GET /healthz
func (a *app) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if a.opts.Ping != nil {
		if err := a.opts.Ping(r.Context()); err != nil {
			internalError(w, err)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
