package web

import (
	"net/http"

	"techday/internal/adapters/http/middleware"
	"techday/internal/domain/admin"
)

type mw = func(http.Handler) http.Handler

// route registers h under pattern behind mws, outermost first.
func route(mux *http.ServeMux, pattern string, h http.HandlerFunc, mws ...mw) {
	var handler http.Handler = h
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	inner := handler
	mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.LabelRoute(r)
		inner.ServeHTTP(w, r)
	}))
}

func (a *app) registerRoutes(mux *http.ServeMux) {
	authLimit := middleware.RateLimit(a.opts.AuthRateLimitPerMinute)
	can := middleware.RequirePermission

	// Admin sign-in
	route(mux, "POST /api/admin/auth/challenge", a.handleChallenge, authLimit)
	route(mux, "POST /api/admin/auth/verify", a.handleVerify, authLimit)
	route(mux, "POST /api/admin/auth/logout", a.handleLogout)
	route(mux, "GET /api/admin/auth/me", a.handleMe, middleware.RequireSession)

	// Sponsors
	route(mux, "GET /api/admin/sponsors", a.handleSponsorBoard, can(admin.PermSponsors))
	route(mux, "POST /api/admin/sponsors", a.handleCreateSponsor, can(admin.PermSponsors))
	route(mux, "POST /api/admin/sponsors/reorder", a.handleReorderSponsors, can(admin.PermSponsors))
	route(mux, "PUT /api/admin/sponsors/{id}", a.handleUpdateSponsor, can(admin.PermSponsors))
	route(mux, "DELETE /api/admin/sponsors/{id}", a.handleDeleteSponsor, can(admin.PermSponsors))

	// Speakers and agenda
	route(mux, "GET /api/admin/speakers", a.handleListSpeakers, can(admin.PermSpeakers))
	route(mux, "POST /api/admin/speakers", a.handleSaveSpeaker, can(admin.PermSpeakers))
	route(mux, "PUT /api/admin/speakers/{id}", a.handleSaveSpeaker, can(admin.PermSpeakers))
	route(mux, "DELETE /api/admin/speakers/{id}", a.handleDeleteSpeaker, can(admin.PermSpeakers))
	route(mux, "GET /api/admin/schedule", a.handleListSessions, can(admin.PermSchedule))
	route(mux, "POST /api/admin/schedule", a.handleSaveSession, can(admin.PermSchedule))
	route(mux, "PUT /api/admin/schedule/{id}", a.handleSaveSession, can(admin.PermSchedule))
	route(mux, "DELETE /api/admin/schedule/{id}", a.handleDeleteSession, can(admin.PermSchedule))

	// Submissions back-office
	route(mux, "GET /api/admin/registrations", a.handleListRegistrations, can(admin.PermRegistrations))
	route(mux, "GET /api/admin/pitches", a.handleListPitches, can(admin.PermPitches))
	route(mux, "POST /api/admin/pitches/{id}/review", a.handleReviewPitch, can(admin.PermPitches))
	route(mux, "GET /api/admin/newsletter", a.handleListSubscribers, can(admin.PermNewsletter))
	route(mux, "POST /api/admin/newsletter/broadcast", a.handleBroadcast, can(admin.PermNewsletter))

	// Operations
	route(mux, "GET /api/admin/stats", a.handleStats, middleware.RequireSession)
	route(mux, "GET /api/admin/audit", a.handleAuditTrail, middleware.RequireSession)
	route(mux, "GET /api/admin/outbox", a.handleListOutbox, can(admin.PermNewsletter))
	route(mux, "POST /api/admin/outbox/{id}/retry", a.handleRetryOutbox, can(admin.PermNewsletter))
	route(mux, "POST /api/admin/outbox/{id}/abandon", a.handleAbandonOutbox, can(admin.PermNewsletter))

	// Public site
	route(mux, "GET /api/public/site", a.handlePublicSite)
	route(mux, "POST /api/registrations", a.handleRegister)
	route(mux, "POST /api/pitches", a.handleSubmitPitch)
	route(mux, "POST /api/newsletter", a.handleSubscribe)
	route(mux, "GET /healthz", a.handleHealthz)
}
