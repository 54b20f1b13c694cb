package web

import (
	"fmt"
	"log/slog"
	"net/http"

	"techday/internal/adapters/http/middleware"
	pitchStore "techday/internal/adapters/storage/pitch"
	registrationStore "techday/internal/adapters/storage/registration"
	"techday/internal/application/listutil"
	"techday/internal/application/orchestrators"
	auditDomain "techday/internal/domain/audit"
	"techday/internal/domain/newsletter"
	"techday/internal/domain/pitch"
	"techday/internal/domain/registration"
)

type registerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Company    string `json:"company"`
	JobTitle   string `json:"job_title"`
	Ticket     string `json:"ticket"`
	Newsletter bool   `json:"newsletter"`
}

type pitchRequest struct {
	Startup string `json:"startup"`
	Founder string `json:"founder"`
	Email   string `json:"email"`
	Stage   string `json:"stage"`
	DeckURL string `json:"deck_url"`
	Summary string `json:"summary"`
}

type reviewRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type subscribeRequest struct {
	Email  string `json:"email"`
	Source string `json:"source"`
}

var pitchStatuses = []string{pitch.StatusSubmitted, pitch.StatusShortlisted, pitch.StatusApproved, pitch.StatusRejected}

func (a *app) pitchDeps() orchestrators.PitchDeps {
	return orchestrators.PitchDeps{
		PitchStore: a.stores.PitchStore,
		Sender:     a.opts.Sender,
		Event:      a.opts.Event,
		GenerateID: a.opts.GenerateID,
		Now:        a.opts.Now,
	}
}

func (a *app) newsletterDeps() orchestrators.NewsletterDeps {
	return orchestrators.NewsletterDeps{
		SubscriberStore: a.stores.SubscriberStore,
		Sender:          a.opts.Sender,
		GenerateID:      a.opts.GenerateID,
		Now:             a.opts.Now,
	}
}

// handleRegister handles POST /api/registrations
func (a *app) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := strictDecode(w, r, &req); err != nil {
		badJSON(w)
		return
	}
	reg, err := orchestrators.ExecuteRegisterAttendee(r.Context(), orchestrators.RegisterAttendeeInput{
		Name:       req.Name,
		Email:      req.Email,
		Company:    req.Company,
		JobTitle:   req.JobTitle,
		Ticket:     req.Ticket,
		Newsletter: req.Newsletter,
	}, orchestrators.RegisterAttendeeDeps{
		RegistrationStore: a.stores.RegistrationStore,
		SubscriberStore:   a.stores.SubscriberStore,
		Sender:            a.opts.Sender,
		Event:             a.opts.Event,
		GenerateID:        a.opts.GenerateID,
		Now:               a.opts.Now,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": reg.ID})
}

// handleSubmitPitch handles POST /api/pitches
func (a *app) handleSubmitPitch(w http.ResponseWriter, r *http.Request) {
	var req pitchRequest
	if err := strictDecode(w, r, &req); err != nil {
		badJSON(w)
		return
	}
	p, err := orchestrators.ExecuteSubmitPitch(r.Context(), orchestrators.SubmitPitchInput{
		Startup: req.Startup,
		Founder: req.Founder,
		Email:   req.Email,
		Stage:   req.Stage,
		DeckURL: req.DeckURL,
		Summary: req.Summary,
	}, a.pitchDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": p.ID})
}

// handleSubscribe handles POST /api/newsletter. Re-subscribing is not an error.
func (a *app) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := strictDecode(w, r, &req); err != nil {
		badJSON(w)
		return
	}
	source := req.Source
	if source == "" {
		source = "site"
	}
	_, created, err := orchestrators.ExecuteSubscribeNewsletter(r.Context(), req.Email, source, a.newsletterDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"success": true})
}

// handleListRegistrations handles GET /api/admin/registrations?page=&per_page=&ticket=
func (a *app) handleListRegistrations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := listutil.ParsePageParams(q)
	ticket := listutil.ParseFilter(q, "ticket", registration.ValidTickets)

	total, err := a.stores.RegistrationStore.Count(r.Context(), registrationStore.ListFilter{Ticket: ticket})
	if err != nil {
		internalError(w, err)
		return
	}
	page := listutil.NewPageInfo(params.Page, params.PerPage, total)
	regs, err := a.stores.RegistrationStore.List(r.Context(), registrationStore.ListFilter{
		Ticket: ticket,
		Limit:  page.PerPage,
		Offset: page.Offset(),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "registrations": regs, "page": page})
}

// handleListPitches handles GET /api/admin/pitches?status=&page=&per_page=
func (a *app) handleListPitches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := listutil.ParsePageParams(q)
	pitches, err := a.stores.PitchStore.List(r.Context(), pitchStore.ListFilter{
		Status: listutil.ParseFilter(q, "status", pitchStatuses),
		Limit:  params.PerPage,
		Offset: (params.Page - 1) * params.PerPage,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "pitches": pitches})
}

// handleReviewPitch handles POST /api/admin/pitches/{id}/review
func (a *app) handleReviewPitch(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := strictDecode(w, r, &req); err != nil {
		badJSON(w)
		return
	}
	ident, _ := middleware.GetIdentity(r.Context())
	p, err := orchestrators.ExecuteReviewPitch(r.Context(), orchestrators.ReviewPitchInput{
		PitchID:  r.PathValue("id"),
		Decision: req.Status,
		Notes:    req.Notes,
		Reviewer: ident.Email,
	}, a.pitchDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	a.record(r, a.auditEvent(r, ident.Email, auditDomain.CategorySubmissions, auditDomain.ActionReview).
		WithResource("pitch", p.ID).WithDescription(p.Status))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "pitch": p})
}

// handleListSubscribers handles GET /api/admin/newsletter
func (a *app) handleListSubscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := a.stores.SubscriberStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "subscribers": subs, "count": len(subs)})
}

// handleBroadcast handles POST /api/admin/newsletter/broadcast
func (a *app) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	var issue newsletter.Broadcast
	if err := strictDecode(w, r, &issue); err != nil {
		badJSON(w)
		return
	}
	ident, _ := middleware.GetIdentity(r.Context())
	res, err := orchestrators.ExecuteBroadcastNewsletter(r.Context(), issue, ident.Email, a.newsletterDeps())
	if err != nil && res.Recipients == 0 {
		writeError(w, err)
		return
	}
	a.record(r, a.auditEvent(r, ident.Email, auditDomain.CategoryNewsletter, auditDomain.ActionBroadcast).
		WithDescription(fmt.Sprintf("%s: sent %d of %d", issue.Subject, res.Sent, res.Recipients)))
	if err != nil {
		slog.Error("newsletter_event", "event", "broadcast_partial", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{"success": false, "error": "email provider failed part way", "recipients": res.Recipients, "sent": res.Sent})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "recipients": res.Recipients, "sent": res.Sent})
}
