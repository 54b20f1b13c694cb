package web

import (
	"errors"
	"net/http"

	"techday/internal/adapters/http/middleware"
	"techday/internal/adapters/storage"
	"techday/internal/application/orchestrators"
	"techday/internal/application/projections"
	auditDomain "techday/internal/domain/audit"
)

type sponsorRequest struct {
	Name       string `json:"name"`
	LogoURL    string `json:"logo_url"`
	WebsiteURL string `json:"website_url"`
	Tier       string `json:"tier"`
}

func (req sponsorRequest) input() orchestrators.SponsorInput {
	return orchestrators.SponsorInput{Name: req.Name, LogoURL: req.LogoURL, WebsiteURL: req.WebsiteURL, Tier: req.Tier}
}

type reorderRequest struct {
	Tier     string   `json:"tier"`
	Version  int64    `json:"version"`
	Sponsors []string `json:"sponsors"`
}

func (a *app) sponsorDeps() orchestrators.SponsorDeps {
	return orchestrators.SponsorDeps{
		SponsorStore: a.stores.SponsorStore,
		GenerateID:   a.opts.GenerateID,
		Now:          a.opts.Now,
	}
}

// handleSponsorBoard handles GET /api/admin/sponsors
func (a *app) handleSponsorBoard(w http.ResponseWriter, r *http.Request) {
	board, err := projections.QueryGetSponsorBoard(r.Context(), projections.GetSponsorBoardDeps{
		SponsorStore: a.stores.SponsorStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "tiers": board})
}

// handleCreateSponsor handles POST /api/admin/sponsors
func (a *app) handleCreateSponsor(w http.ResponseWriter, r *http.Request) {
	var req sponsorRequest
	if err := strictDecode(w, r, &req); err != nil {
		badJSON(w)
		return
	}
	s, err := orchestrators.ExecuteCreateSponsor(r.Context(), req.input(), a.sponsorDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	a.record(r, a.auditEvent(r, "", auditDomain.CategorySponsors, auditDomain.ActionCreate).
		WithResource("sponsor", s.ID).WithDescription(s.Name))
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "sponsor": s})
}

// handleUpdateSponsor handles PUT /api/admin/sponsors/{id}
func (a *app) handleUpdateSponsor(w http.ResponseWriter, r *http.Request) {
	var req sponsorRequest
	if err := strictDecode(w, r, &req); err != nil {
		badJSON(w)
		return
	}
	s, err := orchestrators.ExecuteUpdateSponsor(r.Context(), r.PathValue("id"), req.input(), a.sponsorDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	a.record(r, a.auditEvent(r, "", auditDomain.CategorySponsors, auditDomain.ActionUpdate).
		WithResource("sponsor", s.ID).WithDescription(s.Name))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "sponsor": s})
}

// handleDeleteSponsor handles DELETE /api/admin/sponsors/{id}
func (a *app) handleDeleteSponsor(w http.ResponseWriter, r *http.Request) {
	if err := orchestrators.ExecuteDeleteSponsor(r.Context(), r.PathValue("id"), a.sponsorDeps()); err != nil {
		writeError(w, err)
		return
	}
	a.record(r, a.auditEvent(r, "", auditDomain.CategorySponsors, auditDomain.ActionDelete).
		WithResource("sponsor", r.PathValue("id")))
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleReorderSponsors handles POST /api/admin/sponsors/reorder.
// A stale version answers 409 and the client reloads the board.
func (a *app) handleReorderSponsors(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := strictDecode(w, r, &req); err != nil {
		badJSON(w)
		return
	}
	ident, _ := middleware.GetIdentity(r.Context())
	result, err := orchestrators.ExecuteReorderSponsors(r.Context(),
		orchestrators.ReorderSponsorsInput{
			Tier:       req.Tier,
			Version:    req.Version,
			SponsorIDs: req.Sponsors,
			Actor:      ident.Email,
		},
		orchestrators.ReorderSponsorsDeps{SponsorStore: a.stores.SponsorStore},
	)
	if errors.Is(err, storage.ErrConflict) {
		fail(w, http.StatusConflict, "sponsor order changed since it was loaded")
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	a.record(r, a.auditEvent(r, ident.Email, auditDomain.CategorySponsors, auditDomain.ActionReorder).
		WithResource("tier", string(result.Tier)))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "tier": result.Tier, "version": result.Version})
}
