package web

import (
	"net/http"
	"time"

	scheduleStore "techday/internal/adapters/storage/schedule"
	"techday/internal/application/orchestrators"
	auditDomain "techday/internal/domain/audit"
	"techday/internal/domain/schedule"
	"techday/internal/domain/speaker"
)

type speakerRequest struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Company   string `json:"company"`
	Bio       string `json:"bio"`
	PhotoURL  string `json:"photo_url"`
	SortOrder int    `json:"sort_order"`
	Featured  bool   `json:"featured"`
}

type sessionRequest struct {
	Title     string    `json:"title"`
	Abstract  string    `json:"abstract"`
	Kind      string    `json:"kind"`
	SpeakerID string    `json:"speaker_id"`
	Track     string    `json:"track"`
	Room      string    `json:"room"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
}

func (a *app) speakerDeps() orchestrators.SaveSpeakerDeps {
	return orchestrators.SaveSpeakerDeps{SpeakerStore: a.stores.SpeakerStore, GenerateID: a.opts.GenerateID}
}

func (a *app) sessionDeps() orchestrators.SaveSessionDeps {
	return orchestrators.SaveSessionDeps{
		ScheduleStore: a.stores.ScheduleStore,
		SpeakerStore:  a.stores.SpeakerStore,
		GenerateID:    a.opts.GenerateID,
	}
}

// handleListSpeakers handles GET /api/admin/speakers
func (a *app) handleListSpeakers(w http.ResponseWriter, r *http.Request) {
	speakers, err := a.stores.SpeakerStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "speakers": speakers})
}

// handleSaveSpeaker handles POST /api/admin/speakers and PUT /api/admin/speakers/{id}
func (a *app) handleSaveSpeaker(w http.ResponseWriter, r *http.Request) {
	var req speakerRequest
	if err := strictDecode(w, r, &req); err != nil {
		badJSON(w)
		return
	}
	sp, err := orchestrators.ExecuteSaveSpeaker(r.Context(), speaker.Speaker{
		ID:        r.PathValue("id"),
		Name:      req.Name,
		Title:     req.Title,
		Company:   req.Company,
		Bio:       req.Bio,
		PhotoURL:  req.PhotoURL,
		SortOrder: req.SortOrder,
		Featured:  req.Featured,
	}, a.speakerDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if r.Method == http.MethodPost {
		status = http.StatusCreated
	}
	a.record(r, a.auditEvent(r, "", auditDomain.CategoryAgenda, saveAction(r)).
		WithResource("speaker", sp.ID).WithDescription(sp.Name))
	writeJSON(w, status, map[string]any{"success": true, "speaker": sp})
}

// handleDeleteSpeaker handles DELETE /api/admin/speakers/{id}
func (a *app) handleDeleteSpeaker(w http.ResponseWriter, r *http.Request) {
	if err := orchestrators.ExecuteDeleteSpeaker(r.Context(), r.PathValue("id"), a.speakerDeps()); err != nil {
		writeError(w, err)
		return
	}
	a.record(r, a.auditEvent(r, "", auditDomain.CategoryAgenda, auditDomain.ActionDelete).
		WithResource("speaker", r.PathValue("id")))
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleListSessions handles GET /api/admin/schedule?track=
func (a *app) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := a.stores.ScheduleStore.List(r.Context(), scheduleStore.ListFilter{
		Track: r.URL.Query().Get("track"),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "sessions": sessions})
}

// handleSaveSession handles POST /api/admin/schedule and PUT /api/admin/schedule/{id}
func (a *app) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := strictDecode(w, r, &req); err != nil {
		badJSON(w)
		return
	}
	s, err := orchestrators.ExecuteSaveSession(r.Context(), schedule.Session{
		ID:        r.PathValue("id"),
		Title:     req.Title,
		Abstract:  req.Abstract,
		Kind:      req.Kind,
		SpeakerID: req.SpeakerID,
		Track:     req.Track,
		Room:      req.Room,
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
	}, a.sessionDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if r.Method == http.MethodPost {
		status = http.StatusCreated
	}
	a.record(r, a.auditEvent(r, "", auditDomain.CategoryAgenda, saveAction(r)).
		WithResource("session", s.ID).WithDescription(s.Title))
	writeJSON(w, status, map[string]any{"success": true, "session": s})
}

// handleDeleteSession handles DELETE /api/admin/schedule/{id}
func (a *app) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := orchestrators.ExecuteDeleteSession(r.Context(), r.PathValue("id"), a.sessionDeps()); err != nil {
		writeError(w, err)
		return
	}
	a.record(r, a.auditEvent(r, "", auditDomain.CategoryAgenda, auditDomain.ActionDelete).
		WithResource("session", r.PathValue("id")))
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func saveAction(r *http.Request) auditDomain.Action {
	if r.Method == http.MethodPost {
		return auditDomain.ActionCreate
	}
	return auditDomain.ActionUpdate
}
