package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"techday/internal/adapters/storage"
	"techday/internal/application/orchestrators"
	"techday/internal/domain/newsletter"
	"techday/internal/domain/outbox"
	"techday/internal/domain/pitch"
	"techday/internal/domain/registration"
	"techday/internal/domain/schedule"
	"techday/internal/domain/speaker"
	"techday/internal/domain/sponsor"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	fail(w, http.StatusInternalServerError, "internal server error")
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("write_response", "error", err)
	}
}

// fail writes the {success:false, error} envelope.
func fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func badJSON(w http.ResponseWriter) {
	fail(w, http.StatusBadRequest, "request body must be valid JSON")
}

// conflictErrors are business-rule clashes with existing state.
var conflictErrors = []error{
	registration.ErrDuplicate,
	pitch.ErrAlreadyDecided,
	orchestrators.ErrRoomClash,
	outbox.ErrTerminal,
}

// validationErrors are rejections of the submitted values themselves.
var validationErrors = []error{
	sponsor.ErrEmptyName, sponsor.ErrNameTooLong, sponsor.ErrInvalidTier, sponsor.ErrInvalidWebsite, sponsor.ErrOrderMismatch,
	speaker.ErrEmptyName, speaker.ErrNameTooLong, speaker.ErrBioTooLong,
	schedule.ErrEmptyTitle, schedule.ErrTitleTooLong, schedule.ErrInvalidKind, schedule.ErrMissingTimes, schedule.ErrEndBeforeStart,
	orchestrators.ErrUnknownSpeaker,
	registration.ErrEmptyName, registration.ErrNameTooLong, registration.ErrInvalidEmail, registration.ErrInvalidTicket,
	pitch.ErrEmptyStartup, pitch.ErrEmptyFounder, pitch.ErrInvalidEmail, pitch.ErrInvalidStage, pitch.ErrInvalidDeckURL,
	pitch.ErrEmptySummary, pitch.ErrSummaryTooLong, pitch.ErrInvalidDecision,
	newsletter.ErrInvalidEmail, newsletter.ErrEmptySubject, newsletter.ErrSubjectTooLong, newsletter.ErrEmptyBody,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// writeError maps orchestrator and store errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		fail(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrConflict):
		fail(w, http.StatusConflict, "order changed since it was loaded")
	case isAny(err, conflictErrors):
		fail(w, http.StatusConflict, err.Error())
	case isAny(err, validationErrors):
		fail(w, http.StatusBadRequest, err.Error())
	default:
		internalError(w, err)
	}
}
