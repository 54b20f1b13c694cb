package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"techday/internal/adapters/storage"
	scheduleStore "techday/internal/adapters/storage/schedule"
	"techday/internal/domain/schedule"
	"techday/internal/domain/speaker"
)

// SpeakerStoreForOrchestrator defines the store interface needed by speaker orchestrators.
type SpeakerStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (speaker.Speaker, error)
	Save(ctx context.Context, s speaker.Speaker) error
	Delete(ctx context.Context, id string) error
}

// ScheduleStoreForOrchestrator defines the store interface needed by agenda orchestrators.
type ScheduleStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (schedule.Session, error)
	List(ctx context.Context, filter scheduleStore.ListFilter) ([]schedule.Session, error)
	Save(ctx context.Context, s schedule.Session) error
	Delete(ctx context.Context, id string) error
}

// Agenda errors
var (
	ErrRoomClash      = errors.New("room is already booked for that time")
	ErrUnknownSpeaker = errors.New("speaker does not exist")
)

// --- Speakers ---

// SaveSpeakerDeps holds dependencies for SaveSpeaker and DeleteSpeaker.
type SaveSpeakerDeps struct {
	SpeakerStore SpeakerStoreForOrchestrator
	GenerateID   func() string
}

// ExecuteSaveSpeaker creates a speaker when input.ID is empty, otherwise updates it.
// POST: Returns the stored speaker; storage.ErrNotFound when updating an unknown id
func ExecuteSaveSpeaker(ctx context.Context, input speaker.Speaker, deps SaveSpeakerDeps) (speaker.Speaker, error) {
	if input.ID == "" {
		input.ID = deps.GenerateID()
	} else if _, err := deps.SpeakerStore.GetByID(ctx, input.ID); err != nil {
		return speaker.Speaker{}, err
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Title = strings.TrimSpace(input.Title)
	input.Company = strings.TrimSpace(input.Company)
	if err := input.Validate(); err != nil {
		return speaker.Speaker{}, err
	}
	if err := deps.SpeakerStore.Save(ctx, input); err != nil {
		return speaker.Speaker{}, err
	}
	slog.Info("content_event", "event", "speaker_saved", "speaker_id", input.ID)
	return input, nil
}

// ExecuteDeleteSpeaker removes a speaker; their sessions stay on the agenda unassigned.
func ExecuteDeleteSpeaker(ctx context.Context, id string, deps SaveSpeakerDeps) error {
	if err := deps.SpeakerStore.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("content_event", "event", "speaker_deleted", "speaker_id", id)
	return nil
}

// --- Agenda sessions ---

// SaveSessionDeps holds dependencies for SaveSession and DeleteSession.
type SaveSessionDeps struct {
	ScheduleStore ScheduleStoreForOrchestrator
	SpeakerStore  SpeakerStoreForOrchestrator
	GenerateID    func() string
}

// ExecuteSaveSession creates or updates an agenda slot.
// PRE: SpeakerID, when set, names an existing speaker
// POST: Returns ErrRoomClash if another session holds the room at an overlapping time
func ExecuteSaveSession(ctx context.Context, input schedule.Session, deps SaveSessionDeps) (schedule.Session, error) {
	if input.ID == "" {
		input.ID = deps.GenerateID()
	} else if _, err := deps.ScheduleStore.GetByID(ctx, input.ID); err != nil {
		return schedule.Session{}, err
	}
	input.Title = strings.TrimSpace(input.Title)
	input.Room = strings.TrimSpace(input.Room)
	input.Track = strings.TrimSpace(input.Track)
	if err := input.Validate(); err != nil {
		return schedule.Session{}, err
	}
	if input.SpeakerID != "" {
		_, err := deps.SpeakerStore.GetByID(ctx, input.SpeakerID)
		if errors.Is(err, storage.ErrNotFound) {
			return schedule.Session{}, fmt.Errorf("%w: %s", ErrUnknownSpeaker, input.SpeakerID)
		}
		if err != nil {
			return schedule.Session{}, err
		}
	}

	sameDay, err := deps.ScheduleStore.List(ctx, scheduleStore.ListFilter{
		From: input.StartsAt.Add(-24 * time.Hour),
		To:   input.EndsAt,
	})
	if err != nil {
		return schedule.Session{}, err
	}
	for _, other := range sameDay {
		if other.ID != input.ID && input.Overlaps(other) {
			return schedule.Session{}, fmt.Errorf("%w: %q in %s", ErrRoomClash, other.Title, other.Room)
		}
	}

	if err := deps.ScheduleStore.Save(ctx, input); err != nil {
		return schedule.Session{}, err
	}
	slog.Info("content_event", "event", "session_saved", "session_id", input.ID, "room", input.Room, "starts_at", input.StartsAt)
	return input, nil
}

// ExecuteDeleteSession removes an agenda slot.
func ExecuteDeleteSession(ctx context.Context, id string, deps SaveSessionDeps) error {
	if err := deps.ScheduleStore.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("content_event", "event", "session_deleted", "session_id", id)
	return nil
}
