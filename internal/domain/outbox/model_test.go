package outbox

import (
	"errors"
	"testing"
	"time"
)

var t0 = time.Date(2026, 11, 1, 8, 0, 0, 0, time.UTC)

// TestEntry_Backoff tests the retry schedule and exhaustion.
func TestEntry_Backoff(t *testing.T) {
	e := NewEntry("o-1", "registration_confirmation", `{}`, errors.New("timeout"), t0, time.Minute)
	if e.Due(t0) || !e.Due(t0.Add(time.Minute)) {
		t.Fatalf("first retry due at %v", e.NextAttemptAt)
	}

	wantDelays := []time.Duration{2 * time.Minute, 4 * time.Minute, 8 * time.Minute, 10 * time.Minute}
	now := t0
	for i, want := range wantDelays {
		now = now.Add(time.Hour)
		e.RecordFailure(errors.New("still down"), now, time.Minute, 10*time.Minute)
		if got := e.NextAttemptAt.Sub(now); got != want {
			t.Errorf("retry %d delay = %v, want %v", i+1, got, want)
		}
	}
	e.RecordFailure(errors.New("still down"), now, time.Minute, 10*time.Minute)
	if e.Status != StatusFailed || e.Attempts != DefaultMaxAttempts || e.Due(now.Add(24*time.Hour)) {
		t.Errorf("after exhaustion: %+v", e)
	}
}

// TestEntry_SuccessAndAbandon tests terminal transitions.
func TestEntry_SuccessAndAbandon(t *testing.T) {
	e := NewEntry("o-1", "pitch_receipt", `{}`, nil, t0, time.Minute)
	e.RecordSuccess("msg-9", t0.Add(time.Minute))
	if e.Status != StatusDone || e.MessageID != "msg-9" || e.Attempts != 2 {
		t.Errorf("after success: %+v", e)
	}
	if err := e.Abandon(); !errors.Is(err, ErrTerminal) {
		t.Errorf("Abandon done entry = %v", err)
	}

	f := NewEntry("o-2", "pitch_receipt", `{}`, nil, t0, time.Minute)
	if err := f.Abandon(); err != nil || f.Status != StatusAbandoned || f.Due(t0.Add(time.Hour)) {
		t.Errorf("abandon pending = %v, %+v", err, f)
	}
}

// TestEntry_Validate tests required fields.
func TestEntry_Validate(t *testing.T) {
	e := Entry{ID: "x", CreatedAt: t0}
	if err := e.Validate(); !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("Validate() = %v", err)
	}
	e.Payload = "{}"
	if err := e.Validate(); err != nil || e.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("Validate() = %v, max=%d", err, e.MaxAttempts)
	}
}
