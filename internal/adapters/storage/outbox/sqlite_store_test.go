package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"techday/internal/adapters/storage"
	domain "techday/internal/domain/outbox"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSQLiteStore(db)
}

// TestSQLiteStore_DueAndUpdate tests due selection and upsert.
func TestSQLiteStore_DueAndUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 11, 1, 8, 0, 0, 0, time.UTC)

	soon := domain.NewEntry("o-1", "registration_confirmation", `{"to":["a@b.co"]}`, errors.New("timeout"), now, time.Minute)
	later := domain.NewEntry("o-2", "pitch_receipt", `{"to":["c@d.co"]}`, errors.New("timeout"), now, time.Hour)
	for _, e := range []domain.Entry{soon, later} {
		if err := store.Save(ctx, e); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	due, err := store.ListDue(ctx, now.Add(2*time.Minute), 10)
	if err != nil || len(due) != 1 || due[0].ID != "o-1" {
		t.Fatalf("due = %+v, %v", due, err)
	}
	if due[0].ErrorMessage != "timeout" || due[0].Payload != `{"to":["a@b.co"]}` || !due[0].LastAttemptedAt.Equal(now) {
		t.Errorf("round trip = %+v", due[0])
	}

	got := due[0]
	got.RecordSuccess("msg-1", now.Add(2*time.Minute))
	if err := store.Save(ctx, got); err != nil {
		t.Fatal(err)
	}
	if due, _ := store.ListDue(ctx, now.Add(2*time.Hour), 10); len(due) != 1 || due[0].ID != "o-2" {
		t.Errorf("due after delivery = %+v", due)
	}
	done, _ := store.ListByStatus(ctx, domain.StatusDone, 10)
	if len(done) != 1 || done[0].MessageID != "msg-1" {
		t.Errorf("done = %+v", done)
	}
	if all, _ := store.ListByStatus(ctx, "", 10); len(all) != 2 {
		t.Errorf("all = %d entries", len(all))
	}
}

// TestSQLiteStore_GetByIDMissing tests the not-found mapping.
func TestSQLiteStore_GetByIDMissing(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.GetByID(context.Background(), "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}
