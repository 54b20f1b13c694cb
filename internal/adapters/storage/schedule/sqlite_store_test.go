package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"techday/internal/adapters/storage"
	speakerstore "techday/internal/adapters/storage/speaker"
	domain "techday/internal/domain/schedule"
	"techday/internal/domain/speaker"
)

var day = time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC)

func at(h int) time.Time { return day.Add(time.Duration(h) * time.Hour) }

func newTestStores(t *testing.T) (*SQLiteStore, *speakerstore.SQLiteStore) {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSQLiteStore(db), speakerstore.NewSQLiteStore(db)
}

// TestSQLiteStore_ListOrderAndFilter tests start-time ordering and the track filter.
func TestSQLiteStore_ListOrderAndFilter(t *testing.T) {
	store, _ := newTestStores(t)
	ctx := context.Background()

	sessions := []domain.Session{
		{ID: "s-2", Title: "Scaling", Kind: domain.KindTalk, Track: "eng", StartsAt: at(11), EndsAt: at(12)},
		{ID: "s-1", Title: "Opening", Kind: domain.KindKeynote, Track: "main", StartsAt: at(9), EndsAt: at(10)},
		{ID: "s-3", Title: "Hiring", Kind: domain.KindPanel, Track: "eng", StartsAt: at(14), EndsAt: at(15)},
	}
	for _, s := range sessions {
		if err := store.Save(ctx, s); err != nil {
			t.Fatalf("Save %s: %v", s.ID, err)
		}
	}

	all, err := store.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if diff := cmp.Diff([]string{"s-1", "s-2", "s-3"}, ids(all)); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}

	eng, err := store.List(ctx, ListFilter{Track: "eng", To: at(13)})
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if diff := cmp.Diff([]string{"s-2"}, ids(eng)); diff != "" {
		t.Errorf("filtered (-want +got):\n%s", diff)
	}
}

// TestSQLiteStore_SpeakerDeleteKeepsSlot tests that removing a speaker blanks the session's speaker.
func TestSQLiteStore_SpeakerDeleteKeepsSlot(t *testing.T) {
	store, speakers := newTestStores(t)
	ctx := context.Background()

	if err := speakers.Save(ctx, speaker.Speaker{ID: "sp-1", Name: "Ana"}); err != nil {
		t.Fatalf("Save speaker: %v", err)
	}
	sess := domain.Session{ID: "s-1", Title: "Talk", Kind: domain.KindTalk, SpeakerID: "sp-1", StartsAt: at(9), EndsAt: at(10)}
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := speakers.Delete(ctx, "sp-1"); err != nil {
		t.Fatalf("Delete speaker: %v", err)
	}

	got, err := store.GetByID(ctx, "s-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.SpeakerID != "" {
		t.Errorf("SpeakerID = %q, want empty", got.SpeakerID)
	}
}

// TestSQLiteStore_Delete tests deletion and the not-found sentinel.
func TestSQLiteStore_Delete(t *testing.T) {
	store, _ := newTestStores(t)
	ctx := context.Background()
	if err := store.Delete(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Delete = %v, want ErrNotFound", err)
	}
	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetByID = %v, want ErrNotFound", err)
	}
}

func ids(list []domain.Session) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.ID
	}
	return out
}
