package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"techday/internal/adapters/storage"
	domain "techday/internal/domain/audit"
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

// TestSQLiteStore_SaveAndFilter tests ordering and each filter field.
func TestSQLiteStore_SaveAndFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC)

	events := []domain.Event{
		domain.NewEvent("a-1", base, "ops@techday.example", domain.CategoryAuth, domain.ActionSignIn),
		domain.NewEvent("a-2", base.Add(time.Minute), "ops@techday.example", domain.CategorySponsors, domain.ActionReorder).
			WithResource("tier", "gold"),
		domain.NewEvent("a-3", base.Add(2*time.Minute), "intruder@example.com", domain.CategoryAuth, domain.ActionSignInFailed).
			WithSeverity(domain.SeverityWarning),
	}
	for _, e := range events {
		if err := store.Save(ctx, e); err != nil {
			t.Fatalf("Save %s: %v", e.ID, err)
		}
	}

	ids := func(es []domain.Event) []string {
		out := make([]string, len(es))
		for i, e := range es {
			out[i] = e.ID
		}
		return out
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all newest first", Filter{}, []string{"a-3", "a-2", "a-1"}},
		{"category", Filter{Category: domain.CategoryAuth}, []string{"a-3", "a-1"}},
		{"action", Filter{Action: domain.ActionReorder}, []string{"a-2"}},
		{"actor any case", Filter{ActorEmail: "OPS@techday.example"}, []string{"a-2", "a-1"}},
		{"since", Filter{Since: base.Add(90 * time.Second)}, []string{"a-3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.List(ctx, tt.filter, 10)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, ids(got)); diff != "" {
				t.Errorf("ids (-want +got):\n%s", diff)
			}
		})
	}

	got, _ := store.List(ctx, Filter{Action: domain.ActionReorder}, 1)
	if got[0].ResourceID != "gold" || !got[0].Timestamp.Equal(base.Add(time.Minute)) {
		t.Errorf("round trip = %+v", got[0])
	}
}

// TestSQLiteStore_RejectsInvalid tests that events without an action are refused.
func TestSQLiteStore_RejectsInvalid(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(context.Background(), domain.Event{ID: "x"}); err == nil {
		t.Error("event without action saved")
	}
}
