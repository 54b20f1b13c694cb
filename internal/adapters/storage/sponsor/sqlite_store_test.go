package sponsor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"techday/internal/adapters/storage"
	domain "techday/internal/domain/sponsor"
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

func seedTier(t *testing.T, store *SQLiteStore, tier domain.Tier, ids ...string) {
	t.Helper()
	for _, id := range ids {
		_, err := store.Create(context.Background(), domain.Sponsor{
			ID: id, Name: "Sponsor " + id, Tier: tier,
			CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}
}

func tierIDs(t *testing.T, store *SQLiteStore, tier domain.Tier) []string {
	t.Helper()
	seq, err := store.ListByTier(context.Background(), tier)
	if err != nil {
		t.Fatalf("ListByTier: %v", err)
	}
	if err := domain.CheckPositions(seq); err != nil {
		t.Fatalf("positions: %v", err)
	}
	return domain.IDs(seq)
}

func version(t *testing.T, store *SQLiteStore, tier domain.Tier) int64 {
	t.Helper()
	v, err := store.Versions(context.Background())
	if err != nil {
		t.Fatalf("Versions: %v", err)
	}
	return v[tier]
}

// TestSQLiteStore_CreateAppends tests that new sponsors land at the end of their tier.
func TestSQLiteStore_CreateAppends(t *testing.T) {
	store := newTestStore(t)
	seedTier(t, store, domain.TierSilver, "A", "B", "C")
	seedTier(t, store, domain.TierGold, "G")

	if diff := cmp.Diff([]string{"A", "B", "C"}, tierIDs(t, store, domain.TierSilver)); diff != "" {
		t.Errorf("silver (-want +got):\n%s", diff)
	}
	if got := version(t, store, domain.TierSilver); got != 3 {
		t.Errorf("silver version = %d, want 3", got)
	}
	if got := version(t, store, domain.TierPlatinum); got != 0 {
		t.Errorf("untouched tier version = %d, want 0", got)
	}
}

// TestSQLiteStore_Reorder tests the documented silver example end to end.
func TestSQLiteStore_Reorder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedTier(t, store, domain.TierSilver, "A", "B", "C")
	v := version(t, store, domain.TierSilver)

	next, err := store.Reorder(ctx, domain.TierSilver, v, []string{"C", "A", "B"})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if next != v+1 {
		t.Errorf("version = %d, want %d", next, v+1)
	}
	if diff := cmp.Diff([]string{"C", "A", "B"}, tierIDs(t, store, domain.TierSilver)); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}

// TestSQLiteStore_ReorderStaleVersion tests that a stale version writes nothing.
func TestSQLiteStore_ReorderStaleVersion(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedTier(t, store, domain.TierSilver, "A", "B", "C")
	v := version(t, store, domain.TierSilver)

	if _, err := store.Reorder(ctx, domain.TierSilver, v-1, []string{"C", "A", "B"}); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if diff := cmp.Diff([]string{"A", "B", "C"}, tierIDs(t, store, domain.TierSilver)); diff != "" {
		t.Errorf("order changed on conflict:\n%s", diff)
	}
	if got := version(t, store, domain.TierSilver); got != v {
		t.Errorf("version moved to %d on conflict", got)
	}
}

// TestSQLiteStore_ReorderMismatch tests that a non-permutation is rejected atomically.
func TestSQLiteStore_ReorderMismatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedTier(t, store, domain.TierSilver, "A", "B", "C")
	seedTier(t, store, domain.TierGold, "G")
	v := version(t, store, domain.TierSilver)

	cases := [][]string{{"A", "B"}, {"A", "B", "G"}, {"A", "A", "B"}}
	for _, ids := range cases {
		if _, err := store.Reorder(ctx, domain.TierSilver, v, ids); !errors.Is(err, domain.ErrOrderMismatch) {
			t.Errorf("Reorder(%v) = %v, want ErrOrderMismatch", ids, err)
		}
	}
	if got := version(t, store, domain.TierSilver); got != v {
		t.Errorf("version moved to %d after rejected reorders", got)
	}
}

// TestSQLiteStore_ConcurrentReorders tests that of two writers holding the same version only one wins.
func TestSQLiteStore_ConcurrentReorders(t *testing.T) {
	store := newTestStore(t)
	seedTier(t, store, domain.TierSilver, "A", "B", "C")
	v := version(t, store, domain.TierSilver)

	orders := [][]string{{"C", "A", "B"}, {"B", "C", "A"}}
	errs := make([]error, len(orders))
	var wg sync.WaitGroup
	for i, ids := range orders {
		wg.Add(1)
		go func(i int, ids []string) {
			defer wg.Done()
			_, errs[i] = store.Reorder(context.Background(), domain.TierSilver, v, ids)
		}(i, ids)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, storage.ErrConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("wins = %d, want exactly 1", wins)
	}
	tierIDs(t, store, domain.TierSilver)
}

// TestSQLiteStore_DeleteCompacts tests that deleting closes the position gap.
func TestSQLiteStore_DeleteCompacts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedTier(t, store, domain.TierBronze, "A", "B", "C", "D")
	v := version(t, store, domain.TierBronze)

	if err := store.Delete(ctx, "B"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if diff := cmp.Diff([]string{"A", "C", "D"}, tierIDs(t, store, domain.TierBronze)); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
	if got := version(t, store, domain.TierBronze); got != v+1 {
		t.Errorf("version = %d, want %d", got, v+1)
	}
	if err := store.Delete(ctx, "B"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

// TestSQLiteStore_UpdateMovesTier tests that a tier change appends to the new tier and compacts the old.
func TestSQLiteStore_UpdateMovesTier(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedTier(t, store, domain.TierSilver, "A", "B", "C")
	seedTier(t, store, domain.TierGold, "G")

	b, err := store.GetByID(ctx, "B")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	b.Tier = domain.TierGold
	b.Name = "Sponsor B (upgraded)"
	updated, err := store.Update(ctx, b)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Position != 1 {
		t.Errorf("position = %d, want 1", updated.Position)
	}
	if diff := cmp.Diff([]string{"G", "B"}, tierIDs(t, store, domain.TierGold)); diff != "" {
		t.Errorf("gold (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A", "C"}, tierIDs(t, store, domain.TierSilver)); diff != "" {
		t.Errorf("silver (-want +got):\n%s", diff)
	}

	missing := domain.Sponsor{ID: "nope", Name: "x", Tier: domain.TierGold}
	if _, err := store.Update(ctx, missing); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Update unknown = %v, want ErrNotFound", err)
	}
}

// TestSQLiteStore_ReorderKeepsPermutation tests many reorders in a row.
func TestSQLiteStore_ReorderKeepsPermutation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	var ids []string
	for i := 0; i < 6; i++ {
		ids = append(ids, fmt.Sprintf("s%d", i))
	}
	seedTier(t, store, domain.TierCommunity, ids...)

	v := version(t, store, domain.TierCommunity)
	for step := 0; step < 10; step++ {
		moved, err := domain.Move(ids, step%len(ids), (step*5+1)%len(ids))
		if err != nil {
			t.Fatalf("Move: %v", err)
		}
		if v, err = store.Reorder(ctx, domain.TierCommunity, v, moved); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		ids = moved
		if diff := cmp.Diff(ids, tierIDs(t, store, domain.TierCommunity)); diff != "" {
			t.Fatalf("step %d order:\n%s", step, diff)
		}
	}
}
