package sponsor_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"techday/internal/domain/sponsor"
)

func tierOf(ids ...string) []sponsor.Sponsor {
	out := make([]sponsor.Sponsor, len(ids))
	for i, id := range ids {
		out[i] = sponsor.Sponsor{ID: id, Name: id, Tier: sponsor.TierSilver, Position: i}
	}
	return out
}

// TestSponsor_Validate tests validation of Sponsor.
func TestSponsor_Validate(t *testing.T) {
	tests := []struct {
		name    string
		sponsor sponsor.Sponsor
		wantErr error
	}{
		{"valid", sponsor.Sponsor{Name: "Acme", Tier: sponsor.TierGold, WebsiteURL: "https://acme.example"}, nil},
		{"no website", sponsor.Sponsor{Name: "Acme", Tier: sponsor.TierGold}, nil},
		{"empty name", sponsor.Sponsor{Name: " ", Tier: sponsor.TierGold}, sponsor.ErrEmptyName},
		{"bad tier", sponsor.Sponsor{Name: "Acme", Tier: "diamond"}, sponsor.ErrInvalidTier},
		{"bad website", sponsor.Sponsor{Name: "Acme", Tier: sponsor.TierGold, WebsiteURL: "javascript:alert(1)"}, sponsor.ErrInvalidWebsite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sponsor.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestParseTier tests tier parsing and ranking.
func TestParseTier(t *testing.T) {
	tier, err := sponsor.ParseTier(" Gold ")
	if err != nil || tier != sponsor.TierGold {
		t.Fatalf("ParseTier = %q, %v", tier, err)
	}
	if sponsor.TierPlatinum.Rank() >= sponsor.TierCommunity.Rank() {
		t.Error("platinum must rank before community")
	}
	if _, err := sponsor.ParseTier("diamond"); !errors.Is(err, sponsor.ErrInvalidTier) {
		t.Errorf("expected ErrInvalidTier, got %v", err)
	}
}

// TestMove tests the remove-and-reinsert reorder, including the documented silver example.
func TestMove(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"last to first", 2, 0, []string{"C", "A", "B"}},
		{"first to last", 0, 2, []string{"B", "C", "A"}},
		{"middle down", 1, 2, []string{"A", "C", "B"}},
		{"same index", 1, 1, []string{"A", "B", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := []string{"A", "B", "C"}
			got, err := sponsor.Move(in, tt.from, tt.to)
			if err != nil {
				t.Fatalf("Move: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Move mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]string{"A", "B", "C"}, in); diff != "" {
				t.Errorf("input was mutated:\n%s", diff)
			}
		})
	}
	if _, err := sponsor.Move([]string{"A"}, 0, 1); !errors.Is(err, sponsor.ErrIndexRange) {
		t.Errorf("expected ErrIndexRange, got %v", err)
	}
}

// TestApplyOrder tests permutation enforcement and renumbering.
func TestApplyOrder(t *testing.T) {
	current := tierOf("A", "B", "C")

	got, err := sponsor.ApplyOrder(current, []string{"C", "A", "B"})
	if err != nil {
		t.Fatalf("ApplyOrder: %v", err)
	}
	if diff := cmp.Diff([]string{"C", "A", "B"}, sponsor.IDs(got)); diff != "" {
		t.Errorf("order mismatch:\n%s", diff)
	}
	for i, s := range got {
		if s.Position != i {
			t.Errorf("%s position = %d, want %d", s.ID, s.Position, i)
		}
	}

	bad := [][]string{
		{"A", "B"},
		{"A", "B", "B"},
		{"A", "B", "Z"},
		{"A", "B", "C", "D"},
	}
	for _, ids := range bad {
		if _, err := sponsor.ApplyOrder(current, ids); !errors.Is(err, sponsor.ErrOrderMismatch) {
			t.Errorf("ApplyOrder(%v) = %v, want ErrOrderMismatch", ids, err)
		}
	}
}

// TestMove_PermutationInvariant tests that any sequence of moves keeps positions contiguous.
func TestMove_PermutationInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 1; n <= 12; n++ {
		seq := tierOf(make([]string, n)...)
		for i := range seq {
			seq[i].ID = string(rune('a' + i))
		}
		for step := 0; step < 50; step++ {
			moved, err := sponsor.Move(seq, rng.Intn(n), rng.Intn(n))
			if err != nil {
				t.Fatalf("Move: %v", err)
			}
			seq, err = sponsor.ApplyOrder(seq, sponsor.IDs(moved))
			if err != nil {
				t.Fatalf("ApplyOrder: %v", err)
			}
			if err := sponsor.CheckPositions(seq); err != nil {
				t.Fatalf("n=%d step=%d: %v", n, step, err)
			}
		}
	}
}

// TestCheckPositions tests gap and duplicate detection.
func TestCheckPositions(t *testing.T) {
	seq := tierOf("A", "B", "C")
	seq[2].Position = 3
	if err := sponsor.CheckPositions(seq); !errors.Is(err, sponsor.ErrBadPositions) {
		t.Errorf("gap: got %v", err)
	}
	seq[2].Position = 1
	if err := sponsor.CheckPositions(seq); !errors.Is(err, sponsor.ErrBadPositions) {
		t.Errorf("duplicate: got %v", err)
	}
}

// TestGroup tests that every tier appears in display order with sorted members.
func TestGroup(t *testing.T) {
	all := []sponsor.Sponsor{
		{ID: "s2", Tier: sponsor.TierSilver, Position: 1},
		{ID: "g1", Tier: sponsor.TierGold, Position: 0},
		{ID: "s1", Tier: sponsor.TierSilver, Position: 0},
	}
	groups := sponsor.Group(all, map[sponsor.Tier]int64{sponsor.TierSilver: 4})
	if len(groups) != len(sponsor.Tiers) {
		t.Fatalf("got %d groups", len(groups))
	}
	if groups[0].Tier != sponsor.TierPlatinum || len(groups[0].Sponsors) != 0 {
		t.Errorf("platinum group = %+v", groups[0])
	}
	silver := groups[sponsor.TierSilver.Rank()]
	if diff := cmp.Diff([]string{"s1", "s2"}, sponsor.IDs(silver.Sponsors)); diff != "" {
		t.Errorf("silver order:\n%s", diff)
	}
	if silver.Version != 4 {
		t.Errorf("silver version = %d", silver.Version)
	}
}
