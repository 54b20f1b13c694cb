package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// run executes the root command with args against a fresh temp database.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgFile = ""
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func useTempDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "techday.db")
	t.Setenv("TECHDAY_DB_PATH", path)
	t.Setenv("TECHDAY_LOG_LEVEL", "error")
	return path
}

// TestMigrateAndVersion verifies the schema commands.
func TestMigrateAndVersion(t *testing.T) {
	useTempDB(t)
	out, err := run(t, "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "schema at version") {
		t.Errorf("migrate output = %q", out)
	}
	out, err = run(t, "version")
	if err != nil || !strings.HasPrefix(out, "techday dev") {
		t.Errorf("version = %q, %v", out, err)
	}
}

// TestAdminProvision verifies create then rotate.
func TestAdminProvision(t *testing.T) {
	useTempDB(t)
	args := []string{"admin", "provision", "--email", "Ops@TechDay.example", "--name", "Ops",
		"--question", "First office dog?", "--answer", "Rex", "--pin", "4821", "--permissions", "sponsors,speakers"}

	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if !strings.Contains(out, "created admin ops@techday.example") {
		t.Errorf("first provision output = %q", out)
	}
	out, err = run(t, args...)
	if err != nil || !strings.Contains(out, "updated admin") {
		t.Errorf("second provision = %q, %v", out, err)
	}
}

// TestAdminProvision_BadPermission verifies unknown areas are refused.
func TestAdminProvision_BadPermission(t *testing.T) {
	useTempDB(t)
	_, err := run(t, "admin", "provision", "--email", "a@b.co", "--name", "A",
		"--question", "Q?", "--answer", "x", "--pin", "1234", "--permissions", "sponsors,payroll")
	if err == nil {
		t.Error("unknown permission accepted")
	}
}

// TestSeed verifies a seed file is loaded and reloading is harmless.
func TestSeed(t *testing.T) {
	useTempDB(t)
	file := filepath.Join(t.TempDir(), "seed.yaml")
	body := `
speakers:
  - id: ana
    name: Ana Ruiz
sessions:
  - id: opening
    title: Opening keynote
    kind: keynote
    speaker: ana
    starts_at: 2026-11-20T09:00:00Z
    ends_at: 2026-11-20T09:45:00Z
sponsors:
  - id: acme
    name: Acme
    tier: gold
`
	if err := os.WriteFile(file, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		out, err := run(t, "seed", "--file", file)
		if err != nil {
			t.Fatalf("seed run %d: %v", i, err)
		}
		if !strings.Contains(out, "seeded 1 speakers, 1 sessions, 1 sponsors") {
			t.Errorf("seed run %d output = %q", i, out)
		}
	}
}

type countingSweeper struct{ calls atomic.Int64 }

func (c *countingSweeper) DeleteExpired(context.Context, time.Time) (int64, error) {
	c.calls.Add(1)
	return 1, nil
}

// TestSweepSessions verifies the loop purges on each tick and stops with its context.
func TestSweepSessions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := &countingSweeper{}
	done := make(chan struct{})
	go func() {
		sweepSessions(ctx, store, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for store.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done
	if store.calls.Load() < 2 {
		t.Errorf("sweeps = %d, want at least 2", store.calls.Load())
	}
}
