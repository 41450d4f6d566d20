package journal

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/coderun/internal/runner"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open memory journal: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func result(id string, started time.Time, state runner.State, code int) *runner.Result {
	return &runner.Result{
		RunID:     id,
		Dir:       "/app/code",
		File:      "main.py",
		Language:  "python",
		Bytes:     42,
		State:     state,
		ExitCode:  code,
		StartedAt: started,
		Duration:  1500 * time.Millisecond,
	}
}

func TestRecordAndRecent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ok := result("aaaa-1", base, runner.StateCompleted, 0)
	failed := result("bbbb-2", base.Add(time.Minute), runner.StateFailed, 1)
	failed.Kind = "ExecutionError"
	failed.Error = "division by zero"

	for _, r := range []*runner.Result{ok, failed} {
		if err := s.Record(ctx, r); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recs, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].RunID != "bbbb-2" {
		t.Errorf("newest first: got %s", recs[0].RunID)
	}
	if recs[0].State != "FAILED" || recs[0].Error != "division by zero" || recs[0].Kind != "ExecutionError" {
		t.Errorf("failed record = %+v", recs[0])
	}
	if recs[1].Duration != 1500*time.Millisecond {
		t.Errorf("duration = %v", recs[1].Duration)
	}
	if !recs[1].StartedAt.Equal(base) {
		t.Errorf("started_at = %v, want %v", recs[1].StartedAt, base)
	}
}

func TestRecentLimit(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Now()
	for i, id := range []string{"r1", "r2", "r3"} {
		if err := s.Record(ctx, result(id, base.Add(time.Duration(i)*time.Second), runner.StateCompleted, 0)); err != nil {
			t.Fatal(err)
		}
	}
	recs, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0].RunID != "r3" {
		t.Errorf("got %+v", recs)
	}
}

func TestGetByPrefix(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now()
	_ = s.Record(ctx, result("abc123", now, runner.StateCompleted, 0))
	_ = s.Record(ctx, result("abd456", now, runner.StateExited, 3))

	rec, err := s.Get(ctx, "abd")
	if err != nil {
		t.Fatal(err)
	}
	if rec.ExitCode != 3 || rec.State != "EXITED" {
		t.Errorf("got %+v", rec)
	}

	if _, err := s.Get(ctx, "ab"); err == nil {
		t.Error("expected ambiguous prefix error")
	}
	if _, err := s.Get(ctx, "zzz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetPrefixIsLiteral(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	_ = s.Record(ctx, result("abc123", time.Now(), runner.StateCompleted, 0))

	for _, prefix := range []string{"%", "_", "a%", "ab_"} {
		if _, err := s.Get(ctx, prefix); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%q): expected ErrNotFound, got %v", prefix, err)
		}
	}
}

func TestCorruptStartedAt(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	_ = s.Record(ctx, result("good", time.Now(), runner.StateCompleted, 0))
	if _, err := s.db.ExecContext(ctx, `UPDATE runs SET started_at = 'yesterday' WHERE run_id = 'good'`); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Recent(ctx, 10); err == nil || !strings.Contains(err.Error(), "started_at") {
		t.Errorf("Recent: expected started_at error, got %v", err)
	}
	if _, err := s.Get(ctx, "good"); err == nil {
		t.Error("Get: expected started_at error")
	}
}

func TestDuplicateRunID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	r := result("dup", time.Now(), runner.StateCompleted, 0)
	if err := s.Record(ctx, r); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, r); err == nil {
		t.Error("expected primary key violation")
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "runs.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s.Close() }()

	if err := s.Record(context.Background(), result("one", time.Now(), runner.StateCompleted, 0)); err != nil {
		t.Fatal(err)
	}

	// reopen and read back
	_ = s.Close()
	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s2.Close() }()
	recs, err := s2.Recent(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Errorf("got %d records after reopen", len(recs))
	}
}
