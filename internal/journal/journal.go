package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/coderun/internal/runner"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so started_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Record is one journaled run.
type Record struct {
	RunID     string
	Dir       string
	File      string
	Language  string
	Bytes     int64
	State     string
	ExitCode  int
	Kind      string
	Error     string
	StartedAt time.Time
	Duration  time.Duration
}

// Store keeps a history of runs in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the journal at path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id      TEXT PRIMARY KEY,
			dir         TEXT NOT NULL,
			file        TEXT NOT NULL DEFAULT '',
			language    TEXT NOT NULL,
			bytes       INTEGER NOT NULL DEFAULT 0,
			state       TEXT NOT NULL,
			exit_code   INTEGER NOT NULL,
			kind        TEXT NOT NULL DEFAULT '',
			error       TEXT NOT NULL DEFAULT '',
			started_at  TEXT NOT NULL,
			duration_ns INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);`)
	return err
}

// Record stores the outcome of a run.
func (s *Store) Record(ctx context.Context, res *runner.Result) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, dir, file, language, bytes, state, exit_code, kind, error, started_at, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, res.Dir, res.File, res.Language, res.Bytes, res.State.String(), res.ExitCode,
		res.Kind, res.Error, res.StartedAt.UTC().Format(timeLayout), int64(res.Duration),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", res.RunID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first. limit <= 0 means 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, dir, file, language, bytes, state, exit_code, kind, error, started_at, duration_ns
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Get returns the run whose id starts with prefix. The prefix is matched
// literally.
func (s *Store) Get(ctx context.Context, prefix string) (*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, dir, file, language, bytes, state, exit_code, kind, error, started_at, duration_ns
		FROM runs WHERE substr(run_id, 1, length(?)) = ? LIMIT 2`, prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("ambiguous run prefix %q", prefix)
	}
}

// ErrNotFound is returned by Get when no run matches.
var ErrNotFound = errors.New("run not found")

func (s *Store) Close() error {
	return s.db.Close()
}

func scanRecord(rows *sql.Rows) (*Record, error) {
	var rec Record
	var startedAt string
	var duration int64
	if err := rows.Scan(&rec.RunID, &rec.Dir, &rec.File, &rec.Language, &rec.Bytes, &rec.State,
		&rec.ExitCode, &rec.Kind, &rec.Error, &startedAt, &duration); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	t, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("run %s: bad started_at %q: %w", rec.RunID, startedAt, err)
	}
	rec.StartedAt = t
	rec.Duration = time.Duration(duration)
	return &rec, nil
}
