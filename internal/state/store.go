// Package state persists the history of sync runs in SQLite so operators can
// inspect what the tool last did and the daemon health endpoint can report it.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// RunRecord is one pipeline invocation.
type RunRecord struct {
	ID            string
	Pipeline      string // "changelog" or "overview"
	Outcome       string // "updated", "unchanged", "no-statistics", "failed"
	FieldsUpdated int    // overview: stat anchors rewritten
	Releases      int    // changelog: releases rendered
	Error         string
	Duration      time.Duration
	StartedAt     time.Time
}

// Store records sync runs in SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates or opens the run-history database.
// Use ":memory:" for an in-memory database (tests).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		pipeline TEXT NOT NULL,
		outcome TEXT NOT NULL,
		fields_updated INTEGER NOT NULL DEFAULT 0,
		releases INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		duration_ms INTEGER NOT NULL,
		started_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_pipeline ON runs(pipeline);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records one completed run.
func (s *Store) Append(ctx context.Context, rec RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, pipeline, outcome, fields_updated, releases, error, duration_ms, started_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.Pipeline, rec.Outcome, rec.FieldsUpdated, rec.Releases, rec.Error,
		rec.Duration.Milliseconds(), rec.StartedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns the latest n runs, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, pipeline, outcome, fields_updated, releases, error, duration_ms, started_at FROM runs ORDER BY started_at DESC, id LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var durationMS, startedUnix int64
		var errText sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Pipeline, &rec.Outcome, &rec.FieldsUpdated, &rec.Releases, &errText, &durationMS, &startedUnix); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.Error = errText.String
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.StartedAt = time.Unix(startedUnix, 0)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// LastByPipeline returns the most recent run of one pipeline, or nil.
func (s *Store) LastByPipeline(ctx context.Context, pipeline string) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, pipeline, outcome, fields_updated, releases, error, duration_ms, started_at FROM runs WHERE pipeline = ? ORDER BY started_at DESC, id LIMIT 1", pipeline)

	var rec RunRecord
	var durationMS, startedUnix int64
	var errText sql.NullString
	err := row.Scan(&rec.ID, &rec.Pipeline, &rec.Outcome, &rec.FieldsUpdated, &rec.Releases, &errText, &durationMS, &startedUnix)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	rec.Error = errText.String
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	rec.StartedAt = time.Unix(startedUnix, 0)
	return &rec, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
