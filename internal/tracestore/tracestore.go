// Package tracestore is a reference implementation of the external trace
// store named in spec §4.9/§6.5 (trace_id -> Step tree): the runtime itself
// only ever carries ids (TraceID/ParentTraceID/ChildTraces) on a Step, never
// a store handle, so this package is wired only from cmd/ptclisp and
// integration tests — never from pkg/ptclisp.Run or anything it calls.
// Grounded on a common persistence-store shape (a small struct
// wrapping a *sql.DB, an init that issues idempotent CREATE TABLE
// statements, and context-scoped Exec/QueryRow methods), backed here by
// modernc.org/sqlite instead of postgres since a single local file is all a
// trace store needs.
package tracestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/andreasronge/ptc-runner-sub009/internal/trace"
)

// Store is a sqlite-backed trace_id -> Step record store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite file at path and ensures
// its schema exists. Use ":memory:" for a throwaway store in tests.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("tracestore: open %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS steps (
    trace_id        TEXT PRIMARY KEY,
    parent_trace_id TEXT NOT NULL DEFAULT '',
    turns           INTEGER NOT NULL DEFAULT 0,
    step_json       TEXT NOT NULL,
    created_at      TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);

CREATE INDEX IF NOT EXISTS steps_parent_trace_id_idx ON steps(parent_trace_id);
`)
	if err != nil {
		return fmt.Errorf("tracestore: init schema: %w", err)
	}
	return nil
}

// Close closes the underlying sqlite handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts step, keyed by its TraceID.
func (s *Store) Save(ctx context.Context, step *trace.Step) error {
	if step.TraceID == "" {
		return fmt.Errorf("tracestore: step has no trace_id")
	}
	body, err := json.Marshal(step)
	if err != nil {
		return fmt.Errorf("tracestore: marshaling step %s: %w", step.TraceID, err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO steps (trace_id, parent_trace_id, turns, step_json)
VALUES (?, ?, ?, ?)
ON CONFLICT(trace_id) DO UPDATE SET
    parent_trace_id = excluded.parent_trace_id,
    turns           = excluded.turns,
    step_json       = excluded.step_json
`, step.TraceID, step.ParentTraceID, step.Turns, string(body))
	if err != nil {
		return fmt.Errorf("tracestore: saving step %s: %w", step.TraceID, err)
	}
	return nil
}

// Get returns the Step saved under traceID, or nil if none exists.
func (s *Store) Get(ctx context.Context, traceID string) (*trace.Step, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT step_json FROM steps WHERE trace_id = ?`, traceID).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tracestore: fetching step %s: %w", traceID, err)
	}
	var step trace.Step
	if err := json.Unmarshal([]byte(body), &step); err != nil {
		return nil, fmt.Errorf("tracestore: decoding step %s: %w", traceID, err)
	}
	return &step, nil
}

// Children returns every Step whose ParentTraceID is traceID, oldest first,
// reconstructing the tree §4.9 describes one level at a time.
func (s *Store) Children(ctx context.Context, traceID string) ([]*trace.Step, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT step_json FROM steps WHERE parent_trace_id = ? ORDER BY created_at ASC
`, traceID)
	if err != nil {
		return nil, fmt.Errorf("tracestore: fetching children of %s: %w", traceID, err)
	}
	defer rows.Close()

	var out []*trace.Step
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("tracestore: scanning child of %s: %w", traceID, err)
		}
		var step trace.Step
		if err := json.Unmarshal([]byte(body), &step); err != nil {
			return nil, fmt.Errorf("tracestore: decoding child of %s: %w", traceID, err)
		}
		out = append(out, &step)
	}
	return out, rows.Err()
}
