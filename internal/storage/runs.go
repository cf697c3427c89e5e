package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// RunRecord is one row of parse_runs.
type RunRecord struct {
	ID          string
	Root        string
	StartedAt   time.Time
	Duration    time.Duration
	HeaderFiles int
	SourceFiles int
	Classes     int
	Slots       int
	SlotTypes   int
	Unresolved  int
	FilesFailed int
	Cancelled   bool
}

// RecordRun stores a finished run and updates the last_parsed metadata key.
func (s *Store) RecordRun(ctx context.Context, run *RunRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = sq.Insert("parse_runs").
		Columns(
			"run_id", "root", "started_at", "duration_ms",
			"header_files", "source_files", "class_count", "slot_count",
			"slot_type_count", "unresolved_count", "failed_count", "cancelled",
		).
		Values(
			run.ID,
			run.Root,
			run.StartedAt.UTC().Format(time.RFC3339),
			run.Duration.Milliseconds(),
			run.HeaderFiles,
			run.SourceFiles,
			run.Classes,
			run.Slots,
			run.SlotTypes,
			run.Unresolved,
			run.FilesFailed,
			run.Cancelled,
		).
		Options("OR REPLACE").
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = sq.Insert("cache_metadata").
		Columns("key", "value", "updated_at").
		Values("last_parsed", run.StartedAt.UTC().Format(time.RFC3339), now).
		Options("OR REPLACE").
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update last_parsed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// LatestRun returns the most recently started run.
// Returns (nil, nil) if no run has been recorded.
func (s *Store) LatestRun(ctx context.Context) (*RunRecord, error) {
	run := &RunRecord{}
	var startedAt string
	var durationMs int64

	err := sq.Select(
		"run_id", "root", "started_at", "duration_ms",
		"header_files", "source_files", "class_count", "slot_count",
		"slot_type_count", "unresolved_count", "failed_count", "cancelled",
	).
		From("parse_runs").
		OrderBy("started_at DESC", "rowid DESC").
		Limit(1).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(
			&run.ID,
			&run.Root,
			&startedAt,
			&durationMs,
			&run.HeaderFiles,
			&run.SourceFiles,
			&run.Classes,
			&run.Slots,
			&run.SlotTypes,
			&run.Unresolved,
			&run.FilesFailed,
			&run.Cancelled,
		)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}

	run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	run.Duration = time.Duration(durationMs) * time.Millisecond
	return run, nil
}
