package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ShayCichocki/schemagen/pkg/models"
)

// ErrRunNotFound indicates the requested run does not exist.
var ErrRunNotFound = errors.New("run not found")

// RecordRun inserts one finished run into the history.
func (db *DB) RecordRun(r *models.RunRecord) error {
	_, err := db.Exec(`
		INSERT INTO runs (id, project_path, idea, started_at, duration_ms, num_turns, total_cost_usd, is_error, artifact_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.ProjectPath, r.Idea, formatTime(r.StartedAt), r.DurationMS, r.NumTurns, r.TotalCostUSD, boolToInt(r.IsError), r.ArtifactCount)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (db *DB) GetRun(id string) (*models.RunRecord, error) {
	row := db.QueryRow(`
		SELECT id, project_path, idea, started_at, duration_ms, num_turns, total_cost_usd, is_error, artifact_count
		FROM runs WHERE id = ?
	`, id)

	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]*models.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.Query(`
		SELECT id, project_path, idea, started_at, duration_ms, num_turns, total_cost_usd, is_error, artifact_count
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// PurgeOldRuns deletes runs older than the given duration and returns the
// number deleted.
func (db *DB) PurgeOldRuns(olderThan time.Duration) (int64, error) {
	cutoff := formatTime(time.Now().Add(-olderThan))

	result, err := db.Exec(`DELETE FROM runs WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge old runs: %w", err)
	}
	return result.RowsAffected()
}

// scanner abstracts sql.Row and sql.Rows for scanRun.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*models.RunRecord, error) {
	var (
		r         models.RunRecord
		startedAt string
		isError   int
	)
	err := s.Scan(&r.ID, &r.ProjectPath, &r.Idea, &startedAt, &r.DurationMS,
		&r.NumTurns, &r.TotalCostUSD, &isError, &r.ArtifactCount)
	if err != nil {
		return nil, err
	}

	r.StartedAt, err = parseTime(startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	r.IsError = isError != 0

	return &r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
