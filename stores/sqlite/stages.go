// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mdhender/brackets/model"
)

const workColumns = `id, document_id, stage, status, attempt, available_at,
		          claimed_by, claimed_at, finished_at, error_code, error_message`

// joinedWorkColumns is workColumns for queries that join work w to documents d.
const joinedWorkColumns = `w.id, w.document_id, w.stage, w.status, w.attempt, w.available_at,
		       w.claimed_by, w.claimed_at, w.finished_at, w.error_code, w.error_message`

// InsertWork queues a job and returns its ID.
// A job with no AvailableAt is available immediately.
func (s *SQLiteStore) InsertWork(ctx context.Context, work *model.Work) (int64, error) {
	if work.AvailableAt.IsZero() {
		work.AvailableAt = time.Now().UTC()
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO work (document_id, stage, status, attempt, available_at) VALUES (?, ?, ?, ?, ?)`,
		work.DocumentID, work.Stage, work.Status, work.Attempt, millis(work.AvailableAt))
	if err != nil {
		return 0, fmt.Errorf("insert work: %w", err)
	}
	if work.ID, err = result.LastInsertId(); err != nil {
		return 0, fmt.Errorf("get work id: %w", err)
	}
	return work.ID, nil
}

// ClaimWork marks the oldest available job for the stage as running and
// returns it. It returns nil when the stage has nothing to do.
//
// The select and the update are one statement, so two workers never
// claim the same job.
func (s *SQLiteStore) ClaimWork(ctx context.Context, stage, workerID string) (*model.Work, error) {
	now := millis(time.Now())
	row := s.db.QueryRowContext(ctx, `
		UPDATE work
		SET status     = 'running',
		    claimed_by = ?1,
		    claimed_at = ?2,
		    attempt    = attempt + 1
		WHERE id = (SELECT q.id
		            FROM work q
		            WHERE q.stage = ?3
		              AND q.status = 'queued'
		              AND q.available_at <= ?2
		            ORDER BY q.available_at, q.id
		            LIMIT 1)
		RETURNING `+workColumns, workerID, now, stage)
	work, err := scanWork(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("claim %s work: %w", stage, err)
	}
	return work, nil
}

// FinishWork records the result of a running job and releases the claim.
// Finishing a job that is not running is an error wrapping sql.ErrNoRows.
func (s *SQLiteStore) FinishWork(ctx context.Context, id int64, result model.WorkResult) error {
	switch result.Status {
	case model.WorkStatusOk, model.WorkStatusFailed:
	default:
		return fmt.Errorf("finish work %d: invalid status %q", id, result.Status)
	}
	var code, message sql.NullString
	if result.Error != nil {
		code, message = nullString(result.Error.Code), nullString(result.Error.Message)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE work
		SET status = ?, finished_at = ?, error_code = ?, error_message = ?,
		    claimed_by = NULL, claimed_at = NULL
		WHERE id = ? AND status = 'running'`,
		result.Status, millis(time.Now()), code, message, id)
	if err != nil {
		return fmt.Errorf("finish work %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("finish work %d: %w", id, err)
	} else if n == 0 {
		return fmt.Errorf("finish work %d: not running: %w", id, sql.ErrNoRows)
	}
	return nil
}

// RequeueFailedWork puts every failed job of the stage back in the queue,
// keeping the attempt count. It returns the number of jobs requeued.
func (s *SQLiteStore) RequeueFailedWork(ctx context.Context, stage string) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE work
		SET status = 'queued', available_at = ?,
		    finished_at = NULL, error_code = NULL, error_message = NULL
		WHERE stage = ? AND status = 'failed'`,
		millis(time.Now()), stage)
	if err != nil {
		return 0, fmt.Errorf("requeue %s work: %w", stage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("requeue %s work: %w", stage, err)
	}
	return int(n), nil
}

// ListFailedWork returns the failed jobs of a stage with their document names.
func (s *SQLiteStore) ListFailedWork(ctx context.Context, stage string) ([]model.Work, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+joinedWorkColumns+`, d.name
		FROM work w
		JOIN documents d ON d.id = w.document_id
		WHERE w.stage = ? AND w.status = 'failed'
		ORDER BY w.id`, stage)
	if err != nil {
		return nil, fmt.Errorf("list failed %s work: %w", stage, err)
	}
	defer rows.Close()

	var list []model.Work
	for rows.Next() {
		var name string
		work, err := scanWork(rows, &name)
		if err != nil {
			return nil, fmt.Errorf("list failed %s work: %w", stage, err)
		}
		work.Document = name
		list = append(list, *work)
	}
	return list, rows.Err()
}

// WorkSummary counts jobs by status for every stage that has any.
func (s *SQLiteStore) WorkSummary(ctx context.Context) (map[string]model.WorkCounts, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stage,
		       SUM(status = 'queued'),
		       SUM(status = 'running'),
		       SUM(status = 'ok'),
		       SUM(status = 'failed')
		FROM work
		GROUP BY stage`)
	if err != nil {
		return nil, fmt.Errorf("work summary: %w", err)
	}
	defer rows.Close()

	summary := map[string]model.WorkCounts{}
	for rows.Next() {
		var stage string
		var counts model.WorkCounts
		if err := rows.Scan(&stage, &counts.Queued, &counts.Running, &counts.Ok, &counts.Failed); err != nil {
			return nil, fmt.Errorf("work summary: %w", err)
		}
		summary[stage] = counts
	}
	return summary, rows.Err()
}

// scanWork reads the workColumns of a row, then any extra columns into extra.
func scanWork(row scanner, extra ...any) (*model.Work, error) {
	var w model.Work
	var availableAt int64
	var claimedBy, errorCode, errorMessage sql.NullString
	var claimedAt, finishedAt sql.NullInt64
	dest := []any{
		&w.ID, &w.DocumentID, &w.Stage, &w.Status, &w.Attempt, &availableAt,
		&claimedBy, &claimedAt, &finishedAt, &errorCode, &errorMessage,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	w.AvailableAt = fromMillis(availableAt)
	w.ClaimedBy = claimedBy.String
	w.ClaimedAt = fromNullMillis(claimedAt)
	w.FinishedAt = fromNullMillis(finishedAt)
	if errorCode.Valid {
		w.Error = &model.WorkError{Code: errorCode.String, Message: errorMessage.String}
	}
	return &w, nil
}
