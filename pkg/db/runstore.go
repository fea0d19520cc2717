package db

import (
	"context"
	"database/sql"
	"fmt"

	"catalog-post/pkg/domain"
)

// RunStore keeps run history in the SQL `run_history` table of any DBProvider.
type RunStore struct {
	provider DBProvider
}

// NewRunStore creates a store on top of a connected provider.
func NewRunStore(provider DBProvider) *RunStore {
	return &RunStore{provider: provider}
}

func (s *RunStore) db() (*sql.DB, error) {
	if s.provider == nil || s.provider.DB() == nil {
		return nil, fmt.Errorf("postgres DB not connected")
	}
	return s.provider.DB(), nil
}

// EnsureSchema creates the run_history table if it does not exist.
func (s *RunStore) EnsureSchema(ctx context.Context) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	const ddl = `
CREATE TABLE IF NOT EXISTS run_history (
  run_id TEXT PRIMARY KEY,
  started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  finished_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  outcome TEXT NOT NULL,
  title TEXT NOT NULL DEFAULT '',
  product_id TEXT NOT NULL DEFAULT '',
  post_id TEXT NOT NULL DEFAULT '',
  candidates INTEGER NOT NULL DEFAULT 0,
  duplicates INTEGER NOT NULL DEFAULT 0,
  skipped INTEGER NOT NULL DEFAULT 0,
  error TEXT NOT NULL DEFAULT ''
);`

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create run_history table: %w", err)
	}
	return nil
}

const upsertRunQuery = `
INSERT INTO run_history (run_id, started_at, finished_at, outcome, title, product_id, post_id, candidates, duplicates, skipped, error)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (run_id) DO UPDATE SET
  finished_at = EXCLUDED.finished_at,
  outcome = EXCLUDED.outcome,
  title = EXCLUDED.title,
  product_id = EXCLUDED.product_id,
  post_id = EXCLUDED.post_id,
  candidates = EXCLUDED.candidates,
  duplicates = EXCLUDED.duplicates,
  skipped = EXCLUDED.skipped,
  error = EXCLUDED.error`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func upsertRun(ctx context.Context, e execer, r domain.RunRecord) error {
	_, err := e.ExecContext(ctx, upsertRunQuery,
		r.RunID, r.StartedAt, r.FinishedAt, r.Outcome, r.Title, r.ProductID, r.PostID,
		r.Candidates, r.Duplicates, r.Skipped, r.Error)
	if err != nil {
		return fmt.Errorf("upsert run %s: %w", r.RunID, err)
	}
	return nil
}

// SaveRun inserts the record, replacing an earlier row with the same run id.
func (s *RunStore) SaveRun(ctx context.Context, record domain.RunRecord) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	return upsertRun(ctx, db, record)
}

// SaveRuns writes a batch of records in one transaction.
func (s *RunStore) SaveRuns(ctx context.Context, records []domain.RunRecord) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range records {
		if r.RunID == "" {
			continue
		}
		if err := upsertRun(ctx, tx, r); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first. limit <= 0 returns all.
func (s *RunStore) RecentRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	query := `
SELECT run_id, started_at, finished_at, outcome, title, product_id, post_id, candidates, duplicates, skipped, error
FROM run_history
ORDER BY started_at DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunRecord
	for rows.Next() {
		var r domain.RunRecord
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.FinishedAt, &r.Outcome, &r.Title, &r.ProductID,
			&r.PostID, &r.Candidates, &r.Duplicates, &r.Skipped, &r.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return runs, nil
}
