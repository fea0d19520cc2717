package db

import (
	"context"
	"database/sql"

	"catalog-post/pkg/domain"
)

// DBProvider is an interface for database clients that provide access to a sql.DB handle.
// This allows both PostgresClient and SupabaseClient to back a RunStore.
type DBProvider interface {
	DB() *sql.DB
}

// RunHistory is implemented by every run history backend.
type RunHistory interface {
	SaveRun(ctx context.Context, record domain.RunRecord) error
	RecentRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)
}

var (
	_ RunHistory = (*Client)(nil)
	_ RunHistory = (*RunStore)(nil)
	_ RunHistory = (*SupabaseStore)(nil)
)
