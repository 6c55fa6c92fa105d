// Package postgres implements storage.Repository backed by PostgreSQL, for
// deployments that already run a database and want counters shared across
// processes.
//
// A row holds one counter window; reset_at is the window end in unix
// milliseconds, matching storage.Entry.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/architected-by-miguel/sitecms/storage"
)

// Store implements storage.Repository backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Repository = (*Store)(nil)

// NewRepository returns a Repository backed by the given pgx connection pool.
func NewRepository(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// NewRepositoryFromDSN creates a connection pool from a DSN string, ensures
// the schema exists, and returns a new Repository.
func NewRepositoryFromDSN(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return NewRepository(pool), nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// hitSQL restarts an expired window or counts one more hit, in one
// statement so concurrent hits on a key serialize on its row.
const hitSQL = `
INSERT INTO rate_limits (key, count, reset_at) VALUES ($1, 1, $3)
ON CONFLICT (key) DO UPDATE SET
    count    = CASE WHEN rate_limits.reset_at < $2 THEN 1 ELSE rate_limits.count + 1 END,
    reset_at = CASE WHEN rate_limits.reset_at < $2 THEN $3 ELSE rate_limits.reset_at END
RETURNING count, reset_at`

func (s *Store) Hit(ctx context.Context, key string, now time.Time, window time.Duration) (storage.Entry, error) {
	var e storage.Entry
	err := s.pool.QueryRow(ctx, hitSQL, key, now.UnixMilli(), now.Add(window).UnixMilli()).
		Scan(&e.Count, &e.ResetAt)
	if err != nil {
		return storage.Entry{}, fmt.Errorf("recording hit for %s: %w", key, err)
	}
	return e, nil
}

func (s *Store) Sweep(ctx context.Context, now time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM rate_limits WHERE reset_at < $1`, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("sweeping rate limits: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
