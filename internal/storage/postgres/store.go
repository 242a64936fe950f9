package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hongminglow/valide/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ensure Store satisfies the storage.BucketStore interface at compile time.
var _ storage.BucketStore = (*Store)(nil)

// Store provides Postgres-backed persistence for browser session buckets.
type Store struct {
	pool *pgxpool.Pool
}

// NewBucketStore creates a new Store and runs migrations.
func NewBucketStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS storefront_session_items (
			bucket TEXT NOT NULL,
			item_key TEXT NOT NULL,
			item_value TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (bucket, item_key)
		);`,
		`CREATE INDEX IF NOT EXISTS storefront_session_items_expires_idx ON storefront_session_items (expires_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// Get fetches a live value from a bucket.
func (s *Store) Get(ctx context.Context, bucket, key string) (string, error) {
	const query = `
	SELECT item_value
	FROM storefront_session_items
	WHERE bucket = $1 AND item_key = $2 AND expires_at > NOW();
	`
	var value string
	if err := s.pool.QueryRow(ctx, query, bucket, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", storage.ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set upserts a value and slides the whole bucket's expiry forward.
func (s *Store) Set(ctx context.Context, bucket, key, value string, expiresAt time.Time) error {
	const upsert = `
	INSERT INTO storefront_session_items (bucket, item_key, item_value, expires_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (bucket, item_key)
	DO UPDATE SET item_value = EXCLUDED.item_value, expires_at = EXCLUDED.expires_at, updated_at = NOW();
	`
	const touch = `UPDATE storefront_session_items SET expires_at = $2 WHERE bucket = $1;`

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, upsert, bucket, key, value, expiresAt); err != nil {
			return fmt.Errorf("store session item: %w", err)
		}
		if _, err := tx.Exec(ctx, touch, bucket, expiresAt); err != nil {
			return fmt.Errorf("touch session bucket: %w", err)
		}
		return nil
	})
}

// Delete removes one key from a bucket.
func (s *Store) Delete(ctx context.Context, bucket, key string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM storefront_session_items WHERE bucket = $1 AND item_key = $2;`, bucket, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Purge deletes every expired item and reports how many were removed.
func (s *Store) Purge(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM storefront_session_items WHERE expires_at <= $1;`, now)
	if err != nil {
		return 0, fmt.Errorf("purge session items: %w", err)
	}
	return tag.RowsAffected(), nil
}
