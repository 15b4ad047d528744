package pgstore

// Package pgstore implements DurableStore on Postgres as a single
// key/value table with upsert semantics.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/target/todo-sync/internal/errors"
)

// Store is a Postgres-backed durable store.
type Store struct {
	DB *sql.DB
}

// NewStore creates a new Postgres-backed store.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

// Migrate creates the backing table when it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv_entries (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("create kv_entries table: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", apperrors.Validation("storage key must not be empty")
	}

	var value string
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperrors.NotFoundf("no value for key %q", key)
		}
		return "", apperrors.MapDBError(fmt.Errorf("select key %q: %w", key, err))
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return apperrors.Validation("storage key must not be empty")
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, key, value)
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("upsert key %q: %w", key, err))
	}
	return nil
}
