package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of *pgxpool.Pool used by PostgresBackend.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresBackend stores each key as one row of the kv_store table.
type PostgresBackend struct {
	db Querier
}

// NewPostgresBackend wraps a pool. Call EnsureSchema once before use.
func NewPostgresBackend(db Querier) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// EnsureSchema creates the kv_store table if it does not exist.
func (p *PostgresBackend) EnsureSchema(ctx context.Context) error {
	if p.db == nil {
		return ErrUnavailable
	}
	_, err := p.db.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS kv_store (
		   key        TEXT PRIMARY KEY,
		   value      JSONB NOT NULL,
		   updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		 )`)
	if err != nil {
		return fmt.Errorf("create kv_store: %w", err)
	}
	return nil
}

func (p *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if p.db == nil {
		return nil, ErrUnavailable
	}
	var raw []byte
	err := p.db.QueryRow(ctx, `SELECT value::text FROM kv_store WHERE key = $1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv_store select %s: %w", key, err)
	}
	return raw, nil
}

func (p *PostgresBackend) Set(ctx context.Context, key string, value []byte) error {
	if p.db == nil {
		return ErrUnavailable
	}
	_, err := p.db.Exec(ctx,
		`INSERT INTO kv_store (key, value, updated_at)
		 VALUES ($1, $2::jsonb, NOW())
		 ON CONFLICT (key) DO UPDATE
		 SET value = EXCLUDED.value, updated_at = NOW()`,
		key, string(value),
	)
	if err != nil {
		return fmt.Errorf("kv_store upsert %s: %w", key, err)
	}
	return nil
}

func (p *PostgresBackend) Delete(ctx context.Context, key string) error {
	if p.db == nil {
		return ErrUnavailable
	}
	if _, err := p.db.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		return fmt.Errorf("kv_store delete %s: %w", key, err)
	}
	return nil
}
