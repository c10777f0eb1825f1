package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Schema creates the table backing the PostgreSQL state repository.
const Schema = `
	CREATE TABLE IF NOT EXISTS client_state (
		key        TEXT PRIMARY KEY,
		value      BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
`

// postgresRepository implements StateRepository using PostgreSQL.
type postgresRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresRepository creates a new PostgreSQL-backed state repository.
func NewPostgresRepository(pool *pgxpool.Pool, logger zerolog.Logger) StateRepository {
	return &postgresRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "postgres-state").Logger(),
	}
}

// EnsureSchema creates the client_state table if it does not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create client_state table: %w", err)
	}
	return nil
}

// Get retrieves the value stored under key.
func (r *postgresRepository) Get(ctx context.Context, key string) ([]byte, error) {
	query := `
		SELECT value
		FROM client_state
		WHERE key = $1
	`

	var value []byte
	err := r.pool.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("key", key).Msg("state not found")
			return nil, ErrNotFound
		}
		r.logger.Error().Err(err).Str("key", key).Msg("failed to query state")
		return nil, fmt.Errorf("failed to query state: %w", err)
	}

	return value, nil
}

// Set upserts the value stored under key.
func (r *postgresRepository) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO client_state (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.pool.Exec(ctx, query, key, value); err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("failed to write state")
		return fmt.Errorf("failed to write state: %w", err)
	}

	r.logger.Debug().Str("key", key).Int("bytes", len(value)).Msg("state written")
	return nil
}

// Delete removes key.
func (r *postgresRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM client_state WHERE key = $1`

	if _, err := r.pool.Exec(ctx, query, key); err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("failed to delete state")
		return fmt.Errorf("failed to delete state: %w", err)
	}

	return nil
}
