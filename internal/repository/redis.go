package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// redisRepository implements StateRepository using Redis strings.
type redisRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisRepository creates a Redis-backed state repository. A zero ttl
// stores values without expiry.
func NewRedisRepository(client *redis.Client, ttl time.Duration, logger zerolog.Logger) StateRepository {
	return &redisRepository{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("repository", "redis-state").Logger(),
	}
}

// Get retrieves the value stored under key.
func (r *redisRepository) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		r.logger.Error().Err(err).Str("key", key).Msg("failed to read state")
		return nil, fmt.Errorf("failed to read state: %w", err)
	}
	return value, nil
}

// Set overwrites the value stored under key.
func (r *redisRepository) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("failed to write state")
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}

// Delete removes key.
func (r *redisRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("failed to delete state")
		return fmt.Errorf("failed to delete state: %w", err)
	}
	return nil
}
