package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/identity"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// LegacyCartKey holds carts written before carts were keyed by identity.
const LegacyCartKey = "cart"

// CartKey returns the storage key of the cart owned by identityKey.
func CartKey(identityKey string) string {
	return "cart:" + identityKey
}

// Store persists carts per identity in the client state repository.
type Store struct {
	state  repository.Resolver
	logger zerolog.Logger
}

// NewStore creates a cart store over the given state partitions.
func NewStore(state repository.Resolver, logger zerolog.Logger) *Store {
	return &Store{
		state:  state,
		logger: logger.With().Str("component", "cart-store").Logger(),
	}
}

// Load returns the cart of identityKey. A signed-in identity without a cart
// gets an empty one and is never handed the guest cart. The guest identity
// without a cart adopts the legacy unkeyed cart once, after which the legacy
// record is gone. Unreadable records load as empty.
func (s *Store) Load(ctx context.Context, identityKey string) (model.Cart, error) {
	repo := s.state.For(ctx)

	lines, found, err := s.read(ctx, repo, CartKey(identityKey))
	if err != nil {
		return model.Cart{}, err
	}
	if found {
		return model.Cart{Lines: lines}, nil
	}

	if identityKey != identity.GuestKey {
		return model.Cart{Lines: []model.CartLine{}}, nil
	}

	legacy, found, err := s.read(ctx, repo, LegacyCartKey)
	if err != nil {
		return model.Cart{}, err
	}
	if !found {
		return model.Cart{Lines: []model.CartLine{}}, nil
	}

	migrated := model.Cart{Lines: legacy}
	if err := s.write(ctx, repo, CartKey(identity.GuestKey), migrated); err != nil {
		return model.Cart{}, err
	}
	if err := repo.Delete(ctx, LegacyCartKey); err != nil {
		s.logger.Error().Err(err).Msg("failed to delete legacy cart")
		return model.Cart{}, fmt.Errorf("failed to delete legacy cart: %w", err)
	}

	s.logger.Info().
		Int("line_count", len(legacy)).
		Msg("migrated legacy cart into guest cart")

	return migrated, nil
}

// Save overwrites the cart of identityKey.
func (s *Store) Save(ctx context.Context, identityKey string, c model.Cart) error {
	return s.write(ctx, s.state.For(ctx), CartKey(identityKey), c)
}

// Clear persists an empty cart for identityKey.
func (s *Store) Clear(ctx context.Context, identityKey string) error {
	if err := s.Save(ctx, identityKey, model.Cart{}); err != nil {
		return err
	}
	s.logger.Debug().Str("identity", identityKey).Msg("cart cleared")
	return nil
}

// Update loads the cart of identityKey, applies fn and saves the result.
func (s *Store) Update(ctx context.Context, identityKey string, fn func(model.Cart) model.Cart) (model.Cart, error) {
	current, err := s.Load(ctx, identityKey)
	if err != nil {
		return model.Cart{}, err
	}

	next := fn(current)
	if err := s.Save(ctx, identityKey, next); err != nil {
		return model.Cart{}, err
	}
	return next, nil
}

// read returns the lines stored at key. found is false when the key is
// absent or its value cannot be decoded.
func (s *Store) read(ctx context.Context, repo repository.StateRepository, key string) ([]model.CartLine, bool, error) {
	raw, err := repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, nil
		}
		s.logger.Error().Err(err).Str("key", key).Msg("failed to read cart")
		return nil, false, fmt.Errorf("failed to read cart: %w", err)
	}

	var lines []model.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable cart record")
		return nil, false, nil
	}

	return normalize(lines), true, nil
}

func (s *Store) write(ctx context.Context, repo repository.StateRepository, key string, c model.Cart) error {
	lines := c.Lines
	if lines == nil {
		lines = []model.CartLine{}
	}

	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := repo.Set(ctx, key, raw); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to save cart")
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
