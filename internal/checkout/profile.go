package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// ProfileKey holds optional delivery details used to prefill checkout.
const ProfileKey = "profileData"

// ProfileStore keeps the delivery profile of the current device.
type ProfileStore struct {
	state  repository.Resolver
	logger zerolog.Logger
}

// NewProfileStore creates a profile store over state.
func NewProfileStore(state repository.Resolver, logger zerolog.Logger) *ProfileStore {
	return &ProfileStore{
		state:  state,
		logger: logger.With().Str("component", "profile").Logger(),
	}
}

// Load returns the stored profile, or nil when there is none or it cannot
// be read.
func (s *ProfileStore) Load(ctx context.Context) *model.DeliveryInfo {
	raw, err := s.state.For(ctx).Get(ctx, ProfileKey)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("failed to read profile data")
		}
		return nil
	}

	var profile model.DeliveryInfo
	if err := json.Unmarshal(raw, &profile); err != nil {
		s.logger.Warn().Err(err).Msg("ignoring unreadable profile data")
		return nil
	}
	return &profile
}

// Get returns the stored profile, or an empty one.
func (s *ProfileStore) Get(ctx context.Context) (model.DeliveryInfo, error) {
	if profile := s.Load(ctx); profile != nil {
		return *profile, nil
	}
	return model.DeliveryInfo{}, nil
}

// Save stores info as the profile. Every field is optional; the phone keeps
// its digits only and a whole email must look valid.
func (s *ProfileStore) Save(ctx context.Context, info model.DeliveryInfo) (model.DeliveryInfo, error) {
	profile := model.DeliveryInfo{
		Name:    strings.TrimSpace(info.Name),
		Email:   strings.TrimSpace(info.Email),
		Phone:   phoneDigitsOf(info.Phone),
		Address: strings.TrimSpace(info.Address),
	}

	if len(profile.Phone) > phoneDigits {
		return model.DeliveryInfo{}, model.NewDomainError(model.ErrCodeValidationFailed, MsgPhoneLength)
	}
	if profile.Email != "" && !emailPattern.MatchString(profile.Email) {
		return model.DeliveryInfo{}, model.NewDomainError(model.ErrCodeValidationFailed, MsgEmailInvalid)
	}

	raw, err := json.Marshal(profile)
	if err != nil {
		return model.DeliveryInfo{}, fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := s.state.For(ctx).Set(ctx, ProfileKey, raw); err != nil {
		return model.DeliveryInfo{}, fmt.Errorf("failed to store profile: %w", err)
	}

	s.logger.Debug().Msg("profile saved")
	return profile, nil
}
