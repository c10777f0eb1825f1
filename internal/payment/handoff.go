// Package payment hands a checkout off to the Khalti gateway and verifies
// the outcome when the shopper comes back.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/backend"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// Keys of the pending payment records within a device partition.
const (
	PendingOrderIDKey = "pendingOrderId"
	PendingDraftKey   = "pendingOrderDraft"
	PendingSummaryKey = "pendingOrderSummary"
)

// Handoff persists a pending payment and starts it on the gateway.
type Handoff struct {
	state   repository.Resolver
	backend backend.Client
	logger  zerolog.Logger
}

// NewHandoff creates a payment handoff.
func NewHandoff(state repository.Resolver, client backend.Client, logger zerolog.Logger) *Handoff {
	return &Handoff{
		state:   state,
		backend: client,
		logger:  logger.With().Str("component", "payment-handoff").Logger(),
	}
}

// Prepare stores draft and summary as the pending payment, replacing any
// earlier one.
func (h *Handoff) Prepare(ctx context.Context, draft model.OrderDraft, summary model.OrderSummary) error {
	repo := h.state.For(ctx)

	if err := setJSON(ctx, repo, PendingDraftKey, draft); err != nil {
		return err
	}
	if err := setJSON(ctx, repo, PendingSummaryKey, summary); err != nil {
		return err
	}

	h.logger.Debug().
		Int("item_count", len(draft.Items)).
		Float64("total", draft.Total).
		Msg("pending payment prepared")
	return nil
}

// Pending returns the stored draft and summary. Missing or unreadable
// records yield model.ErrMissingPaymentDetails.
func (h *Handoff) Pending(ctx context.Context) (model.OrderDraft, model.OrderSummary, error) {
	repo := h.state.For(ctx)

	var draft model.OrderDraft
	if err := getJSON(ctx, repo, PendingDraftKey, &draft); err != nil {
		return model.OrderDraft{}, model.OrderSummary{}, h.missing(err)
	}

	var summary model.OrderSummary
	if err := getJSON(ctx, repo, PendingSummaryKey, &summary); err != nil {
		return model.OrderDraft{}, model.OrderSummary{}, h.missing(err)
	}

	if len(draft.Items) == 0 {
		return model.OrderDraft{}, model.OrderSummary{}, model.ErrMissingPaymentDetails
	}

	return draft, summary, nil
}

// Initiate starts the pending payment on the gateway. On success the order
// id is remembered for verification and the pending draft is discarded.
// Once the gateway accepted the payment, storage failures are only logged;
// the shopper still gets the payment URL. On failure the draft stays so the
// shopper can retry.
func (h *Handoff) Initiate(ctx context.Context) (*model.PaymentInitiation, error) {
	draft, _, err := h.Pending(ctx)
	if err != nil {
		return nil, err
	}

	initiation, err := h.backend.InitiateKhalti(ctx, draft)
	if err != nil {
		h.logger.Warn().Err(err).Msg("khalti initiation failed")
		return nil, err
	}

	logger := h.logger.With().Str("order_id", initiation.OrderID).Logger()

	repo := h.state.For(ctx)
	if err := repo.Set(ctx, PendingOrderIDKey, []byte(initiation.OrderID)); err != nil {
		logger.Error().Err(err).Msg("failed to store pending order id")
	}
	if err := h.Discard(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to discard pending draft")
	}

	h.logger.Info().
		Str("order_id", initiation.OrderID).
		Str("pidx", initiation.Pidx).
		Msg("khalti payment initiated")

	return initiation, nil
}

// Discard removes the pending draft and summary.
func (h *Handoff) Discard(ctx context.Context) error {
	repo := h.state.For(ctx)

	if err := repo.Delete(ctx, PendingDraftKey); err != nil {
		return fmt.Errorf("failed to delete pending draft: %w", err)
	}
	if err := repo.Delete(ctx, PendingSummaryKey); err != nil {
		return fmt.Errorf("failed to delete pending summary: %w", err)
	}
	return nil
}

func (h *Handoff) missing(err error) error {
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, errUnreadable) {
		return model.ErrMissingPaymentDetails
	}
	return err
}

var errUnreadable = errors.New("unreadable state record")

func getJSON(ctx context.Context, repo repository.StateRepository, key string, out any) error {
	raw, err := repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s", errUnreadable, key)
	}
	return nil
}

func setJSON(ctx context.Context, repo repository.StateRepository, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := repo.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}
