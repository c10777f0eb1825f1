package payment

import (
	"context"
	"errors"
	"net/url"

	"storefront/internal/backend"
	"storefront/internal/events"
	"storefront/internal/identity"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// Messages shown on the gateway return page.
const (
	MsgMissingReference = "Missing payment reference."
	MsgPaid             = "Payment successful. Redirecting to your orders..."
	MsgNotPaid          = "Payment not completed. Please try again."
)

// Where the shopper goes after verification.
const (
	NextOrders = "/orders"
	NextCart   = "/cart"
)

// Status is the terminal outcome of a verification.
type Status string

const (
	StatusMissingReference Status = "missing_reference"
	StatusPaid             Status = "paid"
	StatusNotPaid          Status = "not_paid"
	StatusError            Status = "error"
)

// Outcome is what the return page shows.
type Outcome struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
	Next    string `json:"next,omitempty"`
	OrderID string `json:"orderId,omitempty"`
}

// CartClearer empties the cart of an identity.
type CartClearer interface {
	Clear(ctx context.Context, identityKey string) error
}

// VerifierOptions tunes verification behaviour.
type VerifierOptions struct {
	// PreserveCartOnFailure keeps the cart when the gateway reports the
	// payment as not completed. Paid payments always clear the cart.
	PreserveCartOnFailure bool
}

// Verifier completes the gateway round trip.
type Verifier struct {
	state     repository.Resolver
	carts     CartClearer
	backend   backend.Client
	identity  identity.Provider
	publisher events.Publisher
	opts      VerifierOptions
	logger    zerolog.Logger
}

// NewVerifier creates a payment verifier.
func NewVerifier(
	state repository.Resolver,
	carts CartClearer,
	client backend.Client,
	provider identity.Provider,
	publisher events.Publisher,
	opts VerifierOptions,
	logger zerolog.Logger,
) *Verifier {
	return &Verifier{
		state:     state,
		carts:     carts,
		backend:   client,
		identity:  provider,
		publisher: publisher,
		opts:      opts,
		logger:    logger.With().Str("component", "payment-verifier").Logger(),
	}
}

// Verify reads pidx and orderId from the return URL query and confirms the
// payment with the backend. It makes a single attempt.
func (v *Verifier) Verify(ctx context.Context, query url.Values) Outcome {
	pidx := query.Get("pidx")
	if pidx == "" {
		v.logger.Warn().Msg("payment return without reference")
		return Outcome{Status: StatusMissingReference, Message: MsgMissingReference}
	}

	repo := v.state.For(ctx)
	orderID := query.Get("orderId")
	if orderID == "" {
		orderID = v.pendingOrderID(ctx, repo)
	}

	logger := v.logger.With().Str("pidx", pidx).Str("order_id", orderID).Logger()

	result, err := v.backend.VerifyKhalti(ctx, model.PaymentVerifyRequest{Pidx: pidx, OrderID: orderID})
	if err != nil {
		logger.Warn().Err(err).Msg("payment verification failed")
		return Outcome{Status: StatusError, Message: err.Error(), Next: NextCart, OrderID: orderID}
	}

	who := v.identity.Current(ctx)

	if err := repo.Delete(ctx, PendingOrderIDKey); err != nil {
		logger.Error().Err(err).Msg("failed to delete pending order id")
	}
	if result.Paid || !v.opts.PreserveCartOnFailure {
		if err := v.carts.Clear(ctx, who.Key()); err != nil {
			logger.Error().Err(err).Msg("failed to clear cart after verification")
		}
	}

	if result.OrderID != "" {
		orderID = result.OrderID
	}

	if err := v.publisher.PublishEvent(ctx, events.TopicPaymentVerified, who.Key(), events.PaymentVerified{
		OrderID:     orderID,
		IdentityKey: who.Key(),
		Pidx:        pidx,
		Paid:        result.Paid,
		Status:      result.Status,
	}); err != nil {
		logger.Warn().Err(err).Msg("failed to publish payment verified event")
	}

	if result.Paid {
		logger.Info().Msg("payment verified")
		return Outcome{Status: StatusPaid, Message: MsgPaid, Next: NextOrders, OrderID: orderID}
	}

	logger.Info().Str("status", result.Status).Msg("payment not completed")
	return Outcome{Status: StatusNotPaid, Message: MsgNotPaid, Next: NextCart, OrderID: orderID}
}

func (v *Verifier) pendingOrderID(ctx context.Context, repo repository.StateRepository) string {
	raw, err := repo.Get(ctx, PendingOrderIDKey)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			v.logger.Error().Err(err).Msg("failed to read pending order id")
		}
		return ""
	}
	return string(raw)
}
