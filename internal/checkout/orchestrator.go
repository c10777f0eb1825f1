package checkout

import (
	"context"
	"errors"
	"sync"

	"storefront/internal/backend"
	"storefront/internal/cart"
	"storefront/internal/events"
	"storefront/internal/identity"
	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// Messages and destinations of a finished attempt.
const (
	MsgOrderPlaced = "Order placed successfully!"
	NextOrders     = "/orders"
	NextCart       = "/cart"
)

// Result is what the shopper sees after a checkout step.
type Result struct {
	State       State               `json:"state"`
	Message     string              `json:"message,omitempty"`
	Next        string              `json:"next,omitempty"`
	RedirectURL string              `json:"redirectUrl,omitempty"`
	FieldErrors FieldErrors         `json:"fieldErrors,omitempty"`
	Order       *model.Order        `json:"order,omitempty"`
	Summary     *model.OrderSummary `json:"summary,omitempty"`
}

// Orchestrator runs checkout attempts for the current identity.
type Orchestrator struct {
	carts       *cart.Store
	backend     backend.Client
	handoff     *payment.Handoff
	profiles    *ProfileStore
	identity    identity.Provider
	publisher   events.Publisher
	deliveryFee float64
	logger      zerolog.Logger

	inflight sync.Map
}

// NewOrchestrator creates a checkout orchestrator.
func NewOrchestrator(
	carts *cart.Store,
	state repository.Resolver,
	client backend.Client,
	handoff *payment.Handoff,
	provider identity.Provider,
	publisher events.Publisher,
	deliveryFee float64,
	logger zerolog.Logger,
) *Orchestrator {
	logger = logger.With().Str("service", "checkout").Logger()
	return &Orchestrator{
		carts:       carts,
		backend:     client,
		handoff:     handoff,
		profiles:    NewProfileStore(state, logger),
		identity:    provider,
		publisher:   publisher,
		deliveryFee: deliveryFee,
		logger:      logger,
	}
}

// Begin opens a checkout attempt with delivery details prefilled from the
// identity and the stored profile.
func (o *Orchestrator) Begin(ctx context.Context) (*Attempt, error) {
	return NewAttempt(o.identity.Current(ctx), o.profiles.Load(ctx))
}

// Submit validates the attempt, checks stock and places the order through
// the chosen payment method. Checkout failures are reported in the Result;
// the error return is kept for a concurrent checkout of the same cart,
// misuse of the attempt, and storage failures.
func (o *Orchestrator) Submit(ctx context.Context, a *Attempt, method model.PaymentMethod) (*Result, error) {
	if a.state != StateCollectingDeliveryInfo {
		_, err := Transition(a.state, EventDetailsAccepted)
		return nil, err
	}

	release, err := o.acquire(ctx, a.identity)
	if err != nil {
		return nil, err
	}
	defer release()

	logger := o.logger.With().
		Str("identity", a.identity.Key()).
		Str("payment_method", string(method)).
		Logger()

	c, err := o.carts.Load(ctx, a.identity.Key())
	if err != nil {
		return nil, err
	}

	fieldErrs, err := a.Validate(c)
	if err != nil {
		logger.Debug().Err(err).Msg("checkout details rejected")
		return &Result{State: a.state, Message: err.Error(), FieldErrors: fieldErrs}, nil
	}

	if err := checkMethod(method); err != nil {
		return o.fail(a, EventMethodRejected, err.Error())
	}

	if err := a.advance(EventDetailsAccepted); err != nil {
		return nil, err
	}

	if err := validateStock(ctx, o.backend, itemsFromCart(c)); err != nil {
		logger.Info().Err(err).Msg("stock validation failed")
		return o.fail(a, EventStockRejected, err.Error())
	}

	draft, summary := BuildDraft(c, a.info, o.deliveryFee)

	if method == model.PaymentMethodKhalti {
		if err := a.advance(EventStockConfirmedGateway); err != nil {
			return nil, err
		}
		if err := o.handoff.Prepare(ctx, draft, summary); err != nil {
			return nil, err
		}
		return o.initiate(ctx, a, summary)
	}

	if err := a.advance(EventStockConfirmedDirect); err != nil {
		return nil, err
	}

	order, err := o.backend.CreateOrder(ctx, draft)
	if err != nil {
		logger.Warn().Err(err).Msg("order creation failed")
		return o.fail(a, EventOrderRejected, err.Error())
	}

	if err := o.carts.Clear(ctx, a.identity.Key()); err != nil {
		logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to clear cart after order")
	}
	if err := a.advance(EventOrderAccepted); err != nil {
		return nil, err
	}

	o.publish(ctx, events.TopicOrderPlaced, a.identity.Key(), events.OrderPlaced{
		OrderID:     order.ID,
		IdentityKey: a.identity.Key(),
		Total:       draft.Total,
		ItemCount:   len(draft.Items),
		Method:      string(method),
	})

	logger.Info().
		Str("order_id", order.ID).
		Float64("total", draft.Total).
		Msg("order placed")

	return &Result{
		State:   a.state,
		Message: MsgOrderPlaced,
		Next:    NextOrders,
		Order:   order,
		Summary: &summary,
	}, nil
}

// StartPayment initiates the stored pending payment with a fresh stock
// check. It serves shoppers returning to the payment step.
func (o *Orchestrator) StartPayment(ctx context.Context, method model.PaymentMethod) (*Result, error) {
	who := o.identity.Current(ctx)

	release, err := o.acquire(ctx, who)
	if err != nil {
		return nil, err
	}
	defer release()

	// The pending draft already passed delivery validation.
	a := &Attempt{state: StateCollectingDeliveryInfo, identity: who}
	a.lockAccountFields()

	if method != model.PaymentMethodKhalti {
		err := checkMethod(method)
		if err == nil {
			err = model.ErrUnsupportedPayment
		}
		return o.fail(a, EventMethodRejected, err.Error())
	}

	draft, summary, err := o.handoff.Pending(ctx)
	if err != nil {
		if errors.Is(err, model.ErrMissingPaymentDetails) {
			res, ferr := o.fail(a, EventMethodRejected, err.Error())
			if res != nil {
				res.Next = NextCart
			}
			return res, ferr
		}
		return nil, err
	}

	if err := a.advance(EventDetailsAccepted); err != nil {
		return nil, err
	}

	if err := validateStock(ctx, o.backend, itemsFromDraft(draft)); err != nil {
		o.logger.Info().Err(err).Str("identity", who.Key()).Msg("stock validation failed")
		return o.fail(a, EventStockRejected, err.Error())
	}

	if err := a.advance(EventStockConfirmedGateway); err != nil {
		return nil, err
	}
	return o.initiate(ctx, a, summary)
}

func (o *Orchestrator) initiate(ctx context.Context, a *Attempt, summary model.OrderSummary) (*Result, error) {
	initiation, err := o.handoff.Initiate(ctx)
	if err != nil {
		o.logger.Warn().Err(err).Str("identity", a.identity.Key()).Msg("payment initiation failed")
		return o.fail(a, EventPaymentRejected, err.Error())
	}

	o.publish(ctx, events.TopicPaymentInitiated, a.identity.Key(), events.PaymentInitiated{
		OrderID:     initiation.OrderID,
		IdentityKey: a.identity.Key(),
		Pidx:        initiation.Pidx,
		Total:       summary.Total,
	})

	return &Result{
		State:       a.state,
		RedirectURL: initiation.PaymentURL,
		Summary:     &summary,
		Order:       &model.Order{ID: initiation.OrderID, Total: summary.Total},
	}, nil
}

func (o *Orchestrator) fail(a *Attempt, e Event, message string) (*Result, error) {
	if err := a.advance(e); err != nil {
		return nil, err
	}
	return &Result{State: a.state, Message: message}, nil
}

// acquire marks the cart of who on this device as checking out. The
// returned func clears the mark.
func (o *Orchestrator) acquire(ctx context.Context, who identity.Identity) (func(), error) {
	key := repository.DeviceFromContext(ctx) + "|" + who.Key()
	if _, busy := o.inflight.LoadOrStore(key, struct{}{}); busy {
		o.logger.Warn().Str("identity", who.Key()).Msg("checkout already in progress")
		return nil, model.ErrCheckoutInProgress
	}
	return func() { o.inflight.Delete(key) }, nil
}

func (o *Orchestrator) publish(ctx context.Context, topic, key string, event any) {
	if err := o.publisher.PublishEvent(ctx, topic, key, event); err != nil {
		o.logger.Warn().Err(err).Str("topic", topic).Msg("failed to publish checkout event")
	}
}

func checkMethod(method model.PaymentMethod) error {
	switch method {
	case model.PaymentMethodCOD, model.PaymentMethodKhalti:
		return nil
	case model.PaymentMethodEsewa:
		return model.ErrPaymentUnavailable
	default:
		return model.ErrUnsupportedPayment
	}
}
