package cart

import (
	"context"

	"storefront/internal/backend"
	"storefront/internal/identity"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// View is a cart together with its totals.
type View struct {
	Items   []model.CartLine   `json:"items"`
	Summary model.OrderSummary `json:"summary"`
}

// Service applies shopper cart actions to the cart of the current identity.
type Service struct {
	store       *Store
	backend     backend.Client
	identity    identity.Provider
	deliveryFee float64
	logger      zerolog.Logger
}

// NewService creates a cart service.
func NewService(
	store *Store,
	client backend.Client,
	provider identity.Provider,
	deliveryFee float64,
	logger zerolog.Logger,
) *Service {
	return &Service{
		store:       store,
		backend:     client,
		identity:    provider,
		deliveryFee: deliveryFee,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// Get returns the current cart.
func (s *Service) Get(ctx context.Context) (*View, error) {
	c, err := s.store.Load(ctx, s.identity.Current(ctx).Key())
	if err != nil {
		return nil, err
	}
	return s.view(c), nil
}

// Add puts quantity units of a product in the cart, capped at the stock the
// backend reports. Negative quantities take units out.
func (s *Service) Add(ctx context.Context, productID string, quantity int) (*View, error) {
	if quantity == 0 {
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.backend.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	key := s.identity.Current(ctx).Key()
	current, err := s.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	if quantity > 0 && (product.Availability == model.AvailabilityOutOfStock || product.Quantity <= 0) {
		return nil, model.NewDomainError(model.ErrCodeOutOfStock, product.Name+" is out of stock")
	}

	next := AddOrIncrement(current, model.SnapshotOf(*product), quantity, product.Quantity)
	if err := s.store.Save(ctx, key, next); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("product_id", productID).
		Int("delta", quantity).
		Msg("cart item added")

	return s.view(next), nil
}

// SetQuantity replaces the quantity of a line already in the cart.
func (s *Service) SetQuantity(ctx context.Context, productID string, quantity int) (*View, error) {
	if quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	next, err := s.store.Update(ctx, s.identity.Current(ctx).Key(), func(c model.Cart) model.Cart {
		return SetQuantity(c, productID, quantity)
	})
	if err != nil {
		return nil, err
	}
	return s.view(next), nil
}

// Remove takes a product out of the cart.
func (s *Service) Remove(ctx context.Context, productID string) (*View, error) {
	next, err := s.store.Update(ctx, s.identity.Current(ctx).Key(), func(c model.Cart) model.Cart {
		return Remove(c, productID)
	})
	if err != nil {
		return nil, err
	}
	return s.view(next), nil
}

func (s *Service) view(c model.Cart) *View {
	items := c.Lines
	if items == nil {
		items = []model.CartLine{}
	}
	return &View{Items: items, Summary: Totals(c, s.deliveryFee)}
}
