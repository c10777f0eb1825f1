// Package backend talks to the storefront REST API that owns products,
// orders and payments.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"storefront/internal/identity"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CorrelationIDHeader is sent on every backend request.
const CorrelationIDHeader = "X-Correlation-ID"

// Fallback messages used when the backend gives no message of its own.
const (
	msgFetchProducts  = "Failed to fetch products"
	msgFetchProduct   = "Failed to fetch product"
	msgCreateOrder    = "Failed to create order"
	msgFetchOrders    = "Failed to fetch orders"
	msgFetchOrder     = "Failed to fetch order"
	msgInitiateKhalti = "Failed to initiate Khalti payment"
	msgVerifyKhalti   = "Failed to verify Khalti payment"
)

// Client defines the backend operations used by the cart and checkout flow.
type Client interface {
	// ListProducts returns the full catalogue.
	ListProducts(ctx context.Context) ([]model.Product, error)

	// GetProduct returns a single product.
	GetProduct(ctx context.Context, id string) (*model.Product, error)

	// CreateOrder commits a direct order.
	CreateOrder(ctx context.Context, draft model.OrderDraft) (*model.Order, error)

	// MyOrders lists the orders of the current identity.
	MyOrders(ctx context.Context) ([]model.Order, error)

	// GetOrder returns a single order.
	GetOrder(ctx context.Context, id string) (*model.Order, error)

	// InitiateKhalti creates the order and starts a Khalti payment for it.
	InitiateKhalti(ctx context.Context, draft model.OrderDraft) (*model.PaymentInitiation, error)

	// VerifyKhalti asks the backend whether a Khalti payment completed.
	VerifyKhalti(ctx context.Context, req model.PaymentVerifyRequest) (*model.PaymentVerification, error)
}

// APIError is a request the backend answered but did not fulfil.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// envelope is the response wrapper used by every backend endpoint.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// rejected reports whether the backend explicitly flagged the call as failed.
func (e envelope) rejected() bool {
	return e.Success != nil && !*e.Success
}

type httpClient struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a backend client. A zero timeout keeps the HTTP
// client's defaults.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) Client {
	return &httpClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "backend-client").Logger(),
	}
}

func (c *httpClient) ListProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &products, msgFetchProducts); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *httpClient) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, &product, msgFetchProduct); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *httpClient) CreateOrder(ctx context.Context, draft model.OrderDraft) (*model.Order, error) {
	var order model.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", draft, &order, msgCreateOrder); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *httpClient) MyOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/my-orders", nil, &orders, msgFetchOrders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *httpClient) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil, &order, msgFetchOrder); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *httpClient) InitiateKhalti(ctx context.Context, draft model.OrderDraft) (*model.PaymentInitiation, error) {
	var initiation model.PaymentInitiation
	if err := c.do(ctx, http.MethodPost, "/api/payments/khalti/initiate", draft, &initiation, msgInitiateKhalti); err != nil {
		return nil, err
	}
	return &initiation, nil
}

func (c *httpClient) VerifyKhalti(ctx context.Context, req model.PaymentVerifyRequest) (*model.PaymentVerification, error) {
	var verification model.PaymentVerification
	if err := c.do(ctx, http.MethodPost, "/api/payments/khalti/verify", req, &verification, msgVerifyKhalti); err != nil {
		return nil, err
	}
	return &verification, nil
}

// do performs one request and decodes the envelope's data into out.
// Transport failures are returned wrapped. A non-2xx status or an explicit
// success:false becomes an *APIError carrying the backend's message or
// fallback; any other 2xx response counts as success.
func (c *httpClient) do(ctx context.Context, method, path string, body, out any, fallback string) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	correlationID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(CorrelationIDHeader, correlationID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := identity.FromContext(ctx).Token; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	logger := c.logger.With().
		Str("method", method).
		Str("path", path).
		Str("correlation_id", correlationID).
		Logger()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error().Err(err).Msg("backend request failed")
		return fmt.Errorf("failed to reach backend: %w", err)
	}
	defer resp.Body.Close()

	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend request completed")

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	if !ok || (decodeErr == nil && env.rejected()) {
		message := env.Message
		if message == "" {
			message = fallback
		}
		logger.Warn().
			Int("status", resp.StatusCode).
			Str("message", message).
			Msg("backend rejected request")
		return &APIError{Status: resp.StatusCode, Message: message}
	}

	if decodeErr != nil {
		logger.Warn().Err(decodeErr).Int("status", resp.StatusCode).Msg("ignoring unreadable backend response")
		return nil
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			logger.Warn().Err(err).Int("status", resp.StatusCode).Msg("ignoring unreadable backend data")
		}
	}

	return nil
}
