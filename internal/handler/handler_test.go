package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"storefront/internal/backend"
	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/identity"
	"storefront/internal/model"
	"storefront/internal/payment"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockBackend is a mock of the product and order reads of the backend.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) ListProducts(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockBackend) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockBackend) MyOrders(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockBackend) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(ctx context.Context) (*cart.View, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.View), args.Error(1)
}

func (m *MockCartService) Add(ctx context.Context, productID string, quantity int) (*cart.View, error) {
	args := m.Called(ctx, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.View), args.Error(1)
}

func (m *MockCartService) SetQuantity(ctx context.Context, productID string, quantity int) (*cart.View, error) {
	args := m.Called(ctx, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.View), args.Error(1)
}

func (m *MockCartService) Remove(ctx context.Context, productID string) (*cart.View, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.View), args.Error(1)
}

// MockCheckoutService is a mock implementation of CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Begin(ctx context.Context) (*checkout.Attempt, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Attempt), args.Error(1)
}

func (m *MockCheckoutService) Submit(ctx context.Context, a *checkout.Attempt, method model.PaymentMethod) (*checkout.Result, error) {
	args := m.Called(ctx, a, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Result), args.Error(1)
}

func (m *MockCheckoutService) StartPayment(ctx context.Context, method model.PaymentMethod) (*checkout.Result, error) {
	args := m.Called(ctx, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Result), args.Error(1)
}

// MockVerifier is a mock implementation of PaymentVerifier.
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, query url.Values) payment.Outcome {
	args := m.Called(ctx, query)
	return args.Get(0).(payment.Outcome)
}

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "Backend client error keeps status",
			err:             &backend.APIError{Status: http.StatusNotFound, Message: "Product not found"},
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Product not found",
		},
		{
			name:            "Backend server error becomes bad gateway",
			err:             &backend.APIError{Status: http.StatusInternalServerError, Message: "Failed to fetch orders"},
			expectedStatus:  http.StatusBadGateway,
			expectedMessage: "Failed to fetch orders",
		},
		{
			name:            "Checkout in progress",
			err:             model.ErrCheckoutInProgress,
			expectedStatus:  http.StatusConflict,
			expectedMessage: model.ErrCheckoutInProgress.Message,
		},
		{
			name:            "Read only field",
			err:             model.ErrReadOnlyField,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: model.ErrReadOnlyField.Message,
		},
		{
			name:            "Unknown error is hidden",
			err:             errors.New("failed to read cart: connection reset"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			writeDomainError(w, tt.err, zerolog.Nop())

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.expectedMessage+`"}`, w.Body.String())
		})
	}
}

func TestPathID(t *testing.T) {
	assert.Equal(t, "p1", pathID("/api/cart/items/p1", "/api/cart/items/"))
	assert.Equal(t, "", pathID("/api/cart/items/", "/api/cart/items/"))
	assert.Equal(t, "", pathID("/api/cart/items/p1/extra", "/api/cart/items/"))
	assert.Equal(t, "", pathID("/api/orders", "/api/cart/items/"))
}

func TestProductHandler(t *testing.T) {
	products := &MockBackend{}
	h := NewProductHandler(products, zerolog.Nop())

	products.On("ListProducts", mock.Anything).Return([]model.Product{{ID: "p1", Name: "Tomato"}}, nil)
	products.On("GetProduct", mock.Anything, "p1").Return(&model.Product{ID: "p1", Name: "Tomato"}, nil)
	products.On("GetProduct", mock.Anything, "p9").Return(nil, &backend.APIError{Status: http.StatusNotFound, Message: "Product not found"})

	tests := []struct {
		name           string
		method         string
		path           string
		handle         http.HandlerFunc
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "List products",
			method:         http.MethodGet,
			path:           "/api/products",
			handle:         h.GetAll,
			expectedStatus: http.StatusOK,
			expectedBody:   `"Tomato"`,
		},
		{
			name:           "Get product",
			method:         http.MethodGet,
			path:           "/api/products/p1",
			handle:         h.GetByID,
			expectedStatus: http.StatusOK,
			expectedBody:   `"_id":"p1"`,
		},
		{
			name:           "Unknown product",
			method:         http.MethodGet,
			path:           "/api/products/p9",
			handle:         h.GetByID,
			expectedStatus: http.StatusNotFound,
			expectedBody:   "Product not found",
		},
		{
			name:           "Missing ID",
			method:         http.MethodGet,
			path:           "/api/products/",
			handle:         h.GetByID,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "product ID is required",
		},
		{
			name:           "Wrong method",
			method:         http.MethodPost,
			path:           "/api/products",
			handle:         h.GetAll,
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			tt.handle(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}

func TestOrderHandler(t *testing.T) {
	t.Run("List returns an empty array", func(t *testing.T) {
		orders := &MockBackend{}
		orders.On("MyOrders", mock.Anything).Return(nil, nil)
		h := NewOrderHandler(orders, zerolog.Nop())

		w := httptest.NewRecorder()
		h.List(w, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("List surfaces backend message", func(t *testing.T) {
		orders := &MockBackend{}
		orders.On("MyOrders", mock.Anything).Return(nil, &backend.APIError{Status: http.StatusUnauthorized, Message: "Not authorized"})
		h := NewOrderHandler(orders, zerolog.Nop())

		w := httptest.NewRecorder()
		h.List(w, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Not authorized")
	})

	t.Run("Get by ID", func(t *testing.T) {
		orders := &MockBackend{}
		orders.On("GetOrder", mock.Anything, "o1").Return(&model.Order{ID: "o1", Total: 127}, nil)
		h := NewOrderHandler(orders, zerolog.Nop())

		w := httptest.NewRecorder()
		h.GetByID(w, httptest.NewRequest(http.MethodGet, "/api/orders/o1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"total":127`)
	})
}

func TestCartHandler(t *testing.T) {
	view := &cart.View{
		Items:   []model.CartLine{{ProductID: "p1", Name: "Tomato", UnitPrice: 3.5, Quantity: 2}},
		Summary: model.OrderSummary{Subtotal: 7, DeliveryFee: 120, Total: 127},
	}

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		setupMock      func(m *MockCartService)
		route          func(h *CartHandler) http.HandlerFunc
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "Get cart",
			method: http.MethodGet,
			path:   "/api/cart",
			setupMock: func(m *MockCartService) {
				m.On("Get", mock.Anything).Return(view, nil)
			},
			route:          func(h *CartHandler) http.HandlerFunc { return h.Get },
			expectedStatus: http.StatusOK,
			expectedBody:   `"total":127`,
		},
		{
			name:   "Add item defaults to one",
			method: http.MethodPost,
			path:   "/api/cart/items",
			body:   `{"productId":"p1"}`,
			setupMock: func(m *MockCartService) {
				m.On("Add", mock.Anything, "p1", 1).Return(view, nil)
			},
			route:          func(h *CartHandler) http.HandlerFunc { return h.AddItem },
			expectedStatus: http.StatusOK,
			expectedBody:   `"items"`,
		},
		{
			name:           "Add item without product",
			method:         http.MethodPost,
			path:           "/api/cart/items",
			body:           `{"quantity":2}`,
			setupMock:      func(m *MockCartService) {},
			route:          func(h *CartHandler) http.HandlerFunc { return h.AddItem },
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "product ID is required",
		},
		{
			name:   "Add out of stock item",
			method: http.MethodPost,
			path:   "/api/cart/items",
			body:   `{"productId":"p2","quantity":1}`,
			setupMock: func(m *MockCartService) {
				m.On("Add", mock.Anything, "p2", 1).Return(nil, model.NewDomainError(model.ErrCodeOutOfStock, "Spinach is out of stock"))
			},
			route:          func(h *CartHandler) http.HandlerFunc { return h.AddItem },
			expectedStatus: http.StatusConflict,
			expectedBody:   "Spinach is out of stock",
		},
		{
			name:   "Update quantity",
			method: http.MethodPut,
			path:   "/api/cart/items/p1",
			body:   `{"quantity":2}`,
			setupMock: func(m *MockCartService) {
				m.On("SetQuantity", mock.Anything, "p1", 2).Return(view, nil)
			},
			route:          func(h *CartHandler) http.HandlerFunc { return h.Item },
			expectedStatus: http.StatusOK,
		},
		{
			name:   "Update to zero is rejected",
			method: http.MethodPut,
			path:   "/api/cart/items/p1",
			body:   `{"quantity":0}`,
			setupMock: func(m *MockCartService) {
				m.On("SetQuantity", mock.Anything, "p1", 0).Return(nil, model.ErrInvalidQuantity)
			},
			route:          func(h *CartHandler) http.HandlerFunc { return h.Item },
			expectedStatus: http.StatusBadRequest,
			expectedBody:   model.ErrInvalidQuantity.Message,
		},
		{
			name:   "Remove item",
			method: http.MethodDelete,
			path:   "/api/cart/items/p1",
			setupMock: func(m *MockCartService) {
				m.On("Remove", mock.Anything, "p1").Return(&cart.View{Items: []model.CartLine{}}, nil)
			},
			route:          func(h *CartHandler) http.HandlerFunc { return h.Item },
			expectedStatus: http.StatusOK,
			expectedBody:   `"items":[]`,
		},
		{
			name:           "Invalid JSON",
			method:         http.MethodPost,
			path:           "/api/cart/items",
			body:           `{`,
			setupMock:      func(m *MockCartService) {},
			route:          func(h *CartHandler) http.HandlerFunc { return h.AddItem },
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockCartService{}
			tt.setupMock(svc)
			h := NewCartHandler(svc, zerolog.Nop())

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			tt.route(h)(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestCheckoutHandler_Form(t *testing.T) {
	attempt, err := checkout.NewAttempt(identity.Identity{UserID: "u1", Name: "Asha", Email: "asha@example.com"}, nil)
	require.NoError(t, err)

	svc := &MockCheckoutService{}
	svc.On("Begin", mock.Anything).Return(attempt, nil)
	h := NewCheckoutHandler(svc, zerolog.Nop())

	w := httptest.NewRecorder()
	h.Checkout(w, httptest.NewRequest(http.MethodGet, "/api/checkout", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"state": "collecting_delivery_info",
		"deliveryInfo": {"name": "Asha", "email": "asha@example.com", "phone": "", "address": ""},
		"nameReadOnly": true,
		"emailReadOnly": true,
		"nameEmailReadOnly": true
	}`, w.Body.String())
}

func TestCheckoutHandler_FormSignedInWithoutClaims(t *testing.T) {
	profile := &model.DeliveryInfo{Name: "Ram", Email: "ram@example.com", Phone: "9800000000", Address: "Kathmandu"}
	attempt, err := checkout.NewAttempt(identity.Identity{UserID: "u1"}, profile)
	require.NoError(t, err)

	svc := &MockCheckoutService{}
	svc.On("Begin", mock.Anything).Return(attempt, nil)
	h := NewCheckoutHandler(svc, zerolog.Nop())

	w := httptest.NewRecorder()
	h.Checkout(w, httptest.NewRequest(http.MethodGet, "/api/checkout", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"state": "collecting_delivery_info",
		"deliveryInfo": {"name": "Ram", "email": "ram@example.com", "phone": "9800000000", "address": "Kathmandu"},
		"nameReadOnly": false,
		"emailReadOnly": false,
		"nameEmailReadOnly": false
	}`, w.Body.String())
}

func TestCheckoutHandler_Submit(t *testing.T) {
	tests := []struct {
		name           string
		who            identity.Identity
		body           string
		method         model.PaymentMethod
		result         *checkout.Result
		submitErr      error
		expectSubmit   bool
		expectedPhone  string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Guest direct order",
			who:            identity.Guest(),
			body:           `{"name":"Ram","email":"ram@example.com","phone":"9800000000","address":"Kathmandu"}`,
			method:         model.PaymentMethodCOD,
			result:         &checkout.Result{State: checkout.StateSuccess, Message: checkout.MsgOrderPlaced, Next: checkout.NextOrders},
			expectSubmit:   true,
			expectedPhone:  "9800000000",
			expectedStatus: http.StatusOK,
			expectedBody:   `"state":"success"`,
		},
		{
			name:           "Khalti redirect",
			who:            identity.Guest(),
			body:           `{"name":"Ram","email":"ram@example.com","phone":"9800000000","address":"Kathmandu","paymentMethod":"khalti"}`,
			method:         model.PaymentMethodKhalti,
			result:         &checkout.Result{State: checkout.StateInitiatingPayment, RedirectURL: "https://pay.example.com/px1"},
			expectSubmit:   true,
			expectedPhone:  "9800000000",
			expectedStatus: http.StatusOK,
			expectedBody:   `"redirectUrl":"https://pay.example.com/px1"`,
		},
		{
			name:           "Signed-in shopper cannot change email",
			who:            identity.Identity{UserID: "u1", Name: "Asha", Email: "asha@example.com"},
			body:           `{"email":"other@example.com","phone":"9800000000","address":"Kathmandu"}`,
			expectSubmit:   false,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   model.ErrReadOnlyField.Message,
		},
		{
			name:           "Signed-in shopper may resend account details",
			who:            identity.Identity{UserID: "u1", Name: "Asha", Email: "asha@example.com"},
			body:           `{"name":"Asha","email":"asha@example.com","phone":"9800000000","address":"Kathmandu"}`,
			method:         model.PaymentMethodCOD,
			result:         &checkout.Result{State: checkout.StateSuccess},
			expectSubmit:   true,
			expectedPhone:  "9800000000",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Signed-in shopper without account details enters them",
			who:            identity.Identity{UserID: "u1"},
			body:           `{"name":"Ram","email":"ram@example.com","phone":"9800000000","address":"Kathmandu"}`,
			method:         model.PaymentMethodCOD,
			result:         &checkout.Result{State: checkout.StateSuccess},
			expectSubmit:   true,
			expectedPhone:  "9800000000",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Phone with too many digits is kept for validation",
			who:            identity.Guest(),
			body:           `{"name":"Ram","email":"ram@example.com","phone":"98000000001","address":"Kathmandu"}`,
			method:         model.PaymentMethodCOD,
			result:         &checkout.Result{State: checkout.StateFailed},
			expectSubmit:   true,
			expectedPhone:  "98000000001",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Concurrent checkout",
			who:            identity.Guest(),
			body:           `{"name":"Ram","email":"ram@example.com","phone":"9800000000","address":"Kathmandu"}`,
			method:         model.PaymentMethodCOD,
			submitErr:      model.ErrCheckoutInProgress,
			expectSubmit:   true,
			expectedPhone:  "9800000000",
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Invalid JSON",
			who:            identity.Guest(),
			body:           `nope`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempt, err := checkout.NewAttempt(tt.who, nil)
			require.NoError(t, err)

			svc := &MockCheckoutService{}
			svc.On("Begin", mock.Anything).Return(attempt, nil)
			if tt.expectSubmit {
				if tt.submitErr != nil {
					svc.On("Submit", mock.Anything, attempt, tt.method).Return(nil, tt.submitErr)
				} else {
					svc.On("Submit", mock.Anything, attempt, tt.method).Return(tt.result, nil)
				}
			}
			h := NewCheckoutHandler(svc, zerolog.Nop())

			w := httptest.NewRecorder()
			h.Checkout(w, httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(tt.body)))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			if tt.expectSubmit {
				svc.AssertExpectations(t)
				assert.Equal(t, tt.expectedPhone, attempt.DeliveryInfo().Phone)
			} else {
				svc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestCheckoutHandler_SubmitLongPhoneOverProfile(t *testing.T) {
	profile := &model.DeliveryInfo{Name: "Ram", Email: "ram@example.com", Phone: "9811111111", Address: "Kathmandu"}
	attempt, err := checkout.NewAttempt(identity.Guest(), profile)
	require.NoError(t, err)

	result := &checkout.Result{}
	svc := &MockCheckoutService{}
	svc.On("Begin", mock.Anything).Return(attempt, nil)
	svc.On("Submit", mock.Anything, attempt, model.PaymentMethodCOD).
		Run(func(args mock.Arguments) {
			a := args.Get(1).(*checkout.Attempt)
			errs, err := a.Validate(model.Cart{Lines: []model.CartLine{{ProductID: "p1", Quantity: 1}}})
			*result = checkout.Result{State: checkout.StateFailed, Message: err.Error(), FieldErrors: errs}
		}).
		Return(result, nil)
	h := NewCheckoutHandler(svc, zerolog.Nop())

	body := `{"phone":"+977 9800000000"}`
	w := httptest.NewRecorder()
	h.Checkout(w, httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"phone":"`+checkout.MsgPhoneLength+`"`)
	assert.Equal(t, "9779800000000", attempt.DeliveryInfo().Phone)
	svc.AssertExpectations(t)
}

func TestCheckoutHandler_StartPayment(t *testing.T) {
	svc := &MockCheckoutService{}
	svc.On("StartPayment", mock.Anything, model.PaymentMethodKhalti).
		Return(&checkout.Result{State: checkout.StateFailed, Message: "Missing payment details", Next: checkout.NextCart}, nil)
	h := NewCheckoutHandler(svc, zerolog.Nop())

	w := httptest.NewRecorder()
	h.StartPayment(w, httptest.NewRequest(http.MethodPost, "/api/payments/khalti/start", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"next":"/cart"`)
	svc.AssertExpectations(t)
}

func TestPaymentHandler_KhaltiReturn(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		outcome        payment.Outcome
		expectedStatus int
	}{
		{
			name:           "Paid",
			query:          "?pidx=px1&orderId=o1",
			outcome:        payment.Outcome{Status: payment.StatusPaid, Message: payment.MsgPaid, Next: payment.NextOrders, OrderID: "o1"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Not paid",
			query:          "?pidx=px1",
			outcome:        payment.Outcome{Status: payment.StatusNotPaid, Message: payment.MsgNotPaid, Next: payment.NextCart},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing reference",
			query:          "",
			outcome:        payment.Outcome{Status: payment.StatusMissingReference, Message: payment.MsgMissingReference},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &MockVerifier{}
			verifier.On("Verify", mock.Anything, mock.Anything).Return(tt.outcome)
			h := NewPaymentHandler(verifier, zerolog.Nop())

			w := httptest.NewRecorder()
			h.KhaltiReturn(w, httptest.NewRequest(http.MethodGet, "/payment/khalti/return"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.outcome.Message)
			verifier.AssertExpectations(t)
		})
	}
}
