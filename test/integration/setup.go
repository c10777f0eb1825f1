package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront/internal/backend"
	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/handler"
	"storefront/internal/identity"
	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/router"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testJWTSecret = "integration-secret"

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool with
// the client state table in place.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	pool, err := database.NewPoolFromURL(ctx, connStr, dbConfig, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// CleanupDB removes all client state.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	if _, err := pool.Exec(context.Background(), "DELETE FROM client_state"); err != nil {
		t.Logf("failed to clean client_state: %v", err)
	}
}

// FakeBackend is an in-memory storefront REST backend. Orders are kept per
// signed-in user id, or under "guest".
type FakeBackend struct {
	Server *httptest.Server

	mu       sync.Mutex
	products map[string]model.Product
	orders   map[string][]model.Order
	payments map[string]string // pidx -> order id
	paid     map[string]bool
}

// NewFakeBackend starts a fake backend seeded with products.
func NewFakeBackend(t *testing.T, products ...model.Product) *FakeBackend {
	t.Helper()

	b := &FakeBackend{
		products: make(map[string]model.Product),
		orders:   make(map[string][]model.Order),
		payments: make(map[string]string),
		paid:     make(map[string]bool),
	}
	for _, p := range products {
		b.products[p.ID] = p
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/products", b.listProducts)
	mux.HandleFunc("/api/products/", b.getProduct)
	mux.HandleFunc("/api/orders", b.createOrder)
	mux.HandleFunc("/api/orders/my-orders", b.myOrders)
	mux.HandleFunc("/api/payments/khalti/initiate", b.initiateKhalti)
	mux.HandleFunc("/api/payments/khalti/verify", b.verifyKhalti)

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Server.Close)
	return b
}

// SetStock changes the quantity on hand of a product.
func (b *FakeBackend) SetStock(productID string, quantity int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.products[productID]
	p.Quantity = quantity
	b.products[productID] = p
}

// MarkPaid makes the gateway report pidx as completed.
func (b *FakeBackend) MarkPaid(pidx string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paid[pidx] = true
}

// Orders returns the orders placed by owner.
func (b *FakeBackend) Orders(owner string) []model.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Order(nil), b.orders[owner]...)
}

func (b *FakeBackend) listProducts(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	products := make([]model.Product, 0, len(b.products))
	for _, p := range b.products {
		products = append(products, p)
	}
	respond(w, http.StatusOK, products)
}

func (b *FakeBackend) getProduct(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.products[strings.TrimPrefix(r.URL.Path, "/api/products/")]
	if !ok {
		fail(w, http.StatusNotFound, "Product not found")
		return
	}
	respond(w, http.StatusOK, p)
}

func (b *FakeBackend) createOrder(w http.ResponseWriter, r *http.Request) {
	var draft model.OrderDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		fail(w, http.StatusBadRequest, "Invalid order")
		return
	}
	respond(w, http.StatusCreated, b.place(owner(r), draft, model.PaymentMethodCOD))
}

func (b *FakeBackend) myOrders(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, b.Orders(owner(r)))
}

func (b *FakeBackend) initiateKhalti(w http.ResponseWriter, r *http.Request) {
	var draft model.OrderDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		fail(w, http.StatusBadRequest, "Invalid order")
		return
	}
	order := b.place(owner(r), draft, model.PaymentMethodKhalti)
	pidx := uuid.New().String()

	b.mu.Lock()
	b.payments[pidx] = order.ID
	b.mu.Unlock()

	respond(w, http.StatusOK, model.PaymentInitiation{
		OrderID:    order.ID,
		Pidx:       pidx,
		PaymentURL: "https://pay.example.com/" + pidx,
	})
}

func (b *FakeBackend) verifyKhalti(w http.ResponseWriter, r *http.Request) {
	var req model.PaymentVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	orderID, ok := b.payments[req.Pidx]
	if !ok {
		fail(w, http.StatusNotFound, "Payment not found")
		return
	}
	paid := b.paid[req.Pidx]
	status := "Pending"
	if paid {
		status = "Completed"
	}
	respond(w, http.StatusOK, model.PaymentVerification{OrderID: orderID, Paid: paid, Status: status})
}

func (b *FakeBackend) place(owner string, draft model.OrderDraft, method model.PaymentMethod) model.Order {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now().UTC()
	order := model.Order{
		ID:            uuid.New().String(),
		Items:         draft.Items,
		Total:         draft.Total,
		Status:        model.OrderStatusPending,
		PaymentMethod: method,
		PaymentStatus: model.PaymentStatusUnpaid,
		CustomerName:  draft.CustomerName,
		CustomerEmail: draft.CustomerEmail,
		Phone:         draft.Phone,
		Address:       draft.Address,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	b.orders[owner] = append(b.orders[owner], order)
	return order
}

// owner reads the user id from the forwarded bearer token.
func owner(r *http.Request) string {
	who := identity.NewTokenParser(testJWTSecret, zerolog.Nop()).Parse(r.Header.Get("Authorization"))
	return who.Key()
}

func respond(w http.ResponseWriter, status int, data any) {
	raw, _ := json.Marshal(data)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": true, "data": json.RawMessage(raw)})
}

func fail(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}

// SignToken issues a backend-style token for a user.
func SignToken(t *testing.T, userID, name, email string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    userID,
		"name":  name,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

// TestServer is the storefront API wired the same way as cmd/api.
type TestServer struct {
	Server    *httptest.Server
	Client    *http.Client
	Publisher *RecordingPublisher
}

// SetupTestServer wires the storefront API over state and the given backend.
func SetupTestServer(t *testing.T, stateRepo repository.StateRepository, backendURL string, preserveCart bool) *TestServer {
	t.Helper()

	logger := zerolog.Nop()
	state := repository.NewDeviceResolver(stateRepo)
	client := backend.NewClient(backendURL, 5*time.Second, logger)
	provider := identity.ContextProvider{}
	publisher := &RecordingPublisher{}

	carts := cart.NewStore(state, logger)
	cartService := cart.NewService(carts, client, provider, 120, logger)
	handoff := payment.NewHandoff(state, client, logger)
	verifier := payment.NewVerifier(state, carts, client, provider, publisher,
		payment.VerifierOptions{PreserveCartOnFailure: preserveCart}, logger)
	profiles := checkout.NewProfileStore(state, logger)
	orchestrator := checkout.NewOrchestrator(carts, state, client, handoff, provider, publisher, 120, logger)

	mux := router.New(router.Handlers{
		Product:  handler.NewProductHandler(client, logger),
		Order:    handler.NewOrderHandler(client, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Checkout: handler.NewCheckoutHandler(orchestrator, logger),
		Payment:  handler.NewPaymentHandler(verifier, logger),
		Profile:  handler.NewProfileHandler(profiles, logger),
	}, identity.NewTokenParser(testJWTSecret, logger), nil, logger)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &TestServer{Server: server, Client: NewBrowser(t), Publisher: publisher}
}

// NewBrowser returns an HTTP client that keeps cookies like a browser tab.
func NewBrowser(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

// RecordingPublisher keeps every published event topic.
type RecordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *RecordingPublisher) PublishEvent(_ context.Context, topic, _ string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

// Topics returns the published topics in order.
func (p *RecordingPublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...)
}

var _ events.Publisher = (*RecordingPublisher)(nil)

// url joins a path onto the test server address.
func (s *TestServer) url(path string) string {
	return fmt.Sprintf("%s%s", s.Server.URL, path)
}
