package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Product  *handler.ProductHandler
	Order    *handler.OrderHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Payment  *handler.PaymentHandler
	Profile  *handler.ProfileHandler
}

// New creates a new HTTP router with all routes and middleware configured.
// Only allowedOrigins may make credentialed cross-origin calls.
func New(h Handlers, tokens middleware.TokenParser, allowedOrigins []string, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no session required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Product handler function
	productRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/products" && r.URL.Path != "/api/products/" {
			h.Product.GetByID(w, r)
			return
		}
		h.Product.GetAll(w, r)
	}

	// Register product routes (both with and without trailing slash)
	mux.HandleFunc("/api/products", productRouteHandler)
	mux.HandleFunc("/api/products/", productRouteHandler)

	orderRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orders" && r.URL.Path != "/api/orders/" {
			h.Order.GetByID(w, r)
			return
		}
		h.Order.List(w, r)
	}

	mux.HandleFunc("/api/orders", orderRouteHandler)
	mux.HandleFunc("/api/orders/", orderRouteHandler)

	// Cart routes
	mux.HandleFunc("/api/cart", h.Cart.Get)
	mux.HandleFunc("/api/cart/items", h.Cart.AddItem)
	mux.HandleFunc("/api/cart/items/", h.Cart.Item)

	// Checkout and payment routes
	mux.HandleFunc("/api/checkout", h.Checkout.Checkout)
	mux.HandleFunc("/api/payments/khalti/start", h.Checkout.StartPayment)
	mux.HandleFunc("/payment/khalti/return", h.Payment.KhaltiReturn)

	mux.HandleFunc("/api/profile", h.Profile.Profile)

	// Apply middleware in order: Recovery -> Session -> Logging -> CORS
	var handler http.Handler = mux
	handler = middleware.CORS(allowedOrigins)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Session(tokens, logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
