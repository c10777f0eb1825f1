package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"storefront/internal/cart"

	"github.com/rs/zerolog"
)

// CartService defines the shopper's cart actions.
type CartService interface {
	Get(ctx context.Context) (*cart.View, error)
	Add(ctx context.Context, productID string, quantity int) (*cart.View, error)
	SetQuantity(ctx context.Context, productID string, quantity int) (*cart.View, error)
	Remove(ctx context.Context, productID string) (*cart.View, error)
}

// AddItemRequest is the body of POST /api/cart/items.
type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// UpdateItemRequest is the body of PUT /api/cart/items/{id}.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartHandler handles cart HTTP requests.
type CartHandler struct {
	service CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	view, err := h.service.Get(r.Context())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// AddItem handles POST /api/cart/items requests. A missing quantity adds one.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	req := AddItemRequest{Quantity: 1}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "product ID is required", h.logger)
		return
	}

	view, err := h.service.Add(r.Context(), req.ProductID, req.Quantity)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Item handles PUT and DELETE /api/cart/items/{id} requests.
func (h *CartHandler) Item(w http.ResponseWriter, r *http.Request) {
	productID := pathID(r.URL.Path, "/api/cart/items/")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "product ID is required", h.logger)
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req UpdateItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
			return
		}

		view, err := h.service.SetQuantity(r.Context(), productID, req.Quantity)
		if err != nil {
			writeDomainError(w, err, h.logger)
			return
		}
		writeJSON(w, http.StatusOK, view)

	case http.MethodDelete:
		view, err := h.service.Remove(r.Context(), productID)
		if err != nil {
			writeDomainError(w, err, h.logger)
			return
		}
		writeJSON(w, http.StatusOK, view)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
	}
}
