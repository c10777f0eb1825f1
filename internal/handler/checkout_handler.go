package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"storefront/internal/checkout"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// CheckoutService runs checkout attempts.
type CheckoutService interface {
	Begin(ctx context.Context) (*checkout.Attempt, error)
	Submit(ctx context.Context, a *checkout.Attempt, method model.PaymentMethod) (*checkout.Result, error)
	StartPayment(ctx context.Context, method model.PaymentMethod) (*checkout.Result, error)
}

// CheckoutForm is the prefilled delivery dialog.
type CheckoutForm struct {
	State             checkout.State     `json:"state"`
	DeliveryInfo      model.DeliveryInfo `json:"deliveryInfo"`
	NameReadOnly      bool               `json:"nameReadOnly"`
	EmailReadOnly     bool               `json:"emailReadOnly"`
	NameEmailReadOnly bool               `json:"nameEmailReadOnly"`
}

// SubmitCheckoutRequest is the body of POST /api/checkout.
type SubmitCheckoutRequest struct {
	Name          string              `json:"name"`
	Email         string              `json:"email"`
	Phone         string              `json:"phone"`
	Address       string              `json:"address"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
}

// StartPaymentRequest is the body of POST /api/payments/khalti/start.
type StartPaymentRequest struct {
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
}

// CheckoutHandler handles checkout HTTP requests.
type CheckoutHandler struct {
	service CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Checkout handles GET and POST /api/checkout requests.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.form(w, r)
	case http.MethodPost:
		h.submit(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
	}
}

func (h *CheckoutHandler) form(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.service.Begin(r.Context())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, CheckoutForm{
		State:             attempt.State(),
		DeliveryInfo:      attempt.DeliveryInfo(),
		NameReadOnly:      attempt.NameReadOnly(),
		EmailReadOnly:     attempt.EmailReadOnly(),
		NameEmailReadOnly: attempt.NameEmailReadOnly(),
	})
}

// submit places the order. A missing payment method means cash on delivery.
func (h *CheckoutHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = model.PaymentMethodCOD
	}

	attempt, err := h.service.Begin(r.Context())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	if err := applyDelivery(attempt, req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	result, err := h.service.Submit(r.Context(), attempt, req.PaymentMethod)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// applyDelivery copies the submitted fields onto the attempt; empty fields
// keep the prefilled value. Signed-in shoppers may resend their account name
// and email but not change them.
func applyDelivery(a *checkout.Attempt, req SubmitCheckoutRequest) error {
	current := a.DeliveryInfo()

	if err := applyAccountField(a.NameReadOnly(), req.Name, current.Name, a.SetName); err != nil {
		return err
	}
	if err := applyAccountField(a.EmailReadOnly(), req.Email, current.Email, a.SetEmail); err != nil {
		return err
	}

	if req.Phone != "" {
		a.SubmitPhone(req.Phone)
	}
	if req.Address != "" {
		a.SetAddress(req.Address)
	}
	return nil
}

func applyAccountField(locked bool, submitted, current string, set func(string) error) error {
	switch {
	case submitted == "":
		return nil
	case !locked:
		return set(submitted)
	case submitted != current:
		return model.ErrReadOnlyField
	}
	return nil
}

// StartPayment handles POST /api/payments/khalti/start requests.
func (h *CheckoutHandler) StartPayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	req := StartPaymentRequest{PaymentMethod: model.PaymentMethodKhalti}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
			return
		}
	}

	result, err := h.service.StartPayment(r.Context(), req.PaymentMethod)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
