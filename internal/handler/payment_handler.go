package handler

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/payment"

	"github.com/rs/zerolog"
)

// PaymentVerifier completes a gateway round trip.
type PaymentVerifier interface {
	Verify(ctx context.Context, query url.Values) payment.Outcome
}

// PaymentHandler serves the gateway return page.
type PaymentHandler struct {
	verifier PaymentVerifier
	logger   zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(verifier PaymentVerifier, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		verifier: verifier,
		logger:   logger.With().Str("handler", "payment").Logger(),
	}
}

// KhaltiReturn handles GET /payment/khalti/return requests.
func (h *PaymentHandler) KhaltiReturn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	outcome := h.verifier.Verify(r.Context(), r.URL.Query())

	status := http.StatusOK
	if outcome.Status == payment.StatusMissingReference {
		status = http.StatusBadRequest
	}

	writeJSON(w, status, outcome)
}
