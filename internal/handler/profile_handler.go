package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// ProfileService reads and stores the delivery profile of the device.
type ProfileService interface {
	Get(ctx context.Context) (model.DeliveryInfo, error)
	Save(ctx context.Context, info model.DeliveryInfo) (model.DeliveryInfo, error)
}

// ProfileHandler handles profile HTTP requests.
type ProfileHandler struct {
	service ProfileService
	logger  zerolog.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(service ProfileService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger.With().Str("handler", "profile").Logger(),
	}
}

// Profile handles GET and PUT /api/profile requests.
func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		profile, err := h.service.Get(r.Context())
		if err != nil {
			writeDomainError(w, err, h.logger)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	case http.MethodPut:
		var req model.DeliveryInfo
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
			return
		}

		profile, err := h.service.Save(r.Context(), req)
		if err != nil {
			writeDomainError(w, err, h.logger)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
	}
}
