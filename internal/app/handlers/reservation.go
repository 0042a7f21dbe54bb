package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/allbirds/storefront/internal/domain/models"
	"github.com/allbirds/storefront/internal/service"
	"github.com/allbirds/storefront/internal/storage"
)

// ReserveRequest holds the selected items and the user-chosen target time.
// The actual hold always lasts 24 hours from creation.
type ReserveRequest struct {
	Items []models.OrderItem `json:"items" validate:"required,min=1"`
	Until time.Time          `json:"until" validate:"required"`
}

// ReserveHandler handles PUT /api/orders/{id}/reservation.
func ReserveHandler(log *slog.Logger, resService service.ReservationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ReserveHandler"
		logger := log.With(slog.String("op", op))

		orderID, err := orderIDParam(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "valid order ID is required")
			return
		}

		var req ReserveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			respondError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			respondError(w, http.StatusBadRequest, "please select at least one item and date/time")
			return
		}

		res, err := resService.Reserve(r.Context(), orderID, req.Items, req.Until)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNoItems), errors.Is(err, service.ErrInvalidUntil):
				respondError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, storage.ErrOrderNotFound):
				respondError(w, http.StatusNotFound, "order not found")
			default:
				logger.Error("failed to reserve items", slog.Any("error", err))
				respondError(w, http.StatusInternalServerError, "failed to reserve items")
			}
			return
		}

		respondJSON(w, http.StatusOK, res)
	}
}

// GetReservationHandler handles GET /api/orders/{id}/reservation. An
// expired or missing reservation is a 404.
func GetReservationHandler(log *slog.Logger, resService service.ReservationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetReservationHandler"
		logger := log.With(slog.String("op", op))

		orderID, err := orderIDParam(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "valid order ID is required")
			return
		}

		res, err := resService.GetActive(r.Context(), orderID)
		if err != nil {
			logger.Error("failed to read reservation", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "failed to read reservation")
			return
		}
		if res == nil {
			respondError(w, http.StatusNotFound, "no active reservation")
			return
		}
		respondJSON(w, http.StatusOK, res)
	}
}

// ClearReservationHandler handles DELETE /api/orders/{id}/reservation.
func ClearReservationHandler(log *slog.Logger, resService service.ReservationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ClearReservationHandler"
		logger := log.With(slog.String("op", op))

		orderID, err := orderIDParam(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "valid order ID is required")
			return
		}

		if err := resService.Clear(r.Context(), orderID); err != nil {
			logger.Error("failed to clear reservation", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "failed to clear reservation")
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
