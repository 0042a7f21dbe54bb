package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/allbirds/storefront/internal/domain/models"
	"github.com/allbirds/storefront/internal/service"
	"github.com/allbirds/storefront/internal/storage"
)

// CreateOrderRequest is the checkout commit payload.
type CreateOrderRequest struct {
	UserID   int64              `json:"user_id" validate:"required,gt=0"`
	Items    []models.OrderItem `json:"items" validate:"required,min=1"`
	Total    float64            `json:"total" validate:"required"`
	Shipping models.Shipping    `json:"shipping"`
	Payment  string             `json:"payment" validate:"required"`
}

// CreateOrderResponse mirrors the storefront's checkout contract.
type CreateOrderResponse struct {
	Success bool  `json:"success"`
	OrderID int64 `json:"orderId"`
}

// UpdateStatusRequest is the transition payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatusResponse reports the persisted state after a transition.
type UpdateStatusResponse struct {
	Message string             `json:"message"`
	Status  models.OrderStatus `json:"status"`
}

func orderIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// ListOrdersHandler handles GET /api/orders.
func ListOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrdersHandler"
		logger := log.With(slog.String("op", op))

		orders, err := orderService.ListOrders(r.Context())
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "database error")
			return
		}
		if orders == nil {
			orders = []*models.Order{}
		}
		respondJSON(w, http.StatusOK, orders)
	}
}

// RecentOrdersHandler handles GET /api/orders/recent?days=N. A missing or
// unparsable days value falls back to 7.
func RecentOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RecentOrdersHandler"
		logger := log.With(slog.String("op", op))

		days, err := strconv.Atoi(r.URL.Query().Get("days"))
		if err != nil {
			days = 7
		}

		orders, err := orderService.RecentOrders(r.Context(), days)
		if err != nil {
			logger.Error("failed to fetch recent orders", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "failed to fetch recent orders")
			return
		}
		if orders == nil {
			orders = []*models.Order{}
		}
		respondJSON(w, http.StatusOK, orders)
	}
}

// GetOrderHandler handles GET /api/orders/{id}.
func GetOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetOrderHandler"
		logger := log.With(slog.String("op", op))

		id, err := orderIDParam(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "valid order ID is required")
			return
		}

		order, err := orderService.GetOrder(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrOrderNotFound) {
				respondError(w, http.StatusNotFound, "order not found")
				return
			}
			logger.Error("failed to get order", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "database error")
			return
		}
		respondJSON(w, http.StatusOK, order)
	}
}

// CreateOrderHandler handles POST /api/orders.
func CreateOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateOrderHandler"
		logger := log.With(slog.String("op", op))

		var req CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			respondError(w, http.StatusBadRequest, "invalid request")
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			respondError(w, http.StatusBadRequest, "missing required fields")
			return
		}

		order := &models.Order{
			UserID:   req.UserID,
			Items:    req.Items,
			Total:    req.Total,
			Shipping: req.Shipping,
			Payment:  req.Payment,
		}
		id, err := orderService.PlaceOrder(r.Context(), order)
		if err != nil {
			if errors.Is(err, service.ErrInvalidOrder) || errors.Is(err, service.ErrTotalMismatch) {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			logger.Error("failed to place order", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "failed to place order")
			return
		}

		respondJSON(w, http.StatusOK, CreateOrderResponse{Success: true, OrderID: id})
	}
}

// UpdateStatusHandler handles PUT /api/orders/{id}/status. The response is
// written only after the new status is persisted; an illegal transition or
// a repeated fulfill is refused with 409 and changes nothing.
func UpdateStatusHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateStatusHandler"
		logger := log.With(slog.String("op", op))

		id, err := orderIDParam(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "valid order ID is required")
			return
		}

		var req UpdateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			respondError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if req.Status == "" {
			respondError(w, http.StatusBadRequest, "status is required")
			return
		}

		target, err := service.ParseStatus(req.Status)
		if err != nil {
			respondError(w, http.StatusBadRequest, "unknown status: "+req.Status)
			return
		}

		status, err := orderService.ChangeStatus(r.Context(), id, target)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrOrderNotFound):
				respondError(w, http.StatusNotFound, "order not found")
			case errors.Is(err, service.ErrAlreadyShipped):
				respondError(w, http.StatusConflict, "order is already shipped")
			case errors.Is(err, service.ErrIllegalTransition):
				respondError(w, http.StatusConflict, err.Error())
			default:
				logger.Error("failed to update status", slog.Any("error", err))
				respondError(w, http.StatusInternalServerError, "database error")
			}
			return
		}

		respondJSON(w, http.StatusOK, UpdateStatusResponse{
			Message: "Order status updated successfully",
			Status:  status,
		})
	}
}
