package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/allbirds/storefront/internal/domain/models"
	"github.com/allbirds/storefront/internal/reservation"
	"github.com/allbirds/storefront/internal/storage"
)

var (
	ErrInvalidOrder  = errors.New("invalid order")
	ErrTotalMismatch = errors.New("submitted total does not match order items")
)

// OrderService is the business logic behind checkout and the order
// lifecycle.
type OrderService interface {
	PlaceOrder(ctx context.Context, order *models.Order) (int64, error)
	ListOrders(ctx context.Context) ([]*models.Order, error)
	RecentOrders(ctx context.Context, days int) ([]*models.Order, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	ChangeStatus(ctx context.Context, id int64, target models.OrderStatus) (models.OrderStatus, error)
}

type orderService struct {
	log          *slog.Logger
	db           *sql.DB
	orderRepo    storage.OrderStorage
	reservations reservation.Store
}

func NewOrderService(log *slog.Logger, db *sql.DB, orderRepo storage.OrderStorage, reservations reservation.Store) OrderService {
	return &orderService{
		log:          log,
		db:           db,
		orderRepo:    orderRepo,
		reservations: reservations,
	}
}

// PlaceOrder validates the checkout payload and persists the order. The
// total is recomputed from the submitted line items; a client figure that
// disagrees is rejected rather than trusted.
func (s *orderService) PlaceOrder(ctx context.Context, order *models.Order) (int64, error) {
	const op = "service.OrderService.PlaceOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", order.UserID))

	if err := validateOrder(order); err != nil {
		logger.Warn("order rejected", slog.Any("error", err))
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	id, err := s.orderRepo.CreateOrder(ctx, tx, order)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("order placed", slog.Int64("orderID", id))
	return id, nil
}

func validateOrder(order *models.Order) error {
	if order.UserID <= 0 {
		return fmt.Errorf("%w: user_id is required", ErrInvalidOrder)
	}
	if len(order.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalidOrder)
	}
	var total float64
	for i, item := range order.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %d has invalid quantity", ErrInvalidOrder, i)
		}
		if item.Price < 0 {
			return fmt.Errorf("%w: item %d has negative price", ErrInvalidOrder, i)
		}
		total += item.Price * float64(item.Quantity)
	}
	if math.Abs(total-order.Total) > 0.009 {
		return fmt.Errorf("%w: expected %.2f", ErrTotalMismatch, total)
	}
	sh := order.Shipping
	if sh.Name == "" || sh.Address == "" || sh.City == "" || sh.Pincode == "" || sh.Phone == "" {
		return fmt.Errorf("%w: all shipping fields are required", ErrInvalidOrder)
	}
	switch order.Payment {
	case models.PaymentCOD, models.PaymentUPI, models.PaymentCard:
	default:
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidOrder, order.Payment)
	}
	return nil
}

func (s *orderService) ListOrders(ctx context.Context) ([]*models.Order, error) {
	const op = "service.OrderService.ListOrders"
	orders, err := s.orderRepo.ListOrders(ctx)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// RecentOrders returns orders created within the last days days. Anything
// non-positive falls back to the 7-day default.
func (s *orderService) RecentOrders(ctx context.Context, days int) ([]*models.Order, error) {
	const op = "service.OrderService.RecentOrders"
	if days <= 0 {
		days = 7
	}
	orders, err := s.orderRepo.ListRecentOrders(ctx, days)
	if err != nil {
		s.log.Error("failed to list recent orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

func (s *orderService) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	const op = "service.OrderService.GetOrder"
	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrOrderNotFound) {
			s.log.Error("failed to get order", slog.String("op", op), slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

// ChangeStatus moves the order to target if the lifecycle allows it. The
// current status is read under a row lock and the update commits before the
// new state is reported, so a failed write never leaks into the response.
// Cancelling also clears the order's reservation.
func (s *orderService) ChangeStatus(ctx context.Context, id int64, target models.OrderStatus) (models.OrderStatus, error) {
	const op = "service.OrderService.ChangeStatus"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", id), slog.String("target", string(target)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	current, err := s.orderRepo.LockOrderStatusTx(ctx, tx, id)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		if !errors.Is(err, storage.ErrOrderNotFound) {
			logger.Error("failed to read order status", slog.Any("error", err))
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if current == models.StatusShipped && target == models.StatusShipped {
		// Repeated fulfill is refused with a notice, not written again.
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("fulfill refused, already shipped")
		return current, fmt.Errorf("%s: %w", op, ErrAlreadyShipped)
	}

	if !CanTransition(current, target) {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("transition refused", slog.String("current", string(current)))
		return current, fmt.Errorf("%s: %w: %s -> %s", op, ErrIllegalTransition, current, target)
	}

	if err := s.orderRepo.UpdateStatusTx(ctx, tx, id, target); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to update status", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to update status: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	if target == models.StatusCancelled {
		if err := s.reservations.Clear(ctx, id); err != nil {
			// The cancellation itself is committed; a stale reservation
			// will still expire within its 24h window.
			logger.Warn("failed to clear reservation after cancel", slog.Any("error", err))
		}
	}

	logger.Info("status updated", slog.String("from", string(current)))
	return target, nil
}
