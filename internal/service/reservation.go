package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allbirds/storefront/internal/domain/models"
	"github.com/allbirds/storefront/internal/reservation"
	"github.com/allbirds/storefront/internal/storage"
)

// ReservationWindow is the fixed hold duration. The user-chosen "until"
// moment is stored for display but never extends the hold.
const ReservationWindow = 24 * time.Hour

var (
	ErrNoItems      = errors.New("at least one item must be selected")
	ErrInvalidUntil = errors.New("reserve-until must be in the future")
)

// ReservationService validates and stores soft holds on order items.
type ReservationService interface {
	Reserve(ctx context.Context, orderID int64, items []models.OrderItem, until time.Time) (*models.Reservation, error)
	GetActive(ctx context.Context, orderID int64) (*models.Reservation, error)
	Clear(ctx context.Context, orderID int64) error
}

type reservationService struct {
	log       *slog.Logger
	store     reservation.Store
	orderRepo storage.OrderStorage
	now       func() time.Time
}

func NewReservationService(log *slog.Logger, store reservation.Store, orderRepo storage.OrderStorage) ReservationService {
	return &reservationService{
		log:       log,
		store:     store,
		orderRepo: orderRepo,
		now:       time.Now,
	}
}

// Reserve replaces any prior hold for the order. Validation happens before
// the store is touched, so a rejected request leaves existing state intact.
func (s *reservationService) Reserve(ctx context.Context, orderID int64, items []models.OrderItem, until time.Time) (*models.Reservation, error) {
	const op = "service.ReservationService.Reserve"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", orderID))

	if len(items) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNoItems)
	}
	now := s.now()
	if until.IsZero() || !until.After(now) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidUntil)
	}

	if _, err := s.orderRepo.GetOrderByID(ctx, orderID); err != nil {
		if !errors.Is(err, storage.ErrOrderNotFound) {
			logger.Error("failed to check order", slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res := &models.Reservation{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Items:     items,
		Until:     until,
		CreatedAt: now,
		ExpiresAt: now.Add(ReservationWindow),
	}
	if err := s.store.Reserve(ctx, res); err != nil {
		logger.Error("failed to store reservation", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to store reservation: %w", op, err)
	}

	logger.Info("items reserved", slog.Int("items", len(items)), slog.Time("expiresAt", res.ExpiresAt))
	return res, nil
}

func (s *reservationService) GetActive(ctx context.Context, orderID int64) (*models.Reservation, error) {
	const op = "service.ReservationService.GetActive"
	res, err := s.store.GetActive(ctx, orderID)
	if err != nil {
		s.log.Error("failed to read reservation", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func (s *reservationService) Clear(ctx context.Context, orderID int64) error {
	const op = "service.ReservationService.Clear"
	if err := s.store.Clear(ctx, orderID); err != nil {
		s.log.Error("failed to clear reservation", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
