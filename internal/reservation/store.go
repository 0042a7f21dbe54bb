package reservation

import (
	"context"

	"github.com/allbirds/storefront/internal/domain/models"
)

// Store holds at most one reservation per order. A reservation whose expiry
// has passed is treated as absent everywhere: GetActive never returns it and
// removes it on access, and Sweep removes it proactively.
type Store interface {
	// Reserve saves the reservation, replacing any prior one for the order.
	Reserve(ctx context.Context, res *models.Reservation) error
	// GetActive returns the reservation for the order, or nil if there is
	// none or it has expired. An expired entry is removed.
	GetActive(ctx context.Context, orderID int64) (*models.Reservation, error)
	// Clear removes any reservation for the order.
	Clear(ctx context.Context, orderID int64) error
	// Sweep removes all expired reservations and reports how many went.
	Sweep(ctx context.Context) (int, error)
}
