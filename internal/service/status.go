package service

import (
	"errors"

	"github.com/allbirds/storefront/internal/domain/models"
)

var (
	ErrUnknownStatus     = errors.New("unknown status")
	ErrAlreadyShipped    = errors.New("order is already shipped")
	ErrIllegalTransition = errors.New("illegal status transition")
)

// validNext encodes the order lifecycle: a shipping label moves Pending to
// Processing, fulfillment moves Processing to Shipped, delivery confirmation
// closes it out, and any non-terminal order can be cancelled. Delivered and
// Cancelled are terminal.
var validNext = map[models.OrderStatus]map[models.OrderStatus]bool{
	models.StatusPending:    {models.StatusProcessing: true, models.StatusCancelled: true},
	models.StatusProcessing: {models.StatusShipped: true, models.StatusCancelled: true},
	models.StatusShipped:    {models.StatusDelivered: true, models.StatusCancelled: true},
	models.StatusDelivered:  {},
	models.StatusCancelled:  {},
}

func CanTransition(from, to models.OrderStatus) bool {
	return validNext[from][to]
}

// ParseStatus validates a wire-level status value.
func ParseStatus(s string) (models.OrderStatus, error) {
	switch status := models.OrderStatus(s); status {
	case models.StatusPending, models.StatusProcessing, models.StatusShipped,
		models.StatusDelivered, models.StatusCancelled:
		return status, nil
	default:
		return "", ErrUnknownStatus
	}
}
