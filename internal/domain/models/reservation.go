package models

import "time"

// Reservation is a soft, time-bounded hold on selected order items. It is
// scoped to one order and only affects what the fulfillment view preselects;
// it never touches stock levels.
type Reservation struct {
	ID        string      `json:"id"`
	OrderID   int64       `json:"order_id"`
	Items     []OrderItem `json:"items"`
	Until     time.Time   `json:"until"`      // user-chosen target, informational
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expiry_time"` // CreatedAt + 24h, independent of Until
}

// Expired reports whether the reservation must no longer be surfaced.
func (r *Reservation) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
