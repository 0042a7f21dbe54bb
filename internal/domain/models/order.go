package models

import "time"

// OrderStatus is the lifecycle stage of a placed order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

// Payment method tags accepted at checkout.
const (
	PaymentCOD  = "COD"
	PaymentUPI  = "UPI"
	PaymentCard = "Card"
)

// OrderItem is one line of an order. Items are immutable once the order
// is placed; only the order status mutates afterwards.
type OrderItem struct {
	ProductID int64   `json:"product_id"`
	Title     string  `json:"title"`
	Name      string  `json:"name"`
	Color     string  `json:"color,omitempty"`
	Image     string  `json:"image,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Shipping is the address snapshot taken at checkout.
type Shipping struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
}

// Order represents a placed order. Total equals the sum of
// price*quantity over Items at creation time.
type Order struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"user_id"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total"`
	Shipping  Shipping    `json:"shipping"`
	Payment   string      `json:"payment"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}
