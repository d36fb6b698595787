package order

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending Status = "pending"
	// StatusPartiallyDelivered means some units were handed over and the
	// undelivered remainder was refunded to balance.
	StatusPartiallyDelivered Status = "partially_delivered"
	StatusDelivered          Status = "delivered"
	StatusCancelled          Status = "cancelled"
)

type Item struct {
	ID                uuid.UUID   `json:"id"`
	OrderID           uuid.UUID   `json:"orderId"`
	ProductID         string      `json:"productId"`
	ProductName       string      `json:"productName"`
	Quantity          int         `json:"quantity"`
	DeliveredQuantity int         `json:"deliveredQuantity"`
	UnitPrice         float64     `json:"unitPrice"`
	DiscountPercent   float64     `json:"discountPercent"`
	TotalPrice        float64     `json:"totalPrice"`
	UnitIDs           []uuid.UUID `json:"-"`
}

// Order is the immutable snapshot of a checked-out cart plus its delivery
// outcome.
type Order struct {
	ID              uuid.UUID `json:"orderId"`
	UserID          int64     `json:"userId"`
	Status          Status    `json:"status"`
	PromoCode       string    `json:"promoCode,omitempty"`
	DiscountPercent float64   `json:"discountPercent"`
	Subtotal        float64   `json:"subtotal"`
	Total           float64   `json:"total"`
	Items           []Item    `json:"items"`
	CreatedAt       time.Time `json:"createdAt"`
}
