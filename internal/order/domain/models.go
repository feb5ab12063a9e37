package domain

import (
	"errors"
	"time"
)

// Order lifecycle statuses. The labels match the store's public API.
// An order is created by checkout in "processing" (placed, unpaid); the
// same label is reused once payment is confirmed. The two semantic states
// are discriminated by the Paid flag, not by the label.
const (
	StatusPending          = "pending"
	StatusProcessing       = "processing"
	StatusInProgress       = "in_progress"
	StatusAwaitingShipment = "awaiting_shipment"
	StatusShipped          = "shipped"
	StatusDelivered        = "delivered"
	StatusCancelled        = "cancelled"
)

type Order struct {
	ID                int64       `gorm:"primaryKey" json:"id"`
	UserID            int64       `gorm:"not null;index" json:"user_id"`
	Address           string      `gorm:"not null" json:"address"`
	Status            string      `gorm:"not null;default:processing" json:"status"`
	Paid              bool        `gorm:"not null;default:false" json:"paid"`
	PaidAt            *time.Time  `json:"paid_at,omitempty"`
	YooKassaPaymentID *string     `gorm:"column:yookassa_payment_id" json:"yookassa_payment_id,omitempty"`
	CreatedAt         time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	Items             []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID      int64  `gorm:"primaryKey" json:"id"`
	OrderID int64  `gorm:"not null;index" json:"order_id"`
	Title   string `json:"title"`
	// Price is in minor currency units (kopecks).
	Price    int64 `gorm:"not null" json:"price"`
	Quantity int   `gorm:"not null;default:1" json:"quantity"`
}

func (OrderItem) TableName() string { return "order_items" }

// TotalCost returns the order total in minor units, derived from line items.
func (o *Order) TotalCost() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// PaidConfirmed reports whether payment has been confirmed by the provider.
func (o *Order) PaidConfirmed() bool {
	return o.Paid
}

// PlacedUnpaid reports whether the order sits in its pre-payment state.
func (o *Order) PlacedUnpaid() bool {
	return !o.Paid && o.Status != StatusCancelled
}

func (o *Order) PaymentID() string {
	if o.YooKassaPaymentID == nil {
		return ""
	}
	return *o.YooKassaPaymentID
}

var (
	ErrNotFound  = errors.New("order_not_found")
	ErrCancelled = errors.New("order_cancelled")
)
