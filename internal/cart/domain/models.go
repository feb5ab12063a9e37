package domain

import (
	"context"
	"time"
)

type Cart struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	UserID    *int64     `gorm:"index" json:"user_id,omitempty"`
	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	Items     []CartItem `gorm:"foreignKey:CartID" json:"items,omitempty"`
}

func (Cart) TableName() string { return "carts" }

type CartItem struct {
	ID        int64 `gorm:"primaryKey" json:"id"`
	CartID    int64 `gorm:"not null;index" json:"cart_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `gorm:"not null;default:1" json:"quantity"`
}

func (CartItem) TableName() string { return "cart_items" }

// Service is the post-payment cart hook. Absence of a cart is not an error.
type Service interface {
	ClearCartForUser(ctx context.Context, userID int64) error
}
