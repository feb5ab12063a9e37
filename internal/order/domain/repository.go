package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error

	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Order, error)
	FindByIDForUser(ctx context.Context, db *gorm.DB, id, userID int64) (*Order, error)

	// Correlation lookups used by the webhook path. All three take a row
	// lock when called inside a transaction on a dialect that supports it.
	FindByPaymentID(ctx context.Context, db *gorm.DB, paymentID string) (*Order, error)
	// FindUnlinkedByID matches an order by internal ID only while no
	// provider payment ID has been linked yet.
	FindUnlinkedByID(ctx context.Context, db *gorm.DB, id int64) (*Order, error)
	// FindByIDForUpdate is the locked form of FindByID for the last
	// correlation tier; FindByID stays lock-free for read-only callers.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id int64) (*Order, error)

	// LinkPayment stores the provider payment ID and optionally moves the
	// order to pending.
	LinkPayment(ctx context.Context, db *gorm.DB, id int64, paymentID string, toPending bool, now time.Time) error
	MarkPaid(ctx context.Context, db *gorm.DB, id int64, paymentID string, paidAt time.Time) error
	MarkCancelled(ctx context.Context, db *gorm.DB, id int64, now time.Time) error
}
