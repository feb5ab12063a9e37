package repository

import (
	"context"
	"time"

	"github.com/gewgegeg/BAT3D/internal/order/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// withRowLock adds FOR UPDATE on dialects that support it. sqlite has no
// row locks and serializes writers anyway.
func withRowLock(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		Limit(1).
		Find(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) FindByIDForUser(ctx context.Context, db *gorm.DB, id, userID int64) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", id, userID).
		Limit(1).
		Find(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) FindByPaymentID(ctx context.Context, db *gorm.DB, paymentID string) (*domain.Order, error) {
	var order domain.Order
	err := withRowLock(db.WithContext(ctx)).
		Preload("Items").
		Where("yookassa_payment_id = ?", paymentID).
		Limit(1).
		Find(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) FindUnlinkedByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Order, error) {
	var order domain.Order
	err := withRowLock(db.WithContext(ctx)).
		Preload("Items").
		Where("id = ? AND yookassa_payment_id IS NULL", id).
		Limit(1).
		Find(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id int64) (*domain.Order, error) {
	var order domain.Order
	err := withRowLock(db.WithContext(ctx)).
		Preload("Items").
		Where("id = ?", id).
		Limit(1).
		Find(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) LinkPayment(ctx context.Context, db *gorm.DB, id int64, paymentID string, toPending bool, now time.Time) error {
	updates := map[string]any{
		"yookassa_payment_id": paymentID,
		"updated_at":          now,
	}
	if toPending {
		updates["status"] = domain.StatusPending
	}
	return db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, id int64, paymentID string, paidAt time.Time) error {
	updates := map[string]any{
		"paid":       true,
		"paid_at":    paidAt,
		"status":     domain.StatusProcessing,
		"updated_at": paidAt,
	}
	// An empty payment ID must not overwrite NULL with "", or the
	// unlinked fallback lookup stops matching the row.
	if paymentID != "" {
		updates["yookassa_payment_id"] = paymentID
	}
	return db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repo) MarkCancelled(ctx context.Context, db *gorm.DB, id int64, now time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     domain.StatusCancelled,
			"updated_at": now,
		}).Error
}
