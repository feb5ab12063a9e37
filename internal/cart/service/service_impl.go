package service

import (
	"context"

	"github.com/gewgegeg/BAT3D/internal/cart/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(p Params) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("cart.service"),
	}
}

func (s *Service) ClearCartForUser(ctx context.Context, userID int64) error {
	var cart domain.Cart
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&cart).Error
	if err != nil {
		return err
	}
	if cart.ID == 0 {
		s.log.Debug("no cart to clear", zap.Int64("user_id", userID))
		return nil
	}

	err = s.db.WithContext(ctx).
		Where("cart_id = ?", cart.ID).
		Delete(&domain.CartItem{}).Error
	if err != nil {
		return err
	}

	s.log.Info("cart cleared", zap.Int64("user_id", userID), zap.Int64("cart_id", cart.ID))
	return nil
}
