package seed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	cartdomain "github.com/gewgegeg/BAT3D/internal/cart/domain"
	"github.com/gewgegeg/BAT3D/internal/config"
	orderdomain "github.com/gewgegeg/BAT3D/internal/order/domain"
	userdomain "github.com/gewgegeg/BAT3D/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	devUserEmail = "dev@bat3d.store"
	devUserName  = "Dev"
	// Raw bearer token for local API calls; only its hash is stored.
	devToken = "dev-local-token"
)

type devAuthToken struct {
	TokenHash string    `gorm:"primaryKey;column:token_hash"`
	UserID    int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (devAuthToken) TableName() string { return "auth_tokens" }

// EnsureDevFixtures seeds a local user with a bearer token and one unpaid
// order so the payment flow can be exercised right after startup.
func EnsureDevFixtures(db *gorm.DB, log *zap.Logger) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	log = log.Named("seed")

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := ensureDevUser(ctx, tx)
		if err != nil {
			return err
		}
		if err := ensureDevToken(ctx, tx, user.ID); err != nil {
			return err
		}
		if err := ensureDevOrder(ctx, tx, user.ID); err != nil {
			return err
		}
		log.Info("dev fixtures ready", zap.String("email", devUserEmail))
		return nil
	})
}

func ensureDevUser(ctx context.Context, tx *gorm.DB) (*userdomain.User, error) {
	var user userdomain.User
	err := tx.WithContext(ctx).Where("email = ?", devUserEmail).Limit(1).Find(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID != 0 {
		return &user, nil
	}

	user = userdomain.User{Email: devUserEmail, FirstName: devUserName}
	if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func ensureDevToken(ctx context.Context, tx *gorm.DB, userID int64) error {
	sum := sha256.Sum256([]byte(devToken))
	token := devAuthToken{TokenHash: hex.EncodeToString(sum[:]), UserID: userID}
	return tx.WithContext(ctx).
		Where("token_hash = ?", token.TokenHash).
		FirstOrCreate(&token).Error
}

func ensureDevOrder(ctx context.Context, tx *gorm.DB, userID int64) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&orderdomain.Order{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	order := orderdomain.Order{
		UserID:  userID,
		Address: "Москва, тестовый адрес",
		Status:  orderdomain.StatusProcessing,
		Items: []orderdomain.OrderItem{
			{Title: "Печать корпуса (PETG)", Price: 150000, Quantity: 1},
			{Title: "Шестерня 24 зуба (PLA)", Price: 45000, Quantity: 2},
		},
	}
	if err := tx.WithContext(ctx).Create(&order).Error; err != nil {
		return err
	}

	cart := cartdomain.Cart{UserID: &userID, Items: []cartdomain.CartItem{{ProductID: 1, Quantity: 1}}}
	return tx.WithContext(ctx).Create(&cart).Error
}

var Module = fx.Module("seed",
	fx.Invoke(func(cfg config.Config, db *gorm.DB, log *zap.Logger) error {
		if cfg.IsProduction() {
			return nil
		}
		// Schema may be managed externally on non-postgres setups.
		if !db.Migrator().HasTable(&userdomain.User{}) {
			log.Named("seed").Warn("skipping dev fixtures, schema not migrated")
			return nil
		}
		return EnsureDevFixtures(db, log)
	}),
)
