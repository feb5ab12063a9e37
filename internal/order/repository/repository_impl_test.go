package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gewgegeg/BAT3D/internal/order/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Order{}, &domain.OrderItem{}))
	return db
}

func strPtr(s string) *string { return &s }

func TestFindByPaymentID(t *testing.T) {
	db := newTestDB(t)
	repo := Provide()
	ctx := context.Background()

	order := &domain.Order{UserID: 1, Status: domain.StatusPending, YooKassaPaymentID: strPtr("pay-1")}
	require.NoError(t, repo.Insert(ctx, db, order))

	got, err := repo.FindByPaymentID(ctx, db, "pay-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, order.ID, got.ID)

	missing, err := repo.FindByPaymentID(ctx, db, "pay-ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFindUnlinkedByID(t *testing.T) {
	db := newTestDB(t)
	repo := Provide()
	ctx := context.Background()

	unlinked := &domain.Order{UserID: 1, Status: domain.StatusPending}
	linked := &domain.Order{UserID: 1, Status: domain.StatusPending, YooKassaPaymentID: strPtr("pay-1")}
	require.NoError(t, repo.Insert(ctx, db, unlinked))
	require.NoError(t, repo.Insert(ctx, db, linked))

	got, err := repo.FindUnlinkedByID(ctx, db, unlinked.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	// An order with a linked payment never matches the unlinked lookup.
	got, err = repo.FindUnlinkedByID(ctx, db, linked.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindByIDForUpdate(t *testing.T) {
	db := newTestDB(t)
	repo := Provide()
	ctx := context.Background()

	order := &domain.Order{
		UserID:            1,
		Status:            domain.StatusPending,
		YooKassaPaymentID: strPtr("pay-old"),
		Items:             []domain.OrderItem{{Title: "Корпус", Price: 250000, Quantity: 1}},
	}
	require.NoError(t, repo.Insert(ctx, db, order))

	got, err := repo.FindByIDForUpdate(ctx, db, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, order.ID, got.ID)
	assert.Len(t, got.Items, 1)

	missing, err := repo.FindByIDForUpdate(ctx, db, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestWithRowLockPerDialect(t *testing.T) {
	// sqlite serializes writers, so the locking clause is skipped there.
	lite := newTestDB(t).Session(&gorm.Session{DryRun: true})
	stmt := withRowLock(lite).
		Model(&domain.Order{}).
		Where("id = ?", 1).
		Find(&domain.Order{}).Statement
	assert.NotContains(t, stmt.SQL.String(), "FOR UPDATE")

	// Any other dialect gets SELECT ... FOR UPDATE.
	dummy, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	require.NoError(t, err)
	stmt = withRowLock(dummy).
		Model(&domain.Order{}).
		Where("id = ?", 1).
		Find(&domain.Order{}).Statement
	assert.Contains(t, stmt.SQL.String(), "FOR UPDATE")
}

func TestLinkPayment(t *testing.T) {
	db := newTestDB(t)
	repo := Provide()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	order := &domain.Order{UserID: 1, Status: domain.StatusProcessing}
	require.NoError(t, repo.Insert(ctx, db, order))

	require.NoError(t, repo.LinkPayment(ctx, db, order.ID, "pay-1", true, now))

	got, err := repo.FindByID(ctx, db, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "pay-1", got.PaymentID())
	assert.Equal(t, domain.StatusPending, got.Status)

	// Linking without the pending move keeps the current status.
	require.NoError(t, repo.LinkPayment(ctx, db, order.ID, "pay-2", false, now))
	got, err = repo.FindByID(ctx, db, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "pay-2", got.PaymentID())
	assert.Equal(t, domain.StatusPending, got.Status)
}

func TestMarkPaidAndCancelled(t *testing.T) {
	db := newTestDB(t)
	repo := Provide()
	ctx := context.Background()
	paidAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	order := &domain.Order{UserID: 1, Status: domain.StatusPending}
	require.NoError(t, repo.Insert(ctx, db, order))

	require.NoError(t, repo.MarkPaid(ctx, db, order.ID, "pay-1", paidAt))
	got, err := repo.FindByID(ctx, db, order.ID)
	require.NoError(t, err)
	assert.True(t, got.Paid)
	assert.Equal(t, domain.StatusProcessing, got.Status)
	require.NotNil(t, got.PaidAt)
	assert.Equal(t, paidAt, got.PaidAt.UTC())

	// Paying without a payment ID keeps the column NULL so the order
	// still matches the unlinked lookup.
	unlinked := &domain.Order{UserID: 1, Status: domain.StatusPending}
	require.NoError(t, repo.Insert(ctx, db, unlinked))
	require.NoError(t, repo.MarkPaid(ctx, db, unlinked.ID, "", paidAt))
	got, err = repo.FindByID(ctx, db, unlinked.ID)
	require.NoError(t, err)
	assert.True(t, got.Paid)
	assert.Nil(t, got.YooKassaPaymentID)
	got, err = repo.FindUnlinkedByID(ctx, db, unlinked.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	other := &domain.Order{UserID: 1, Status: domain.StatusPending}
	require.NoError(t, repo.Insert(ctx, db, other))
	require.NoError(t, repo.MarkCancelled(ctx, db, other.ID, paidAt))
	got, err = repo.FindByID(ctx, db, other.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	assert.False(t, got.Paid)
}

func TestTotalCostFromItems(t *testing.T) {
	db := newTestDB(t)
	repo := Provide()
	ctx := context.Background()

	order := &domain.Order{
		UserID: 1,
		Status: domain.StatusProcessing,
		Items: []domain.OrderItem{
			{Title: "Корпус", Price: 250000, Quantity: 2},
			{Title: "Крышка", Price: 99900, Quantity: 1},
		},
	}
	require.NoError(t, repo.Insert(ctx, db, order))

	got, err := repo.FindByID(ctx, db, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(599900), got.TotalCost())
}
