package service

import (
	"context"
	"errors"
	"fmt"

	auditdomain "github.com/gewgegeg/BAT3D/internal/audit/domain"
	cartdomain "github.com/gewgegeg/BAT3D/internal/cart/domain"
	"github.com/gewgegeg/BAT3D/internal/clock"
	"github.com/gewgegeg/BAT3D/internal/config"
	notificationdomain "github.com/gewgegeg/BAT3D/internal/notification/domain"
	"github.com/gewgegeg/BAT3D/internal/observability/metrics"
	orderdomain "github.com/gewgegeg/BAT3D/internal/order/domain"
	"github.com/gewgegeg/BAT3D/internal/payment/domain"
	"github.com/gewgegeg/BAT3D/pkg/db"
	"github.com/gewgegeg/BAT3D/pkg/money"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Config     config.Config
	Clock      clock.Clock
	Orders     orderdomain.Repository
	Cart       cartdomain.Service
	Dispatcher notificationdomain.Dispatcher
	Audit      auditdomain.Service
	Metrics    *metrics.Metrics
	Client     domain.Client
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	cfg        config.Config
	clock      clock.Clock
	orders     orderdomain.Repository
	cart       cartdomain.Service
	dispatcher notificationdomain.Dispatcher
	audit      auditdomain.Service
	metrics    *metrics.Metrics
	client     domain.Client
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("payment.service"),
		cfg:        p.Config,
		clock:      p.Clock,
		orders:     p.Orders,
		cart:       p.Cart,
		dispatcher: p.Dispatcher,
		audit:      p.Audit,
		metrics:    p.Metrics,
		client:     p.Client,
	}
}

func (s *Service) CreatePayment(ctx context.Context, orderID, userID int64) (*domain.CreatePaymentResult, error) {
	if !s.cfg.YooKassa.Configured() {
		s.log.Error("payment creation refused, provider credentials missing", zap.Int64("order_id", orderID))
		s.metrics.RecordPaymentCreate("not_configured")
		return nil, domain.ErrNotConfigured
	}

	order, err := s.orders.FindByIDForUser(ctx, s.db, orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		s.metrics.RecordPaymentCreate("not_found")
		return nil, orderdomain.ErrNotFound
	}

	if order.PaidConfirmed() {
		s.log.Info("payment creation skipped, order already paid", zap.Int64("order_id", orderID))
		s.metrics.RecordPaymentCreate("already_paid")
		return &domain.CreatePaymentResult{AlreadyPaid: true}, nil
	}
	if order.Status == orderdomain.StatusCancelled {
		s.metrics.RecordPaymentCreate("order_cancelled")
		return nil, orderdomain.ErrCancelled
	}

	// A fresh key per attempt: each retry is a distinct provider payment,
	// replacing the previously linked one.
	idempotenceKey := uuid.NewString()

	req := domain.CreatePaymentRequest{
		AmountMinor: order.TotalCost(),
		Currency:    "RUB",
		Description: fmt.Sprintf("Оплата заказа №%d", orderID),
		ReturnURL:   fmt.Sprintf("%s/order/success?orderId=%d&yookassa_payment=true", s.cfg.SiteURL, orderID),
		OrderID:     orderID,
	}

	payment, err := s.client.CreatePayment(ctx, req, idempotenceKey)
	if err != nil {
		outcome := "provider_error"
		if errors.Is(err, domain.ErrProviderRejected) {
			outcome = "provider_rejected"
		}
		s.metrics.RecordPaymentCreate(outcome)
		s.log.Error("provider payment creation failed",
			zap.Int64("order_id", orderID),
			zap.Error(err))
		return nil, err
	}

	toPending := order.Status != orderdomain.StatusPending
	if err := s.orders.LinkPayment(ctx, s.db, orderID, payment.ID, toPending, s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.audit.Log(ctx, auditdomain.ActionPaymentCreated, "order", fmt.Sprint(orderID), map[string]any{
		"payment_id": payment.ID,
		"amount":     money.Format(order.TotalCost()),
		"user_id":    userID,
	}); err != nil {
		s.log.Warn("audit write failed", zap.Int64("order_id", orderID), zap.Error(err))
	}

	s.metrics.RecordPaymentCreate("created")
	s.log.Info("provider payment created",
		zap.Int64("order_id", orderID),
		zap.String("payment_id", payment.ID))

	return &domain.CreatePaymentResult{
		PaymentURL: payment.ConfirmationURL,
		PaymentID:  payment.ID,
	}, nil
}

// Reconciliation outcomes, used as the metrics label and the log field.
const (
	outcomePaid            = "paid"
	outcomeDuplicate       = "duplicate"
	outcomeSucceededUnpaid = "succeeded_unpaid"
	outcomeCancelled       = "cancelled"
	outcomeCancelIgnored   = "cancel_ignored"
	outcomeWaiting         = "waiting_for_capture"
	outcomeIgnored         = "ignored"
	outcomeUnmatched       = "unmatched"
)

func (s *Service) HandleNotification(ctx context.Context, event *domain.PaymentEvent) error {
	var (
		outcome string
		order   *orderdomain.Order
		reason  string
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.locateOrder(ctx, tx, event)
		if err != nil {
			return err
		}
		if found == nil {
			outcome = outcomeUnmatched
			return s.recordUnmatched(ctx, event)
		}
		order = found

		switch event.Kind {
		case domain.EventSucceeded:
			if !event.Paid {
				s.log.Warn("succeeded notification without paid flag",
					zap.Int64("order_id", order.ID),
					zap.String("payment_id", event.PaymentID))
				outcome = outcomeSucceededUnpaid
				return nil
			}
			if order.PaidConfirmed() {
				s.log.Info("duplicate success notification ignored",
					zap.Int64("order_id", order.ID),
					zap.String("payment_id", event.PaymentID))
				outcome = outcomeDuplicate
				return nil
			}
			paymentID := event.PaymentID
			if paymentID == "" {
				paymentID = order.PaymentID()
			}
			now := s.clock.Now()
			if err := s.orders.MarkPaid(ctx, tx, order.ID, paymentID, now); err != nil {
				return err
			}
			order.Paid = true
			order.PaidAt = &now
			order.Status = orderdomain.StatusProcessing
			outcome = outcomePaid
			return nil

		case domain.EventCanceled:
			if order.PaidConfirmed() {
				s.log.Warn("cancellation for an already paid order ignored",
					zap.Int64("order_id", order.ID),
					zap.String("payment_id", event.PaymentID))
				outcome = outcomeCancelIgnored
				return nil
			}
			if order.Status == orderdomain.StatusCancelled {
				outcome = outcomeCancelIgnored
				return nil
			}
			if err := s.orders.MarkCancelled(ctx, tx, order.ID, s.clock.Now()); err != nil {
				return err
			}
			order.Status = orderdomain.StatusCancelled
			reason = event.CancellationReason
			outcome = outcomeCancelled
			return nil

		case domain.EventWaitingForCapture:
			s.log.Info("payment waiting for capture",
				zap.Int64("order_id", order.ID),
				zap.String("payment_id", event.PaymentID))
			outcome = outcomeWaiting
			return nil

		default:
			s.log.Info("notification with unhandled payment status",
				zap.Int64("order_id", order.ID),
				zap.String("status", event.Status))
			outcome = outcomeIgnored
			return nil
		}
	})
	if err != nil {
		s.metrics.RecordWebhookEvent(string(event.Kind), "error")
		return err
	}

	s.metrics.RecordWebhookEvent(string(event.Kind), outcome)

	// Side effects run after commit. Each one is independent: a failing
	// email must not block cart clearing, and neither may surface to the
	// provider as a retryable error.
	switch outcome {
	case outcomePaid:
		s.runSideEffect("success email", order.ID, func() error {
			return s.dispatcher.SendPaymentSucceeded(ctx, order)
		})
		s.runSideEffect("cart clear", order.ID, func() error {
			return s.cart.ClearCartForUser(ctx, order.UserID)
		})
	case outcomeCancelled:
		s.runSideEffect("cancellation email", order.ID, func() error {
			return s.dispatcher.SendPaymentCancelled(ctx, order, reason)
		})
	}

	return nil
}

// locateOrder resolves the event to an order. Lookup order: the linked
// provider payment id, then the metadata order id for a not-yet-linked
// order (linking it as a side effect), then the metadata order id alone.
func (s *Service) locateOrder(ctx context.Context, tx *gorm.DB, event *domain.PaymentEvent) (*orderdomain.Order, error) {
	if event.PaymentID != "" {
		order, err := s.orders.FindByPaymentID(ctx, tx, event.PaymentID)
		if err != nil || order != nil {
			return order, err
		}
	}

	if event.OrderID == 0 {
		return nil, nil
	}

	order, err := s.orders.FindUnlinkedByID(ctx, tx, event.OrderID)
	if err != nil {
		return nil, err
	}
	if order != nil {
		if event.PaymentID != "" {
			if err := s.orders.LinkPayment(ctx, tx, order.ID, event.PaymentID, false, s.clock.Now()); err != nil {
				if db.IsDuplicateKeyErr(err) {
					// A concurrent delivery linked this payment first.
					return s.orders.FindByPaymentID(ctx, tx, event.PaymentID)
				}
				return nil, err
			}
			linked := event.PaymentID
			order.YooKassaPaymentID = &linked
			s.log.Info("linked payment id from notification metadata",
				zap.Int64("order_id", order.ID),
				zap.String("payment_id", event.PaymentID))
		}
		return order, nil
	}

	order, err = s.orders.FindByIDForUpdate(ctx, tx, event.OrderID)
	if err != nil {
		return nil, err
	}
	if order != nil {
		s.log.Warn("order matched by internal id despite a different linked payment",
			zap.Int64("order_id", order.ID),
			zap.String("event_payment_id", event.PaymentID),
			zap.String("linked_payment_id", order.PaymentID()))
	}
	return order, nil
}

// recordUnmatched flags an unlocatable notification for operator review.
// The caller still acknowledges the webhook: retrying cannot make an
// unknown payment known.
func (s *Service) recordUnmatched(ctx context.Context, event *domain.PaymentEvent) error {
	s.log.Error("notification did not match any order",
		zap.String("payment_id", event.PaymentID),
		zap.Int64("metadata_order_id", event.OrderID),
		zap.String("status", event.Status))

	if err := s.audit.Log(ctx, auditdomain.ActionWebhookUnmatched, "payment", event.PaymentID, map[string]any{
		"metadata_order_id": event.OrderID,
		"status":            event.Status,
		"paid":              event.Paid,
	}); err != nil {
		s.log.Warn("audit write failed", zap.String("payment_id", event.PaymentID), zap.Error(err))
	}
	return nil
}

func (s *Service) runSideEffect(name string, orderID int64, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("side effect panicked",
				zap.String("side_effect", name),
				zap.Int64("order_id", orderID),
				zap.Any("panic", r))
		}
	}()
	if err := fn(); err != nil {
		s.log.Error("side effect failed",
			zap.String("side_effect", name),
			zap.Int64("order_id", orderID),
			zap.Error(err))
	}
}

func (s *Service) PaymentStatus(ctx context.Context, orderID int64) (*domain.StatusResult, error) {
	order, err := s.orders.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, orderdomain.ErrNotFound
	}

	result := &domain.StatusResult{
		OrderID: order.ID,
		Paid:    order.Paid,
		Status:  order.Status,
	}

	switch {
	case order.PaidConfirmed():
		result.Title = "Оплата получена"
		result.Message = "Спасибо за покупку! Заказ передан в обработку."
	case order.Status == orderdomain.StatusCancelled:
		result.Title = "Заказ отменен"
		result.Message = "Платеж не был завершен, заказ отменен."
	default:
		result.Title = "Ожидаем подтверждение оплаты"
		result.Message = "Платеж обрабатывается. Статус заказа обновится автоматически."
		// The webhook may simply not have arrived yet; ask the provider
		// directly, but never let that lookup fail the page.
		s.refineFromProvider(ctx, order, result)
	}

	return result, nil
}

// refineFromProvider is best-effort and read-only: reconciliation happens
// exclusively on the webhook path.
func (s *Service) refineFromProvider(ctx context.Context, order *orderdomain.Order, result *domain.StatusResult) {
	paymentID := order.PaymentID()
	if paymentID == "" || !s.cfg.YooKassa.Configured() {
		return
	}

	payment, err := s.client.GetPayment(ctx, paymentID)
	if err != nil {
		s.log.Warn("provider status lookup failed",
			zap.Int64("order_id", order.ID),
			zap.String("payment_id", paymentID),
			zap.Error(err))
		return
	}

	switch payment.Status {
	case "succeeded":
		result.Title = "Оплата получена"
		result.Message = "Платеж подтвержден. Статус заказа обновится в ближайшее время."
	case "canceled":
		result.Title = "Платеж отменен"
		result.Message = "Платеж был отменен. Вы можете повторить оплату."
	case "waiting_for_capture":
		result.Message = "Платеж авторизован и ожидает подтверждения магазином."
	}
}

var _ domain.Service = (*Service)(nil)
