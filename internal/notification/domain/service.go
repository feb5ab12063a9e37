package domain

import (
	"context"

	orderdomain "github.com/gewgegeg/BAT3D/internal/order/domain"
)

// Dispatcher sends user-facing payment emails. Calls are best-effort from
// the reconciler's point of view: errors are logged by the caller, never
// propagated into the payment state machine.
type Dispatcher interface {
	SendPaymentSucceeded(ctx context.Context, order *orderdomain.Order) error
	SendPaymentCancelled(ctx context.Context, order *orderdomain.Order, reason string) error
}
