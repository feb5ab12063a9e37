package domain

import "context"

// CreatePaymentResult is returned by CreatePayment. When AlreadyPaid is set
// the other fields are empty and no provider call was made.
type CreatePaymentResult struct {
	PaymentURL  string `json:"payment_url,omitempty"`
	PaymentID   string `json:"payment_id,omitempty"`
	AlreadyPaid bool   `json:"already_paid,omitempty"`
}

// StatusResult is the read-only summary shown on the payment return page.
type StatusResult struct {
	OrderID int64  `json:"order_id"`
	Paid    bool   `json:"paid"`
	Status  string `json:"status"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

type Service interface {
	// CreatePayment registers a provider payment for an order owned by
	// userID and returns the confirmation URL the customer is redirected to.
	CreatePayment(ctx context.Context, orderID, userID int64) (*CreatePaymentResult, error)

	// HandleNotification reconciles a normalized webhook event against the
	// local order state. A nil return means the provider must not retry.
	HandleNotification(ctx context.Context, event *PaymentEvent) error

	// PaymentStatus reports the current payment state of an order for the
	// post-checkout return page. The payer may land here in a fresh browser
	// session, so the lookup is by order id alone; it never mutates state.
	PaymentStatus(ctx context.Context, orderID int64) (*StatusResult, error)
}
