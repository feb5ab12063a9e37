package domain

import (
	"context"
	"errors"
)

var (
	ErrMalformedPayload      = errors.New("malformed_payload")
	ErrUnsupportedEventType  = errors.New("unsupported_event_type")
	ErrMissingCorrelationKey = errors.New("missing_correlation_key")
	ErrProviderRejected      = errors.New("provider_rejected")
	ErrProviderUnavailable   = errors.New("provider_unavailable")
	ErrNotConfigured         = errors.New("payment_provider_not_configured")
)

// EventKind classifies an incoming payment notification.
type EventKind string

const (
	EventSucceeded         EventKind = "succeeded"
	EventCanceled          EventKind = "canceled"
	EventWaitingForCapture EventKind = "waiting_for_capture"
	EventOther             EventKind = "other"
)

// PaymentEvent is the normalized form of a provider webhook notification.
type PaymentEvent struct {
	Kind               EventKind
	PaymentID          string
	Paid               bool
	Status             string
	CancellationReason string
	// OrderID carries the internal order id recovered from provider
	// metadata, or 0 when the notification did not include one.
	OrderID int64
}

// CreatePaymentRequest describes a payment to register with the provider.
type CreatePaymentRequest struct {
	AmountMinor int64
	Currency    string
	Description string
	ReturnURL   string
	OrderID     int64
}

// ProviderPayment is the provider's view of a payment.
type ProviderPayment struct {
	ID                 string
	Status             string
	Paid               bool
	ConfirmationURL    string
	CancellationReason string
}

// Client talks to the payment provider API.
type Client interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest, idempotenceKey string) (*ProviderPayment, error)
	GetPayment(ctx context.Context, paymentID string) (*ProviderPayment, error)
}
