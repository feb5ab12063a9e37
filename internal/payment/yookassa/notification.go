package yookassa

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gewgegeg/BAT3D/internal/payment/domain"
)

type notificationEnvelope struct {
	Type   string             `json:"type"`
	Event  string             `json:"event"`
	Object notificationObject `json:"object"`
}

type notificationObject struct {
	ID                  string            `json:"id"`
	Status              string            `json:"status"`
	Paid                bool              `json:"paid"`
	CancellationDetails *apiCancellation  `json:"cancellation_details,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

// ParseNotification normalizes a raw webhook body into a PaymentEvent.
// Only payment.* events are supported; refund and payout families are
// rejected so the caller can answer with a client error instead of a retry.
func ParseNotification(body []byte) (*domain.PaymentEvent, error) {
	var envelope notificationEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	if !strings.HasPrefix(envelope.Event, "payment.") {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedEventType, envelope.Event)
	}

	object := envelope.Object
	event := &domain.PaymentEvent{
		Kind:      kindFromStatus(object.Status),
		PaymentID: object.ID,
		Paid:      object.Paid,
		Status:    object.Status,
	}
	if object.CancellationDetails != nil {
		event.CancellationReason = object.CancellationDetails.Reason
	}

	if raw, ok := object.Metadata["internal_order_id"]; ok {
		if orderID, err := strconv.ParseInt(raw, 10, 64); err == nil && orderID > 0 {
			event.OrderID = orderID
		}
	}

	// Without a payment id or an internal order id there is nothing to
	// correlate the notification against.
	if event.PaymentID == "" && event.OrderID == 0 {
		return nil, domain.ErrMissingCorrelationKey
	}

	return event, nil
}

func kindFromStatus(status string) domain.EventKind {
	switch status {
	case "succeeded":
		return domain.EventSucceeded
	case "canceled":
		return domain.EventCanceled
	case "waiting_for_capture":
		return domain.EventWaitingForCapture
	default:
		return domain.EventOther
	}
}
