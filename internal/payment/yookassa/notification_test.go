package yookassa

import (
	"errors"
	"testing"

	"github.com/gewgegeg/BAT3D/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNotificationSucceeded(t *testing.T) {
	body := []byte(`{
		"type": "notification",
		"event": "payment.succeeded",
		"object": {
			"id": "2c2e8e1a-000f-5000-8000-1b68e7b15f3f",
			"status": "succeeded",
			"paid": true,
			"metadata": {"internal_order_id": "42"}
		}
	}`)

	event, err := ParseNotification(body)
	require.NoError(t, err)
	assert.Equal(t, domain.EventSucceeded, event.Kind)
	assert.Equal(t, "2c2e8e1a-000f-5000-8000-1b68e7b15f3f", event.PaymentID)
	assert.True(t, event.Paid)
	assert.Equal(t, int64(42), event.OrderID)
}

func TestParseNotificationCanceled(t *testing.T) {
	body := []byte(`{
		"type": "notification",
		"event": "payment.canceled",
		"object": {
			"id": "pay-1",
			"status": "canceled",
			"paid": false,
			"cancellation_details": {"party": "yoo_money", "reason": "expired_on_confirmation"}
		}
	}`)

	event, err := ParseNotification(body)
	require.NoError(t, err)
	assert.Equal(t, domain.EventCanceled, event.Kind)
	assert.Equal(t, "expired_on_confirmation", event.CancellationReason)
	assert.Zero(t, event.OrderID)
}

func TestParseNotificationMalformed(t *testing.T) {
	_, err := ParseNotification([]byte("{not json"))
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

func TestParseNotificationUnsupportedFamily(t *testing.T) {
	body := []byte(`{"event": "refund.succeeded", "object": {"id": "r-1", "status": "succeeded"}}`)
	_, err := ParseNotification(body)
	assert.ErrorIs(t, err, domain.ErrUnsupportedEventType)
}

func TestParseNotificationMissingCorrelationKeys(t *testing.T) {
	body := []byte(`{"event": "payment.succeeded", "object": {"status": "succeeded", "paid": true}}`)
	_, err := ParseNotification(body)
	assert.ErrorIs(t, err, domain.ErrMissingCorrelationKey)
}

func TestParseNotificationMetadataFallbackOnly(t *testing.T) {
	body := []byte(`{"event": "payment.succeeded", "object": {"status": "succeeded", "paid": true, "metadata": {"internal_order_id": "7"}}}`)

	event, err := ParseNotification(body)
	require.NoError(t, err)
	assert.Empty(t, event.PaymentID)
	assert.Equal(t, int64(7), event.OrderID)
}

func TestParseNotificationBadMetadataOrderID(t *testing.T) {
	body := []byte(`{"event": "payment.succeeded", "object": {"id": "pay-2", "status": "succeeded", "metadata": {"internal_order_id": "abc"}}}`)

	event, err := ParseNotification(body)
	require.NoError(t, err)
	assert.Zero(t, event.OrderID)

	// Unparseable metadata with no payment id leaves nothing to go on.
	body = []byte(`{"event": "payment.succeeded", "object": {"status": "succeeded", "metadata": {"internal_order_id": "abc"}}}`)
	_, err = ParseNotification(body)
	assert.True(t, errors.Is(err, domain.ErrMissingCorrelationKey))
}

func TestKindFromStatus(t *testing.T) {
	assert.Equal(t, domain.EventSucceeded, kindFromStatus("succeeded"))
	assert.Equal(t, domain.EventCanceled, kindFromStatus("canceled"))
	assert.Equal(t, domain.EventWaitingForCapture, kindFromStatus("waiting_for_capture"))
	assert.Equal(t, domain.EventOther, kindFromStatus("pending"))
	assert.Equal(t, domain.EventOther, kindFromStatus(""))
}
