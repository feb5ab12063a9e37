package yookassa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gewgegeg/BAT3D/internal/config"
	"github.com/gewgegeg/BAT3D/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.YooKassaConfig{
		ShopID:     "shop-1",
		SecretKey:  "secret",
		APIBaseURL: server.URL,
	}, zap.NewNop())
}

func TestCreatePaymentRequestShape(t *testing.T) {
	var captured struct {
		method  string
		path    string
		idemKey string
		auth    string
		body    createPaymentBody
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.idemKey = r.Header.Get("Idempotence-Key")
		user, pass, _ := r.BasicAuth()
		captured.auth = user + ":" + pass
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.body))

		_ = json.NewEncoder(w).Encode(apiPayment{
			ID:           "pay-1",
			Status:       "pending",
			Confirmation: &apiConfirmation{Type: "redirect", ConfirmationURL: "https://pay.example/r"},
		})
	})

	payment, err := client.CreatePayment(context.Background(), domain.CreatePaymentRequest{
		AmountMinor: 150050,
		Description: "Оплата заказа №7",
		ReturnURL:   "https://bat3d.store/order/success?orderId=7&yookassa_payment=true",
		OrderID:     7,
	}, "key-123")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, "/payments", captured.path)
	assert.Equal(t, "key-123", captured.idemKey)
	assert.Equal(t, "shop-1:secret", captured.auth)
	assert.Equal(t, "1500.50", captured.body.Amount.Value)
	assert.Equal(t, "RUB", captured.body.Amount.Currency)
	assert.True(t, captured.body.Capture)
	assert.Equal(t, "7", captured.body.Metadata["internal_order_id"])

	assert.Equal(t, "pay-1", payment.ID)
	assert.Equal(t, "https://pay.example/r", payment.ConfirmationURL)
}

func TestClientErrorClassification(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, domain.ErrProviderRejected},
		{http.StatusUnauthorized, domain.ErrProviderRejected},
		{http.StatusForbidden, domain.ErrProviderRejected},
		{http.StatusNotFound, domain.ErrProviderUnavailable},
		{http.StatusTooManyRequests, domain.ErrProviderUnavailable},
		{http.StatusInternalServerError, domain.ErrProviderUnavailable},
		{http.StatusBadGateway, domain.ErrProviderUnavailable},
	}

	for _, tc := range cases {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		})

		_, err := client.GetPayment(context.Background(), "pay-1")
		assert.ErrorIsf(t, err, tc.want, "status %d", tc.status)
	}
}

func TestClientTransportFailureIsUnavailable(t *testing.T) {
	client := NewClient(config.YooKassaConfig{
		ShopID:     "shop-1",
		SecretKey:  "secret",
		APIBaseURL: "http://127.0.0.1:1",
	}, zap.NewNop())

	_, err := client.GetPayment(context.Background(), "pay-1")
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestGetPaymentCancellationDetails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/pay-9", r.URL.Path)
		_ = json.NewEncoder(w).Encode(apiPayment{
			ID:                  "pay-9",
			Status:              "canceled",
			CancellationDetails: &apiCancellation{Party: "yoo_money", Reason: "expired_on_confirmation"},
		})
	})

	payment, err := client.GetPayment(context.Background(), "pay-9")
	require.NoError(t, err)
	assert.Equal(t, "canceled", payment.Status)
	assert.Equal(t, "expired_on_confirmation", payment.CancellationReason)
}
