package yookassa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gewgegeg/BAT3D/internal/config"
	"github.com/gewgegeg/BAT3D/internal/payment/domain"
	"github.com/gewgegeg/BAT3D/pkg/money"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.yookassa.ru/v3"

// Client implements domain.Client against the YooKassa REST API using
// shop-id / secret-key basic auth.
type Client struct {
	http    *http.Client
	baseURL string
	shopID  string
	secret  string
	log     *zap.Logger
}

func NewClient(cfg config.YooKassaConfig, log *zap.Logger) *Client {
	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: 12 * time.Second},
		baseURL: baseURL,
		shopID:  cfg.ShopID,
		secret:  cfg.SecretKey,
		log:     log.Named("payment.yookassa"),
	}
}

type apiAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type apiConfirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type apiCancellation struct {
	Party  string `json:"party"`
	Reason string `json:"reason"`
}

type apiPayment struct {
	ID                  string            `json:"id"`
	Status              string            `json:"status"`
	Paid                bool              `json:"paid"`
	Confirmation        *apiConfirmation  `json:"confirmation,omitempty"`
	CancellationDetails *apiCancellation  `json:"cancellation_details,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

type createPaymentBody struct {
	Amount       apiAmount         `json:"amount"`
	Capture      bool              `json:"capture"`
	Confirmation apiConfirmation   `json:"confirmation"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

func (c *Client) CreatePayment(ctx context.Context, req domain.CreatePaymentRequest, idempotenceKey string) (*domain.ProviderPayment, error) {
	currency := req.Currency
	if currency == "" {
		currency = "RUB"
	}
	body := createPaymentBody{
		Amount: apiAmount{
			Value:    money.Format(req.AmountMinor),
			Currency: currency,
		},
		Capture: true,
		Confirmation: apiConfirmation{
			Type:      "redirect",
			ReturnURL: req.ReturnURL,
		},
		Description: req.Description,
		Metadata: map[string]string{
			"internal_order_id": strconv.FormatInt(req.OrderID, 10),
		},
	}

	payment, err := c.do(ctx, http.MethodPost, "/payments", idempotenceKey, body)
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (c *Client) GetPayment(ctx context.Context, paymentID string) (*domain.ProviderPayment, error) {
	return c.do(ctx, http.MethodGet, "/payments/"+paymentID, "", nil)
}

func (c *Client) do(ctx context.Context, method, path, idempotenceKey string, body any) (*domain.ProviderPayment, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.shopID, c.secret)
	req.Header.Set("Content-Type", "application/json")
	if idempotenceKey != "" {
		req.Header.Set("Idempotence-Key", idempotenceKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("provider request failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrProviderUnavailable, err)
	}

	if err := classifyStatus(resp.StatusCode); err != nil {
		c.log.Warn("provider returned error status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", raw))
		return nil, err
	}

	var payment apiPayment
	if err := json.Unmarshal(raw, &payment); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrProviderUnavailable, err)
	}

	out := &domain.ProviderPayment{
		ID:     payment.ID,
		Status: payment.Status,
		Paid:   payment.Paid,
	}
	if payment.Confirmation != nil {
		out.ConfirmationURL = payment.Confirmation.ConfirmationURL
	}
	if payment.CancellationDetails != nil {
		out.CancellationReason = payment.CancellationDetails.Reason
	}
	return out, nil
}

// classifyStatus splits provider failures into caller mistakes, which must
// not be retried, and transient provider-side trouble, which may be.
func classifyStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusBadRequest,
		status == http.StatusUnauthorized,
		status == http.StatusForbidden:
		return fmt.Errorf("%w: http %d", domain.ErrProviderRejected, status)
	default:
		// 404, 429 and the 5xx family: the request may succeed later.
		return fmt.Errorf("%w: http %d", domain.ErrProviderUnavailable, status)
	}
}

var _ domain.Client = (*Client)(nil)
