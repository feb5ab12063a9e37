package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	paymentdomain "github.com/gewgegeg/BAT3D/internal/payment/domain"
	"github.com/gewgegeg/BAT3D/internal/payment/yookassa"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 20

func orderIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *Server) HandleCreatePayment(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.payments.CreatePayment(c.Request.Context(), orderID, currentUserID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if result.AlreadyPaid {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"message":      "order already paid",
			"already_paid": true,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"payment_url": result.PaymentURL,
		"payment_id":  result.PaymentID,
	})
}

func (s *Server) HandlePaymentReturn(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	status, err := s.payments.PaymentStatus(c.Request.Context(), orderID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// HandleYooKassaWebhook answers the provider directly: the status code is
// the contract, 500 being the only retry signal.
func (s *Server) HandleYooKassaWebhook(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusMethodNotAllowed, errorResponse{Status: "error", Message: "method not allowed"})
		return
	}

	clientIP := c.ClientIP()
	if !s.ipfilter.IsTrusted(clientIP) {
		s.log.Warn("webhook from untrusted address rejected", zap.String("client_ip", clientIP))
		c.JSON(http.StatusForbidden, errorResponse{Status: "error", Message: "forbidden"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Status: "error", Message: "invalid request"})
		return
	}

	event, err := yookassa.ParseNotification(body)
	if err != nil {
		// Refund and payout families are not ours to process; answering
		// success stops redundant redelivery.
		if errors.Is(err, paymentdomain.ErrUnsupportedEventType) {
			s.log.Info("webhook event family ignored", zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		s.log.Warn("webhook payload rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorResponse{Status: "error", Message: "invalid request"})
		return
	}

	if err := s.payments.HandleNotification(c.Request.Context(), event); err != nil {
		s.log.Error("webhook processing failed",
			zap.String("payment_id", event.PaymentID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Status: "error", Message: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
