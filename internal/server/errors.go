package server

import (
	"errors"
	"net/http"

	orderdomain "github.com/gewgegeg/BAT3D/internal/order/domain"
	paymentdomain "github.com/gewgegeg/BAT3D/internal/payment/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorHandlingMiddleware converts errors attached via AbortWithError into
// a uniform {status, message} JSON body.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, message := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Status: "error", Message: message})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "order not found"
	case errors.Is(err, orderdomain.ErrCancelled):
		return http.StatusBadRequest, "order is cancelled"
	case errors.Is(err, paymentdomain.ErrProviderRejected):
		return http.StatusBadRequest, "payment could not be created"
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, paymentdomain.ErrMalformedPayload),
		errors.Is(err, paymentdomain.ErrUnsupportedEventType),
		errors.Is(err, paymentdomain.ErrMissingCorrelationKey):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, paymentdomain.ErrProviderUnavailable),
		errors.Is(err, paymentdomain.ErrNotConfigured):
		return http.StatusServiceUnavailable, "payment service temporarily unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
