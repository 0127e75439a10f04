package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	ledgerdomain "github.com/smallbiznis/carpark/internal/ledger/domain"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

// ErrorHandlingMiddleware converts sentinel errors set on the gin context
// into the canonical JSON error envelope.
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

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	errType, code := classifyError(err)

	switch errType {
	case "validation_error":
		return http.StatusBadRequest, errorPayload{Type: errType, Message: code}
	case "not_found":
		return http.StatusNotFound, errorPayload{Type: errType, Message: code}
	case "conflict":
		return http.StatusConflict, errorPayload{Type: errType, Message: code}
	case "payment_required":
		return http.StatusPaymentRequired, errorPayload{Type: errType, Message: code}
	case "service_unavailable":
		return http.StatusServiceUnavailable, errorPayload{Type: errType, Message: code}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyError buckets a sentinel into its error family and stable code.
func classifyError(err error) (string, string) {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ledgerdomain.ErrInvalidPlate),
		errors.Is(err, ledgerdomain.ErrInvalidFloor):
		return "validation_error", err.Error()
	case errors.Is(err, ledgerdomain.ErrVehicleNotFound):
		return "not_found", err.Error()
	case errors.Is(err, ledgerdomain.ErrAlreadyParked),
		errors.Is(err, ledgerdomain.ErrAlreadyPaid),
		errors.Is(err, ledgerdomain.ErrLotFull),
		errors.Is(err, ledgerdomain.ErrFloorFull):
		return "conflict", err.Error()
	case errors.Is(err, ledgerdomain.ErrNotPaid),
		errors.Is(err, ledgerdomain.ErrInsufficientPayment),
		errors.Is(err, ledgerdomain.ErrPaymentExpired):
		return "payment_required", err.Error()
	case errors.Is(err, ledgerdomain.ErrLotClosed):
		return "service_unavailable", err.Error()
	default:
		return "internal_error", "internal_error"
	}
}

func classifyErrorForLog(err error) (string, string) {
	return classifyError(err)
}
