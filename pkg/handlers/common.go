// Package handlers holds the client-facing HTTP handlers. They validate
// input, delegate to the lifecycle controller and stores, and translate the
// error taxonomy onto HTTP: validation 400, not found 404, conflict 409,
// gateway failure 502 with the detail kept server-side.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/seedsofhope/backend/pkg/lifecycle"
	"github.com/seedsofhope/backend/pkg/payment"
)

// paymentFlow is the slice of the lifecycle controller the handlers need.
type paymentFlow interface {
	Initiate(ctx context.Context, p lifecycle.InitiateParams) (*lifecycle.InitiateResult, error)
	Finalize(ctx context.Context, orderID string) (*lifecycle.Record, error)
}

// receiptNotifier fires post-completion email; implementations must not
// block the payment flow on delivery.
type receiptNotifier interface {
	DonationCompleted(ctx context.Context, donationID uint)
	TicketCompleted(ctx context.Context, ticketID uint)
}

type captureRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// bindingFailed renders a 400 with field-level detail when the error comes
// from validator, or the bare message otherwise.
func bindingFailed(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]gin.H, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, gin.H{"field": fe.Field(), "rule": fe.Tag()})
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Validation failed",
			"errors":  details,
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation failed", "errors": err.Error()})
}

// initiateFailed maps lifecycle and gateway errors from an initiate attempt.
func initiateFailed(c *gin.Context, err error, what string) {
	var gatewayErr *payment.GatewayError

	switch {
	case errors.Is(err, lifecycle.ErrInvalidAmount):
		fail(c, http.StatusBadRequest, "Amount must be greater than zero")
	case errors.As(err, &gatewayErr):
		slog.Error("payment gateway failure", "op", gatewayErr.Op, "error", gatewayErr.Err)
		fail(c, http.StatusBadGateway, "Failed to create "+what+" order")
	default:
		slog.Error("initiate failed", "what", what, "error", err)
		fail(c, http.StatusInternalServerError, "Failed to create "+what)
	}
}

// finalizeFailed maps lifecycle and gateway errors from a capture attempt.
func finalizeFailed(c *gin.Context, err error, what string) {
	var declined *lifecycle.CaptureDeclinedError
	var gatewayErr *payment.GatewayError

	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		fail(c, http.StatusNotFound, what+" not found for this order")
	case errors.Is(err, lifecycle.ErrConflict):
		fail(c, http.StatusConflict, "This "+what+" has already been processed")
	case errors.As(err, &declined):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Payment capture was not completed",
			"status":  declined.Status,
		})
	case errors.As(err, &gatewayErr):
		slog.Error("payment gateway failure", "op", gatewayErr.Op, "error", gatewayErr.Err)
		fail(c, http.StatusBadGateway, "Failed to capture "+what+" payment")
	default:
		slog.Error("capture failed", "what", what, "error", err)
		fail(c, http.StatusInternalServerError, "Failed to capture "+what+" payment")
	}
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return uint(id), true
}
