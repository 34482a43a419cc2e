package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/seedsofhope/backend/pkg/cache"
	"github.com/seedsofhope/backend/pkg/lifecycle"
	"github.com/seedsofhope/backend/pkg/store"
)

// Donations serves the donation endpoints: initiating a PayPal order,
// capturing it after approval, and the public totals and lookups.
type Donations struct {
	flow      paymentFlow
	store     *store.DonationStore
	totals    *cache.Totals
	receipts  receiptNotifier
	returnURL string
	cancelURL string
}

func NewDonations(flow paymentFlow, st *store.DonationStore, totals *cache.Totals, receipts receiptNotifier, baseURL string) *Donations {
	return &Donations{
		flow:      flow,
		store:     st,
		totals:    totals,
		receipts:  receipts,
		returnURL: baseURL + "/donation/success",
		cancelURL: baseURL + "/donation/cancelled",
	}
}

type createDonationRequest struct {
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	Name              *string         `json:"name"`
	Email             *string         `json:"email" binding:"omitempty,email"`
	UserID            *uint           `json:"userId"`
	IsAnonymous       bool            `json:"isAnonymous"`
	Message           *string         `json:"message"`
	DonationType      string          `json:"donationType" binding:"omitempty,oneof=one-time monthly annual"`
	RequestTaxReceipt bool            `json:"requestTaxReceipt"`
}

// Create opens a pending donation and a matching PayPal order, returning the
// approval URL for the redirect.
func (h *Donations) Create(c *gin.Context) {
	var req createDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingFailed(c, err)
		return
	}
	if !req.Amount.IsPositive() {
		fail(c, http.StatusBadRequest, "Donation amount must be greater than zero")
		return
	}
	if !req.IsAnonymous && req.Email == nil {
		fail(c, http.StatusBadRequest, "Email is required unless the donation is anonymous")
		return
	}

	res, err := h.flow.Initiate(c.Request.Context(), lifecycle.InitiateParams{
		Amount:      req.Amount,
		Description: "Donation to Seeds of Hope",
		ReturnURL:   h.returnURL,
		CancelURL:   h.cancelURL,
		Meta: &store.DonationDraft{
			Name:              req.Name,
			Email:             req.Email,
			UserID:            req.UserID,
			IsAnonymous:       req.IsAnonymous,
			Message:           req.Message,
			DonationType:      req.DonationType,
			RequestTaxReceipt: req.RequestTaxReceipt,
		},
	})
	if err != nil {
		initiateFailed(c, err, "donation")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"donationId":  res.Record.ID,
		"orderId":     res.Record.ExternalOrderID,
		"approvalUrl": res.ApprovalURL,
	})
}

// Capture finalizes a donation after the donor approved the PayPal order.
// Idempotent: repeating the call for a completed donation succeeds without a
// second capture.
func (h *Donations) Capture(c *gin.Context) {
	var req captureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingFailed(c, err)
		return
	}

	rec, err := h.flow.Finalize(c.Request.Context(), req.OrderID)
	if err != nil {
		finalizeFailed(c, err, "donation")
		return
	}

	h.totals.InvalidateDonationTotal(c.Request.Context())
	h.receipts.DonationCompleted(c.Request.Context(), rec.ID)

	donation, err := h.store.Donation(c.Request.Context(), rec.ID)
	if err != nil || donation == nil {
		fail(c, http.StatusInternalServerError, "Failed to load donation")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Donation captured successfully",
		"donation": gin.H{
			"id":            donation.ID,
			"amount":        donation.Amount,
			"status":        donation.PaymentStatus,
			"transactionId": donation.PaymentTransactionID,
		},
	})
}

// Get returns a single donation, with the donor name suppressed when the
// donation is anonymous.
func (h *Donations) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	donation, err := h.store.Donation(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to load donation")
		return
	}
	if donation == nil {
		fail(c, http.StatusNotFound, "Donation not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"donation": gin.H{
			"id":           donation.ID,
			"name":         donation.PublicName(),
			"amount":       donation.Amount,
			"status":       donation.PaymentStatus,
			"donationType": donation.DonationType,
			"message":      donation.Message,
			"createdAt":    donation.CreatedAt,
		},
	})
}

// Total returns the sum of completed donations, served from the Redis cache
// when warm.
func (h *Donations) Total(c *gin.Context) {
	ctx := c.Request.Context()
	if total, ok := h.totals.DonationTotal(ctx); ok {
		c.JSON(http.StatusOK, gin.H{"success": true, "total": total, "cached": true})
		return
	}

	total, err := h.store.SumCompleted(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to compute donation total")
		return
	}
	h.totals.SetDonationTotal(ctx, total)

	c.JSON(http.StatusOK, gin.H{"success": true, "total": total, "cached": false})
}
