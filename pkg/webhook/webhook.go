// Package webhook receives asynchronous payment notifications from the
// processor, authenticates them, and reconciles them into the transaction
// lifecycle. The ingress always acknowledges verified deliveries with 200 so
// the processor does not retry-storm; internal failures are logged and
// journaled, never surfaced.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seedsofhope/backend/pkg/lifecycle"
	"github.com/seedsofhope/backend/pkg/payment"
)

// Receipts is notified after a webhook completes a record, so confirmation
// emails go out on the webhook path as well as the client capture path.
type Receipts interface {
	DonationCompleted(ctx context.Context, donationID uint)
	TicketCompleted(ctx context.Context, ticketID uint)
}

// EventJournal records deliveries for dedup and audit. Implemented by Journal.
type EventJournal interface {
	Record(ctx context.Context, eventID, eventType string, payload []byte) (id uint, duplicate bool, err error)
	MarkProcessed(ctx context.Context, id uint, dispatchErr error) error
}

// TotalsCache drops the cached public donation total after a donation
// completes through this ingress. Implemented by cache.Totals.
type TotalsCache interface {
	InvalidateDonationTotal(ctx context.Context)
}

type Ingress struct {
	verifier  payment.WebhookVerifier
	donations *lifecycle.Controller
	tickets   *lifecycle.Controller
	journal   EventJournal
	receipts  Receipts    // may be nil
	totals    TotalsCache // may be nil
	log       *slog.Logger
}

func NewIngress(verifier payment.WebhookVerifier, donations, tickets *lifecycle.Controller, journal EventJournal, receipts Receipts, totals TotalsCache) *Ingress {
	return &Ingress{
		verifier:  verifier,
		donations: donations,
		tickets:   tickets,
		journal:   journal,
		receipts:  receipts,
		totals:    totals,
		log:       slog.With("component", "webhook"),
	}
}

// Handle is the POST /api/paypal/webhook endpoint.
func (in *Ingress) Handle(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	// The verifier re-reads the request body for PayPal's verification API.
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	if !in.verifier.VerifyWebhook(c.Request.Context(), c.Request) {
		in.log.Warn("rejected webhook with invalid signature", "remote", c.ClientIP())
		c.String(http.StatusUnauthorized, "Unauthorized")
		return
	}

	// Past this point the delivery is authentic: always acknowledge.
	defer c.JSON(http.StatusOK, gin.H{"received": true})

	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		in.log.Error("failed to decode webhook payload", "error", err)
		return
	}

	ctx := c.Request.Context()

	// No event ID means no dedup key: journaling it would make every later
	// id-less delivery collide as a false duplicate. Dispatch unjournaled.
	if event.ID == "" {
		in.log.Warn("webhook event without ID, processing unjournaled", "type", event.EventType)
		if err := in.dispatch(ctx, &event); err != nil {
			in.log.Error("webhook dispatch failed", "type", event.EventType, "error", err)
		}
		return
	}

	journalID, duplicate, err := in.journal.Record(ctx, event.ID, event.EventType, raw)
	if err != nil {
		in.log.Error("failed to journal webhook event", "event", event.ID, "error", err)
		return
	}
	if duplicate {
		in.log.Info("duplicate webhook delivery skipped", "event", event.ID, "type", event.EventType)
		return
	}

	dispatchErr := in.dispatch(ctx, &event)
	if dispatchErr != nil {
		in.log.Error("webhook dispatch failed", "event", event.ID, "type", event.EventType, "error", dispatchErr)
	}
	if err := in.journal.MarkProcessed(ctx, journalID, dispatchErr); err != nil {
		in.log.Error("failed to close webhook journal entry", "event", event.ID, "error", err)
	}
}

func (in *Ingress) dispatch(ctx context.Context, event *Event) error {
	switch event.EventType {
	case EventCaptureCompleted:
		return in.handleCompleted(ctx, event)
	case EventCaptureDenied, EventCaptureDeclined:
		return in.handleDenied(ctx, event)
	case EventCaptureRefunded:
		return in.handleRefunded(ctx, event)
	case EventOrderApproved:
		// Approved but not captured yet; capture stays client-triggered.
		in.log.Info("order approved", "event", event.ID)
		return nil
	default:
		in.log.Warn("unhandled webhook event type", "type", event.EventType, "event", event.ID)
		return nil
	}
}

func (in *Ingress) handleCompleted(ctx context.Context, event *Event) error {
	var res captureResource
	if err := json.Unmarshal(event.Resource, &res); err != nil {
		return err
	}
	orderID := res.orderID()
	if orderID == "" {
		in.log.Warn("capture completed event without related order ID", "event", event.ID, "capture", res.ID)
		return nil
	}

	capture := &payment.CaptureResult{
		OrderID:       orderID,
		Status:        payment.CaptureCompleted,
		TransactionID: res.ID,
	}
	if res.Payer != nil {
		capture.PayerEmail = res.Payer.EmailAddress
		capture.PayerID = res.Payer.PayerID
	}

	rec, err := in.donations.ApplyCapture(ctx, orderID, capture)
	if err == nil {
		in.log.Info("donation completed via webhook", "donation", rec.ID, "order", orderID)
		if in.totals != nil {
			in.totals.InvalidateDonationTotal(ctx)
		}
		if in.receipts != nil {
			in.receipts.DonationCompleted(ctx, rec.ID)
		}
		return nil
	}
	if !errors.Is(err, lifecycle.ErrNotFound) {
		return err
	}

	rec, err = in.tickets.ApplyCapture(ctx, orderID, capture)
	if err == nil {
		in.log.Info("ticket completed via webhook", "ticket", rec.ID, "order", orderID)
		if in.receipts != nil {
			in.receipts.TicketCompleted(ctx, rec.ID)
		}
		return nil
	}
	if errors.Is(err, lifecycle.ErrNotFound) {
		in.log.Warn("no record matches webhook order", "order", orderID, "event", event.ID)
		return nil
	}
	return err
}

func (in *Ingress) handleDenied(ctx context.Context, event *Event) error {
	var res captureResource
	if err := json.Unmarshal(event.Resource, &res); err != nil {
		return err
	}
	orderID := res.orderID()
	if orderID == "" {
		in.log.Warn("capture denied event without related order ID", "event", event.ID, "capture", res.ID)
		return nil
	}

	if rec, err := in.donations.MarkDenied(ctx, orderID); err == nil {
		in.log.Info("donation marked failed via webhook", "donation", rec.ID, "order", orderID)
		return nil
	} else if !errors.Is(err, lifecycle.ErrNotFound) {
		return err
	}

	rec, err := in.tickets.MarkDenied(ctx, orderID)
	if err == nil {
		in.log.Info("ticket marked failed via webhook", "ticket", rec.ID, "order", orderID)
		return nil
	}
	if errors.Is(err, lifecycle.ErrNotFound) {
		in.log.Warn("no record matches denied order", "order", orderID, "event", event.ID)
		return nil
	}
	return err
}

func (in *Ingress) handleRefunded(ctx context.Context, event *Event) error {
	var res captureResource
	if err := json.Unmarshal(event.Resource, &res); err != nil {
		return err
	}
	if res.ID == "" {
		in.log.Warn("refund event without transaction ID", "event", event.ID)
		return nil
	}

	if rec, err := in.donations.MarkRefunded(ctx, res.ID); err == nil {
		in.log.Info("donation refunded via webhook", "donation", rec.ID, "transaction", res.ID)
		return nil
	} else if !errors.Is(err, lifecycle.ErrNotFound) {
		return err
	}

	rec, err := in.tickets.MarkRefunded(ctx, res.ID)
	if err == nil {
		in.log.Info("ticket refunded via webhook", "ticket", rec.ID, "transaction", res.ID)
		return nil
	}
	if errors.Is(err, lifecycle.ErrNotFound) {
		in.log.Warn("no record matches refunded transaction", "transaction", res.ID, "event", event.ID)
		return nil
	}
	return err
}
