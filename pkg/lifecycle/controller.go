// Package lifecycle implements the transaction lifecycle state machine:
// the rules moving a donation or ticket purchase between pending, completed,
// failed and refunded, reconciled from two racing channels (client-initiated
// capture and asynchronous webhook delivery).
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seedsofhope/backend/pkg/payment"
)

// Controller drives all status transitions for one record kind. It is the
// only writer of lifecycle state; handlers and the webhook ingress delegate
// here.
type Controller struct {
	store   Store
	gateway payment.Gateway
	kind    string // donation or ticket, used for custom IDs and logs
	log     *slog.Logger
}

func New(store Store, gateway payment.Gateway, kind string) *Controller {
	return &Controller{
		store:   store,
		gateway: gateway,
		kind:    kind,
		log:     slog.With("component", "lifecycle", "kind", kind),
	}
}

// InitiateParams describes a new transaction to open with the processor.
type InitiateParams struct {
	Amount      decimal.Decimal
	Currency    string
	Description string
	ReturnURL   string
	CancelURL   string
	Meta        any // kind-specific payload, opaque to the state machine
}

// InitiateResult is the created pending record plus the processor approval
// URL the buyer must be redirected to.
type InitiateResult struct {
	Record      *Record
	ApprovalURL string
}

// Initiate creates a pending record and a matching processor order. If the
// processor rejects the order the record is deleted again (compensating
// delete) and the gateway error surfaced.
func (c *Controller) Initiate(ctx context.Context, p InitiateParams) (*InitiateResult, error) {
	if !p.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}

	rec, err := c.store.CreatePending(ctx, p.Amount, p.Meta)
	if err != nil {
		return nil, fmt.Errorf("failed to create pending record: %w", err)
	}

	order, err := c.gateway.CreateOrder(ctx, payment.CreateOrderParams{
		Amount:      p.Amount,
		Currency:    p.Currency,
		Description: p.Description,
		ReturnURL:   p.ReturnURL,
		CancelURL:   p.CancelURL,
		CustomID:    fmt.Sprintf("%s-%d", c.kind, rec.ID),
	})
	if err != nil {
		if delErr := c.store.Delete(ctx, rec.ID); delErr != nil {
			c.log.Error("compensating delete failed", "record", rec.ID, "error", delErr)
		}
		return nil, err
	}

	rec, err = c.store.Update(ctx, rec.ID, Fields{FieldExternalOrderID: order.OrderID})
	if err != nil {
		return nil, fmt.Errorf("failed to attach order ID to record %d: %w", rec.ID, err)
	}

	c.log.Info("transaction initiated", "record", rec.ID, "order", order.OrderID, "amount", p.Amount)
	return &InitiateResult{Record: rec, ApprovalURL: order.ApprovalURL}, nil
}

// Finalize captures the processor order and settles the record. Calling it
// again for an already completed record is a successful no-op that performs
// no second capture; the client redirect and the webhook race under normal
// operation and both must be able to land here.
func (c *Controller) Finalize(ctx context.Context, orderID string) (*Record, error) {
	rec, err := c.store.FindByExternalOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}

	switch rec.Status {
	case StatusCompleted:
		c.log.Info("finalize on completed record, returning as-is", "record", rec.ID, "order", orderID)
		return rec, nil
	case StatusFailed, StatusRefunded:
		return nil, fmt.Errorf("order %s already settled as %s: %w", orderID, rec.Status, ErrConflict)
	}

	capture, err := c.gateway.CaptureOrder(ctx, orderID)
	if err != nil {
		// Transport or processor failure: leave the record pending so a
		// webhook delivery or client retry can finish the job.
		c.log.Error("capture call failed, record stays pending", "record", rec.ID, "order", orderID, "error", err)
		return nil, err
	}

	if capture.Status != payment.CaptureCompleted {
		changed, err := c.store.Transition(ctx, rec.ID, StatusPending, StatusFailed, nil)
		if err != nil {
			return nil, err
		}
		if !changed {
			if current, err := c.requireCurrent(ctx, rec.ID); err != nil {
				return nil, err
			} else if current.Status != StatusFailed {
				return nil, fmt.Errorf("order %s moved to %s during capture: %w", orderID, current.Status, ErrConflict)
			}
		}
		c.log.Warn("capture declined", "record", rec.ID, "order", orderID, "status", capture.Status)
		return nil, &CaptureDeclinedError{Status: capture.Status}
	}

	return c.complete(ctx, rec, orderID, capture)
}

// ApplyCapture settles a record from capture data the processor already
// confirmed (webhook PAYMENT.CAPTURE.COMPLETED). No gateway call is made.
func (c *Controller) ApplyCapture(ctx context.Context, orderID string, capture *payment.CaptureResult) (*Record, error) {
	rec, err := c.store.FindByExternalOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}

	switch rec.Status {
	case StatusCompleted:
		return rec, nil
	case StatusFailed, StatusRefunded:
		return nil, fmt.Errorf("order %s already settled as %s: %w", orderID, rec.Status, ErrConflict)
	}

	return c.complete(ctx, rec, orderID, capture)
}

// complete applies the guarded pending→completed transition. Losing the race
// to a concurrent finalize is treated as success as long as the winner
// completed the record.
func (c *Controller) complete(ctx context.Context, rec *Record, orderID string, capture *payment.CaptureResult) (*Record, error) {
	fields := Fields{FieldCompletedAt: time.Now().UTC()}
	if capture.TransactionID != "" {
		fields[FieldExternalTransactionID] = capture.TransactionID
	}
	if capture.PayerEmail != "" {
		fields[FieldPayerEmail] = capture.PayerEmail
	}
	if capture.PayerID != "" {
		fields[FieldPayerID] = capture.PayerID
	}

	changed, err := c.store.Transition(ctx, rec.ID, StatusPending, StatusCompleted, fields)
	if err != nil {
		return nil, err
	}

	current, err := c.store.FindByExternalOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNotFound
	}
	if !changed {
		if current.Status == StatusCompleted {
			c.log.Info("lost finalize race to concurrent completion", "record", rec.ID, "order", orderID)
			return current, nil
		}
		return nil, fmt.Errorf("order %s moved to %s during finalize: %w", orderID, current.Status, ErrConflict)
	}

	c.log.Info("transaction completed", "record", current.ID, "order", orderID, "transaction", capture.TransactionID)
	return current, nil
}

// MarkDenied moves a pending record to failed after the processor reported a
// denied or declined capture. Webhook-only trigger; redeliveries are no-ops.
func (c *Controller) MarkDenied(ctx context.Context, orderID string) (*Record, error) {
	rec, err := c.store.FindByExternalOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}

	switch rec.Status {
	case StatusFailed:
		return rec, nil
	case StatusCompleted, StatusRefunded:
		return nil, fmt.Errorf("cannot deny order %s in state %s: %w", orderID, rec.Status, ErrConflict)
	}

	changed, err := c.store.Transition(ctx, rec.ID, StatusPending, StatusFailed, nil)
	if err != nil {
		return nil, err
	}
	if !changed {
		// Lost the race: another path settled the record after our read.
		current, err := c.requireCurrent(ctx, rec.ID)
		if err != nil {
			return nil, err
		}
		if current.Status == StatusFailed {
			return current, nil
		}
		return nil, fmt.Errorf("cannot deny order %s in state %s: %w", orderID, current.Status, ErrConflict)
	}
	c.log.Info("transaction denied", "record", rec.ID, "order", orderID)
	return c.store.FindByID(ctx, rec.ID)
}

// MarkRefunded moves a completed record to refunded, keyed by the capture
// transaction ID the refund event references. Only completed records can be
// refunded; the transaction ID is kept as history.
func (c *Controller) MarkRefunded(ctx context.Context, transactionID string) (*Record, error) {
	rec, err := c.store.FindByExternalTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}

	switch rec.Status {
	case StatusRefunded:
		return rec, nil
	case StatusPending, StatusFailed:
		return nil, fmt.Errorf("cannot refund transaction %s in state %s: %w", transactionID, rec.Status, ErrConflict)
	}

	changed, err := c.store.Transition(ctx, rec.ID, StatusCompleted, StatusRefunded, nil)
	if err != nil {
		return nil, err
	}
	if !changed {
		current, err := c.requireCurrent(ctx, rec.ID)
		if err != nil {
			return nil, err
		}
		if current.Status == StatusRefunded {
			return current, nil
		}
		return nil, fmt.Errorf("cannot refund transaction %s in state %s: %w", transactionID, current.Status, ErrConflict)
	}
	c.log.Info("transaction refunded", "record", rec.ID, "transaction", transactionID)
	return c.store.FindByID(ctx, rec.ID)
}

// requireCurrent reloads a record that is known to exist.
func (c *Controller) requireCurrent(ctx context.Context, id uint) (*Record, error) {
	current, err := c.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNotFound
	}
	return current, nil
}
