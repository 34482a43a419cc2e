package payment

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
)

// CreateOrderParams describes a processor-side order to create before
// redirecting the buyer for approval.
type CreateOrderParams struct {
	Amount      decimal.Decimal
	Currency    string
	Description string
	ReturnURL   string
	CancelURL   string
	CustomID    string
}

// Order is the processor's pending transaction, created before buyer approval.
type Order struct {
	OrderID     string
	ApprovalURL string
}

// CaptureResult carries the processor's capture outcome. Payer fields come
// from the processor response, never from user input.
type CaptureResult struct {
	OrderID       string
	Status        string // COMPLETED, DECLINED, ...
	TransactionID string
	PayerEmail    string
	PayerID       string
}

// Refund is the processor's response to a capture refund.
type Refund struct {
	RefundID string
	Status   string
}

// CaptureCompleted is the processor status meaning funds were transferred.
const CaptureCompleted = "COMPLETED"

// Gateway wraps the payment processor's order lifecycle. Implementations add
// no idempotency of their own; duplicate-trigger handling belongs to the
// lifecycle controller.
type Gateway interface {
	CreateOrder(ctx context.Context, params CreateOrderParams) (*Order, error)
	CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error)
	RefundCapture(ctx context.Context, captureID, note string) (*Refund, error)
}

// WebhookVerifier authenticates asynchronous processor notifications.
// Implementations report false on any malformed or unverifiable input rather
// than returning an error, so the ingress can uniformly reject.
type WebhookVerifier interface {
	VerifyWebhook(ctx context.Context, req *http.Request) bool
}
