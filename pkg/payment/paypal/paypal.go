// Package paypal implements the payment gateway contract on the PayPal
// Orders v2 API via the plutov/paypal SDK.
package paypal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/plutov/paypal/v4"

	"github.com/seedsofhope/backend/pkg/payment"
)

// Options configures the PayPal client. Environment selects the sandbox or
// live API base; WebhookID is required for strict webhook verification.
type Options struct {
	ClientID     string
	ClientSecret string
	Environment  string // sandbox or live/production
	WebhookID    string
	BrandName    string
	Timeout      time.Duration
}

type Client struct {
	pp        *paypal.Client
	webhookID string
	brandName string
	timeout   time.Duration
}

// New creates the PayPal client and obtains an initial access token.
func New(opts Options) (*Client, error) {
	apiBase := paypal.APIBaseSandBox
	if opts.Environment == "live" || opts.Environment == "production" {
		apiBase = paypal.APIBaseLive
	}

	pp, err := paypal.NewClient(opts.ClientID, opts.ClientSecret, apiBase)
	if err != nil {
		return nil, err
	}
	if _, err = pp.GetAccessToken(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to get PayPal access token: %w", err)
	}

	if opts.WebhookID == "" {
		slog.Warn("PAYPAL_WEBHOOK_ID not set; all webhook deliveries will be rejected")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	slog.Info("PayPal gateway initialized", "environment", opts.Environment)
	return &Client{
		pp:        pp,
		webhookID: opts.WebhookID,
		brandName: opts.BrandName,
		timeout:   opts.Timeout,
	}, nil
}

func (c *Client) CreateOrder(ctx context.Context, params payment.CreateOrderParams) (*payment.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	units := []paypal.PurchaseUnitRequest{
		{
			Amount: &paypal.PurchaseUnitAmount{
				Currency: params.Currency,
				Value:    params.Amount.StringFixed(2),
			},
			Description: params.Description,
			CustomID:    params.CustomID,
		},
	}

	appCtx := &paypal.ApplicationContext{
		BrandName:   c.brandName,
		LandingPage: "BILLING",
		UserAction:  "PAY_NOW",
		ReturnURL:   params.ReturnURL,
		CancelURL:   params.CancelURL,
	}

	order, err := c.pp.CreateOrder(ctx, "CAPTURE", units, nil, appCtx)
	if err != nil {
		return nil, &payment.GatewayError{Op: "create_order", Err: err}
	}

	approvalURL := approvalLink(order.Links)
	if approvalURL == "" {
		return nil, &payment.GatewayError{Op: "create_order", Err: fmt.Errorf("order %s has no approval link", order.ID)}
	}

	return &payment.Order{OrderID: order.ID, ApprovalURL: approvalURL}, nil
}

func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*payment.CaptureResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	capture, err := c.pp.CaptureOrder(ctx, orderID, paypal.CaptureOrderRequest{})
	if err != nil {
		return nil, &payment.GatewayError{Op: "capture_order", Err: err}
	}

	result := &payment.CaptureResult{
		OrderID: capture.ID,
		Status:  capture.Status,
	}
	if capture.Payer != nil {
		result.PayerEmail = capture.Payer.EmailAddress
		result.PayerID = capture.Payer.PayerID
	}
	if len(capture.PurchaseUnits) > 0 {
		if payments := capture.PurchaseUnits[0].Payments; payments != nil && len(payments.Captures) > 0 {
			result.TransactionID = payments.Captures[0].ID
		}
	}
	return result, nil
}

func (c *Client) RefundCapture(ctx context.Context, captureID, note string) (*payment.Refund, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if note == "" {
		note = "Refund processed"
	}
	refund, err := c.pp.RefundCapture(ctx, captureID, paypal.RefundCaptureRequest{NoteToPayer: note})
	if err != nil {
		return nil, &payment.GatewayError{Op: "refund_capture", Err: err}
	}
	return &payment.Refund{RefundID: refund.ID, Status: refund.Status}, nil
}

// VerifyWebhook checks the transmission signature through PayPal's
// verify-webhook-signature API. Verification is strict: without a configured
// webhook ID every delivery is rejected.
func (c *Client) VerifyWebhook(ctx context.Context, req *http.Request) bool {
	if c.webhookID == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.pp.VerifyWebhookSignature(ctx, req, c.webhookID)
	if err != nil {
		slog.Error("webhook signature verification call failed", "error", err)
		return false
	}
	return resp.VerificationStatus == "SUCCESS"
}

func approvalLink(links []paypal.Link) string {
	for _, link := range links {
		if link.Rel == "approve" {
			return link.Href
		}
	}
	return ""
}
