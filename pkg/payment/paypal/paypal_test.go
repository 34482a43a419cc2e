package paypal

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/plutov/paypal/v4"
	"github.com/stretchr/testify/assert"
)

func TestApprovalLink(t *testing.T) {
	links := []paypal.Link{
		{Href: "https://api.paypal.test/orders/1", Rel: "self"},
		{Href: "https://paypal.test/checkoutnow?token=1", Rel: "approve"},
		{Href: "https://api.paypal.test/orders/1/capture", Rel: "capture"},
	}
	assert.Equal(t, "https://paypal.test/checkoutnow?token=1", approvalLink(links))
}

func TestApprovalLinkMissing(t *testing.T) {
	assert.Empty(t, approvalLink(nil))
	assert.Empty(t, approvalLink([]paypal.Link{{Href: "x", Rel: "self"}}))
}

func TestVerifyWebhookFailsClosedWithoutWebhookID(t *testing.T) {
	c := &Client{webhookID: "", timeout: time.Second}

	req, _ := http.NewRequest(http.MethodPost, "/api/paypal/webhook", nil)
	assert.False(t, c.VerifyWebhook(context.Background(), req),
		"deliveries must be rejected when no webhook ID is configured")
}
