package webhook

import "encoding/json"

// Closed enumeration of processor event types this system dispatches on.
// Anything else is journaled, logged and ignored.
const (
	EventCaptureCompleted = "PAYMENT.CAPTURE.COMPLETED"
	EventCaptureDenied    = "PAYMENT.CAPTURE.DENIED"
	EventCaptureDeclined  = "PAYMENT.CAPTURE.DECLINED"
	EventCaptureRefunded  = "PAYMENT.CAPTURE.REFUNDED"
	EventOrderApproved    = "CHECKOUT.ORDER.APPROVED"
)

// Event is the untrusted envelope of a processor notification. Resource is
// kept raw and decoded per event type.
type Event struct {
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	Resource  json.RawMessage `json:"resource"`
}

// captureResource is the payload of PAYMENT.CAPTURE.* events. For refunds
// the resource ID is the refund's own ID; for captures it is the capture
// (transaction) ID.
type captureResource struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount *struct {
		CurrencyCode string `json:"currency_code"`
		Value        string `json:"value"`
	} `json:"amount"`
	SupplementaryData *struct {
		RelatedIDs *struct {
			OrderID string `json:"order_id"`
		} `json:"related_ids"`
	} `json:"supplementary_data"`
	Payer *struct {
		EmailAddress string `json:"email_address"`
		PayerID      string `json:"payer_id"`
	} `json:"payer"`
}

func (r *captureResource) orderID() string {
	if r.SupplementaryData == nil || r.SupplementaryData.RelatedIDs == nil {
		return ""
	}
	return r.SupplementaryData.RelatedIDs.OrderID
}
