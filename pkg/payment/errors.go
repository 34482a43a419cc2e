package payment

import "fmt"

// GatewayError wraps a processor-side rejection or transport failure. Callers
// surface a generic message to clients and log the wrapped detail.
type GatewayError struct {
	Op  string // create_order, capture_order, refund_capture
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
