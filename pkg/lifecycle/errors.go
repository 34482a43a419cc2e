package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no record matches the given ID, order ID, or
	// transaction ID.
	ErrNotFound = errors.New("transaction record not found")

	// ErrConflict means the requested transition is not permitted from the
	// record's current state, e.g. capturing an order that already failed.
	ErrConflict = errors.New("transaction record is in a conflicting state")

	// ErrInvalidAmount guards Initiate against non-positive amounts that
	// slipped past request validation.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// CaptureDeclinedError reports a capture the processor answered but did not
// complete. The record has been moved to failed. Distinct from GatewayError:
// a transport failure never justifies a terminal failed state.
type CaptureDeclinedError struct {
	Status string
}

func (e *CaptureDeclinedError) Error() string {
	return fmt.Sprintf("payment capture was not completed (status %s)", e.Status)
}
