package lifecycle

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status is a transaction record's position in the payment lifecycle.
//
//	pending → completed → refunded
//	pending → failed
//
// failed and refunded are terminal; a failed attempt requires a new record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// Record is the lifecycle view of a monetary transaction row (donation or
// ticket purchase). The type-specific payload stays in the backing store.
type Record struct {
	ID                    uint
	ExternalOrderID       string // processor order ID, empty until order creation succeeds
	ExternalTransactionID string // processor capture ID, set iff the record has completed at least once
	Amount                decimal.Decimal
	Status                Status
	PayerEmail            string
	PayerID               string
	CreatedAt             time.Time
	CompletedAt           *time.Time
}

// Fields is a partial update applied by a Store. Keys are the canonical names
// below; each store maps them onto its own columns.
type Fields map[string]any

const (
	FieldExternalOrderID       = "external_order_id"
	FieldExternalTransactionID = "external_transaction_id"
	FieldPayerEmail            = "payer_email"
	FieldPayerID               = "payer_id"
	FieldCompletedAt           = "completed_at"
)

// Store persists transaction records of one kind. Lookups return (nil, nil)
// when no record matches. Transition must be atomic: apply the status change
// and fields only while the current status equals from, reporting whether a
// row changed.
type Store interface {
	CreatePending(ctx context.Context, amount decimal.Decimal, meta any) (*Record, error)
	FindByID(ctx context.Context, id uint) (*Record, error)
	FindByExternalOrderID(ctx context.Context, orderID string) (*Record, error)
	FindByExternalTransactionID(ctx context.Context, transactionID string) (*Record, error)
	Update(ctx context.Context, id uint, fields Fields) (*Record, error)
	Delete(ctx context.Context, id uint) error
	Transition(ctx context.Context, id uint, from, to Status, fields Fields) (bool, error)
}
