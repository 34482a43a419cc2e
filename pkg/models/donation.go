package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment status values shared by donations and tickets.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

type Donation struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	Name   *string `gorm:"size:255" json:"name"` // nil for anonymous donations
	Email  *string `gorm:"size:255;index" json:"email"`
	UserID *uint   `gorm:"index" json:"userId"`

	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	IsAnonymous bool            `gorm:"not null;default:false;index" json:"isAnonymous"`

	PaymentProcessor     string     `gorm:"size:50;not null;default:'paypal'" json:"paymentProcessor"`
	PaymentStatus        string     `gorm:"size:20;not null;default:'pending';index" json:"paymentStatus"`
	PaymentTransactionID *string    `gorm:"size:255;uniqueIndex" json:"paymentTransactionId"`
	PaymentDate          *time.Time `json:"paymentDate"`

	PayPalOrderID *string `gorm:"column:paypal_order_id;size:255;uniqueIndex" json:"paypalOrderId"`
	PayPalPayerID *string `gorm:"column:paypal_payer_id;size:255" json:"paypalPayerId"`
	PayPalEmail   *string `gorm:"column:paypal_email;size:255" json:"paypalEmail"` // account email reported by PayPal, not user input

	Message      *string `gorm:"type:text" json:"message"`
	DonationType string  `gorm:"size:50;default:'one-time'" json:"donationType"`

	ReceiptSent       bool       `gorm:"not null;default:false" json:"receiptSent"`
	ReceiptSentAt     *time.Time `json:"receiptSentAt"`
	TaxReceiptNumber  *string    `gorm:"size:100" json:"taxReceiptNumber"`
	RequestTaxReceipt bool       `gorm:"not null;default:false" json:"requestTaxReceipt"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Donation) TableName() string {
	return "donations"
}

// Normalize applies the anonymous-donor rule before persistence: anonymous
// donations never store a name.
func (d *Donation) Normalize() {
	if d.IsAnonymous {
		d.Name = nil
	}
	if d.DonationType == "" {
		d.DonationType = "one-time"
	}
}

// PublicName is the display name, suppressed for anonymous donations.
func (d *Donation) PublicName() *string {
	if d.IsAnonymous {
		return nil
	}
	return d.Name
}
