package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Ticket struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	UserID  *uint `gorm:"index" json:"userId"` // nil for guest purchases
	EventID uint  `gorm:"index;not null" json:"eventId"`

	Quantity    int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unitPrice"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"totalAmount"`

	PaymentStatus        string     `gorm:"size:20;not null;default:'pending';index" json:"paymentStatus"`
	PaymentMethod        string     `gorm:"size:50;default:'paypal'" json:"paymentMethod"`
	PaymentTransactionID *string    `gorm:"size:255;uniqueIndex" json:"paymentTransactionId"`
	PayPalOrderID        *string    `gorm:"column:paypal_order_id;size:255;uniqueIndex" json:"paypalOrderId"`
	PayPalPayerID        *string    `gorm:"column:paypal_payer_id;size:255" json:"paypalPayerId"`
	PayPalEmail          *string    `gorm:"column:paypal_email;size:255" json:"paypalEmail"`
	PaymentDate          *time.Time `json:"paymentDate"`

	TicketCode      string  `gorm:"size:100;uniqueIndex;not null" json:"ticketCode"`
	AttendeeNames   *string `gorm:"type:json" json:"-"` // JSON array, see Attendees()
	SpecialRequests *string `gorm:"type:text" json:"specialRequests"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
	User  *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Ticket) TableName() string {
	return "tickets"
}

// NewTicketCode generates a verification code for a ticket purchase.
func NewTicketCode() string {
	return "TKT-" + strings.ToUpper(uuid.NewString()[:13])
}

// SetAttendees stores the attendee name list as JSON.
func (t *Ticket) SetAttendees(names []string) error {
	if len(names) == 0 {
		t.AttendeeNames = nil
		return nil
	}
	raw, err := json.Marshal(names)
	if err != nil {
		return err
	}
	s := string(raw)
	t.AttendeeNames = &s
	return nil
}

// Attendees decodes the stored attendee name list.
func (t *Ticket) Attendees() []string {
	if t.AttendeeNames == nil {
		return nil
	}
	var names []string
	if err := json.Unmarshal([]byte(*t.AttendeeNames), &names); err != nil {
		return nil
	}
	return names
}
