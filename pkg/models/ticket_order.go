package models

import (
	"encoding/json"
	"time"
)

// TicketOrder is the pre-payment intake form for event access requests. It is
// decoupled from the paid Ticket record; staff link the two after review.
type TicketOrder struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:255;not null" json:"name"`
	Email string `gorm:"size:255;not null;index" json:"email"`

	Birthdate      time.Time `gorm:"type:date;not null" json:"birthdate"`
	MailingAddress string    `gorm:"size:255;not null" json:"mailingAddress"`
	MailingCity    string    `gorm:"size:100;not null" json:"mailingCity"`
	MailingState   string    `gorm:"size:50;not null" json:"mailingState"`
	MailingZipCode string    `gorm:"size:20;not null" json:"mailingZipCode"`

	PhoneNumber            string  `gorm:"size:20;not null" json:"phoneNumber"`
	TextNumber             *string `gorm:"size:20" json:"textNumber"`
	PreferredCommunication string  `gorm:"size:10;not null;default:'email'" json:"preferredCommunication"` // text or email

	IsGroupOrder bool    `gorm:"not null;default:false" json:"isGroupOrder"`
	GroupMembers *string `gorm:"type:json" json:"-"` // JSON array, see Members()

	NeedsAirportTransportation bool    `gorm:"not null;default:false" json:"needsAirportTransportation"`
	WantsCateredDinner         bool    `gorm:"not null;default:false" json:"wantsCateredDinner"`
	ProteinRequests            *string `gorm:"type:text" json:"proteinRequests"`
	FoodAllergies              *string `gorm:"type:text" json:"foodAllergies"`
	Notes                      *string `gorm:"type:text" json:"notes"`

	Status   string `gorm:"size:20;not null;default:'submitted';index" json:"status"`
	TicketID *uint  `gorm:"index" json:"ticketId"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (TicketOrder) TableName() string {
	return "ticket_orders"
}

// SetMembers stores the group member list as JSON.
func (o *TicketOrder) SetMembers(members []string) error {
	if len(members) == 0 {
		o.GroupMembers = nil
		return nil
	}
	raw, err := json.Marshal(members)
	if err != nil {
		return err
	}
	s := string(raw)
	o.GroupMembers = &s
	return nil
}

// Members decodes the stored group member list.
func (o *TicketOrder) Members() []string {
	if o.GroupMembers == nil {
		return nil
	}
	var members []string
	if err := json.Unmarshal([]byte(*o.GroupMembers), &members); err != nil {
		return nil
	}
	return members
}
