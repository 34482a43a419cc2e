package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Event struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description"`
	EventDate   time.Time  `gorm:"not null;index" json:"eventDate"`
	EndDate     *time.Time `json:"endDate"`

	Location string  `gorm:"size:255;not null" json:"location"`
	Address  *string `gorm:"type:text" json:"address"`
	City     *string `gorm:"size:100" json:"city"`
	State    *string `gorm:"size:50" json:"state"`
	ZipCode  *string `gorm:"size:20" json:"zipCode"`
	Venue    *string `gorm:"size:255" json:"venue"`

	MaxCapacity *int            `json:"maxCapacity"`
	TicketPrice decimal.Decimal `gorm:"type:decimal(10,2);default:0.00" json:"ticketPrice"`

	IsActive         bool `gorm:"not null;default:true" json:"isActive"`
	IsPublished      bool `gorm:"not null;default:false;index:idx_events_visibility" json:"isPublished"`
	RegistrationOpen bool `gorm:"not null;default:true" json:"registrationOpen"`

	ImageURL *string `gorm:"size:500" json:"imageUrl"`
	Category *string `gorm:"size:100" json:"category"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Speakers []EventSpeaker `gorm:"foreignKey:EventID" json:"speakers,omitempty"`
}

func (Event) TableName() string {
	return "events"
}

type EventSpeaker struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	EventID        uint    `gorm:"not null;index" json:"eventId"`
	Name           string  `gorm:"size:255;not null" json:"name"`
	Title          *string `gorm:"size:255" json:"title"`
	Bio            *string `gorm:"type:text" json:"bio"`
	ImageURL       *string `gorm:"size:500" json:"imageUrl"`
	AppearanceType string  `gorm:"size:50;default:'speaker'" json:"appearanceType"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (EventSpeaker) TableName() string {
	return "event_speakers"
}
