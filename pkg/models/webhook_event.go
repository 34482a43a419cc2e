package models

import "time"

// WebhookEvent journals processor webhook deliveries with deduplication
// metadata so redeliveries are detected and unmatched events stay auditable.
type WebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Provider        string     `gorm:"size:20;not null;default:'paypal';uniqueIndex:ux_webhook_events_provider_event,priority:1" json:"provider"`
	ProviderEventID string     `gorm:"size:191;not null;uniqueIndex:ux_webhook_events_provider_event,priority:2" json:"providerEventId"`
	EventType       string     `gorm:"size:100;not null;index" json:"eventType"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payloadJson"`
	ProcessedAt     *time.Time `json:"processedAt"`
	ProcessingError *string    `gorm:"type:text" json:"processingError"`
	CreatedAt       time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
