package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/seedsofhope/backend/pkg/models"
)

// EventStore serves the read-only event catalog behind the public site and
// the ticket purchase flow.
type EventStore struct {
	db *gorm.DB
}

func NewEventStore(db *gorm.DB) *EventStore {
	return &EventStore{db: db}
}

// Published lists events visible to the public, soonest first.
func (s *EventStore) Published(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).
		Where("is_published = ? AND is_active = ?", true, true).
		Order("event_date ASC").
		Find(&events).Error
	return events, err
}

// Event loads one event with its speakers, or nil when absent.
func (s *EventStore) Event(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	err := s.db.WithContext(ctx).Preload("Speakers").First(&event, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// User loads a registered purchaser, or nil when absent.
func (s *EventStore) User(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
