package webhook

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/seedsofhope/backend/pkg/models"
)

// Journal persists every verified delivery so redeliveries are detected and
// unmatched events remain auditable.
type Journal struct {
	db *gorm.DB
}

func NewJournal(db *gorm.DB) *Journal {
	return &Journal{db: db}
}

// Record stores the delivery. The (provider, event ID) pair is unique;
// duplicate reports the event was already journaled.
func (j *Journal) Record(ctx context.Context, eventID, eventType string, payload []byte) (id uint, duplicate bool, err error) {
	row := &models.WebhookEvent{
		Provider:        "paypal",
		ProviderEventID: eventID,
		EventType:       eventType,
		PayloadJSON:     string(payload),
	}
	err = j.db.WithContext(ctx).Create(row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return 0, true, nil
	}
	if err != nil {
		return 0, false, err
	}
	return row.ID, false, nil
}

// MarkProcessed closes the journal entry, keeping the dispatch error if any.
func (j *Journal) MarkProcessed(ctx context.Context, id uint, dispatchErr error) error {
	updates := map[string]any{"processed_at": time.Now().UTC()}
	if dispatchErr != nil {
		msg := dispatchErr.Error()
		updates["processing_error"] = msg
	}
	return j.db.WithContext(ctx).Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
