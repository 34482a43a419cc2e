package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/seedsofhope/backend/pkg/models"
)

// TicketOrderStore persists the pre-payment intake forms.
type TicketOrderStore struct {
	db *gorm.DB
}

func NewTicketOrderStore(db *gorm.DB) *TicketOrderStore {
	return &TicketOrderStore{db: db}
}

func (s *TicketOrderStore) Create(ctx context.Context, order *models.TicketOrder) error {
	return s.db.WithContext(ctx).Create(order).Error
}

func (s *TicketOrderStore) ByID(ctx context.Context, id uint) (*models.TicketOrder, error) {
	var order models.TicketOrder
	err := s.db.WithContext(ctx).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListFilter narrows List; zero values mean no filtering. Limit 0 applies
// the default page size, negative means no limit (exports).
type ListFilter struct {
	Status string
	Email  string
	Limit  int
}

func (s *TicketOrderStore) List(ctx context.Context, filter ListFilter) ([]models.TicketOrder, error) {
	q := s.db.WithContext(ctx).Model(&models.TicketOrder{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Email != "" {
		q = q.Where("email = ?", filter.Email)
	}
	limit := filter.Limit
	if limit == 0 {
		limit = 100
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var orders []models.TicketOrder
	err := q.Order("created_at DESC").Find(&orders).Error
	return orders, err
}
