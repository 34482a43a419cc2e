package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/seedsofhope/backend/pkg/lifecycle"
	"github.com/seedsofhope/backend/pkg/models"
)

// TicketDraft is the ticket-specific payload attached to a pending record.
type TicketDraft struct {
	UserID          *uint
	EventID         uint
	Quantity        int
	UnitPrice       decimal.Decimal
	AttendeeNames   []string
	SpecialRequests *string
}

type TicketStore struct {
	db *gorm.DB
}

func NewTicketStore(db *gorm.DB) *TicketStore {
	return &TicketStore{db: db}
}

func (s *TicketStore) CreatePending(ctx context.Context, amount decimal.Decimal, meta any) (*lifecycle.Record, error) {
	draft, _ := meta.(*TicketDraft)
	if draft == nil {
		draft = &TicketDraft{Quantity: 1}
	}

	t := &models.Ticket{
		UserID:          draft.UserID,
		EventID:         draft.EventID,
		Quantity:        draft.Quantity,
		UnitPrice:       draft.UnitPrice,
		TotalAmount:     amount,
		SpecialRequests: draft.SpecialRequests,
		PaymentMethod:   "paypal",
		PaymentStatus:   models.PaymentStatusPending,
		TicketCode:      models.NewTicketCode(),
	}
	if err := t.SetAttendees(draft.AttendeeNames); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return ticketRecord(t), nil
}

func (s *TicketStore) FindByID(ctx context.Context, id uint) (*lifecycle.Record, error) {
	t, err := s.Ticket(ctx, id)
	if err != nil || t == nil {
		return nil, err
	}
	return ticketRecord(t), nil
}

func (s *TicketStore) FindByExternalOrderID(ctx context.Context, orderID string) (*lifecycle.Record, error) {
	t, err := s.TicketByOrderID(ctx, orderID)
	if err != nil || t == nil {
		return nil, err
	}
	return ticketRecord(t), nil
}

func (s *TicketStore) FindByExternalTransactionID(ctx context.Context, transactionID string) (*lifecycle.Record, error) {
	var t models.Ticket
	err := s.db.WithContext(ctx).Where("payment_transaction_id = ?", transactionID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ticketRecord(&t), nil
}

func (s *TicketStore) Update(ctx context.Context, id uint, fields lifecycle.Fields) (*lifecycle.Record, error) {
	updates := ticketColumns(fields)
	if len(updates) > 0 {
		err := s.db.WithContext(ctx).Model(&models.Ticket{}).Where("id = ?", id).Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}
	return s.FindByID(ctx, id)
}

func (s *TicketStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Ticket{}, id).Error
}

func (s *TicketStore) Transition(ctx context.Context, id uint, from, to lifecycle.Status, fields lifecycle.Fields) (bool, error) {
	updates := ticketColumns(fields)
	updates["payment_status"] = string(to)

	res := s.db.WithContext(ctx).Model(&models.Ticket{}).
		Where("id = ? AND payment_status = ?", id, string(from)).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

// Ticket loads the full row with event and purchaser for API responses.
func (s *TicketStore) Ticket(ctx context.Context, id uint) (*models.Ticket, error) {
	var t models.Ticket
	err := s.db.WithContext(ctx).Preload("Event").Preload("User").First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TicketStore) TicketByOrderID(ctx context.Context, orderID string) (*models.Ticket, error) {
	var t models.Ticket
	err := s.db.WithContext(ctx).Preload("Event").Preload("User").
		Where("paypal_order_id = ?", orderID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func ticketColumns(fields lifecycle.Fields) map[string]any {
	updates := map[string]any{}
	for key, value := range fields {
		switch key {
		case lifecycle.FieldExternalOrderID:
			updates["paypal_order_id"] = value
		case lifecycle.FieldExternalTransactionID:
			updates["payment_transaction_id"] = value
		case lifecycle.FieldPayerEmail:
			updates["paypal_email"] = value
		case lifecycle.FieldPayerID:
			updates["paypal_payer_id"] = value
		case lifecycle.FieldCompletedAt:
			updates["payment_date"] = value
		}
	}
	return updates
}

func ticketRecord(t *models.Ticket) *lifecycle.Record {
	rec := &lifecycle.Record{
		ID:          t.ID,
		Amount:      t.TotalAmount,
		Status:      lifecycle.Status(t.PaymentStatus),
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.PaymentDate,
	}
	if t.PayPalOrderID != nil {
		rec.ExternalOrderID = *t.PayPalOrderID
	}
	if t.PaymentTransactionID != nil {
		rec.ExternalTransactionID = *t.PaymentTransactionID
	}
	if t.PayPalEmail != nil {
		rec.PayerEmail = *t.PayPalEmail
	}
	if t.PayPalPayerID != nil {
		rec.PayerID = *t.PayPalPayerID
	}
	return rec
}
