// Package store provides the gorm-backed record stores behind the lifecycle
// controller, one per transaction kind, plus the typed queries the HTTP
// handlers need.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/seedsofhope/backend/pkg/lifecycle"
	"github.com/seedsofhope/backend/pkg/models"
)

// DonationDraft is the donation-specific payload attached to a pending
// record. Opaque to the lifecycle controller.
type DonationDraft struct {
	Name              *string
	Email             *string
	UserID            *uint
	IsAnonymous       bool
	Message           *string
	DonationType      string
	RequestTaxReceipt bool
}

type DonationStore struct {
	db *gorm.DB
}

func NewDonationStore(db *gorm.DB) *DonationStore {
	return &DonationStore{db: db}
}

func (s *DonationStore) CreatePending(ctx context.Context, amount decimal.Decimal, meta any) (*lifecycle.Record, error) {
	draft, _ := meta.(*DonationDraft)
	if draft == nil {
		draft = &DonationDraft{}
	}

	d := &models.Donation{
		Name:              draft.Name,
		Email:             draft.Email,
		UserID:            draft.UserID,
		Amount:            amount,
		IsAnonymous:       draft.IsAnonymous,
		Message:           draft.Message,
		DonationType:      draft.DonationType,
		RequestTaxReceipt: draft.RequestTaxReceipt,
		PaymentProcessor:  "paypal",
		PaymentStatus:     models.PaymentStatusPending,
	}
	d.Normalize()

	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return donationRecord(d), nil
}

func (s *DonationStore) FindByID(ctx context.Context, id uint) (*lifecycle.Record, error) {
	d, err := s.Donation(ctx, id)
	if err != nil || d == nil {
		return nil, err
	}
	return donationRecord(d), nil
}

func (s *DonationStore) FindByExternalOrderID(ctx context.Context, orderID string) (*lifecycle.Record, error) {
	d, err := s.DonationByOrderID(ctx, orderID)
	if err != nil || d == nil {
		return nil, err
	}
	return donationRecord(d), nil
}

func (s *DonationStore) FindByExternalTransactionID(ctx context.Context, transactionID string) (*lifecycle.Record, error) {
	var d models.Donation
	err := s.db.WithContext(ctx).Where("payment_transaction_id = ?", transactionID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return donationRecord(&d), nil
}

func (s *DonationStore) Update(ctx context.Context, id uint, fields lifecycle.Fields) (*lifecycle.Record, error) {
	updates := donationColumns(fields)
	if len(updates) > 0 {
		err := s.db.WithContext(ctx).Model(&models.Donation{}).Where("id = ?", id).Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}
	return s.FindByID(ctx, id)
}

// Delete is the compensating action for a failed order creation; completed
// records are never deleted.
func (s *DonationStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Donation{}, id).Error
}

// Transition applies the status change only while the row still holds the
// expected current status, closing the race between two finalize paths.
func (s *DonationStore) Transition(ctx context.Context, id uint, from, to lifecycle.Status, fields lifecycle.Fields) (bool, error) {
	updates := donationColumns(fields)
	updates["payment_status"] = string(to)

	res := s.db.WithContext(ctx).Model(&models.Donation{}).
		Where("id = ? AND payment_status = ?", id, string(from)).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

// Donation loads the full donation row for API responses.
func (s *DonationStore) Donation(ctx context.Context, id uint) (*models.Donation, error) {
	var d models.Donation
	err := s.db.WithContext(ctx).First(&d, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DonationStore) DonationByOrderID(ctx context.Context, orderID string) (*models.Donation, error) {
	var d models.Donation
	err := s.db.WithContext(ctx).Where("paypal_order_id = ?", orderID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// SumCompleted totals all completed donation amounts.
func (s *DonationStore) SumCompleted(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := s.db.WithContext(ctx).Model(&models.Donation{}).
		Where("payment_status = ?", models.PaymentStatusCompleted).
		Select("SUM(amount)").Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// MarkReceiptSent records that the receipt email went out.
func (s *DonationStore) MarkReceiptSent(ctx context.Context, id uint) error {
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Model(&models.Donation{}).Where("id = ?", id).
		Updates(map[string]any{"receipt_sent": true, "receipt_sent_at": now}).Error
}

func donationColumns(fields lifecycle.Fields) map[string]any {
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

func donationRecord(d *models.Donation) *lifecycle.Record {
	rec := &lifecycle.Record{
		ID:          d.ID,
		Amount:      d.Amount,
		Status:      lifecycle.Status(d.PaymentStatus),
		CreatedAt:   d.CreatedAt,
		CompletedAt: d.PaymentDate,
	}
	if d.PayPalOrderID != nil {
		rec.ExternalOrderID = *d.PayPalOrderID
	}
	if d.PaymentTransactionID != nil {
		rec.ExternalTransactionID = *d.PaymentTransactionID
	}
	if d.PayPalEmail != nil {
		rec.PayerEmail = *d.PayPalEmail
	}
	if d.PayPalPayerID != nil {
		rec.PayerID = *d.PayPalPayerID
	}
	return rec
}
