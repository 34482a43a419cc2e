package mailer

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/seedsofhope/backend/pkg/models"
)

// blockingSender simulates a stalled SMTP host: Send hangs until released.
type blockingSender struct {
	release chan struct{}
	mu      sync.Mutex
	sent    []string
}

func (s *blockingSender) Send(to, _, _ string) error {
	<-s.release
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, to)
	return nil
}

type fakeDonationSource struct {
	donation *models.Donation
	marked   chan uint
}

func (f *fakeDonationSource) Donation(context.Context, uint) (*models.Donation, error) {
	return f.donation, nil
}

func (f *fakeDonationSource) MarkReceiptSent(_ context.Context, id uint) error {
	f.marked <- id
	return nil
}

type fakeTicketSource struct {
	ticket *models.Ticket
}

func (f *fakeTicketSource) Ticket(context.Context, uint) (*models.Ticket, error) {
	return f.ticket, nil
}

func newTestReceipts(sender receiptSender, donations donationSource, tickets ticketSource) *ReceiptService {
	return &ReceiptService{
		mailer:    sender,
		donations: donations,
		tickets:   tickets,
		log:       slog.Default(),
	}
}

func receiptedDonation() *models.Donation {
	email := "donor@example.com"
	txn := "TXN1"
	return &models.Donation{
		ID:                   1,
		Email:                &email,
		Amount:               decimal.RequireFromString("25.00"),
		PaymentStatus:        models.PaymentStatusCompleted,
		PaymentTransactionID: &txn,
		RequestTaxReceipt:    true,
	}
}

func TestDonationReceiptDoesNotBlockPaymentFlow(t *testing.T) {
	sender := &blockingSender{release: make(chan struct{})}
	donations := &fakeDonationSource{donation: receiptedDonation(), marked: make(chan uint, 1)}
	svc := newTestReceipts(sender, donations, &fakeTicketSource{})

	returned := make(chan struct{})
	go func() {
		svc.DonationCompleted(context.Background(), 1)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("DonationCompleted blocked on mail delivery")
	}

	// Releasing the stalled sender lets the background delivery finish.
	close(sender.release)
	select {
	case id := <-donations.marked:
		assert.Equal(t, uint(1), id)
	case <-time.After(time.Second):
		t.Fatal("receipt was never delivered after the sender recovered")
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Equal(t, []string{"donor@example.com"}, sender.sent)
}

func TestTicketConfirmationDoesNotBlockPaymentFlow(t *testing.T) {
	sender := &blockingSender{release: make(chan struct{})}
	email := "buyer@example.com"
	tickets := &fakeTicketSource{ticket: &models.Ticket{
		ID:          2,
		Quantity:    2,
		TotalAmount: decimal.RequireFromString("50.00"),
		TicketCode:  "TKT-ABC",
		PayPalEmail: &email,
	}}
	svc := newTestReceipts(sender, &fakeDonationSource{}, tickets)

	returned := make(chan struct{})
	go func() {
		svc.TicketCompleted(context.Background(), 2)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("TicketCompleted blocked on mail delivery")
	}
	close(sender.release)
}

func TestDonationReceiptSkippedWhenAlreadySent(t *testing.T) {
	sender := &blockingSender{release: make(chan struct{})}
	close(sender.release)

	d := receiptedDonation()
	d.ReceiptSent = true
	donations := &fakeDonationSource{donation: d, marked: make(chan uint, 1)}
	svc := newTestReceipts(sender, donations, &fakeTicketSource{})

	// Call the delivery path directly so the assertion is not racing a
	// goroutine.
	svc.sendDonationReceipt(1)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Empty(t, sender.sent, "a second completion path must not re-send the receipt")
}
