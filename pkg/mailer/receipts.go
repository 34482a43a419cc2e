package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/seedsofhope/backend/pkg/models"
	"github.com/seedsofhope/backend/pkg/store"
)

// sendTimeout bounds the background record load and delivery of one receipt.
const sendTimeout = 30 * time.Second

type receiptSender interface {
	Send(to, subject, html string) error
}

type donationSource interface {
	Donation(ctx context.Context, id uint) (*models.Donation, error)
	MarkReceiptSent(ctx context.Context, id uint) error
}

type ticketSource interface {
	Ticket(ctx context.Context, id uint) (*models.Ticket, error)
}

// ReceiptService sends post-payment email after a record completes, from
// either reconciliation path (client capture or webhook). Each send runs on
// its own goroutine with a bounded deadline so payment responses and webhook
// acknowledgments never wait on SMTP; failures are logged, never propagated
// into the payment flow.
type ReceiptService struct {
	mailer    receiptSender
	donations donationSource
	tickets   ticketSource
	log       *slog.Logger
}

func NewReceiptService(m *Mailer, donations *store.DonationStore, tickets *store.TicketStore) *ReceiptService {
	return &ReceiptService{
		mailer:    m,
		donations: donations,
		tickets:   tickets,
		log:       slog.With("component", "receipts"),
	}
}

// DonationCompleted queues the donor's receipt and returns immediately.
// Idempotent across the capture/webhook race via the receipt_sent flag.
func (r *ReceiptService) DonationCompleted(_ context.Context, donationID uint) {
	go r.sendDonationReceipt(donationID)
}

// sendDonationReceipt sends the receipt when one was requested and not yet
// sent. Detached from the request context: the response has usually been
// written by the time this runs.
func (r *ReceiptService) sendDonationReceipt(donationID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	d, err := r.donations.Donation(ctx, donationID)
	if err != nil || d == nil {
		r.log.Error("cannot load donation for receipt", "donation", donationID, "error", err)
		return
	}
	if !d.RequestTaxReceipt || d.ReceiptSent {
		return
	}

	to := ""
	if d.Email != nil {
		to = *d.Email
	} else if d.PayPalEmail != nil {
		to = *d.PayPalEmail
	}
	if to == "" {
		r.log.Warn("donation receipt requested but no email on file", "donation", d.ID)
		return
	}

	name := "Friend"
	if d.Name != nil && *d.Name != "" {
		name = *d.Name
	}
	html := fmt.Sprintf(`<h2>Thank You for Your Donation</h2>
<p>Dear %s,</p>
<p>We gratefully acknowledge your donation of <strong>$%s</strong>.</p>
<p>Transaction reference: %s</p>
<p>Please keep this email as your receipt for tax purposes.</p>`,
		htmlEscape(name), d.Amount.StringFixed(2), deref(d.PaymentTransactionID))

	if err := r.mailer.Send(to, "Your donation receipt", html); err != nil {
		r.log.Error("failed to send donation receipt", "donation", d.ID, "error", err)
		return
	}
	if err := r.donations.MarkReceiptSent(ctx, d.ID); err != nil {
		r.log.Error("failed to flag receipt as sent", "donation", d.ID, "error", err)
	}
}

// TicketCompleted queues the purchaser's confirmation and returns immediately.
func (r *ReceiptService) TicketCompleted(_ context.Context, ticketID uint) {
	go r.sendTicketConfirmation(ticketID)
}

func (r *ReceiptService) sendTicketConfirmation(ticketID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	t, err := r.tickets.Ticket(ctx, ticketID)
	if err != nil || t == nil {
		r.log.Error("cannot load ticket for confirmation", "ticket", ticketID, "error", err)
		return
	}

	to := ""
	if t.User != nil {
		to = t.User.Email
	} else if t.PayPalEmail != nil {
		to = *t.PayPalEmail
	}
	if to == "" {
		r.log.Warn("completed ticket has no email on file", "ticket", t.ID)
		return
	}

	eventTitle := "the event"
	if t.Event != nil {
		eventTitle = t.Event.Title
	}
	html := fmt.Sprintf(`<h2>Your Tickets Are Confirmed</h2>
<p>Your payment of <strong>$%s</strong> for %d ticket(s) to %s is complete.</p>
<p>Ticket code: <strong>%s</strong></p>
<p>Present this code at the event entrance.</p>`,
		t.TotalAmount.StringFixed(2), t.Quantity, htmlEscape(eventTitle), t.TicketCode)

	if err := r.mailer.Send(to, "Your ticket confirmation", html); err != nil {
		r.log.Error("failed to send ticket confirmation", "ticket", t.ID, "error", err)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
