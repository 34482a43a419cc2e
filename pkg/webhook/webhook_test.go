package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedsofhope/backend/pkg/lifecycle"
	"github.com/seedsofhope/backend/pkg/payment"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memStore is a minimal in-memory lifecycle.Store for driving the ingress.
type memStore struct {
	nextID  uint
	records map[uint]*lifecycle.Record
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, records: make(map[uint]*lifecycle.Record)}
}

func (s *memStore) CreatePending(_ context.Context, amount decimal.Decimal, _ any) (*lifecycle.Record, error) {
	rec := &lifecycle.Record{ID: s.nextID, Amount: amount, Status: lifecycle.StatusPending, CreatedAt: time.Now()}
	s.nextID++
	s.records[rec.ID] = rec
	cp := *rec
	return &cp, nil
}

func (s *memStore) FindByID(_ context.Context, id uint) (*lifecycle.Record, error) {
	rec, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *memStore) FindByExternalOrderID(_ context.Context, orderID string) (*lifecycle.Record, error) {
	for _, rec := range s.records {
		if rec.ExternalOrderID == orderID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) FindByExternalTransactionID(_ context.Context, txnID string) (*lifecycle.Record, error) {
	for _, rec := range s.records {
		if rec.ExternalTransactionID == txnID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) Update(_ context.Context, id uint, fields lifecycle.Fields) (*lifecycle.Record, error) {
	rec := s.records[id]
	applyFields(rec, fields)
	cp := *rec
	return &cp, nil
}

func (s *memStore) Delete(_ context.Context, id uint) error {
	delete(s.records, id)
	return nil
}

func (s *memStore) Transition(_ context.Context, id uint, from, to lifecycle.Status, fields lifecycle.Fields) (bool, error) {
	rec, ok := s.records[id]
	if !ok || rec.Status != from {
		return false, nil
	}
	rec.Status = to
	applyFields(rec, fields)
	return true, nil
}

func applyFields(rec *lifecycle.Record, fields lifecycle.Fields) {
	for k, v := range fields {
		switch k {
		case lifecycle.FieldExternalOrderID:
			rec.ExternalOrderID = v.(string)
		case lifecycle.FieldExternalTransactionID:
			rec.ExternalTransactionID = v.(string)
		case lifecycle.FieldPayerEmail:
			rec.PayerEmail = v.(string)
		case lifecycle.FieldPayerID:
			rec.PayerID = v.(string)
		case lifecycle.FieldCompletedAt:
			t := v.(time.Time)
			rec.CompletedAt = &t
		}
	}
}

// seed inserts a record in the given state.
func (s *memStore) seed(status lifecycle.Status, orderID, txnID string) *lifecycle.Record {
	rec, _ := s.CreatePending(context.Background(), decimal.RequireFromString("25.00"), nil)
	stored := s.records[rec.ID]
	stored.Status = status
	stored.ExternalOrderID = orderID
	stored.ExternalTransactionID = txnID
	cp := *stored
	return &cp
}

type fakeVerifier struct{ ok bool }

func (v fakeVerifier) VerifyWebhook(context.Context, *http.Request) bool { return v.ok }

type fakeGateway struct{}

func (fakeGateway) CreateOrder(context.Context, payment.CreateOrderParams) (*payment.Order, error) {
	return nil, nil
}
func (fakeGateway) CaptureOrder(context.Context, string) (*payment.CaptureResult, error) {
	return nil, nil
}
func (fakeGateway) RefundCapture(context.Context, string, string) (*payment.Refund, error) {
	return nil, nil
}

// memJournal journals in memory with the same dedup semantics as Journal.
type memJournal struct {
	nextID    uint
	seen      map[string]bool
	processed []uint
}

func newMemJournal() *memJournal {
	return &memJournal{nextID: 1, seen: make(map[string]bool)}
}

func (j *memJournal) Record(_ context.Context, eventID, _ string, _ []byte) (uint, bool, error) {
	if j.seen[eventID] {
		return 0, true, nil
	}
	j.seen[eventID] = true
	id := j.nextID
	j.nextID++
	return id, false, nil
}

func (j *memJournal) MarkProcessed(_ context.Context, id uint, _ error) error {
	j.processed = append(j.processed, id)
	return nil
}

// countingTotals records donation-total invalidations.
type countingTotals struct {
	invalidations int
}

func (t *countingTotals) InvalidateDonationTotal(context.Context) {
	t.invalidations++
}

type fixture struct {
	ingress   *Ingress
	donations *memStore
	tickets   *memStore
	journal   *memJournal
	totals    *countingTotals
}

func newFixture(verified bool) *fixture {
	donations := newMemStore()
	tickets := newMemStore()
	journal := newMemJournal()
	totals := &countingTotals{}
	ingress := NewIngress(
		fakeVerifier{ok: verified},
		lifecycle.New(donations, fakeGateway{}, "donation"),
		lifecycle.New(tickets, fakeGateway{}, "ticket"),
		journal,
		nil,
		totals,
	)
	return &fixture{ingress: ingress, donations: donations, tickets: tickets, journal: journal, totals: totals}
}

func (f *fixture) deliver(t *testing.T, eventID, eventType string, resource map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"id":         eventID,
		"event_type": eventType,
		"resource":   resource,
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/paypal/webhook", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	f.ingress.Handle(c)
	return w
}

func captureResourceJSON(captureID, orderID string) map[string]any {
	return map[string]any{
		"id":     captureID,
		"status": "COMPLETED",
		"supplementary_data": map[string]any{
			"related_ids": map[string]any{"order_id": orderID},
		},
		"payer": map[string]any{
			"email_address": "payer@example.com",
			"payer_id":      "PAYER1",
		},
	}
}

func TestHandleRejectsInvalidSignature(t *testing.T) {
	f := newFixture(false)
	w := f.deliver(t, "WH-1", EventCaptureCompleted, captureResourceJSON("TXN1", "ORDER1"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, f.journal.seen, "unauthenticated deliveries must not be journaled")
}

func TestHandleCompletesDonation(t *testing.T) {
	f := newFixture(true)
	rec := f.donations.seed(lifecycle.StatusPending, "ORDER1", "")

	w := f.deliver(t, "WH-1", EventCaptureCompleted, captureResourceJSON("TXN1", "ORDER1"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())

	current, _ := f.donations.FindByID(context.Background(), rec.ID)
	assert.Equal(t, lifecycle.StatusCompleted, current.Status)
	assert.Equal(t, "TXN1", current.ExternalTransactionID)
	assert.Equal(t, "payer@example.com", current.PayerEmail)
}

func TestHandleFallsThroughToTickets(t *testing.T) {
	f := newFixture(true)
	rec := f.tickets.seed(lifecycle.StatusPending, "ORDER2", "")

	w := f.deliver(t, "WH-2", EventCaptureCompleted, captureResourceJSON("TXN2", "ORDER2"))
	assert.Equal(t, http.StatusOK, w.Code)

	current, _ := f.tickets.FindByID(context.Background(), rec.ID)
	assert.Equal(t, lifecycle.StatusCompleted, current.Status)
}

func TestHandleUnmatchedOrderStillAcknowledged(t *testing.T) {
	f := newFixture(true)
	w := f.deliver(t, "WH-3", EventCaptureCompleted, captureResourceJSON("TXN1", "NO-SUCH-ORDER"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleDuplicateDeliverySkipped(t *testing.T) {
	f := newFixture(true)
	rec := f.donations.seed(lifecycle.StatusPending, "ORDER1", "")

	first := f.deliver(t, "WH-1", EventCaptureCompleted, captureResourceJSON("TXN1", "ORDER1"))
	second := f.deliver(t, "WH-1", EventCaptureCompleted, captureResourceJSON("TXN1", "ORDER1"))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code, "redeliveries are acknowledged, not retried")
	assert.Len(t, f.journal.processed, 1, "duplicate must not be dispatched again")

	current, _ := f.donations.FindByID(context.Background(), rec.ID)
	assert.Equal(t, lifecycle.StatusCompleted, current.Status)
}

func TestHandleDeniedEvents(t *testing.T) {
	for i, eventType := range []string{EventCaptureDenied, EventCaptureDeclined} {
		f := newFixture(true)
		rec := f.donations.seed(lifecycle.StatusPending, "ORDER1", "")

		w := f.deliver(t, fmt.Sprintf("WH-%d", i), eventType, captureResourceJSON("TXN1", "ORDER1"))
		assert.Equal(t, http.StatusOK, w.Code)

		current, _ := f.donations.FindByID(context.Background(), rec.ID)
		assert.Equal(t, lifecycle.StatusFailed, current.Status, "event type %s", eventType)
	}
}

func TestHandleRefundEvent(t *testing.T) {
	f := newFixture(true)
	rec := f.donations.seed(lifecycle.StatusCompleted, "ORDER1", "TXN1")

	w := f.deliver(t, "WH-1", EventCaptureRefunded, map[string]any{"id": "TXN1", "status": "COMPLETED"})
	assert.Equal(t, http.StatusOK, w.Code)

	current, _ := f.donations.FindByID(context.Background(), rec.ID)
	assert.Equal(t, lifecycle.StatusRefunded, current.Status)
}

func TestHandleUnknownEventTypeAcknowledged(t *testing.T) {
	f := newFixture(true)
	w := f.deliver(t, "WH-1", "BILLING.SUBSCRIPTION.CREATED", map[string]any{"id": "X"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, f.journal.processed, 1, "unknown types are journaled and acknowledged")
}

func TestHandleDonationCompletionInvalidatesTotals(t *testing.T) {
	f := newFixture(true)
	f.donations.seed(lifecycle.StatusPending, "ORDER1", "")

	f.deliver(t, "WH-1", EventCaptureCompleted, captureResourceJSON("TXN1", "ORDER1"))
	assert.Equal(t, 1, f.totals.invalidations, "a donation completed via webhook must drop the cached total")

	// Ticket completions leave the donation total alone.
	f.tickets.seed(lifecycle.StatusPending, "ORDER2", "")
	f.deliver(t, "WH-2", EventCaptureCompleted, captureResourceJSON("TXN2", "ORDER2"))
	assert.Equal(t, 1, f.totals.invalidations)
}

func TestHandleEventsWithoutIDAreNotDeduped(t *testing.T) {
	f := newFixture(true)
	first := f.donations.seed(lifecycle.StatusPending, "ORDER1", "")
	second := f.donations.seed(lifecycle.StatusPending, "ORDER2", "")

	w := f.deliver(t, "", EventCaptureCompleted, captureResourceJSON("TXN1", "ORDER1"))
	assert.Equal(t, http.StatusOK, w.Code)
	w = f.deliver(t, "", EventCaptureCompleted, captureResourceJSON("TXN2", "ORDER2"))
	assert.Equal(t, http.StatusOK, w.Code)

	one, _ := f.donations.FindByID(context.Background(), first.ID)
	two, _ := f.donations.FindByID(context.Background(), second.ID)
	assert.Equal(t, lifecycle.StatusCompleted, one.Status)
	assert.Equal(t, lifecycle.StatusCompleted, two.Status, "a second id-less event must not be swallowed as a duplicate")
	assert.Empty(t, f.journal.seen, "id-less events carry no dedup key to journal")
}

func TestHandleOrderApprovedIsLogOnly(t *testing.T) {
	f := newFixture(true)
	rec := f.donations.seed(lifecycle.StatusPending, "ORDER1", "")

	w := f.deliver(t, "WH-1", EventOrderApproved, map[string]any{"id": "ORDER1"})
	assert.Equal(t, http.StatusOK, w.Code)

	current, _ := f.donations.FindByID(context.Background(), rec.ID)
	assert.Equal(t, lifecycle.StatusPending, current.Status, "approval does not settle the record")
}
