package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// countingMailer records admin notifications without sending anything.
type countingMailer struct {
	sent int
}

func (m *countingMailer) SendToAdmin(string, string) error {
	m.sent++
	return nil
}

func validTicketOrder() gin.H {
	return gin.H{
		"name":           "Jordan Fields",
		"email":          "jordan@example.com",
		"birthdate":      "1990-04-12",
		"mailingAddress": "12 Orchard Lane",
		"mailingCity":    "Springfield",
		"mailingState":   "IL",
		"mailingZipCode": "62701",
		"phoneNumber":    "555-0100",
	}
}

func TestTicketOrderValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(gin.H)
	}{
		{"missing name", func(b gin.H) { delete(b, "name") }},
		{"missing email", func(b gin.H) { delete(b, "email") }},
		{"bad email", func(b gin.H) { b["email"] = "nope" }},
		{"missing birthdate", func(b gin.H) { delete(b, "birthdate") }},
		{"bad birthdate format", func(b gin.H) { b["birthdate"] = "04/12/1990" }},
		{"birthdate in the future", func(b gin.H) { b["birthdate"] = "2999-01-01" }},
		{"bad preferred communication", func(b gin.H) { b["preferredCommunication"] = "fax" }},
		{"group order without members", func(b gin.H) { b["isGroupOrder"] = true }},
		{"members without group order", func(b gin.H) { b["groupMembers"] = []string{"Sam"} }},
		{"protein request without dinner", func(b gin.H) { b["proteinRequests"] = "chicken" }},
		{"allergies without dinner", func(b gin.H) { b["foodAllergies"] = "peanuts" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validTicketOrder()
			tt.mutate(body)

			mail := &countingMailer{}
			// Store stays nil: validation must reject before persistence.
			h := NewTicketOrders(nil, mail)
			w := postJSON(t, h.Create, "/api/ticket-orders", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Zero(t, mail.sent)
		})
	}
}

func TestTicketPurchaseAttendeeCountMismatch(t *testing.T) {
	flow := &fakeFlow{}
	h := NewTickets(flow, nil, nil, fakeReceipts{}, "https://seedsofhope.test")

	w := postJSON(t, h.Purchase, "/api/tickets", gin.H{
		"eventId":       1,
		"quantity":      3,
		"attendeeNames": []string{"Only One"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, flow.lastInitiate)
}

func TestTicketPurchaseQuantityBounds(t *testing.T) {
	flow := &fakeFlow{}
	h := NewTickets(flow, nil, nil, fakeReceipts{}, "https://seedsofhope.test")

	for _, quantity := range []int{0, -1, 21} {
		w := postJSON(t, h.Purchase, "/api/tickets", gin.H{
			"eventId":  1,
			"quantity": quantity,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "quantity %d", quantity)
	}
}

func TestContactSubmit(t *testing.T) {
	mail := &recordingContactMailer{enabled: true}
	h := NewContact(mail)

	w := postJSON(t, h.Submit, "/api/contact", gin.H{
		"name":    "Jordan Fields",
		"email":   "jordan@example.com",
		"message": "How can I volunteer?",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, mail.notifications)
	assert.Equal(t, 1, mail.confirmations)
}

func TestContactSubmitValidation(t *testing.T) {
	mail := &recordingContactMailer{enabled: true}
	h := NewContact(mail)

	w := postJSON(t, h.Submit, "/api/contact", gin.H{"name": "Jordan Fields"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, mail.notifications)
}

func TestContactSubmitUnavailableWithoutMailer(t *testing.T) {
	h := NewContact(&recordingContactMailer{enabled: false})

	w := postJSON(t, h.Submit, "/api/contact", gin.H{
		"name":    "Jordan Fields",
		"email":   "jordan@example.com",
		"message": "Hello",
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

type recordingContactMailer struct {
	enabled       bool
	notifications int
	confirmations int
}

func (m *recordingContactMailer) Enabled() bool { return m.enabled }

func (m *recordingContactMailer) ContactNotification(string, string, string) error {
	m.notifications++
	return nil
}

func (m *recordingContactMailer) ContactConfirmation(string, string, string) error {
	m.confirmations++
	return nil
}
