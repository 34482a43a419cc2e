package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/seedsofhope/backend/pkg/lifecycle"
	"github.com/seedsofhope/backend/pkg/store"
)

// Tickets serves event ticket purchases: opening a PayPal order for the
// event's listed price, capturing it, and ticket lookups.
type Tickets struct {
	flow      paymentFlow
	store     *store.TicketStore
	events    *store.EventStore
	receipts  receiptNotifier
	returnURL string
	cancelURL string
}

func NewTickets(flow paymentFlow, st *store.TicketStore, events *store.EventStore, receipts receiptNotifier, baseURL string) *Tickets {
	return &Tickets{
		flow:      flow,
		store:     st,
		events:    events,
		receipts:  receipts,
		returnURL: baseURL + "/tickets/success",
		cancelURL: baseURL + "/tickets/cancelled",
	}
}

type purchaseTicketRequest struct {
	EventID         uint     `json:"eventId" binding:"required"`
	Quantity        int      `json:"quantity" binding:"required,min=1,max=20"`
	UserID          *uint    `json:"userId"`
	AttendeeNames   []string `json:"attendeeNames"`
	SpecialRequests *string  `json:"specialRequests"`
}

// Purchase opens a pending ticket purchase. The unit price always comes from
// the event row; client-supplied amounts are ignored.
func (h *Tickets) Purchase(c *gin.Context) {
	var req purchaseTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingFailed(c, err)
		return
	}
	if len(req.AttendeeNames) > 0 && len(req.AttendeeNames) != req.Quantity {
		fail(c, http.StatusBadRequest, "Attendee names must match the ticket quantity")
		return
	}

	ctx := c.Request.Context()
	event, err := h.events.Event(ctx, req.EventID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to load event")
		return
	}
	if event == nil || !event.IsPublished || !event.IsActive {
		fail(c, http.StatusNotFound, "Event not found or not open for ticket sales")
		return
	}
	if !event.TicketPrice.IsPositive() {
		fail(c, http.StatusBadRequest, "This event does not sell tickets")
		return
	}

	if req.UserID != nil {
		user, err := h.events.User(ctx, *req.UserID)
		if err != nil {
			fail(c, http.StatusInternalServerError, "Failed to load user")
			return
		}
		if user == nil {
			fail(c, http.StatusBadRequest, "Unknown user")
			return
		}
	}

	total := event.TicketPrice.Mul(decimal.NewFromInt(int64(req.Quantity)))

	res, err := h.flow.Initiate(ctx, lifecycle.InitiateParams{
		Amount:      total,
		Description: "Tickets for " + event.Title,
		ReturnURL:   h.returnURL,
		CancelURL:   h.cancelURL,
		Meta: &store.TicketDraft{
			UserID:          req.UserID,
			EventID:         event.ID,
			Quantity:        req.Quantity,
			UnitPrice:       event.TicketPrice,
			AttendeeNames:   req.AttendeeNames,
			SpecialRequests: req.SpecialRequests,
		},
	})
	if err != nil {
		initiateFailed(c, err, "ticket purchase")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"ticketId":    res.Record.ID,
		"orderId":     res.Record.ExternalOrderID,
		"totalAmount": total,
		"approvalUrl": res.ApprovalURL,
	})
}

// Capture finalizes a ticket purchase after PayPal approval. Idempotent like
// the donation capture.
func (h *Tickets) Capture(c *gin.Context) {
	var req captureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingFailed(c, err)
		return
	}

	rec, err := h.flow.Finalize(c.Request.Context(), req.OrderID)
	if err != nil {
		finalizeFailed(c, err, "ticket purchase")
		return
	}

	h.receipts.TicketCompleted(c.Request.Context(), rec.ID)

	ticket, err := h.store.Ticket(c.Request.Context(), rec.ID)
	if err != nil || ticket == nil {
		fail(c, http.StatusInternalServerError, "Failed to load ticket")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Ticket purchase captured successfully",
		"ticket": gin.H{
			"id":            ticket.ID,
			"ticketCode":    ticket.TicketCode,
			"quantity":      ticket.Quantity,
			"totalAmount":   ticket.TotalAmount,
			"status":        ticket.PaymentStatus,
			"transactionId": ticket.PaymentTransactionID,
		},
	})
}

// Get returns one ticket with its event preloaded.
func (h *Tickets) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ticket, err := h.store.Ticket(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to load ticket")
		return
	}
	if ticket == nil {
		fail(c, http.StatusNotFound, "Ticket not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"ticket":    ticket,
		"attendees": ticket.Attendees(),
	})
}
