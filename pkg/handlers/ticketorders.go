package handlers

import (
	"html"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"github.com/seedsofhope/backend/pkg/models"
	"github.com/seedsofhope/backend/pkg/store"
)

// TicketOrders serves the pre-payment intake form for event access requests
// and the staff-facing listing endpoints.
type TicketOrders struct {
	store  *store.TicketOrderStore
	mailer adminNotifier
}

// adminNotifier is the slice of the mailer the intake form needs.
type adminNotifier interface {
	SendToAdmin(subject, html string) error
}

func NewTicketOrders(st *store.TicketOrderStore, mailer adminNotifier) *TicketOrders {
	return &TicketOrders{store: st, mailer: mailer}
}

type ticketOrderRequest struct {
	Name  string `json:"name" binding:"required,max=255"`
	Email string `json:"email" binding:"required,email"`

	Birthdate      string `json:"birthdate" binding:"required"`
	MailingAddress string `json:"mailingAddress" binding:"required,max=255"`
	MailingCity    string `json:"mailingCity" binding:"required,max=100"`
	MailingState   string `json:"mailingState" binding:"required,max=50"`
	MailingZipCode string `json:"mailingZipCode" binding:"required,max=20"`

	PhoneNumber            string  `json:"phoneNumber" binding:"required,max=20"`
	TextNumber             *string `json:"textNumber" binding:"omitempty,max=20"`
	PreferredCommunication string  `json:"preferredCommunication" binding:"omitempty,oneof=text email"`

	IsGroupOrder bool     `json:"isGroupOrder"`
	GroupMembers []string `json:"groupMembers"`

	NeedsAirportTransportation bool    `json:"needsAirportTransportation"`
	WantsCateredDinner         bool    `json:"wantsCateredDinner"`
	ProteinRequests            *string `json:"proteinRequests"`
	FoodAllergies              *string `json:"foodAllergies"`
	Notes                      *string `json:"notes"`
}

// Create validates and stores an intake form submission, then notifies the
// admin mailbox. The submission is decoupled from payment; staff follow up.
func (h *TicketOrders) Create(c *gin.Context) {
	var req ticketOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingFailed(c, err)
		return
	}

	birthdate, err := time.Parse("2006-01-02", req.Birthdate)
	if err != nil {
		fail(c, http.StatusBadRequest, "Birthdate must be in YYYY-MM-DD format")
		return
	}
	age := time.Now().Year() - birthdate.Year()
	if age < 0 || age > 150 {
		fail(c, http.StatusBadRequest, "Birthdate is out of range")
		return
	}

	if req.IsGroupOrder && len(req.GroupMembers) == 0 {
		fail(c, http.StatusBadRequest, "Group orders must list group members")
		return
	}
	if !req.IsGroupOrder && len(req.GroupMembers) > 0 {
		fail(c, http.StatusBadRequest, "Group members are only accepted on group orders")
		return
	}
	if !req.WantsCateredDinner && (req.ProteinRequests != nil || req.FoodAllergies != nil) {
		fail(c, http.StatusBadRequest, "Protein requests and food allergies only apply with the catered dinner")
		return
	}

	order := models.TicketOrder{
		Name:                       req.Name,
		Email:                      req.Email,
		Birthdate:                  birthdate,
		MailingAddress:             req.MailingAddress,
		MailingCity:                req.MailingCity,
		MailingState:               req.MailingState,
		MailingZipCode:             req.MailingZipCode,
		PhoneNumber:                req.PhoneNumber,
		TextNumber:                 req.TextNumber,
		PreferredCommunication:     req.PreferredCommunication,
		IsGroupOrder:               req.IsGroupOrder,
		NeedsAirportTransportation: req.NeedsAirportTransportation,
		WantsCateredDinner:         req.WantsCateredDinner,
		ProteinRequests:            req.ProteinRequests,
		FoodAllergies:              req.FoodAllergies,
		Notes:                      req.Notes,
	}
	if err := order.SetMembers(req.GroupMembers); err != nil {
		fail(c, http.StatusBadRequest, "Invalid group member list")
		return
	}

	if err := h.store.Create(c.Request.Context(), &order); err != nil {
		fail(c, http.StatusInternalServerError, "Failed to save ticket order")
		return
	}

	// Notification failure must not fail the submission.
	if err := h.mailer.SendToAdmin(
		"New ticket order from "+order.Name,
		"<p>A new ticket order was submitted by <strong>"+html.EscapeString(order.Name)+"</strong> ("+html.EscapeString(order.Email)+").</p>"+
			"<p>Order ID: "+cast.ToString(order.ID)+"</p>",
	); err != nil {
		slog.Warn("ticket order admin notification failed", "order", order.ID, "error", err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Ticket order submitted successfully",
		"orderId": order.ID,
	})
}

// Get returns one intake form submission.
func (h *TicketOrders) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.store.ByID(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to load ticket order")
		return
	}
	if order == nil {
		fail(c, http.StatusNotFound, "Ticket order not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order, "groupMembers": order.Members()})
}

// List returns intake form submissions, newest first, optionally filtered by
// status or email.
func (h *TicketOrders) List(c *gin.Context) {
	filter := store.ListFilter{
		Status: c.Query("status"),
		Email:  c.Query("email"),
		Limit:  cast.ToInt(c.Query("limit")),
	}

	orders, err := h.store.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to list ticket orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(orders), "orders": orders})
}
