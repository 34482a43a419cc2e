package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// contactMailer is the slice of the mailer the contact form needs.
type contactMailer interface {
	Enabled() bool
	ContactNotification(name, email, message string) error
	ContactConfirmation(name, email, message string) error
}

// Contact serves the public contact form. Submissions are relayed by email
// only; nothing is persisted.
type Contact struct {
	mailer contactMailer
}

func NewContact(mailer contactMailer) *Contact {
	return &Contact{mailer: mailer}
}

type contactRequest struct {
	Name    string `json:"name" binding:"required,max=255"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required,max=5000"`
}

func (h *Contact) Submit(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingFailed(c, err)
		return
	}

	if !h.mailer.Enabled() {
		fail(c, http.StatusServiceUnavailable, "Contact form is temporarily unavailable")
		return
	}

	if err := h.mailer.ContactNotification(req.Name, req.Email, req.Message); err != nil {
		slog.Error("contact notification failed", "error", err)
		fail(c, http.StatusInternalServerError, "Failed to send your message, please try again later")
		return
	}

	// The sender confirmation is best effort.
	if err := h.mailer.ContactConfirmation(req.Name, req.Email, req.Message); err != nil {
		slog.Warn("contact confirmation failed", "email", req.Email, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Your message has been sent"})
}
