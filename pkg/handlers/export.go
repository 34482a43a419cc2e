package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/seedsofhope/backend/pkg/store"
)

// Export produces staff-facing spreadsheet exports of intake submissions.
type Export struct {
	orders *store.TicketOrderStore
}

func NewExport(orders *store.TicketOrderStore) *Export {
	return &Export{orders: orders}
}

var ticketOrderHeader = []string{
	"ID", "Name", "Email", "Birthdate", "Phone", "Preferred Contact",
	"Mailing Address", "City", "State", "Zip",
	"Group Order", "Group Members", "Airport Transport", "Catered Dinner",
	"Protein Requests", "Food Allergies", "Notes", "Status", "Submitted",
}

// TicketOrders streams all intake submissions as an xlsx workbook.
func (h *Export) TicketOrders(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context(), store.ListFilter{
		Status: c.Query("status"),
		Limit:  -1,
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to load ticket orders")
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Ticket Orders"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range ticketOrderHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}

	for i, o := range orders {
		row := []any{
			o.ID, o.Name, o.Email, o.Birthdate.Format("2006-01-02"),
			o.PhoneNumber, o.PreferredCommunication,
			o.MailingAddress, o.MailingCity, o.MailingState, o.MailingZipCode,
			yesNo(o.IsGroupOrder), strings.Join(o.Members(), ", "),
			yesNo(o.NeedsAirportTransportation), yesNo(o.WantsCateredDinner),
			deref(o.ProteinRequests), deref(o.FoodAllergies), deref(o.Notes),
			o.Status, o.CreatedAt.Format(time.RFC3339),
		}
		for col, val := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheet, cell, val)
		}
	}

	filename := "ticket-orders-" + time.Now().Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		slog.Error("ticket order export failed", "error", err)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
