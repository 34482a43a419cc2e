package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seedsofhope/backend/pkg/store"
)

// Events serves the public event catalog.
type Events struct {
	store *store.EventStore
}

func NewEvents(st *store.EventStore) *Events {
	return &Events{store: st}
}

// List returns published, active events ordered by date.
func (h *Events) List(c *gin.Context) {
	events, err := h.store.Published(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to list events")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(events), "events": events})
}

// Get returns one event with its speakers.
func (h *Events) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	event, err := h.store.Event(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to load event")
		return
	}
	if event == nil {
		fail(c, http.StatusNotFound, "Event not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "event": event})
}
