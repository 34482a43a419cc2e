// Package server assembles the gin engine: middleware, CORS and the public
// API routes.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/seedsofhope/backend/pkg/config"
	"github.com/seedsofhope/backend/pkg/handlers"
	"github.com/seedsofhope/backend/pkg/webhook"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Donations    *handlers.Donations
	Tickets      *handlers.Tickets
	TicketOrders *handlers.TicketOrders
	Events       *handlers.Events
	Contact      *handlers.Contact
	Export       *handlers.Export
	Webhook      *webhook.Ingress
}

// New builds the gin engine with all routes mounted.
func New(cfg *config.AppConfig, h Handlers) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"message":   "Server is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := r.Group("/api")
	{
		donations := api.Group("/donations")
		{
			donations.POST("/create", h.Donations.Create)
			donations.POST("/capture", h.Donations.Capture)
			donations.GET("/total", h.Donations.Total)
			donations.GET("/:id", h.Donations.Get)
		}

		tickets := api.Group("/tickets")
		{
			tickets.POST("/purchase", h.Tickets.Purchase)
			tickets.POST("/capture", h.Tickets.Capture)
			tickets.GET("/:id", h.Tickets.Get)
		}

		orders := api.Group("/ticket-orders")
		{
			orders.POST("", h.TicketOrders.Create)
			orders.GET("", h.TicketOrders.List)
			orders.GET("/export", h.Export.TicketOrders)
			orders.GET("/:id", h.TicketOrders.Get)
		}

		events := api.Group("/events")
		{
			events.GET("", h.Events.List)
			events.GET("/:id", h.Events.Get)
		}

		api.POST("/contact", h.Contact.Submit)
		api.POST("/paypal/webhook", h.Webhook.Handle)
	}

	return r
}
