package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/seedsofhope/backend/pkg/cache"
	"github.com/seedsofhope/backend/pkg/config"
	"github.com/seedsofhope/backend/pkg/database"
	"github.com/seedsofhope/backend/pkg/handlers"
	"github.com/seedsofhope/backend/pkg/lifecycle"
	"github.com/seedsofhope/backend/pkg/mailer"
	"github.com/seedsofhope/backend/pkg/payment/paypal"
	"github.com/seedsofhope/backend/pkg/server"
	"github.com/seedsofhope/backend/pkg/store"
	"github.com/seedsofhope/backend/pkg/webhook"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DSN(), cfg.Environment != "production")
	if err != nil {
		return err
	}

	gateway, err := paypal.New(paypal.Options{
		ClientID:     cfg.PayPal.ClientID,
		ClientSecret: cfg.PayPal.ClientSecret,
		Environment:  cfg.PayPal.Environment,
		WebhookID:    cfg.PayPal.WebhookID,
		BrandName:    cfg.PayPal.BrandName,
		Timeout:      cfg.GatewayTimeout,
	})
	if err != nil {
		return err
	}

	donationStore := store.NewDonationStore(db)
	ticketStore := store.NewTicketStore(db)
	eventStore := store.NewEventStore(db)
	orderStore := store.NewTicketOrderStore(db)

	donations := lifecycle.New(donationStore, gateway, "donation")
	tickets := lifecycle.New(ticketStore, gateway, "ticket")

	mail := mailer.New(mailer.Options{
		Host:       cfg.SMTP.Host,
		Port:       cfg.SMTP.Port,
		Username:   cfg.SMTP.Username,
		Password:   cfg.SMTP.Password,
		FromName:   cfg.SMTP.FromName,
		FromEmail:  cfg.SMTP.FromEmail,
		AdminEmail: cfg.SMTP.AdminEmail,
	})
	receipts := mailer.NewReceiptService(mail, donationStore, ticketStore)

	totals := cache.NewTotals(cfg.RedisAddr)
	journal := webhook.NewJournal(db)
	ingress := webhook.NewIngress(gateway, donations, tickets, journal, receipts, totals)

	baseURL := cfg.PublicBaseURL()
	engine := server.New(cfg, server.Handlers{
		Donations:    handlers.NewDonations(donations, donationStore, totals, receipts, baseURL),
		Tickets:      handlers.NewTickets(tickets, ticketStore, eventStore, receipts, baseURL),
		TicketOrders: handlers.NewTicketOrders(orderStore, mail),
		Events:       handlers.NewEvents(eventStore),
		Contact:      handlers.NewContact(mail),
		Export:       handlers.NewExport(orderStore),
		Webhook:      ingress,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
