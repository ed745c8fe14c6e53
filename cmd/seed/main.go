// Package main provides a CLI tool for seeding the store with a demo client.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"factura/internal/app"
	"factura/internal/config"
	appctx "factura/internal/core/context"
	"factura/internal/core/numerator"
	"factura/internal/core/tx"
	"factura/internal/domain/catalogs/client"
	"factura/internal/domain/documents/quote"
	"factura/internal/domain/pricing"
	"factura/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("failed to load config", "error", err)
	}

	ctx := appctx.WithActor(context.Background(), "seed")

	backend, err := app.NewBackend(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open storage", "driver", cfg.StorageDriver, "error", err)
	}
	defer backend.Close()

	services := app.NewServices(backend)

	// SEED_LAST_NUMBERS="2025-F00042,2025-Q00017" continues a numbering
	// started in another system.
	if raw := os.Getenv("SEED_LAST_NUMBERS"); raw != "" {
		if err := seedSequences(ctx, backend.TxManager, backend.Allocator, raw); err != nil {
			log.Fatalw("failed to seed sequences", "error", err)
		}
	}

	acme, created, err := seedClient(ctx, services.Clients)
	if err != nil {
		log.Fatalw("failed to seed client", "error", err)
	}
	if !created {
		log.Infow("demo client already exists", "client_id", acme.ID)
	}

	// A fresh client also gets a draft quote to play with.
	if created && os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoQuote(ctx, services.Quotes, acme); err != nil {
			log.Fatalw("failed to seed demo quote", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedClient(ctx context.Context, clients *client.Service) (*client.Client, bool, error) {
	email := os.Getenv("SEED_CLIENT_EMAIL")
	if email == "" {
		email = "billing@acme.test"
	}
	city := "Lyon"

	return clients.Ensure(ctx, &client.Client{
		DisplayName: "ACME",
		Email:       &email,
		BillingCity: &city,
	})
}

func seedDemoQuote(ctx context.Context, quotes *quote.Service, c *client.Client) error {
	notes := "Demo quote"
	q, err := quotes.Create(ctx, quote.CreateInput{
		ClientID: c.ID,
		Notes:    &notes,
		Lines: []pricing.LineInput{
			{
				Designation: "Consulting day",
				Quantity:    decimal.NewFromInt(3),
				UnitPrice:   decimal.NewFromInt(650),
				VATRate:     decimal.NewFromInt(20),
			},
			{
				Designation: "Travel expenses",
				Quantity:    decimal.NewFromInt(1),
				UnitPrice:   decimal.RequireFromString("120.50"),
				VATRate:     decimal.NewFromInt(10),
			},
		},
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "demo quote created", "quote_id", q.ID, "grand_total", q.GrandTotal.StringFixed(2))
	return nil
}

func seedSequences(ctx context.Context, txm tx.Manager, alloc numerator.Allocator, raw string) error {
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, number := range strings.Split(raw, ",") {
			number = strings.TrimSpace(number)
			if number == "" {
				continue
			}
			kind, year, last, err := numerator.Parse(number)
			if err != nil {
				return err
			}
			if err := alloc.SetNextNumber(ctx, kind, year, last); err != nil {
				return fmt.Errorf("set %s/%d: %w", kind, year, err)
			}
			logger.Info(ctx, "sequence set", "kind", kind.String(), "year", year, "last", last)
		}
		return nil
	})
}
