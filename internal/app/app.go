// Package app assembles the storage driver and the engines shared by the
// server, worker and seed binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"factura/internal/config"
	"factura/internal/core/idempotency"
	corenumerator "factura/internal/core/numerator"
	"factura/internal/core/tx"
	"factura/internal/domain/audit"
	"factura/internal/domain/catalogs/client"
	"factura/internal/domain/documents"
	"factura/internal/domain/documents/conversion"
	"factura/internal/domain/documents/invoice"
	"factura/internal/domain/documents/quote"
	"factura/internal/domain/reports"
	"factura/internal/infrastructure/numerator"
	"factura/internal/infrastructure/outbox"
	"factura/internal/infrastructure/storage/memory"
	"factura/internal/infrastructure/storage/postgres"
	"factura/internal/infrastructure/storage/postgres/catalog_repo"
	"factura/internal/infrastructure/storage/postgres/document_repo"
	"factura/internal/infrastructure/storage/postgres/report_repo"
	"factura/pkg/logger"
)

// Backend is one storage driver with every repository the engines need.
// All members share the same transaction manager.
type Backend struct {
	Driver string

	TxManager   tx.Manager
	Clients     client.Repository
	Quotes      quote.Repository
	Invoices    invoice.Repository
	Allocator   corenumerator.Allocator
	Audit       audit.Recorder
	Events      documents.EventPublisher
	Outbox      outbox.Source
	Reports     reports.Repository
	Idempotency idempotency.Store

	Ping  func(ctx context.Context) error
	Close func()
}

// NewBackend opens the driver selected by cfg.StorageDriver.
func NewBackend(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return NewMemoryBackend(cfg.IdempotencyTTL), nil
	case config.DriverPostgres:
		return NewPostgresBackend(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// NewMemoryBackend returns a process-local backend. State is lost on exit.
func NewMemoryBackend(idempotencyTTL time.Duration) *Backend {
	store := memory.NewStore()
	return &Backend{
		Driver:      config.DriverMemory,
		TxManager:   store,
		Clients:     store.Clients(),
		Quotes:      store.Quotes(),
		Invoices:    store.Invoices(),
		Allocator:   store.Sequences(),
		Audit:       store.Audit(),
		Events:      store.Outbox(),
		Outbox:      store.Outbox(),
		Reports:     store.Reports(),
		Idempotency: store.Idempotency(idempotencyTTL),
		Ping:        func(context.Context) error { return nil },
		Close:       func() {},
	}
}

// NewPostgresBackend connects to PostgreSQL, optionally applying migrations
// first.
func NewPostgresBackend(ctx context.Context, cfg *config.Config) (*Backend, error) {
	if cfg.MigrateOnStart {
		if err := postgres.Migrate(ctx, cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info(ctx, "database migrations applied")
	}

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	txm := postgres.NewTxManager(pool, cfg.TxStatementTimeout)

	auditService, err := postgres.NewAuditService(txm)
	if err != nil {
		pool.Close()
		return nil, err
	}

	allocator := numerator.New(func(ctx context.Context) numerator.Querier {
		// An explicit nil: a typed nil would look like an open transaction.
		if t := txm.GetTx(ctx); t != nil {
			return t.Tx
		}
		return nil
	})

	return &Backend{
		Driver:      config.DriverPostgres,
		TxManager:   txm,
		Clients:     catalog_repo.NewClientRepo(txm),
		Quotes:      document_repo.NewQuoteRepo(txm),
		Invoices:    document_repo.NewInvoiceRepo(txm),
		Allocator:   allocator,
		Audit:       auditService,
		Events:      postgres.NewOutboxPublisher(txm),
		Outbox:      postgres.NewOutboxRelay(txm),
		Reports:     report_repo.NewReportRepo(txm),
		Idempotency: postgres.NewIdempotencyStore(txm, cfg.IdempotencyTTL),
		Ping:        pool.Ping,
		Close:       pool.Close,
	}, nil
}

// Services are the engines built on a backend.
type Services struct {
	Clients   *client.Service
	Quotes    *quote.Service
	Invoices  *invoice.Service
	Converter *conversion.Converter
	Reports   *reports.Service
}

// NewServices wires the engines to b. Every document operation records
// its audit entry and outbox event in its own transaction.
func NewServices(b *Backend, opts ...documents.Option) *Services {
	opts = append([]documents.Option{
		documents.WithAudit(b.Audit),
		documents.WithEvents(b.Events),
	}, opts...)

	invoices := invoice.NewService(b.Invoices, b.Clients, b.Allocator, b.TxManager, opts...)
	return &Services{
		Clients:   client.NewService(b.Clients, b.TxManager, b.Audit),
		Quotes:    quote.NewService(b.Quotes, b.Clients, b.Allocator, b.TxManager, opts...),
		Invoices:  invoices,
		Converter: conversion.NewConverter(b.Quotes, invoices, b.TxManager, opts...),
		Reports:   reports.NewService(b.Reports),
	}
}
