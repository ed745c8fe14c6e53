// Package main is the entry point for the factura background worker.
// It relays outbox events and purges expired idempotency keys.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"factura/internal/app"
	"factura/internal/config"
	"factura/internal/infrastructure/metrics"
	"factura/internal/infrastructure/outbox"
	"factura/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.StorageDriver != config.DriverPostgres {
		log.Fatalw("worker requires the postgres storage driver", "driver", cfg.StorageDriver)
	}

	log.Info("starting factura worker")

	backend, err := app.NewPostgresBackend(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open storage", "error", err)
	}
	defer backend.Close()

	m := metrics.New()
	relay := outbox.NewRelay(backend.Outbox, outbox.NewLogHandler(m), backend.Idempotency, m, outbox.RelayConfig{
		PollInterval: cfg.WorkerPollInterval,
		BatchSize:    cfg.WorkerBatchSize,
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = relay.Run(logger.WithLogger(ctx, log.WithComponent("worker")))
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}
