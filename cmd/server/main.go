// Package main is the entry point for the factura API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ulule/limiter/v3"

	"factura/internal/app"
	"factura/internal/config"
	"factura/internal/core/idempotency"
	v1 "factura/internal/infrastructure/http/v1"
	"factura/internal/infrastructure/http/v1/middleware"
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

	log.Infow("starting factura server", "env", cfg.AppEnv, "storage", cfg.StorageDriver)

	// --- Storage ---
	backend, err := app.NewBackend(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open storage", "driver", cfg.StorageDriver, "error", err)
	}
	defer backend.Close()

	services := app.NewServices(backend)
	m := metrics.New()

	// --- Optional middleware ---
	var rateLimiter *limiter.Limiter
	if cfg.RateLimit != "" {
		rateLimiter, err = middleware.NewRateLimiter(cfg.RateLimit)
		if err != nil {
			log.Fatalw("invalid rate limit", "rate", cfg.RateLimit, "error", err)
		}
	}

	var idemStore idempotency.Store
	if cfg.IdempotencyEnabled {
		idemStore = backend.Idempotency
	}

	// --- Router ---
	router, err := v1.NewRouter(v1.RouterConfig{
		Logger:        log,
		Metrics:       m,
		Ping:          backend.Ping,
		StorageDriver: backend.Driver,
		Clients:       services.Clients,
		Quotes:        services.Quotes,
		Invoices:      services.Invoices,
		Converter:     services.Converter,
		Reports:       services.Reports,
		Idempotency:   idemStore,
		RateLimiter:   rateLimiter,
		CORSOrigins:   cfg.CORSOrigins,
		Debug:         cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatalw("failed to build router", "error", err)
	}

	// The memory driver has no separate worker process to drain its outbox.
	var wg sync.WaitGroup
	if backend.Driver == config.DriverMemory {
		relay := outbox.NewRelay(backend.Outbox, outbox.NewLogHandler(m), backend.Idempotency, m, outbox.RelayConfig{
			PollInterval: cfg.WorkerPollInterval,
			BatchSize:    cfg.WorkerBatchSize,
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = relay.Run(logger.WithLogger(ctx, log.WithComponent("outbox")))
		}()
	}

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	cancel()
	wg.Wait()

	log.Info("server stopped")
}
