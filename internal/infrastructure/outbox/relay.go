package outbox

import (
	"context"
	"time"

	"factura/internal/core/idempotency"
	"factura/internal/infrastructure/metrics"
	"factura/pkg/logger"
)

// RelayConfig configures the relay loop.
type RelayConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// Relay periodically drains a Source and purges expired idempotency keys.
type Relay struct {
	source      Source
	handler     Handler
	idempotency idempotency.Store
	metrics     *metrics.Metrics
	cfg         RelayConfig
}

// NewRelay creates a relay. keys and m may be nil.
func NewRelay(source Source, handler Handler, keys idempotency.Store, m *metrics.Metrics, cfg RelayConfig) *Relay {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Relay{
		source:      source,
		handler:     handler,
		idempotency: keys,
		metrics:     m,
		cfg:         cfg,
	}
}

// Run blocks until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	logger.Info(ctx, "outbox relay started",
		"poll_interval", r.cfg.PollInterval.String(),
		"batch_size", r.cfg.BatchSize,
	)

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		r.Tick(ctx)

		select {
		case <-ctx.Done():
			logger.Info(ctx, "outbox relay stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Tick runs one relay round: deliver until a batch comes back short, then
// purge expired idempotency keys.
func (r *Relay) Tick(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := r.source.ProcessBatch(ctx, r.cfg.BatchSize, r.handler)
		if err != nil {
			logger.Error(ctx, "outbox batch failed", "error", err)
			break
		}
		if n > 0 {
			logger.Debug(ctx, "outbox batch delivered", "count", n)
		}
		if n < r.cfg.BatchSize {
			break
		}
	}

	if r.idempotency == nil || ctx.Err() != nil {
		return
	}
	purged, err := r.idempotency.CleanupExpired(ctx)
	if err != nil {
		logger.Error(ctx, "idempotency cleanup failed", "error", err)
		return
	}
	if purged > 0 {
		logger.Info(ctx, "expired idempotency keys purged", "count", purged)
	}
	if r.metrics != nil {
		r.metrics.IdempotencyPurged(purged)
	}
}
