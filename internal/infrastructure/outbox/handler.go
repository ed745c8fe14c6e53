package outbox

import (
	"context"

	"factura/internal/infrastructure/metrics"
	"factura/pkg/logger"
)

// LogHandler logs every event and counts deliveries. It stands in for a
// message broker until one is configured.
type LogHandler struct {
	metrics *metrics.Metrics
}

// NewLogHandler creates a LogHandler. m may be nil.
func NewLogHandler(m *metrics.Metrics) *LogHandler {
	return &LogHandler{metrics: m}
}

// Handle implements Handler.
func (h *LogHandler) Handle(ctx context.Context, msg *Message) error {
	logger.Info(ctx, "document event",
		"event_type", msg.EventType,
		"aggregate_type", msg.AggregateType,
		"aggregate_id", msg.AggregateID.String(),
		"payload", string(msg.Payload),
	)
	if h.metrics != nil {
		h.metrics.EventRelayed(msg.EventType)
	}
	return nil
}
