package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appctx "factura/internal/core/context"
	"factura/internal/core/entity"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"

	// HeaderActor names whoever triggered the call. It is recorded in the
	// audit trail only; nothing is authorized on it.
	HeaderActor = "X-Actor"

	maxActorLen = 200
)

// Keys stored on gin.Context.
const (
	ctxKeyTraceID          = "trace_id"
	ctxKeyRequestID        = "request_id"
	ctxKeyIdempotencyKey   = "idempotency_key"
	ctxKeyIdempotencyStore = "idempotency_store"
)

// Trace middleware adds request tracing context.
// Extracts or generates trace IDs for distributed tracing.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		traceID := c.GetHeader(HeaderTraceID)
		if traceID == "" {
			traceID = uuid.New().String()
		}

		trace := &appctx.TraceContext{
			TraceID:   traceID,
			SpanID:    uuid.New().String()[:16],
			RequestID: requestID,
		}

		ctx := appctx.WithTrace(c.Request.Context(), trace)
		if actor := strings.TrimSpace(c.GetHeader(HeaderActor)); actor != "" {
			ctx = appctx.WithActor(ctx, entity.Truncate(actor, maxActorLen))
		}
		c.Request = c.Request.WithContext(ctx)

		c.Set(ctxKeyTraceID, traceID)
		c.Set(ctxKeyRequestID, requestID)

		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderTraceID, traceID)

		c.Next()
	}
}
