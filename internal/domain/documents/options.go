package documents

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"factura/internal/core/id"
	"factura/internal/domain/audit"
)

var tracer = otel.Tracer("factura/documents")

// Options are the collaborators shared by the document engines.
type Options struct {
	Audit  audit.Recorder
	Events EventPublisher
	Now    func() time.Time
}

// Option configures an engine.
type Option func(*Options)

// WithAudit sets the audit recorder.
func WithAudit(r audit.Recorder) Option {
	return func(o *Options) {
		if r != nil {
			o.Audit = r
		}
	}
}

// WithEvents sets the event publisher.
func WithEvents(p EventPublisher) Option {
	return func(o *Options) {
		if p != nil {
			o.Events = p
		}
	}
}

// WithClock overrides the clock used for issue dates and status timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		if now != nil {
			o.Now = now
		}
	}
}

// NewOptions applies opts over no-op defaults.
func NewOptions(opts ...Option) Options {
	o := Options{
		Audit:  audit.Nop{},
		Events: NopPublisher{},
		// local wall clock: the numbering year is the one the office sees
		Now: time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Emit records the audit entry and publishes the event of one change.
// Both run in the caller's transaction.
func (o Options) Emit(ctx context.Context, entry audit.Entry, event Event) error {
	if err := o.Audit.Record(ctx, entry); err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	if err := o.Events.Publish(ctx, event); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// StartSpan opens a span for an engine operation on a document.
func StartSpan(ctx context.Context, name string, docID id.ID) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, name)
	if !id.IsNil(docID) {
		span.SetAttributes(attribute.String("document.id", docID.String()))
	}
	return ctx, span
}

// EndSpan records err on span and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}
