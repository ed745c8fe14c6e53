// Package documents holds what quotes and invoices share beyond the entity
// header: domain events and the client lookup used on creation.
package documents

import (
	"context"

	"factura/internal/core/id"
)

// Event types emitted by document operations.
const (
	EventQuoteCreated         = "quote.created"
	EventQuoteFinalized       = "quote.finalized"
	EventQuoteStatusChanged   = "quote.status_changed"
	EventQuoteConverted       = "quote.converted"
	EventInvoiceCreated       = "invoice.created"
	EventInvoiceFinalized     = "invoice.finalized"
	EventInvoiceStatusChanged = "invoice.status_changed"
	EventInvoiceDeleted       = "invoice.deleted"
)

// Aggregate names carried by events.
const (
	AggregateQuote   = "Quote"
	AggregateInvoice = "Invoice"
)

// Event is a state change other systems may react to.
type Event struct {
	AggregateType string
	AggregateID   id.ID
	Type          string
	Payload       map[string]any
}

// EventPublisher records events in the transaction carried by ctx.
// Events of a rolled back operation are never delivered.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// ClientDirectory answers whether a client id resolves.
type ClientDirectory interface {
	Exists(ctx context.Context, clientID id.ID) (bool, error)
}
