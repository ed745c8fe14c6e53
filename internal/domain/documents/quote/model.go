// Package quote provides the Quote document and its engine.
package quote

import (
	"context"
	"time"

	"factura/internal/core/entity"
	"factura/internal/core/id"
	"factura/internal/domain/lifecycle"
	"factura/internal/domain/pricing"
)

// Quote is a priced offer sent to a client. Once accepted it can be
// converted into exactly one invoice.
type Quote struct {
	entity.Document

	Status     lifecycle.QuoteStatus `db:"status" json:"status"`
	ExpiryDate *time.Time            `db:"expiry_date" json:"expiryDate"`

	// InvoiceID links the invoice created by conversion; set at most once
	InvoiceID *id.ID `db:"invoice_id" json:"invoiceId"`

	Lines []entity.LineItem `db:"-" json:"lines"`
}

// NewQuote creates a DRAFT quote for a client.
func NewQuote(clientID id.ID, currency string, notes *string, expiry *time.Time) *Quote {
	return &Quote{
		Document:   entity.NewDocument(clientID, currency, notes),
		Status:     lifecycle.QuoteDraft,
		ExpiryDate: expiry,
		Lines:      make([]entity.LineItem, 0),
	}
}

// SetLines attaches lines to the quote and recomputes its totals.
func (q *Quote) SetLines(lines []entity.LineItem) {
	entity.AttachLines(q.ID, lines)
	q.Lines = lines
	q.ApplyTotals(pricing.SumLines(lines))
}

// Validate implements entity.Validatable.
func (q *Quote) Validate(ctx context.Context) error {
	return q.Document.Validate(ctx)
}

// IsConverted reports whether an invoice was created from the quote.
func (q *Quote) IsConverted() bool {
	return q.InvoiceID != nil && !id.IsNil(*q.InvoiceID)
}

// LinkInvoice records the invoice created from this quote.
// An existing link is never replaced.
func (q *Quote) LinkInvoice(invoiceID id.ID) {
	if q.IsConverted() {
		return
	}
	q.InvoiceID = &invoiceID
}
