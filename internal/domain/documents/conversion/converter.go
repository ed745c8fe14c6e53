// Package conversion turns an accepted quote into a numbered invoice.
package conversion

import (
	"context"
	"fmt"

	"factura/internal/core/apperror"
	"factura/internal/core/id"
	"factura/internal/core/tx"
	"factura/internal/domain"
	"factura/internal/domain/audit"
	"factura/internal/domain/documents"
	"factura/internal/domain/documents/invoice"
	"factura/internal/domain/documents/quote"
	"factura/internal/domain/lifecycle"
	"factura/pkg/logger"
)

// Converter creates the invoice of an accepted quote.
//
// The whole conversion is one transaction: the invoice, its lines, its
// number and the link on the quote commit together or not at all.
type Converter struct {
	quotes    quote.Repository
	invoices  *invoice.Service
	txManager tx.Manager
	opts      documents.Options
}

// NewConverter creates a new converter. invoices must share txManager so
// that its operations join the conversion transaction.
func NewConverter(
	quotes quote.Repository,
	invoices *invoice.Service,
	txManager tx.Manager,
	opts ...documents.Option,
) *Converter {
	return &Converter{
		quotes:    quotes,
		invoices:  invoices,
		txManager: txManager,
		opts:      documents.NewOptions(opts...),
	}
}

// Convert returns the invoice of an ACCEPTED quote, creating and
// finalizing it on the first call. Later calls return the same invoice.
func (c *Converter) Convert(ctx context.Context, quoteID id.ID) (inv *invoice.Invoice, err error) {
	ctx, span := documents.StartSpan(ctx, "quote.Convert", quoteID)
	defer func() { documents.EndSpan(span, err) }()

	created := false
	var number string
	err = c.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		q, err := c.quotes.GetForUpdate(ctx, quoteID)
		if err != nil {
			return domain.NormalizeGetErr(err, "quote", quoteID.String())
		}
		number = q.GetNumber()

		if q.Status != lifecycle.QuoteAccepted {
			return apperror.NewInvalidConversionState(quoteID.String(), string(q.Status))
		}

		if q.IsConverted() {
			existing, err := c.invoices.GetByID(ctx, *q.InvoiceID)
			if err != nil {
				return fmt.Errorf("load converted invoice: %w", err)
			}
			inv = existing
			return nil
		}

		lines, err := c.quotes.GetLines(ctx, quoteID)
		if err != nil {
			return fmt.Errorf("get quote lines: %w", err)
		}

		notes := documents.ConversionNotes(number)
		draft, err := c.invoices.CreateFromLines(ctx, invoice.DraftInput{
			ClientID: q.ClientID,
			Currency: q.Currency,
			Notes:    &notes,
		}, lines)
		if err != nil {
			return fmt.Errorf("create invoice from quote: %w", err)
		}

		inv, err = c.invoices.Finalize(ctx, draft.ID)
		if err != nil {
			return fmt.Errorf("finalize converted invoice: %w", err)
		}

		q.LinkInvoice(inv.ID)
		if err := c.quotes.Update(ctx, q); err != nil {
			return fmt.Errorf("link quote: %w", err)
		}
		created = true

		return c.opts.Emit(ctx,
			audit.NewEntry(ctx, audit.EntityQuote, q.ID, audit.ActionConvert, map[string]any{
				"invoiceId":     inv.ID,
				"invoiceNumber": inv.GetNumber(),
			}),
			documents.Event{
				AggregateType: documents.AggregateQuote,
				AggregateID:   q.ID,
				Type:          documents.EventQuoteConverted,
				Payload: map[string]any{
					"invoiceId":     inv.ID,
					"invoiceNumber": inv.GetNumber(),
				},
			})
	})
	if err != nil {
		return nil, err
	}

	if created {
		logger.Info(ctx, "quote converted", "quote", quoteID, "quote_number", number, "invoice_number", inv.GetNumber())
	}
	return inv, nil
}
