package document_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"factura/internal/core/apperror"
	"factura/internal/core/entity"
	"factura/internal/core/id"
	"factura/internal/domain"
	"factura/internal/domain/documents/invoice"
	"factura/internal/infrastructure/storage/postgres"
)

const (
	invoicesTable     = "invoices"
	invoiceLinesTable = "invoice_lines"
)

// InvoiceRepo implements invoice.Repository.
type InvoiceRepo struct {
	*baseDocumentRepo[*invoice.Invoice]
	lines lineTable
}

var _ invoice.Repository = (*InvoiceRepo)(nil)

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txm *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		baseDocumentRepo: newBaseDocumentRepo(
			txm, "invoice", invoicesTable,
			postgres.ExtractDBColumns[invoice.Invoice](),
			func() *invoice.Invoice { return &invoice.Invoice{} },
		),
		lines: lineTable{txm: txm, tableName: invoiceLinesTable},
	}
}

// GetLines returns the invoice lines ordered by position.
func (r *InvoiceRepo) GetLines(ctx context.Context, invoiceID id.ID) ([]entity.LineItem, error) {
	return r.lines.get(ctx, invoiceID)
}

// SaveLines replaces the invoice lines.
func (r *InvoiceRepo) SaveLines(ctx context.Context, invoiceID id.ID, lines []entity.LineItem) error {
	return r.lines.save(ctx, invoiceID, lines)
}

// Delete removes an invoice no quote points at.
func (r *InvoiceRepo) Delete(ctx context.Context, invoiceID id.ID) error {
	var quoteID id.ID
	err := r.querier(ctx).QueryRow(ctx,
		"SELECT id FROM "+quotesTable+" WHERE invoice_id = $1 LIMIT 1", invoiceID,
	).Scan(&quoteID)
	switch {
	case err == nil:
		return apperror.NewBusinessRule(apperror.CodeInvoiceNotDeletable, "invoice is linked to a quote").
			WithDetail("quote_id", quoteID.String())
	case !errors.Is(err, pgx.ErrNoRows):
		return postgres.MapError(fmt.Errorf("check quote link: %w", err))
	}

	return r.baseDocumentRepo.Delete(ctx, invoiceID)
}

// List returns invoices newest first.
func (r *InvoiceRepo) List(ctx context.Context, filter invoice.ListFilter) (domain.ListResult[*invoice.Invoice], error) {
	var extra []squirrel.Sqlizer
	if filter.Status != nil {
		extra = append(extra, squirrel.Eq{invoicesTable + ".status": string(*filter.Status)})
	}
	return r.list(ctx, filter.ListFilter, extra...)
}
