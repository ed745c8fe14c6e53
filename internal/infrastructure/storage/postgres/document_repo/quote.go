package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"factura/internal/core/entity"
	"factura/internal/core/id"
	"factura/internal/domain"
	"factura/internal/domain/documents/quote"
	"factura/internal/infrastructure/storage/postgres"
)

const (
	quotesTable     = "quotes"
	quoteLinesTable = "quote_lines"
)

// QuoteRepo implements quote.Repository.
type QuoteRepo struct {
	*baseDocumentRepo[*quote.Quote]
	lines lineTable
}

var _ quote.Repository = (*QuoteRepo)(nil)

// NewQuoteRepo creates a new quote repository.
func NewQuoteRepo(txm *postgres.TxManager) *QuoteRepo {
	return &QuoteRepo{
		baseDocumentRepo: newBaseDocumentRepo(
			txm, "quote", quotesTable,
			postgres.ExtractDBColumns[quote.Quote](),
			func() *quote.Quote { return &quote.Quote{} },
		),
		lines: lineTable{txm: txm, tableName: quoteLinesTable},
	}
}

// GetLines returns the quote lines ordered by position.
func (r *QuoteRepo) GetLines(ctx context.Context, quoteID id.ID) ([]entity.LineItem, error) {
	return r.lines.get(ctx, quoteID)
}

// SaveLines replaces the quote lines.
func (r *QuoteRepo) SaveLines(ctx context.Context, quoteID id.ID, lines []entity.LineItem) error {
	return r.lines.save(ctx, quoteID, lines)
}

// List returns quotes newest first.
func (r *QuoteRepo) List(ctx context.Context, filter quote.ListFilter) (domain.ListResult[*quote.Quote], error) {
	var extra []squirrel.Sqlizer
	if filter.Status != nil {
		extra = append(extra, squirrel.Eq{quotesTable + ".status": string(*filter.Status)})
	}
	return r.list(ctx, filter.ListFilter, extra...)
}
