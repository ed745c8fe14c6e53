package quote

import (
	"context"

	"factura/internal/core/entity"
	"factura/internal/core/id"
	"factura/internal/domain"
	"factura/internal/domain/lifecycle"
)

// Repository defines operations for quote documents.
type Repository interface {
	Create(ctx context.Context, q *Quote) error
	GetByID(ctx context.Context, quoteID id.ID) (*Quote, error)

	// Update writes the header with optimistic locking and bumps Version.
	Update(ctx context.Context, q *Quote) error

	// Line operations
	GetLines(ctx context.Context, quoteID id.ID) ([]entity.LineItem, error)
	SaveLines(ctx context.Context, quoteID id.ID, lines []entity.LineItem) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Quote], error)

	// Locking
	GetForUpdate(ctx context.Context, quoteID id.ID) (*Quote, error)
}

// ListFilter for filtering quotes.
type ListFilter struct {
	domain.ListFilter

	Status *lifecycle.QuoteStatus
}
