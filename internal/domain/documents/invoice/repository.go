package invoice

import (
	"context"

	"factura/internal/core/entity"
	"factura/internal/core/id"
	"factura/internal/domain"
	"factura/internal/domain/lifecycle"
)

// Repository defines operations for invoice documents.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error)

	// Update writes the header with optimistic locking and bumps Version.
	Update(ctx context.Context, inv *Invoice) error

	// Delete removes the invoice and, by cascade, its lines.
	Delete(ctx context.Context, invoiceID id.ID) error

	// Line operations
	GetLines(ctx context.Context, invoiceID id.ID) ([]entity.LineItem, error)
	SaveLines(ctx context.Context, invoiceID id.ID, lines []entity.LineItem) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error)

	// Locking
	GetForUpdate(ctx context.Context, invoiceID id.ID) (*Invoice, error)
}

// ListFilter for filtering invoices.
type ListFilter struct {
	domain.ListFilter

	Status *lifecycle.InvoiceStatus
}
