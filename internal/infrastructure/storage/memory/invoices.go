package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"factura/internal/core/apperror"
	"factura/internal/core/entity"
	"factura/internal/core/id"
	"factura/internal/domain"
	"factura/internal/domain/documents/invoice"
)

// InvoiceRepo implements invoice.Repository.
type InvoiceRepo struct {
	store *Store
}

var _ invoice.Repository = (*InvoiceRepo)(nil)

func storedInvoice(inv *invoice.Invoice) invoice.Invoice {
	v := *inv
	v.Lines = nil
	return v
}

// Create inserts the invoice header.
func (r *InvoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	return r.store.view(ctx, func(st *state) error {
		if _, ok := st.invoices[inv.ID]; ok {
			return apperror.NewConflictingUniqueField("invoice", "id", inv.ID.String())
		}
		if _, ok := st.clients[inv.ClientID]; !ok {
			return apperror.NewNotFound("client", inv.ClientID.String())
		}
		st.invoices[inv.ID] = storedInvoice(inv)
		return nil
	})
}

// GetByID retrieves an invoice header.
func (r *InvoiceRepo) GetByID(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error) {
	var out *invoice.Invoice
	err := r.store.view(ctx, func(st *state) error {
		inv, ok := st.invoices[invoiceID]
		if !ok {
			return apperror.NewNotFound("invoice", invoiceID.String())
		}
		out = &inv
		return nil
	})
	return out, err
}

// GetForUpdate retrieves an invoice header inside the caller's transaction.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error) {
	var out *invoice.Invoice
	err := r.store.requireTx(ctx, "get invoice for update", func(st *state) error {
		inv, ok := st.invoices[invoiceID]
		if !ok {
			return apperror.NewNotFound("invoice", invoiceID.String())
		}
		out = &inv
		return nil
	})
	return out, err
}

// Update writes the header when the version matches, then bumps it.
func (r *InvoiceRepo) Update(ctx context.Context, inv *invoice.Invoice) error {
	return r.store.view(ctx, func(st *state) error {
		current, ok := st.invoices[inv.ID]
		if !ok {
			return apperror.NewNotFound("invoice", inv.ID.String())
		}
		if current.Version != inv.Version {
			return versionConflict("invoice", inv.ID)
		}
		if current.IsNumbered() && current.GetNumber() != inv.GetNumber() {
			return apperror.NewInternal(nil).WithDetail("reason", "invoice number is immutable")
		}
		if inv.IsNumbered() && numberTaken(st, inv.ID, inv.GetNumber()) {
			return apperror.NewConflictingUniqueField("invoice", "number", inv.GetNumber())
		}
		inv.Version++
		inv.UpdatedAt = time.Now().UTC()
		st.invoices[inv.ID] = storedInvoice(inv)
		return nil
	})
}

// Delete removes the invoice and its lines.
func (r *InvoiceRepo) Delete(ctx context.Context, invoiceID id.ID) error {
	return r.store.view(ctx, func(st *state) error {
		if _, ok := st.invoices[invoiceID]; !ok {
			return apperror.NewNotFound("invoice", invoiceID.String())
		}
		for _, q := range st.quotes {
			if q.InvoiceID != nil && *q.InvoiceID == invoiceID {
				return apperror.NewBusinessRule(apperror.CodeInvoiceNotDeletable, "invoice is linked to a quote").
					WithDetail("quote_id", q.ID.String())
			}
		}
		delete(st.invoices, invoiceID)
		delete(st.invoiceLines, invoiceID)
		return nil
	})
}

// GetLines returns the lines ordered by position.
func (r *InvoiceRepo) GetLines(ctx context.Context, invoiceID id.ID) ([]entity.LineItem, error) {
	var out []entity.LineItem
	err := r.store.view(ctx, func(st *state) error {
		out = sortedLines(st.invoiceLines[invoiceID])
		return nil
	})
	return out, err
}

// SaveLines replaces the lines of an invoice.
func (r *InvoiceRepo) SaveLines(ctx context.Context, invoiceID id.ID, lines []entity.LineItem) error {
	return r.store.view(ctx, func(st *state) error {
		if _, ok := st.invoices[invoiceID]; !ok {
			return apperror.NewNotFound("invoice", invoiceID.String())
		}
		st.invoiceLines[invoiceID] = ownedLines(invoiceID, lines)
		return nil
	})
}

// List returns invoices newest first.
func (r *InvoiceRepo) List(ctx context.Context, filter invoice.ListFilter) (domain.ListResult[*invoice.Invoice], error) {
	result := domain.ListResult[*invoice.Invoice]{Limit: filter.Limit, Offset: filter.Offset}
	search := strings.ToLower(filter.Search)

	err := r.store.view(ctx, func(st *state) error {
		items := make([]*invoice.Invoice, 0, len(st.invoices))
		for _, inv := range st.invoices {
			if !matchIDs(filter.IDs, inv.ID) {
				continue
			}
			if filter.ClientID != nil && inv.ClientID != *filter.ClientID {
				continue
			}
			if filter.Status != nil && inv.Status != *filter.Status {
				continue
			}
			if !matchSearch(st, search, inv.Number, inv.ClientID) {
				continue
			}
			found := inv
			items = append(items, &found)
		}

		sort.Slice(items, func(i, j int) bool {
			return newerFirst(items[i].CreatedAt, items[j].CreatedAt, items[i].ID, items[j].ID)
		})

		result.TotalCount = int64(len(items))
		result.Items = paginate(items, filter.Limit, filter.Offset)
		return nil
	})
	return result, err
}

func numberTaken(st *state, self id.ID, number string) bool {
	for otherID, other := range st.invoices {
		if otherID != self && other.GetNumber() == number {
			return true
		}
	}
	return false
}
