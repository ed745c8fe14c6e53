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
	"factura/internal/domain/documents/quote"
)

// QuoteRepo implements quote.Repository.
type QuoteRepo struct {
	store *Store
}

var _ quote.Repository = (*QuoteRepo)(nil)

func storedQuote(q *quote.Quote) quote.Quote {
	v := *q
	v.Lines = nil
	return v
}

// Create inserts the quote header.
func (r *QuoteRepo) Create(ctx context.Context, q *quote.Quote) error {
	return r.store.view(ctx, func(st *state) error {
		if _, ok := st.quotes[q.ID]; ok {
			return apperror.NewConflictingUniqueField("quote", "id", q.ID.String())
		}
		if _, ok := st.clients[q.ClientID]; !ok {
			return apperror.NewNotFound("client", q.ClientID.String())
		}
		st.quotes[q.ID] = storedQuote(q)
		return nil
	})
}

// GetByID retrieves a quote header.
func (r *QuoteRepo) GetByID(ctx context.Context, quoteID id.ID) (*quote.Quote, error) {
	var out *quote.Quote
	err := r.store.view(ctx, func(st *state) error {
		q, ok := st.quotes[quoteID]
		if !ok {
			return apperror.NewNotFound("quote", quoteID.String())
		}
		out = &q
		return nil
	})
	return out, err
}

// GetForUpdate retrieves a quote header inside the caller's transaction.
// Transactions are serialized, so the row is locked by construction.
func (r *QuoteRepo) GetForUpdate(ctx context.Context, quoteID id.ID) (*quote.Quote, error) {
	var out *quote.Quote
	err := r.store.requireTx(ctx, "get quote for update", func(st *state) error {
		q, ok := st.quotes[quoteID]
		if !ok {
			return apperror.NewNotFound("quote", quoteID.String())
		}
		out = &q
		return nil
	})
	return out, err
}

// Update writes the header when the version matches, then bumps it.
func (r *QuoteRepo) Update(ctx context.Context, q *quote.Quote) error {
	return r.store.view(ctx, func(st *state) error {
		current, ok := st.quotes[q.ID]
		if !ok {
			return apperror.NewNotFound("quote", q.ID.String())
		}
		if current.Version != q.Version {
			return versionConflict("quote", q.ID)
		}
		if current.IsNumbered() && current.GetNumber() != q.GetNumber() {
			return apperror.NewInternal(nil).WithDetail("reason", "quote number is immutable")
		}
		q.Version++
		q.UpdatedAt = time.Now().UTC()
		st.quotes[q.ID] = storedQuote(q)
		return nil
	})
}

// GetLines returns the lines ordered by position.
func (r *QuoteRepo) GetLines(ctx context.Context, quoteID id.ID) ([]entity.LineItem, error) {
	var out []entity.LineItem
	err := r.store.view(ctx, func(st *state) error {
		out = sortedLines(st.quoteLines[quoteID])
		return nil
	})
	return out, err
}

// SaveLines replaces the lines of a quote.
func (r *QuoteRepo) SaveLines(ctx context.Context, quoteID id.ID, lines []entity.LineItem) error {
	return r.store.view(ctx, func(st *state) error {
		if _, ok := st.quotes[quoteID]; !ok {
			return apperror.NewNotFound("quote", quoteID.String())
		}
		st.quoteLines[quoteID] = ownedLines(quoteID, lines)
		return nil
	})
}

// List returns quotes newest first.
func (r *QuoteRepo) List(ctx context.Context, filter quote.ListFilter) (domain.ListResult[*quote.Quote], error) {
	result := domain.ListResult[*quote.Quote]{Limit: filter.Limit, Offset: filter.Offset}
	search := strings.ToLower(filter.Search)

	err := r.store.view(ctx, func(st *state) error {
		items := make([]*quote.Quote, 0, len(st.quotes))
		for _, q := range st.quotes {
			if !matchIDs(filter.IDs, q.ID) {
				continue
			}
			if filter.ClientID != nil && q.ClientID != *filter.ClientID {
				continue
			}
			if filter.Status != nil && q.Status != *filter.Status {
				continue
			}
			if !matchSearch(st, search, q.Number, q.ClientID) {
				continue
			}
			found := q
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

func sortedLines(lines []entity.LineItem) []entity.LineItem {
	out := cloneLines(lines)
	if out == nil {
		out = []entity.LineItem{}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func ownedLines(documentID id.ID, lines []entity.LineItem) []entity.LineItem {
	out := cloneLines(lines)
	for i := range out {
		out[i].DocumentID = documentID
	}
	return out
}
