package memory

import (
	"context"
	"sort"
	"strings"

	"factura/internal/core/apperror"
	"factura/internal/core/id"
	"factura/internal/domain"
	"factura/internal/domain/catalogs/client"
)

// ClientRepo implements client.Repository.
type ClientRepo struct {
	store *Store
}

var _ client.Repository = (*ClientRepo)(nil)

// Create inserts a client. The email is unique like the SQL index.
func (r *ClientRepo) Create(ctx context.Context, c *client.Client) error {
	return r.store.view(ctx, func(st *state) error {
		if _, ok := st.clients[c.ID]; ok {
			return apperror.NewConflictingUniqueField("client", "id", c.ID.String())
		}
		if c.Email != nil {
			for _, other := range st.clients {
				if other.Email != nil && strings.EqualFold(*other.Email, *c.Email) {
					return apperror.NewConflictingUniqueField("client", "email", *c.Email)
				}
			}
		}
		st.clients[c.ID] = *c
		return nil
	})
}

// GetByID retrieves a client.
func (r *ClientRepo) GetByID(ctx context.Context, clientID id.ID) (*client.Client, error) {
	var out *client.Client
	err := r.store.view(ctx, func(st *state) error {
		c, ok := st.clients[clientID]
		if !ok {
			return apperror.NewNotFound("client", clientID.String())
		}
		out = &c
		return nil
	})
	return out, err
}

// FindByEmail retrieves the client using an email address.
func (r *ClientRepo) FindByEmail(ctx context.Context, email string) (*client.Client, error) {
	var out *client.Client
	err := r.store.view(ctx, func(st *state) error {
		for _, c := range st.clients {
			if c.Email != nil && strings.EqualFold(*c.Email, email) {
				found := c
				out = &found
				return nil
			}
		}
		return apperror.NewNotFound("client", email)
	})
	return out, err
}

// Exists reports whether the client id resolves.
func (r *ClientRepo) Exists(ctx context.Context, clientID id.ID) (bool, error) {
	var ok bool
	err := r.store.view(ctx, func(st *state) error {
		_, ok = st.clients[clientID]
		return nil
	})
	return ok, err
}

// List returns clients newest first.
func (r *ClientRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*client.Client], error) {
	result := domain.ListResult[*client.Client]{Limit: filter.Limit, Offset: filter.Offset}
	search := strings.ToLower(filter.Search)

	err := r.store.view(ctx, func(st *state) error {
		items := make([]*client.Client, 0, len(st.clients))
		for _, c := range st.clients {
			if !matchIDs(filter.IDs, c.ID) {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(c.DisplayName), search) &&
				(c.Email == nil || !strings.Contains(*c.Email, search)) {
				continue
			}
			found := c
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
