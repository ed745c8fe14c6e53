// Package catalog_repo provides the PostgreSQL client repository.
package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"factura/internal/core/apperror"
	"factura/internal/core/id"
	"factura/internal/domain"
	"factura/internal/domain/catalogs/client"
	"factura/internal/infrastructure/storage/postgres"
)

const clientsTable = "clients"

// ClientRepo implements client.Repository.
type ClientRepo struct {
	txm        *postgres.TxManager
	selectCols []string
}

var _ client.Repository = (*ClientRepo)(nil)

// NewClientRepo creates a new client repository.
func NewClientRepo(txm *postgres.TxManager) *ClientRepo {
	return &ClientRepo{
		txm:        txm,
		selectCols: postgres.ExtractDBColumns[client.Client](),
	}
}

// Builder returns a new squirrel builder.
func (r *ClientRepo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ClientRepo) baseSelect() squirrel.SelectBuilder {
	return r.Builder().Select(r.selectCols...).From(clientsTable)
}

// Create inserts a client. A taken email surfaces as ConflictingUniqueField.
func (r *ClientRepo) Create(ctx context.Context, c *client.Client) error {
	sql, args, err := r.Builder().
		Insert(clientsTable).
		SetMap(postgres.StructToMap(c)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert client: %w", err))
	}
	return nil
}

// GetByID retrieves a client.
func (r *ClientRepo) GetByID(ctx context.Context, clientID id.ID) (*client.Client, error) {
	c, err := r.findOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": clientID}))
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("client", clientID.String())
	}
	return c, err
}

// FindByEmail retrieves the client using an address.
func (r *ClientRepo) FindByEmail(ctx context.Context, email string) (*client.Client, error) {
	c, err := r.findOne(ctx, r.baseSelect().Where(squirrel.Eq{"email": email}).Limit(1))
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("client", email)
	}
	return c, err
}

func (r *ClientRepo) findOne(ctx context.Context, q squirrel.SelectBuilder) (*client.Client, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	c := &client.Client{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("client", nil)
		}
		return nil, postgres.MapError(fmt.Errorf("find client: %w", err))
	}
	return c, nil
}

// Exists checks if a client exists.
func (r *ClientRepo) Exists(ctx context.Context, clientID id.ID) (bool, error) {
	sql, args, err := r.Builder().
		Select("1").
		From(clientsTable).
		Where(squirrel.Eq{"id": clientID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, postgres.MapError(fmt.Errorf("exists: %w", err))
	}
	return true, nil
}

// List returns clients newest first. Search matches name and email.
func (r *ClientRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*client.Client], error) {
	filter.Normalize()
	result := domain.ListResult[*client.Client]{
		Items:  make([]*client.Client, 0),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	where := squirrel.And{}
	if len(filter.IDs) > 0 {
		where = append(where, squirrel.Eq{"id": filter.IDs})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"display_name": pattern},
			squirrel.ILike{"email": pattern},
		})
	}

	querier := r.txm.GetQuerier(ctx)

	countSQL, countArgs, err := r.Builder().Select("COUNT(*)").From(clientsTable).Where(where).ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, postgres.MapError(fmt.Errorf("count clients: %w", err))
	}

	sql, args, err := r.baseSelect().
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, postgres.MapError(fmt.Errorf("list clients: %w", err))
	}
	return result, nil
}
