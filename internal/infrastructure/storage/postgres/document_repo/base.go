// Package document_repo provides PostgreSQL implementations of the quote and
// invoice repositories.
package document_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"factura/internal/core/apperror"
	"factura/internal/core/id"
	"factura/internal/domain"
	"factura/internal/infrastructure/storage/postgres"
)

// document is implemented by *quote.Quote and *invoice.Invoice.
type document interface {
	GetID() id.ID
	GetVersion() int
	SetVersion(v int)
	SetUpdatedAt(t time.Time)
	GetNumber() string
	IsNumbered() bool
}

// Columns never written by Update.
var immutableCols = map[string]struct{}{
	"id":         {},
	"client_id":  {},
	"created_at": {},
	"version":    {},
	"updated_at": {},
}

// baseDocumentRepo provides the header operations shared by document tables.
type baseDocumentRepo[T document] struct {
	txm        *postgres.TxManager
	entityName string
	tableName  string
	selectCols []string
	newFn      func() T
}

func newBaseDocumentRepo[T document](
	txm *postgres.TxManager,
	entityName, tableName string,
	selectCols []string,
	newFn func() T,
) *baseDocumentRepo[T] {
	return &baseDocumentRepo[T]{
		txm:        txm,
		entityName: entityName,
		tableName:  tableName,
		selectCols: selectCols,
		newFn:      newFn,
	}
}

// Builder returns a new squirrel builder.
func (r *baseDocumentRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *baseDocumentRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

func (r *baseDocumentRepo[T]) qualifiedCols() []string {
	cols := make([]string, len(r.selectCols))
	for i, c := range r.selectCols {
		cols[i] = r.tableName + "." + c
	}
	return cols
}

// Create inserts a new document header.
func (r *baseDocumentRepo[T]) Create(ctx context.Context, doc T) error {
	data := postgres.StructToMap(doc)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in %s", r.entityName)
	}

	values := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			values[col] = val
		}
	}

	sql, args, err := r.Builder().
		Insert(r.tableName).
		SetMap(values).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert %s: %w", r.tableName, err))
	}
	return nil
}

// Update writes the header when the stored version matches and bumps it.
// A number already stored is never overwritten.
func (r *baseDocumentRepo[T]) Update(ctx context.Context, doc T) error {
	data := postgres.StructToMap(doc)
	version := doc.GetVersion()

	values := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if _, skip := immutableCols[col]; skip {
			continue
		}
		if val, ok := data[col]; ok {
			values[col] = val
		}
	}

	q := r.Builder().
		Update(r.tableName).
		SetMap(values).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": doc.GetID()}).
		Where(squirrel.Eq{"version": version})

	if doc.IsNumbered() {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"number": nil},
			squirrel.Eq{"number": doc.GetNumber()},
		})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update %s: %w", r.tableName, err))
	}

	if result.RowsAffected() == 0 {
		exists, err := r.exists(ctx, doc.GetID())
		if err != nil {
			return err
		}
		if !exists {
			return apperror.NewNotFound(r.entityName, doc.GetID().String())
		}
		return apperror.NewPersistenceConflict(r.entityName, doc.GetID().String()).
			WithDetail("version", version)
	}

	doc.SetVersion(version + 1)
	doc.SetUpdatedAt(time.Now().UTC())
	return nil
}

func (r *baseDocumentRepo[T]) exists(ctx context.Context, docID id.ID) (bool, error) {
	var found bool
	err := r.querier(ctx).QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM "+r.tableName+" WHERE id = $1)", docID,
	).Scan(&found)
	if err != nil {
		return false, postgres.MapError(fmt.Errorf("check %s exists: %w", r.entityName, err))
	}
	return found, nil
}

// Delete removes a header. Lines go with it through ON DELETE CASCADE.
func (r *baseDocumentRepo[T]) Delete(ctx context.Context, docID id.ID) error {
	sql, args, err := r.Builder().
		Delete(r.tableName).
		Where(squirrel.Eq{"id": docID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("delete %s: %w", r.tableName, err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, docID.String())
	}
	return nil
}

func (r *baseDocumentRepo[T]) get(ctx context.Context, docID id.ID, forUpdate bool) (T, error) {
	doc := r.newFn()
	q := r.Builder().
		Select(r.selectCols...).
		From(r.tableName).
		Where(squirrel.Eq{"id": docID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return doc, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return doc, apperror.NewNotFound(r.entityName, docID.String())
		}
		return doc, postgres.MapError(fmt.Errorf("get %s: %w", r.entityName, err))
	}
	return doc, nil
}

// GetByID retrieves a document header.
func (r *baseDocumentRepo[T]) GetByID(ctx context.Context, docID id.ID) (T, error) {
	return r.get(ctx, docID, false)
}

// GetForUpdate retrieves a document header and locks its row until the
// caller's transaction ends.
func (r *baseDocumentRepo[T]) GetForUpdate(ctx context.Context, docID id.ID) (T, error) {
	if !r.txm.InTx(ctx) {
		return r.newFn(), fmt.Errorf("get %s for update: transaction required", r.entityName)
	}
	return r.get(ctx, docID, true)
}

// list applies the shared filter plus extra conditions, newest first.
func (r *baseDocumentRepo[T]) list(ctx context.Context, filter domain.ListFilter, extra ...squirrel.Sqlizer) (domain.ListResult[T], error) {
	filter.Normalize()
	result := domain.ListResult[T]{
		Items:  make([]T, 0),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	where := squirrel.And{}
	if len(filter.IDs) > 0 {
		where = append(where, squirrel.Eq{r.tableName + ".id": filter.IDs})
	}
	if filter.ClientID != nil {
		where = append(where, squirrel.Eq{r.tableName + ".client_id": *filter.ClientID})
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{r.tableName + ".number": pattern},
			squirrel.ILike{"clients.display_name": pattern},
		})
	}
	where = append(where, extra...)

	countSQL, countArgs, err := r.Builder().
		Select("COUNT(*)").
		From(r.tableName).
		Join("clients ON clients.id = " + r.tableName + ".client_id").
		Where(where).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, postgres.MapError(fmt.Errorf("count %s: %w", r.tableName, err))
	}

	sql, args, err := r.Builder().
		Select(r.qualifiedCols()...).
		From(r.tableName).
		Join("clients ON clients.id = "+r.tableName+".client_id").
		Where(where).
		OrderBy(r.tableName+".created_at DESC", r.tableName+".id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, postgres.MapError(fmt.Errorf("list %s: %w", r.tableName, err))
	}
	return result, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
