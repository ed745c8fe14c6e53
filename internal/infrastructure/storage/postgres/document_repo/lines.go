package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"factura/internal/core/entity"
	"factura/internal/core/id"
	"factura/internal/infrastructure/storage/postgres"
)

var lineCols = postgres.ExtractDBColumns[entity.LineItem]()

// lineTable reads and replaces the line items of one document table.
type lineTable struct {
	txm       *postgres.TxManager
	tableName string
}

func (t lineTable) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// get returns the lines ordered by position.
func (t lineTable) get(ctx context.Context, docID id.ID) ([]entity.LineItem, error) {
	sql, args, err := t.builder().
		Select(lineCols...).
		From(t.tableName).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	lines := make([]entity.LineItem, 0)
	if err := pgxscan.Select(ctx, t.txm.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("get lines: %w", err))
	}
	return lines, nil
}

// save replaces the lines of a document (delete existing + insert new).
func (t lineTable) save(ctx context.Context, docID id.ID, lines []entity.LineItem) error {
	querier := t.txm.GetQuerier(ctx)

	if _, err := querier.Exec(ctx, "DELETE FROM "+t.tableName+" WHERE document_id = $1", docID); err != nil {
		return postgres.MapError(fmt.Errorf("delete existing lines: %w", err))
	}
	if len(lines) == 0 {
		return nil
	}

	q := t.builder().Insert(t.tableName).Columns(lineCols...)
	for _, line := range lines {
		line.DocumentID = docID
		row := postgres.StructToMap(line)
		values := make([]any, len(lineCols))
		for i, col := range lineCols {
			values[i] = row[col]
		}
		q = q.Values(values...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert lines: %w", err))
	}
	return nil
}
