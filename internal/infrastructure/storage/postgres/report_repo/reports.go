// Package report_repo provides the PostgreSQL dashboard queries.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"factura/internal/domain/lifecycle"
	"factura/internal/domain/reports"
	"factura/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetDashboard computes the counters in one statement, then loads the most
// recent invoices.
func (r *ReportRepo) GetDashboard(ctx context.Context, recent int) (*reports.Dashboard, error) {
	querier := r.txm.GetQuerier(ctx)
	d := &reports.Dashboard{}

	err := querier.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM invoices),
			(SELECT COUNT(*) FROM invoices WHERE status = $1),
			(SELECT COALESCE(SUM(grand_total), 0) FROM invoices WHERE status = $1),
			(SELECT COUNT(*) FROM quotes),
			(SELECT COUNT(*) FROM clients)
	`, string(lifecycle.InvoiceSent)).Scan(
		&d.InvoiceCount,
		&d.ToCollectCount,
		&d.ToCollectAmount,
		&d.QuoteCount,
		&d.ClientCount,
	)
	if err != nil {
		return nil, postgres.MapError(fmt.Errorf("dashboard counters: %w", err))
	}
	d.ToCollectAmount = d.ToCollectAmount.Round(2)

	sql, args, err := r.builder.
		Select(
			"i.id", "i.number", "i.client_id", "c.display_name AS client_name",
			"i.status", "i.currency", "i.grand_total", "i.created_at",
		).
		From("invoices i").
		Join("clients c ON c.id = i.client_id").
		OrderBy("i.created_at DESC", "i.id DESC").
		Limit(uint64(recent)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent invoices: %w", err)
	}

	d.RecentInvoices = make([]reports.InvoiceSummary, 0, recent)
	if err := pgxscan.Select(ctx, querier, &d.RecentInvoices, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("recent invoices: %w", err))
	}
	return d, nil
}
