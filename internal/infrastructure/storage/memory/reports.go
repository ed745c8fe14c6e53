package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"factura/internal/domain/lifecycle"
	"factura/internal/domain/reports"
)

// ReportRepo implements reports.Repository on the store.
type ReportRepo struct {
	store *Store
}

var _ reports.Repository = (*ReportRepo)(nil)

// GetDashboard computes the dashboard figures.
func (r *ReportRepo) GetDashboard(ctx context.Context, recent int) (*reports.Dashboard, error) {
	d := &reports.Dashboard{ToCollectAmount: decimal.Zero}

	err := r.store.view(ctx, func(st *state) error {
		d.InvoiceCount = int64(len(st.invoices))
		d.QuoteCount = int64(len(st.quotes))
		d.ClientCount = int64(len(st.clients))

		rows := make([]reports.InvoiceSummary, 0, len(st.invoices))
		for _, inv := range st.invoices {
			if inv.Status == lifecycle.InvoiceSent {
				d.ToCollectCount++
				d.ToCollectAmount = d.ToCollectAmount.Add(inv.GrandTotal)
			}
			rows = append(rows, reports.InvoiceSummary{
				ID:         inv.ID,
				Number:     inv.Number,
				ClientID:   inv.ClientID,
				ClientName: st.clients[inv.ClientID].DisplayName,
				Status:     inv.Status,
				Currency:   inv.Currency,
				GrandTotal: inv.GrandTotal,
				CreatedAt:  inv.CreatedAt,
			})
		}

		sort.Slice(rows, func(i, j int) bool {
			return newerFirst(rows[i].CreatedAt, rows[j].CreatedAt, rows[i].ID, rows[j].ID)
		})
		d.RecentInvoices = paginate(rows, recent, 0)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}
