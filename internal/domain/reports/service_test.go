package reports_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factura/internal/domain/catalogs/client"
	"factura/internal/domain/documents/invoice"
	"factura/internal/domain/lifecycle"
	"factura/internal/domain/pricing"
	"factura/internal/domain/reports"
	"factura/internal/infrastructure/storage/memory"
)

func TestGetDashboard(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	c := client.NewClient("ACME")
	require.NoError(t, store.Clients().Create(ctx, c))

	invoices := invoice.NewService(store.Invoices(), store.Clients(), store.Sequences(), store)
	line := []pricing.LineInput{{Designation: "Support", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100), VATRate: decimal.NewFromInt(20)}}

	var last *invoice.Invoice
	for i := 0; i < 7; i++ {
		inv, err := invoices.Create(ctx, invoice.CreateInput{ClientID: c.ID, Lines: line})
		require.NoError(t, err)
		last = inv
		if i < 2 {
			_, err = invoices.SetStatus(ctx, inv.ID, lifecycle.InvoiceSent, nil)
			require.NoError(t, err)
		}
	}

	d, err := reports.NewService(store.Reports()).GetDashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(7), d.InvoiceCount)
	assert.Equal(t, int64(2), d.ToCollectCount)
	assert.Equal(t, "240.00", d.ToCollectAmount.StringFixed(2))
	assert.Equal(t, int64(1), d.ClientCount)
	assert.Zero(t, d.QuoteCount)
	require.Len(t, d.RecentInvoices, reports.RecentInvoicesLimit)
	assert.Equal(t, last.ID, d.RecentInvoices[0].ID)
	assert.Equal(t, "ACME", d.RecentInvoices[0].ClientName)
}
