package invoice_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factura/internal/core/apperror"
	"factura/internal/core/id"
	"factura/internal/core/numerator"
	"factura/internal/domain/catalogs/client"
	"factura/internal/domain/documents"
	"factura/internal/domain/documents/invoice"
	"factura/internal/domain/lifecycle"
	"factura/internal/domain/pricing"
	"factura/internal/infrastructure/storage/memory"
)

type fixture struct {
	store  *memory.Store
	svc    *invoice.Service
	client *client.Client
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()

	c := client.NewClient("Globex")
	require.NoError(t, store.Clients().Create(context.Background(), c))

	f := &fixture{store: store, client: c, now: time.Date(2025, 1, 31, 8, 0, 0, 0, time.UTC)}
	f.svc = invoice.NewService(store.Invoices(), store.Clients(), store.Sequences(), store,
		documents.WithAudit(store.Audit()),
		documents.WithEvents(store.Outbox()),
		documents.WithClock(func() time.Time { return f.now }),
	)
	return f
}

func (f *fixture) create(t *testing.T) *invoice.Invoice {
	t.Helper()
	inv, err := f.svc.Create(context.Background(), invoice.CreateInput{
		ClientID: f.client.ID,
		Lines: []pricing.LineInput{
			{Designation: "Hosting", Quantity: decimal.NewFromInt(12), UnitPrice: decimal.RequireFromString("9.99"), VATRate: decimal.NewFromInt(20)},
			{Designation: "Setup", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("49.50"), VATRate: decimal.RequireFromString("5.5")},
		},
	})
	require.NoError(t, err)
	return inv
}

func TestCreate_TotalsArePerLineSums(t *testing.T) {
	f := newFixture(t)
	inv := f.create(t)

	// 119.88 + 23.98 = 143.86 ; 49.50 + 2.72 = 52.22
	assert.Equal(t, "169.38", inv.SubTotal.StringFixed(2))
	assert.Equal(t, "26.70", inv.TaxTotal.StringFixed(2))
	assert.Equal(t, "196.08", inv.GrandTotal.StringFixed(2))
	assert.True(t, inv.SubTotal.Add(inv.TaxTotal).Equal(inv.GrandTotal))
	assert.Equal(t, lifecycle.InvoiceDraft, inv.Status)
}

func TestFinalize_NumbersPerYear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Finalize(ctx, f.create(t).ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-F00001", a.GetNumber())

	f.now = time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC)
	b, err := f.svc.Finalize(ctx, f.create(t).ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-F00001", b.GetNumber())
}

func TestFinalize_ConcurrentNoDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 16
	ids := make([]id.ID, n)
	for i := range ids {
		ids[i] = f.create(t).ID
	}

	numbers := make([]string, n)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			inv, err := f.svc.Finalize(ctx, ids[i])
			if err == nil {
				numbers[i] = inv.GetNumber()
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, num := range numbers {
		require.NotEmpty(t, num)
		assert.False(t, seen[num], "duplicate number %s", num)
		seen[num] = true
	}

	cur, err := f.store.Sequences().Current(ctx, numerator.KindInvoice, 2025)
	require.NoError(t, err)
	assert.Equal(t, int64(n), cur)
}

func TestFinalize_SameDocumentConcurrently(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.create(t)

	var wg sync.WaitGroup
	numbers := make([]string, 8)
	for i := range numbers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := f.svc.Finalize(ctx, inv.ID)
			if err == nil {
				numbers[i] = got.GetNumber()
			}
		}(i)
	}
	wg.Wait()

	for _, num := range numbers {
		assert.Equal(t, "2025-F00001", num)
	}
	cur, _ := f.store.Sequences().Current(ctx, numerator.KindInvoice, 2025)
	assert.Equal(t, int64(1), cur)
}

func TestSetStatus_SideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.create(t)

	inv, err := f.svc.SetStatus(ctx, inv.ID, lifecycle.InvoiceSent, nil)
	require.NoError(t, err)
	require.NotNil(t, inv.SentAt)
	assert.Equal(t, f.now, *inv.SentAt)

	_, err = f.svc.SetStatus(ctx, inv.ID, lifecycle.InvoiceDraft, nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeIllegalTransition))

	reason := "  wrong PO number "
	inv, err = f.svc.SetStatus(ctx, inv.ID, lifecycle.InvoiceRefused, &reason)
	require.NoError(t, err)
	require.NotNil(t, inv.RefusedAt)
	assert.Equal(t, "wrong PO number", *inv.StatusReason)

	blank := "   "
	inv, err = f.svc.SetStatus(ctx, inv.ID, lifecycle.InvoiceCancelled, &blank)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.InvoiceCancelled, inv.Status)
	assert.Equal(t, "wrong PO number", *inv.StatusReason)

	for _, target := range lifecycle.InvoiceStatuses {
		_, err = f.svc.SetStatus(ctx, inv.ID, target, nil)
		assert.True(t, apperror.HasCode(err, apperror.CodeIllegalTransition), "CANCELLED -> %s", target)
	}
}

func TestSetStatus_Validated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.create(t)

	_, err := f.svc.SetStatus(ctx, inv.ID, lifecycle.InvoiceSent, nil)
	require.NoError(t, err)
	f.now = f.now.Add(48 * time.Hour)
	inv, err = f.svc.SetStatus(ctx, inv.ID, lifecycle.InvoiceValidated, nil)
	require.NoError(t, err)

	require.NotNil(t, inv.ValidatedAt)
	assert.True(t, inv.ValidatedAt.After(*inv.SentAt))
	assert.Nil(t, inv.StatusReason)
}

func TestDelete_Guard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft := f.create(t)
	require.NoError(t, f.svc.Delete(ctx, draft.ID))
	_, err := f.svc.GetByID(ctx, draft.ID)
	assert.True(t, apperror.IsNotFound(err))

	numbered, err := f.svc.Finalize(ctx, f.create(t).ID)
	require.NoError(t, err)
	err = f.svc.Delete(ctx, numbered.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvoiceNotDeletable))

	assert.True(t, apperror.IsNotFound(f.svc.Delete(ctx, id.New())))
}
