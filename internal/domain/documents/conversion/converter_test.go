package conversion_test

import (
	"context"
	"errors"
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
	"factura/internal/domain/documents/conversion"
	"factura/internal/domain/documents/invoice"
	"factura/internal/domain/documents/quote"
	"factura/internal/domain/lifecycle"
	"factura/internal/domain/pricing"
	"factura/internal/infrastructure/storage/memory"
)

// failOn wraps a publisher and rejects one event type.
type failOn struct {
	next      documents.EventPublisher
	eventType string
}

func (p failOn) Publish(ctx context.Context, e documents.Event) error {
	if e.Type == p.eventType {
		return errors.New("broker unavailable")
	}
	return p.next.Publish(ctx, e)
}

type fixture struct {
	store     *memory.Store
	quotes    *quote.Service
	invoices  *invoice.Service
	converter *conversion.Converter
	client    *client.Client
}

func newFixture(t *testing.T, events documents.EventPublisher) *fixture {
	t.Helper()
	store := memory.NewStore()
	if events == nil {
		events = store.Outbox()
	}

	c := client.NewClient("ACME")
	require.NoError(t, store.Clients().Create(context.Background(), c))

	now := func() time.Time { return time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC) }
	opts := []documents.Option{
		documents.WithAudit(store.Audit()),
		documents.WithEvents(events),
		documents.WithClock(now),
	}

	invoices := invoice.NewService(store.Invoices(), store.Clients(), store.Sequences(), store, opts...)
	return &fixture{
		store:     store,
		quotes:    quote.NewService(store.Quotes(), store.Clients(), store.Sequences(), store, opts...),
		invoices:  invoices,
		converter: conversion.NewConverter(store.Quotes(), invoices, store, opts...),
		client:    c,
	}
}

func (f *fixture) quoteIn(t *testing.T, status ...lifecycle.QuoteStatus) *quote.Quote {
	t.Helper()
	ctx := context.Background()

	q, err := f.quotes.Create(ctx, quote.CreateInput{
		ClientID: f.client.ID,
		Currency: "eur",
		Lines: []pricing.LineInput{{
			Designation: "Consulting",
			Quantity:    decimal.NewFromInt(2),
			UnitPrice:   decimal.RequireFromString("100.00"),
			VATRate:     decimal.NewFromInt(20),
		}},
	})
	require.NoError(t, err)

	q, err = f.quotes.Finalize(ctx, q.ID)
	require.NoError(t, err)

	for _, s := range status {
		q, err = f.quotes.SetStatus(ctx, q.ID, s, nil)
		require.NoError(t, err)
	}
	return q
}

func TestConvert_EndToEnd(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	q := f.quoteIn(t, lifecycle.QuoteSent, lifecycle.QuoteAccepted)
	assert.Equal(t, "2025-Q00001", q.GetNumber())
	require.Len(t, q.Lines, 1)
	assert.Equal(t, "200.00", q.Lines[0].LineTotalHT.StringFixed(2))
	assert.Equal(t, "40.00", q.Lines[0].LineTax.StringFixed(2))
	assert.Equal(t, "240.00", q.Lines[0].LineTotalTTC.StringFixed(2))

	inv, err := f.converter.Convert(ctx, q.ID)
	require.NoError(t, err)

	assert.Equal(t, "2025-F00001", inv.GetNumber())
	assert.Equal(t, lifecycle.InvoiceDraft, inv.Status)
	assert.Equal(t, q.ClientID, inv.ClientID)
	assert.Equal(t, "EUR", inv.Currency)
	require.NotNil(t, inv.Notes)
	assert.Equal(t, "Issue du devis 2025-Q00001", *inv.Notes)
	assert.True(t, inv.GrandTotal.Equal(q.GrandTotal))

	require.Len(t, inv.Lines, 1)
	assert.NotEqual(t, q.Lines[0].ID, inv.Lines[0].ID)
	assert.Equal(t, q.Lines[0].Position, inv.Lines[0].Position)
	assert.True(t, q.Lines[0].LineTotalTTC.Equal(inv.Lines[0].LineTotalTTC))

	linked, err := f.quotes.GetByID(ctx, q.ID)
	require.NoError(t, err)
	require.NotNil(t, linked.InvoiceID)
	assert.Equal(t, inv.ID, *linked.InvoiceID)

	again, err := f.converter.Convert(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, again.ID)

	cur, _ := f.store.Sequences().Current(ctx, numerator.KindInvoice, 2025)
	assert.Equal(t, int64(1), cur)
}

func TestConvert_RequiresAccepted(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for _, path := range [][]lifecycle.QuoteStatus{
		nil,
		{lifecycle.QuoteSent},
		{lifecycle.QuoteSent, lifecycle.QuoteRefused},
		{lifecycle.QuoteSent, lifecycle.QuoteCancelled},
	} {
		q := f.quoteIn(t, path...)
		_, err := f.converter.Convert(ctx, q.ID)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeInvalidConversionState, appErr.Code)
		assert.Equal(t, string(q.Status), appErr.Details["status"])
	}

	_, err := f.converter.Convert(ctx, id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestConvert_RollbackLeavesNothing(t *testing.T) {
	f := newFixture(t, nil)

	// same store, converter whose last step fails
	events := failOn{next: f.store.Outbox(), eventType: documents.EventQuoteConverted}
	opts := []documents.Option{documents.WithAudit(f.store.Audit()), documents.WithEvents(events)}
	converter := conversion.NewConverter(f.store.Quotes(), f.invoices, f.store, opts...)

	ctx := context.Background()
	q := f.quoteIn(t, lifecycle.QuoteSent, lifecycle.QuoteAccepted)

	_, err := converter.Convert(ctx, q.ID)
	require.Error(t, err)

	list, err := f.invoices.List(ctx, invoice.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.TotalCount)

	after, err := f.quotes.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Nil(t, after.InvoiceID)

	cur, _ := f.store.Sequences().Current(ctx, numerator.KindInvoice, 2025)
	assert.Equal(t, int64(0), cur)

	// a retry with a healthy publisher succeeds and gets the first number
	inv, err := f.converter.Convert(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-F00001", inv.GetNumber())
}
