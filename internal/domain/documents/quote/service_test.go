package quote_test

import (
	"context"
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
	"factura/internal/domain/documents/quote"
	"factura/internal/domain/lifecycle"
	"factura/internal/domain/pricing"
	"factura/internal/infrastructure/storage/memory"
)

var fixedNow = time.Date(2025, 6, 12, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store  *memory.Store
	svc    *quote.Service
	client *client.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()

	c := client.NewClient("ACME")
	require.NoError(t, store.Clients().Create(context.Background(), c))

	svc := quote.NewService(store.Quotes(), store.Clients(), store.Sequences(), store,
		documents.WithAudit(store.Audit()),
		documents.WithEvents(store.Outbox()),
		documents.WithClock(func() time.Time { return fixedNow }),
	)
	return &fixture{store: store, svc: svc, client: c}
}

func consulting() []pricing.LineInput {
	return []pricing.LineInput{{
		Designation: "Consulting",
		Quantity:    decimal.NewFromInt(2),
		UnitPrice:   decimal.RequireFromString("100.00"),
		VATRate:     decimal.NewFromInt(20),
	}}
}

func TestCreate_ComputesTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	notes := "  "
	q, err := f.svc.Create(ctx, quote.CreateInput{ClientID: f.client.ID, Lines: consulting(), Notes: &notes, Currency: " usd"})
	require.NoError(t, err)

	assert.Equal(t, lifecycle.QuoteDraft, q.Status)
	assert.Nil(t, q.Number)
	assert.Nil(t, q.Notes)
	assert.Equal(t, "USD", q.Currency)
	assert.Equal(t, "200.00", q.SubTotal.StringFixed(2))
	assert.Equal(t, "40.00", q.TaxTotal.StringFixed(2))
	assert.Equal(t, "240.00", q.GrandTotal.StringFixed(2))

	got, err := f.svc.GetByID(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, 1, got.Lines[0].Position)
	assert.Equal(t, "240.00", got.Lines[0].LineTotalTTC.StringFixed(2))
}

func TestCreate_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, quote.CreateInput{ClientID: f.client.ID})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidLineInput))

	_, err = f.svc.Create(ctx, quote.CreateInput{ClientID: id.New(), Lines: consulting()})
	assert.True(t, apperror.IsNotFound(err))

	bad := consulting()
	bad[0].VATRate = decimal.NewFromInt(120)
	_, err = f.svc.Create(ctx, quote.CreateInput{ClientID: f.client.ID, Lines: bad})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "vatRate", appErr.Details["field"])
	assert.Equal(t, 1, appErr.Details["line"])

	list, err := f.svc.List(ctx, quote.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.TotalCount)
}

func TestFinalize_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q, err := f.svc.Create(ctx, quote.CreateInput{ClientID: f.client.ID, Lines: consulting()})
	require.NoError(t, err)

	first, err := f.svc.Finalize(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-Q00001", first.GetNumber())
	assert.Equal(t, fixedNow, *first.IssueDate)

	second, err := f.svc.Finalize(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, first.GetNumber(), second.GetNumber())
	assert.True(t, first.GrandTotal.Equal(second.GrandTotal))

	cur, err := f.store.Sequences().Current(ctx, numerator.KindQuote, 2025)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cur)

	history, err := f.svc.History(ctx, q.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "finalize", string(history[0].Action))
}

func TestFinalize_YearFollowsClockZone(t *testing.T) {
	store := memory.NewStore()
	c := client.NewClient("ACME")
	require.NoError(t, store.Clients().Create(context.Background(), c))

	// 00:30 on New Year's Day in Paris is still 2025 in UTC.
	paris := time.FixedZone("CET", 3600)
	newYear := time.Date(2026, 1, 1, 0, 30, 0, 0, paris)
	svc := quote.NewService(store.Quotes(), store.Clients(), store.Sequences(), store,
		documents.WithClock(func() time.Time { return newYear }),
	)

	ctx := context.Background()
	q, err := svc.Create(ctx, quote.CreateInput{ClientID: c.ID, Lines: consulting()})
	require.NoError(t, err)

	q, err = svc.Finalize(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-Q00001", q.GetNumber())
}

func TestFinalize_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Finalize(context.Background(), id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestFinalize_SequentialNumbers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var numbers []string
	for i := 0; i < 3; i++ {
		q, err := f.svc.Create(ctx, quote.CreateInput{ClientID: f.client.ID, Lines: consulting()})
		require.NoError(t, err)
		q, err = f.svc.Finalize(ctx, q.ID)
		require.NoError(t, err)
		numbers = append(numbers, q.GetNumber())
	}
	assert.Equal(t, []string{"2025-Q00001", "2025-Q00002", "2025-Q00003"}, numbers)
}

func TestSetStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q, err := f.svc.Create(ctx, quote.CreateInput{ClientID: f.client.ID, Lines: consulting()})
	require.NoError(t, err)

	_, err = f.svc.SetStatus(ctx, q.ID, lifecycle.QuoteAccepted, nil)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeIllegalTransition, appErr.Code)
	assert.Equal(t, "DRAFT", appErr.Details["from"])

	q, err = f.svc.SetStatus(ctx, q.ID, lifecycle.QuoteSent, nil)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.QuoteSent, q.Status)
	assert.Len(t, q.Lines, 1)

	reason := "  too expensive "
	q, err = f.svc.SetStatus(ctx, q.ID, lifecycle.QuoteRefused, &reason)
	require.NoError(t, err)
	assert.Nil(t, q.Notes)

	history, err := f.svc.History(ctx, q.ID, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "too expensive", history[0].Changes["reason"])

	_, err = f.svc.SetStatus(ctx, q.ID, lifecycle.QuoteAccepted, nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeIllegalTransition))

	_, err = f.svc.SetStatus(ctx, q.ID, lifecycle.QuoteCancelled, nil)
	require.NoError(t, err)

	msgs, err := f.store.Outbox().Messages(ctx)
	require.NoError(t, err)
	assert.Equal(t, documents.EventQuoteCreated, msgs[0].EventType)
	assert.Equal(t, documents.EventQuoteStatusChanged, msgs[len(msgs)-1].EventType)
}

func TestList_StatusFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Create(ctx, quote.CreateInput{ClientID: f.client.ID, Lines: consulting()})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, quote.CreateInput{ClientID: f.client.ID, Lines: consulting()})
	require.NoError(t, err)
	_, err = f.svc.SetStatus(ctx, a.ID, lifecycle.QuoteSent, nil)
	require.NoError(t, err)

	sent := lifecycle.QuoteSent
	list, err := f.svc.List(ctx, quote.ListFilter{Status: &sent})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, a.ID, list.Items[0].ID)

	all, err := f.svc.List(ctx, quote.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.TotalCount)
}
