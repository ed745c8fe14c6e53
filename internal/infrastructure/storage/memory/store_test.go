package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factura/internal/core/apperror"
	"factura/internal/core/numerator"
	"factura/internal/domain/catalogs/client"
)

func TestRunInTransaction_RollbackRestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seq := s.Sequences()

	boom := errors.New("boom")
	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		n, err := seq.NextNumber(ctx, numerator.KindInvoice, 2025)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		require.NoError(t, s.Clients().Create(ctx, client.NewClient("ACME")))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	cur, err := seq.Current(ctx, numerator.KindInvoice, 2025)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cur)

	list, err := s.Clients().List(ctx, listAll())
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestRunInTransaction_NestedJoins(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.RunInTransaction(ctx, func(ctx context.Context) error {
			_, err := s.Sequences().NextNumber(ctx, numerator.KindQuote, 2025)
			return err
		})
	})
	require.NoError(t, err)

	cur, _ := s.Sequences().Current(ctx, numerator.KindQuote, 2025)
	assert.Equal(t, int64(1), cur)
}

func TestNextNumber_RequiresTransaction(t *testing.T) {
	_, err := NewStore().Sequences().NextNumber(context.Background(), numerator.KindQuote, 2025)
	assert.Error(t, err)
}

func TestNextNumber_ConcurrentDistinct(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	const workers = 32
	got := make([]int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.RunInTransaction(ctx, func(ctx context.Context) error {
				n, err := s.Sequences().NextNumber(ctx, numerator.KindInvoice, 2026)
				got[i] = n
				return err
			})
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, workers)
	for _, n := range got {
		assert.False(t, seen[n], "duplicate %d", n)
		seen[n] = true
		assert.True(t, n >= 1 && n <= workers)
	}
}

func TestClientRepo_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Clients()

	email := "billing@acme.test"
	a := client.NewClient("ACME")
	a.Email = &email
	require.NoError(t, repo.Create(ctx, a))

	upper := "BILLING@acme.test"
	b := client.NewClient("ACME bis")
	b.Email = &upper
	err := repo.Create(ctx, b)
	assert.True(t, apperror.HasCode(err, apperror.CodeConflictingUniqueField))

	found, err := repo.FindByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.ID)
}

func TestIdempotencyStore_Replay(t *testing.T) {
	ctx := context.Background()
	store := NewStore().Idempotency(time.Hour)

	replay, err := store.AcquireKey(ctx, "k1", "system", "POST /quotes", "h1")
	require.NoError(t, err)
	assert.Nil(t, replay)

	_, err = store.AcquireKey(ctx, "k1", "system", "POST /quotes", "h1")
	assert.True(t, apperror.HasCode(err, apperror.CodeIdempotency), "pending key is busy")

	require.NoError(t, store.CompleteKey(ctx, "k1", 201, "application/json", map[string]string{"id": "x"}))

	replay, err = store.AcquireKey(ctx, "k1", "system", "POST /quotes", "h1")
	require.NoError(t, err)
	require.NotNil(t, replay)
	assert.Equal(t, 201, replay.StatusCode)
	assert.JSONEq(t, `{"id":"x"}`, string(replay.Body))

	_, err = store.AcquireKey(ctx, "k1", "system", "POST /quotes", "other")
	assert.True(t, apperror.HasCode(err, apperror.CodeIdempotency))
}

func TestIdempotencyStore_ReleaseKey(t *testing.T) {
	ctx := context.Background()
	store := NewStore().Idempotency(time.Hour)

	_, err := store.AcquireKey(ctx, "k2", "system", "POST /invoices/1/finalize", "h")
	require.NoError(t, err)
	require.NoError(t, store.ReleaseKey(ctx, "k2"))

	replay, err := store.AcquireKey(ctx, "k2", "system", "POST /invoices/1/finalize", "h")
	require.NoError(t, err, "released key can be acquired again")
	assert.Nil(t, replay)

	require.NoError(t, store.CompleteKey(ctx, "k2", 200, "", nil))
	require.NoError(t, store.ReleaseKey(ctx, "k2"))

	replay, err = store.AcquireKey(ctx, "k2", "system", "POST /invoices/1/finalize", "h")
	require.NoError(t, err)
	require.NotNil(t, replay, "completed keys are kept")
}
