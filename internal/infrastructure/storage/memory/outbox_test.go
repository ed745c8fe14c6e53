package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factura/internal/core/id"
	"factura/internal/domain/documents"
	"factura/internal/infrastructure/outbox"
)

func publish(t *testing.T, s *Store, eventType string) {
	t.Helper()
	err := s.RunInTransaction(context.Background(), func(ctx context.Context) error {
		return s.Outbox().Publish(ctx, documents.Event{
			AggregateType: documents.AggregateInvoice,
			AggregateID:   id.New(),
			Type:          eventType,
			Payload:       map[string]any{"number": "2025-F00001"},
		})
	})
	require.NoError(t, err)
}

func TestOutbox_PublishRequiresTransaction(t *testing.T) {
	err := NewStore().Outbox().Publish(context.Background(), documents.Event{Type: documents.EventInvoiceCreated})
	assert.Error(t, err)
}

func TestOutbox_ProcessBatchDeliversAndRemoves(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	publish(t, s, documents.EventInvoiceCreated)
	publish(t, s, documents.EventInvoiceFinalized)

	var seen []string
	h := outbox.HandlerFunc(func(_ context.Context, msg *outbox.Message) error {
		seen = append(seen, msg.EventType)
		return nil
	})

	n, err := s.Outbox().ProcessBatch(ctx, 10, h)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{documents.EventInvoiceCreated, documents.EventInvoiceFinalized}, seen)

	left, err := s.Outbox().Messages(ctx)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestOutbox_FailedDeliveryIsRetriedThenParked(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	publish(t, s, documents.EventInvoiceDeleted)

	failing := outbox.HandlerFunc(func(context.Context, *outbox.Message) error {
		return errors.New("broker unavailable")
	})

	for i := 0; i < outbox.MaxRetries; i++ {
		n, err := s.Outbox().ProcessBatch(ctx, 10, failing)
		require.NoError(t, err)
		assert.Zero(t, n)
	}

	msgs, err := s.Outbox().Messages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, outbox.StatusFailed, msgs[0].Status)
	assert.Equal(t, outbox.MaxRetries, msgs[0].RetryCount)
	require.NotNil(t, msgs[0].LastError)
	assert.Equal(t, "broker unavailable", *msgs[0].LastError)

	n, err := s.Outbox().ProcessBatch(ctx, 10, failing)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRelay_TickDrainsAndPurges(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for i := 0; i < 3; i++ {
		publish(t, s, documents.EventQuoteCreated)
	}

	delivered := 0
	h := outbox.HandlerFunc(func(context.Context, *outbox.Message) error {
		delivered++
		return nil
	})

	// keys expire as soon as they are written
	keys := s.Idempotency(-time.Second)
	_, err := keys.AcquireKey(ctx, "k1", "alice", "POST /quotes", "hash")
	require.NoError(t, err)

	relay := outbox.NewRelay(s.Outbox(), h, keys, nil, outbox.RelayConfig{BatchSize: 2})
	relay.Tick(ctx)

	assert.Equal(t, 3, delivered)

	purged, err := keys.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged)
}
