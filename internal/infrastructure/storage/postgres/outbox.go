package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"factura/internal/core/id"
	"factura/internal/domain/documents"
	"factura/internal/infrastructure/outbox"
	"factura/pkg/logger"
)

// OutboxPublisher writes document events to sys_outbox.
type OutboxPublisher struct {
	txManager *TxManager
}

var _ documents.EventPublisher = (*OutboxPublisher)(nil)

// NewOutboxPublisher creates a new outbox publisher.
func NewOutboxPublisher(txManager *TxManager) *OutboxPublisher {
	return &OutboxPublisher{txManager: txManager}
}

// Publish writes an event within the current transaction.
// It must be called inside a transaction.
func (p *OutboxPublisher) Publish(ctx context.Context, event documents.Event) error {
	tx := p.txManager.GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("outbox publish requires transaction context")
	}

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO sys_outbox (id, aggregate_type, aggregate_id, event_type, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id.New(), event.AggregateType, event.AggregateID, event.Type, payload, outbox.StatusPending, time.Now().UTC())
	if err != nil {
		return MapError(fmt.Errorf("insert outbox message: %w", err))
	}
	return nil
}

// OutboxRelay implements outbox.Source on sys_outbox. Several relays may
// run at once: rows are claimed with FOR UPDATE SKIP LOCKED.
type OutboxRelay struct {
	txManager *TxManager
}

var _ outbox.Source = (*OutboxRelay)(nil)

// NewOutboxRelay creates a new outbox relay.
func NewOutboxRelay(txManager *TxManager) *OutboxRelay {
	return &OutboxRelay{txManager: txManager}
}

// ProcessBatch claims up to batchSize due messages, hands them to h and
// records each outcome in the same transaction.
func (r *OutboxRelay) ProcessBatch(ctx context.Context, batchSize int, h outbox.Handler) (int, error) {
	processed := 0

	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := r.txManager.GetQuerier(ctx)

		var messages []*outbox.Message
		err := pgxscan.Select(ctx, querier, &messages, `
			SELECT id, aggregate_type, aggregate_id, event_type, payload, status,
			       retry_count, last_error, created_at
			FROM sys_outbox
			WHERE status = $1
			  AND (next_retry_at IS NULL OR next_retry_at <= NOW())
			ORDER BY created_at, id
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		`, outbox.StatusPending, batchSize)
		if err != nil {
			return fmt.Errorf("fetch outbox messages: %w", err)
		}

		for _, msg := range messages {
			if err := r.processMessage(ctx, querier, h, msg); err != nil {
				logger.Warn(ctx, "outbox delivery failed",
					"message_id", msg.ID.String(),
					"event_type", msg.EventType,
					"retry_count", msg.RetryCount+1,
					"error", err,
				)
				continue
			}
			processed++
		}

		return r.moveToDLQ(ctx, querier)
	})
	if err != nil {
		return 0, err
	}
	return processed, nil
}

// processMessage delivers one message and records the outcome. The
// delivery error is returned after the failure has been recorded.
func (r *OutboxRelay) processMessage(ctx context.Context, querier Querier, h outbox.Handler, msg *outbox.Message) error {
	if err := h.Handle(ctx, msg); err != nil {
		status := outbox.StatusPending
		if msg.RetryCount+1 >= outbox.MaxRetries {
			status = outbox.StatusFailed
		}

		_, updateErr := querier.Exec(ctx, `
			UPDATE sys_outbox
			SET retry_count = retry_count + 1,
			    last_error = $1,
			    next_retry_at = $2,
			    status = $3
			WHERE id = $4
		`, err.Error(), time.Now().UTC().Add(outbox.RetryDelay(msg.RetryCount)), status, msg.ID)
		if updateErr != nil {
			return fmt.Errorf("update failed message: %w", updateErr)
		}
		return err
	}

	_, err := querier.Exec(ctx, `
		UPDATE sys_outbox
		SET status = $1, published_at = $2
		WHERE id = $3
	`, outbox.StatusPublished, time.Now().UTC(), msg.ID)
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return nil
}

// moveToDLQ moves parked messages to the dead letter table.
func (r *OutboxRelay) moveToDLQ(ctx context.Context, querier Querier) error {
	result, err := querier.Exec(ctx, `
		WITH moved AS (
			DELETE FROM sys_outbox
			WHERE status = $1
			RETURNING id, aggregate_type, aggregate_id, event_type, payload, retry_count, last_error, created_at
		)
		INSERT INTO sys_outbox_dlq (id, aggregate_type, aggregate_id, event_type, payload, retry_count, failure_reason, created_at, failed_at)
		SELECT id, aggregate_type, aggregate_id, event_type, payload, retry_count, last_error, created_at, NOW()
		FROM moved
	`, outbox.StatusFailed)
	if err != nil {
		return fmt.Errorf("move to DLQ: %w", err)
	}
	if n := result.RowsAffected(); n > 0 {
		logger.Warn(ctx, "outbox messages moved to dead letter queue", "count", n)
	}
	return nil
}
