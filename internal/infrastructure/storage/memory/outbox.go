package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"factura/internal/core/id"
	"factura/internal/domain/documents"
	"factura/internal/infrastructure/outbox"
)

// Outbox implements documents.EventPublisher and outbox.Source on the store.
type Outbox struct {
	store *Store
}

var (
	_ documents.EventPublisher = (*Outbox)(nil)
	_ outbox.Source            = (*Outbox)(nil)
)

// Publish records the event in the caller's transaction.
func (o *Outbox) Publish(ctx context.Context, event documents.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	return o.store.requireTx(ctx, "outbox publish", func(st *state) error {
		st.outbox = append(st.outbox, outbox.Message{
			ID:            id.New(),
			AggregateType: event.AggregateType,
			AggregateID:   event.AggregateID,
			EventType:     event.Type,
			Payload:       payload,
			Status:        outbox.StatusPending,
			CreatedAt:     time.Now().UTC(),
		})
		return nil
	})
}

// Messages returns the recorded events in publication order.
func (o *Outbox) Messages(ctx context.Context) ([]outbox.Message, error) {
	var out []outbox.Message
	err := o.store.view(ctx, func(st *state) error {
		out = append(out, st.outbox...)
		return nil
	})
	return out, err
}

// ProcessBatch implements outbox.Source. Delivered messages are removed;
// failed ones stay pending until MaxRetries.
func (o *Outbox) ProcessBatch(ctx context.Context, batchSize int, h outbox.Handler) (int, error) {
	var pending []outbox.Message
	err := o.store.view(ctx, func(st *state) error {
		for _, msg := range st.outbox {
			if msg.Status != outbox.StatusPending {
				continue
			}
			pending = append(pending, msg)
			if len(pending) == batchSize {
				break
			}
		}
		return nil
	})
	if err != nil || len(pending) == 0 {
		return 0, err
	}

	delivered := make(map[id.ID]bool, len(pending))
	failures := make(map[id.ID]string)
	for i := range pending {
		if err := h.Handle(ctx, &pending[i]); err != nil {
			failures[pending[i].ID] = err.Error()
			continue
		}
		delivered[pending[i].ID] = true
	}

	err = o.store.view(ctx, func(st *state) error {
		kept := st.outbox[:0]
		for _, msg := range st.outbox {
			if delivered[msg.ID] {
				continue
			}
			if reason, ok := failures[msg.ID]; ok {
				msg.RetryCount++
				msg.LastError = &reason
				if msg.RetryCount >= outbox.MaxRetries {
					msg.Status = outbox.StatusFailed
				}
			}
			kept = append(kept, msg)
		}
		st.outbox = kept
		return nil
	})
	return len(delivered), err
}
