package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"factura/internal/core/apperror"
	"factura/internal/core/idempotency"
)

type idempotencyRecord struct {
	actor       string
	operation   string
	status      idempotency.Status
	requestHash string
	response    []byte
	statusCode  int
	contentType string
	updatedAt   time.Time
	expiresAt   time.Time
}

// IdempotencyStore implements idempotency.Store on the store.
type IdempotencyStore struct {
	store *Store
	ttl   time.Duration
}

var _ idempotency.Store = (*IdempotencyStore)(nil)

// AcquireKey implements idempotency.Store.
func (s *IdempotencyStore) AcquireKey(ctx context.Context, key, actor, operation, requestHash string) (*idempotency.Replay, error) {
	var replay *idempotency.Replay
	err := s.store.view(ctx, func(st *state) error {
		now := time.Now().UTC()
		rec, ok := st.idempotency[key]
		if !ok || now.After(rec.expiresAt) {
			st.idempotency[key] = idempotencyRecord{
				actor:       actor,
				operation:   operation,
				status:      idempotency.StatusPending,
				requestHash: requestHash,
				updatedAt:   now,
				expiresAt:   now.Add(s.ttl),
			}
			return nil
		}

		if rec.actor != actor || rec.operation != operation || rec.requestHash != requestHash {
			return apperror.NewIdempotencyMismatch(key).
				WithDetail("stored_operation", rec.operation).
				WithDetail("request_operation", operation)
		}

		switch rec.status {
		case idempotency.StatusSuccess, idempotency.StatusFailed:
			replay = &idempotency.Replay{
				StatusCode:  idempotency.NormalizeStatus(rec.statusCode),
				ContentType: idempotency.NormalizeContentType(rec.contentType),
				Body:        rec.response,
			}
			return nil
		case idempotency.StatusPending:
			if now.Sub(rec.updatedAt) > idempotency.StaleAfter {
				rec.updatedAt = now
				st.idempotency[key] = rec
				return nil
			}
		}
		return apperror.NewIdempotencyConflict(key)
	})
	return replay, err
}

// CompleteKey implements idempotency.Store.
func (s *IdempotencyStore) CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	return s.finish(ctx, key, idempotency.StatusSuccess, statusCode, contentType, response)
}

// FailKey implements idempotency.Store.
func (s *IdempotencyStore) FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	return s.finish(ctx, key, idempotency.StatusFailed, statusCode, contentType, response)
}

func (s *IdempotencyStore) finish(ctx context.Context, key string, status idempotency.Status, statusCode int, contentType string, response any) error {
	var body []byte
	if response != nil {
		b, err := json.Marshal(response)
		if err != nil {
			return fmt.Errorf("marshal response: %w", err)
		}
		body = b
	}

	return s.store.view(ctx, func(st *state) error {
		rec, ok := st.idempotency[key]
		if !ok {
			return nil
		}
		rec.status = status
		rec.response = body
		rec.statusCode = statusCode
		rec.contentType = contentType
		rec.updatedAt = time.Now().UTC()
		st.idempotency[key] = rec
		return nil
	})
}

// ReleaseKey implements idempotency.Store.
func (s *IdempotencyStore) ReleaseKey(ctx context.Context, key string) error {
	return s.store.view(ctx, func(st *state) error {
		if rec, ok := st.idempotency[key]; ok && rec.status == idempotency.StatusPending {
			delete(st.idempotency, key)
		}
		return nil
	})
}

// CleanupExpired implements idempotency.Store.
func (s *IdempotencyStore) CleanupExpired(ctx context.Context) (int64, error) {
	var n int64
	err := s.store.view(ctx, func(st *state) error {
		now := time.Now().UTC()
		for k, rec := range st.idempotency {
			if rec.expiresAt.Before(now) {
				delete(st.idempotency, k)
				n++
			}
		}
		return nil
	})
	return n, err
}
