package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"factura/internal/core/apperror"
	"factura/internal/core/idempotency"
)

// idempotencyRecord is a sys_idempotency row.
type idempotencyRecord struct {
	Key         string             `db:"idempotency_key"`
	Actor       string             `db:"actor"`
	Operation   string             `db:"operation"`
	Status      idempotency.Status `db:"status"`
	RequestHash string             `db:"request_hash"`
	Response    []byte             `db:"response"`
	StatusCode  int                `db:"response_status"`
	ContentType string             `db:"response_content_type"`
	UpdatedAt   time.Time          `db:"updated_at"`
	Inserted    bool               `db:"inserted"`
}

// IdempotencyStore implements idempotency.Store on sys_idempotency.
type IdempotencyStore struct {
	txManager *TxManager
	ttl       time.Duration
}

var _ idempotency.Store = (*IdempotencyStore)(nil)

// NewIdempotencyStore creates a new idempotency store.
func NewIdempotencyStore(txManager *TxManager, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{txManager: txManager, ttl: ttl}
}

// AcquireKey implements idempotency.Store.
func (s *IdempotencyStore) AcquireKey(ctx context.Context, key, actor, operation, requestHash string) (*idempotency.Replay, error) {
	// Microsecond precision matches timestamptz so updated_at compares equal.
	now := time.Now().UTC().Truncate(time.Microsecond)
	querier := s.txManager.GetQuerier(ctx)

	// An expired row is taken over as if it were new. xmax = 0 tells a
	// fresh insert from a conflicting row.
	var rec idempotencyRecord
	err := querier.QueryRow(ctx, `
		INSERT INTO sys_idempotency (idempotency_key, actor, operation, status, request_hash, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7)
		ON CONFLICT (idempotency_key) DO UPDATE SET
			actor = CASE WHEN sys_idempotency.expires_at < $6 THEN EXCLUDED.actor ELSE sys_idempotency.actor END,
			operation = CASE WHEN sys_idempotency.expires_at < $6 THEN EXCLUDED.operation ELSE sys_idempotency.operation END,
			request_hash = CASE WHEN sys_idempotency.expires_at < $6 THEN EXCLUDED.request_hash ELSE sys_idempotency.request_hash END,
			status = CASE WHEN sys_idempotency.expires_at < $6 THEN EXCLUDED.status ELSE sys_idempotency.status END,
			response = CASE WHEN sys_idempotency.expires_at < $6 THEN NULL ELSE sys_idempotency.response END,
			expires_at = CASE WHEN sys_idempotency.expires_at < $6 THEN EXCLUDED.expires_at ELSE sys_idempotency.expires_at END,
			updated_at = CASE WHEN sys_idempotency.expires_at < $6 THEN EXCLUDED.updated_at ELSE sys_idempotency.updated_at END
		RETURNING idempotency_key, actor, operation, status, request_hash,
		          response, COALESCE(response_status, 0), COALESCE(response_content_type, ''),
		          updated_at, (xmax = 0 OR updated_at = $6) AS inserted
	`, key, actor, operation, idempotency.StatusPending, requestHash, now, now.Add(s.ttl)).Scan(
		&rec.Key, &rec.Actor, &rec.Operation, &rec.Status, &rec.RequestHash,
		&rec.Response, &rec.StatusCode, &rec.ContentType,
		&rec.UpdatedAt, &rec.Inserted,
	)
	if err != nil {
		return nil, MapError(fmt.Errorf("acquire idempotency key: %w", err))
	}

	if rec.Inserted {
		return nil, nil
	}

	if rec.Actor != actor || rec.Operation != operation || rec.RequestHash != requestHash {
		return nil, apperror.NewIdempotencyMismatch(key).
			WithDetail("stored_operation", rec.Operation).
			WithDetail("request_operation", operation)
	}

	switch rec.Status {
	case idempotency.StatusSuccess, idempotency.StatusFailed:
		return &idempotency.Replay{
			StatusCode:  idempotency.NormalizeStatus(rec.StatusCode),
			ContentType: idempotency.NormalizeContentType(rec.ContentType),
			Body:        rec.Response,
		}, nil

	case idempotency.StatusPending:
		if now.Sub(rec.UpdatedAt) <= idempotency.StaleAfter {
			return nil, apperror.NewIdempotencyConflict(key)
		}
		// Reclaim a key left behind by a crashed request.
		tag, err := querier.Exec(ctx, `
			UPDATE sys_idempotency
			SET updated_at = $1
			WHERE idempotency_key = $2 AND status = $3 AND updated_at = $4
		`, now, key, idempotency.StatusPending, rec.UpdatedAt)
		if err != nil {
			return nil, MapError(fmt.Errorf("reclaim stale key: %w", err))
		}
		if tag.RowsAffected() == 0 {
			return nil, apperror.NewIdempotencyConflict(key)
		}
		return nil, nil
	}

	return nil, apperror.NewIdempotencyConflict(key)
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

	_, err := s.txManager.GetQuerier(ctx).Exec(ctx, `
		UPDATE sys_idempotency
		SET status = $1,
		    response = $2,
		    response_status = $3,
		    response_content_type = $4,
		    updated_at = $5
		WHERE idempotency_key = $6
	`, status, body, statusCode, contentType, time.Now().UTC(), key)
	if err != nil {
		return MapError(fmt.Errorf("finish idempotency key: %w", err))
	}
	return nil
}

// ReleaseKey implements idempotency.Store.
func (s *IdempotencyStore) ReleaseKey(ctx context.Context, key string) error {
	_, err := s.txManager.GetQuerier(ctx).Exec(ctx, `
		DELETE FROM sys_idempotency WHERE idempotency_key = $1 AND status = $2
	`, key, idempotency.StatusPending)
	if err != nil {
		return MapError(fmt.Errorf("release idempotency key: %w", err))
	}
	return nil
}

// CleanupExpired implements idempotency.Store.
func (s *IdempotencyStore) CleanupExpired(ctx context.Context) (int64, error) {
	result, err := s.txManager.GetQuerier(ctx).Exec(ctx, `
		DELETE FROM sys_idempotency WHERE expires_at < $1
	`, time.Now().UTC())
	if err != nil {
		return 0, MapError(fmt.Errorf("cleanup idempotency keys: %w", err))
	}
	return result.RowsAffected(), nil
}
