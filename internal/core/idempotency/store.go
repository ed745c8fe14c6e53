// Package idempotency defines how retried mutating requests are recognized
// and answered with the response of their first execution.
package idempotency

import (
	"context"
	"time"
)

// Status represents the state of an idempotent operation.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// StaleAfter is how long a pending key may stay unfinished before another
// request is allowed to reclaim it.
const StaleAfter = time.Minute

// Replay is the cached HTTP response of a completed operation.
type Replay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Store manages idempotency keys.
type Store interface {
	// AcquireKey returns:
	//   - (nil, nil) if the key was acquired and the request must run
	//   - (replay, nil) if the operation already completed
	//   - (nil, err) if the key is in use or was used for another request
	AcquireKey(ctx context.Context, key, actor, operation, requestHash string) (*Replay, error)

	// CompleteKey stores the successful response of the operation.
	CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error

	// FailKey stores the error response of the operation.
	FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error

	// ReleaseKey forgets a pending key so the same request may run again.
	// Used when the operation failed in a retryable way.
	ReleaseKey(ctx context.Context, key string) error

	// CleanupExpired removes keys past their TTL.
	CleanupExpired(ctx context.Context) (int64, error)
}

// NormalizeStatus defaults a missing status to 200.
func NormalizeStatus(status int) int {
	if status == 0 {
		return 200
	}
	return status
}

// NormalizeContentType defaults a missing content type to JSON.
func NormalizeContentType(ct string) string {
	if ct == "" {
		return "application/json"
	}
	return ct
}
