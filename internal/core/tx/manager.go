// Package tx provides transaction management abstractions.
// Domain services depend on these interfaces; the implementations live in
// infrastructure/storage (postgres and memory).
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
//
// A transaction started by RunInTransaction travels in the returned ctx.
// Nested calls with that ctx join the caller's transaction instead of
// opening a new one, so an engine operation either runs standalone or
// inside the transaction its caller passed in.
type Manager interface {
	// RunInTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transaction support.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
