package numerator

import (
	"context"
)

// Allocator hands out sequence values per (kind, year).
//
// NextNumber must run inside the transaction that consumes the value: if
// that transaction rolls back, the increment rolls back with it. Every call
// for the same key returns a distinct, increasing value, even under
// concurrent callers. Gaps are possible, duplicates are not.
type Allocator interface {
	NextNumber(ctx context.Context, kind Kind, year int) (int64, error)

	// SetNextNumber forces the last issued value for a key, e.g. when
	// importing a numbering that started in another system.
	SetNextNumber(ctx context.Context, kind Kind, year int, last int64) error
}
