package memory

import (
	"context"
	"fmt"

	"factura/internal/core/numerator"
)

// SequenceAllocator implements numerator.Allocator on the store.
// Increments are part of the enclosing transaction and roll back with it.
type SequenceAllocator struct {
	store *Store
}

var _ numerator.Allocator = (*SequenceAllocator)(nil)

// NextNumber increments and returns the counter of (kind, year).
func (a *SequenceAllocator) NextNumber(ctx context.Context, kind numerator.Kind, year int) (int64, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("unknown numbering series %q", kind)
	}
	var n int64
	err := a.store.requireTx(ctx, "allocate number", func(st *state) error {
		k := seqKey{kind: kind, year: year}
		st.sequences[k]++
		n = st.sequences[k]
		return nil
	})
	return n, err
}

// SetNextNumber forces the last issued value of (kind, year).
func (a *SequenceAllocator) SetNextNumber(ctx context.Context, kind numerator.Kind, year int, last int64) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown numbering series %q", kind)
	}
	if last < 0 {
		return fmt.Errorf("sequence value must not be negative: %d", last)
	}
	return a.store.view(ctx, func(st *state) error {
		st.sequences[seqKey{kind: kind, year: year}] = last
		return nil
	})
}

// Current returns the last issued value of (kind, year), 0 when none.
func (a *SequenceAllocator) Current(ctx context.Context, kind numerator.Kind, year int) (int64, error) {
	var n int64
	err := a.store.view(ctx, func(st *state) error {
		n = st.sequences[seqKey{kind: kind, year: year}]
		return nil
	})
	return n, err
}
