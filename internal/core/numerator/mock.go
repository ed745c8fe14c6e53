package numerator

import (
	"context"
	"sync"
)

// MockAllocator is an in-process Allocator for unit tests.
// Without NextNumberFunc it counts per key, starting at 1.
type MockAllocator struct {
	NextNumberFunc    func(ctx context.Context, kind Kind, year int) (int64, error)
	SetNextNumberFunc func(ctx context.Context, kind Kind, year int, last int64) error

	mu    sync.Mutex
	last  map[string]int64
	Calls int
}

func mockKey(kind Kind, year int) string {
	return Format(kind, year, 0)
}

// NextNumber implements Allocator.
func (m *MockAllocator) NextNumber(ctx context.Context, kind Kind, year int) (int64, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()

	if m.NextNumberFunc != nil {
		return m.NextNumberFunc(ctx, kind, year)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		m.last = make(map[string]int64)
	}
	k := mockKey(kind, year)
	m.last[k]++
	return m.last[k], nil
}

// SetNextNumber implements Allocator.
func (m *MockAllocator) SetNextNumber(ctx context.Context, kind Kind, year int, last int64) error {
	if m.SetNextNumberFunc != nil {
		return m.SetNextNumberFunc(ctx, kind, year, last)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		m.last = make(map[string]int64)
	}
	m.last[mockKey(kind, year)] = last
	return nil
}

// Ensure compile-time interface compliance.
var _ Allocator = (*MockAllocator)(nil)
