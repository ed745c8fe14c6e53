package numerator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		year int
		n    int64
		want string
	}{
		{"first quote", KindQuote, 2025, 1, "2025-Q00001"},
		{"first invoice", KindInvoice, 2025, 1, "2025-F00001"},
		{"padded", KindInvoice, 2026, 427, "2026-F00427"},
		{"full width", KindQuote, 2026, 99999, "2026-Q99999"},
		{"overflow keeps digits", KindQuote, 2026, 100000, "2026-Q100000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.kind, tt.year, tt.n))
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	kind, year, n, err := Parse(Format(KindInvoice, 2025, 42))
	require.NoError(t, err)
	assert.Equal(t, KindInvoice, kind)
	assert.Equal(t, 2025, year)
	assert.Equal(t, int64(42), n)
}

func TestParse_Rejects(t *testing.T) {
	for _, s := range []string{"", "2025-F", "2025F00001", "2025-X00001", "20A5-F00001", "2025-F0000x", "2025-F00000"} {
		t.Run(s, func(t *testing.T) {
			_, _, _, err := Parse(s)
			assert.Error(t, err)
		})
	}
}

func TestMockAllocator_CountsPerKey(t *testing.T) {
	m := &MockAllocator{}

	n1, _ := m.NextNumber(t.Context(), KindQuote, 2025)
	n2, _ := m.NextNumber(t.Context(), KindQuote, 2025)
	n3, _ := m.NextNumber(t.Context(), KindInvoice, 2025)
	n4, _ := m.NextNumber(t.Context(), KindQuote, 2026)

	assert.Equal(t, []int64{1, 2, 1, 1}, []int64{n1, n2, n3, n4})
	assert.Equal(t, 4, m.Calls)
}
