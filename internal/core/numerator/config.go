// Package numerator provides domain contracts for document numbering.
package numerator

import (
	"fmt"
	"strconv"
)

// Kind identifies a numbering series. The value is the letter printed in
// the document number.
type Kind string

const (
	// KindQuote numbers quotes: 2025-Q00001.
	KindQuote Kind = "Q"
	// KindInvoice numbers invoices: 2025-F00001.
	KindInvoice Kind = "F"
)

// PadWidth is the zero-padded width of the sequence part.
const PadWidth = 5

// Valid reports whether k is a known series.
func (k Kind) Valid() bool {
	switch k {
	case KindQuote, KindInvoice:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}

// Format renders the canonical document number "{YYYY}-{K}{NNNNN}".
// The layout is printed on issued documents and must never change.
// Sequences beyond 99999 keep all their digits.
func Format(kind Kind, year int, n int64) string {
	return fmt.Sprintf("%04d-%s%0*d", year, kind, PadWidth, n)
}

// Parse splits a formatted number back into its parts.
func Parse(number string) (Kind, int, int64, error) {
	// shortest valid number: YYYY-K + PadWidth digits
	if len(number) < 6+PadWidth || number[4] != '-' {
		return "", 0, 0, fmt.Errorf("malformed document number %q", number)
	}

	year, err := strconv.Atoi(number[:4])
	if err != nil {
		return "", 0, 0, fmt.Errorf("malformed year in %q: %w", number, err)
	}

	kind := Kind(number[5:6])
	if !kind.Valid() {
		return "", 0, 0, fmt.Errorf("unknown series %q in %q", kind, number)
	}

	n, err := strconv.ParseInt(number[6:], 10, 64)
	if err != nil || n <= 0 {
		return "", 0, 0, fmt.Errorf("malformed sequence in %q", number)
	}

	return kind, year, n, nil
}
