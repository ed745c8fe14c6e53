// Package numerator provides the PostgreSQL sequence allocator behind
// document numbering. It implements core/numerator.Allocator.
package numerator

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	corenumerator "factura/internal/core/numerator"
)

// Querier is the subset of a transaction the allocator needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxSource returns the transaction carried by ctx, or nil.
type TxSource func(ctx context.Context) Querier

// Service allocates numbers from document_sequences.
//
// The increment is an UPSERT inside the caller's transaction: the row lock
// it takes serializes concurrent finalizations of the same (kind, year)
// until commit, and a rollback gives the number back.
type Service struct {
	txFrom TxSource
}

var _ corenumerator.Allocator = (*Service)(nil)

// New creates an allocator reading the active transaction through txFrom.
func New(txFrom TxSource) *Service {
	return &Service{txFrom: txFrom}
}

func (s *Service) querier(ctx context.Context, op string) (Querier, error) {
	q := s.txFrom(ctx)
	if q == nil {
		return nil, fmt.Errorf("%s requires transaction context", op)
	}
	return q, nil
}

// NextNumber increments and returns the counter of (kind, year), creating
// it at 1 on first use.
func (s *Service) NextNumber(ctx context.Context, kind corenumerator.Kind, year int) (int64, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("unknown numbering series %q", kind)
	}
	q, err := s.querier(ctx, "allocate number")
	if err != nil {
		return 0, err
	}

	var n int64
	err = q.QueryRow(ctx, `
		INSERT INTO document_sequences (kind, year, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (kind, year) DO UPDATE SET last_number = document_sequences.last_number + 1
		RETURNING last_number
	`, string(kind), year).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next %s number for %d: %w", kind, year, err)
	}
	return n, nil
}

// SetNextNumber forces the last issued value of (kind, year). Used when
// importing documents numbered elsewhere.
func (s *Service) SetNextNumber(ctx context.Context, kind corenumerator.Kind, year int, last int64) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown numbering series %q", kind)
	}
	if last < 0 {
		return fmt.Errorf("sequence value must not be negative: %d", last)
	}
	q, err := s.querier(ctx, "set sequence")
	if err != nil {
		return err
	}

	var stored int64
	err = q.QueryRow(ctx, `
		INSERT INTO document_sequences (kind, year, last_number)
		VALUES ($1, $2, $3)
		ON CONFLICT (kind, year) DO UPDATE SET last_number = EXCLUDED.last_number
		RETURNING last_number
	`, string(kind), year, last).Scan(&stored)
	if err != nil {
		return fmt.Errorf("set %s sequence for %d: %w", kind, year, err)
	}
	return nil
}
