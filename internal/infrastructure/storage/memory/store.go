// Package memory provides an in-process storage driver.
//
// Transactions are serialized by a single mutex: a transaction sees no
// concurrent writer, and a failed transaction restores the snapshot taken
// when it started. Numbers, links and documents therefore commit or roll
// back together exactly as with PostgreSQL. Data is lost on restart; the
// driver serves development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"factura/internal/core/apperror"
	"factura/internal/core/entity"
	"factura/internal/core/id"
	"factura/internal/core/numerator"
	"factura/internal/domain/audit"
	"factura/internal/domain/catalogs/client"
	"factura/internal/domain/documents/invoice"
	"factura/internal/domain/documents/quote"
	"factura/internal/infrastructure/outbox"
	"factura/pkg/logger"
)

type txKey struct{}

type seqKey struct {
	kind numerator.Kind
	year int
}

// state is everything the store holds. Values are stored by value so a
// snapshot is a copy of the maps.
type state struct {
	clients      map[id.ID]client.Client
	quotes       map[id.ID]quote.Quote
	quoteLines   map[id.ID][]entity.LineItem
	invoices     map[id.ID]invoice.Invoice
	invoiceLines map[id.ID][]entity.LineItem
	sequences    map[seqKey]int64
	audit        []audit.Entry
	outbox       []outbox.Message
	idempotency  map[string]idempotencyRecord
}

func newState() *state {
	return &state{
		clients:      make(map[id.ID]client.Client),
		quotes:       make(map[id.ID]quote.Quote),
		quoteLines:   make(map[id.ID][]entity.LineItem),
		invoices:     make(map[id.ID]invoice.Invoice),
		invoiceLines: make(map[id.ID][]entity.LineItem),
		sequences:    make(map[seqKey]int64),
		idempotency:  make(map[string]idempotencyRecord),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.clients {
		c.clients[k] = v
	}
	for k, v := range s.quotes {
		c.quotes[k] = v
	}
	for k, v := range s.quoteLines {
		c.quoteLines[k] = cloneLines(v)
	}
	for k, v := range s.invoices {
		c.invoices[k] = v
	}
	for k, v := range s.invoiceLines {
		c.invoiceLines[k] = cloneLines(v)
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	c.audit = append([]audit.Entry(nil), s.audit...)
	c.outbox = append([]outbox.Message(nil), s.outbox...)
	for k, v := range s.idempotency {
		c.idempotency[k] = v
	}
	return c
}

func cloneLines(lines []entity.LineItem) []entity.LineItem {
	if lines == nil {
		return nil
	}
	out := make([]entity.LineItem, len(lines))
	copy(out, lines)
	return out
}

// Store is the in-memory database. It implements tx.Manager.
type Store struct {
	txMu sync.Mutex
	data *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{data: newState()}
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// RunInTransaction executes fn within a transaction.
// If ctx already carries a transaction of this store, fn joins it.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapshot := s.data.clone()
	txCtx := context.WithValue(ctx, txKey{}, s)

	defer func() {
		if p := recover(); p != nil {
			s.data = snapshot
			logger.Error(ctx, "panic in memory transaction, rolled back", "panic", p)
			panic(p)
		}
		if err != nil {
			s.data = snapshot
		}
	}()

	return fn(txCtx)
}

// ReadOnly executes fn in a transaction that is always rolled back.
func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapshot := s.data.clone()
	defer func() { s.data = snapshot }()

	return fn(context.WithValue(ctx, txKey{}, s))
}

// view runs fn against the data, inside the caller's transaction when there
// is one and under the store lock otherwise.
func (s *Store) view(ctx context.Context, fn func(st *state) error) error {
	if s.inTx(ctx) {
		return fn(s.data)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(s.data)
}

// requireTx runs fn only inside a transaction of this store.
func (s *Store) requireTx(ctx context.Context, op string, fn func(st *state) error) error {
	if !s.inTx(ctx) {
		return fmt.Errorf("%s requires transaction context", op)
	}
	return fn(s.data)
}

// Clients returns the client repository.
func (s *Store) Clients() *ClientRepo { return &ClientRepo{store: s} }

// Quotes returns the quote repository.
func (s *Store) Quotes() *QuoteRepo { return &QuoteRepo{store: s} }

// Invoices returns the invoice repository.
func (s *Store) Invoices() *InvoiceRepo { return &InvoiceRepo{store: s} }

// Sequences returns the numbering allocator.
func (s *Store) Sequences() *SequenceAllocator { return &SequenceAllocator{store: s} }

// Audit returns the audit log.
func (s *Store) Audit() *AuditLog { return &AuditLog{store: s} }

// Outbox returns the event outbox.
func (s *Store) Outbox() *Outbox { return &Outbox{store: s} }

// Reports returns the report repository.
func (s *Store) Reports() *ReportRepo { return &ReportRepo{store: s} }

// Idempotency returns the idempotency key store.
func (s *Store) Idempotency(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{store: s, ttl: ttl}
}

func versionConflict(entityName string, entityID id.ID) error {
	return apperror.NewPersistenceConflict(entityName, entityID.String())
}
