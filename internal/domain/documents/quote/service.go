package quote

import (
	"context"
	"fmt"
	"time"

	"factura/internal/core/apperror"
	"factura/internal/core/id"
	"factura/internal/core/numerator"
	"factura/internal/core/tx"
	"factura/internal/domain"
	"factura/internal/domain/audit"
	"factura/internal/domain/documents"
	"factura/internal/domain/lifecycle"
	"factura/internal/domain/pricing"
	"factura/pkg/logger"
)

// Service is the quote engine: creation, numbering and status changes.
type Service struct {
	repo      Repository
	clients   documents.ClientDirectory
	numerator numerator.Allocator
	txManager tx.Manager
	opts      documents.Options
}

// NewService creates a new quote service.
func NewService(
	repo Repository,
	clients documents.ClientDirectory,
	allocator numerator.Allocator,
	txManager tx.Manager,
	opts ...documents.Option,
) *Service {
	return &Service{
		repo:      repo,
		clients:   clients,
		numerator: allocator,
		txManager: txManager,
		opts:      documents.NewOptions(opts...),
	}
}

// CreateInput carries the fields of a new quote.
type CreateInput struct {
	ClientID   id.ID
	Lines      []pricing.LineInput
	Notes      *string
	Currency   string
	ExpiryDate *time.Time
}

// Create validates the lines, computes totals and stores a DRAFT quote.
func (s *Service) Create(ctx context.Context, in CreateInput) (q *Quote, err error) {
	ctx, span := documents.StartSpan(ctx, "quote.Create", id.ID{})
	defer func() { documents.EndSpan(span, err) }()

	lines, err := pricing.NewLines(in.Lines)
	if err != nil {
		return nil, err
	}

	q = NewQuote(in.ClientID, in.Currency, in.Notes, in.ExpiryDate)
	q.SetLines(lines)
	if err := q.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.clients.Exists(ctx, q.ClientID)
		if err != nil {
			return fmt.Errorf("check client: %w", err)
		}
		if !exists {
			return apperror.NewNotFound("client", q.ClientID.String())
		}

		if err := s.repo.Create(ctx, q); err != nil {
			return fmt.Errorf("create quote: %w", err)
		}
		if err := s.repo.SaveLines(ctx, q.ID, q.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		return s.opts.Emit(ctx,
			audit.NewEntry(ctx, audit.EntityQuote, q.ID, audit.ActionCreate, map[string]any{
				"clientId":   q.ClientID,
				"grandTotal": q.GrandTotal.StringFixed(2),
			}),
			documents.Event{
				AggregateType: documents.AggregateQuote,
				AggregateID:   q.ID,
				Type:          documents.EventQuoteCreated,
				Payload:       map[string]any{"clientId": q.ClientID},
			})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "quote created", "id", q.ID, "lines", len(q.Lines))
	return q, nil
}

// GetByID retrieves a quote with its lines.
func (s *Service) GetByID(ctx context.Context, quoteID id.ID) (*Quote, error) {
	q, err := s.repo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, domain.NormalizeGetErr(err, "quote", quoteID.String())
	}

	lines, err := s.repo.GetLines(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	q.Lines = lines

	return q, nil
}

// List retrieves quotes, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Quote], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// Finalize assigns the permanent number and freezes the totals.
// Calling it on a numbered quote returns the quote unchanged without
// consuming a sequence value.
func (s *Service) Finalize(ctx context.Context, quoteID id.ID) (q *Quote, err error) {
	ctx, span := documents.StartSpan(ctx, "quote.Finalize", quoteID)
	defer func() { documents.EndSpan(span, err) }()

	issued := false
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, quoteID)
		if err != nil {
			return domain.NormalizeGetErr(err, "quote", quoteID.String())
		}
		q = doc

		lines, err := s.repo.GetLines(ctx, quoteID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		q.Lines = lines

		if q.IsNumbered() {
			return nil
		}

		now := s.opts.Now()
		n, err := s.numerator.NextNumber(ctx, numerator.KindQuote, now.Year())
		if err != nil {
			return fmt.Errorf("allocate quote number: %w", err)
		}

		q.ApplyTotals(pricing.SumLines(lines))
		q.AssignNumber(numerator.Format(numerator.KindQuote, now.Year(), n), now)

		if err := s.repo.Update(ctx, q); err != nil {
			return fmt.Errorf("update quote: %w", err)
		}
		issued = true

		return s.opts.Emit(ctx,
			audit.NewEntry(ctx, audit.EntityQuote, q.ID, audit.ActionFinalize, map[string]any{
				"number":     q.GetNumber(),
				"grandTotal": q.GrandTotal.StringFixed(2),
			}),
			documents.Event{
				AggregateType: documents.AggregateQuote,
				AggregateID:   q.ID,
				Type:          documents.EventQuoteFinalized,
				Payload:       map[string]any{"number": q.GetNumber()},
			})
	})
	if err != nil {
		return nil, err
	}

	if issued {
		logger.Info(ctx, "quote finalized", "id", q.ID, "number", q.GetNumber())
	}
	return q, nil
}

// SetStatus moves the quote along its lifecycle. Quotes carry no
// transition timestamps; the reason only ends up in the audit trail.
func (s *Service) SetStatus(ctx context.Context, quoteID id.ID, target lifecycle.QuoteStatus, reason *string) (q *Quote, err error) {
	ctx, span := documents.StartSpan(ctx, "quote.SetStatus", quoteID)
	defer func() { documents.EndSpan(span, err) }()

	var from lifecycle.QuoteStatus
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, quoteID)
		if err != nil {
			return domain.NormalizeGetErr(err, "quote", quoteID.String())
		}
		q = doc

		from = q.Status
		if !lifecycle.CanQuoteTransition(from, target) {
			return apperror.NewIllegalTransition("quote", string(from), string(target))
		}
		q.Status = target

		if err := s.repo.Update(ctx, q); err != nil {
			return fmt.Errorf("update quote: %w", err)
		}

		changes := map[string]any{"from": from, "to": target}
		if r := documents.TrimReason(reason); r != nil {
			changes["reason"] = *r
		}

		return s.opts.Emit(ctx,
			audit.NewEntry(ctx, audit.EntityQuote, q.ID, audit.ActionStatus, changes),
			documents.Event{
				AggregateType: documents.AggregateQuote,
				AggregateID:   q.ID,
				Type:          documents.EventQuoteStatusChanged,
				Payload:       map[string]any{"from": from, "to": target},
			})
	})
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	q.Lines = lines

	logger.Info(ctx, "quote status changed", "id", q.ID, "from", from, "to", target)
	return q, nil
}

// History returns the audit trail of a quote, newest first.
func (s *Service) History(ctx context.Context, quoteID id.ID, limit int) ([]audit.Entry, error) {
	if _, err := s.repo.GetByID(ctx, quoteID); err != nil {
		return nil, domain.NormalizeGetErr(err, "quote", quoteID.String())
	}
	return s.opts.Audit.History(ctx, audit.EntityQuote, quoteID, limit)
}
