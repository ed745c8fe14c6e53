package invoice

import (
	"context"
	"fmt"
	"time"

	"factura/internal/core/apperror"
	"factura/internal/core/entity"
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

// Service is the invoice engine: creation, numbering, status changes and
// deletion of drafts.
type Service struct {
	repo      Repository
	clients   documents.ClientDirectory
	numerator numerator.Allocator
	txManager tx.Manager
	opts      documents.Options
}

// NewService creates a new invoice service.
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

// CreateInput carries the fields of a new invoice.
type CreateInput struct {
	ClientID id.ID
	Lines    []pricing.LineInput
	DueDate  *time.Time
	Notes    *string
	Currency string
}

// DraftInput is the header of an invoice built from existing lines.
type DraftInput struct {
	ClientID id.ID
	Currency string
	Notes    *string
	DueDate  *time.Time
}

// Create validates the lines, computes totals and stores a DRAFT invoice.
func (s *Service) Create(ctx context.Context, in CreateInput) (inv *Invoice, err error) {
	ctx, span := documents.StartSpan(ctx, "invoice.Create", id.ID{})
	defer func() { documents.EndSpan(span, err) }()

	lines, err := pricing.NewLines(in.Lines)
	if err != nil {
		return nil, err
	}

	inv = NewInvoice(in.ClientID, in.Currency, in.Notes, in.DueDate)
	inv.SetLines(lines)

	if err := s.create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// CreateFromLines stores a DRAFT invoice whose lines are verbatim copies of
// source: same positions and amounts, new ids. Amounts are not recomputed.
// It joins the transaction carried by ctx when there is one.
func (s *Service) CreateFromLines(ctx context.Context, in DraftInput, source []entity.LineItem) (*Invoice, error) {
	if len(source) == 0 {
		return nil, apperror.NewInvalidLineInput("lines", "at least one line is required")
	}

	inv := NewInvoice(in.ClientID, in.Currency, in.Notes, in.DueDate)
	lines := make([]entity.LineItem, len(source))
	for i, l := range source {
		lines[i] = l.CopyFor(inv.ID)
	}
	inv.Lines = lines
	inv.ApplyTotals(pricing.SumLines(lines))

	if err := s.create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) create(ctx context.Context, inv *Invoice) error {
	if err := inv.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.clients.Exists(ctx, inv.ClientID)
		if err != nil {
			return fmt.Errorf("check client: %w", err)
		}
		if !exists {
			return apperror.NewNotFound("client", inv.ClientID.String())
		}

		if err := s.repo.Create(ctx, inv); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		if err := s.repo.SaveLines(ctx, inv.ID, inv.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		return s.opts.Emit(ctx,
			audit.NewEntry(ctx, audit.EntityInvoice, inv.ID, audit.ActionCreate, map[string]any{
				"clientId":   inv.ClientID,
				"grandTotal": inv.GrandTotal.StringFixed(2),
			}),
			documents.Event{
				AggregateType: documents.AggregateInvoice,
				AggregateID:   inv.ID,
				Type:          documents.EventInvoiceCreated,
				Payload:       map[string]any{"clientId": inv.ClientID},
			})
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "invoice created", "id", inv.ID, "lines", len(inv.Lines))
	return nil
}

// GetByID retrieves an invoice with its lines.
func (s *Service) GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, domain.NormalizeGetErr(err, "invoice", invoiceID.String())
	}

	lines, err := s.repo.GetLines(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	inv.Lines = lines

	return inv, nil
}

// List retrieves invoices, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// Finalize assigns the permanent number and freezes the totals.
// Calling it on a numbered invoice returns the invoice unchanged without
// consuming a sequence value.
func (s *Service) Finalize(ctx context.Context, invoiceID id.ID) (inv *Invoice, err error) {
	ctx, span := documents.StartSpan(ctx, "invoice.Finalize", invoiceID)
	defer func() { documents.EndSpan(span, err) }()

	issued := false
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return domain.NormalizeGetErr(err, "invoice", invoiceID.String())
		}
		inv = doc

		lines, err := s.repo.GetLines(ctx, invoiceID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		inv.Lines = lines

		if inv.IsNumbered() {
			return nil
		}

		now := s.opts.Now()
		n, err := s.numerator.NextNumber(ctx, numerator.KindInvoice, now.Year())
		if err != nil {
			return fmt.Errorf("allocate invoice number: %w", err)
		}

		inv.ApplyTotals(pricing.SumLines(lines))
		inv.AssignNumber(numerator.Format(numerator.KindInvoice, now.Year(), n), now)

		if err := s.repo.Update(ctx, inv); err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}
		issued = true

		return s.opts.Emit(ctx,
			audit.NewEntry(ctx, audit.EntityInvoice, inv.ID, audit.ActionFinalize, map[string]any{
				"number":     inv.GetNumber(),
				"grandTotal": inv.GrandTotal.StringFixed(2),
			}),
			documents.Event{
				AggregateType: documents.AggregateInvoice,
				AggregateID:   inv.ID,
				Type:          documents.EventInvoiceFinalized,
				Payload: map[string]any{
					"number":     inv.GetNumber(),
					"grandTotal": inv.GrandTotal.StringFixed(2),
					"currency":   inv.Currency,
				},
			})
	})
	if err != nil {
		return nil, err
	}

	if issued {
		logger.Info(ctx, "invoice finalized", "id", inv.ID, "number", inv.GetNumber())
	}
	return inv, nil
}

// SetStatus moves the invoice along its lifecycle and stamps the
// transition timestamps. Reasons are trimmed; a blank reason is absent.
func (s *Service) SetStatus(ctx context.Context, invoiceID id.ID, target lifecycle.InvoiceStatus, reason *string) (inv *Invoice, err error) {
	ctx, span := documents.StartSpan(ctx, "invoice.SetStatus", invoiceID)
	defer func() { documents.EndSpan(span, err) }()

	reason = documents.TrimReason(reason)

	var from lifecycle.InvoiceStatus
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return domain.NormalizeGetErr(err, "invoice", invoiceID.String())
		}
		inv = doc

		from = inv.Status
		if !lifecycle.CanInvoiceTransition(from, target) {
			return apperror.NewIllegalTransition("invoice", string(from), string(target))
		}
		inv.ApplyStatus(target, reason, s.opts.Now())

		if err := s.repo.Update(ctx, inv); err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}

		changes := map[string]any{"from": from, "to": target}
		if reason != nil {
			changes["reason"] = *reason
		}

		return s.opts.Emit(ctx,
			audit.NewEntry(ctx, audit.EntityInvoice, inv.ID, audit.ActionStatus, changes),
			documents.Event{
				AggregateType: documents.AggregateInvoice,
				AggregateID:   inv.ID,
				Type:          documents.EventInvoiceStatusChanged,
				Payload:       changes,
			})
	})
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	inv.Lines = lines

	logger.Info(ctx, "invoice status changed", "id", inv.ID, "from", from, "to", target)
	return inv, nil
}

// Delete hard-deletes an unnumbered draft invoice and its lines.
// Any other invoice fails with INVOICE_NOT_DELETABLE.
func (s *Service) Delete(ctx context.Context, invoiceID id.ID) (err error) {
	ctx, span := documents.StartSpan(ctx, "invoice.Delete", invoiceID)
	defer func() { documents.EndSpan(span, err) }()

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.repo.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return domain.NormalizeGetErr(err, "invoice", invoiceID.String())
		}
		if err := inv.CanDelete(); err != nil {
			return err
		}

		if err := s.repo.Delete(ctx, invoiceID); err != nil {
			return fmt.Errorf("delete invoice: %w", err)
		}

		return s.opts.Emit(ctx,
			audit.NewEntry(ctx, audit.EntityInvoice, invoiceID, audit.ActionDelete, nil),
			documents.Event{
				AggregateType: documents.AggregateInvoice,
				AggregateID:   invoiceID,
				Type:          documents.EventInvoiceDeleted,
			})
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "invoice deleted", "id", invoiceID)
	return nil
}

// History returns the audit trail of an invoice, newest first.
func (s *Service) History(ctx context.Context, invoiceID id.ID, limit int) ([]audit.Entry, error) {
	if _, err := s.repo.GetByID(ctx, invoiceID); err != nil {
		return nil, domain.NormalizeGetErr(err, "invoice", invoiceID.String())
	}
	return s.opts.Audit.History(ctx, audit.EntityInvoice, invoiceID, limit)
}
