// Package invoice provides the Invoice document and its engine.
package invoice

import (
	"context"
	"time"

	"factura/internal/core/apperror"
	"factura/internal/core/entity"
	"factura/internal/core/id"
	"factura/internal/domain/lifecycle"
	"factura/internal/domain/pricing"
)

// Invoice is a billing document. Once numbered it can no longer be
// deleted, only cancelled.
type Invoice struct {
	entity.Document

	Status  lifecycle.InvoiceStatus `db:"status" json:"status"`
	DueDate *time.Time              `db:"due_date" json:"dueDate"`

	// Transition timestamps, each set the first time the status is reached
	SentAt      *time.Time `db:"sent_at" json:"sentAt"`
	ValidatedAt *time.Time `db:"validated_at" json:"validatedAt"`
	RefusedAt   *time.Time `db:"refused_at" json:"refusedAt"`

	StatusReason *string `db:"status_reason" json:"statusReason"`

	Lines []entity.LineItem `db:"-" json:"lines"`
}

// NewInvoice creates a DRAFT invoice for a client.
func NewInvoice(clientID id.ID, currency string, notes *string, due *time.Time) *Invoice {
	return &Invoice{
		Document: entity.NewDocument(clientID, currency, notes),
		Status:   lifecycle.InvoiceDraft,
		DueDate:  due,
		Lines:    make([]entity.LineItem, 0),
	}
}

// SetLines attaches lines to the invoice and recomputes its totals.
func (inv *Invoice) SetLines(lines []entity.LineItem) {
	entity.AttachLines(inv.ID, lines)
	inv.Lines = lines
	inv.ApplyTotals(pricing.SumLines(lines))
}

// Validate implements entity.Validatable.
func (inv *Invoice) Validate(ctx context.Context) error {
	if err := inv.Document.Validate(ctx); err != nil {
		return err
	}
	if inv.DueDate != nil && inv.IssueDate != nil && inv.DueDate.Before(*inv.IssueDate) {
		return apperror.NewValidation("due date is before issue date").
			WithDetail("field", "dueDate")
	}
	return nil
}

// ApplyStatus performs the side effects of entering target.
// The caller has already checked the transition.
func (inv *Invoice) ApplyStatus(target lifecycle.InvoiceStatus, reason *string, now time.Time) {
	switch target {
	case lifecycle.InvoiceSent:
		if inv.SentAt == nil {
			inv.SentAt = &now
		}
	case lifecycle.InvoiceValidated:
		if inv.ValidatedAt == nil {
			inv.ValidatedAt = &now
		}
	case lifecycle.InvoiceRefused:
		if inv.RefusedAt == nil {
			inv.RefusedAt = &now
		}
		inv.StatusReason = reason
	case lifecycle.InvoiceCancelled:
		if reason != nil {
			inv.StatusReason = reason
		}
	}
	inv.Status = target
}

// CanDelete checks the delete guard: only unnumbered drafts may go.
func (inv *Invoice) CanDelete() error {
	if inv.Status != lifecycle.InvoiceDraft || inv.IsNumbered() {
		return apperror.NewBusinessRule(
			apperror.CodeInvoiceNotDeletable,
			"Only unnumbered draft invoices can be deleted. Cancel it instead.",
		).WithDetail("invoice_id", inv.ID.String()).
			WithDetail("status", string(inv.Status))
	}
	return nil
}
