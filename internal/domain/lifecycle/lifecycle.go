// Package lifecycle holds the status machines of quotes and invoices.
package lifecycle

import (
	"strings"

	"factura/internal/core/apperror"
)

// Kind is the document family a status belongs to.
type Kind string

const (
	KindQuote   Kind = "quote"
	KindInvoice Kind = "invoice"
)

// QuoteStatus is the lifecycle state of a quote.
type QuoteStatus string

const (
	QuoteDraft     QuoteStatus = "DRAFT"
	QuoteSent      QuoteStatus = "SENT"
	QuoteAccepted  QuoteStatus = "ACCEPTED"
	QuoteRefused   QuoteStatus = "REFUSED"
	QuoteCancelled QuoteStatus = "CANCELLED"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "DRAFT"
	InvoiceSent      InvoiceStatus = "SENT"
	InvoiceValidated InvoiceStatus = "VALIDATED"
	InvoiceRefused   InvoiceStatus = "REFUSED"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

// QuoteStatuses lists every quote status in lifecycle order.
var QuoteStatuses = []QuoteStatus{QuoteDraft, QuoteSent, QuoteAccepted, QuoteRefused, QuoteCancelled}

// InvoiceStatuses lists every invoice status in lifecycle order.
var InvoiceStatuses = []InvoiceStatus{InvoiceDraft, InvoiceSent, InvoiceValidated, InvoiceRefused, InvoiceCancelled}

// quoteTargets returns the statuses reachable from s in one step.
func quoteTargets(s QuoteStatus) []QuoteStatus {
	switch s {
	case QuoteDraft:
		return []QuoteStatus{QuoteSent}
	case QuoteSent:
		return []QuoteStatus{QuoteAccepted, QuoteRefused, QuoteCancelled}
	case QuoteAccepted:
		return []QuoteStatus{QuoteCancelled}
	case QuoteRefused:
		return []QuoteStatus{QuoteCancelled}
	case QuoteCancelled:
		return nil
	default:
		return nil
	}
}

// invoiceTargets returns the statuses reachable from s in one step.
func invoiceTargets(s InvoiceStatus) []InvoiceStatus {
	switch s {
	case InvoiceDraft:
		return []InvoiceStatus{InvoiceSent}
	case InvoiceSent:
		return []InvoiceStatus{InvoiceValidated, InvoiceRefused, InvoiceCancelled}
	case InvoiceValidated:
		return []InvoiceStatus{InvoiceCancelled}
	case InvoiceRefused:
		return []InvoiceStatus{InvoiceCancelled}
	case InvoiceCancelled:
		return nil
	default:
		return nil
	}
}

// CanQuoteTransition reports whether a quote may move from one status to another.
func CanQuoteTransition(from, to QuoteStatus) bool {
	for _, t := range quoteTargets(from) {
		if t == to {
			return true
		}
	}
	return false
}

// CanInvoiceTransition reports whether an invoice may move from one status to another.
func CanInvoiceTransition(from, to InvoiceStatus) bool {
	for _, t := range invoiceTargets(from) {
		if t == to {
			return true
		}
	}
	return false
}

// CanTransition is the untyped entry point. Unknown kinds or statuses
// are never allowed.
func CanTransition(kind Kind, from, to string) bool {
	switch kind {
	case KindQuote:
		return CanQuoteTransition(QuoteStatus(from), QuoteStatus(to))
	case KindInvoice:
		return CanInvoiceTransition(InvoiceStatus(from), InvoiceStatus(to))
	default:
		return false
	}
}

// IsTerminal reports whether no transition leaves the status.
func IsTerminal(kind Kind, status string) bool {
	switch kind {
	case KindQuote:
		return len(quoteTargets(QuoteStatus(status))) == 0
	case KindInvoice:
		return len(invoiceTargets(InvoiceStatus(status))) == 0
	default:
		return true
	}
}

// ParseQuoteStatus accepts a status name in any case.
func ParseQuoteStatus(s string) (QuoteStatus, error) {
	v := QuoteStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range QuoteStatuses {
		if v == known {
			return v, nil
		}
	}
	return "", apperror.NewValidation("unknown quote status").
		WithDetail("field", "status").
		WithDetail("value", s)
}

// ParseInvoiceStatus accepts a status name in any case.
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	v := InvoiceStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range InvoiceStatuses {
		if v == known {
			return v, nil
		}
	}
	return "", apperror.NewValidation("unknown invoice status").
		WithDetail("field", "status").
		WithDetail("value", s)
}

// String implements fmt.Stringer.
func (s QuoteStatus) String() string { return string(s) }

// String implements fmt.Stringer.
func (s InvoiceStatus) String() string { return string(s) }
