package entity

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"factura/internal/core/apperror"
	"factura/internal/core/id"
)

// Totals are the document amounts derived from its lines.
type Totals struct {
	SubTotal   decimal.Decimal `json:"subTotal"`
	TaxTotal   decimal.Decimal `json:"taxTotal"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

// Document is the header shared by quotes and invoices.
type Document struct {
	BaseEntity

	ClientID id.ID `db:"client_id" json:"clientId"`

	// Number is nil until the document is finalized, then permanent.
	Number *string `db:"number" json:"number"`

	// IssueDate is set together with Number.
	IssueDate *time.Time `db:"issue_date" json:"issueDate"`

	CurrencyAware

	Notes *string `db:"notes" json:"notes"`

	SubTotal   decimal.Decimal `db:"sub_total" json:"subTotal"`
	TaxTotal   decimal.Decimal `db:"tax_total" json:"taxTotal"`
	GrandTotal decimal.Decimal `db:"grand_total" json:"grandTotal"`
}

// NewDocument creates an unnumbered document header for a client.
// Currency and notes are normalized.
func NewDocument(clientID id.ID, currency string, notes *string) Document {
	return Document{
		BaseEntity:    NewBaseEntity(),
		ClientID:      clientID,
		CurrencyAware: CurrencyAware{Currency: NormalizeCurrency(currency)},
		Notes:         NormalizeNotes(notes),
		SubTotal:      decimal.Zero,
		TaxTotal:      decimal.Zero,
		GrandTotal:    decimal.Zero,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if id.IsNil(d.ClientID) {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientId")
	}
	return d.ValidateCurrency(ctx)
}

// IsNumbered reports whether the document has been finalized.
func (d *Document) IsNumbered() bool {
	return d.Number != nil && *d.Number != ""
}

// GetNumber returns the document number or "" when not yet assigned.
func (d *Document) GetNumber() string {
	if d.Number == nil {
		return ""
	}
	return *d.Number
}

// AssignNumber sets the permanent number and the issue date.
// It is a no-op on an already numbered document.
func (d *Document) AssignNumber(number string, issued time.Time) {
	if d.IsNumbered() {
		return
	}
	d.Number = &number
	d.IssueDate = &issued
}

// ApplyTotals stores the amounts derived from the lines.
func (d *Document) ApplyTotals(t Totals) {
	d.SubTotal = t.SubTotal
	d.TaxTotal = t.TaxTotal
	d.GrandTotal = t.GrandTotal
}

// Totals returns the stored document amounts.
func (d *Document) Totals() Totals {
	return Totals{SubTotal: d.SubTotal, TaxTotal: d.TaxTotal, GrandTotal: d.GrandTotal}
}
