package entity

import (
	"github.com/shopspring/decimal"

	"factura/internal/core/id"
)

// MaxDesignationLen is the longest designation kept on a line.
const MaxDesignationLen = 500

// LineItem is the shape shared by quote lines and invoice lines.
// The three amounts are computed once and stored; they are never
// recomputed from a different rounding rule.
type LineItem struct {
	ID         id.ID `db:"id" json:"id"`
	DocumentID id.ID `db:"document_id" json:"-"`

	// Position is the 1-based order of the line in its document.
	Position int `db:"position" json:"position"`

	Designation string          `db:"designation" json:"designation"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unitPrice"`
	VATRate     decimal.Decimal `db:"vat_rate" json:"vatRate"`

	LineTotalHT  decimal.Decimal `db:"line_total_ht" json:"lineTotalHt"`
	LineTax      decimal.Decimal `db:"line_tax" json:"lineTax"`
	LineTotalTTC decimal.Decimal `db:"line_total_ttc" json:"lineTotalTtc"`
}

// CopyFor returns a verbatim copy of the line attached to another document.
// Amounts are not recomputed.
func (l LineItem) CopyFor(documentID id.ID) LineItem {
	l.ID = id.New()
	l.DocumentID = documentID
	return l
}

// AttachLines sets the owning document and the 1-based position of each line.
func AttachLines(documentID id.ID, lines []LineItem) {
	for i := range lines {
		lines[i].DocumentID = documentID
		lines[i].Position = i + 1
	}
}
