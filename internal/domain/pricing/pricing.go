// Package pricing computes line item amounts and document totals.
//
// Every line is rounded to cents on its own (half away from zero) and the
// document totals are plain sums of the stored line amounts. Totals are
// never rounded a second time, so a document always reconciles to the cent
// with its printed lines.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"factura/internal/core/apperror"
	"factura/internal/core/entity"
	"factura/internal/core/id"
	"factura/internal/core/types"
)

// Amounts are the three derived values stored on a line.
type Amounts struct {
	HT  decimal.Decimal
	Tax decimal.Decimal
	TTC decimal.Decimal
}

// Totals is the sum of the line amounts of a document.
type Totals = entity.Totals

// LineInput is the caller-provided part of a line.
type LineInput struct {
	Designation string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	VATRate     decimal.Decimal
}

// ComputeLine derives the HT, tax and TTC amounts of a line.
func ComputeLine(quantity, unitPrice, vatRate decimal.Decimal) (Amounts, error) {
	if !quantity.IsPositive() {
		return Amounts{}, apperror.NewInvalidLineInput("quantity", "quantity must be greater than zero")
	}
	if unitPrice.IsNegative() {
		return Amounts{}, apperror.NewInvalidLineInput("unitPrice", "unit price must not be negative")
	}
	if !types.IsPercent(vatRate) {
		return Amounts{}, apperror.NewInvalidLineInput("vatRate", "VAT rate must be between 0 and 100")
	}

	ht := types.Round2(quantity.Mul(unitPrice))
	tax := types.Round2(types.PercentOf(ht, vatRate))

	return Amounts{
		HT:  ht,
		Tax: tax,
		TTC: types.Round2(ht.Add(tax)),
	}, nil
}

// NewLine validates the input and builds a line with computed amounts.
// The designation is trimmed and cut to entity.MaxDesignationLen characters.
// Position and owning document are set by the caller.
func NewLine(in LineInput) (entity.LineItem, error) {
	designation := strings.TrimSpace(in.Designation)
	if designation == "" {
		return entity.LineItem{}, apperror.NewInvalidLineInput("designation", "designation is required")
	}

	amounts, err := ComputeLine(in.Quantity, in.UnitPrice, in.VATRate)
	if err != nil {
		return entity.LineItem{}, err
	}

	return entity.LineItem{
		ID:           id.New(),
		Designation:  entity.Truncate(designation, entity.MaxDesignationLen),
		Quantity:     in.Quantity,
		UnitPrice:    in.UnitPrice,
		VATRate:      in.VATRate,
		LineTotalHT:  amounts.HT,
		LineTax:      amounts.Tax,
		LineTotalTTC: amounts.TTC,
	}, nil
}

// NewLines builds every line of a document, numbering positions from 1.
// At least one line is required; errors carry the 1-based line index.
func NewLines(inputs []LineInput) ([]entity.LineItem, error) {
	if len(inputs) == 0 {
		return nil, apperror.NewInvalidLineInput("lines", "at least one line is required")
	}

	lines := make([]entity.LineItem, 0, len(inputs))
	for i, in := range inputs {
		line, err := NewLine(in)
		if err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				return nil, appErr.WithDetail("line", i+1)
			}
			return nil, err
		}
		line.Position = i + 1
		lines = append(lines, line)
	}
	return lines, nil
}

// SumLines adds up the stored line amounts without re-rounding.
func SumLines(lines []entity.LineItem) Totals {
	t := Totals{
		SubTotal:   decimal.Zero,
		TaxTotal:   decimal.Zero,
		GrandTotal: decimal.Zero,
	}
	for _, l := range lines {
		t.SubTotal = t.SubTotal.Add(l.LineTotalHT)
		t.TaxTotal = t.TaxTotal.Add(l.LineTax)
		t.GrandTotal = t.GrandTotal.Add(l.LineTotalTTC)
	}
	return t
}
