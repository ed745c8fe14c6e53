package pricing

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factura/internal/core/apperror"
	"factura/internal/core/entity"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeLine(t *testing.T) {
	tests := []struct {
		name                     string
		qty, price, rate         string
		wantHT, wantTax, wantTTC string
	}{
		{"consulting", "2", "100.00", "20", "200.00", "40.00", "240.00"},
		{"zero rate", "3", "19.99", "0", "59.97", "0.00", "59.97"},
		{"half up on ht", "1", "0.125", "0", "0.13", "0.00", "0.13"},
		{"half up on tax", "1", "0.25", "10", "0.25", "0.03", "0.28"},
		{"fractional quantity", "1.5", "333.33", "5.5", "500.00", "27.50", "527.50"},
		{"free line", "1", "0", "20", "0.00", "0.00", "0.00"},
		{"full rate", "1", "10", "100", "10.00", "10.00", "20.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeLine(d(tt.qty), d(tt.price), d(tt.rate))
			require.NoError(t, err)

			assert.True(t, d(tt.wantHT).Equal(got.HT), "ht: %s", got.HT)
			assert.True(t, d(tt.wantTax).Equal(got.Tax), "tax: %s", got.Tax)
			assert.True(t, d(tt.wantTTC).Equal(got.TTC), "ttc: %s", got.TTC)
			assert.True(t, got.HT.Add(got.Tax).Equal(got.TTC))
		})
	}
}

func TestComputeLine_Rejects(t *testing.T) {
	tests := []struct {
		name             string
		qty, price, rate string
		field            string
	}{
		{"zero quantity", "0", "10", "20", "quantity"},
		{"negative quantity", "-1", "10", "20", "quantity"},
		{"negative price", "1", "-0.01", "20", "unitPrice"},
		{"negative rate", "1", "10", "-1", "vatRate"},
		{"rate above 100", "1", "10", "100.01", "vatRate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeLine(d(tt.qty), d(tt.price), d(tt.rate))
			require.Error(t, err)

			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeInvalidLineInput, appErr.Code)
			assert.Equal(t, tt.field, appErr.Details["field"])
		})
	}
}

func TestNewLine_Designation(t *testing.T) {
	_, err := NewLine(LineInput{Designation: "   ", Quantity: d("1"), UnitPrice: d("1"), VATRate: d("0")})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidLineInput))

	line, err := NewLine(LineInput{
		Designation: "  " + strings.Repeat("x", 600),
		Quantity:    d("1"),
		UnitPrice:   d("1"),
		VATRate:     d("0"),
	})
	require.NoError(t, err)
	assert.Len(t, line.Designation, entity.MaxDesignationLen)
}

func TestNewLines(t *testing.T) {
	_, err := NewLines(nil)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "lines", appErr.Details["field"])

	_, err = NewLines([]LineInput{
		{Designation: "A", Quantity: d("1"), UnitPrice: d("1"), VATRate: d("20")},
		{Designation: "B", Quantity: d("0"), UnitPrice: d("1"), VATRate: d("20")},
	})
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 2, appErr.Details["line"])
	assert.Equal(t, "quantity", appErr.Details["field"])

	lines, err := NewLines([]LineInput{
		{Designation: "A", Quantity: d("1"), UnitPrice: d("1"), VATRate: d("20")},
		{Designation: "B", Quantity: d("2"), UnitPrice: d("1"), VATRate: d("20")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, lines[0].Position)
	assert.Equal(t, 2, lines[1].Position)
	assert.NotEqual(t, lines[0].ID, lines[1].ID)
}

func TestSumLines_NoReRounding(t *testing.T) {
	// three lines of 0.333 rounded individually to 0.33: the sum is 0.99, not 1.00
	var lines []entity.LineItem
	for i := 0; i < 3; i++ {
		line, err := NewLine(LineInput{Designation: "third", Quantity: d("1"), UnitPrice: d("0.333"), VATRate: d("0")})
		require.NoError(t, err)
		lines = append(lines, line)
	}

	totals := SumLines(lines)
	assert.Equal(t, "0.99", totals.SubTotal.StringFixed(2))
	assert.True(t, totals.SubTotal.Add(totals.TaxTotal).Equal(totals.GrandTotal))

	empty := SumLines(nil)
	assert.True(t, empty.GrandTotal.IsZero())
}
