// Package types provides fixed-point numeric types for money, quantities and rates.
package types

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits kept on stored amounts.
const MoneyScale int32 = 2

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Quantity is a line quantity (may be fractional, e.g. 1.5 days).
type Quantity = decimal.Decimal

// Rate is a percentage in the 0..100 range.
type Rate = decimal.Decimal

var hundred = decimal.NewFromInt(100)

// NewMoneyFromString creates a Money value from a string.
func NewMoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return d, nil
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Round2 rounds to cents, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// PercentOf returns amount × rate / 100 without rounding.
func PercentOf(amount Money, rate Rate) Money {
	return amount.Mul(rate).Div(hundred)
}

// IsPercent reports whether rate lies in [0, 100].
func IsPercent(rate Rate) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(hundred)
}

// FormatMoney renders an amount with exactly two fractional digits.
func FormatMoney(d Money) string {
	return d.StringFixed(MoneyScale)
}
