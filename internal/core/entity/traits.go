package entity

import (
	"context"
	"strings"
	"unicode/utf8"

	"factura/internal/core/apperror"
)

const (
	// DefaultCurrency is used when a document is created without one.
	DefaultCurrency = "EUR"
	// MaxCurrencyLen bounds the stored currency code.
	MaxCurrencyLen = 8
	// MaxNotesLen bounds free-text notes.
	MaxNotesLen = 10000
)

// CurrencyAware is a trait for entities that carry an ISO-like currency code.
type CurrencyAware struct {
	Currency string `db:"currency" json:"currency"`
}

// ValidateCurrency ensures a currency is set.
func (c *CurrencyAware) ValidateCurrency(ctx context.Context) error {
	if c.Currency == "" {
		return apperror.NewValidation("currency is required").
			WithDetail("field", "currency")
	}
	if utf8.RuneCountInString(c.Currency) > MaxCurrencyLen {
		return apperror.NewValidation("currency code is too long").
			WithDetail("field", "currency")
	}
	return nil
}

// GetCurrency returns the currency code.
func (c *CurrencyAware) GetCurrency() string {
	return c.Currency
}

// NormalizeCurrency trims and upper-cases a currency code, falling back to
// DefaultCurrency, and cuts it to MaxCurrencyLen.
func NormalizeCurrency(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return DefaultCurrency
	}
	return Truncate(s, MaxCurrencyLen)
}

// NormalizeNotes trims notes and cuts them to MaxNotesLen characters.
// Blank notes become nil.
func NormalizeNotes(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	v = Truncate(v, MaxNotesLen)
	return &v
}

// NormalizeText trims an optional free-text field; blank becomes nil.
func NormalizeText(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// Truncate cuts s to at most n characters (runes, not bytes).
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
