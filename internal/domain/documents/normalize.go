package documents

import "strings"

// TrimReason trims a status reason; blank becomes nil.
func TrimReason(reason *string) *string {
	if reason == nil {
		return nil
	}
	v := strings.TrimSpace(*reason)
	if v == "" {
		return nil
	}
	return &v
}

// ConversionNotes is the note put on an invoice created from a quote.
func ConversionNotes(quoteNumber string) string {
	return strings.TrimSpace("Issue du devis " + quoteNumber)
}
