package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factura/internal/core/apperror"
)

func TestCanInvoiceTransition_ExactEdges(t *testing.T) {
	allowed := map[[2]InvoiceStatus]bool{
		{InvoiceDraft, InvoiceSent}:          true,
		{InvoiceSent, InvoiceValidated}:      true,
		{InvoiceSent, InvoiceRefused}:        true,
		{InvoiceSent, InvoiceCancelled}:      true,
		{InvoiceValidated, InvoiceCancelled}: true,
		{InvoiceRefused, InvoiceCancelled}:   true,
	}

	for _, from := range InvoiceStatuses {
		for _, to := range InvoiceStatuses {
			want := allowed[[2]InvoiceStatus{from, to}]
			assert.Equal(t, want, CanInvoiceTransition(from, to), "%s -> %s", from, to)
			assert.Equal(t, want, CanTransition(KindInvoice, string(from), string(to)))
		}
	}
}

func TestCanQuoteTransition_ExactEdges(t *testing.T) {
	allowed := map[[2]QuoteStatus]bool{
		{QuoteDraft, QuoteSent}:         true,
		{QuoteSent, QuoteAccepted}:      true,
		{QuoteSent, QuoteRefused}:       true,
		{QuoteSent, QuoteCancelled}:     true,
		{QuoteAccepted, QuoteCancelled}: true,
		{QuoteRefused, QuoteCancelled}:  true,
	}

	for _, from := range QuoteStatuses {
		for _, to := range QuoteStatuses {
			want := allowed[[2]QuoteStatus{from, to}]
			assert.Equal(t, want, CanQuoteTransition(from, to), "%s -> %s", from, to)
			assert.Equal(t, want, CanTransition(KindQuote, string(from), string(to)))
		}
	}
}

func TestCanTransition_Unknown(t *testing.T) {
	assert.False(t, CanTransition("order", "DRAFT", "SENT"))
	assert.False(t, CanTransition(KindInvoice, "ARCHIVED", "CANCELLED"))
	assert.False(t, CanTransition(KindQuote, "DRAFT", "CONVERTED"))
	assert.False(t, CanTransition(KindInvoice, "draft", "sent"))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(KindInvoice, "CANCELLED"))
	assert.True(t, IsTerminal(KindQuote, "CANCELLED"))
	assert.False(t, IsTerminal(KindQuote, "ACCEPTED"))
}

func TestParseStatus(t *testing.T) {
	s, err := ParseInvoiceStatus(" validated ")
	require.NoError(t, err)
	assert.Equal(t, InvoiceValidated, s)

	q, err := ParseQuoteStatus("Accepted")
	require.NoError(t, err)
	assert.Equal(t, QuoteAccepted, q)

	_, err = ParseQuoteStatus("VALIDATED")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = ParseInvoiceStatus("")
	assert.Error(t, err)
}
