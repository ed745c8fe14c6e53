package postgres

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factura/internal/core/entity"
	"factura/internal/core/id"
)

type sampleDocument struct {
	entity.Document

	Status string            `db:"status"`
	Lines  []entity.LineItem `db:"-"`
	Memo   string
}

func TestExtractDBColumns_Embedded(t *testing.T) {
	cols := ExtractDBColumns[sampleDocument]()

	for _, expected := range []string{
		"id", "version", "created_at", "updated_at",
		"client_id", "number", "issue_date", "currency", "notes",
		"sub_total", "tax_total", "grand_total", "status",
	} {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "Memo")
	assert.Equal(t, "id", cols[0])
}

func TestStructToMap(t *testing.T) {
	clientID := id.New()
	doc := &sampleDocument{
		Document: entity.NewDocument(clientID, "usd", nil),
		Status:   "DRAFT",
		Memo:     "ignored",
	}
	doc.ApplyTotals(entity.Totals{
		SubTotal:   decimal.RequireFromString("200.00"),
		TaxTotal:   decimal.RequireFromString("40.00"),
		GrandTotal: decimal.RequireFromString("240.00"),
	})

	m := StructToMap(doc)
	require.NotNil(t, m)

	assert.Equal(t, doc.ID, m["id"])
	assert.Equal(t, 1, m["version"])
	assert.Equal(t, clientID, m["client_id"])
	assert.Equal(t, "USD", m["currency"])
	assert.Equal(t, "DRAFT", m["status"])
	assert.True(t, decimal.RequireFromString("240").Equal(m["grand_total"].(decimal.Decimal)))
	assert.NotContains(t, m, "Memo")
	assert.Len(t, m, len(ExtractDBColumns[sampleDocument]()))
}

func TestStructToMap_NotAStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
	assert.Nil(t, StructToMap((*sampleDocument)(nil)))
}
