// Package reports provides the back office dashboard.
package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"factura/internal/core/id"
	"factura/internal/domain/lifecycle"
)

// RecentInvoicesLimit is the number of invoices shown on the dashboard.
const RecentInvoicesLimit = 5

// Dashboard holds the headline figures of the back office.
type Dashboard struct {
	InvoiceCount int64 `json:"invoiceCount"`

	// ToCollect counts invoices sent and not yet settled (status SENT)
	ToCollectCount  int64           `json:"toCollectCount"`
	ToCollectAmount decimal.Decimal `json:"toCollectAmount"`

	QuoteCount  int64 `json:"quoteCount"`
	ClientCount int64 `json:"clientCount"`

	RecentInvoices []InvoiceSummary `json:"recentInvoices"`
}

// InvoiceSummary is an invoice row of the dashboard.
type InvoiceSummary struct {
	ID         id.ID                   `db:"id" json:"id"`
	Number     *string                 `db:"number" json:"number"`
	ClientID   id.ID                   `db:"client_id" json:"clientId"`
	ClientName string                  `db:"client_name" json:"clientName"`
	Status     lifecycle.InvoiceStatus `db:"status" json:"status"`
	Currency   string                  `db:"currency" json:"currency"`
	GrandTotal decimal.Decimal         `db:"grand_total" json:"grandTotal"`
	CreatedAt  time.Time               `db:"created_at" json:"createdAt"`
}
