package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"factura/internal/core/entity"
	"factura/internal/core/id"
	"factura/internal/domain/documents/invoice"
	"factura/internal/domain/documents/quote"
	"factura/internal/domain/pricing"
	"factura/internal/domain/reports"
)

// --- Request DTOs ---

// LineRequest is one line of a create request. Numbers may be sent as JSON
// numbers or strings.
type LineRequest struct {
	Designation string          `json:"designation"`
	Quantity    decimal.Decimal `json:"quantity" binding:"decimal_gt0"`
	UnitPrice   decimal.Decimal `json:"unitPrice" binding:"decimal_gte0"`
	VATRate     decimal.Decimal `json:"vatRate" binding:"percent"`
}

// CreateQuoteRequest represents a request to create a quote.
type CreateQuoteRequest struct {
	ClientID   string        `json:"clientId" binding:"required"`
	Lines      []LineRequest `json:"lines" binding:"dive"`
	Notes      *string       `json:"notes"`
	Currency   string        `json:"currency" binding:"omitempty,alpha,max=8"`
	ExpiryDate *time.Time    `json:"expiryDate"`
}

// ToInput converts request to the engine input.
func (r *CreateQuoteRequest) ToInput(clientID id.ID) quote.CreateInput {
	return quote.CreateInput{
		ClientID:   clientID,
		Lines:      toLineInputs(r.Lines),
		Notes:      r.Notes,
		Currency:   r.Currency,
		ExpiryDate: r.ExpiryDate,
	}
}

// CreateInvoiceRequest represents a request to create an invoice.
type CreateInvoiceRequest struct {
	ClientID string        `json:"clientId" binding:"required"`
	Lines    []LineRequest `json:"lines" binding:"dive"`
	DueDate  *time.Time    `json:"dueDate"`
	Notes    *string       `json:"notes"`
	Currency string        `json:"currency" binding:"omitempty,alpha,max=8"`
}

// ToInput converts request to the engine input.
func (r *CreateInvoiceRequest) ToInput(clientID id.ID) invoice.CreateInput {
	return invoice.CreateInput{
		ClientID: clientID,
		Lines:    toLineInputs(r.Lines),
		DueDate:  r.DueDate,
		Notes:    r.Notes,
		Currency: r.Currency,
	}
}

func toLineInputs(lines []LineRequest) []pricing.LineInput {
	out := make([]pricing.LineInput, 0, len(lines))
	for _, l := range lines {
		out = append(out, pricing.LineInput{
			Designation: l.Designation,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			VATRate:     l.VATRate,
		})
	}
	return out
}

// SetStatusRequest moves a document to another status.
type SetStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Reason *string `json:"reason"`
}

// --- Response DTOs ---

// Money renders an amount with exactly two decimals.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// LineResponse is a stored document line.
type LineResponse struct {
	ID           string `json:"id"`
	Position     int    `json:"position"`
	Designation  string `json:"designation"`
	Quantity     string `json:"quantity"`
	UnitPrice    string `json:"unitPrice"`
	VATRate      string `json:"vatRate"`
	LineTotalHT  string `json:"lineTotalHt"`
	LineTax      string `json:"lineTax"`
	LineTotalTTC string `json:"lineTotalTtc"`
}

func fromLines(lines []entity.LineItem) []LineResponse {
	out := make([]LineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, LineResponse{
			ID:           l.ID.String(),
			Position:     l.Position,
			Designation:  l.Designation,
			Quantity:     l.Quantity.String(),
			UnitPrice:    l.UnitPrice.String(),
			VATRate:      l.VATRate.String(),
			LineTotalHT:  Money(l.LineTotalHT),
			LineTax:      Money(l.LineTax),
			LineTotalTTC: Money(l.LineTotalTTC),
		})
	}
	return out
}

// DocumentResponse contains the header fields shared by quotes and invoices.
type DocumentResponse struct {
	ID         string     `json:"id"`
	Version    int        `json:"version"`
	ClientID   string     `json:"clientId"`
	Number     *string    `json:"number"`
	IssueDate  *time.Time `json:"issueDate"`
	Currency   string     `json:"currency"`
	Notes      *string    `json:"notes"`
	SubTotal   string     `json:"subTotal"`
	TaxTotal   string     `json:"taxTotal"`
	GrandTotal string     `json:"grandTotal"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// FromDocument creates DocumentResponse from entity.Document.
func FromDocument(d entity.Document) DocumentResponse {
	return DocumentResponse{
		ID:         d.ID.String(),
		Version:    d.Version,
		ClientID:   d.ClientID.String(),
		Number:     d.Number,
		IssueDate:  d.IssueDate,
		Currency:   d.Currency,
		Notes:      d.Notes,
		SubTotal:   Money(d.SubTotal),
		TaxTotal:   Money(d.TaxTotal),
		GrandTotal: Money(d.GrandTotal),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// QuoteResponse is the API view of a quote.
type QuoteResponse struct {
	DocumentResponse
	Status     string         `json:"status"`
	ExpiryDate *time.Time     `json:"expiryDate"`
	InvoiceID  *string        `json:"invoiceId"`
	Lines      []LineResponse `json:"lines,omitempty"`
}

// FromQuote maps a quote. Lines are omitted when not loaded.
func FromQuote(q *quote.Quote) QuoteResponse {
	resp := QuoteResponse{
		DocumentResponse: FromDocument(q.Document),
		Status:           q.Status.String(),
		ExpiryDate:       q.ExpiryDate,
		Lines:            fromLines(q.Lines),
	}
	if q.IsConverted() {
		s := q.InvoiceID.String()
		resp.InvoiceID = &s
	}
	return resp
}

// InvoiceResponse is the API view of an invoice.
type InvoiceResponse struct {
	DocumentResponse
	Status       string         `json:"status"`
	DueDate      *time.Time     `json:"dueDate"`
	SentAt       *time.Time     `json:"sentAt,omitempty"`
	ValidatedAt  *time.Time     `json:"validatedAt,omitempty"`
	RefusedAt    *time.Time     `json:"refusedAt,omitempty"`
	StatusReason *string        `json:"statusReason,omitempty"`
	Lines        []LineResponse `json:"lines,omitempty"`
}

// FromInvoice maps an invoice. Lines are omitted when not loaded.
func FromInvoice(inv *invoice.Invoice) InvoiceResponse {
	return InvoiceResponse{
		DocumentResponse: FromDocument(inv.Document),
		Status:           inv.Status.String(),
		DueDate:          inv.DueDate,
		SentAt:           inv.SentAt,
		ValidatedAt:      inv.ValidatedAt,
		RefusedAt:        inv.RefusedAt,
		StatusReason:     inv.StatusReason,
		Lines:            fromLines(inv.Lines),
	}
}

// --- Dashboard ---

// DashboardResponse holds the headline figures of the back office.
type DashboardResponse struct {
	InvoiceCount    int64                    `json:"invoiceCount"`
	ToCollectCount  int64                    `json:"toCollectCount"`
	ToCollectAmount string                   `json:"toCollectAmount"`
	QuoteCount      int64                    `json:"quoteCount"`
	ClientCount     int64                    `json:"clientCount"`
	RecentInvoices  []InvoiceSummaryResponse `json:"recentInvoices"`
}

// InvoiceSummaryResponse is an invoice row of the dashboard.
type InvoiceSummaryResponse struct {
	ID         string    `json:"id"`
	Number     *string   `json:"number"`
	ClientID   string    `json:"clientId"`
	ClientName string    `json:"clientName"`
	Status     string    `json:"status"`
	Currency   string    `json:"currency"`
	GrandTotal string    `json:"grandTotal"`
	CreatedAt  time.Time `json:"createdAt"`
}

// FromDashboard maps the report.
func FromDashboard(d *reports.Dashboard) DashboardResponse {
	recent := make([]InvoiceSummaryResponse, 0, len(d.RecentInvoices))
	for _, r := range d.RecentInvoices {
		recent = append(recent, InvoiceSummaryResponse{
			ID:         r.ID.String(),
			Number:     r.Number,
			ClientID:   r.ClientID.String(),
			ClientName: r.ClientName,
			Status:     r.Status.String(),
			Currency:   r.Currency,
			GrandTotal: Money(r.GrandTotal),
			CreatedAt:  r.CreatedAt,
		})
	}
	return DashboardResponse{
		InvoiceCount:    d.InvoiceCount,
		ToCollectCount:  d.ToCollectCount,
		ToCollectAmount: Money(d.ToCollectAmount),
		QuoteCount:      d.QuoteCount,
		ClientCount:     d.ClientCount,
		RecentInvoices:  recent,
	}
}
