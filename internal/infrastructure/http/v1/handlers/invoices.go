package handlers

import (
	"github.com/gin-gonic/gin"

	"factura/internal/domain/documents/invoice"
	"factura/internal/domain/lifecycle"
	"factura/internal/infrastructure/http/v1/dto"
)

// InvoiceHandler handles HTTP requests for invoices.
type InvoiceHandler struct {
	*BaseHandler
	service *invoice.Service
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, service *invoice.Service) *InvoiceHandler {
	return &InvoiceHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	clientID, ok := h.clientIDFrom(c, req.ClientID)
	if !ok {
		return
	}

	inv, err := h.service.Create(c.Request.Context(), req.ToInput(clientID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromInvoice(inv))
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoiceID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	inv, err := h.service.GetByID(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromInvoice(inv))
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var req dto.ListQuery
	if !h.BindQuery(c, &req) {
		return
	}

	filter := invoice.ListFilter{ListFilter: req.ToFilter()}
	if req.Status != "" {
		status, err := lifecycle.ParseInvoiceStatus(req.Status)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.Status = &status
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(result, dto.FromInvoice))
}

// Finalize handles POST /invoices/:id/finalize
func (h *InvoiceHandler) Finalize(c *gin.Context) {
	invoiceID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	inv, err := h.service.Finalize(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromInvoice(inv))
}

// SetStatus handles POST /invoices/:id/status
func (h *InvoiceHandler) SetStatus(c *gin.Context) {
	invoiceID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SetStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	target, err := lifecycle.ParseInvoiceStatus(req.Status)
	if err != nil {
		h.Error(c, err)
		return
	}

	inv, err := h.service.SetStatus(c.Request.Context(), invoiceID, target, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromInvoice(inv))
}

// Delete handles DELETE /invoices/:id
// Only unnumbered drafts can be deleted.
func (h *InvoiceHandler) Delete(c *gin.Context) {
	invoiceID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), invoiceID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// History handles GET /invoices/:id/history
func (h *InvoiceHandler) History(c *gin.Context) {
	h.history(c, h.service.History)
}
