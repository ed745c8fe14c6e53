package handlers

import (
	"github.com/gin-gonic/gin"

	"factura/internal/domain/documents/conversion"
	"factura/internal/domain/documents/quote"
	"factura/internal/domain/lifecycle"
	"factura/internal/infrastructure/http/v1/dto"
)

// QuoteHandler handles HTTP requests for quotes.
type QuoteHandler struct {
	*BaseHandler
	service   *quote.Service
	converter *conversion.Converter
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(base *BaseHandler, service *quote.Service, converter *conversion.Converter) *QuoteHandler {
	return &QuoteHandler{
		BaseHandler: base,
		service:     service,
		converter:   converter,
	}
}

// Create handles POST /quotes
func (h *QuoteHandler) Create(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if !h.BindJSON(c, &req) {
		return
	}
	clientID, ok := h.clientIDFrom(c, req.ClientID)
	if !ok {
		return
	}

	q, err := h.service.Create(c.Request.Context(), req.ToInput(clientID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromQuote(q))
}

// Get handles GET /quotes/:id
func (h *QuoteHandler) Get(c *gin.Context) {
	quoteID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	q, err := h.service.GetByID(c.Request.Context(), quoteID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromQuote(q))
}

// List handles GET /quotes
func (h *QuoteHandler) List(c *gin.Context) {
	var req dto.ListQuery
	if !h.BindQuery(c, &req) {
		return
	}

	filter := quote.ListFilter{ListFilter: req.ToFilter()}
	if req.Status != "" {
		status, err := lifecycle.ParseQuoteStatus(req.Status)
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
	h.OK(c, dto.FromListResult(result, dto.FromQuote))
}

// Finalize handles POST /quotes/:id/finalize
func (h *QuoteHandler) Finalize(c *gin.Context) {
	quoteID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	q, err := h.service.Finalize(c.Request.Context(), quoteID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromQuote(q))
}

// SetStatus handles POST /quotes/:id/status
func (h *QuoteHandler) SetStatus(c *gin.Context) {
	quoteID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SetStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	target, err := lifecycle.ParseQuoteStatus(req.Status)
	if err != nil {
		h.Error(c, err)
		return
	}

	q, err := h.service.SetStatus(c.Request.Context(), quoteID, target, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromQuote(q))
}

// Convert handles POST /quotes/:id/convert
// The first call creates the invoice (201); later calls return it (200).
func (h *QuoteHandler) Convert(c *gin.Context) {
	quoteID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	before, err := h.service.GetByID(ctx, quoteID)
	if err != nil {
		h.Error(c, err)
		return
	}

	inv, err := h.converter.Convert(ctx, quoteID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if before.IsConverted() {
		h.OK(c, dto.FromInvoice(inv))
		return
	}
	h.Created(c, dto.FromInvoice(inv))
}

// History handles GET /quotes/:id/history
func (h *QuoteHandler) History(c *gin.Context) {
	h.history(c, h.service.History)
}
