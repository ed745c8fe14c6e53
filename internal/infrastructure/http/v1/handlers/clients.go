package handlers

import (
	"github.com/gin-gonic/gin"

	"factura/internal/domain/catalogs/client"
	"factura/internal/infrastructure/http/v1/dto"
)

// ClientHandler handles HTTP requests for the client catalog.
type ClientHandler struct {
	*BaseHandler
	service *client.Service
}

// NewClientHandler creates a new client handler.
func NewClientHandler(base *BaseHandler, service *client.Service) *ClientHandler {
	return &ClientHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /clients
func (h *ClientHandler) Create(c *gin.Context) {
	var req dto.CreateClientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entity := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), entity); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromClient(entity))
}

// Get handles GET /clients/:id
func (h *ClientHandler) Get(c *gin.Context) {
	clientID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	entity, err := h.service.GetByID(c.Request.Context(), clientID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromClient(entity))
}

// List handles GET /clients
func (h *ClientHandler) List(c *gin.Context) {
	var req dto.ListQuery
	if !h.BindQuery(c, &req) {
		return
	}

	result, err := h.service.List(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(result, dto.FromClient))
}
