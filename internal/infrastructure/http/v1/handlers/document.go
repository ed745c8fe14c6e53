package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"factura/internal/core/id"
	"factura/internal/domain/audit"
	"factura/internal/infrastructure/http/v1/dto"
)

// defaultHistoryLimit caps audit entries when the caller sets no limit.
const defaultHistoryLimit = 100

// historyFunc loads the audit trail of one document.
type historyFunc func(ctx context.Context, docID id.ID, limit int) ([]audit.Entry, error)

// HistoryResponse lists audit entries, newest first.
type HistoryResponse struct {
	Items []audit.Entry `json:"items"`
}

// history handles GET /{documents}/:id/history for any document kind.
func (h *BaseHandler) history(c *gin.Context, load historyFunc) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var q dto.HistoryQuery
	if !h.BindQuery(c, &q) {
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultHistoryLimit
	}

	entries, err := load(c.Request.Context(), docID, q.Limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	h.OK(c, HistoryResponse{Items: entries})
}

// clientIDFrom parses the clientId of a create request.
func (h *BaseHandler) clientIDFrom(c *gin.Context, raw string) (id.ID, bool) {
	clientID, err := id.ParseField("clientId", raw)
	if err != nil {
		h.Error(c, err)
		return id.ID{}, false
	}
	return clientID, true
}
