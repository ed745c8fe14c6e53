package v1

import (
	"github.com/gin-gonic/gin"
)

// DocumentRouteHandler defines the routes every document kind serves.
type DocumentRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Finalize(c *gin.Context)
	SetStatus(c *gin.Context)
	History(c *gin.Context)
}

// DocumentDeleteHandler is an optional interface for documents that can be deleted.
type DocumentDeleteHandler interface {
	Delete(c *gin.Context)
}

// DocumentConvertHandler is an optional interface for documents that convert into another kind.
type DocumentConvertHandler interface {
	Convert(c *gin.Context)
}

// RegisterDocumentRoutes registers the standard lifecycle routes for a document.
// Delete and Convert are registered when the handler implements them.
//
// Usage:
//
//	handler := handlers.NewInvoiceHandler(baseHandler, invoiceService)
//	RegisterDocumentRoutes(api.Group("/invoices"), handler)
func RegisterDocumentRoutes(group *gin.RouterGroup, handler DocumentRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.POST("/:id/finalize", handler.Finalize)
	group.POST("/:id/status", handler.SetStatus)
	group.GET("/:id/history", handler.History)

	if h, ok := handler.(DocumentDeleteHandler); ok {
		group.DELETE("/:id", h.Delete)
	}
	if h, ok := handler.(DocumentConvertHandler); ok {
		group.POST("/:id/convert", h.Convert)
	}
}
