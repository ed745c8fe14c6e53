// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"factura/internal/core/idempotency"
	"factura/internal/domain/catalogs/client"
	"factura/internal/domain/documents/conversion"
	"factura/internal/domain/documents/invoice"
	"factura/internal/domain/documents/quote"
	"factura/internal/domain/reports"
	"factura/internal/infrastructure/http/v1/dto"
	"factura/internal/infrastructure/http/v1/handlers"
	"factura/internal/infrastructure/http/v1/middleware"
	"factura/internal/infrastructure/metrics"
	"factura/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Metrics serves /metrics and observes every request; nil disables both
	Metrics *metrics.Metrics

	// Ping checks storage for the readiness probe
	Ping handlers.Pinger

	// StorageDriver is reported by /health/info
	StorageDriver string

	Clients   *client.Service
	Quotes    *quote.Service
	Invoices  *invoice.Service
	Converter *conversion.Converter
	Reports   *reports.Service

	// Idempotency backs X-Idempotency-Key; nil disables the middleware
	Idempotency idempotency.Store

	// RateLimiter throttles /api/v1 per client IP; nil disables it
	RateLimiter *limiter.Limiter

	// CORSOrigins lists allowed browser origins; empty disables CORS
	CORSOrigins []string

	// Debug switches gin to debug mode
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := dto.RegisterValidators(); err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(log))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}
	if len(cfg.CORSOrigins) > 0 {
		router.Use(middleware.CORS(cfg.CORSOrigins))
	}
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Ping, cfg.StorageDriver)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := router.Group("/api/v1")
	if cfg.RateLimiter != nil {
		api.Use(middleware.RateLimit(cfg.RateLimiter))
	}
	if cfg.Idempotency != nil {
		api.Use(middleware.Idempotency(cfg.Idempotency))
	}

	registerRoutes(api, cfg)

	return router, nil
}

// registerRoutes registers client, document and report endpoints.
func registerRoutes(api *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	clientHandler := handlers.NewClientHandler(baseHandler, cfg.Clients)
	clients := api.Group("/clients")
	{
		clients.GET("", clientHandler.List)
		clients.POST("", clientHandler.Create)
		clients.GET("/:id", clientHandler.Get)
	}

	RegisterDocumentRoutes(api.Group("/quotes"),
		handlers.NewQuoteHandler(baseHandler, cfg.Quotes, cfg.Converter))
	RegisterDocumentRoutes(api.Group("/invoices"),
		handlers.NewInvoiceHandler(baseHandler, cfg.Invoices))

	reportHandler := handlers.NewReportsHandler(baseHandler, cfg.Reports)
	api.GET("/dashboard", reportHandler.Dashboard)
}
