// Package router assembles the gin engine, middleware chain and API routes.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockflow/backend/internal/infrastructure/auth"
	"github.com/stockflow/backend/internal/infrastructure/logger"
	"github.com/stockflow/backend/internal/interfaces/http/handler"
	"github.com/stockflow/backend/internal/interfaces/http/middleware"
)

// Config holds everything the router needs to assemble the engine
type Config struct {
	Logger      *zap.Logger
	JWTService  *auth.JWTService
	CORSOrigins []string
	Tracing     middleware.TracingConfig

	System      *handler.SystemHandler
	Order       *handler.OrderHandler
	Fulfillment *handler.FulfillmentHandler
	Stock       *handler.StockHandler
}

// New builds the gin engine with the full middleware chain and all routes
func New(cfg Config) *gin.Engine {
	engine := gin.New()

	engine.Use(
		middleware.RequestID(),
		middleware.CORSWithOrigins(cfg.CORSOrigins),
		logger.GinMiddleware(cfg.Logger),
		logger.Recovery(cfg.Logger),
		middleware.Tracing(cfg.Tracing),
	)

	// Probes stay outside the authenticated API surface
	engine.GET("/health", cfg.System.Health)
	engine.GET("/ready", cfg.System.Ready)

	api := engine.Group("/api/v1")
	api.Use(
		middleware.JWTAuth(cfg.JWTService),
		middleware.TenantResolver(true),
	)

	orders := api.Group("/orders")
	{
		orders.POST("", cfg.Order.Create)
		orders.GET("", cfg.Order.List)
		orders.GET("/summary", cfg.Order.StatusSummary)
		orders.GET("/number/:number", cfg.Order.GetByNumber)
		orders.GET("/:id", cfg.Order.Get)
		orders.PUT("/:id", cfg.Order.Update)
		orders.DELETE("/:id", cfg.Order.Delete)
		orders.POST("/:id/submit", cfg.Order.Submit)
		orders.POST("/:id/cancel", cfg.Order.Cancel)
		orders.POST("/:id/fulfill", cfg.Fulfillment.Fulfill)
		orders.GET("/:id/transactions", cfg.Fulfillment.ListByOrder)
	}

	api.GET("/line-items/:id/transactions", cfg.Fulfillment.ListByLineItem)

	stock := api.Group("/stock")
	{
		stock.GET("", cfg.Stock.List)
		stock.GET("/:productId", cfg.Stock.GetByProduct)
		stock.GET("/:productId/transactions", cfg.Stock.ListTransactions)
	}

	return engine
}
