// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"salesboard/internal/domain/reports"
	"salesboard/internal/infrastructure/http/v1/handlers"
	"salesboard/internal/infrastructure/http/v1/middleware"
	"salesboard/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Service computes the report views
	Service *reports.Service

	// APIKeyHash is the bcrypt hash the bearer key is checked against.
	// Empty disables the check.
	APIKeyHash string

	// Ping checks the backing data source for the readiness probe;
	// nil makes readiness unconditional.
	Ping handlers.Pinger
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Ping)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	// API v1
	reportsHandler := handlers.NewReportsHandler(cfg.Service)
	api := router.Group("/api/v1")
	api.Use(middleware.APIKeyAuth(cfg.APIKeyHash))
	{
		rep := api.Group("/reports")
		{
			rep.GET("/monthly-sales", reportsHandler.MonthlySales)
			rep.GET("/sales-by-location", reportsHandler.SalesByLocation)
			rep.GET("/sales-by-product", reportsHandler.SalesByProduct)
			rep.GET("/stock", reportsHandler.Stock)
			rep.GET("/filters", reportsHandler.Filters)
		}
	}

	return router
}
