package handler

import (
	"time"

	"checkout-gateway/internal/adapter/http/middleware"
	"checkout-gateway/internal/adapter/metrics"
	"checkout-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	CheckoutSvc    ports.CheckoutService
	WebhookSvc     ports.WebhookProcessor
	ReportingSvc   ports.ReportingService
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
	// StartTime is the process start, reported as uptime by the health
	// endpoint.
	StartTime time.Time
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit
	r.Use(metrics.PrometheusMiddleware())

	// Prometheus exposition
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	checkoutHandler := NewCheckoutHandler(deps.CheckoutSvc)
	webhookHandler := NewWebhookHandler(deps.WebhookSvc)
	transactionHandler := NewTransactionHandler(deps.ReportingSvc)

	api := r.Group("/api")
	{
		api.POST("/checkout", checkoutHandler.Checkout)
		api.POST("/webhook", webhookHandler.Receive)
		api.GET("/transactions", transactionHandler.List)
		api.GET("/transactions/:id", transactionHandler.Get)
		api.GET("/health", HealthCheck(deps.ReportingSvc, deps.Logger, deps.StartTime, deps.HealthCheckers...))
	}

	return r
}
