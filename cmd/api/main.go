package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"checkout-gateway/config"
	httpHandler "checkout-gateway/internal/adapter/http/handler"
	"checkout-gateway/internal/adapter/provider"
	pgStorage "checkout-gateway/internal/adapter/storage/postgres"
	redisStorage "checkout-gateway/internal/adapter/storage/redis"
	"checkout-gateway/internal/core/ports"
	"checkout-gateway/internal/service"
	"checkout-gateway/pkg/logger"
)

func main() {
	start := time.Now()

	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Bool("simulate", cfg.Provider.Simulate).
		Msg("Starting Checkout Gateway")

	ctx := context.Background()

	// Run embedded migrations before opening the pool
	if cfg.Database.Migrate {
		if err := pgStorage.Migrate(cfg.Database, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
	}

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// Initialize repositories
	txRepo := pgStorage.NewTransactionRepo(pool)
	eventRepo := pgStorage.NewWebhookEventRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	healthCheckers := []ports.HealthChecker{pgStorage.NewHealthCheck(pool)}

	// Redis is optional; without it the database constraint alone carries
	// webhook dedup.
	var dedup ports.DedupCache
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		dedup = redisStorage.NewDedupCache(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	}

	// Provider integration: simulated or real, chosen once at startup
	var gateway ports.ChargeGateway
	var verifier ports.SignatureVerifier
	if cfg.Provider.Simulate {
		gateway = provider.NewSimulatedGateway(cfg.Provider.BaseURL, cfg.Provider.SimulateDelay)
		verifier = provider.NewSimulatedVerifier()
	} else {
		gateway = provider.NewHTTPGateway(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Provider.Timeout, log)
		verifier = provider.NewHMACVerifier(cfg.Provider.WebhookSecret)
	}

	// Initialize business services
	checkoutSvc := service.NewCheckoutService(txRepo, gateway, cfg.Checkout.RequestTimeout, log)
	webhookSvc := service.NewWebhookService(txRepo, eventRepo, transactor, dedup, verifier, log)
	reportingSvc := service.NewReportingService(txRepo)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		CheckoutSvc:    checkoutSvc,
		WebhookSvc:     webhookSvc,
		ReportingSvc:   reportingSvc,
		HealthCheckers: healthCheckers,
		Logger:         log,
		StartTime:      start,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
