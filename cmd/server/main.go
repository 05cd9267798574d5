package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/ksred/dca-engine/internal/accounts"
	"github.com/ksred/dca-engine/internal/config"
	"github.com/ksred/dca-engine/internal/database"
	"github.com/ksred/dca-engine/internal/exchange"
	"github.com/ksred/dca-engine/internal/execution"
	"github.com/ksred/dca-engine/internal/pricing"
	"github.com/ksred/dca-engine/internal/strategy"
	"github.com/ksred/dca-engine/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// init configures the application logging based on environment settings
// In development mode, it enables pretty printing with timestamps
// Debug logging can be enabled via DEBUG environment variable
func init() {
	// Configure pretty logging for development
	if os.Getenv("ENV") != "production" {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		zlog.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	// Set global log level
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") == "true" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// main initializes and runs the DCA execution engine with graceful
// shutdown support: database, exchange gateway, price oracle,
// execution coordinator, background scheduler and the trigger API.
func main() {
	cfg := config.Load()

	// Initialize database
	db, err := database.NewDatabase(cfg.DatabasePath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize database")
	}

	// Initialize stores
	strategyDB := strategy.NewDatabase(db)
	executionDB := execution.NewDatabase(db)
	accountsDB, err := accounts.NewDatabase(db, cfg.EncryptionKey)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize account store")
	}

	// Initialize exchange gateway and price oracle
	gateway, err := exchange.New(exchange.Binance, exchange.Config{
		BaseURL: cfg.BinanceBaseURL,
		Timeout: cfg.ExchangeTimeout,
	}, accountsDB)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize exchange gateway")
	}

	oracle := pricing.NewOracle(gateway, cfg.PriceCacheTTL)

	// Initialize the execution engine
	resolver := strategy.NewResolver(strategyDB)
	coordinator := execution.NewCoordinator(resolver, strategyDB, executionDB, oracle, gateway)
	executionHandlers := execution.NewGinHandlers(coordinator)

	// Create and start the execution scheduler
	scheduler := execution.NewScheduler(coordinator, cfg.SchedulerInterval)
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()

	go scheduler.Start(schedulerCtx)

	// Initialize router
	router := gin.Default()
	router.Use(middleware.RateLimit())

	setupRoutes(router, cfg.BotAPIKey, executionHandlers)

	// Create server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown setup
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("Shutting down server...")

	// Stop the scheduler before tearing down the server so no pass
	// starts mid-shutdown
	schedulerCancel()

	// Give outstanding operations 5 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	zlog.Info().Msg("Server exiting")
}

// setupRoutes configures the API endpoints. The status route is
// public; the bot trigger runs one execution pass synchronously and
// is guarded by the shared-secret X-API-Key check.
func setupRoutes(router *gin.Engine, botAPIKey string, executionHandlers *execution.GinHandlers) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", executionHandlers.StatusHandler())

		bot := v1.Group("/bot")
		bot.Use(middleware.APIKeyAuth(botAPIKey))
		{
			bot.POST("/execute", executionHandlers.TriggerHandler())
		}
	}
}
