package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/api/routes"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/infrastructure/config"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/infrastructure/database"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/infrastructure/di"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/workers/alert_worker"
	"github.com/gabiquintao/InvestmentPortfolioSystem/pkg/logger"
	"github.com/gabiquintao/InvestmentPortfolioSystem/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel, cfg.Environment)
	defer log.Sync()

	// Initialize database
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("Failed to close database connection", "error", err)
		}
	}()

	// Run migrations
	if err := database.RunMigrations(cfg.Database.URL); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Build dependency injection container
	container, err := di.NewContainer(cfg, db, log)
	if err != nil {
		log.Fatal("Failed to create DI container", "error", err)
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Warn("Failed to close container resources", "error", err)
		}
	}()

	// Initialize router with DI container
	router := routes.SetupRoutes(container)

	// Start the scheduled alert evaluation worker
	alertWorker := alert_worker.NewWorker(container.AlertEvaluator, cfg.Alerts.Schedule, log.Zap())
	if err := alertWorker.Start(); err != nil {
		log.Fatal("Failed to start alert worker", "error", err)
	}

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	// Start server in goroutine
	go func() {
		log.Info("Starting server",
			"port", cfg.Server.Port,
			"environment", cfg.Environment,
			"read_timeout", cfg.Server.ReadTimeout,
			"write_timeout", cfg.Server.WriteTimeout,
		)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	// Periodically publish database pool metrics
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			stats := db.Stats()
			metrics.DatabaseConnectionsGauge.WithLabelValues("open").Set(float64(stats.OpenConnections))
			metrics.DatabaseConnectionsGauge.WithLabelValues("idle").Set(float64(stats.Idle))
			metrics.DatabaseConnectionsGauge.WithLabelValues("in_use").Set(float64(stats.InUse))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	alertWorker.Stop()

	// Give outstanding requests time to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited gracefully")
}
