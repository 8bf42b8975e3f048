package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/api/handlers"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/api/middleware"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/infrastructure/di"
)

// SetupRoutes configures all application routes
func SetupRoutes(container *di.Container) *gin.Engine {
	router := gin.New()

	// Global middleware - order matters
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestSizeLimit())
	router.Use(middleware.Logger(container.Logger))
	router.Use(middleware.Recovery(container.Logger))
	router.Use(middleware.CORS(container.Config.Server.AllowedOrigins))

	healthHandlers := handlers.NewHealthHandlers(container.DB, container.Redis, container.Logger)
	portfolioHandlers := handlers.NewPortfolioHandlers(container.PortfolioService, container.Logger)
	transactionHandlers := handlers.NewTransactionHandlers(container.ReconciliationService, container.Logger)
	alertHandlers := handlers.NewAlertHandlers(container.AlertService, container.AlertEvaluator, container.Logger)
	assetHandlers := handlers.NewAssetHandlers(container.MarketService, container.Logger)
	marketHandlers := handlers.NewMarketHandlers(container.MarketService, container.Logger)
	auditHandlers := handlers.NewAuditHandlers(container.AuditService, container.Logger)
	watchlistHandlers := handlers.NewWatchlistHandlers(container.WatchlistService, container.Logger)

	// Health checks and metrics (no auth required)
	router.GET("/health", healthHandlers.Health)
	router.GET("/ready", healthHandlers.Ready)
	router.GET("/metrics", healthHandlers.Metrics)

	// Authenticated API
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Authentication(container.Config, container.Logger))
	{
		portfolios := v1.Group("/portfolios")
		{
			portfolios.POST("", portfolioHandlers.Create)
			portfolios.GET("", portfolioHandlers.List)
			portfolios.GET("/:id", portfolioHandlers.Get)
			portfolios.GET("/:id/summary", portfolioHandlers.Summary)
			portfolios.GET("/:id/allocation", portfolioHandlers.Allocation)
			portfolios.GET("/:id/transactions", transactionHandlers.ListByPortfolio)
		}

		transactions := v1.Group("/transactions")
		{
			transactions.POST("", transactionHandlers.Create)
			transactions.DELETE("/:id", transactionHandlers.Delete)
		}

		alerts := v1.Group("/alerts")
		{
			alerts.POST("", alertHandlers.Create)
			alerts.GET("", alertHandlers.List)
			alerts.POST("/:id/rearm", alertHandlers.Rearm)
			alerts.DELETE("/:id", alertHandlers.Deactivate)
			alerts.POST("/evaluate", alertHandlers.Evaluate)
		}

		watchlists := v1.Group("/watchlists")
		{
			watchlists.POST("", watchlistHandlers.Create)
			watchlists.GET("", watchlistHandlers.List)
			watchlists.DELETE("/:id", watchlistHandlers.Delete)
			watchlists.GET("/:id/items", watchlistHandlers.Items)
			watchlists.POST("/:id/items", watchlistHandlers.AddItem)
			watchlists.DELETE("/:id/items/:item_id", watchlistHandlers.RemoveItem)
		}

		assets := v1.Group("/assets")
		{
			assets.POST("", assetHandlers.Create)
			assets.GET("", assetHandlers.List)
			assets.GET("/:id", assetHandlers.Get)
			assets.DELETE("/:id", assetHandlers.Deactivate)
		}

		marketData := v1.Group("/market-data")
		{
			marketData.POST("/snapshots", marketHandlers.IngestSnapshot)
			marketData.GET("/quotes/:id", marketHandlers.GetQuote)
		}

		v1.GET("/audit", auditHandlers.List)
	}

	return router
}
