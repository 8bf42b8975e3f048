// Package di wires infrastructure and domain services together.
package di

import (
	"time"

	"github.com/jmoiron/sqlx"

	domainrepos "github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/repositories"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/services/alerts"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/services/audit"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/services/market"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/services/notifications"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/services/portfolio"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/services/reconciliation"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/services/watchlist"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/infrastructure/cache"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/infrastructure/config"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/infrastructure/repositories"
	"github.com/gabiquintao/InvestmentPortfolioSystem/pkg/logger"
)

// Container holds every wired component of the application
type Container struct {
	Config *config.Config
	DB     *sqlx.DB
	Logger *logger.Logger
	Redis  cache.RedisClient

	UnitOfWorkFactory domainrepos.UnitOfWorkFactory

	ReconciliationService *reconciliation.Service
	PortfolioService      *portfolio.Service
	MarketService         *market.Service
	AlertService          *alerts.Service
	AlertEvaluator        *alerts.Evaluator
	AuditService          *audit.Service
	WatchlistService      *watchlist.Service
}

// NewContainer wires the application from configuration. Redis and the
// email notifier are optional; the container degrades gracefully when
// they are not configured.
func NewContainer(cfg *config.Config, db *sqlx.DB, log *logger.Logger) (*Container, error) {
	zapLog := log.Zap()

	queryTimeout := time.Duration(cfg.Database.QueryTimeout) * time.Second
	uowFactory := repositories.NewFactory(db, queryTimeout, zapLog)

	var redisClient cache.RedisClient
	if cfg.Redis.Host != "" {
		client, err := cache.NewRedisClient(&cfg.Redis, zapLog)
		if err != nil {
			log.Warn("Redis unavailable, continuing without quote cache", "error", err)
		} else {
			redisClient = client
		}
	}

	var notifier alerts.Notifier
	if cfg.Email.Provider == "sendgrid" && cfg.Email.APIKey != "" {
		emailNotifier, err := notifications.NewEmailNotifier(cfg.Email, zapLog)
		if err != nil {
			return nil, err
		}
		notifier = emailNotifier
	}

	stalenessBound := time.Duration(cfg.Alerts.StalenessSeconds) * time.Second
	cacheTTL := time.Duration(cfg.MarketData.CacheTTLSeconds) * time.Second

	return &Container{
		Config:            cfg,
		DB:                db,
		Logger:            log,
		Redis:             redisClient,
		UnitOfWorkFactory: uowFactory,

		ReconciliationService: reconciliation.NewService(uowFactory, zapLog),
		PortfolioService:      portfolio.NewService(uowFactory, zapLog),
		MarketService:         market.NewService(uowFactory, redisClient, cacheTTL, zapLog),
		AlertService:          alerts.NewService(uowFactory, zapLog),
		AlertEvaluator:        alerts.NewEvaluator(uowFactory, notifier, stalenessBound, zapLog),
		AuditService:          audit.NewService(uowFactory, zapLog),
		WatchlistService:      watchlist.NewService(uowFactory, zapLog),
	}, nil
}

// Close releases container-held resources
func (c *Container) Close() error {
	if c.Redis != nil {
		return c.Redis.Close()
	}
	return nil
}
