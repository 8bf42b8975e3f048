package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/infrastructure/cache"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/infrastructure/database"
	"github.com/gabiquintao/InvestmentPortfolioSystem/pkg/logger"
)

// HealthHandlers serves liveness, readiness and metrics endpoints
type HealthHandlers struct {
	db     *sqlx.DB
	redis  cache.RedisClient
	logger *logger.Logger
}

// NewHealthHandlers creates health handlers. redis may be nil.
func NewHealthHandlers(db *sqlx.DB, redis cache.RedisClient, log *logger.Logger) *HealthHandlers {
	return &HealthHandlers{db: db, redis: redis, logger: log}
}

// Health handles GET /health
func (h *HealthHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /ready and checks downstream dependencies
func (h *HealthHandlers) Ready(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	if err := database.HealthCheck(h.db); err != nil {
		checks["database"] = err.Error()
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"checks": checks})
}

// Metrics handles GET /metrics
func (h *HealthHandlers) Metrics(c *gin.Context) {
	promhttp.Handler().ServeHTTP(c.Writer, c.Request)
}
