package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/services/market"
	"github.com/gabiquintao/InvestmentPortfolioSystem/pkg/logger"
)

// MarketHandlers serves market data endpoints
type MarketHandlers struct {
	service *market.Service
	logger  *logger.Logger
}

// NewMarketHandlers creates market data handlers
func NewMarketHandlers(service *market.Service, log *logger.Logger) *MarketHandlers {
	return &MarketHandlers{service: service, logger: log}
}

// IngestSnapshot handles POST /market-data/snapshots
func (h *MarketHandlers) IngestSnapshot(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		return
	}

	var req market.SnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request payload")
		return
	}

	snapshot, err := h.service.IngestSnapshot(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// GetQuote handles GET /market-data/quotes/:id
func (h *MarketHandlers) GetQuote(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		return
	}
	assetID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	snapshot, err := h.service.GetQuote(c.Request.Context(), assetID)
	if err != nil {
		respondError(c, err)
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:      "NOT_FOUND",
			Message:   "no market data for asset",
			RequestID: c.GetString("request_id"),
		})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
