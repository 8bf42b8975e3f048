package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/services/portfolio"
	"github.com/gabiquintao/InvestmentPortfolioSystem/pkg/logger"
)

// PortfolioHandlers serves portfolio endpoints
type PortfolioHandlers struct {
	service *portfolio.Service
	logger  *logger.Logger
}

// NewPortfolioHandlers creates portfolio handlers
func NewPortfolioHandlers(service *portfolio.Service, log *logger.Logger) *PortfolioHandlers {
	return &PortfolioHandlers{service: service, logger: log}
}

// Create handles POST /portfolios
func (h *PortfolioHandlers) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req portfolio.CreatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request payload")
		return
	}

	created, err := h.service.CreatePortfolio(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// List handles GET /portfolios
func (h *PortfolioHandlers) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	portfolios, err := h.service.ListPortfolios(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"portfolios": portfolios})
}

// Get handles GET /portfolios/:id
func (h *PortfolioHandlers) Get(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	portfolioID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetPortfolio(c.Request.Context(), userID, portfolioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Summary handles GET /portfolios/:id/summary
func (h *PortfolioHandlers) Summary(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	portfolioID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	summary, err := h.service.GetSummary(c.Request.Context(), userID, portfolioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Allocation handles GET /portfolios/:id/allocation
func (h *PortfolioHandlers) Allocation(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	portfolioID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	allocations, err := h.service.GetAllocation(c.Request.Context(), userID, portfolioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"allocations": allocations})
}
