package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/entities"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/services/audit"
	"github.com/gabiquintao/InvestmentPortfolioSystem/pkg/logger"
)

// AuditHandlers serves the audit trail endpoints
type AuditHandlers struct {
	service *audit.Service
	logger  *logger.Logger
}

// NewAuditHandlers creates audit handlers
func NewAuditHandlers(service *audit.Service, log *logger.Logger) *AuditHandlers {
	return &AuditHandlers{service: service, logger: log}
}

// List handles GET /audit. Callers only ever see their own records.
func (h *AuditHandlers) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	q := audit.Query{
		UserID:   &userID,
		Action:   c.Query("action"),
		Resource: c.Query("resource"),
		Limit:    100,
	}
	if limit := c.Query("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 && n <= 1000 {
			q.Limit = n
		}
	}

	logs, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	if logs == nil {
		logs = []*entities.AuditLog{}
	}
	c.JSON(http.StatusOK, gin.H{"audit_logs": logs})
}
