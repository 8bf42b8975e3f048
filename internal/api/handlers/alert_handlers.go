package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/entities"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/services/alerts"
	"github.com/gabiquintao/InvestmentPortfolioSystem/pkg/logger"
	"github.com/gabiquintao/InvestmentPortfolioSystem/pkg/metrics"
)

// AlertHandlers serves price alert endpoints
type AlertHandlers struct {
	service   *alerts.Service
	evaluator *alerts.Evaluator
	logger    *logger.Logger
}

// NewAlertHandlers creates alert handlers
func NewAlertHandlers(service *alerts.Service, evaluator *alerts.Evaluator, log *logger.Logger) *AlertHandlers {
	return &AlertHandlers{service: service, evaluator: evaluator, logger: log}
}

// Create handles POST /alerts
func (h *AlertHandlers) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req alerts.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request payload")
		return
	}

	alert, err := h.service.CreateAlert(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, alert)
}

// List handles GET /alerts
func (h *AlertHandlers) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	list, err := h.service.ListAlerts(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []*entities.PriceAlert{}
	}
	c.JSON(http.StatusOK, gin.H{"alerts": list})
}

// Rearm handles POST /alerts/:id/rearm
func (h *AlertHandlers) Rearm(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	alertID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	alert, err := h.service.Rearm(c.Request.Context(), userID, alertID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// Deactivate handles DELETE /alerts/:id
func (h *AlertHandlers) Deactivate(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	alertID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), userID, alertID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Evaluate handles POST /alerts/evaluate, an on-demand evaluation pass in
// addition to the scheduled one
func (h *AlertHandlers) Evaluate(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		return
	}

	triggered, err := h.evaluator.EvaluateAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	metrics.AlertsTriggeredTotal.Add(float64(len(triggered)))
	if triggered == nil {
		triggered = []*entities.PriceAlert{}
	}
	c.JSON(http.StatusOK, gin.H{"triggered": triggered})
}
