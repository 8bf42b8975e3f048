package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/entities"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/services/reconciliation"
	"github.com/gabiquintao/InvestmentPortfolioSystem/pkg/logger"
	"github.com/gabiquintao/InvestmentPortfolioSystem/pkg/metrics"
)

// TransactionHandlers serves the transaction ledger endpoints
type TransactionHandlers struct {
	service *reconciliation.Service
	logger  *logger.Logger
}

// NewTransactionHandlers creates transaction handlers
func NewTransactionHandlers(service *reconciliation.Service, log *logger.Logger) *TransactionHandlers {
	return &TransactionHandlers{service: service, logger: log}
}

// Create handles POST /transactions
func (h *TransactionHandlers) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req reconciliation.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request payload")
		return
	}

	transaction, err := h.service.CreateTransaction(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.TransactionsRecordedTotal.WithLabelValues(string(transaction.TransactionType)).Inc()
	c.JSON(http.StatusCreated, transaction)
}

// Delete handles DELETE /transactions/:id
func (h *TransactionHandlers) Delete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	transactionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteTransaction(c.Request.Context(), userID, transactionID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListByPortfolio handles GET /portfolios/:id/transactions
func (h *TransactionHandlers) ListByPortfolio(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	portfolioID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	transactions, err := h.service.ListTransactions(c.Request.Context(), userID, portfolioID)
	if err != nil {
		respondError(c, err)
		return
	}
	if transactions == nil {
		transactions = []*entities.Transaction{}
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}
