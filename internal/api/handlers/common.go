// Package handlers implements the HTTP surface of the service.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/api/middleware"
	apperrors "github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/errors"
	"github.com/gabiquintao/InvestmentPortfolioSystem/pkg/metrics"
)

// ErrorResponse is the JSON shape of every error the API returns
type ErrorResponse struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// respondError maps a domain error onto an HTTP status and body
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperrors.IsInvalidInput(err):
		status = http.StatusBadRequest
	case apperrors.IsForbidden(err):
		status = http.StatusForbidden
	case apperrors.IsNotFound(err):
		status = http.StatusNotFound
	case apperrors.IsInsufficientHoldings(err), apperrors.IsInvariantViolation(err):
		status = http.StatusUnprocessableEntity
	case apperrors.IsConcurrencyConflict(err):
		status = http.StatusConflict
		metrics.ConcurrencyConflictsTotal.Inc()
	}

	resp := ErrorResponse{
		Code:      apperrors.GetErrorCode(err),
		Message:   "Internal server error",
		RequestID: c.GetString("request_id"),
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		resp.Message = domainErr.Message
		resp.Details = domainErr.Details
	}

	c.JSON(status, resp)
}

// respondBadRequest is for malformed payloads that never reach a service
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Code:      "VALIDATION_ERROR",
		Message:   message,
		RequestID: c.GetString("request_id"),
	})
}

// callerID extracts the authenticated user or aborts with 401
func callerID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:      "UNAUTHORIZED",
			Message:   "Authentication required",
			RequestID: c.GetString("request_id"),
		})
		return uuid.Nil, false
	}
	return userID, true
}

// pathUUID parses a uuid path parameter or responds 400
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondBadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
