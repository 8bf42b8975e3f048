package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/entities"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/services/market"
	"github.com/gabiquintao/InvestmentPortfolioSystem/pkg/logger"
)

// AssetHandlers serves asset reference data endpoints
type AssetHandlers struct {
	service *market.Service
	logger  *logger.Logger
}

// NewAssetHandlers creates asset handlers
func NewAssetHandlers(service *market.Service, log *logger.Logger) *AssetHandlers {
	return &AssetHandlers{service: service, logger: log}
}

// Create handles POST /assets
func (h *AssetHandlers) Create(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		return
	}

	var req market.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request payload")
		return
	}

	asset, err := h.service.CreateAsset(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, asset)
}

// List handles GET /assets
func (h *AssetHandlers) List(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		return
	}

	assets, err := h.service.ListAssets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if assets == nil {
		assets = []*entities.Asset{}
	}
	c.JSON(http.StatusOK, gin.H{"assets": assets})
}

// Get handles GET /assets/:id
func (h *AssetHandlers) Get(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		return
	}
	assetID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	asset, err := h.service.GetAsset(c.Request.Context(), assetID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

// Deactivate handles DELETE /assets/:id
func (h *AssetHandlers) Deactivate(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		return
	}
	assetID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeactivateAsset(c.Request.Context(), assetID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
