package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/services/watchlist"
	"github.com/gabiquintao/InvestmentPortfolioSystem/pkg/logger"
)

// WatchlistHandlers serves watchlist endpoints
type WatchlistHandlers struct {
	service *watchlist.Service
	logger  *logger.Logger
}

// NewWatchlistHandlers creates watchlist handlers
func NewWatchlistHandlers(service *watchlist.Service, log *logger.Logger) *WatchlistHandlers {
	return &WatchlistHandlers{service: service, logger: log}
}

// Create handles POST /watchlists
func (h *WatchlistHandlers) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req watchlist.CreateWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request payload")
		return
	}

	created, err := h.service.CreateWatchlist(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// List handles GET /watchlists
func (h *WatchlistHandlers) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	lists, err := h.service.ListWatchlists(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"watchlists": lists})
}

// Delete handles DELETE /watchlists/:id
func (h *WatchlistHandlers) Delete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	watchlistID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteWatchlist(c.Request.Context(), userID, watchlistID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Items handles GET /watchlists/:id/items
func (h *WatchlistHandlers) Items(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	watchlistID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	items, err := h.service.GetItems(c.Request.Context(), userID, watchlistID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// AddItem handles POST /watchlists/:id/items
func (h *WatchlistHandlers) AddItem(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	watchlistID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req watchlist.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request payload")
		return
	}

	item, err := h.service.AddItem(c.Request.Context(), userID, watchlistID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// RemoveItem handles DELETE /watchlists/:id/items/:item_id
func (h *WatchlistHandlers) RemoveItem(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	watchlistID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "item_id")
	if !ok {
		return
	}

	if err := h.service.RemoveItem(c.Request.Context(), userID, watchlistID, itemID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
