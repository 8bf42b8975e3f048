// Package watchlist manages user watchlists: named sets of assets monitored
// without holding them.
package watchlist

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/entities"
	apperrors "github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/errors"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/repositories"
)

// CreateWatchlistRequest carries a new watchlist
type CreateWatchlistRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsDefault   bool   `json:"is_default"`
}

// AddItemRequest carries one asset to watch
type AddItemRequest struct {
	AssetID uuid.UUID `json:"asset_id" binding:"required"`
	Notes   string    `json:"notes"`
}

// ItemView is one watched asset joined with its catalog entry and the
// latest market data snapshot. Quote is nil when no snapshot has been
// ingested for the asset yet.
type ItemView struct {
	Item  *entities.WatchlistItem      `json:"item"`
	Asset *entities.Asset              `json:"asset"`
	Quote *entities.MarketDataSnapshot `json:"quote,omitempty"`
}

// Service manages watchlists
type Service struct {
	uowFactory repositories.UnitOfWorkFactory
	logger     *zap.Logger
}

// NewService creates a watchlist service
func NewService(uowFactory repositories.UnitOfWorkFactory, logger *zap.Logger) *Service {
	return &Service{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

// CreateWatchlist creates a watchlist for the user. The user's first
// watchlist becomes the default; marking a later one default demotes the
// previous default in the same flush.
func (s *Service) CreateWatchlist(ctx context.Context, userID uuid.UUID, req CreateWatchlistRequest) (*entities.Watchlist, error) {
	if req.Name == "" {
		return nil, apperrors.ValidationError("name", "name is required")
	}

	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	existing, err := uow.Watchlists().Count(ctx, repositories.Where("user_id", userID))
	if err != nil {
		return nil, err
	}
	isDefault := req.IsDefault || existing == 0

	if isDefault && existing > 0 {
		current, err := uow.Watchlists().FirstOrDefault(ctx, repositories.
			Where("user_id", userID).
			And("is_default", true))
		if err != nil {
			return nil, err
		}
		if current != nil {
			current.IsDefault = false
			current.UpdatedAt = time.Now().UTC()
			if err := uow.Watchlists().Update(ctx, current); err != nil {
				return nil, err
			}
		}
	}

	now := time.Now().UTC()
	watchlist := &entities.Watchlist{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   isDefault,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uow.Watchlists().Add(ctx, watchlist); err != nil {
		return nil, err
	}

	audit := &entities.AuditLog{
		ID:         uuid.New(),
		UserID:     uuid.NullUUID{UUID: userID, Valid: true},
		Action:     entities.AuditActionWatchlistCreated,
		Resource:   "watchlist",
		ResourceID: watchlist.ID,
		CreatedAt:  now,
	}
	if err := uow.AuditLogs().Add(ctx, audit); err != nil {
		return nil, err
	}

	if err := uow.Save(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("watchlist created",
		zap.String("watchlist_id", watchlist.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Bool("default", isDefault))

	return watchlist, nil
}

// ListWatchlists returns every watchlist belonging to the user
func (s *Service) ListWatchlists(ctx context.Context, userID uuid.UUID) ([]*entities.Watchlist, error) {
	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	return uow.Watchlists().Find(ctx, repositories.
		Where("user_id", userID).
		Sorted("created_at"))
}

// DeleteWatchlist removes a watchlist and its items in one flush
func (s *Service) DeleteWatchlist(ctx context.Context, userID, watchlistID uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	watchlist, err := s.ownedWatchlist(ctx, uow, userID, watchlistID)
	if err != nil {
		return err
	}

	items, err := uow.WatchlistItems().Find(ctx, repositories.
		Where("watchlist_id", watchlistID))
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := uow.WatchlistItems().Delete(ctx, item); err != nil {
			return err
		}
	}
	if err := uow.Watchlists().Delete(ctx, watchlist); err != nil {
		return err
	}
	return uow.Save(ctx)
}

// AddItem puts an asset on the watchlist. Each asset appears at most once
// per watchlist.
func (s *Service) AddItem(ctx context.Context, userID, watchlistID uuid.UUID, req AddItemRequest) (*entities.WatchlistItem, error) {
	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	if _, err := s.ownedWatchlist(ctx, uow, userID, watchlistID); err != nil {
		return nil, err
	}
	if _, err := uow.Assets().GetByID(ctx, req.AssetID); err != nil {
		return nil, err
	}

	watched, err := uow.WatchlistItems().Exists(ctx, repositories.
		Where("watchlist_id", watchlistID).
		And("asset_id", req.AssetID))
	if err != nil {
		return nil, err
	}
	if watched {
		return nil, apperrors.ValidationError("asset_id", "asset is already on the watchlist")
	}

	item := &entities.WatchlistItem{
		ID:          uuid.New(),
		WatchlistID: watchlistID,
		AssetID:     req.AssetID,
		Notes:       req.Notes,
		AddedAt:     time.Now().UTC(),
	}
	if err := uow.WatchlistItems().Add(ctx, item); err != nil {
		return nil, err
	}
	if err := uow.Save(ctx); err != nil {
		return nil, err
	}

	s.logger.Debug("watchlist item added",
		zap.String("watchlist_id", watchlistID.String()),
		zap.String("asset_id", req.AssetID.String()))

	return item, nil
}

// RemoveItem takes one asset off the watchlist
func (s *Service) RemoveItem(ctx context.Context, userID, watchlistID, itemID uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	if _, err := s.ownedWatchlist(ctx, uow, userID, watchlistID); err != nil {
		return err
	}
	item, err := uow.WatchlistItems().GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.WatchlistID != watchlistID {
		return apperrors.NotFoundError("watchlist item")
	}
	if err := uow.WatchlistItems().Delete(ctx, item); err != nil {
		return err
	}
	return uow.Save(ctx)
}

// GetItems returns the watchlist's items joined with their assets and the
// latest snapshot per asset, sorted by the order they were added
func (s *Service) GetItems(ctx context.Context, userID, watchlistID uuid.UUID) ([]*ItemView, error) {
	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	if _, err := s.ownedWatchlist(ctx, uow, userID, watchlistID); err != nil {
		return nil, err
	}

	items, err := uow.WatchlistItems().Find(ctx, repositories.
		Where("watchlist_id", watchlistID).
		Sorted("added_at"))
	if err != nil {
		return nil, err
	}

	views := make([]*ItemView, 0, len(items))
	for _, item := range items {
		asset, err := uow.Assets().GetByID(ctx, item.AssetID)
		if err != nil {
			return nil, err
		}
		quote, err := uow.MarketData().FirstOrDefault(ctx, repositories.
			Where("asset_id", item.AssetID))
		if err != nil {
			return nil, err
		}
		views = append(views, &ItemView{Item: item, Asset: asset, Quote: quote})
	}
	return views, nil
}

func (s *Service) ownedWatchlist(ctx context.Context, uow repositories.UnitOfWork, userID, watchlistID uuid.UUID) (*entities.Watchlist, error) {
	watchlist, err := uow.Watchlists().GetByID(ctx, watchlistID)
	if err != nil {
		return nil, err
	}
	if !watchlist.OwnedBy(userID) {
		return nil, apperrors.ForbiddenError("watchlist does not belong to user")
	}
	return watchlist, nil
}
