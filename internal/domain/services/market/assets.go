package market

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/entities"
	apperrors "github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/errors"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/repositories"
)

// CreateAssetRequest carries a new tradable asset
type CreateAssetRequest struct {
	Symbol    string             `json:"symbol" binding:"required"`
	Name      string             `json:"name" binding:"required"`
	AssetType entities.AssetType `json:"asset_type" binding:"required"`
	Exchange  string             `json:"exchange"`
	Currency  string             `json:"currency"`
}

// CreateAsset registers a tradable asset. Symbols are stored uppercase
// and must be unique.
func (s *Service) CreateAsset(ctx context.Context, req CreateAssetRequest) (*entities.Asset, error) {
	if err := req.AssetType.Validate(); err != nil {
		return nil, apperrors.ValidationError("asset_type", err.Error())
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, apperrors.ValidationError("symbol", "symbol is required")
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	taken, err := uow.Assets().Exists(ctx, repositories.Where("symbol", symbol))
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.ValidationError("symbol", "symbol already registered")
	}

	now := time.Now().UTC()
	asset := &entities.Asset{
		ID:        uuid.New(),
		Symbol:    symbol,
		Name:      req.Name,
		AssetType: req.AssetType,
		Exchange:  req.Exchange,
		Currency:  currency,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uow.Assets().Add(ctx, asset); err != nil {
		return nil, err
	}
	if err := uow.Save(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("asset registered",
		zap.String("asset_id", asset.ID.String()),
		zap.String("symbol", symbol))

	return asset, nil
}

// GetAsset returns one asset by id
func (s *Service) GetAsset(ctx context.Context, assetID uuid.UUID) (*entities.Asset, error) {
	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	return uow.Assets().GetByID(ctx, assetID)
}

// ListAssets returns every registered asset ordered by symbol
func (s *Service) ListAssets(ctx context.Context) ([]*entities.Asset, error) {
	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	return uow.Assets().Find(ctx, repositories.Filter{}.Sorted("symbol"))
}

// DeactivateAsset delists an asset without deleting its history
func (s *Service) DeactivateAsset(ctx context.Context, assetID uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	asset, err := uow.Assets().GetByID(ctx, assetID)
	if err != nil {
		return err
	}
	asset.IsActive = false
	asset.UpdatedAt = time.Now().UTC()
	if err := uow.Assets().Update(ctx, asset); err != nil {
		return err
	}
	return uow.Save(ctx)
}
