// Package market ingests market data snapshots and serves quotes. The
// database holds exactly one snapshot per asset; each ingest overwrites it
// wholesale and refreshes the cached quote and any open positions.
package market

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/entities"
	apperrors "github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/errors"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/repositories"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/infrastructure/cache"
)

// SnapshotRequest carries one market data observation for an asset
type SnapshotRequest struct {
	AssetID       uuid.UUID           `json:"asset_id" binding:"required"`
	Price         decimal.Decimal     `json:"price" binding:"required"`
	OpenPrice     decimal.NullDecimal `json:"open_price"`
	HighPrice     decimal.NullDecimal `json:"high_price"`
	LowPrice      decimal.NullDecimal `json:"low_price"`
	Volume        *int64              `json:"volume"`
	Change        decimal.NullDecimal `json:"change"`
	ChangePercent decimal.NullDecimal `json:"change_percent"`
	DataSource    string              `json:"data_source"`
}

// Service ingests snapshots and serves the latest quote per asset
type Service struct {
	uowFactory repositories.UnitOfWorkFactory
	redis      cache.RedisClient
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewService creates a market data service. redis may be nil to disable
// the quote cache.
func NewService(uowFactory repositories.UnitOfWorkFactory, redis cache.RedisClient, cacheTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		uowFactory: uowFactory,
		redis:      redis,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

func quoteKey(assetID uuid.UUID) string {
	return fmt.Sprintf("quote:%s", assetID)
}

// IngestSnapshot overwrites the stored snapshot for the asset and pushes
// the new price onto every open position holding it. Position price
// refreshes ride in the same flush as the snapshot.
func (s *Service) IngestSnapshot(ctx context.Context, req SnapshotRequest) (*entities.MarketDataSnapshot, error) {
	if !req.Price.IsPositive() {
		return nil, apperrors.ValidationError("price", "price must be positive")
	}

	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	if _, err := uow.Assets().GetByID(ctx, req.AssetID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	source := req.DataSource
	if source == "" {
		source = "manual"
	}

	snapshot, err := uow.MarketData().FirstOrDefault(ctx, repositories.
		Where("asset_id", req.AssetID))
	if err != nil {
		return nil, err
	}

	isNew := snapshot == nil
	if isNew {
		snapshot = &entities.MarketDataSnapshot{
			ID:      uuid.New(),
			AssetID: req.AssetID,
		}
	}
	snapshot.Price = req.Price
	snapshot.OpenPrice = req.OpenPrice
	snapshot.HighPrice = req.HighPrice
	snapshot.LowPrice = req.LowPrice
	snapshot.Change = req.Change
	snapshot.ChangePercent = req.ChangePercent
	snapshot.DataSource = source
	snapshot.LastUpdated = now
	if req.Volume != nil {
		snapshot.Volume = sql.NullInt64{Int64: *req.Volume, Valid: true}
	} else {
		snapshot.Volume = sql.NullInt64{}
	}

	var persist error
	if isNew {
		persist = uow.MarketData().Add(ctx, snapshot)
	} else {
		persist = uow.MarketData().Update(ctx, snapshot)
	}
	if persist != nil {
		return nil, persist
	}

	positions, err := uow.Positions().Find(ctx, repositories.
		Where("asset_id", req.AssetID))
	if err != nil {
		return nil, err
	}
	for _, position := range positions {
		position.CurrentPrice = decimal.NullDecimal{Decimal: req.Price, Valid: true}
		lastUpdate := now
		position.LastPriceUpdate = &lastUpdate
		position.UpdatedAt = now
		if err := uow.Positions().Update(ctx, position); err != nil {
			return nil, err
		}
	}

	if err := uow.Save(ctx); err != nil {
		return nil, err
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, quoteKey(req.AssetID), snapshot, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache quote",
				zap.String("asset_id", req.AssetID.String()),
				zap.Error(err))
		}
	}

	s.logger.Debug("snapshot ingested",
		zap.String("asset_id", req.AssetID.String()),
		zap.String("price", req.Price.String()),
		zap.String("source", source))

	return snapshot, nil
}

// GetQuote returns the latest snapshot for an asset, from cache when warm
func (s *Service) GetQuote(ctx context.Context, assetID uuid.UUID) (*entities.MarketDataSnapshot, error) {
	if s.redis != nil {
		var cached entities.MarketDataSnapshot
		err := s.redis.Get(ctx, quoteKey(assetID), &cached)
		if err == nil {
			return &cached, nil
		}
		if err != cache.ErrCacheMiss {
			s.logger.Warn("quote cache read failed",
				zap.String("asset_id", assetID.String()),
				zap.Error(err))
		}
	}

	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	snapshot, err := uow.MarketData().FirstOrDefault(ctx, repositories.
		Where("asset_id", assetID))
	if err != nil {
		return nil, err
	}
	if snapshot != nil && s.redis != nil {
		if err := s.redis.Set(ctx, quoteKey(assetID), snapshot, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache quote",
				zap.String("asset_id", assetID.String()),
				zap.Error(err))
		}
	}
	return snapshot, nil
}
