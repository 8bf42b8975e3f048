package portfolio

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/entities"
	apperrors "github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/errors"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/repositories"
)

// AssetAllocation is the share of a portfolio's value held in one asset
// class
type AssetAllocation struct {
	AssetType  entities.AssetType `json:"asset_type"`
	AssetCount int                `json:"asset_count"`
	TotalValue decimal.Decimal    `json:"total_value"`
	Percentage decimal.Decimal    `json:"percentage"`
}

// GetAllocation breaks the portfolio's current value down by asset class.
// Positions at zero quantity are skipped; percentages are relative to the
// portfolio's total current value. Results are sorted by asset type.
func (s *Service) GetAllocation(ctx context.Context, userID, portfolioID uuid.UUID) ([]*AssetAllocation, error) {
	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	portfolio, err := uow.Portfolios().GetByID(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	if !portfolio.OwnedBy(userID) {
		return nil, apperrors.ForbiddenError("portfolio does not belong to user")
	}

	positions, err := uow.Positions().Find(ctx, repositories.
		Where("portfolio_id", portfolioID))
	if err != nil {
		return nil, err
	}

	byType := make(map[entities.AssetType]*AssetAllocation)
	total := decimal.Zero
	for _, p := range positions {
		if !p.Quantity.IsPositive() {
			continue
		}
		asset, err := uow.Assets().GetByID(ctx, p.AssetID)
		if err != nil {
			return nil, err
		}
		slice, ok := byType[asset.AssetType]
		if !ok {
			slice = &AssetAllocation{
				AssetType:  asset.AssetType,
				TotalValue: decimal.Zero,
				Percentage: decimal.Zero,
			}
			byType[asset.AssetType] = slice
		}
		slice.AssetCount++
		value := p.CurrentValue()
		slice.TotalValue = slice.TotalValue.Add(value)
		total = total.Add(value)
	}

	allocations := make([]*AssetAllocation, 0, len(byType))
	for _, slice := range byType {
		if total.IsPositive() {
			slice.Percentage = slice.TotalValue.Div(total).Mul(decimal.NewFromInt(100))
		}
		allocations = append(allocations, slice)
	}
	sort.Slice(allocations, func(i, j int) bool {
		return allocations[i].AssetType < allocations[j].AssetType
	})
	return allocations, nil
}
