// Package portfolio manages portfolio lifecycle and valuation.
package portfolio

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/entities"
	apperrors "github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/errors"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/repositories"
)

// CreatePortfolioRequest carries a new portfolio
type CreatePortfolioRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	BaseCurrency string `json:"base_currency"`
	IsDefault    bool   `json:"is_default"`
}

// Summary is the valuation of one portfolio across its positions
type Summary struct {
	Portfolio          *entities.Portfolio           `json:"portfolio"`
	Positions          []*entities.PortfolioPosition `json:"positions"`
	TotalInvested      decimal.Decimal               `json:"total_invested"`
	TotalValue         decimal.Decimal               `json:"total_value"`
	UnrealizedGainLoss decimal.Decimal               `json:"unrealized_gain_loss"`
}

// Service manages portfolios
type Service struct {
	uowFactory repositories.UnitOfWorkFactory
	logger     *zap.Logger
}

// NewService creates a portfolio service
func NewService(uowFactory repositories.UnitOfWorkFactory, logger *zap.Logger) *Service {
	return &Service{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

// CreatePortfolio creates a portfolio for the user. The user's first
// portfolio becomes the default; marking a later one default demotes the
// previous default in the same flush.
func (s *Service) CreatePortfolio(ctx context.Context, userID uuid.UUID, req CreatePortfolioRequest) (*entities.Portfolio, error) {
	if req.Name == "" {
		return nil, apperrors.ValidationError("name", "name is required")
	}
	currency := req.BaseCurrency
	if currency == "" {
		currency = "USD"
	}

	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	existing, err := uow.Portfolios().Count(ctx, repositories.Where("user_id", userID))
	if err != nil {
		return nil, err
	}
	isDefault := req.IsDefault || existing == 0

	if isDefault && existing > 0 {
		current, err := uow.Portfolios().FirstOrDefault(ctx, repositories.
			Where("user_id", userID).
			And("is_default", true))
		if err != nil {
			return nil, err
		}
		if current != nil {
			current.IsDefault = false
			current.UpdatedAt = time.Now().UTC()
			if err := uow.Portfolios().Update(ctx, current); err != nil {
				return nil, err
			}
		}
	}

	now := time.Now().UTC()
	portfolio := &entities.Portfolio{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         req.Name,
		Description:  req.Description,
		BaseCurrency: currency,
		IsDefault:    isDefault,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uow.Portfolios().Add(ctx, portfolio); err != nil {
		return nil, err
	}

	audit := &entities.AuditLog{
		ID:         uuid.New(),
		UserID:     uuid.NullUUID{UUID: userID, Valid: true},
		Action:     entities.AuditActionPortfolioCreated,
		Resource:   "portfolio",
		ResourceID: portfolio.ID,
		CreatedAt:  now,
	}
	if err := uow.AuditLogs().Add(ctx, audit); err != nil {
		return nil, err
	}

	if err := uow.Save(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("portfolio created",
		zap.String("portfolio_id", portfolio.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Bool("default", isDefault))

	return portfolio, nil
}

// GetPortfolio returns one of the caller's portfolios
func (s *Service) GetPortfolio(ctx context.Context, userID, portfolioID uuid.UUID) (*entities.Portfolio, error) {
	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	portfolio, err := uow.Portfolios().GetByID(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	if !portfolio.OwnedBy(userID) {
		return nil, apperrors.ForbiddenError("portfolio does not belong to user")
	}
	return portfolio, nil
}

// ListPortfolios returns every portfolio belonging to the user
func (s *Service) ListPortfolios(ctx context.Context, userID uuid.UUID) ([]*entities.Portfolio, error) {
	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	return uow.Portfolios().Find(ctx, repositories.
		Where("user_id", userID).
		Sorted("created_at"))
}

// GetSummary values one portfolio across its positions, using the latest
// known price where one exists and cost basis where it does not
func (s *Service) GetSummary(ctx context.Context, userID, portfolioID uuid.UUID) (*Summary, error) {
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
		Where("portfolio_id", portfolioID).
		Sorted("created_at"))
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Portfolio:          portfolio,
		Positions:          positions,
		TotalInvested:      decimal.Zero,
		TotalValue:         decimal.Zero,
		UnrealizedGainLoss: decimal.Zero,
	}
	for _, p := range positions {
		summary.TotalInvested = summary.TotalInvested.Add(p.TotalInvested())
		summary.TotalValue = summary.TotalValue.Add(p.CurrentValue())
	}
	summary.UnrealizedGainLoss = summary.TotalValue.Sub(summary.TotalInvested)

	return summary, nil
}
