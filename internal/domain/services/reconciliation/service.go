// Package reconciliation keeps portfolio positions consistent with the
// transaction ledger. Recording a buy or sell folds the trade into the
// position under weighted-average cost accounting; deleting a ledger entry
// rebuilds the position by replaying what remains.
package reconciliation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/entities"
	apperrors "github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/errors"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/repositories"
)

// CreateTransactionRequest carries one trade to record against a portfolio
type CreateTransactionRequest struct {
	PortfolioID     uuid.UUID                `json:"portfolio_id" binding:"required"`
	AssetID         uuid.UUID                `json:"asset_id" binding:"required"`
	TransactionType entities.TransactionType `json:"transaction_type" binding:"required"`
	Quantity        decimal.Decimal          `json:"quantity" binding:"required"`
	PricePerUnit    decimal.Decimal          `json:"price_per_unit" binding:"required"`
	Commission      decimal.Decimal          `json:"commission"`
	TransactionDate time.Time                `json:"transaction_date" binding:"required"`
	Notes           string                   `json:"notes"`
}

// Service records and reverses ledger entries, keeping the affected
// position reconciled in the same atomic flush
type Service struct {
	uowFactory repositories.UnitOfWorkFactory
	logger     *zap.Logger
}

// NewService creates a reconciliation service
func NewService(uowFactory repositories.UnitOfWorkFactory, logger *zap.Logger) *Service {
	return &Service{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

// CreateTransaction validates the trade, folds it into the position for the
// (portfolio, asset) pair and appends the ledger entry. Position update,
// ledger insert and audit record commit together or not at all.
func (s *Service) CreateTransaction(ctx context.Context, userID uuid.UUID, req CreateTransactionRequest) (*entities.Transaction, error) {
	if err := req.TransactionType.Validate(); err != nil {
		return nil, apperrors.ValidationError("transaction_type", err.Error())
	}
	if !req.Quantity.IsPositive() {
		return nil, apperrors.ValidationError("quantity", "quantity must be positive")
	}
	if !req.PricePerUnit.IsPositive() {
		return nil, apperrors.ValidationError("price_per_unit", "price per unit must be positive")
	}
	if req.Commission.IsNegative() {
		return nil, apperrors.ValidationError("commission", "commission cannot be negative")
	}

	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	portfolio, err := uow.Portfolios().GetByID(ctx, req.PortfolioID)
	if err != nil {
		return nil, err
	}
	if !portfolio.OwnedBy(userID) {
		return nil, apperrors.ForbiddenError("portfolio does not belong to user")
	}

	asset, err := uow.Assets().GetByID(ctx, req.AssetID)
	if err != nil {
		return nil, err
	}
	if !asset.IsActive {
		return nil, apperrors.ValidationError("asset_id", "asset is not tradable")
	}

	position, err := uow.Positions().FirstOrDefault(ctx, repositories.
		Where("portfolio_id", req.PortfolioID).
		And("asset_id", req.AssetID))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	switch req.TransactionType {
	case entities.TransactionTypeBuy:
		if position == nil {
			position = &entities.PortfolioPosition{
				ID:                   uuid.New(),
				PortfolioID:          req.PortfolioID,
				AssetID:              req.AssetID,
				Quantity:             req.Quantity,
				AveragePurchasePrice: req.PricePerUnit,
				CreatedAt:            now,
				UpdatedAt:            now,
			}
			if err := uow.Positions().Add(ctx, position); err != nil {
				return nil, err
			}
		} else {
			position.Quantity, position.AveragePurchasePrice = applyBuy(
				position.Quantity, position.AveragePurchasePrice,
				req.Quantity, req.PricePerUnit,
			)
			position.UpdatedAt = now
			if err := uow.Positions().Update(ctx, position); err != nil {
				return nil, err
			}
		}
	case entities.TransactionTypeSell:
		held := decimal.Zero
		if position != nil {
			held = position.Quantity
		}
		if held.LessThan(req.Quantity) {
			return nil, apperrors.InsufficientHoldingsError(held.String(), req.Quantity.String())
		}
		position.Quantity = position.Quantity.Sub(req.Quantity)
		if position.Quantity.IsZero() {
			position.AveragePurchasePrice = decimal.Zero
		}
		position.UpdatedAt = now
		if err := uow.Positions().Update(ctx, position); err != nil {
			return nil, err
		}
	}

	transaction := &entities.Transaction{
		ID:              uuid.New(),
		PortfolioID:     req.PortfolioID,
		AssetID:         req.AssetID,
		TransactionType: req.TransactionType,
		Quantity:        req.Quantity,
		PricePerUnit:    req.PricePerUnit,
		Commission:      req.Commission,
		TransactionDate: req.TransactionDate,
		Notes:           req.Notes,
		CreatedAt:       now,
	}
	if err := uow.Transactions().Add(ctx, transaction); err != nil {
		return nil, err
	}

	audit := s.auditEntry(userID, entities.AuditActionTransactionCreated, transaction, now)
	if err := uow.AuditLogs().Add(ctx, audit); err != nil {
		return nil, err
	}

	if err := uow.Commit(ctx); err != nil {
		s.logger.Error("failed to commit transaction",
			zap.String("portfolio_id", req.PortfolioID.String()),
			zap.String("asset_id", req.AssetID.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("transaction recorded",
		zap.String("transaction_id", transaction.ID.String()),
		zap.String("portfolio_id", req.PortfolioID.String()),
		zap.String("type", string(req.TransactionType)))

	return transaction, nil
}

// DeleteTransaction removes a ledger entry and rebuilds the affected
// position by replaying every remaining entry for the pair in
// chronological order. A deletion that would imply negative holdings at
// any point in the replay is rejected and nothing changes.
func (s *Service) DeleteTransaction(ctx context.Context, userID, transactionID uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	if err := uow.Begin(ctx); err != nil {
		return err
	}

	transaction, err := uow.Transactions().GetByID(ctx, transactionID)
	if err != nil {
		return err
	}

	portfolio, err := uow.Portfolios().GetByID(ctx, transaction.PortfolioID)
	if err != nil {
		return err
	}
	if !portfolio.OwnedBy(userID) {
		return apperrors.ForbiddenError("portfolio does not belong to user")
	}

	history, err := uow.Transactions().Find(ctx, repositories.
		Where("portfolio_id", transaction.PortfolioID).
		And("asset_id", transaction.AssetID).
		Sorted("transaction_date", "created_at"))
	if err != nil {
		return err
	}

	remaining := make([]*entities.Transaction, 0, len(history))
	for _, t := range history {
		if t.ID != transactionID {
			remaining = append(remaining, t)
		}
	}

	quantity, averagePrice, err := Replay(remaining)
	if err != nil {
		return apperrors.InvariantViolationError(
			"deleting this transaction would imply negative holdings",
			map[string]interface{}{
				"transaction_id": transactionID.String(),
				"portfolio_id":   transaction.PortfolioID.String(),
				"asset_id":       transaction.AssetID.String(),
			})
	}

	position, err := uow.Positions().FirstOrDefault(ctx, repositories.
		Where("portfolio_id", transaction.PortfolioID).
		And("asset_id", transaction.AssetID))
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if position != nil {
		position.Quantity = quantity
		position.AveragePurchasePrice = averagePrice
		position.UpdatedAt = now
		if err := uow.Positions().Update(ctx, position); err != nil {
			return err
		}
	} else if !quantity.IsZero() {
		position = &entities.PortfolioPosition{
			ID:                   uuid.New(),
			PortfolioID:          transaction.PortfolioID,
			AssetID:              transaction.AssetID,
			Quantity:             quantity,
			AveragePurchasePrice: averagePrice,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if err := uow.Positions().Add(ctx, position); err != nil {
			return err
		}
	}

	if err := uow.Transactions().Delete(ctx, transaction); err != nil {
		return err
	}

	audit := s.auditEntry(userID, entities.AuditActionTransactionDeleted, transaction, now)
	if err := uow.AuditLogs().Add(ctx, audit); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		s.logger.Error("failed to commit transaction deletion",
			zap.String("transaction_id", transactionID.String()),
			zap.Error(err))
		return err
	}

	s.logger.Info("transaction deleted",
		zap.String("transaction_id", transactionID.String()),
		zap.String("portfolio_id", transaction.PortfolioID.String()))

	return nil
}

// ListTransactions returns the ledger for one of the caller's portfolios in
// chronological order
func (s *Service) ListTransactions(ctx context.Context, userID, portfolioID uuid.UUID) ([]*entities.Transaction, error) {
	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	portfolio, err := uow.Portfolios().GetByID(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	if !portfolio.OwnedBy(userID) {
		return nil, apperrors.ForbiddenError("portfolio does not belong to user")
	}

	return uow.Transactions().Find(ctx, repositories.
		Where("portfolio_id", portfolioID).
		Sorted("transaction_date", "created_at"))
}

// Replay computes the position state implied by a transaction history,
// assumed to be in chronological order. It returns an error when a sell
// exceeds the holdings accumulated so far, which means the history is not
// self-consistent.
func Replay(history []*entities.Transaction) (quantity, averagePrice decimal.Decimal, err error) {
	quantity = decimal.Zero
	averagePrice = decimal.Zero
	for _, t := range history {
		switch t.TransactionType {
		case entities.TransactionTypeBuy:
			quantity, averagePrice = applyBuy(quantity, averagePrice, t.Quantity, t.PricePerUnit)
		case entities.TransactionTypeSell:
			if quantity.LessThan(t.Quantity) {
				return decimal.Zero, decimal.Zero, apperrors.InvariantViolationError(
					"transaction history implies negative holdings",
					map[string]interface{}{"transaction_id": t.ID.String()})
			}
			quantity = quantity.Sub(t.Quantity)
			if quantity.IsZero() {
				averagePrice = decimal.Zero
			}
		}
	}
	return quantity, averagePrice, nil
}

// applyBuy folds one purchase into a running weighted-average cost basis
func applyBuy(quantity, averagePrice, buyQuantity, buyPrice decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	newQuantity := quantity.Add(buyQuantity)
	newAverage := quantity.Mul(averagePrice).
		Add(buyQuantity.Mul(buyPrice)).
		Div(newQuantity)
	return newQuantity, newAverage
}

func (s *Service) auditEntry(userID uuid.UUID, action string, transaction *entities.Transaction, now time.Time) *entities.AuditLog {
	metadata, err := json.Marshal(map[string]interface{}{
		"transaction_type": transaction.TransactionType,
		"quantity":         transaction.Quantity,
		"price_per_unit":   transaction.PricePerUnit,
		"portfolio_id":     transaction.PortfolioID,
		"asset_id":         transaction.AssetID,
	})
	if err != nil {
		metadata = nil
	}
	return &entities.AuditLog{
		ID:         uuid.New(),
		UserID:     uuid.NullUUID{UUID: userID, Valid: true},
		Action:     action,
		Resource:   "transaction",
		ResourceID: transaction.ID,
		Metadata:   metadata,
		CreatedAt:  now,
	}
}
