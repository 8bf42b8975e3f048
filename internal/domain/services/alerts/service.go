// Package alerts manages price alerts and evaluates them against the latest
// market data snapshots.
package alerts

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

// CreateAlertRequest carries a new price watch
type CreateAlertRequest struct {
	AssetID     uuid.UUID               `json:"asset_id" binding:"required"`
	TargetPrice decimal.Decimal         `json:"target_price" binding:"required"`
	Direction   entities.AlertDirection `json:"direction" binding:"required"`
	NotifyEmail string                  `json:"notify_email"`
}

// Service manages the lifecycle of price alerts
type Service struct {
	uowFactory repositories.UnitOfWorkFactory
	logger     *zap.Logger
}

// NewService creates an alert management service
func NewService(uowFactory repositories.UnitOfWorkFactory, logger *zap.Logger) *Service {
	return &Service{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

// CreateAlert registers a price watch for the user. New alerts start active
// and untriggered.
func (s *Service) CreateAlert(ctx context.Context, userID uuid.UUID, req CreateAlertRequest) (*entities.PriceAlert, error) {
	if err := req.Direction.Validate(); err != nil {
		return nil, apperrors.ValidationError("direction", err.Error())
	}
	if !req.TargetPrice.IsPositive() {
		return nil, apperrors.ValidationError("target_price", "target price must be positive")
	}

	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	if _, err := uow.Assets().GetByID(ctx, req.AssetID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	alert := &entities.PriceAlert{
		ID:          uuid.New(),
		UserID:      userID,
		AssetID:     req.AssetID,
		TargetPrice: req.TargetPrice,
		Direction:   req.Direction,
		NotifyEmail: req.NotifyEmail,
		IsActive:    true,
		IsTriggered: false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uow.PriceAlerts().Add(ctx, alert); err != nil {
		return nil, err
	}
	if err := uow.Save(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("price alert created",
		zap.String("alert_id", alert.ID.String()),
		zap.String("asset_id", req.AssetID.String()),
		zap.String("direction", string(req.Direction)))

	return alert, nil
}

// ListAlerts returns every alert belonging to the user
func (s *Service) ListAlerts(ctx context.Context, userID uuid.UUID) ([]*entities.PriceAlert, error) {
	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	return uow.PriceAlerts().Find(ctx, repositories.
		Where("user_id", userID).
		Sorted("created_at"))
}

// Rearm resets a triggered alert so the evaluator will consider it again.
// The evaluator itself never re-arms anything.
func (s *Service) Rearm(ctx context.Context, userID, alertID uuid.UUID) (*entities.PriceAlert, error) {
	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	alert, err := uow.PriceAlerts().GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert.UserID != userID {
		return nil, apperrors.ForbiddenError("alert does not belong to user")
	}

	alert.IsTriggered = false
	alert.TriggeredAt = nil
	alert.UpdatedAt = time.Now().UTC()
	if err := uow.PriceAlerts().Update(ctx, alert); err != nil {
		return nil, err
	}

	audit := &entities.AuditLog{
		ID:         uuid.New(),
		UserID:     uuid.NullUUID{UUID: userID, Valid: true},
		Action:     entities.AuditActionAlertRearmed,
		Resource:   "price_alert",
		ResourceID: alert.ID,
		CreatedAt:  alert.UpdatedAt,
	}
	if err := uow.AuditLogs().Add(ctx, audit); err != nil {
		return nil, err
	}

	if err := uow.Save(ctx); err != nil {
		return nil, err
	}
	return alert, nil
}

// Deactivate turns an alert off without deleting it
func (s *Service) Deactivate(ctx context.Context, userID, alertID uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	alert, err := uow.PriceAlerts().GetByID(ctx, alertID)
	if err != nil {
		return err
	}
	if alert.UserID != userID {
		return apperrors.ForbiddenError("alert does not belong to user")
	}

	alert.IsActive = false
	alert.UpdatedAt = time.Now().UTC()
	if err := uow.PriceAlerts().Update(ctx, alert); err != nil {
		return err
	}
	return uow.Save(ctx)
}
