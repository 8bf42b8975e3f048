// Package audit reads the append-only audit trail.
package audit

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/entities"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/repositories"
)

// Query narrows an audit trail listing
type Query struct {
	UserID   *uuid.UUID
	Action   string
	Resource string
	Limit    int
}

// Service lists audit records. Writes happen inside the services that own
// the audited change, never here.
type Service struct {
	uowFactory repositories.UnitOfWorkFactory
	logger     *zap.Logger
}

// NewService creates an audit service
func NewService(uowFactory repositories.UnitOfWorkFactory, logger *zap.Logger) *Service {
	return &Service{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

// List returns audit records matching the query, newest last
func (s *Service) List(ctx context.Context, q Query) ([]*entities.AuditLog, error) {
	uow := s.uowFactory.NewUnitOfWork()
	defer uow.Close()

	filter := repositories.Filter{}
	if q.UserID != nil {
		filter = filter.And("user_id", uuid.NullUUID{UUID: *q.UserID, Valid: true})
	}
	if q.Action != "" {
		filter = filter.And("action", q.Action)
	}
	if q.Resource != "" {
		filter = filter.And("resource", q.Resource)
	}
	filter = filter.Sorted("created_at")
	if q.Limit > 0 {
		filter = filter.Limited(q.Limit)
	}

	return uow.AuditLogs().Find(ctx, filter)
}
