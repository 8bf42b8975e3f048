package alerts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/entities"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/repositories"
)

// Notifier delivers a triggered-alert notification. Delivery is best
// effort; a failed notification never rolls back the trigger.
type Notifier interface {
	AlertTriggered(ctx context.Context, alert *entities.PriceAlert, price decimal.Decimal) error
}

// Evaluator runs alert evaluation passes over the latest market data.
// A pass only moves alerts from untriggered to triggered; it never re-arms,
// so evaluating twice against the same data changes nothing the second time.
type Evaluator struct {
	uowFactory     repositories.UnitOfWorkFactory
	notifier       Notifier
	stalenessBound time.Duration
	logger         *zap.Logger
}

// NewEvaluator creates an evaluator. notifier may be nil to disable
// notifications.
func NewEvaluator(uowFactory repositories.UnitOfWorkFactory, notifier Notifier, stalenessBound time.Duration, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		uowFactory:     uowFactory,
		notifier:       notifier,
		stalenessBound: stalenessBound,
		logger:         logger,
	}
}

// EvaluateAll examines every active, untriggered alert against the latest
// snapshot for its asset and returns the alerts that triggered in this
// pass. Assets with no snapshot, or a snapshot older than the staleness
// bound, are skipped rather than evaluated against outdated prices. Each
// trigger is persisted independently so one failure cannot hold back the
// rest of the pass.
func (e *Evaluator) EvaluateAll(ctx context.Context) ([]*entities.PriceAlert, error) {
	uow := e.uowFactory.NewUnitOfWork()
	defer uow.Close()

	pending, err := uow.PriceAlerts().Find(ctx, repositories.
		Where("is_active", true).
		And("is_triggered", false))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	snapshots := make(map[uuid.UUID]*entities.MarketDataSnapshot)

	var triggered []*entities.PriceAlert
	for _, alert := range pending {
		snapshot, ok := snapshots[alert.AssetID]
		if !ok {
			snapshot, err = uow.MarketData().FirstOrDefault(ctx, repositories.
				Where("asset_id", alert.AssetID))
			if err != nil {
				return triggered, err
			}
			snapshots[alert.AssetID] = snapshot
		}
		if snapshot == nil {
			e.logger.Debug("no market data for asset, skipping alert",
				zap.String("alert_id", alert.ID.String()),
				zap.String("asset_id", alert.AssetID.String()))
			continue
		}
		if snapshot.IsStale(e.stalenessBound, now) {
			e.logger.Debug("stale market data, skipping alert",
				zap.String("alert_id", alert.ID.String()),
				zap.Time("last_updated", snapshot.LastUpdated))
			continue
		}
		if !alert.ShouldTrigger(snapshot.Price) {
			continue
		}

		if err := e.trigger(ctx, uow, alert, snapshot.Price, now); err != nil {
			e.logger.Error("failed to persist alert trigger",
				zap.String("alert_id", alert.ID.String()),
				zap.Error(err))
			continue
		}
		triggered = append(triggered, alert)

		if e.notifier != nil {
			if err := e.notifier.AlertTriggered(ctx, alert, snapshot.Price); err != nil {
				e.logger.Warn("alert notification failed",
					zap.String("alert_id", alert.ID.String()),
					zap.Error(err))
			}
		}
	}

	if len(triggered) > 0 {
		e.logger.Info("alert evaluation pass complete",
			zap.Int("evaluated", len(pending)),
			zap.Int("triggered", len(triggered)))
	}
	return triggered, nil
}

func (e *Evaluator) trigger(ctx context.Context, uow repositories.UnitOfWork, alert *entities.PriceAlert, price decimal.Decimal, now time.Time) error {
	alert.IsTriggered = true
	triggeredAt := now
	alert.TriggeredAt = &triggeredAt
	alert.UpdatedAt = now

	if err := uow.PriceAlerts().Update(ctx, alert); err != nil {
		return err
	}

	audit := &entities.AuditLog{
		ID:         uuid.New(),
		UserID:     uuid.NullUUID{UUID: alert.UserID, Valid: true},
		Action:     entities.AuditActionAlertTriggered,
		Resource:   "price_alert",
		ResourceID: alert.ID,
		CreatedAt:  now,
	}
	if err := uow.AuditLogs().Add(ctx, audit); err != nil {
		return err
	}

	return uow.Save(ctx)
}
