package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/entities"
	apperrors "github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/errors"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/infrastructure/repositories/memory"
)

type capturedNotification struct {
	alertID uuid.UUID
	price   decimal.Decimal
}

type fakeNotifier struct {
	sent []capturedNotification
	err  error
}

func (f *fakeNotifier) AlertTriggered(_ context.Context, alert *entities.PriceAlert, price decimal.Decimal) error {
	f.sent = append(f.sent, capturedNotification{alertID: alert.ID, price: price})
	return f.err
}

func seedAlert(store *memory.Store, assetID uuid.UUID, target string, direction entities.AlertDirection) *entities.PriceAlert {
	now := time.Now().UTC()
	alert := &entities.PriceAlert{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		AssetID:     assetID,
		TargetPrice: decimal.RequireFromString(target),
		Direction:   direction,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	memory.Seed(store.PriceAlerts(), alert)
	return alert
}

func seedSnapshot(store *memory.Store, assetID uuid.UUID, price string, age time.Duration) *entities.MarketDataSnapshot {
	snapshot := &entities.MarketDataSnapshot{
		ID:          uuid.New(),
		AssetID:     assetID,
		Price:       decimal.RequireFromString(price),
		DataSource:  "test",
		LastUpdated: time.Now().UTC().Add(-age),
	}
	memory.Seed(store.MarketData(), snapshot)
	return snapshot
}

func TestEvaluateAll_BelowDirectionTriggersAtOrUnderTarget(t *testing.T) {
	store := memory.NewStore()
	assetID := uuid.New()
	alert := seedAlert(store, assetID, "90", entities.AlertDirectionBelow)
	seedSnapshot(store, assetID, "89.50", time.Minute)

	evaluator := NewEvaluator(store, nil, 15*time.Minute, zap.NewNop())
	triggered, err := evaluator.EvaluateAll(context.Background())
	require.NoError(t, err)
	require.Len(t, triggered, 1)
	assert.Equal(t, alert.ID, triggered[0].ID)

	stored, ok := store.PriceAlerts().Get(alert.ID)
	require.True(t, ok)
	assert.True(t, stored.IsTriggered)
	require.NotNil(t, stored.TriggeredAt)
}

func TestEvaluateAll_AboveDirectionIncludesExactTarget(t *testing.T) {
	store := memory.NewStore()
	assetID := uuid.New()
	seedAlert(store, assetID, "150", entities.AlertDirectionAbove)
	seedSnapshot(store, assetID, "150", time.Minute)

	evaluator := NewEvaluator(store, nil, 15*time.Minute, zap.NewNop())
	triggered, err := evaluator.EvaluateAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, triggered, 1)
}

func TestEvaluateAll_PriceShortOfTargetDoesNothing(t *testing.T) {
	store := memory.NewStore()
	assetID := uuid.New()
	alert := seedAlert(store, assetID, "200", entities.AlertDirectionAbove)
	seedSnapshot(store, assetID, "199.99", time.Minute)

	evaluator := NewEvaluator(store, nil, 15*time.Minute, zap.NewNop())
	triggered, err := evaluator.EvaluateAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, triggered)

	stored, _ := store.PriceAlerts().Get(alert.ID)
	assert.False(t, stored.IsTriggered)
}

func TestEvaluateAll_StaleSnapshotSkipped(t *testing.T) {
	store := memory.NewStore()
	assetID := uuid.New()
	alert := seedAlert(store, assetID, "90", entities.AlertDirectionBelow)
	seedSnapshot(store, assetID, "50", time.Hour)

	evaluator := NewEvaluator(store, nil, 15*time.Minute, zap.NewNop())
	triggered, err := evaluator.EvaluateAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, triggered)

	stored, _ := store.PriceAlerts().Get(alert.ID)
	assert.False(t, stored.IsTriggered, "stale data must not trigger alerts")
}

func TestEvaluateAll_MissingSnapshotSkipped(t *testing.T) {
	store := memory.NewStore()
	seedAlert(store, uuid.New(), "90", entities.AlertDirectionBelow)

	evaluator := NewEvaluator(store, nil, 15*time.Minute, zap.NewNop())
	triggered, err := evaluator.EvaluateAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, triggered)
}

func TestEvaluateAll_SecondPassIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	assetID := uuid.New()
	seedAlert(store, assetID, "90", entities.AlertDirectionBelow)
	seedSnapshot(store, assetID, "85", time.Minute)

	evaluator := NewEvaluator(store, nil, 15*time.Minute, zap.NewNop())

	first, err := evaluator.EvaluateAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := evaluator.EvaluateAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, second, "a triggered alert stays triggered")
}

func TestEvaluateAll_InactiveAndTriggeredAlertsIgnored(t *testing.T) {
	store := memory.NewStore()
	assetID := uuid.New()
	seedSnapshot(store, assetID, "85", time.Minute)

	inactive := seedAlert(store, assetID, "90", entities.AlertDirectionBelow)
	inactive.IsActive = false
	memory.Seed(store.PriceAlerts(), inactive)

	fired := seedAlert(store, assetID, "90", entities.AlertDirectionBelow)
	fired.IsTriggered = true
	memory.Seed(store.PriceAlerts(), fired)

	evaluator := NewEvaluator(store, nil, 15*time.Minute, zap.NewNop())
	triggered, err := evaluator.EvaluateAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, triggered)
}

func TestEvaluateAll_NotifiesWithSnapshotPrice(t *testing.T) {
	store := memory.NewStore()
	assetID := uuid.New()
	alert := seedAlert(store, assetID, "90", entities.AlertDirectionBelow)
	seedSnapshot(store, assetID, "85", time.Minute)

	notifier := &fakeNotifier{}
	evaluator := NewEvaluator(store, notifier, 15*time.Minute, zap.NewNop())

	_, err := evaluator.EvaluateAll(context.Background())
	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, alert.ID, notifier.sent[0].alertID)
	assert.True(t, notifier.sent[0].price.Equal(decimal.RequireFromString("85")))
}

func TestEvaluateAll_NotifierFailureDoesNotRollBackTrigger(t *testing.T) {
	store := memory.NewStore()
	assetID := uuid.New()
	alert := seedAlert(store, assetID, "90", entities.AlertDirectionBelow)
	seedSnapshot(store, assetID, "85", time.Minute)

	notifier := &fakeNotifier{err: errors.New("smtp down")}
	evaluator := NewEvaluator(store, notifier, 15*time.Minute, zap.NewNop())

	triggered, err := evaluator.EvaluateAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, triggered, 1)

	stored, _ := store.PriceAlerts().Get(alert.ID)
	assert.True(t, stored.IsTriggered)
}

func TestEvaluateAll_WritesAuditRecord(t *testing.T) {
	store := memory.NewStore()
	assetID := uuid.New()
	alert := seedAlert(store, assetID, "90", entities.AlertDirectionBelow)
	seedSnapshot(store, assetID, "85", time.Minute)

	evaluator := NewEvaluator(store, nil, 15*time.Minute, zap.NewNop())
	_, err := evaluator.EvaluateAll(context.Background())
	require.NoError(t, err)

	logs := store.AuditLogs().All()
	require.Len(t, logs, 1)
	assert.Equal(t, entities.AuditActionAlertTriggered, logs[0].Action)
	assert.Equal(t, alert.ID, logs[0].ResourceID)
}

func TestRearm_ResetsTriggeredState(t *testing.T) {
	store := memory.NewStore()
	assetID := uuid.New()
	now := time.Now().UTC()

	asset := &entities.Asset{ID: assetID, Symbol: "AAPL", AssetType: entities.AssetTypeStock, IsActive: true}
	memory.Seed(store.Assets(), asset)

	userID := uuid.New()
	triggeredAt := now.Add(-time.Hour)
	alert := &entities.PriceAlert{
		ID:          uuid.New(),
		UserID:      userID,
		AssetID:     assetID,
		TargetPrice: decimal.RequireFromString("90"),
		Direction:   entities.AlertDirectionBelow,
		IsActive:    true,
		IsTriggered: true,
		TriggeredAt: &triggeredAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	memory.Seed(store.PriceAlerts(), alert)

	service := NewService(store, zap.NewNop())
	rearmed, err := service.Rearm(context.Background(), userID, alert.ID)
	require.NoError(t, err)
	assert.False(t, rearmed.IsTriggered)
	assert.Nil(t, rearmed.TriggeredAt)

	stored, _ := store.PriceAlerts().Get(alert.ID)
	assert.False(t, stored.IsTriggered)

	_, err = service.Rearm(context.Background(), uuid.New(), alert.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestCreateAlert(t *testing.T) {
	store := memory.NewStore()
	asset := &entities.Asset{ID: uuid.New(), Symbol: "AAPL", AssetType: entities.AssetTypeStock, IsActive: true}
	memory.Seed(store.Assets(), asset)

	service := NewService(store, zap.NewNop())
	userID := uuid.New()

	alert, err := service.CreateAlert(context.Background(), userID, CreateAlertRequest{
		AssetID:     asset.ID,
		TargetPrice: decimal.RequireFromString("150"),
		Direction:   entities.AlertDirectionAbove,
		NotifyEmail: "trader@example.com",
	})
	require.NoError(t, err)
	assert.True(t, alert.IsActive)
	assert.False(t, alert.IsTriggered)
	assert.Equal(t, 1, store.PriceAlerts().Len())

	_, err = service.CreateAlert(context.Background(), userID, CreateAlertRequest{
		AssetID:     asset.ID,
		TargetPrice: decimal.Zero,
		Direction:   entities.AlertDirectionAbove,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidInput(err))

	_, err = service.CreateAlert(context.Background(), userID, CreateAlertRequest{
		AssetID:     uuid.New(),
		TargetPrice: decimal.RequireFromString("10"),
		Direction:   entities.AlertDirectionAbove,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
