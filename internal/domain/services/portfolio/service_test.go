package portfolio

import (
	"context"
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

func newService(store *memory.Store) *Service {
	return NewService(store, zap.NewNop())
}

func seedPosition(store *memory.Store, portfolioID uuid.UUID, quantity, avgPrice, currentPrice string) {
	now := time.Now().UTC()
	pos := &entities.PortfolioPosition{
		ID:                   uuid.New(),
		PortfolioID:          portfolioID,
		AssetID:              uuid.New(),
		Quantity:             decimal.RequireFromString(quantity),
		AveragePurchasePrice: decimal.RequireFromString(avgPrice),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if currentPrice != "" {
		pos.CurrentPrice = decimal.NewNullDecimal(decimal.RequireFromString(currentPrice))
	}
	memory.Seed(store.Positions(), pos)
}

func TestCreatePortfolio_FirstBecomesDefault(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)
	userID := uuid.New()

	created, err := service.CreatePortfolio(context.Background(), userID, CreatePortfolioRequest{Name: "Growth"})
	require.NoError(t, err)
	assert.True(t, created.IsDefault)
	assert.Equal(t, "USD", created.BaseCurrency)
}

func TestCreatePortfolio_NewDefaultDemotesPrevious(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)
	userID := uuid.New()

	first, err := service.CreatePortfolio(context.Background(), userID, CreatePortfolioRequest{Name: "Growth"})
	require.NoError(t, err)

	second, err := service.CreatePortfolio(context.Background(), userID, CreatePortfolioRequest{
		Name:      "Retirement",
		IsDefault: true,
	})
	require.NoError(t, err)
	assert.True(t, second.IsDefault)

	demoted, ok := store.Portfolios().Get(first.ID)
	require.True(t, ok)
	assert.False(t, demoted.IsDefault)
}

func TestCreatePortfolio_SecondNonDefaultLeavesFirstAlone(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)
	userID := uuid.New()

	first, err := service.CreatePortfolio(context.Background(), userID, CreatePortfolioRequest{Name: "Growth"})
	require.NoError(t, err)

	second, err := service.CreatePortfolio(context.Background(), userID, CreatePortfolioRequest{Name: "Side bets"})
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	kept, ok := store.Portfolios().Get(first.ID)
	require.True(t, ok)
	assert.True(t, kept.IsDefault)
}

func TestCreatePortfolio_EmptyNameRejected(t *testing.T) {
	service := newService(memory.NewStore())

	_, err := service.CreatePortfolio(context.Background(), uuid.New(), CreatePortfolioRequest{})
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestCreatePortfolio_WritesAuditRecord(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)
	userID := uuid.New()

	created, err := service.CreatePortfolio(context.Background(), userID, CreatePortfolioRequest{Name: "Growth"})
	require.NoError(t, err)

	logs := store.AuditLogs().All()
	require.Len(t, logs, 1)
	assert.Equal(t, entities.AuditActionPortfolioCreated, logs[0].Action)
	assert.Equal(t, created.ID, logs[0].ResourceID)
}

func TestGetPortfolio_ForeignUserForbidden(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)

	created, err := service.CreatePortfolio(context.Background(), uuid.New(), CreatePortfolioRequest{Name: "Growth"})
	require.NoError(t, err)

	_, err = service.GetPortfolio(context.Background(), uuid.New(), created.ID)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestGetSummary_AggregatesPositions(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)
	userID := uuid.New()

	created, err := service.CreatePortfolio(context.Background(), userID, CreatePortfolioRequest{Name: "Growth"})
	require.NoError(t, err)

	seedPosition(store, created.ID, "10", "100", "120")
	seedPosition(store, created.ID, "5", "40", "")

	summary, err := service.GetSummary(context.Background(), userID, created.ID)
	require.NoError(t, err)
	assert.True(t, summary.TotalInvested.Equal(decimal.RequireFromString("1200")))
	assert.True(t, summary.TotalValue.Equal(decimal.RequireFromString("1400")))
	assert.True(t, summary.UnrealizedGainLoss.Equal(decimal.RequireFromString("200")))
	assert.Len(t, summary.Positions, 2)
}

func TestGetSummary_EmptyPortfolioIsZero(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)
	userID := uuid.New()

	created, err := service.CreatePortfolio(context.Background(), userID, CreatePortfolioRequest{Name: "Growth"})
	require.NoError(t, err)

	summary, err := service.GetSummary(context.Background(), userID, created.ID)
	require.NoError(t, err)
	assert.True(t, summary.TotalInvested.IsZero())
	assert.True(t, summary.TotalValue.IsZero())
}
