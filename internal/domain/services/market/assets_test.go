package market

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/entities"
	apperrors "github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/errors"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/infrastructure/repositories/memory"
)

func TestCreateAsset_NormalizesSymbol(t *testing.T) {
	store := memory.NewStore()
	service := NewService(store, nil, time.Minute, zap.NewNop())

	asset, err := service.CreateAsset(context.Background(), CreateAssetRequest{
		Symbol:    "  aapl ",
		Name:      "Apple Inc.",
		AssetType: entities.AssetTypeStock,
	})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", asset.Symbol)
	assert.Equal(t, "USD", asset.Currency)
	assert.True(t, asset.IsActive)
}

func TestCreateAsset_DuplicateSymbolRejected(t *testing.T) {
	store := memory.NewStore()
	service := NewService(store, nil, time.Minute, zap.NewNop())

	req := CreateAssetRequest{Symbol: "VOO", Name: "Vanguard S&P 500", AssetType: entities.AssetTypeETF}
	_, err := service.CreateAsset(context.Background(), req)
	require.NoError(t, err)

	_, err = service.CreateAsset(context.Background(), req)
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestCreateAsset_InvalidTypeRejected(t *testing.T) {
	service := NewService(memory.NewStore(), nil, time.Minute, zap.NewNop())

	_, err := service.CreateAsset(context.Background(), CreateAssetRequest{
		Symbol:    "XYZ",
		Name:      "Unknown",
		AssetType: entities.AssetType("derivative"),
	})
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestDeactivateAsset_DelistsWithoutDeleting(t *testing.T) {
	store := memory.NewStore()
	service := NewService(store, nil, time.Minute, zap.NewNop())

	asset, err := service.CreateAsset(context.Background(), CreateAssetRequest{
		Symbol:    "BTC",
		Name:      "Bitcoin",
		AssetType: entities.AssetTypeCrypto,
	})
	require.NoError(t, err)

	require.NoError(t, service.DeactivateAsset(context.Background(), asset.ID))

	stored, ok := store.Assets().Get(asset.ID)
	require.True(t, ok)
	assert.False(t, stored.IsActive)
}

func TestDeactivateAsset_UnknownAsset(t *testing.T) {
	service := NewService(memory.NewStore(), nil, time.Minute, zap.NewNop())
	err := service.DeactivateAsset(context.Background(), uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestListAssets_SortedBySymbol(t *testing.T) {
	store := memory.NewStore()
	service := NewService(store, nil, time.Minute, zap.NewNop())

	for _, symbol := range []string{"VOO", "AAPL", "MSFT"} {
		_, err := service.CreateAsset(context.Background(), CreateAssetRequest{
			Symbol:    symbol,
			Name:      symbol,
			AssetType: entities.AssetTypeStock,
		})
		require.NoError(t, err)
	}

	assets, err := service.ListAssets(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 3)
	assert.Equal(t, "AAPL", assets[0].Symbol)
	assert.Equal(t, "MSFT", assets[1].Symbol)
	assert.Equal(t, "VOO", assets[2].Symbol)
}
