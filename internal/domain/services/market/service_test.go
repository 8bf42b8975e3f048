package market

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/entities"
	apperrors "github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/errors"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/infrastructure/cache"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/infrastructure/repositories/memory"
)

// fakeCache is a map-backed stand-in for the Redis quote cache
type fakeCache struct {
	entries map[string][]byte
	sets    int
	gets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = data
	f.sets++
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	f.gets++
	data, ok := f.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (f *fakeCache) Del(_ context.Context, key string) error {
	delete(f.entries, key)
	return nil
}

func (f *fakeCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.entries[key]
	return ok, nil
}

func (f *fakeCache) Ping(context.Context) error { return nil }
func (f *fakeCache) Close() error               { return nil }

func seedAsset(store *memory.Store) *entities.Asset {
	now := time.Now().UTC()
	asset := &entities.Asset{
		ID:        uuid.New(),
		Symbol:    "AAPL",
		Name:      "Apple Inc.",
		AssetType: entities.AssetTypeStock,
		Exchange:  "NASDAQ",
		Currency:  "USD",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	memory.Seed(store.Assets(), asset)
	return asset
}

func snapshotRequest(assetID uuid.UUID, price string) SnapshotRequest {
	return SnapshotRequest{
		AssetID:    assetID,
		Price:      decimal.RequireFromString(price),
		DataSource: "test",
	}
}

func TestIngestSnapshot_NonPositivePriceRejected(t *testing.T) {
	store := memory.NewStore()
	asset := seedAsset(store)
	service := NewService(store, nil, time.Minute, zap.NewNop())

	for _, price := range []string{"0", "-1"} {
		_, err := service.IngestSnapshot(context.Background(), snapshotRequest(asset.ID, price))
		require.Error(t, err)
		assert.True(t, apperrors.IsInvalidInput(err))
	}
	assert.Equal(t, 0, store.MarketData().Len())
}

func TestIngestSnapshot_CreatesRow(t *testing.T) {
	store := memory.NewStore()
	asset := seedAsset(store)
	service := NewService(store, nil, time.Minute, zap.NewNop())

	snapshot, err := service.IngestSnapshot(context.Background(), snapshotRequest(asset.ID, "187.25"))
	require.NoError(t, err)
	assert.True(t, snapshot.Price.Equal(decimal.RequireFromString("187.25")))
	assert.Equal(t, 1, store.MarketData().Len())
}

func TestIngestSnapshot_OverwritesExistingRow(t *testing.T) {
	store := memory.NewStore()
	asset := seedAsset(store)
	service := NewService(store, nil, time.Minute, zap.NewNop())

	first, err := service.IngestSnapshot(context.Background(), snapshotRequest(asset.ID, "100"))
	require.NoError(t, err)

	volume := int64(12345)
	req := snapshotRequest(asset.ID, "105")
	req.Volume = &volume
	second, err := service.IngestSnapshot(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "one snapshot row per asset")
	assert.Equal(t, 1, store.MarketData().Len())

	stored, ok := store.MarketData().Get(first.ID)
	require.True(t, ok)
	assert.True(t, stored.Price.Equal(decimal.RequireFromString("105")))
	assert.True(t, stored.Volume.Valid)
	assert.Equal(t, volume, stored.Volume.Int64)
}

func TestIngestSnapshot_OmittedFieldsCleared(t *testing.T) {
	store := memory.NewStore()
	asset := seedAsset(store)
	service := NewService(store, nil, time.Minute, zap.NewNop())

	volume := int64(999)
	req := snapshotRequest(asset.ID, "100")
	req.Volume = &volume
	req.OpenPrice = decimal.NewNullDecimal(decimal.RequireFromString("98"))
	_, err := service.IngestSnapshot(context.Background(), req)
	require.NoError(t, err)

	snapshot, err := service.IngestSnapshot(context.Background(), snapshotRequest(asset.ID, "101"))
	require.NoError(t, err)
	assert.False(t, snapshot.Volume.Valid, "refresh replaces the whole row")
	assert.False(t, snapshot.OpenPrice.Valid)
}

func TestIngestSnapshot_UnknownAssetRejected(t *testing.T) {
	service := NewService(memory.NewStore(), nil, time.Minute, zap.NewNop())

	_, err := service.IngestSnapshot(context.Background(), snapshotRequest(uuid.New(), "100"))
	assert.True(t, apperrors.IsNotFound(err))
}

func TestIngestSnapshot_RefreshesOpenPositions(t *testing.T) {
	store := memory.NewStore()
	asset := seedAsset(store)
	service := NewService(store, nil, time.Minute, zap.NewNop())

	now := time.Now().UTC()
	position := &entities.PortfolioPosition{
		ID:                   uuid.New(),
		PortfolioID:          uuid.New(),
		AssetID:              asset.ID,
		Quantity:             decimal.RequireFromString("10"),
		AveragePurchasePrice: decimal.RequireFromString("90"),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	memory.Seed(store.Positions(), position)

	_, err := service.IngestSnapshot(context.Background(), snapshotRequest(asset.ID, "110"))
	require.NoError(t, err)

	refreshed, ok := store.Positions().Get(position.ID)
	require.True(t, ok)
	require.True(t, refreshed.CurrentPrice.Valid)
	assert.True(t, refreshed.CurrentPrice.Decimal.Equal(decimal.RequireFromString("110")))
	require.NotNil(t, refreshed.LastPriceUpdate)
}

func TestIngestSnapshot_WarmsQuoteCache(t *testing.T) {
	store := memory.NewStore()
	asset := seedAsset(store)
	redis := newFakeCache()
	service := NewService(store, redis, time.Minute, zap.NewNop())

	_, err := service.IngestSnapshot(context.Background(), snapshotRequest(asset.ID, "100"))
	require.NoError(t, err)
	assert.Equal(t, 1, redis.sets)
}

func TestGetQuote_ServedFromCacheWhenWarm(t *testing.T) {
	store := memory.NewStore()
	asset := seedAsset(store)
	redis := newFakeCache()
	service := NewService(store, redis, time.Minute, zap.NewNop())

	_, err := service.IngestSnapshot(context.Background(), snapshotRequest(asset.ID, "100"))
	require.NoError(t, err)

	quote, err := service.GetQuote(context.Background(), asset.ID)
	require.NoError(t, err)
	assert.True(t, quote.Price.Equal(decimal.RequireFromString("100")))
	assert.Equal(t, 1, redis.sets, "cache hit should not re-cache")
}

func TestGetQuote_ColdCacheFallsBackToStoreAndRecaches(t *testing.T) {
	store := memory.NewStore()
	asset := seedAsset(store)
	service := NewService(store, nil, time.Minute, zap.NewNop())

	_, err := service.IngestSnapshot(context.Background(), snapshotRequest(asset.ID, "100"))
	require.NoError(t, err)

	redis := newFakeCache()
	cachedService := NewService(store, redis, time.Minute, zap.NewNop())

	quote, err := cachedService.GetQuote(context.Background(), asset.ID)
	require.NoError(t, err)
	assert.True(t, quote.Price.Equal(decimal.RequireFromString("100")))
	assert.Equal(t, 1, redis.sets, "miss should re-warm the cache")
}

func TestGetQuote_UnknownAssetReturnsNil(t *testing.T) {
	service := NewService(memory.NewStore(), nil, time.Minute, zap.NewNop())

	quote, err := service.GetQuote(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, quote)
}
