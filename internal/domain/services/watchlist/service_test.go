package watchlist

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

func seedTestAsset(store *memory.Store, symbol string) *entities.Asset {
	now := time.Now().UTC()
	asset := &entities.Asset{
		ID:        uuid.New(),
		Symbol:    symbol,
		Name:      symbol + " Inc.",
		AssetType: entities.AssetTypeStock,
		Currency:  "USD",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	memory.Seed(store.Assets(), asset)
	return asset
}

func createList(t *testing.T, service *Service, userID uuid.UUID, name string) *entities.Watchlist {
	t.Helper()
	created, err := service.CreateWatchlist(context.Background(), userID, CreateWatchlistRequest{Name: name})
	require.NoError(t, err)
	return created
}

func TestCreateWatchlist_FirstBecomesDefault(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)
	userID := uuid.New()

	created := createList(t, service, userID, "Tech")
	assert.True(t, created.IsDefault)

	second, err := service.CreateWatchlist(context.Background(), userID, CreateWatchlistRequest{Name: "Energy"})
	require.NoError(t, err)
	assert.False(t, second.IsDefault)
}

func TestCreateWatchlist_NewDefaultDemotesPrevious(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)
	userID := uuid.New()

	first := createList(t, service, userID, "Tech")

	second, err := service.CreateWatchlist(context.Background(), userID, CreateWatchlistRequest{
		Name:      "Energy",
		IsDefault: true,
	})
	require.NoError(t, err)
	assert.True(t, second.IsDefault)

	demoted, ok := store.Watchlists().Get(first.ID)
	require.True(t, ok)
	assert.False(t, demoted.IsDefault)
}

func TestCreateWatchlist_EmptyNameRejected(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)

	_, err := service.CreateWatchlist(context.Background(), uuid.New(), CreateWatchlistRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestCreateWatchlist_WritesAuditRecord(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)
	userID := uuid.New()

	created := createList(t, service, userID, "Tech")

	logs := store.AuditLogs().All()
	require.Len(t, logs, 1)
	assert.Equal(t, entities.AuditActionWatchlistCreated, logs[0].Action)
	assert.Equal(t, created.ID, logs[0].ResourceID)
}

func TestAddItem_PutsAssetOnWatchlist(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)
	userID := uuid.New()
	asset := seedTestAsset(store, "AAPL")
	list := createList(t, service, userID, "Tech")

	item, err := service.AddItem(context.Background(), userID, list.ID, AddItemRequest{
		AssetID: asset.ID,
		Notes:   "earnings next week",
	})
	require.NoError(t, err)
	assert.Equal(t, list.ID, item.WatchlistID)
	assert.Equal(t, asset.ID, item.AssetID)
	assert.Equal(t, 1, store.WatchlistItems().Len())
}

func TestAddItem_DuplicateAssetRejected(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)
	userID := uuid.New()
	asset := seedTestAsset(store, "AAPL")
	list := createList(t, service, userID, "Tech")

	_, err := service.AddItem(context.Background(), userID, list.ID, AddItemRequest{AssetID: asset.ID})
	require.NoError(t, err)

	_, err = service.AddItem(context.Background(), userID, list.ID, AddItemRequest{AssetID: asset.ID})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidInput(err))
	assert.Equal(t, 1, store.WatchlistItems().Len())
}

func TestAddItem_UnknownAssetRejected(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)
	userID := uuid.New()
	list := createList(t, service, userID, "Tech")

	_, err := service.AddItem(context.Background(), userID, list.ID, AddItemRequest{AssetID: uuid.New()})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAddItem_ForeignWatchlistForbidden(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)
	asset := seedTestAsset(store, "AAPL")
	list := createList(t, service, uuid.New(), "Tech")

	_, err := service.AddItem(context.Background(), uuid.New(), list.ID, AddItemRequest{AssetID: asset.ID})
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestRemoveItem(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)
	userID := uuid.New()
	asset := seedTestAsset(store, "AAPL")
	list := createList(t, service, userID, "Tech")

	item, err := service.AddItem(context.Background(), userID, list.ID, AddItemRequest{AssetID: asset.ID})
	require.NoError(t, err)

	require.NoError(t, service.RemoveItem(context.Background(), userID, list.ID, item.ID))
	assert.Equal(t, 0, store.WatchlistItems().Len())
}

func TestRemoveItem_WrongWatchlistIsNotFound(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)
	userID := uuid.New()
	asset := seedTestAsset(store, "AAPL")
	list := createList(t, service, userID, "Tech")
	other := createList(t, service, userID, "Energy")

	item, err := service.AddItem(context.Background(), userID, list.ID, AddItemRequest{AssetID: asset.ID})
	require.NoError(t, err)

	err = service.RemoveItem(context.Background(), userID, other.ID, item.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, 1, store.WatchlistItems().Len())
}

func TestDeleteWatchlist_RemovesItemsToo(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)
	userID := uuid.New()
	list := createList(t, service, userID, "Tech")

	for _, symbol := range []string{"AAPL", "MSFT"} {
		asset := seedTestAsset(store, symbol)
		_, err := service.AddItem(context.Background(), userID, list.ID, AddItemRequest{AssetID: asset.ID})
		require.NoError(t, err)
	}

	require.NoError(t, service.DeleteWatchlist(context.Background(), userID, list.ID))
	assert.Equal(t, 0, store.Watchlists().Len())
	assert.Equal(t, 0, store.WatchlistItems().Len())
}

func TestDeleteWatchlist_ForeignUserForbidden(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)
	list := createList(t, service, uuid.New(), "Tech")

	err := service.DeleteWatchlist(context.Background(), uuid.New(), list.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
	assert.Equal(t, 1, store.Watchlists().Len())
}

func TestGetItems_JoinsAssetsAndQuotes(t *testing.T) {
	store := memory.NewStore()
	service := newService(store)
	userID := uuid.New()
	quoted := seedTestAsset(store, "AAPL")
	unquoted := seedTestAsset(store, "MSFT")
	list := createList(t, service, userID, "Tech")

	_, err := service.AddItem(context.Background(), userID, list.ID, AddItemRequest{AssetID: quoted.ID})
	require.NoError(t, err)
	_, err = service.AddItem(context.Background(), userID, list.ID, AddItemRequest{AssetID: unquoted.ID})
	require.NoError(t, err)

	memory.Seed(store.MarketData(), &entities.MarketDataSnapshot{
		ID:          uuid.New(),
		AssetID:     quoted.ID,
		Price:       decimal.RequireFromString("187.25"),
		DataSource:  "test",
		LastUpdated: time.Now().UTC(),
	})

	views, err := service.GetItems(context.Background(), userID, list.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)

	byAsset := make(map[uuid.UUID]*ItemView)
	for _, v := range views {
		byAsset[v.Asset.ID] = v
	}
	require.NotNil(t, byAsset[quoted.ID].Quote)
	assert.True(t, byAsset[quoted.ID].Quote.Price.Equal(decimal.RequireFromString("187.25")))
	assert.Nil(t, byAsset[unquoted.ID].Quote)
}
