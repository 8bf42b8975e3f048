// Package repositories defines the persistence contracts the domain layer
// depends on: a generic per-entity repository, the unit of work that scopes
// a group of repository operations into one atomic flush, and the factory
// services use to open a fresh unit of work per request.
package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/entities"
)

// Filter is an equality conjunction over entity columns, with optional
// ordering and limit. It is deliberately small: composite equality covers
// every lookup the engine needs, uniqueness checks included.
type Filter struct {
	Eq      map[string]any
	OrderBy []string
	Limit   int
}

// Where starts a filter with a single equality condition
func Where(column string, value any) Filter {
	return Filter{Eq: map[string]any{column: value}}
}

// And adds another equality condition
func (f Filter) And(column string, value any) Filter {
	if f.Eq == nil {
		f.Eq = make(map[string]any)
	}
	f.Eq[column] = value
	return f
}

// Sorted sets the result ordering (ascending, column order significant)
func (f Filter) Sorted(columns ...string) Filter {
	f.OrderBy = columns
	return f
}

// Limited caps the number of results
func (f Filter) Limited(n int) Filter {
	f.Limit = n
	return f
}

// Repository is the generic data-access contract for one entity kind.
// Mutations are staged on the owning unit of work and become durable only
// when it commits (or saves); reads always see committed state.
type Repository[T any] interface {
	// GetByID returns the entity or ErrNotFound, never a zero value
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	GetAll(ctx context.Context) ([]*T, error)
	Find(ctx context.Context, f Filter) ([]*T, error)
	// FirstOrDefault returns (nil, nil) when nothing matches
	FirstOrDefault(ctx context.Context, f Filter) (*T, error)
	// Add stages an insert on the owning unit of work
	Add(ctx context.Context, entity *T) error
	// Update stages an update; entities with a version column are checked
	// optimistically at flush time
	Update(ctx context.Context, entity *T) error
	// Delete stages a removal
	Delete(ctx context.Context, entity *T) error
	Exists(ctx context.Context, f Filter) (bool, error)
	Count(ctx context.Context, f Filter) (int64, error)
}

// UnitOfWork groups repository operations into one atomic flush. All
// repository handles are constructed when the unit of work is created;
// there is no lazy initialization to hide mutable state.
//
// Staged mutations are applied by Commit (inside an explicit transaction)
// or Save (without one, for single-step operations). Any failure during
// Commit rolls the transaction back before the error propagates. Close
// discards whatever is still staged; it never implicitly commits.
type UnitOfWork interface {
	Assets() Repository[entities.Asset]
	Portfolios() Repository[entities.Portfolio]
	Positions() Repository[entities.PortfolioPosition]
	Transactions() Repository[entities.Transaction]
	PriceAlerts() Repository[entities.PriceAlert]
	MarketData() Repository[entities.MarketDataSnapshot]
	Watchlists() Repository[entities.Watchlist]
	WatchlistItems() Repository[entities.WatchlistItem]
	AuditLogs() Repository[entities.AuditLog]

	// Begin opens an explicit transaction scope; fails if one is already open
	Begin(ctx context.Context) error
	// Commit flushes staged operations inside the open transaction. A write
	// conflict surfaces ErrConcurrencyConflict, any other backend failure
	// ErrPersistence; in both cases the transaction is rolled back first.
	Commit(ctx context.Context) error
	// Rollback discards staged operations; fails if no transaction is open
	Rollback() error
	// Save flushes staged operations without an explicit transaction
	// wrapper; fails if an explicit transaction is open
	Save(ctx context.Context) error
	// Close releases the unit of work; an open transaction is rolled back
	Close() error
}

// UnitOfWorkFactory opens a fresh unit of work per logical operation
type UnitOfWorkFactory interface {
	NewUnitOfWork() UnitOfWork
}
