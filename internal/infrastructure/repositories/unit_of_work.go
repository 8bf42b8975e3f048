package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/entities"
	apperrors "github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/errors"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/repositories"
)

// Postgres error codes translated into domain errors
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// operation is one staged mutation: a bound positional statement plus an
// optional post-exec check (rows-affected verification).
type operation struct {
	query  string
	args   []any
	verify func(sql.Result) error
}

// Factory opens sqlx-backed units of work against one connection pool
type Factory struct {
	db           *sqlx.DB
	queryTimeout time.Duration
	logger       *zap.Logger
}

// NewFactory creates a unit-of-work factory
func NewFactory(db *sqlx.DB, queryTimeout time.Duration, logger *zap.Logger) *Factory {
	return &Factory{db: db, queryTimeout: queryTimeout, logger: logger}
}

// NewUnitOfWork opens a fresh unit of work with every repository handle
// constructed eagerly
func (f *Factory) NewUnitOfWork() repositories.UnitOfWork {
	uow := &UnitOfWork{
		db:           f.db,
		queryTimeout: f.queryTimeout,
		logger:       f.logger,
	}
	uow.assets = newSQLRepository[entities.Asset](uow, assetMeta)
	uow.portfolios = newSQLRepository[entities.Portfolio](uow, portfolioMeta)
	uow.positions = newSQLRepository[entities.PortfolioPosition](uow, positionMeta)
	uow.transactions = newSQLRepository[entities.Transaction](uow, transactionMeta)
	uow.priceAlerts = newSQLRepository[entities.PriceAlert](uow, priceAlertMeta)
	uow.marketData = newSQLRepository[entities.MarketDataSnapshot](uow, marketDataMeta)
	uow.watchlists = newSQLRepository[entities.Watchlist](uow, watchlistMeta)
	uow.watchlistItems = newSQLRepository[entities.WatchlistItem](uow, watchlistItemMeta)
	uow.auditLogs = newSQLRepository[entities.AuditLog](uow, auditLogMeta)
	return uow
}

// UnitOfWork stages repository mutations and flushes them atomically.
// Reads go straight to the pool and see committed state; staged writes
// become visible only after Commit or Save succeeds, so a stale
// read-then-write is rejected at flush time by the version checks, not
// silently merged.
type UnitOfWork struct {
	db           *sqlx.DB
	queryTimeout time.Duration
	logger       *zap.Logger

	begun   bool
	closed  bool
	pending []operation

	assets         repositories.Repository[entities.Asset]
	portfolios     repositories.Repository[entities.Portfolio]
	positions      repositories.Repository[entities.PortfolioPosition]
	transactions   repositories.Repository[entities.Transaction]
	priceAlerts    repositories.Repository[entities.PriceAlert]
	marketData     repositories.Repository[entities.MarketDataSnapshot]
	watchlists     repositories.Repository[entities.Watchlist]
	watchlistItems repositories.Repository[entities.WatchlistItem]
	auditLogs      repositories.Repository[entities.AuditLog]
}

func (u *UnitOfWork) Assets() repositories.Repository[entities.Asset]         { return u.assets }
func (u *UnitOfWork) Portfolios() repositories.Repository[entities.Portfolio] { return u.portfolios }
func (u *UnitOfWork) Positions() repositories.Repository[entities.PortfolioPosition] {
	return u.positions
}
func (u *UnitOfWork) Transactions() repositories.Repository[entities.Transaction] {
	return u.transactions
}
func (u *UnitOfWork) PriceAlerts() repositories.Repository[entities.PriceAlert] {
	return u.priceAlerts
}
func (u *UnitOfWork) MarketData() repositories.Repository[entities.MarketDataSnapshot] {
	return u.marketData
}
func (u *UnitOfWork) Watchlists() repositories.Repository[entities.Watchlist] {
	return u.watchlists
}
func (u *UnitOfWork) WatchlistItems() repositories.Repository[entities.WatchlistItem] {
	return u.watchlistItems
}
func (u *UnitOfWork) AuditLogs() repositories.Repository[entities.AuditLog] { return u.auditLogs }

func (u *UnitOfWork) stage(op operation) {
	u.pending = append(u.pending, op)
}

// queryContext applies the configured per-statement timeout when the caller
// has not set a tighter deadline
func (u *UnitOfWork) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if u.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, u.queryTimeout)
}

// Begin opens an explicit transaction scope
func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.closed {
		return apperrors.PersistenceError("unit of work is closed", nil)
	}
	if u.begun {
		return apperrors.PersistenceError("a transaction is already in progress", nil)
	}
	u.begun = true
	return nil
}

// Commit flushes staged operations inside one database transaction. On any
// failure the transaction is rolled back, the staged operations are
// discarded and a translated domain error is returned.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if !u.begun {
		return apperrors.PersistenceError("no transaction is in progress", nil)
	}
	defer func() {
		u.pending = nil
		u.begun = false
	}()

	ctx, cancel := u.queryContext(ctx)
	defer cancel()

	tx, err := u.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return apperrors.PersistenceError("failed to begin transaction", err)
	}

	for _, op := range u.pending {
		res, execErr := tx.ExecContext(ctx, op.query, op.args...)
		if execErr == nil && op.verify != nil {
			execErr = op.verify(res)
		}
		if execErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				u.logger.Error("Rollback failed after flush error", zap.Error(rbErr))
			}
			return translateDBError(execErr)
		}
	}

	if err := tx.Commit(); err != nil {
		return translateDBError(err)
	}
	return nil
}

// Rollback discards staged operations
func (u *UnitOfWork) Rollback() error {
	if !u.begun {
		return apperrors.PersistenceError("no transaction is in progress", nil)
	}
	u.pending = nil
	u.begun = false
	return nil
}

// Save flushes staged operations directly against the pool, for operations
// that do not need multi-step atomicity
func (u *UnitOfWork) Save(ctx context.Context) error {
	if u.begun {
		return apperrors.PersistenceError("a transaction is in progress; use Commit", nil)
	}
	if u.closed {
		return apperrors.PersistenceError("unit of work is closed", nil)
	}
	defer func() { u.pending = nil }()

	ctx, cancel := u.queryContext(ctx)
	defer cancel()

	for _, op := range u.pending {
		res, err := u.db.ExecContext(ctx, op.query, op.args...)
		if err == nil && op.verify != nil {
			err = op.verify(res)
		}
		if err != nil {
			return translateDBError(err)
		}
	}
	return nil
}

// Close releases the unit of work. Anything still staged is discarded; an
// open transaction scope is dropped, never implicitly committed.
func (u *UnitOfWork) Close() error {
	if u.closed {
		return nil
	}
	if u.begun {
		u.logger.Warn("Unit of work closed with open transaction, rolling back",
			zap.Int("staged_operations", len(u.pending)))
	}
	u.pending = nil
	u.begun = false
	u.closed = true
	return nil
}

// translateDBError maps storage-level failures onto the domain taxonomy.
// Lost races on unique constraints and serialization failures are surfaced
// as concurrency conflicts so the caller retries with a fresh read; domain
// errors produced by row-affected checks pass through untouched.
func translateDBError(err error) error {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation, pgSerializationFailure, pgDeadlockDetected:
			return apperrors.ConcurrencyConflictError(pqErr.Table)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.PersistenceError("statement timed out", err)
	}
	return apperrors.PersistenceError(fmt.Sprintf("storage failure: %v", err), err)
}
