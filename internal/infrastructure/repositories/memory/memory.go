// Package memory provides a map-backed implementation of the domain
// unit-of-work contract. It mirrors the staging and optimistic-version
// semantics of the SQL implementation so services can be tested without a
// database.
package memory

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/entities"
	apperrors "github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/errors"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/repositories"
)

// Store holds every entity table and hands out units of work over them.
// It implements repositories.UnitOfWorkFactory.
type Store struct {
	mu             sync.Mutex
	assets         *Table[entities.Asset]
	portfolios     *Table[entities.Portfolio]
	positions      *Table[entities.PortfolioPosition]
	transactions   *Table[entities.Transaction]
	priceAlerts    *Table[entities.PriceAlert]
	marketData     *Table[entities.MarketDataSnapshot]
	watchlists     *Table[entities.Watchlist]
	watchlistItems *Table[entities.WatchlistItem]
	auditLogs      *Table[entities.AuditLog]
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		assets:         newTable[entities.Asset](nil),
		portfolios:     newTable[entities.Portfolio](nil),
		positions:      newTable[entities.PortfolioPosition]([]string{"portfolio_id", "asset_id"}),
		transactions:   newTable[entities.Transaction](nil),
		priceAlerts:    newTable[entities.PriceAlert](nil),
		marketData:     newTable[entities.MarketDataSnapshot]([]string{"asset_id"}),
		watchlists:     newTable[entities.Watchlist](nil),
		watchlistItems: newTable[entities.WatchlistItem]([]string{"watchlist_id", "asset_id"}),
		auditLogs:      newTable[entities.AuditLog](nil),
	}
}

// NewUnitOfWork opens a unit of work over the shared store
func (s *Store) NewUnitOfWork() repositories.UnitOfWork {
	uow := &unitOfWork{store: s}
	uow.assets = &repo[entities.Asset]{uow: uow, table: s.assets}
	uow.portfolios = &repo[entities.Portfolio]{uow: uow, table: s.portfolios}
	uow.positions = &repo[entities.PortfolioPosition]{uow: uow, table: s.positions}
	uow.transactions = &repo[entities.Transaction]{uow: uow, table: s.transactions}
	uow.priceAlerts = &repo[entities.PriceAlert]{uow: uow, table: s.priceAlerts}
	uow.marketData = &repo[entities.MarketDataSnapshot]{uow: uow, table: s.marketData}
	uow.watchlists = &repo[entities.Watchlist]{uow: uow, table: s.watchlists}
	uow.watchlistItems = &repo[entities.WatchlistItem]{uow: uow, table: s.watchlistItems}
	uow.auditLogs = &repo[entities.AuditLog]{uow: uow, table: s.auditLogs}
	return uow
}

// Seed inserts entities directly, bypassing staging, for test setup
func Seed[T any](t *Table[T], rows ...*T) {
	for _, r := range rows {
		t.rows[idOf(r)] = *r
	}
}

// Assets exposes the asset table for seeding
func (s *Store) Assets() *Table[entities.Asset] { return s.assets }

// Portfolios exposes the portfolio table for seeding
func (s *Store) Portfolios() *Table[entities.Portfolio] { return s.portfolios }

// Positions exposes the position table for seeding
func (s *Store) Positions() *Table[entities.PortfolioPosition] { return s.positions }

// Transactions exposes the transaction table for seeding
func (s *Store) Transactions() *Table[entities.Transaction] { return s.transactions }

// PriceAlerts exposes the alert table for seeding
func (s *Store) PriceAlerts() *Table[entities.PriceAlert] { return s.priceAlerts }

// MarketData exposes the snapshot table for seeding
func (s *Store) MarketData() *Table[entities.MarketDataSnapshot] { return s.marketData }

// Watchlists exposes the watchlist table for seeding
func (s *Store) Watchlists() *Table[entities.Watchlist] { return s.watchlists }

// WatchlistItems exposes the watchlist item table for seeding
func (s *Store) WatchlistItems() *Table[entities.WatchlistItem] { return s.watchlistItems }

// AuditLogs exposes the audit table for inspection
func (s *Store) AuditLogs() *Table[entities.AuditLog] { return s.auditLogs }

// table is one entity collection with optional composite unique keys
type Table[T any] struct {
	rows      map[uuid.UUID]T
	uniqueSet []string
}

func newTable[T any](uniqueSet []string) *Table[T] {
	return &Table[T]{rows: make(map[uuid.UUID]T), uniqueSet: uniqueSet}
}

// All returns value copies of every row, for test assertions
func (t *Table[T]) All() []*T {
	out := make([]*T, 0, len(t.rows))
	for _, v := range t.rows {
		row := v
		out = append(out, &row)
	}
	return out
}

// Get returns a copy of one row by id
func (t *Table[T]) Get(id uuid.UUID) (*T, bool) {
	v, ok := t.rows[id]
	if !ok {
		return nil, false
	}
	return &v, true
}

// Len returns the number of rows
func (t *Table[T]) Len() int { return len(t.rows) }

type unitOfWork struct {
	store   *Store
	begun   bool
	closed  bool
	pending []func(apply bool) error

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

func (u *unitOfWork) Assets() repositories.Repository[entities.Asset]         { return u.assets }
func (u *unitOfWork) Portfolios() repositories.Repository[entities.Portfolio] { return u.portfolios }
func (u *unitOfWork) Positions() repositories.Repository[entities.PortfolioPosition] {
	return u.positions
}
func (u *unitOfWork) Transactions() repositories.Repository[entities.Transaction] {
	return u.transactions
}
func (u *unitOfWork) PriceAlerts() repositories.Repository[entities.PriceAlert] {
	return u.priceAlerts
}
func (u *unitOfWork) MarketData() repositories.Repository[entities.MarketDataSnapshot] {
	return u.marketData
}
func (u *unitOfWork) Watchlists() repositories.Repository[entities.Watchlist] {
	return u.watchlists
}
func (u *unitOfWork) WatchlistItems() repositories.Repository[entities.WatchlistItem] {
	return u.watchlistItems
}
func (u *unitOfWork) AuditLogs() repositories.Repository[entities.AuditLog] { return u.auditLogs }

func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.closed {
		return apperrors.PersistenceError("unit of work is closed", nil)
	}
	if u.begun {
		return apperrors.PersistenceError("a transaction is already in progress", nil)
	}
	u.begun = true
	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if !u.begun {
		return apperrors.PersistenceError("no transaction is in progress", nil)
	}
	defer func() {
		u.pending = nil
		u.begun = false
	}()
	return u.flush()
}

func (u *unitOfWork) Rollback() error {
	if !u.begun {
		return apperrors.PersistenceError("no transaction is in progress", nil)
	}
	u.pending = nil
	u.begun = false
	return nil
}

func (u *unitOfWork) Save(ctx context.Context) error {
	if u.begun {
		return apperrors.PersistenceError("a transaction is in progress; use Commit", nil)
	}
	if u.closed {
		return apperrors.PersistenceError("unit of work is closed", nil)
	}
	defer func() { u.pending = nil }()
	return u.flush()
}

// flush applies staged mutations under the store lock. The first failing
// mutation aborts the whole batch with nothing applied, mirroring the
// rollback behavior of the SQL implementation.
func (u *unitOfWork) flush() error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	// dry-run first so a late failure cannot leave a partial batch behind
	for _, apply := range []bool{false, true} {
		for _, op := range u.pending {
			if err := op(apply); err != nil {
				return err
			}
		}
	}
	return nil
}

func (u *unitOfWork) Close() error {
	u.pending = nil
	u.begun = false
	u.closed = true
	return nil
}

type repo[T any] struct {
	uow   *unitOfWork
	table *Table[T]
}

func (r *repo[T]) snapshot() []*T {
	r.uow.store.mu.Lock()
	defer r.uow.store.mu.Unlock()
	return r.table.All()
}

func (r *repo[T]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	r.uow.store.mu.Lock()
	defer r.uow.store.mu.Unlock()
	v, ok := r.table.Get(id)
	if !ok {
		return nil, apperrors.NotFoundError("entity")
	}
	return v, nil
}

func (r *repo[T]) GetAll(ctx context.Context) ([]*T, error) {
	return r.Find(ctx, repositories.Filter{})
}

func (r *repo[T]) Find(ctx context.Context, f repositories.Filter) ([]*T, error) {
	var out []*T
	for _, row := range r.snapshot() {
		if matches(row, f) {
			out = append(out, row)
		}
	}
	sortRows(out, f.OrderBy)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *repo[T]) FirstOrDefault(ctx context.Context, f repositories.Filter) (*T, error) {
	f.Limit = 1
	rows, err := r.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *repo[T]) Add(ctx context.Context, entity *T) error {
	staged := *entity
	r.uow.pending = append(r.uow.pending, func(apply bool) error {
		id := idOf(&staged)
		if _, exists := r.table.rows[id]; exists {
			return apperrors.ConcurrencyConflictError("entity")
		}
		for otherID, other := range r.table.rows {
			if otherID != id && sameUniqueKey(&staged, &other, r.table.uniqueSet) {
				return apperrors.ConcurrencyConflictError("entity")
			}
		}
		if apply {
			r.table.rows[id] = staged
		}
		return nil
	})
	return nil
}

func (r *repo[T]) Update(ctx context.Context, entity *T) error {
	staged := *entity
	r.uow.pending = append(r.uow.pending, func(apply bool) error {
		id := idOf(&staged)
		current, exists := r.table.rows[id]
		if !exists {
			return apperrors.NotFoundError("entity")
		}
		stagedVersion, versioned := versionOf(&staged)
		if versioned {
			currentVersion, _ := versionOf(&current)
			if currentVersion != stagedVersion {
				return apperrors.ConcurrencyConflictError("entity")
			}
		}
		if apply {
			next := staged
			if versioned {
				setVersion(&next, stagedVersion+1)
			}
			r.table.rows[id] = next
		}
		return nil
	})
	return nil
}

func (r *repo[T]) Delete(ctx context.Context, entity *T) error {
	staged := *entity
	r.uow.pending = append(r.uow.pending, func(apply bool) error {
		id := idOf(&staged)
		if _, exists := r.table.rows[id]; !exists {
			return apperrors.NotFoundError("entity")
		}
		if apply {
			delete(r.table.rows, id)
		}
		return nil
	})
	return nil
}

func (r *repo[T]) Exists(ctx context.Context, f repositories.Filter) (bool, error) {
	n, err := r.Count(ctx, f)
	return n > 0, err
}

func (r *repo[T]) Count(ctx context.Context, f repositories.Filter) (int64, error) {
	f.Limit = 0
	rows, err := r.Find(ctx, f)
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

// reflection helpers keyed on db struct tags, matching the column names the
// SQL implementation uses

func fieldByColumn(v reflect.Value, column string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("db") == column {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func idOf[T any](e *T) uuid.UUID {
	f, ok := fieldByColumn(reflect.ValueOf(e).Elem(), "id")
	if !ok {
		return uuid.Nil
	}
	return f.Interface().(uuid.UUID)
}

func versionOf[T any](e *T) (int64, bool) {
	f, ok := fieldByColumn(reflect.ValueOf(e).Elem(), "version")
	if !ok {
		return 0, false
	}
	return f.Int(), true
}

func setVersion[T any](e *T, v int64) {
	if f, ok := fieldByColumn(reflect.ValueOf(e).Elem(), "version"); ok {
		f.SetInt(v)
	}
}

func matches[T any](e *T, f repositories.Filter) bool {
	v := reflect.ValueOf(e).Elem()
	for column, want := range f.Eq {
		field, ok := fieldByColumn(v, column)
		if !ok {
			return false
		}
		if !equalValues(field.Interface(), want) {
			return false
		}
	}
	return true
}

func equalValues(got, want any) bool {
	if g, ok := got.(decimal.Decimal); ok {
		if w, ok := want.(decimal.Decimal); ok {
			return g.Equal(w)
		}
	}
	return reflect.DeepEqual(got, want)
}

func sameUniqueKey[T any](a, b *T, columns []string) bool {
	if len(columns) == 0 {
		return false
	}
	av := reflect.ValueOf(a).Elem()
	bv := reflect.ValueOf(b).Elem()
	for _, c := range columns {
		af, ok1 := fieldByColumn(av, c)
		bf, ok2 := fieldByColumn(bv, c)
		if !ok1 || !ok2 || !equalValues(af.Interface(), bf.Interface()) {
			return false
		}
	}
	return true
}

func sortRows[T any](rows []*T, orderBy []string) {
	if len(orderBy) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		vi := reflect.ValueOf(rows[i]).Elem()
		vj := reflect.ValueOf(rows[j]).Elem()
		for _, c := range orderBy {
			fi, ok1 := fieldByColumn(vi, c)
			fj, ok2 := fieldByColumn(vj, c)
			if !ok1 || !ok2 {
				continue
			}
			cmp := compareValues(fi.Interface(), fj.Interface())
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		bv := b.(time.Time)
		switch {
		case av.Before(bv):
			return -1
		case av.After(bv):
			return 1
		}
		return 0
	case decimal.Decimal:
		return av.Cmp(b.(decimal.Decimal))
	case string:
		bv := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	default:
		return 0
	}
}
