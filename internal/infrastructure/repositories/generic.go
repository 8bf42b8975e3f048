package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	apperrors "github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/errors"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/repositories"
)

// sqlRepository is the generic sqlx-backed repository for one entity kind.
// Reads run immediately against the pool; mutations are staged on the
// owning unit of work and flushed by Commit or Save.
type sqlRepository[T any] struct {
	uow    *UnitOfWork
	meta   tableMeta
	logger *zap.Logger
}

func newSQLRepository[T any](uow *UnitOfWork, meta tableMeta) *sqlRepository[T] {
	return &sqlRepository[T]{
		uow:    uow,
		meta:   meta,
		logger: uow.logger.With(zap.String("table", meta.table)),
	}
}

func (r *sqlRepository[T]) selectClause() string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(r.meta.columns, ", "), r.meta.table)
}

// buildWhere renders the filter into a WHERE clause with positional args.
// Keys are sorted so the rendered SQL is deterministic.
func (r *sqlRepository[T]) buildWhere(f repositories.Filter) (string, []any, error) {
	var sb strings.Builder
	var args []any

	if len(f.Eq) > 0 {
		keys := make([]string, 0, len(f.Eq))
		for k := range f.Eq {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString(" WHERE ")
		for i, k := range keys {
			if !r.knownColumn(k) {
				return "", nil, fmt.Errorf("unknown column %q for table %s", k, r.meta.table)
			}
			if i > 0 {
				sb.WriteString(" AND ")
			}
			fmt.Fprintf(&sb, "%s = $%d", k, i+1)
			args = append(args, f.Eq[k])
		}
	}

	if len(f.OrderBy) > 0 {
		for _, c := range f.OrderBy {
			if !r.knownColumn(c) {
				return "", nil, fmt.Errorf("unknown column %q for table %s", c, r.meta.table)
			}
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(f.OrderBy, ", "))
	}

	if f.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", f.Limit)
	}

	return sb.String(), args, nil
}

func (r *sqlRepository[T]) knownColumn(name string) bool {
	for _, c := range r.meta.columns {
		if c == name {
			return true
		}
	}
	return false
}

// GetByID returns the entity or ErrNotFound
func (r *sqlRepository[T]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	ctx, cancel := r.uow.queryContext(ctx)
	defer cancel()

	query := r.selectClause() + " WHERE id = $1"
	var entity T
	err := sqlx.GetContext(ctx, r.uow.db, &entity, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundError(r.meta.table)
	}
	if err != nil {
		r.logger.Error("Failed to get entity by id", zap.Error(err), zap.String("id", id.String()))
		return nil, apperrors.PersistenceError(fmt.Sprintf("failed to get %s", r.meta.table), err)
	}
	return &entity, nil
}

// GetAll returns every row of the entity's table
func (r *sqlRepository[T]) GetAll(ctx context.Context) ([]*T, error) {
	return r.Find(ctx, repositories.Filter{})
}

// Find returns all entities matching the filter
func (r *sqlRepository[T]) Find(ctx context.Context, f repositories.Filter) ([]*T, error) {
	where, args, err := r.buildWhere(f)
	if err != nil {
		return nil, err
	}

	ctx, cancel := r.uow.queryContext(ctx)
	defer cancel()

	var entities []*T
	if err := sqlx.SelectContext(ctx, r.uow.db, &entities, r.selectClause()+where, args...); err != nil {
		r.logger.Error("Failed to query entities", zap.Error(err))
		return nil, apperrors.PersistenceError(fmt.Sprintf("failed to query %s", r.meta.table), err)
	}
	return entities, nil
}

// FirstOrDefault returns the first match or (nil, nil) when nothing matches
func (r *sqlRepository[T]) FirstOrDefault(ctx context.Context, f repositories.Filter) (*T, error) {
	f.Limit = 1
	matches, err := r.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

// Add stages an insert on the owning unit of work
func (r *sqlRepository[T]) Add(ctx context.Context, entity *T) error {
	placeholders := make([]string, len(r.meta.columns))
	for i, c := range r.meta.columns {
		placeholders[i] = ":" + c
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		r.meta.table,
		strings.Join(r.meta.columns, ", "),
		strings.Join(placeholders, ", "),
	)
	return r.stageNamed(query, entity, nil)
}

// Update stages an update. Versioned tables get an optimistic check: the
// staged statement matches the version read, and zero affected rows at
// flush time surfaces a concurrency conflict.
func (r *sqlRepository[T]) Update(ctx context.Context, entity *T) error {
	var sets []string
	for _, c := range r.meta.columns {
		if c == "id" || c == "created_at" || c == "version" {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = :%s", c, c))
	}

	var query string
	var verify func(sql.Result) error
	if r.meta.versioned {
		sets = append(sets, "version = version + 1")
		query = fmt.Sprintf(
			"UPDATE %s SET %s WHERE id = :id AND version = :version",
			r.meta.table, strings.Join(sets, ", "),
		)
		verify = r.verifyRowAffected(apperrors.ConcurrencyConflictError(r.meta.table))
	} else {
		query = fmt.Sprintf(
			"UPDATE %s SET %s WHERE id = :id",
			r.meta.table, strings.Join(sets, ", "),
		)
		verify = r.verifyRowAffected(apperrors.NotFoundError(r.meta.table))
	}
	return r.stageNamed(query, entity, verify)
}

// Delete stages a removal
func (r *sqlRepository[T]) Delete(ctx context.Context, entity *T) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = :id", r.meta.table)
	verify := r.verifyRowAffected(apperrors.NotFoundError(r.meta.table))
	if r.meta.versioned {
		query += " AND version = :version"
		verify = r.verifyRowAffected(apperrors.ConcurrencyConflictError(r.meta.table))
	}
	return r.stageNamed(query, entity, verify)
}

// Exists reports whether any entity matches the filter
func (r *sqlRepository[T]) Exists(ctx context.Context, f repositories.Filter) (bool, error) {
	n, err := r.Count(ctx, f)
	return n > 0, err
}

// Count returns the number of entities matching the filter
func (r *sqlRepository[T]) Count(ctx context.Context, f repositories.Filter) (int64, error) {
	f.OrderBy = nil
	f.Limit = 0
	where, args, err := r.buildWhere(f)
	if err != nil {
		return 0, err
	}

	ctx, cancel := r.uow.queryContext(ctx)
	defer cancel()

	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", r.meta.table, where)
	if err := r.uow.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		r.logger.Error("Failed to count entities", zap.Error(err))
		return 0, apperrors.PersistenceError(fmt.Sprintf("failed to count %s", r.meta.table), err)
	}
	return count, nil
}

// stageNamed binds the named query against the entity now, so later changes
// to the in-memory value do not alter what gets flushed, and hands the
// positional statement to the unit of work.
func (r *sqlRepository[T]) stageNamed(query string, entity *T, verify func(sql.Result) error) error {
	bound, args, err := sqlx.Named(query, entity)
	if err != nil {
		return apperrors.PersistenceError(fmt.Sprintf("failed to bind %s statement", r.meta.table), err)
	}
	r.uow.stage(operation{
		query:  sqlx.Rebind(sqlx.DOLLAR, bound),
		args:   args,
		verify: verify,
	})
	return nil
}

func (r *sqlRepository[T]) verifyRowAffected(missing error) func(sql.Result) error {
	return func(res sql.Result) error {
		n, err := res.RowsAffected()
		if err != nil {
			return apperrors.PersistenceError(fmt.Sprintf("failed to read affected rows for %s", r.meta.table), err)
		}
		if n == 0 {
			return missing
		}
		return nil
	}
}
