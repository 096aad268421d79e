package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"markonly/internal/core/apperror"
	"markonly/internal/core/entity"
	"markonly/internal/core/filter"
	"markonly/internal/core/id"
)

// SQLSTATE codes mapped to conflicts.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// TableStore maps one table to records of T using their "db" tags.
// It implements markonly.Store.
//
// Queries run on the transaction carried by ctx when there is one.
type TableStore[T entity.Record] struct {
	db        QuerierProvider
	tableName string
	cols      []string
	allowed   map[string]struct{}
	newFn     func() T
}

// NewTableStore creates a store for tableName.
func NewTableStore[T entity.Record](db QuerierProvider, tableName string, newFn func() T) *TableStore[T] {
	cols := entity.Columns[T]()
	allowed := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		allowed[c] = struct{}{}
	}
	return &TableStore[T]{
		db:        db,
		tableName: tableName,
		cols:      cols,
		allowed:   allowed,
		newFn:     newFn,
	}
}

// Table implements markonly.Store.
func (s *TableStore[T]) Table() string { return s.tableName }

// Builder returns a squirrel builder with PostgreSQL placeholders.
func (s *TableStore[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (s *TableStore[T]) querier(ctx context.Context) Querier {
	return s.db.GetQuerier(ctx)
}

func (s *TableStore[T]) where(items []filter.Item) (squirrel.And, error) {
	return buildWhere(items, s.allowed)
}

func (s *TableStore[T]) checkColumn(column string) error {
	if _, ok := s.allowed[column]; !ok {
		return apperror.NewValidation("unknown column").
			WithDetail("entity", s.tableName).
			WithDetail("column", column)
	}
	return nil
}

// Insert writes every db column of rec.
func (s *TableStore[T]) Insert(ctx context.Context, rec T) error {
	data := entity.ToMap(rec)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in %T", rec)
	}

	sql, args, err := s.Builder().
		Insert(s.tableName).
		SetMap(data).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.querier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.NewConflict("record already exists").
				WithDetail("entity", s.tableName).
				WithDetail("id", rec.GetID().String()).
				WithCause(err)
		}
		return apperror.NewDatabase("insert "+s.tableName, err)
	}

	rec.MarkPersisted()
	return nil
}

func (s *TableStore[T]) baseSelect() squirrel.SelectBuilder {
	return s.Builder().
		Select(s.cols...).
		From(s.tableName)
}

// FindByID loads one row.
func (s *TableStore[T]) FindByID(ctx context.Context, recID id.ID) (T, error) {
	rec := s.newFn()

	sql, args, err := s.baseSelect().
		Where(squirrel.Eq{"id": recID}).
		Limit(1).
		ToSql()
	if err != nil {
		return rec, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, s.querier(ctx), rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return rec, apperror.NewNotFound(s.tableName, recID.String())
		}
		return rec, apperror.NewDatabase("get "+s.tableName, err)
	}

	rec.MarkPersisted()
	return rec, nil
}

// Find loads matching rows ordered by id, which follows creation order for UUIDv7 ids.
func (s *TableStore[T]) Find(ctx context.Context, items []filter.Item) ([]T, error) {
	where, err := s.where(items)
	if err != nil {
		return nil, err
	}

	q := s.baseSelect().OrderBy("id")
	if len(where) > 0 {
		q = q.Where(where)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var recs []T
	if err := pgxscan.Select(ctx, s.querier(ctx), &recs, sql, args...); err != nil {
		return nil, apperror.NewDatabase("list "+s.tableName, err)
	}
	for _, rec := range recs {
		rec.MarkPersisted()
	}
	return recs, nil
}

// Count counts matching rows.
func (s *TableStore[T]) Count(ctx context.Context, items []filter.Item) (int64, error) {
	where, err := s.where(items)
	if err != nil {
		return 0, err
	}

	q := s.Builder().Select("COUNT(*)").From(s.tableName)
	if len(where) > 0 {
		q = q.Where(where)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var n int64
	if err := s.querier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, apperror.NewDatabase("count "+s.tableName, err)
	}
	return n, nil
}

// Exists reports whether the row is present, whatever its status.
func (s *TableStore[T]) Exists(ctx context.Context, recID id.ID) (bool, error) {
	sql, args, err := s.Builder().
		Select("1").
		From(s.tableName).
		Where(squirrel.Eq{"id": recID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = s.querier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperror.NewDatabase("exists "+s.tableName, err)
	}
	return true, nil
}

// UpdateColumn writes a single column of one row. Only that column is sent.
func (s *TableStore[T]) UpdateColumn(ctx context.Context, recID id.ID, column string, value any) error {
	if err := s.checkColumn(column); err != nil {
		return err
	}

	sql, args, err := s.Builder().
		Update(s.tableName).
		Set(column, value).
		Where(squirrel.Eq{"id": recID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := s.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase("update "+s.tableName+"."+column, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(s.tableName, recID.String())
	}
	return nil
}

// UpdateColumnWhere writes column on every matching row in one statement.
func (s *TableStore[T]) UpdateColumnWhere(ctx context.Context, items []filter.Item, column string, value any) (int64, error) {
	if err := s.checkColumn(column); err != nil {
		return 0, err
	}
	where, err := s.where(items)
	if err != nil {
		return 0, err
	}

	q := s.Builder().Update(s.tableName).Set(column, value)
	if len(where) > 0 {
		q = q.Where(where)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build update: %w", err)
	}

	result, err := s.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, apperror.NewDatabase("update "+s.tableName+"."+column, err)
	}
	return result.RowsAffected(), nil
}

// Delete physically removes one row.
func (s *TableStore[T]) Delete(ctx context.Context, recID id.ID) error {
	sql, args, err := s.Builder().
		Delete(s.tableName).
		Where(squirrel.Eq{"id": recID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := s.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return s.deleteError(err, recID.String())
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(s.tableName, recID.String())
	}
	return nil
}

// DeleteWhere physically removes every matching row.
func (s *TableStore[T]) DeleteWhere(ctx context.Context, items []filter.Item) (int64, error) {
	where, err := s.where(items)
	if err != nil {
		return 0, err
	}

	q := s.Builder().Delete(s.tableName)
	if len(where) > 0 {
		q = q.Where(where)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	result, err := s.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, s.deleteError(err, "")
	}
	return result.RowsAffected(), nil
}

func (s *TableStore[T]) deleteError(err error, recID string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		appErr := apperror.NewConflict("record is referenced by other rows").
			WithDetail("entity", s.tableName).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
		if recID != "" {
			appErr = appErr.WithDetail("id", recID)
		}
		return appErr
	}
	return apperror.NewDatabase("delete "+s.tableName, err)
}
