package domain

import (
	"context"
	"fmt"

	"markonly/internal/core/apperror"
	"markonly/internal/core/filter"
	"markonly/internal/core/id"
	"markonly/internal/core/tx"
	"markonly/internal/markonly"
	"markonly/pkg/logger"
)

// CatalogService provides business logic for one catalog entity type.
type CatalogService[T Entity] struct {
	model     *markonly.Model[T]
	txManager tx.Manager

	// entityName for error messages
	entityName string
}

// CatalogServiceConfig configures the catalog service.
type CatalogServiceConfig[T Entity] struct {
	Model      *markonly.Model[T]
	TxManager  tx.Manager // nil runs without transactions
	EntityName string
}

// NewCatalogService creates a new catalog service.
func NewCatalogService[T Entity](cfg CatalogServiceConfig[T]) *CatalogService[T] {
	s := &CatalogService[T]{
		model:      cfg.Model,
		txManager:  cfg.TxManager,
		entityName: cfg.EntityName,
	}
	if s.txManager == nil {
		s.txManager = tx.Noop{}
	}
	if s.entityName == "" {
		s.entityName = cfg.Model.Name()
	}
	return s
}

// Model returns the underlying markonly model.
func (s *CatalogService[T]) Model() *markonly.Model[T] {
	return s.model
}

// Hooks returns the hook registry for external registration.
func (s *CatalogService[T]) Hooks() *markonly.HookRegistry[T] {
	return s.model.Hooks()
}

func (s *CatalogService[T]) normalizeValidationErr(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *CatalogService[T]) normalizeGetErr(err error, recID id.ID) error {
	if err == nil {
		return nil
	}
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, recID.String())
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", recID.String())
}

// Create validates and inserts a new entity.
func (s *CatalogService[T]) Create(ctx context.Context, rec T) error {
	if err := rec.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.model.Create(ctx, rec)
	})
}

// GetByID retrieves an entity by ID, marked or not.
func (s *CatalogService[T]) GetByID(ctx context.Context, recID id.ID) (T, error) {
	rec, err := s.model.FindByID(ctx, recID)
	if err != nil {
		return rec, s.normalizeGetErr(err, recID)
	}
	return rec, nil
}

// IsDeleted reports whether rec is marked deleted.
func (s *CatalogService[T]) IsDeleted(rec T) bool {
	return s.model.IsDeleted(rec)
}

// List retrieves entities with filtering. The counts ignore the visibility.
// Counts and rows are read from one snapshot.
func (s *CatalogService[T]) List(ctx context.Context, f ListFilter) (ListResult[T], error) {
	var result ListResult[T]

	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		scope := s.model.Where(f.Filters...)

		total, err := scope.Count(ctx)
		if err != nil {
			return err
		}
		result.TotalCount = total

		if s.model.IsMarkOnly() {
			deleted, err := scope.OnlyDeleted().Count(ctx)
			if err != nil {
				return err
			}
			result.DeletedCount = deleted
		}

		switch f.Visibility {
		case VisibilityActive:
			scope = scope.ExcludeDeleted()
		case VisibilityDeleted:
			scope = scope.OnlyDeleted()
		}

		result.Items, err = scope.Find(ctx)
		return err
	})
	if err != nil {
		return ListResult[T]{}, err
	}
	if result.Items == nil {
		result.Items = []T{}
	}
	return result, nil
}

// Count counts rows matching items, marked rows included.
func (s *CatalogService[T]) Count(ctx context.Context, items ...filter.Item) (int64, error) {
	return s.model.Where(items...).Count(ctx)
}

// Delete removes an entity using mode. A strict delete commits the mark
// before returning RECORD_NOT_DESTROYED.
func (s *CatalogService[T]) Delete(ctx context.Context, recID id.ID, mode DeleteMode) error {
	var strictErr error

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		rec, err := s.model.FindByID(ctx, recID)
		if err != nil {
			return s.normalizeGetErr(err, recID)
		}

		switch mode {
		case ModeDelete:
			return s.model.Delete(ctx, rec)
		case ModeDestroy:
			return s.model.Destroy(ctx, rec)
		case ModeStrict:
			err := s.model.DestroyStrict(ctx, rec)
			if apperror.IsRecordNotDestroyed(err) {
				strictErr = err
				return nil
			}
			return err
		case ModePurge:
			return s.model.DestroyForReal(ctx, rec)
		default:
			return apperror.NewValidation("unknown delete mode").WithDetail("mode", string(mode))
		}
	})
	if err != nil {
		return err
	}

	msg := "record deleted"
	if strictErr != nil {
		msg = "record marked, not destroyed"
	}
	logger.Info(ctx, msg,
		"entity", s.entityName,
		"id", recID.String(),
		"mode", string(mode),
	)
	return strictErr
}

// Restore clears the deleted mark.
func (s *CatalogService[T]) Restore(ctx context.Context, recID id.ID) (T, error) {
	var rec T
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		rec, err = s.model.FindByID(ctx, recID)
		if err != nil {
			return s.normalizeGetErr(err, recID)
		}
		return s.model.Restore(ctx, rec)
	})
	if err != nil {
		return rec, err
	}

	logger.Info(ctx, "record restored", "entity", s.entityName, "id", recID)
	return rec, nil
}

// DeleteByIDs marks the given rows in one statement without hooks.
// Rows already marked are not counted.
func (s *CatalogService[T]) DeleteByIDs(ctx context.Context, ids []id.ID) (int64, error) {
	var n int64
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.model.DeleteByID(ctx, ids...)
		return err
	})
	return n, err
}

// DestroyWhere destroys every matching active row, running hooks per row.
// Either all rows are marked or none.
func (s *CatalogService[T]) DestroyWhere(ctx context.Context, items []filter.Item) (int64, error) {
	var n int64
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.model.DestroyAll(ctx, items...)
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// PurgeDeleted physically removes up to limit rows that are already marked
// deleted, running destroy hooks for each. limit <= 0 means no limit.
// Each row is removed in its own savepoint: a row still referenced elsewhere
// (CONFLICT) is skipped and left marked, any other failure aborts the batch.
func (s *CatalogService[T]) PurgeDeleted(ctx context.Context, limit int) (int64, error) {
	if !s.model.IsMarkOnly() {
		return 0, apperror.NewNotMarkOnly(s.entityName)
	}

	var n, skipped int64
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		n, skipped = 0, 0
		recs, err := s.model.All().OnlyDeleted().Find(ctx)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if limit > 0 && n >= int64(limit) {
				break
			}
			err := s.txManager.Savepoint(ctx, func(ctx context.Context) error {
				return s.model.DestroyForReal(ctx, rec)
			})
			if apperror.IsConflict(err) {
				logger.Warn(ctx, "purge skipped referenced record",
					"entity", s.entityName,
					"id", rec.GetID().String(),
					"error", err,
				)
				skipped++
				continue
			}
			if err != nil {
				return fmt.Errorf("purge %s %s: %w", s.entityName, rec.GetID(), err)
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if n > 0 || skipped > 0 {
		logger.Info(ctx, "purged deleted records", "entity", s.entityName, "count", n, "skipped", skipped)
	}
	return n, nil
}
