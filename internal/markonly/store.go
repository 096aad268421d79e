package markonly

import (
	"context"

	"markonly/internal/core/entity"
	"markonly/internal/core/filter"
	"markonly/internal/core/id"
)

// Store is the persistence collaborator. Implementations: postgres.TableStore
// and memory.Store.
//
// Loaded and inserted records must be marked persisted by the store.
type Store[T entity.Record] interface {
	// Table returns the table (or collection) name used in logs and errors.
	Table() string

	Insert(ctx context.Context, rec T) error
	FindByID(ctx context.Context, recID id.ID) (T, error)
	Find(ctx context.Context, where []filter.Item) ([]T, error)
	Count(ctx context.Context, where []filter.Item) (int64, error)
	Exists(ctx context.Context, recID id.ID) (bool, error)

	// UpdateColumn writes a single column of one row.
	UpdateColumn(ctx context.Context, recID id.ID, column string, value any) error
	// UpdateColumnWhere writes a single column of every matching row in one statement.
	UpdateColumnWhere(ctx context.Context, where []filter.Item, column string, value any) (int64, error)

	// Delete physically removes one row.
	Delete(ctx context.Context, recID id.ID) error
	// DeleteWhere physically removes every matching row in one statement.
	DeleteWhere(ctx context.Context, where []filter.Item) (int64, error)
}
