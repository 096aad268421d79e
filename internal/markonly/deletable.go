package markonly

import (
	"context"
	"fmt"

	"markonly/internal/core/apperror"
	"markonly/internal/core/entity"
	"markonly/internal/core/filter"
	"markonly/internal/core/id"
)

// Deletable is the set of delete operations a Model dispatches to.
// PhysicalDeletable removes rows; MarkOnlyDeletable wraps it and writes the
// status column instead.
type Deletable[T entity.Record] interface {
	// Delete removes or marks one record. Hooks never run.
	Delete(ctx context.Context, rec T) error
	// Destroy is Delete wrapped in the destroy hooks.
	Destroy(ctx context.Context, rec T) error

	DeleteByID(ctx context.Context, ids ...id.ID) (int64, error)
	DeleteAll(ctx context.Context, where []filter.Item) (int64, error)
	// DestroyAll destroys matching rows one by one so hooks fire per row.
	DestroyAll(ctx context.Context, where []filter.Item) (int64, error)

	IsDeleted(rec T) bool
	IsPersisted(rec T) bool
}

var (
	_ Deletable[entity.Record] = (*PhysicalDeletable[entity.Record])(nil)
	_ Deletable[entity.Record] = (*MarkOnlyDeletable[entity.Record])(nil)
)

// PhysicalDeletable performs real row removal.
type PhysicalDeletable[T entity.Record] struct {
	store Store[T]
	hooks *HookRegistry[T]
}

// NewPhysicalDeletable creates the default deleter for a store.
func NewPhysicalDeletable[T entity.Record](store Store[T], hooks *HookRegistry[T]) *PhysicalDeletable[T] {
	if hooks == nil {
		hooks = NewHookRegistry[T]()
	}
	return &PhysicalDeletable[T]{store: store, hooks: hooks}
}

// Delete removes the row. Unsaved records are left alone; a row that is
// already gone counts as removed.
func (d *PhysicalDeletable[T]) Delete(ctx context.Context, rec T) error {
	if rec.IsNewRecord() || rec.IsRemoved() {
		return nil
	}
	if err := d.store.Delete(ctx, rec.GetID()); err != nil && !apperror.IsNotFound(err) {
		return err
	}
	rec.MarkRemoved()
	return nil
}

// Destroy removes the row inside the destroy hooks.
func (d *PhysicalDeletable[T]) Destroy(ctx context.Context, rec T) error {
	return d.hooks.RunAround(ctx, LifecycleDestroy, rec, func(ctx context.Context) error {
		return d.Delete(ctx, rec)
	})
}

// DeleteByID removes rows by primary key in one statement.
func (d *PhysicalDeletable[T]) DeleteByID(ctx context.Context, ids ...id.ID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return d.store.DeleteWhere(ctx, []filter.Item{filter.In("id", ids)})
}

// DeleteAll removes matching rows in one statement.
func (d *PhysicalDeletable[T]) DeleteAll(ctx context.Context, where []filter.Item) (int64, error) {
	return d.store.DeleteWhere(ctx, where)
}

// DestroyAll loads matching rows and destroys them one by one.
func (d *PhysicalDeletable[T]) DestroyAll(ctx context.Context, where []filter.Item) (int64, error) {
	recs, err := d.store.Find(ctx, where)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, rec := range recs {
		if err := d.Destroy(ctx, rec); err != nil {
			return n, fmt.Errorf("destroy %s %s: %w", d.store.Table(), rec.GetID(), err)
		}
		n++
	}
	return n, nil
}

// IsDeleted reports physical removal through this instance.
func (d *PhysicalDeletable[T]) IsDeleted(rec T) bool {
	return rec.IsRemoved()
}

// IsPersisted is true for saved records that were not removed.
func (d *PhysicalDeletable[T]) IsPersisted(rec T) bool {
	return !rec.IsNewRecord() && !rec.IsRemoved()
}
