package markonly

import (
	"context"
	"fmt"
	"reflect"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"markonly/internal/core/entity"
	"markonly/internal/core/filter"
	"markonly/internal/core/id"
	"markonly/pkg/logger"
)

var tracer = otel.Tracer("markonly")

// MarkOnlyDeletable redirects deletes into writes of the status column.
// When the policy is disabled every call goes to the wrapped PhysicalDeletable.
type MarkOnlyDeletable[T entity.Record] struct {
	physical *PhysicalDeletable[T]
	store    Store[T]
	hooks    *HookRegistry[T]
	policy   *Policy
	reg      Registration
}

// NewMarkOnlyDeletable wraps physical for the registered type.
func NewMarkOnlyDeletable[T entity.Record](
	physical *PhysicalDeletable[T],
	policy *Policy,
	reg Registration,
) *MarkOnlyDeletable[T] {
	return &MarkOnlyDeletable[T]{
		physical: physical,
		store:    physical.store,
		hooks:    physical.hooks,
		policy:   policy,
		reg:      reg,
	}
}

// Delete marks rec deleted without running hooks. Records that are already
// deleted or were never saved are left untouched.
func (d *MarkOnlyDeletable[T]) Delete(ctx context.Context, rec T) error {
	if !d.policy.IsEnabled() {
		return d.physical.Delete(ctx, rec)
	}
	return d.softDelete(ctx, rec)
}

// Destroy marks rec deleted inside the destroy hooks.
func (d *MarkOnlyDeletable[T]) Destroy(ctx context.Context, rec T) error {
	if !d.policy.IsEnabled() {
		return d.physical.Destroy(ctx, rec)
	}
	return d.hooks.RunAround(ctx, LifecycleDestroy, rec, func(ctx context.Context) error {
		return d.softDelete(ctx, rec)
	})
}

// Restore writes the active value, whatever the current status is.
func (d *MarkOnlyDeletable[T]) Restore(ctx context.Context, rec T) error {
	return d.writeStatus(ctx, rec, d.policy.ActiveValue)
}

// ForceDelete removes the row regardless of the policy.
func (d *MarkOnlyDeletable[T]) ForceDelete(ctx context.Context, rec T) error {
	return d.physical.Delete(ctx, rec)
}

// ForceDestroy removes the row inside the destroy hooks regardless of the policy.
func (d *MarkOnlyDeletable[T]) ForceDestroy(ctx context.Context, rec T) error {
	return d.physical.Destroy(ctx, rec)
}

// DeleteByID marks the given rows in one statement, skipping rows already marked.
func (d *MarkOnlyDeletable[T]) DeleteByID(ctx context.Context, ids ...id.ID) (int64, error) {
	if !d.policy.IsEnabled() {
		return d.physical.DeleteByID(ctx, ids...)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	ctx, span := d.startSpan(ctx, "markonly.delete_by_id")
	defer span.End()

	n, err := d.markWhere(ctx, []filter.Item{filter.In("id", ids)})
	d.endSpan(span, n, err)
	return n, err
}

// DeleteAll marks every matching row in one statement, skipping rows already marked.
// An empty where marks the whole table.
func (d *MarkOnlyDeletable[T]) DeleteAll(ctx context.Context, where []filter.Item) (int64, error) {
	if !d.policy.IsEnabled() {
		return d.physical.DeleteAll(ctx, where)
	}

	ctx, span := d.startSpan(ctx, "markonly.delete_all")
	defer span.End()

	n, err := d.markWhere(ctx, where)
	d.endSpan(span, n, err)
	return n, err
}

// DestroyAll loads the matching active rows and destroys each so that
// destroy hooks run once per row. Returns the number of rows destroyed
// before the first failure.
func (d *MarkOnlyDeletable[T]) DestroyAll(ctx context.Context, where []filter.Item) (int64, error) {
	if !d.policy.IsEnabled() {
		return d.physical.DestroyAll(ctx, where)
	}

	ctx, span := d.startSpan(ctx, "markonly.destroy_all")
	defer span.End()

	recs, err := d.store.Find(ctx, d.excludeDeleted(where))
	if err != nil {
		d.endSpan(span, 0, err)
		return 0, err
	}

	var n int64
	for _, rec := range recs {
		if err := d.Destroy(ctx, rec); err != nil {
			err = fmt.Errorf("destroy %s %s: %w", d.reg.Table, rec.GetID(), err)
			d.endSpan(span, n, err)
			return n, err
		}
		n++
	}
	d.endSpan(span, n, nil)
	return n, nil
}

// IsDeleted compares the status column with the deleted value.
func (d *MarkOnlyDeletable[T]) IsDeleted(rec T) bool {
	return statusEquals(rec, d.reg.StatusColumn, d.policy.DeletedValue)
}

// IsPersisted ignores the deleted state: a marked row still exists. Only a
// physical removal through the escape hatch or a disabled policy ends it.
func (d *MarkOnlyDeletable[T]) IsPersisted(rec T) bool {
	return !rec.IsNewRecord() && !rec.IsRemoved()
}

func (d *MarkOnlyDeletable[T]) softDelete(ctx context.Context, rec T) error {
	if d.IsDeleted(rec) || !d.IsPersisted(rec) {
		return nil
	}
	return d.writeStatus(ctx, rec, d.policy.DeletedValue)
}

// writeStatus updates the row, then the in-memory field.
func (d *MarkOnlyDeletable[T]) writeStatus(ctx context.Context, rec T, value string) error {
	col := d.reg.StatusColumn
	if d.policy.DebugLogging {
		logger.Info(ctx, "updating status column",
			"table", d.reg.Table,
			"column", col,
			"value", value,
			"id", rec.GetID().String(),
		)
	}

	if err := d.store.UpdateColumn(ctx, rec.GetID(), col, value); err != nil {
		logger.Error(ctx, "status column update failed",
			"table", d.reg.Table,
			"column", col,
			"value", value,
			"id", rec.GetID().String(),
			"error", err,
		)
		return err
	}

	if err := entity.SetColumn(rec, col, value); err != nil {
		return fmt.Errorf("refresh %s.%s: %w", d.reg.Table, col, err)
	}
	return nil
}

func (d *MarkOnlyDeletable[T]) markWhere(ctx context.Context, where []filter.Item) (int64, error) {
	col := d.reg.StatusColumn
	value := d.policy.DeletedValue
	if d.policy.DebugLogging {
		logger.Info(ctx, "updating status column in bulk",
			"table", d.reg.Table,
			"column", col,
			"value", value,
			"where", where,
		)
	}

	n, err := d.store.UpdateColumnWhere(ctx, d.excludeDeleted(where), col, value)
	if err != nil {
		logger.Error(ctx, "bulk status column update failed",
			"table", d.reg.Table,
			"column", col,
			"value", value,
			"where", where,
			"error", err,
		)
		return 0, err
	}
	return n, nil
}

// excludeDeleted appends "status IS DISTINCT FROM deleted" so NULL statuses still match.
func (d *MarkOnlyDeletable[T]) excludeDeleted(where []filter.Item) []filter.Item {
	out := make([]filter.Item, 0, len(where)+1)
	out = append(out, where...)
	return append(out, filter.Distinct(d.reg.StatusColumn, d.policy.DeletedValue))
}

func (d *MarkOnlyDeletable[T]) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("markonly.table", d.reg.Table),
		attribute.String("markonly.column", d.reg.StatusColumn),
	))
}

func (d *MarkOnlyDeletable[T]) endSpan(span trace.Span, rows int64, err error) {
	span.SetAttributes(attribute.Int64("markonly.rows", rows))
	if err != nil {
		span.RecordError(err)
	}
}

// statusEquals reads col from rec; NULL never equals value.
func statusEquals(rec any, col, value string) bool {
	s, ok := statusString(rec, col)
	return ok && s == value
}

// statusString returns the status as a string. Named string types count;
// NULL and non-string columns report false.
func statusString(rec any, col string) (string, bool) {
	v, ok := entity.ColumnValue(rec, col)
	if !ok || v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return "", false
	}
	return rv.String(), true
}
