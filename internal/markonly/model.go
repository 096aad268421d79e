package markonly

import (
	"context"
	"fmt"

	"markonly/internal/core/apperror"
	"markonly/internal/core/entity"
	"markonly/internal/core/filter"
	"markonly/internal/core/id"
)

// ModelConfig configures a Model.
type ModelConfig[T entity.Record] struct {
	Store Store[T]

	// StatusColumn opts the type into mark-only deletion. Empty means plain
	// physical deletion.
	StatusColumn string

	// Policy defaults to DefaultPolicy().
	Policy *Policy
	// Registry defaults to DefaultRegistry().
	Registry *Registry

	// DefaultScope is added to every scope of the model (tenant filters, ...).
	DefaultScope []filter.Item

	// Name is used in errors. Defaults to the store table.
	Name string
}

// Model is the per-entity-type entry point. It owns the hooks and dispatches
// every delete path to the Deletable chosen at construction.
type Model[T entity.Record] struct {
	store    Store[T]
	policy   *Policy
	registry *Registry
	hooks    *HookRegistry[T]

	deleter  Deletable[T]
	physical *PhysicalDeletable[T]
	markOnly *MarkOnlyDeletable[T] // nil for plain types

	defaultScope []filter.Item
	name         string
}

// NewModel creates a Model. With a status column, T is registered as
// mark-only; a missing column or a second registration of T fails.
func NewModel[T entity.Record](cfg ModelConfig[T]) (*Model[T], error) {
	if cfg.Store == nil {
		return nil, apperror.NewConfiguration("model requires a store").
			WithDetail("type", TypeName[T]())
	}

	m := &Model[T]{
		store:        cfg.Store,
		policy:       cfg.Policy,
		registry:     cfg.Registry,
		hooks:        NewHookRegistry[T](),
		defaultScope: append([]filter.Item(nil), cfg.DefaultScope...),
		name:         cfg.Name,
	}
	if m.policy == nil {
		m.policy = DefaultPolicy()
	}
	if m.registry == nil {
		m.registry = DefaultRegistry()
	}
	if m.name == "" {
		m.name = cfg.Store.Table()
	}
	if err := m.policy.Validate(); err != nil {
		return nil, err
	}
	for _, it := range m.defaultScope {
		if err := it.Validate(); err != nil {
			return nil, apperror.NewConfiguration("invalid default scope").
				WithDetail("type", TypeName[T]()).
				WithCause(err)
		}
	}

	m.physical = NewPhysicalDeletable(cfg.Store, m.hooks)
	m.deleter = m.physical

	if cfg.StatusColumn != "" {
		reg, err := RegisterType[T](m.registry, cfg.Store.Table(), cfg.StatusColumn)
		if err != nil {
			return nil, err
		}
		m.markOnly = NewMarkOnlyDeletable(m.physical, m.policy, reg)
		m.deleter = m.markOnly
	}

	return m, nil
}

// MustNewModel is NewModel for package-level model definitions.
func MustNewModel[T entity.Record](cfg ModelConfig[T]) *Model[T] {
	m, err := NewModel(cfg)
	if err != nil {
		panic(fmt.Sprintf("markonly: %v", err))
	}
	return m
}

// Name returns the entity name used in errors.
func (m *Model[T]) Name() string { return m.name }

// Hooks returns the hook registry for external registration.
func (m *Model[T]) Hooks() *HookRegistry[T] { return m.hooks }

// Policy returns the policy the model consults.
func (m *Model[T]) Policy() *Policy { return m.policy }

// IsMarkOnly reports whether T is registered for mark-only deletion.
func (m *Model[T]) IsMarkOnly() bool {
	return m.registry.IsMarkOnly(TypeName[T]())
}

// Registration returns T's registration, if any.
func (m *Model[T]) Registration() (Registration, bool) {
	return m.registry.Lookup(TypeName[T]())
}

// --- Persistence passthrough ---

// Create inserts rec inside the create hooks. A missing id is generated; on
// mark-only types an unset status becomes the active value when the policy says so.
func (m *Model[T]) Create(ctx context.Context, rec T) error {
	if id.IsNil(rec.GetID()) {
		rec.SetID(id.New())
	}
	if m.markOnly != nil && m.policy.DefaultActiveOnCreate {
		col := m.markOnly.reg.StatusColumn
		raw, _ := entity.ColumnValue(rec, col)
		if s, isStr := statusString(rec, col); raw == nil || (isStr && s == "") {
			if err := entity.SetColumn(rec, col, m.policy.ActiveValue); err != nil {
				return fmt.Errorf("default %s.%s: %w", m.name, col, err)
			}
		}
	}

	return m.hooks.RunAround(ctx, LifecycleCreate, rec, func(ctx context.Context) error {
		if err := m.store.Insert(ctx, rec); err != nil {
			return fmt.Errorf("create %s: %w", m.name, err)
		}
		return nil
	})
}

// FindByID loads one record, soft-deleted or not.
func (m *Model[T]) FindByID(ctx context.Context, recID id.ID) (T, error) {
	return m.store.FindByID(ctx, recID)
}

// Reload reads rec's row again.
func (m *Model[T]) Reload(ctx context.Context, rec T) (T, error) {
	return m.store.FindByID(ctx, rec.GetID())
}

// Exists reports whether the row is physically present.
func (m *Model[T]) Exists(ctx context.Context, recID id.ID) (bool, error) {
	return m.store.Exists(ctx, recID)
}

// Count counts rows in the default scope, soft-deleted rows included.
func (m *Model[T]) Count(ctx context.Context) (int64, error) {
	return m.All().Count(ctx)
}

// --- Instance operations ---

// Delete marks (or, for plain types and a disabled policy, removes) rec.
// Hooks never run.
func (m *Model[T]) Delete(ctx context.Context, rec T) error {
	return m.deleter.Delete(ctx, rec)
}

// Destroy is Delete wrapped in the destroy hooks.
func (m *Model[T]) Destroy(ctx context.Context, rec T) error {
	return m.deleter.Destroy(ctx, rec)
}

// DestroyStrict is the strict destroy. On an enabled mark-only type it
// soft-destroys rec and then reports RECORD_NOT_DESTROYED, because the row
// was kept. Otherwise it is Destroy.
func (m *Model[T]) DestroyStrict(ctx context.Context, rec T) error {
	if m.markOnly == nil || !m.policy.IsEnabled() {
		return m.deleter.Destroy(ctx, rec)
	}
	if err := m.markOnly.Destroy(ctx, rec); err != nil {
		return err
	}
	return apperror.NewRecordNotDestroyed(m.name, rec.GetID().String())
}

// DeleteForReal removes the row without hooks, bypassing the policy.
func (m *Model[T]) DeleteForReal(ctx context.Context, rec T) error {
	if m.markOnly != nil {
		return m.markOnly.ForceDelete(ctx, rec)
	}
	return m.physical.Delete(ctx, rec)
}

// DestroyForReal removes the row inside the destroy hooks, bypassing the policy.
func (m *Model[T]) DestroyForReal(ctx context.Context, rec T) error {
	if m.markOnly != nil {
		return m.markOnly.ForceDestroy(ctx, rec)
	}
	return m.physical.Destroy(ctx, rec)
}

// Restore sets the status column back to the active value.
func (m *Model[T]) Restore(ctx context.Context, rec T) error {
	if m.markOnly == nil {
		return apperror.NewNotMarkOnly(m.name)
	}
	return m.markOnly.Restore(ctx, rec)
}

// IsDeleted reports the deleted state derived from the record.
func (m *Model[T]) IsDeleted(rec T) bool {
	return m.deleter.IsDeleted(rec)
}

// IsPersisted reports whether rec has a row. Marked rows count as persisted.
func (m *Model[T]) IsPersisted(rec T) bool {
	return m.deleter.IsPersisted(rec)
}

// --- Type-level bulk operations ---

// DeleteByID marks (or removes) the rows with the given ids in one statement.
func (m *Model[T]) DeleteByID(ctx context.Context, ids ...id.ID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if len(m.defaultScope) > 0 {
		return m.Where(filter.In("id", ids)).DeleteAll(ctx)
	}
	return m.deleter.DeleteByID(ctx, ids...)
}

// DeleteAll marks (or removes) every row matching where in one statement.
func (m *Model[T]) DeleteAll(ctx context.Context, where ...filter.Item) (int64, error) {
	return m.Where(where...).DeleteAll(ctx)
}

// DestroyAll destroys every row matching where, one by one.
func (m *Model[T]) DestroyAll(ctx context.Context, where ...filter.Item) (int64, error) {
	return m.Where(where...).DestroyAll(ctx)
}

// All returns the default scope.
func (m *Model[T]) All() *Scope[T] {
	return &Scope[T]{model: m}
}

// Where starts a scope filtered by items.
func (m *Model[T]) Where(items ...filter.Item) *Scope[T] {
	return m.All().Where(items...)
}
