package markonly

import (
	"context"

	"markonly/internal/core/apperror"
	"markonly/internal/core/entity"
	"markonly/internal/core/filter"
)

type visibility int

const (
	withDeleted visibility = iota // default: marked rows stay visible
	withoutDeleted
	onlyDeleted
)

// Scope is a chainable, filtered view of a Model. Scopes are values: every
// chaining call returns a new Scope and leaves the receiver unchanged.
//
//	n, err := items.Where(filter.Eq("group_id", g.ID)).DeleteAll(ctx)
type Scope[T entity.Record] struct {
	model      *Model[T]
	items      []filter.Item
	visibility visibility
}

func (s *Scope[T]) clone() *Scope[T] {
	c := *s
	c.items = append([]filter.Item(nil), s.items...)
	return &c
}

// Where adds items, ANDed with the existing ones.
func (s *Scope[T]) Where(items ...filter.Item) *Scope[T] {
	c := s.clone()
	c.items = append(c.items, items...)
	return c
}

// ExcludeDeleted hides rows marked deleted. No effect on plain types.
func (s *Scope[T]) ExcludeDeleted() *Scope[T] {
	c := s.clone()
	c.visibility = withoutDeleted
	return c
}

// OnlyDeleted keeps only rows marked deleted. No effect on plain types.
func (s *Scope[T]) OnlyDeleted() *Scope[T] {
	c := s.clone()
	c.visibility = onlyDeleted
	return c
}

// Items returns the full predicate: default scope, caller items, visibility.
func (s *Scope[T]) Items() ([]filter.Item, error) {
	m := s.model
	out := make([]filter.Item, 0, len(m.defaultScope)+len(s.items)+1)
	out = append(out, m.defaultScope...)

	for _, it := range s.items {
		if err := it.Validate(); err != nil {
			return nil, apperror.NewValidation(err.Error()).WithDetail("filter", it.String())
		}
		out = append(out, it)
	}

	if m.markOnly != nil {
		col, deleted := m.markOnly.reg.StatusColumn, m.policy.DeletedValue
		switch s.visibility {
		case withoutDeleted:
			out = append(out, filter.Distinct(col, deleted))
		case onlyDeleted:
			out = append(out, filter.Eq(col, deleted))
		}
	}
	return out, nil
}

// Find loads matching rows.
func (s *Scope[T]) Find(ctx context.Context) ([]T, error) {
	where, err := s.Items()
	if err != nil {
		return nil, err
	}
	return s.model.store.Find(ctx, where)
}

// Count counts matching rows. Marked rows are counted unless excluded.
func (s *Scope[T]) Count(ctx context.Context) (int64, error) {
	where, err := s.Items()
	if err != nil {
		return 0, err
	}
	return s.model.store.Count(ctx, where)
}

// Delete is DeleteAll.
func (s *Scope[T]) Delete(ctx context.Context) (int64, error) {
	return s.DeleteAll(ctx)
}

// DeleteAll marks (or removes) every matching row in one statement.
func (s *Scope[T]) DeleteAll(ctx context.Context) (int64, error) {
	where, err := s.Items()
	if err != nil {
		return 0, err
	}
	return s.model.deleter.DeleteAll(ctx, where)
}

// DestroyAll destroys every matching row one by one, running destroy hooks per row.
func (s *Scope[T]) DestroyAll(ctx context.Context) (int64, error) {
	where, err := s.Items()
	if err != nil {
		return 0, err
	}
	return s.model.deleter.DestroyAll(ctx, where)
}
