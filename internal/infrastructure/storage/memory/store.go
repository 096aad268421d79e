// Package memory provides an in-process markonly.Store. Rows are copies of the
// inserted records, so in-memory instances and stored rows can diverge the
// same way they do with a database.
package memory

import (
	"context"
	"reflect"
	"sync"

	"markonly/internal/core/apperror"
	"markonly/internal/core/entity"
	"markonly/internal/core/filter"
	"markonly/internal/core/id"
)

// Store keeps rows of one table in insertion order.
type Store[T entity.Record] struct {
	table string
	newFn func() T

	mu    sync.RWMutex
	rows  map[id.ID]T
	order []id.ID
}

// NewStore creates an empty table. newFn must return a new zero record
// (e.g. func() *Item { return &Item{} }).
func NewStore[T entity.Record](table string, newFn func() T) *Store[T] {
	return &Store[T]{
		table: table,
		newFn: newFn,
		rows:  make(map[id.ID]T),
	}
}

// Table implements markonly.Store.
func (s *Store[T]) Table() string { return s.table }

func (s *Store[T]) copyOf(rec T) T {
	c := s.newFn()
	reflect.ValueOf(c).Elem().Set(reflect.ValueOf(rec).Elem())
	c.MarkPersisted()
	return c
}

func (s *Store[T]) matches(rec T, where []filter.Item) bool {
	return filter.MatchAll(where, func(col string) any {
		v, _ := entity.ColumnValue(rec, col)
		return v
	})
}

// Insert stores a copy of rec and marks rec persisted.
func (s *Store[T]) Insert(ctx context.Context, rec T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.rows[rec.GetID()]; dup {
		return apperror.NewConflict("duplicate primary key").
			WithDetail("entity", s.table).
			WithDetail("id", rec.GetID().String())
	}
	s.rows[rec.GetID()] = s.copyOf(rec)
	s.order = append(s.order, rec.GetID())
	rec.MarkPersisted()
	return nil
}

// FindByID returns a copy of the row.
func (s *Store[T]) FindByID(ctx context.Context, recID id.ID) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[recID]
	if !ok {
		var zero T
		return zero, apperror.NewNotFound(s.table, recID.String())
	}
	return s.copyOf(row), nil
}

// Find returns copies of matching rows in insertion order.
func (s *Store[T]) Find(ctx context.Context, where []filter.Item) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []T
	for _, rid := range s.order {
		if row := s.rows[rid]; s.matches(row, where) {
			out = append(out, s.copyOf(row))
		}
	}
	return out, nil
}

// Count counts matching rows.
func (s *Store[T]) Count(ctx context.Context, where []filter.Item) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, rid := range s.order {
		if s.matches(s.rows[rid], where) {
			n++
		}
	}
	return n, nil
}

// Exists reports whether the row is present.
func (s *Store[T]) Exists(ctx context.Context, recID id.ID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rows[recID]
	return ok, nil
}

// UpdateColumn writes column of one row.
func (s *Store[T]) UpdateColumn(ctx context.Context, recID id.ID, column string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[recID]
	if !ok {
		return apperror.NewNotFound(s.table, recID.String())
	}
	return entity.SetColumn(row, column, value)
}

// UpdateColumnWhere writes column of every matching row.
func (s *Store[T]) UpdateColumnWhere(ctx context.Context, where []filter.Item, column string, value any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Match first so the write cannot affect which rows are selected.
	var hits []T
	for _, rid := range s.order {
		if row := s.rows[rid]; s.matches(row, where) {
			hits = append(hits, row)
		}
	}
	for _, row := range hits {
		if err := entity.SetColumn(row, column, value); err != nil {
			return 0, err
		}
	}
	return int64(len(hits)), nil
}

// Delete removes one row.
func (s *Store[T]) Delete(ctx context.Context, recID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[recID]; !ok {
		return apperror.NewNotFound(s.table, recID.String())
	}
	s.remove(recID)
	return nil
}

// DeleteWhere removes every matching row.
func (s *Store[T]) DeleteWhere(ctx context.Context, where []filter.Item) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var hits []id.ID
	for _, rid := range s.order {
		if s.matches(s.rows[rid], where) {
			hits = append(hits, rid)
		}
	}
	for _, rid := range hits {
		s.remove(rid)
	}
	return int64(len(hits)), nil
}

func (s *Store[T]) remove(recID id.ID) {
	delete(s.rows, recID)
	for i, rid := range s.order {
		if rid == recID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
