// Package domain provides the application services that sit on top of
// markonly models: validation, transactions and list/count views.
package domain

import (
	"markonly/internal/core/entity"
	"markonly/internal/core/filter"
)

// Entity is a record that can validate its own invariants.
type Entity interface {
	entity.Record
	entity.Validatable
}

// Visibility selects soft-deleted rows in a list.
type Visibility string

const (
	// VisibilityAll lists every row, marked or not.
	VisibilityAll Visibility = "all"
	// VisibilityActive hides rows marked deleted.
	VisibilityActive Visibility = "active"
	// VisibilityDeleted lists only rows marked deleted.
	VisibilityDeleted Visibility = "deleted"
)

// ParseVisibility maps a query value to a Visibility. Empty means active.
func ParseVisibility(s string) (Visibility, bool) {
	switch Visibility(s) {
	case "", VisibilityActive:
		return VisibilityActive, true
	case VisibilityAll, VisibilityDeleted:
		return Visibility(s), true
	}
	return "", false
}

// ListFilter contains filtering options for list operations.
type ListFilter struct {
	Visibility Visibility

	// Filters are ANDed.
	Filters []filter.Item
}

// DefaultListFilter lists active rows.
func DefaultListFilter() ListFilter {
	return ListFilter{Visibility: VisibilityActive}
}

// ListResult contains the rows and the counts of the unfiltered-by-status set.
type ListResult[T any] struct {
	Items        []T   `json:"items"`
	TotalCount   int64 `json:"totalCount"`
	DeletedCount int64 `json:"deletedCount"`
}

// DeleteMode selects which delete path a service call takes.
type DeleteMode string

const (
	// ModeDelete marks the row without running destroy hooks.
	ModeDelete DeleteMode = "delete"
	// ModeDestroy marks the row inside the destroy hooks.
	ModeDestroy DeleteMode = "destroy"
	// ModeStrict marks the row, then reports that it was not destroyed.
	ModeStrict DeleteMode = "strict"
	// ModePurge physically removes the row inside the destroy hooks.
	ModePurge DeleteMode = "purge"
)

// ParseDeleteMode maps a query value to a DeleteMode. Empty means destroy.
func ParseDeleteMode(s string) (DeleteMode, bool) {
	switch DeleteMode(s) {
	case "":
		return ModeDestroy, true
	case ModeDelete, ModeDestroy, ModeStrict, ModePurge:
		return DeleteMode(s), true
	}
	return "", false
}
