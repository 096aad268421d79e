// Package filter describes row predicates independent of the storage engine.
// The postgres store renders them with squirrel, the memory store evaluates them in Go.
package filter

import (
	"fmt"
	"strings"
)

// ComparisonType is the comparison applied by an Item.
type ComparisonType string

const (
	Equal          ComparisonType = "eq"
	NotEqual       ComparisonType = "neq"
	Less           ComparisonType = "lt"
	Greater        ComparisonType = "gt"
	LessOrEqual    ComparisonType = "lte"
	GreaterOrEqual ComparisonType = "gte"
	InList         ComparisonType = "in"
	NotInList      ComparisonType = "nin"
	Contains       ComparisonType = "contains" // ILIKE %val%

	IsNull    ComparisonType = "null"
	IsNotNull ComparisonType = "not_null"

	// DistinctFrom is a NULL-safe inequality: NULL counts as distinct from any value.
	DistinctFrom ComparisonType = "distinct"
)

// Item is a single predicate on one column.
type Item struct {
	Field    string         `json:"field"` // column name (snake_case)
	Operator ComparisonType `json:"operator"`
	Value    any            `json:"value"`
}

func (i Item) String() string {
	return fmt.Sprintf("%s %s %v", i.Field, i.Operator, i.Value)
}

// Validate checks the item shape (not the column whitelist).
func (i Item) Validate() error {
	if strings.TrimSpace(i.Field) == "" {
		return fmt.Errorf("filter field is empty")
	}
	switch i.Operator {
	case Equal, NotEqual, Less, Greater, LessOrEqual, GreaterOrEqual,
		InList, NotInList, Contains, IsNull, IsNotNull, DistinctFrom:
		return nil
	default:
		return fmt.Errorf("unknown filter operator %q for %s", i.Operator, i.Field)
	}
}

// Eq builds an equality item.
func Eq(field string, value any) Item {
	return Item{Field: field, Operator: Equal, Value: value}
}

// In builds a membership item. values is usually a slice.
func In(field string, values any) Item {
	return Item{Field: field, Operator: InList, Value: values}
}

// Null builds an IS NULL item.
func Null(field string) Item {
	return Item{Field: field, Operator: IsNull}
}

// Distinct builds an IS DISTINCT FROM item.
func Distinct(field string, value any) Item {
	return Item{Field: field, Operator: DistinctFrom, Value: value}
}
