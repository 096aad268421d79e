package postgres

import (
	"fmt"

	"github.com/Masterminds/squirrel"

	"markonly/internal/core/apperror"
	"markonly/internal/core/filter"
)

// buildWhere renders items as an AND of squirrel predicates. Every field must
// be one of the allowed columns.
func buildWhere(items []filter.Item, allowed map[string]struct{}) (squirrel.And, error) {
	where := make(squirrel.And, 0, len(items))
	for _, item := range items {
		if _, ok := allowed[item.Field]; !ok {
			return nil, apperror.NewValidation("invalid filter column").
				WithDetail("field", item.Field)
		}

		switch item.Operator {
		case filter.Equal, filter.InList:
			where = append(where, squirrel.Eq{item.Field: item.Value})
		case filter.NotEqual, filter.NotInList:
			where = append(where, squirrel.NotEq{item.Field: item.Value})
		case filter.Less:
			where = append(where, squirrel.Lt{item.Field: item.Value})
		case filter.Greater:
			where = append(where, squirrel.Gt{item.Field: item.Value})
		case filter.LessOrEqual:
			where = append(where, squirrel.LtOrEq{item.Field: item.Value})
		case filter.GreaterOrEqual:
			where = append(where, squirrel.GtOrEq{item.Field: item.Value})
		case filter.IsNull:
			where = append(where, squirrel.Eq{item.Field: nil})
		case filter.IsNotNull:
			where = append(where, squirrel.NotEq{item.Field: nil})
		case filter.Contains:
			where = append(where, squirrel.ILike{item.Field: fmt.Sprintf("%%%v%%", item.Value)})
		case filter.DistinctFrom:
			// NULL-safe inequality: rows with a NULL status are kept.
			where = append(where, squirrel.Expr(item.Field+" IS DISTINCT FROM ?", item.Value))
		default:
			return nil, apperror.NewValidation("unsupported filter operator").
				WithDetail("field", item.Field).
				WithDetail("operator", string(item.Operator))
		}
	}
	return where, nil
}
