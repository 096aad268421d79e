package filter

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
)

// Match evaluates the item against a column value. A nil v means NULL.
// Comparisons with NULL are false except IsNull and DistinctFrom, as in SQL.
func (i Item) Match(v any) bool {
	v = deref(v)
	want := deref(i.Value)

	switch i.Operator {
	case IsNull:
		return v == nil
	case IsNotNull:
		return v != nil
	case DistinctFrom:
		if v == nil || want == nil {
			return v != want
		}
		return !equal(v, want)
	}

	if v == nil {
		return false
	}

	switch i.Operator {
	case Equal:
		return equal(v, want)
	case NotEqual:
		return !equal(v, want)
	case InList:
		return contains(i.Value, v)
	case NotInList:
		return !contains(i.Value, v)
	case Contains:
		return strings.Contains(
			strings.ToLower(fmt.Sprint(v)),
			strings.ToLower(fmt.Sprint(want)),
		)
	case Less, Greater, LessOrEqual, GreaterOrEqual:
		c, ok := compare(v, want)
		if !ok {
			return false
		}
		switch i.Operator {
		case Less:
			return c < 0
		case Greater:
			return c > 0
		case LessOrEqual:
			return c <= 0
		default:
			return c >= 0
		}
	}
	return false
}

// MatchAll reports whether every item matches; lookup returns the column value.
func MatchAll(items []Item, lookup func(col string) any) bool {
	for _, it := range items {
		if !it.Match(lookup(it.Field)) {
			return false
		}
	}
	return true
}

func deref(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

func equal(a, b any) bool {
	a, b = normalize(a), normalize(b)
	if reflect.DeepEqual(a, b) {
		return true
	}
	if c, ok := compare(a, b); ok {
		return c == 0
	}
	return false
}

// normalize turns UUIDs into their canonical string and named string types
// into plain strings, so JSON filter values compare like they do in SQL.
func normalize(v any) any {
	switch x := v.(type) {
	case uuid.UUID:
		return x.String()
	case string:
		if u, err := uuid.Parse(x); err == nil && len(x) == 36 {
			return u.String()
		}
		return x
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		return rv.String()
	}
	return v
}

func contains(list any, v any) bool {
	rv := reflect.ValueOf(list)
	// Arrays are scalars here: id.ID is a [16]byte.
	if rv.Kind() != reflect.Slice {
		return equal(v, deref(list))
	}
	for i := 0; i < rv.Len(); i++ {
		if equal(v, deref(rv.Index(i).Interface())) {
			return true
		}
	}
	return false
}

// compare orders numbers numerically and strings lexically.
func compare(a, b any) (int, bool) {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1, true
			case fa > fb:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Kind() == reflect.String && rb.Kind() == reflect.String {
		sa, sb := ra.String(), rb.String()
		return strings.Compare(sa, sb), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
