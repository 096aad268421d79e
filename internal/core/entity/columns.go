package entity

import (
	"fmt"
	"reflect"
	"sync"
)

// columnIndex maps a db column name to the field index path inside a struct.
type columnIndex struct {
	names []string
	paths map[string][]int
}

var indexCache sync.Map // map[reflect.Type]*columnIndex

// indexOf returns cached column metadata for t.
// Embedded structs (by value) are walked recursively.
func indexOf(t reflect.Type) *columnIndex {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := indexCache.Load(t); ok {
		return cached.(*columnIndex)
	}

	idx := &columnIndex{paths: make(map[string][]int)}
	if t.Kind() == reflect.Struct {
		walkColumns(t, nil, idx)
	}

	actual, _ := indexCache.LoadOrStore(t, idx)
	return actual.(*columnIndex)
}

func walkColumns(t reflect.Type, prefix []int, idx *columnIndex) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		path := append(append([]int(nil), prefix...), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			walkColumns(field.Type, path, idx)
			continue
		}
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		if _, dup := idx.paths[tag]; dup {
			continue
		}
		idx.names = append(idx.names, tag)
		idx.paths[tag] = path
	}
}

// Columns returns all "db" column names of T in declaration order.
//
//	cols := Columns[*catalog.Item]()
//	// ["id", "group_id", "name", "status"]
func Columns[T any]() []string {
	var zero T
	return ColumnsOf(reflect.TypeOf(zero))
}

// ColumnsOf is the reflect.Type variant of Columns.
func ColumnsOf(t reflect.Type) []string {
	if t == nil {
		return nil
	}
	names := indexOf(t).names
	return append([]string(nil), names...)
}

// HasColumn reports whether T has a field tagged with col.
func HasColumn[T any](col string) bool {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return false
	}
	_, ok := indexOf(t).paths[col]
	return ok
}

func structValue(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	return rv, rv.Kind() == reflect.Struct
}

// ColumnValue returns the value of the field tagged `db:"col"`.
// Pointer fields are dereferenced; a nil pointer yields nil.
func ColumnValue(v any, col string) (any, bool) {
	rv, ok := structValue(v)
	if !ok {
		return nil, false
	}
	path, ok := indexOf(rv.Type()).paths[col]
	if !ok {
		return nil, false
	}

	field := rv.FieldByIndex(path)
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return nil, true
		}
		return field.Elem().Interface(), true
	}
	return field.Interface(), true
}

// SetColumn assigns value to the field tagged `db:"col"`.
// A nil value resets the field to its zero value. T is assignable to *T fields.
func SetColumn(v any, col string, value any) error {
	rv, ok := structValue(v)
	if !ok {
		return fmt.Errorf("set column %s: %T is not a struct", col, v)
	}
	path, ok := indexOf(rv.Type()).paths[col]
	if !ok {
		return fmt.Errorf("set column %s: no such column on %s", col, rv.Type())
	}

	field := rv.FieldByIndex(path)
	if !field.CanSet() {
		return fmt.Errorf("set column %s: field is not settable", col)
	}

	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	val := reflect.ValueOf(value)
	switch {
	case val.Type().AssignableTo(field.Type()):
		field.Set(val)
	case field.Kind() == reflect.Ptr && val.Type().AssignableTo(field.Type().Elem()):
		ptr := reflect.New(field.Type().Elem())
		ptr.Elem().Set(val)
		field.Set(ptr)
	case val.Type().ConvertibleTo(field.Type()):
		field.Set(val.Convert(field.Type()))
	case field.Kind() == reflect.Ptr && val.Type().ConvertibleTo(field.Type().Elem()):
		ptr := reflect.New(field.Type().Elem())
		ptr.Elem().Set(val.Convert(field.Type().Elem()))
		field.Set(ptr)
	default:
		return fmt.Errorf("set column %s: cannot assign %T to %s", col, value, field.Type())
	}
	return nil
}

// ToMap converts a struct to a column map using "db" tags.
// Pointer fields keep their pointer value so NULL is preserved.
func ToMap(v any) map[string]any {
	rv, ok := structValue(v)
	if !ok {
		return nil
	}
	idx := indexOf(rv.Type())
	res := make(map[string]any, len(idx.names))
	for _, name := range idx.names {
		res[name] = rv.FieldByIndex(idx.paths[name]).Interface()
	}
	return res
}
