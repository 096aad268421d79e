package markonly

import (
	"reflect"
	"sort"
	"strings"
	"sync"

	"markonly/internal/core/apperror"
	"markonly/internal/core/entity"
)

// Registration records that an entity type uses mark-only deletion.
type Registration struct {
	TypeName     string
	Table        string
	StatusColumn string
}

// Registry stores registrations per entity type. Registration is immutable:
// a type registers once.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]Registration)}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds reg. It fails with a configuration error when the status
// column is empty or the type is already registered.
func (r *Registry) Register(reg Registration) error {
	if strings.TrimSpace(reg.StatusColumn) == "" {
		return apperror.NewConfiguration("mark-only requires a status column").
			WithDetail("type", reg.TypeName)
	}
	if reg.TypeName == "" {
		return apperror.NewConfiguration("mark-only registration without type name").
			WithDetail("column", reg.StatusColumn)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.types[reg.TypeName]; ok {
		return apperror.NewConfiguration("type is already registered as mark-only").
			WithDetail("type", reg.TypeName).
			WithDetail("column", existing.StatusColumn)
	}
	r.types[reg.TypeName] = reg
	return nil
}

// Lookup returns the registration for typeName.
func (r *Registry) Lookup(typeName string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.types[typeName]
	return reg, ok
}

// IsMarkOnly reports whether typeName was registered.
func (r *Registry) IsMarkOnly(typeName string) bool {
	_, ok := r.Lookup(typeName)
	return ok
}

// Registrations returns all registrations sorted by type name.
func (r *Registry) Registrations() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Registration, 0, len(r.types))
	for _, reg := range r.types {
		out = append(out, reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TypeName < out[j].TypeName })
	return out
}

// TypeName is the registry key for T: the package-qualified struct name.
func TypeName[T any]() string {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.String()
}

// RegisterType registers T with the given table and status column.
// The column must be a "db" tag on T.
func RegisterType[T any](r *Registry, table, column string) (Registration, error) {
	reg := Registration{
		TypeName:     TypeName[T](),
		Table:        table,
		StatusColumn: column,
	}
	if column != "" && !entity.HasColumn[T](column) {
		return reg, apperror.NewConfiguration("status column is not a db field of the type").
			WithDetail("type", reg.TypeName).
			WithDetail("column", column)
	}
	if err := r.Register(reg); err != nil {
		return reg, err
	}
	return reg, nil
}
