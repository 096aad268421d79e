package markonly

import (
	"context"
	"sync"
)

// HookEvent represents lifecycle event type.
type HookEvent string

const (
	BeforeCreate  HookEvent = "before_create"
	AfterCreate   HookEvent = "after_create"
	BeforeDestroy HookEvent = "before_destroy"
	AfterDestroy  HookEvent = "after_destroy"
)

// Lifecycle names an operation wrapped by before/after hooks.
type Lifecycle string

const (
	LifecycleCreate  Lifecycle = "create"
	LifecycleDestroy Lifecycle = "destroy"
)

func (l Lifecycle) events() (before, after HookEvent) {
	switch l {
	case LifecycleCreate:
		return BeforeCreate, AfterCreate
	default:
		return BeforeDestroy, AfterDestroy
	}
}

// Hook is a function that runs at specific lifecycle points.
// A before-hook returning an error aborts the operation.
type Hook[T any] func(ctx context.Context, rec T) error

// HookRegistry stores lifecycle hooks for an entity type.
type HookRegistry[T any] struct {
	mu    sync.RWMutex
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for the specified event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[event] = append(r.hooks[event], hook)
}

// OnBeforeDestroy registers a hook to run before destroy.
func (r *HookRegistry[T]) OnBeforeDestroy(hook Hook[T]) {
	r.On(BeforeDestroy, hook)
}

// OnAfterDestroy registers a hook to run after destroy.
func (r *HookRegistry[T]) OnAfterDestroy(hook Hook[T]) {
	r.On(AfterDestroy, hook)
}

// OnBeforeCreate registers a hook to run before create.
func (r *HookRegistry[T]) OnBeforeCreate(hook Hook[T]) {
	r.On(BeforeCreate, hook)
}

// OnAfterCreate registers a hook to run after create.
func (r *HookRegistry[T]) OnAfterCreate(hook Hook[T]) {
	r.On(AfterCreate, hook)
}

// Run executes all hooks for the specified event.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, rec T) error {
	r.mu.RLock()
	hooks := r.hooks[event]
	r.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// RunAround runs the before hooks of lc, then body, then the after hooks.
// Nothing after a failing step runs.
func (r *HookRegistry[T]) RunAround(ctx context.Context, lc Lifecycle, rec T, body func(ctx context.Context) error) error {
	before, after := lc.events()
	if err := r.Run(ctx, before, rec); err != nil {
		return err
	}
	if err := body(ctx); err != nil {
		return err
	}
	return r.Run(ctx, after, rec)
}
