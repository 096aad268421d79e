// Package markonly turns deletes into status-column updates.
//
// An entity type opts in by giving its Model a status column. From then on
// Delete, Destroy, DeleteByID, DeleteAll and the scope variants write the
// policy's deleted value instead of removing rows, unless the policy is
// disabled. DeleteForReal and DestroyForReal always remove the row.
package markonly

import (
	"strings"

	"markonly/internal/core/apperror"
)

// Default sentinel values.
const (
	DefaultActiveValue  = "active"
	DefaultDeletedValue = "deleted"
)

// Policy holds the sentinel values and the global switch.
//
// A Policy is configured at startup and treated as read-only afterwards.
// Changing it while deletes are in flight is a precondition violation and is
// not guarded.
type Policy struct {
	ActiveValue  string
	DeletedValue string

	// Enabled false makes every mark-only type delete physically.
	Enabled bool

	// DebugLogging logs every status write.
	DebugLogging bool

	// DefaultActiveOnCreate fills an unset status column with ActiveValue on Create.
	DefaultActiveOnCreate bool
}

// NewPolicy returns a Policy with the default values.
func NewPolicy() Policy {
	return Policy{
		ActiveValue:           DefaultActiveValue,
		DeletedValue:          DefaultDeletedValue,
		Enabled:               true,
		DefaultActiveOnCreate: true,
	}
}

// Validate checks that both sentinels are set and distinct.
func (p Policy) Validate() error {
	if strings.TrimSpace(p.ActiveValue) == "" || strings.TrimSpace(p.DeletedValue) == "" {
		return apperror.NewConfiguration("active and deleted values must be set").
			WithDetail("active_value", p.ActiveValue).
			WithDetail("deleted_value", p.DeletedValue)
	}
	if p.ActiveValue == p.DeletedValue {
		return apperror.NewConfiguration("active and deleted values must differ").
			WithDetail("value", p.ActiveValue)
	}
	return nil
}

// IsEnabled reports whether deletes are redirected to marking.
func (p *Policy) IsEnabled() bool {
	return p != nil && p.Enabled
}

var defaultPolicy = func() *Policy {
	p := NewPolicy()
	return &p
}()

// DefaultPolicy returns the process-wide policy used by Models configured without one.
func DefaultPolicy() *Policy {
	return defaultPolicy
}

// Configure validates p and installs it as the process-wide policy.
// Call once at startup, before any Model is used.
func Configure(p Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	*defaultPolicy = p
	return nil
}
