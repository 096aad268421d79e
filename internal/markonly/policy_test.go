package markonly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markonly/internal/core/apperror"
)

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Policy)
		wantErr bool
	}{
		{name: "defaults", mutate: func(p *Policy) {}},
		{name: "custom values", mutate: func(p *Policy) {
			p.ActiveValue = "A"
			p.DeletedValue = "D"
		}},
		{name: "empty active", mutate: func(p *Policy) { p.ActiveValue = "" }, wantErr: true},
		{name: "blank deleted", mutate: func(p *Policy) { p.DeletedValue = "  " }, wantErr: true},
		{name: "equal values", mutate: func(p *Policy) { p.DeletedValue = p.ActiveValue }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPolicy()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.True(t, apperror.IsConfiguration(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPolicy_IsEnabled(t *testing.T) {
	var nilPolicy *Policy
	assert.False(t, nilPolicy.IsEnabled())

	p := NewPolicy()
	assert.True(t, p.IsEnabled())
	p.Enabled = false
	assert.False(t, p.IsEnabled())
}

func TestConfigure(t *testing.T) {
	saved := *DefaultPolicy()
	t.Cleanup(func() { *DefaultPolicy() = saved })

	err := Configure(Policy{ActiveValue: "x", DeletedValue: "x", Enabled: true})
	require.True(t, apperror.IsConfiguration(err))
	assert.Equal(t, saved, *DefaultPolicy())

	require.NoError(t, Configure(Policy{ActiveValue: "A", DeletedValue: "D", Enabled: true}))
	assert.Equal(t, "A", DefaultPolicy().ActiveValue)
	assert.Equal(t, "D", DefaultPolicy().DeletedValue)
	assert.False(t, DefaultPolicy().DefaultActiveOnCreate)
}

func TestModel_UsesDefaultPolicyOverride(t *testing.T) {
	saved := *DefaultPolicy()
	t.Cleanup(func() { *DefaultPolicy() = saved })
	require.NoError(t, Configure(Policy{
		ActiveValue:           "A",
		DeletedValue:          "D",
		Enabled:               true,
		DefaultActiveOnCreate: true,
	}))

	f := newFixture(t)
	custom, err := NewModel(ModelConfig[*testGroup]{
		Store:        newGroupStore(),
		StatusColumn: "status",
		Registry:     NewRegistry(),
	})
	require.NoError(t, err)

	g := &testGroup{Name: "g"}
	require.NoError(t, custom.Create(f.ctx, g))
	assert.Equal(t, "A", status(g.Status))

	require.NoError(t, custom.Destroy(f.ctx, g))
	assert.Equal(t, "D", status(g.Status))
	assert.True(t, custom.IsDeleted(g))

	// The fixture's own policy is untouched.
	item := f.createItem(t, "bolt", nil)
	require.NoError(t, f.items.Delete(f.ctx, item))
	assert.Equal(t, "deleted", status(item.Status))
}
