package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markonly/internal/core/id"
)

type mockItem struct {
	BaseRecord
	GroupID *id.ID  `db:"group_id"`
	Name    string  `db:"name"`
	Status  *string `db:"status"`
	Note    string  `db:"-"`
	hidden  string
}

type plainStatus struct {
	BaseRecord
	State string `db:"state"`
}

func TestColumns_EmbeddedAndIgnored(t *testing.T) {
	cols := Columns[*mockItem]()

	assert.Equal(t, []string{"id", "group_id", "name", "status"}, cols)
	assert.True(t, HasColumn[*mockItem]("status"))
	assert.False(t, HasColumn[*mockItem]("Note"))
	assert.False(t, HasColumn[*mockItem]("hidden"))
}

func TestSetColumn_PointerField(t *testing.T) {
	item := &mockItem{}

	v, ok := ColumnValue(item, "status")
	require.True(t, ok)
	assert.Nil(t, v)

	require.NoError(t, SetColumn(item, "status", "deleted"))
	require.NotNil(t, item.Status)
	assert.Equal(t, "deleted", *item.Status)

	v, ok = ColumnValue(item, "status")
	require.True(t, ok)
	assert.Equal(t, "deleted", v)

	require.NoError(t, SetColumn(item, "status", nil))
	assert.Nil(t, item.Status)
}

func TestSetColumn_ValueField(t *testing.T) {
	rec := &plainStatus{}

	require.NoError(t, SetColumn(rec, "state", "active"))
	assert.Equal(t, "active", rec.State)

	v, ok := ColumnValue(rec, "state")
	require.True(t, ok)
	assert.Equal(t, "active", v)
}

func TestSetColumn_Errors(t *testing.T) {
	rec := &plainStatus{}

	assert.Error(t, SetColumn(rec, "missing", "x"))
	assert.Error(t, SetColumn(rec, "state", 12.5))
	assert.Error(t, SetColumn("not a struct", "state", "x"))

	_, ok := ColumnValue(rec, "missing")
	assert.False(t, ok)
}

func TestToMap(t *testing.T) {
	status := "active"
	item := &mockItem{Name: "bolt", Status: &status}
	item.ID = id.New()

	m := ToMap(item)

	assert.Equal(t, item.ID, m["id"])
	assert.Equal(t, "bolt", m["name"])
	assert.Equal(t, &status, m["status"])
	assert.NotContains(t, m, "Note")
}

func TestBaseRecord_Lifecycle(t *testing.T) {
	rec := &plainStatus{}
	assert.True(t, rec.IsNewRecord())
	assert.False(t, rec.IsRemoved())

	rec.MarkPersisted()
	assert.False(t, rec.IsNewRecord())

	rec.MarkRemoved()
	assert.True(t, rec.IsRemoved())
}
