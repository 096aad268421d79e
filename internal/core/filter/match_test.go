package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"markonly/internal/core/id"
)

type state string

func TestItem_Match(t *testing.T) {
	deleted := "deleted"
	a, b := id.New(), id.New()

	tests := []struct {
		name string
		item Item
		v    any
		want bool
	}{
		{"eq string", Eq("status", "active"), "active", true},
		{"eq pointer", Eq("status", "deleted"), &deleted, true},
		{"eq null", Eq("status", "active"), nil, false},
		{"neq null", Item{Field: "status", Operator: NotEqual, Value: "deleted"}, nil, false},
		{"distinct null", Distinct("status", "deleted"), nil, true},
		{"distinct other", Distinct("status", "deleted"), "active", true},
		{"distinct same", Distinct("status", "deleted"), &deleted, false},
		{"in ids", In("id", []id.ID{a, b}), b, true},
		{"in ids miss", In("id", []id.ID{a}), b, false},
		{"in single id", In("id", a), a, true},
		{"nin", Item{Field: "id", Operator: NotInList, Value: []id.ID{a}}, b, true},
		{"null", Null("status"), (*string)(nil), true},
		{"not null", Item{Field: "status", Operator: IsNotNull}, "x", true},
		{"gt int", Item{Field: "n", Operator: Greater, Value: 3}, int64(5), true},
		{"lte float", Item{Field: "n", Operator: LessOrEqual, Value: 2.5}, 2, true},
		{"lt string", Item{Field: "name", Operator: Less, Value: "b"}, "a", true},
		{"contains", Item{Field: "name", Operator: Contains, Value: "OLT"}, "bolt", true},
		{"eq id as string", Eq("group_id", a.String()), &a, true},
		{"eq id as upper string", Eq("group_id", strings.ToUpper(a.String())), a, true},
		{"eq id other string", Eq("group_id", b.String()), a, false},
		{"in id strings", In("id", []any{a.String(), b.String()}), b, true},
		{"eq named string", Eq("status", "deleted"), state("deleted"), true},
		{"distinct named string", Distinct("status", "deleted"), state("active"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.Match(tt.v))
		})
	}
}

func TestItem_Validate(t *testing.T) {
	assert.NoError(t, Eq("status", "x").Validate())
	assert.Error(t, Item{Field: "", Operator: Equal}.Validate())
	assert.Error(t, Item{Field: "status", Operator: "like"}.Validate())
}

func TestMatchAll(t *testing.T) {
	row := map[string]any{"status": "active", "group_id": 7}
	lookup := func(col string) any { return row[col] }

	assert.True(t, MatchAll([]Item{Eq("group_id", 7), Distinct("status", "deleted")}, lookup))
	assert.False(t, MatchAll([]Item{Eq("group_id", 7), Eq("status", "deleted")}, lookup))
	assert.True(t, MatchAll(nil, lookup))
}
