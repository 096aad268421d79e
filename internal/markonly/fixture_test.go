package markonly

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"markonly/internal/core/entity"
	"markonly/internal/core/filter"
	"markonly/internal/core/id"
	"markonly/internal/infrastructure/storage/memory"
	"markonly/pkg/logger"
)

type testGroup struct {
	entity.BaseRecord
	Name   string  `db:"name"`
	Status *string `db:"status"`
}

type testItem struct {
	entity.BaseRecord
	GroupID *id.ID  `db:"group_id"`
	Name    string  `db:"name"`
	Status  *string `db:"status"`
}

type plainItem struct {
	entity.BaseRecord
	Name string `db:"name"`
}

// countingStore counts status writes and can fail them.
type countingStore[T entity.Record] struct {
	*memory.Store[T]
	updates     int
	bulkUpdates int
	failUpdate  error
}

func (s *countingStore[T]) UpdateColumn(ctx context.Context, recID id.ID, column string, value any) error {
	s.updates++
	if s.failUpdate != nil {
		return s.failUpdate
	}
	return s.Store.UpdateColumn(ctx, recID, column, value)
}

func (s *countingStore[T]) UpdateColumnWhere(ctx context.Context, where []filter.Item, column string, value any) (int64, error) {
	s.bulkUpdates++
	if s.failUpdate != nil {
		return 0, s.failUpdate
	}
	return s.Store.UpdateColumnWhere(ctx, where, column, value)
}

type fixture struct {
	ctx      context.Context
	policy   *Policy
	registry *Registry
	store    *countingStore[*testItem]
	items    *Model[*testItem]
	groups   *Model[*testGroup]
}

func newFixture(t *testing.T, opts ...func(*Policy)) *fixture {
	t.Helper()

	p := NewPolicy()
	for _, o := range opts {
		o(&p)
	}
	f := &fixture{
		ctx:      context.Background(),
		policy:   &p,
		registry: NewRegistry(),
		store: &countingStore[*testItem]{
			Store: memory.NewStore("items", func() *testItem { return &testItem{} }),
		},
	}

	var err error
	f.items, err = NewModel(ModelConfig[*testItem]{
		Store:        f.store,
		StatusColumn: "status",
		Policy:       f.policy,
		Registry:     f.registry,
	})
	require.NoError(t, err)

	f.groups, err = NewModel(ModelConfig[*testGroup]{
		Store:        memory.NewStore("groups", func() *testGroup { return &testGroup{} }),
		StatusColumn: "status",
		Policy:       f.policy,
		Registry:     f.registry,
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) createItem(t *testing.T, name string, group *testGroup) *testItem {
	t.Helper()
	item := &testItem{Name: name}
	if group != nil {
		gid := group.ID
		item.GroupID = &gid
	}
	require.NoError(t, f.items.Create(f.ctx, item))
	return item
}

func (f *fixture) createGroup(t *testing.T, name string) *testGroup {
	t.Helper()
	g := &testGroup{Name: name}
	require.NoError(t, f.groups.Create(f.ctx, g))
	return g
}

func (f *fixture) reload(t *testing.T, item *testItem) *testItem {
	t.Helper()
	fresh, err := f.items.Reload(f.ctx, item)
	require.NoError(t, err)
	return fresh
}

func status(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func strPtr(s string) *string { return &s }

// observedContext returns a context whose logger records every entry.
func observedContext() (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	return logger.WithLogger(context.Background(), l), logs
}
