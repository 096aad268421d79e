package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"markonly/internal/core/apperror"
	"markonly/internal/core/filter"
	"markonly/internal/core/id"
	"markonly/internal/domain"
	"markonly/internal/infrastructure/storage/memory"
	"markonly/internal/markonly"
	"markonly/pkg/logger"
)

type testCatalog struct {
	*Catalog
	ctx    context.Context
	policy *markonly.Policy
	groups *memory.Store[*Group]
	items  *memory.Store[*Item]
}

func newTestCatalog(t *testing.T) *testCatalog {
	return newTestCatalogWith(t, nil, nil)
}

// newTestCatalogWith lets a test wrap the memory stores, e.g. to emulate
// foreign keys. A nil wrapper uses the plain store.
func newTestCatalogWith(
	t *testing.T,
	wrapGroups func(groups *memory.Store[*Group], items *memory.Store[*Item]) markonly.Store[*Group],
	wrapItems func(items *memory.Store[*Item]) markonly.Store[*Item],
) *testCatalog {
	t.Helper()
	p := markonly.NewPolicy()
	tc := &testCatalog{
		ctx:    context.Background(),
		policy: &p,
		groups: memory.NewStore(GroupsTable, func() *Group { return &Group{} }),
		items:  memory.NewStore(ItemsTable, func() *Item { return &Item{} }),
	}

	var groups markonly.Store[*Group] = tc.groups
	if wrapGroups != nil {
		groups = wrapGroups(tc.groups, tc.items)
	}
	var items markonly.Store[*Item] = tc.items
	if wrapItems != nil {
		items = wrapItems(tc.items)
	}

	c, err := New(Config{
		Groups:   groups,
		Items:    items,
		Policy:   tc.policy,
		Registry: markonly.NewRegistry(),
	})
	require.NoError(t, err)
	tc.Catalog = c
	return tc
}

// setNullGroupStore clears catalog_items.group_id when a group row is
// removed, like the ON DELETE SET NULL foreign key.
type setNullGroupStore struct {
	*memory.Store[*Group]
	items *memory.Store[*Item]
}

func (s *setNullGroupStore) Delete(ctx context.Context, groupID id.ID) error {
	if err := s.Store.Delete(ctx, groupID); err != nil {
		return err
	}
	_, err := s.items.UpdateColumnWhere(ctx, []filter.Item{filter.Eq("group_id", groupID)}, "group_id", nil)
	return err
}

// referencedItemStore refuses to remove one item, like a RESTRICT foreign key.
type referencedItemStore struct {
	*memory.Store[*Item]
	referenced id.ID
}

func (s *referencedItemStore) Delete(ctx context.Context, itemID id.ID) error {
	if itemID == s.referenced {
		return apperror.NewConflict("record is referenced by other rows").
			WithDetail("entity", ItemsTable)
	}
	return s.Store.Delete(ctx, itemID)
}

func (tc *testCatalog) group(t *testing.T, code string) *Group {
	t.Helper()
	g := NewGroup(code, "Group "+code)
	require.NoError(t, tc.Groups.Create(tc.ctx, g))
	return g
}

func (tc *testCatalog) item(t *testing.T, code string, g *Group) *Item {
	t.Helper()
	var gid *id.ID
	if g != nil {
		v := g.ID
		gid = &v
	}
	it := NewItem(code, "Item "+code, gid)
	require.NoError(t, tc.Items.Create(tc.ctx, it))
	return it
}

func statusOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func TestCatalog_CreateValidation(t *testing.T) {
	tc := newTestCatalog(t)

	err := tc.Groups.Create(tc.ctx, NewGroup("", "No code"))
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	missing := id.New()
	err = tc.Items.Create(tc.ctx, NewItem("I1", "Bolt", &missing))
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	g := tc.group(t, "G1")
	require.NoError(t, tc.Groups.Delete(tc.ctx, g.ID, domain.ModeDelete))
	err = tc.Items.Create(tc.ctx, NewItem("I2", "Nut", &g.ID))
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "group is deleted", appErr.Message)
}

func TestCatalog_DestroyGroupCascades(t *testing.T) {
	tc := newTestCatalog(t)
	g := tc.group(t, "G1")
	other := tc.group(t, "G2")
	a := tc.item(t, "A", g)
	b := tc.item(t, "B", g)
	c := tc.item(t, "C", other)

	require.NoError(t, tc.Groups.Delete(tc.ctx, g.ID, domain.ModeDestroy))

	for _, it := range []*Item{a, b} {
		fresh, err := tc.Items.GetByID(tc.ctx, it.ID)
		require.NoError(t, err)
		assert.True(t, tc.Items.IsDeleted(fresh))
	}
	fresh, err := tc.Items.GetByID(tc.ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, tc.Items.IsDeleted(fresh))

	n, err := tc.ItemCount(tc.ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestCatalog_PurgeGroupMarksItemsBeforeForeignKeyClears(t *testing.T) {
	tc := newTestCatalogWith(t, func(groups *memory.Store[*Group], items *memory.Store[*Item]) markonly.Store[*Group] {
		return &setNullGroupStore{Store: groups, items: items}
	}, nil)
	g := tc.group(t, "G1")
	it := tc.item(t, "A", g)

	require.NoError(t, tc.Groups.Delete(tc.ctx, g.ID, domain.ModePurge))

	_, err := tc.Groups.GetByID(tc.ctx, g.ID)
	assert.True(t, apperror.IsNotFound(err))

	fresh, err := tc.Items.GetByID(tc.ctx, it.ID)
	require.NoError(t, err)
	assert.Nil(t, fresh.GroupID)
	assert.True(t, tc.Items.IsDeleted(fresh))
}

func TestCatalog_PurgeMarkedGroupCascades(t *testing.T) {
	tc := newTestCatalogWith(t, func(groups *memory.Store[*Group], items *memory.Store[*Item]) markonly.Store[*Group] {
		return &setNullGroupStore{Store: groups, items: items}
	}, nil)
	g := tc.group(t, "G1")
	it := tc.item(t, "A", g)
	require.NoError(t, tc.Groups.Delete(tc.ctx, g.ID, domain.ModeDelete))

	n, err := tc.Groups.PurgeDeleted(tc.ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	fresh, err := tc.Items.GetByID(tc.ctx, it.ID)
	require.NoError(t, err)
	assert.True(t, tc.Items.IsDeleted(fresh))
}

func TestCatalog_DeleteGroupSkipsHooks(t *testing.T) {
	tc := newTestCatalog(t)
	g := tc.group(t, "G1")
	it := tc.item(t, "A", g)

	require.NoError(t, tc.Groups.Delete(tc.ctx, g.ID, domain.ModeDelete))

	fresh, err := tc.Items.GetByID(tc.ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", statusOf(fresh.Status))
}

func TestCatalog_StrictDelete(t *testing.T) {
	tc := newTestCatalog(t)
	it := tc.item(t, "A", nil)

	err := tc.Items.Delete(tc.ctx, it.ID, domain.ModeStrict)
	assert.True(t, apperror.IsRecordNotDestroyed(err))

	fresh, err := tc.Items.GetByID(tc.ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "deleted", statusOf(fresh.Status))
}

func TestCatalog_DeleteLogsOutcome(t *testing.T) {
	tc := newTestCatalog(t)
	strict := tc.item(t, "A", nil)
	plain := tc.item(t, "B", nil)

	core, logs := observer.New(zapcore.InfoLevel)
	ctx := logger.WithLogger(tc.ctx, &logger.Logger{SugaredLogger: zap.New(core).Sugar()})

	require.Error(t, tc.Items.Delete(ctx, strict.ID, domain.ModeStrict))
	require.NoError(t, tc.Items.Delete(ctx, plain.ID, domain.ModeDestroy))

	marked := logs.FilterMessage("record marked, not destroyed").All()
	require.Len(t, marked, 1)
	assert.Equal(t, strict.ID.String(), marked[0].ContextMap()["id"])
	assert.Equal(t, "strict", marked[0].ContextMap()["mode"])

	deleted := logs.FilterMessage("record deleted").All()
	require.Len(t, deleted, 1)
	assert.Equal(t, plain.ID.String(), deleted[0].ContextMap()["id"])
}

func TestCatalog_RestoreAndList(t *testing.T) {
	tc := newTestCatalog(t)
	a := tc.item(t, "A", nil)
	tc.item(t, "B", nil)
	require.NoError(t, tc.Items.Delete(tc.ctx, a.ID, domain.ModeDestroy))

	active, err := tc.Items.List(tc.ctx, domain.DefaultListFilter())
	require.NoError(t, err)
	require.Len(t, active.Items, 1)
	assert.Equal(t, "B", active.Items[0].Code)
	assert.Equal(t, int64(2), active.TotalCount)
	assert.Equal(t, int64(1), active.DeletedCount)

	deleted, err := tc.Items.List(tc.ctx, domain.ListFilter{Visibility: domain.VisibilityDeleted})
	require.NoError(t, err)
	require.Len(t, deleted.Items, 1)
	assert.Equal(t, "A", deleted.Items[0].Code)

	restored, err := tc.Items.Restore(tc.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", statusOf(restored.Status))

	all, err := tc.Items.List(tc.ctx, domain.ListFilter{Visibility: domain.VisibilityAll})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
	assert.Equal(t, int64(0), all.DeletedCount)
}

func TestCatalog_DeleteByIDsAndDestroyWhere(t *testing.T) {
	tc := newTestCatalog(t)
	g := tc.group(t, "G1")
	a := tc.item(t, "A", g)
	b := tc.item(t, "B", g)
	tc.item(t, "C", nil)

	n, err := tc.Items.DeleteByIDs(tc.ctx, []id.ID{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = tc.Items.DeleteByIDs(tc.ctx, []id.ID{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = tc.Items.DestroyWhere(tc.ctx, []filter.Item{filter.Null("group_id")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	total, err := tc.Items.Count(tc.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestCatalog_PurgeDeleted(t *testing.T) {
	tc := newTestCatalog(t)
	a := tc.item(t, "A", nil)
	b := tc.item(t, "B", nil)
	c := tc.item(t, "C", nil)
	require.NoError(t, tc.Items.Delete(tc.ctx, a.ID, domain.ModeDelete))
	require.NoError(t, tc.Items.Delete(tc.ctx, b.ID, domain.ModeDelete))

	n, err := tc.Items.PurgeDeleted(tc.ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = tc.Items.PurgeDeleted(tc.ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	total, err := tc.Items.Count(tc.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	exists, err := tc.items.Exists(tc.ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCatalog_PurgeSkipsReferencedRows(t *testing.T) {
	var store *referencedItemStore
	tc := newTestCatalogWith(t, nil, func(items *memory.Store[*Item]) markonly.Store[*Item] {
		store = &referencedItemStore{Store: items}
		return store
	})
	blocked := tc.item(t, "A", nil)
	free := tc.item(t, "B", nil)
	for _, it := range []*Item{blocked, free} {
		require.NoError(t, tc.Items.Delete(tc.ctx, it.ID, domain.ModeDelete))
	}
	store.referenced = blocked.ID

	n, err := tc.Items.PurgeDeleted(tc.ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	fresh, err := tc.Items.GetByID(tc.ctx, blocked.ID)
	require.NoError(t, err)
	assert.True(t, tc.Items.IsDeleted(fresh))

	exists, err := tc.items.Exists(tc.ctx, free.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCatalog_PurgeMode(t *testing.T) {
	tc := newTestCatalog(t)
	it := tc.item(t, "A", nil)

	require.NoError(t, tc.Items.Delete(tc.ctx, it.ID, domain.ModePurge))

	_, err := tc.Items.GetByID(tc.ctx, it.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCatalog_DisabledPolicy(t *testing.T) {
	tc := newTestCatalog(t)
	it := tc.item(t, "A", nil)
	tc.policy.Enabled = false

	require.NoError(t, tc.Items.Delete(tc.ctx, it.ID, domain.ModeDestroy))

	total, err := tc.Items.Count(tc.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestCatalog_DeleteMissing(t *testing.T) {
	tc := newTestCatalog(t)

	err := tc.Items.Delete(tc.ctx, id.New(), domain.ModeDestroy)
	assert.True(t, apperror.IsNotFound(err))
}
