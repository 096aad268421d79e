package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTx stands in for an open pgx transaction. Only Exec is used by
// the nested paths.
type recordingTx struct {
	pgx.Tx
	sql []string
}

func (r *recordingTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.sql = append(r.sql, sql)
	return pgconn.NewCommandTag(sql), nil
}

func inTx(ptx pgx.Tx) context.Context {
	return context.WithValue(context.Background(), txKey{}, &Tx{Tx: ptx})
}

func TestTxManager_SavepointReleasedOnSuccess(t *testing.T) {
	ptx := &recordingTx{}
	m := &TxManager{}

	var inner Querier
	err := m.Savepoint(inTx(ptx), func(ctx context.Context) error {
		inner = m.GetQuerier(ctx)
		_, err := inner.Exec(ctx, "DELETE FROM catalog_items WHERE id = $1")
		return err
	})

	require.NoError(t, err)
	assert.Same(t, ptx, inner)
	assert.Equal(t, []string{
		"SAVEPOINT markonly_sp_1",
		"DELETE FROM catalog_items WHERE id = $1",
		"RELEASE SAVEPOINT markonly_sp_1",
	}, ptx.sql)
}

func TestTxManager_SavepointRolledBackOnError(t *testing.T) {
	ptx := &recordingTx{}
	m := &TxManager{}
	boom := errors.New("fk violation")

	err := m.Savepoint(inTx(ptx), func(ctx context.Context) error {
		return boom
	})

	assert.Same(t, boom, err)
	assert.Equal(t, []string{
		"SAVEPOINT markonly_sp_1",
		"ROLLBACK TO SAVEPOINT markonly_sp_1",
	}, ptx.sql)
}

func TestTxManager_NestedSavepointsAreNumbered(t *testing.T) {
	ptx := &recordingTx{}
	m := &TxManager{}

	err := m.Savepoint(inTx(ptx), func(ctx context.Context) error {
		return m.Savepoint(ctx, func(ctx context.Context) error {
			assert.Equal(t, 2, m.GetTx(ctx).depth)
			return nil
		})
	})

	require.NoError(t, err)
	assert.Equal(t, []string{
		"SAVEPOINT markonly_sp_1",
		"SAVEPOINT markonly_sp_2",
		"RELEASE SAVEPOINT markonly_sp_2",
		"RELEASE SAVEPOINT markonly_sp_1",
	}, ptx.sql)
}

func TestTxManager_NestedCallJoinsOuterTransaction(t *testing.T) {
	ptx := &recordingTx{}
	m := &TxManager{}

	called := false
	err := m.RunInTransaction(inTx(ptx), func(ctx context.Context) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
	assert.Empty(t, ptx.sql)
}
