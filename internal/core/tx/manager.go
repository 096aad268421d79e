// Package tx provides transaction management abstractions.
// The mark-only engine never opens transactions itself; application services
// wrap multi-statement operations (destroy-all loops, purges) with a Manager.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
// The implementation lives in infrastructure/storage/postgres.
type Manager interface {
	// RunInTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// ReadOnly executes fn in a read-only snapshot, so several reads observe
	// the same data.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error

	// Savepoint executes fn so that its failure rolls back only its own
	// statements. Outside a transaction it behaves like RunInTransaction.
	Savepoint(ctx context.Context, fn func(ctx context.Context) error) error
}

// Noop runs fn directly. Used with stores that have no transactional backend.
type Noop struct{}

// RunInTransaction implements Manager.
func (Noop) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ReadOnly implements Manager.
func (Noop) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Savepoint implements Manager.
func (Noop) Savepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
