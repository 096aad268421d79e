package postgres

import (
	"context"
	"fmt"

	"markonly/pkg/logger"
)

// catalogSchema creates the sample catalog tables. Status columns are plain
// nullable text: NULL is a valid "never marked" state. Purging a group keeps
// its item rows and clears the reference.
var catalogSchema = []string{
	`CREATE TABLE IF NOT EXISTS catalog_groups (
		id     UUID PRIMARY KEY,
		code   VARCHAR(50) NOT NULL,
		name   TEXT NOT NULL,
		status TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_catalog_groups_status ON catalog_groups (status)`,
	`CREATE TABLE IF NOT EXISTS catalog_items (
		id       UUID PRIMARY KEY,
		group_id UUID REFERENCES catalog_groups (id) ON DELETE SET NULL,
		code     VARCHAR(50) NOT NULL,
		name     TEXT NOT NULL,
		status   TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_catalog_items_status ON catalog_items (status)`,
	`CREATE INDEX IF NOT EXISTS idx_catalog_items_group ON catalog_items (group_id)`,
}

// Migrate creates the catalog tables if they do not exist. It runs in one
// transaction so a partial schema is never left behind.
func Migrate(ctx context.Context, txm *TxManager) error {
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		q := txm.GetQuerier(ctx)
		for i, stmt := range catalogSchema {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("migrate step %d: %w", i+1, err)
			}
		}
		logger.Debug(ctx, "catalog schema applied", "statements", len(catalogSchema))
		return nil
	})
}
