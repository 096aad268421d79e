// Package main provides a CLI tool for creating the catalog schema and
// seeding it with demo data.
package main

import (
	"context"
	"fmt"
	"os"

	"markonly/internal/core/id"
	"markonly/internal/domain"
	"markonly/internal/domain/catalog"
	"markonly/internal/infrastructure/storage/postgres"
	"markonly/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)

	// Connect to database
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	poolCfg.ApplicationName = "markonly-seed"
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	if err := postgres.Migrate(ctx, txManager); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}
	log.Info("schema is up to date")

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		cat, err := catalog.New(catalog.Config{
			Groups:    postgres.NewTableStore(txManager, catalog.GroupsTable, func() *catalog.Group { return &catalog.Group{} }),
			Items:     postgres.NewTableStore(txManager, catalog.ItemsTable, func() *catalog.Item { return &catalog.Item{} }),
			TxManager: txManager,
		})
		if err != nil {
			log.Fatalw("failed to build catalog", "error", err)
		}
		if err := seedDemoData(ctx, cat, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

type groupSeed struct {
	code  string
	name  string
	items []string
}

var demoGroups = []groupSeed{
	{"FAST", "Fasteners", []string{"Bolt M8", "Nut M8", "Washer 8mm"}},
	{"TOOL", "Hand tools", []string{"Hammer", "Screwdriver", "Pliers"}},
	{"ARCH", "Discontinued", []string{"Rivet gun"}},
}

// seedDemoData creates groups with items. The "ARCH" group is destroyed
// afterwards so the demo has marked rows to list, restore and purge.
// Existing groups are left alone, which makes the command safe to rerun.
func seedDemoData(ctx context.Context, cat *catalog.Catalog, log *logger.Logger) error {
	log.Info("seeding demo data...")

	existing, err := cat.Groups.List(ctx, domain.ListFilter{Visibility: domain.VisibilityAll})
	if err != nil {
		return fmt.Errorf("list groups: %w", err)
	}
	seen := make(map[string]bool, len(existing.Items))
	for _, g := range existing.Items {
		seen[g.Code] = true
	}

	for _, gs := range demoGroups {
		if seen[gs.code] {
			log.Infow("group already exists, skipping", "code", gs.code)
			continue
		}

		g := catalog.NewGroup(gs.code, gs.name)
		if err := cat.Groups.Create(ctx, g); err != nil {
			return fmt.Errorf("create group %s: %w", gs.code, err)
		}

		gid := g.ID
		for n, name := range gs.items {
			item := catalog.NewItem(fmt.Sprintf("%s-%03d", gs.code, n+1), name, &gid)
			if err := cat.Items.Create(ctx, item); err != nil {
				return fmt.Errorf("create item %s: %w", name, err)
			}
		}
		log.Infow("seeded group", "code", gs.code, "items", len(gs.items))

		if gs.code == "ARCH" {
			if err := archive(ctx, cat, g.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func archive(ctx context.Context, cat *catalog.Catalog, groupID id.ID) error {
	if err := cat.Groups.Delete(ctx, groupID, domain.ModeDestroy); err != nil {
		return fmt.Errorf("archive group: %w", err)
	}
	return nil
}
