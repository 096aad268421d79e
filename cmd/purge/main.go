// Package main is the entry point for the markonly purge worker. It
// periodically removes rows that are already marked deleted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	appctx "markonly/internal/core/context"
	"markonly/internal/domain/catalog"
	"markonly/internal/infrastructure/storage/postgres"
	"markonly/internal/markonly"
	"markonly/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	defer cancel()

	log.Info("starting markonly purge worker")

	if err := markonly.Configure(policyFromEnv()); err != nil {
		log.Fatalw("invalid mark-only policy", "error", err)
	}

	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	poolCfg.ApplicationName = "markonly-purge"
	poolCfg.MinConns = 1
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	cat, err := catalog.New(catalog.Config{
		Groups:    postgres.NewTableStore(txManager, catalog.GroupsTable, func() *catalog.Group { return &catalog.Group{} }),
		Items:     postgres.NewTableStore(txManager, catalog.ItemsTable, func() *catalog.Item { return &catalog.Item{} }),
		TxManager: txManager,
	})
	if err != nil {
		log.Fatalw("failed to build catalog", "error", err)
	}

	worker := NewPurgeWorker(cat, log, PurgeConfig{
		Interval: getEnvDuration("PURGE_INTERVAL", time.Hour),
		Limit:    getEnvInt("PURGE_LIMIT", 500),
	})

	if getEnvBool("PURGE_ONCE", false) {
		worker.runOnce(ctx)
		return
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down purge worker...")
	cancel()

	wg.Wait()
	log.Info("purge worker stopped")
}

// PurgeConfig controls the purge cadence.
type PurgeConfig struct {
	Interval time.Duration
	// Limit caps removed rows per entity per run. 0 means no cap.
	Limit int
}

// PurgeWorker removes marked rows of every catalog entity.
type PurgeWorker struct {
	catalog *catalog.Catalog
	cfg     PurgeConfig
	log     *logger.Logger
}

func NewPurgeWorker(c *catalog.Catalog, log *logger.Logger, cfg PurgeConfig) *PurgeWorker {
	return &PurgeWorker{
		catalog: c,
		cfg:     cfg,
		log:     log.WithComponent("purge"),
	}
}

// Run purges once immediately and then on every tick until ctx is done.
func (w *PurgeWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// runOnce purges items before groups. Destroying a group marks its items,
// which are then removed on the next run.
func (w *PurgeWorker) runOnce(ctx context.Context) {
	ctx = appctx.WithActor(ctx, &appctx.Actor{Name: "purge-worker", Source: "purge"})
	ctx = appctx.WithTrace(ctx, appctx.NewTraceContext())

	items, err := w.catalog.Items.PurgeDeleted(ctx, w.cfg.Limit)
	if err != nil {
		w.log.Errorw("failed to purge items", "error", err)
		return
	}

	groups, err := w.catalog.Groups.PurgeDeleted(ctx, w.cfg.Limit)
	if err != nil {
		w.log.Errorw("failed to purge groups", "error", err)
		return
	}

	if items > 0 || groups > 0 {
		w.log.Infow("purge run completed", "items", items, "groups", groups)
	} else {
		w.log.Debugw("nothing to purge")
	}
}
