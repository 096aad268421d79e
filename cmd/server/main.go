// Package main is the entry point for the markonly admin API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"markonly/internal/domain/catalog"
	v1 "markonly/internal/infrastructure/http/v1"
	"markonly/internal/infrastructure/storage/postgres"
	"markonly/internal/markonly"
	"markonly/pkg/logger"
)

func main() {
	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	log.Info("starting markonly server")

	// --- Mark-only policy ---
	policy := policyFromEnv()
	if err := markonly.Configure(policy); err != nil {
		log.Fatalw("invalid mark-only policy", "error", err)
	}
	log.Infow("mark-only policy configured",
		"enabled", policy.Enabled,
		"active_value", policy.ActiveValue,
		"deleted_value", policy.DeletedValue,
	)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	if getEnvBool("MIGRATE_ON_START", true) {
		if err := postgres.Migrate(ctx, txManager); err != nil {
			log.Fatalw("failed to apply schema", "error", err)
		}
	}

	// --- Catalog ---
	cat, err := catalog.New(catalog.Config{
		Groups:    postgres.NewTableStore(txManager, catalog.GroupsTable, func() *catalog.Group { return &catalog.Group{} }),
		Items:     postgres.NewTableStore(txManager, catalog.ItemsTable, func() *catalog.Item { return &catalog.Item{} }),
		TxManager: txManager,
	})
	if err != nil {
		log.Fatalw("failed to build catalog", "error", err)
	}

	for _, r := range markonly.DefaultRegistry().Registrations() {
		log.Infow("mark-only type registered", "type", r.TypeName, "table", r.Table, "column", r.StatusColumn)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Catalog:  cat,
		DB:       pool,
		Policy:   markonly.DefaultPolicy(),
		Registry: markonly.DefaultRegistry(),
		Logger:   log,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	pool.LogStats(ctx)
	log.Info("server stopped")
}
