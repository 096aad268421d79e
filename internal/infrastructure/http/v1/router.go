// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"markonly/internal/domain/catalog"
	"markonly/internal/infrastructure/http/v1/handlers"
	"markonly/internal/infrastructure/http/v1/middleware"
	"markonly/internal/markonly"
	"markonly/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	Catalog *catalog.Catalog

	// DB is pinged by the readiness probe. May be nil.
	DB handlers.Pinger

	Policy   *markonly.Policy
	Registry *markonly.Registry

	// Logger for request logging
	Logger *logger.Logger
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	if cfg.Policy == nil {
		cfg.Policy = markonly.DefaultPolicy()
	}
	if cfg.Registry == nil {
		cfg.Registry = markonly.DefaultRegistry()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Actor())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Policy, cfg.Registry)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	v1 := router.Group("/api/v1")
	registerCatalogRoutes(v1.Group("/catalog"), cfg)

	return router
}

// registerCatalogRoutes registers group and item endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	itemHandler := handlers.NewItemHandler(baseHandler, cfg.Catalog.Items)
	groupHandler := handlers.NewGroupHandler(baseHandler, cfg.Catalog, itemHandler)

	groups := rg.Group("/groups")
	RegisterCatalogRoutes(groups, groupHandler)
	groups.GET("/:id/items", groupHandler.Items)

	RegisterCatalogRoutes(rg.Group("/items"), itemHandler)
}
