package v1

import (
	"github.com/gin-gonic/gin"
)

// CatalogRouteHandler defines the interface for catalog handlers.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Delete(c *gin.Context)
	Restore(c *gin.Context)
	BulkDelete(c *gin.Context)
	DestroyWhere(c *gin.Context)
	Purge(c *gin.Context)
}

// RegisterCatalogRoutes registers the standard routes for a mark-only catalog.
//
//	DELETE /:id?mode=delete|destroy|strict|purge
//	POST   /:id/restore
//	POST   /bulk-delete   {"ids": [...]}
//	POST   /destroy       {"filters": [...]}
//	POST   /purge         {"limit": n}
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.POST("/bulk-delete", handler.BulkDelete)
	group.POST("/destroy", handler.DestroyWhere)
	group.POST("/purge", handler.Purge)
	group.GET("/:id", handler.Get)
	group.DELETE("/:id", handler.Delete)
	group.POST("/:id/restore", handler.Restore)
}
