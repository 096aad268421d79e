package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"markonly/internal/markonly"
)

// Pinger checks the database connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	db       Pinger
	policy   *markonly.Policy
	registry *markonly.Registry
}

// NewHealthHandler creates a new health handler. db may be nil for in-memory setups.
func NewHealthHandler(db Pinger, policy *markonly.Policy, registry *markonly.Registry) *HealthHandler {
	return &HealthHandler{db: db, policy: policy, registry: registry}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles readiness probe (is the service ready to accept traffic?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "error",
				"checks": map[string]string{
					"database": "unhealthy: " + err.Error(),
				},
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{
			"database": "healthy",
		},
	})
}

// Info returns the mark-only configuration and the registered types.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	regs := h.registry.Registrations()
	types := make([]gin.H, 0, len(regs))
	for _, r := range regs {
		types = append(types, gin.H{
			"type":   r.TypeName,
			"table":  r.Table,
			"column": r.StatusColumn,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"app": "markonly",
		"policy": gin.H{
			"enabled":       h.policy.IsEnabled(),
			"active_value":  h.policy.ActiveValue,
			"deleted_value": h.policy.DeletedValue,
		},
		"mark_only_types": types,
	})
}
