package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"markonly/internal/core/apperror"
	"markonly/internal/core/filter"
	"markonly/internal/core/id"
	"markonly/internal/domain"
	"markonly/internal/infrastructure/http/v1/dto"
)

// CatalogHandler provides generic HTTP handlers for catalog entities.
type CatalogHandler[T domain.Entity, CreateDTO any] struct {
	*BaseHandler
	service *domain.CatalogService[T]

	// Mapper functions
	mapCreateDTO func(req CreateDTO) (T, error)
	mapToDTO     func(rec T) any
}

// CatalogHandlerConfig configures the catalog handler.
type CatalogHandlerConfig[T domain.Entity, CreateDTO any] struct {
	Service      *domain.CatalogService[T]
	MapCreateDTO func(req CreateDTO) (T, error)
	MapToDTO     func(rec T) any
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler[T domain.Entity, CreateDTO any](
	base *BaseHandler,
	cfg CatalogHandlerConfig[T, CreateDTO],
) *CatalogHandler[T, CreateDTO] {
	return &CatalogHandler[T, CreateDTO]{
		BaseHandler:  base,
		service:      cfg.Service,
		mapCreateDTO: cfg.MapCreateDTO,
		mapToDTO:     cfg.MapToDTO,
	}
}

// ParseListFilter reads ?status=active|deleted|all and a JSON ?filter=[...].
func (h *CatalogHandler[T, CreateDTO]) ParseListFilter(c *gin.Context) (domain.ListFilter, bool) {
	f := domain.DefaultListFilter()

	vis, ok := domain.ParseVisibility(c.Query("status"))
	if !ok {
		h.Error(c, apperror.NewValidation("invalid status filter").WithDetail("status", c.Query("status")))
		return f, false
	}
	f.Visibility = vis

	if raw := c.Query("filter"); raw != "" {
		var items []filter.Item
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			h.Error(c, apperror.NewValidation("invalid filter format (json expected)"))
			return f, false
		}
		f.Filters = items
	}
	return f, true
}

// List handles GET /{entity}.
func (h *CatalogHandler[T, CreateDTO]) List(c *gin.Context) {
	f, ok := h.ParseListFilter(c)
	if !ok {
		return
	}
	h.list(c, f)
}

func (h *CatalogHandler[T, CreateDTO]) list(c *gin.Context, f domain.ListFilter) {
	result, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, rec := range result.Items {
		items[i] = h.mapToDTO(rec)
	}

	h.OK(c, dto.ListResponse{
		Items:        items,
		TotalCount:   result.TotalCount,
		DeletedCount: result.DeletedCount,
	})
}

// Get handles GET /{entity}/:id. Marked rows are returned too.
func (h *CatalogHandler[T, CreateDTO]) Get(c *gin.Context) {
	recID, ok := h.ParamID(c)
	if !ok {
		return
	}

	rec, err := h.service.GetByID(c.Request.Context(), recID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.mapToDTO(rec))
}

// Create handles POST /{entity}.
func (h *CatalogHandler[T, CreateDTO]) Create(c *gin.Context) {
	var req CreateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	rec, err := h.mapCreateDTO(req)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return
	}

	if err := h.service.Create(c.Request.Context(), rec); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, h.mapToDTO(rec))
}

// Delete handles DELETE /{entity}/:id?mode=delete|destroy|strict|purge.
// The default mode is destroy.
func (h *CatalogHandler[T, CreateDTO]) Delete(c *gin.Context) {
	recID, ok := h.ParamID(c)
	if !ok {
		return
	}

	mode, ok := domain.ParseDeleteMode(c.Query("mode"))
	if !ok {
		h.Error(c, apperror.NewValidation("invalid delete mode").WithDetail("mode", c.Query("mode")))
		return
	}

	if err := h.service.Delete(c.Request.Context(), recID, mode); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Restore handles POST /{entity}/:id/restore.
func (h *CatalogHandler[T, CreateDTO]) Restore(c *gin.Context) {
	recID, ok := h.ParamID(c)
	if !ok {
		return
	}

	rec, err := h.service.Restore(c.Request.Context(), recID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.mapToDTO(rec))
}

// BulkDelete handles POST /{entity}/bulk-delete. No hooks run.
func (h *CatalogHandler[T, CreateDTO]) BulkDelete(c *gin.Context) {
	var req dto.BulkDeleteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ids, err := id.ParseAll(req.IDs)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("error", err.Error()))
		return
	}

	n, err := h.service.DeleteByIDs(c.Request.Context(), ids)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Affected(c, n)
}

// DestroyWhere handles POST /{entity}/destroy. Hooks run once per row.
func (h *CatalogHandler[T, CreateDTO]) DestroyWhere(c *gin.Context) {
	var req dto.DestroyWhereRequest
	if !h.BindJSON(c, &req) {
		return
	}

	n, err := h.service.DestroyWhere(c.Request.Context(), req.Filters)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Affected(c, n)
}

// Purge handles POST /{entity}/purge: physical removal of rows already marked.
func (h *CatalogHandler[T, CreateDTO]) Purge(c *gin.Context) {
	var req dto.PurgeRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	n, err := h.service.PurgeDeleted(c.Request.Context(), req.Limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Affected(c, n)
}
