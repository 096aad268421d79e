package handlers

import (
	"github.com/gin-gonic/gin"

	"markonly/internal/core/filter"
	"markonly/internal/domain"
	"markonly/internal/domain/catalog"
	"markonly/internal/infrastructure/http/v1/dto"
)

// GroupHandler handles group endpoints.
type GroupHandler struct {
	*CatalogHandler[*catalog.Group, dto.CreateGroupRequest]
	catalog *catalog.Catalog
	items   *CatalogHandler[*catalog.Item, dto.CreateItemRequest]
}

// NewGroupHandler creates a new group handler.
func NewGroupHandler(base *BaseHandler, c *catalog.Catalog, items *CatalogHandler[*catalog.Item, dto.CreateItemRequest]) *GroupHandler {
	return &GroupHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*catalog.Group, dto.CreateGroupRequest]{
			Service: c.Groups,
			MapCreateDTO: func(req dto.CreateGroupRequest) (*catalog.Group, error) {
				return req.ToGroup(), nil
			},
			MapToDTO: func(g *catalog.Group) any { return dto.FromGroup(g) },
		}),
		catalog: c,
		items:   items,
	}
}

// Get handles GET /groups/:id with the item count. Marked items are counted.
func (h *GroupHandler) Get(c *gin.Context) {
	groupID, ok := h.ParamID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	g, err := h.catalog.Groups.GetByID(ctx, groupID)
	if err != nil {
		h.Error(c, err)
		return
	}
	n, err := h.catalog.ItemCount(ctx, groupID)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromGroup(g)
	resp.ItemCount = &n
	h.OK(c, resp)
}

// Items handles GET /groups/:id/items.
func (h *GroupHandler) Items(c *gin.Context) {
	groupID, ok := h.ParamID(c)
	if !ok {
		return
	}

	f, ok := h.items.ParseListFilter(c)
	if !ok {
		return
	}
	f.Filters = append(f.Filters, filter.Eq("group_id", groupID))
	h.items.list(c, f)
}

// NewItemHandler creates the item handler.
func NewItemHandler(base *BaseHandler, items *domain.CatalogService[*catalog.Item]) *CatalogHandler[*catalog.Item, dto.CreateItemRequest] {
	return NewCatalogHandler(base, CatalogHandlerConfig[*catalog.Item, dto.CreateItemRequest]{
		Service: items,
		MapCreateDTO: func(req dto.CreateItemRequest) (*catalog.Item, error) {
			return req.ToItem()
		},
		MapToDTO: func(i *catalog.Item) any { return dto.FromItem(i) },
	})
}
