package catalog

import (
	"context"

	"markonly/internal/core/apperror"
	"markonly/internal/core/filter"
	"markonly/internal/core/id"
	"markonly/internal/core/tx"
	"markonly/internal/domain"
	"markonly/internal/markonly"
	"markonly/pkg/logger"
)

// Config wires the catalog to its stores.
type Config struct {
	Groups    markonly.Store[*Group]
	Items     markonly.Store[*Item]
	TxManager tx.Manager

	// Policy and Registry default to the process-wide ones.
	Policy   *markonly.Policy
	Registry *markonly.Registry
}

// Catalog holds the group and item services.
type Catalog struct {
	Groups *domain.CatalogService[*Group]
	Items  *domain.CatalogService[*Item]
}

// New registers both types as mark-only and builds their services.
// Destroying a group destroys its items.
func New(cfg Config) (*Catalog, error) {
	groups, err := markonly.NewModel(markonly.ModelConfig[*Group]{
		Store:        cfg.Groups,
		StatusColumn: StatusColumn,
		Policy:       cfg.Policy,
		Registry:     cfg.Registry,
		Name:         "group",
	})
	if err != nil {
		return nil, err
	}

	items, err := markonly.NewModel(markonly.ModelConfig[*Item]{
		Store:        cfg.Items,
		StatusColumn: StatusColumn,
		Policy:       cfg.Policy,
		Registry:     cfg.Registry,
		Name:         "item",
	})
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		Groups: domain.NewCatalogService(domain.CatalogServiceConfig[*Group]{
			Model:     groups,
			TxManager: cfg.TxManager,
		}),
		Items: domain.NewCatalogService(domain.CatalogServiceConfig[*Item]{
			Model:     items,
			TxManager: cfg.TxManager,
		}),
	}

	items.Hooks().OnBeforeCreate(c.checkGroup)
	groups.Hooks().OnBeforeDestroy(c.destroyItems)
	return c, nil
}

// checkGroup rejects items whose group is missing or marked deleted.
func (c *Catalog) checkGroup(ctx context.Context, item *Item) error {
	if item.GroupID == nil {
		return nil
	}
	g, err := c.Groups.GetByID(ctx, *item.GroupID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewValidation("group does not exist").
				WithDetail("field", "groupId").
				WithDetail("groupId", item.GroupID.String())
		}
		return err
	}
	if c.Groups.IsDeleted(g) {
		return apperror.NewValidation("group is deleted").
			WithDetail("field", "groupId").
			WithDetail("groupId", item.GroupID.String())
	}
	return nil
}

func (c *Catalog) destroyItems(ctx context.Context, g *Group) error {
	n, err := c.Items.Model().DestroyAll(ctx, filter.Eq("group_id", g.ID))
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Debug(ctx, "destroyed group items", "group_id", g.ID, "count", n)
	}
	return nil
}

// ItemCount counts the items of a group, including items marked deleted.
func (c *Catalog) ItemCount(ctx context.Context, groupID id.ID) (int64, error) {
	return c.Items.Count(ctx, filter.Eq("group_id", groupID))
}
