package dto

import (
	"markonly/internal/core/id"
	"markonly/internal/domain/catalog"
)

// GroupResponse contains group fields.
type GroupResponse struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Status    string `json:"status,omitempty"`
	ItemCount *int64 `json:"itemCount,omitempty"`
}

// FromGroup creates GroupResponse from catalog.Group.
func FromGroup(g *catalog.Group) GroupResponse {
	return GroupResponse{
		ID:     g.ID.String(),
		Code:   g.Code,
		Name:   g.Name,
		Status: deref(g.Status),
	}
}

// CreateGroupRequest for creating groups.
type CreateGroupRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// ToGroup maps the request to a new Group.
func (r CreateGroupRequest) ToGroup() *catalog.Group {
	return catalog.NewGroup(r.Code, r.Name)
}

// ItemResponse contains item fields.
type ItemResponse struct {
	ID      string  `json:"id"`
	GroupID *string `json:"groupId,omitempty"`
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	Status  string  `json:"status,omitempty"`
}

// FromItem creates ItemResponse from catalog.Item.
func FromItem(i *catalog.Item) ItemResponse {
	resp := ItemResponse{
		ID:     i.ID.String(),
		Code:   i.Code,
		Name:   i.Name,
		Status: deref(i.Status),
	}
	if i.GroupID != nil {
		gid := i.GroupID.String()
		resp.GroupID = &gid
	}
	return resp
}

// CreateItemRequest for creating items.
type CreateItemRequest struct {
	GroupID *string `json:"groupId"`
	Code    string  `json:"code" binding:"required"`
	Name    string  `json:"name" binding:"required"`
}

// ToItem maps the request to a new Item.
func (r CreateItemRequest) ToItem() (*catalog.Item, error) {
	var gid *id.ID
	if r.GroupID != nil && *r.GroupID != "" {
		parsed, err := id.Parse(*r.GroupID)
		if err != nil {
			return nil, err
		}
		gid = &parsed
	}
	return catalog.NewItem(r.Code, r.Name, gid), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
