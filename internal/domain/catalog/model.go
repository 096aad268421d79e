// Package catalog is the sample catalog: groups that own items. Both types
// use mark-only deletion on their "status" column.
package catalog

import (
	"context"
	"strings"

	"markonly/internal/core/apperror"
	"markonly/internal/core/entity"
	"markonly/internal/core/id"
)

// Table and column names.
const (
	GroupsTable  = "catalog_groups"
	ItemsTable   = "catalog_items"
	StatusColumn = "status"
)

// Group is a folder of items.
type Group struct {
	entity.BaseRecord

	Code   string  `db:"code" json:"code"`
	Name   string  `db:"name" json:"name"`
	Status *string `db:"status" json:"status"`
}

// NewGroup creates a Group with required fields.
func NewGroup(code, name string) *Group {
	return &Group{Code: code, Name: name}
}

// Validate implements domain.Entity.
func (g *Group) Validate(ctx context.Context) error {
	return validateCodeName(g.Code, g.Name)
}

// Item belongs to at most one group.
type Item struct {
	entity.BaseRecord

	GroupID *id.ID  `db:"group_id" json:"groupId,omitempty"`
	Code    string  `db:"code" json:"code"`
	Name    string  `db:"name" json:"name"`
	Status  *string `db:"status" json:"status"`
}

// NewItem creates an Item with required fields.
func NewItem(code, name string, groupID *id.ID) *Item {
	return &Item{Code: code, Name: name, GroupID: groupID}
}

// Validate implements domain.Entity.
func (i *Item) Validate(ctx context.Context) error {
	if err := validateCodeName(i.Code, i.Name); err != nil {
		return err
	}
	if i.GroupID != nil && id.IsNil(*i.GroupID) {
		return apperror.NewValidation("group id must not be nil").
			WithDetail("field", "groupId")
	}
	return nil
}

func validateCodeName(code, name string) error {
	if strings.TrimSpace(code) == "" {
		return apperror.NewValidation("code is required").WithDetail("field", "code")
	}
	if len(code) > 50 {
		return apperror.NewValidation("code is too long").
			WithDetail("field", "code").
			WithDetail("max", 50)
	}
	if strings.TrimSpace(name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	return nil
}
