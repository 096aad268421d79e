// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"markonly/internal/core/filter"
)

// ListResponse wraps list results with the status counts.
type ListResponse struct {
	Items        any   `json:"items"`
	TotalCount   int64 `json:"totalCount"`
	DeletedCount int64 `json:"deletedCount"`
}

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// AffectedResponse reports how many rows a bulk operation changed.
type AffectedResponse struct {
	Affected int64 `json:"affected"`
}

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// BulkDeleteRequest marks rows by id.
type BulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,max=1000"`
}

// DestroyWhereRequest destroys every active row matching the filters.
type DestroyWhereRequest struct {
	Filters []filter.Item `json:"filters" binding:"required,min=1"`
}

// PurgeRequest limits how many marked rows are removed.
type PurgeRequest struct {
	Limit int `json:"limit" binding:"min=0"`
}
