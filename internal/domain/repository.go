// Package domain provides core business logic interfaces and types.
package domain

import (
	"strings"

	"factura/internal/core/apperror"
	"factura/internal/core/id"
)

// --- Filter & Pagination ---

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// ListFilter contains common filtering options for list operations.
// Lists are always ordered newest first.
type ListFilter struct {
	// Search matches the document number or the client name
	Search string

	// IDs filters by specific IDs
	IDs []id.ID

	// ClientID restricts documents to one client
	ClientID *id.ID

	// Pagination
	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{Limit: DefaultLimit}
}

// Normalize clamps pagination and trims the search term.
func (f *ListFilter) Normalize() {
	f.Search = strings.TrimSpace(f.Search)
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// NormalizeGetErr maps a repository lookup failure to the entity's error.
// A not-found from any layer is reported under entityName.
func NormalizeGetErr(err error, entityName string, entityID any) error {
	if err == nil {
		return nil
	}
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(entityName, entityID)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", entityName).WithDetail("id", entityID)
}
