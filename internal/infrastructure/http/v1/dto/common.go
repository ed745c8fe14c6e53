// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"factura/internal/core/id"
	"factura/internal/domain"
)

// --- Pagination & filters ---

// ListQuery contains the query parameters shared by list endpoints.
type ListQuery struct {
	Search   string `form:"search"`
	ClientID string `form:"clientId" binding:"omitempty,uuid"`
	Status   string `form:"status"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset   int    `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the query to a domain filter.
// ClientID must already be validated by binding.
func (q ListQuery) ToFilter() domain.ListFilter {
	f := domain.DefaultListFilter()
	f.Search = q.Search
	if q.Limit > 0 {
		f.Limit = q.Limit
	}
	f.Offset = q.Offset
	if q.ClientID != "" {
		if clientID, err := id.Parse(q.ClientID); err == nil {
			f.ClientID = &clientID
		}
	}
	f.Normalize()
	return f
}

// HistoryQuery bounds the number of audit entries returned.
type HistoryQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// FromListResult converts a domain page, mapping every item.
func FromListResult[E any, T any](r domain.ListResult[E], mapFn func(E) T) ListResponse[T] {
	items := make([]T, 0, len(r.Items))
	for _, e := range r.Items {
		items = append(items, mapFn(e))
	}
	return ListResponse[T]{
		Items:      items,
		TotalCount: r.TotalCount,
		Limit:      r.Limit,
		Offset:     r.Offset,
	}
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
