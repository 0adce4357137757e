// Package pagination pages through the transaction log. The same window is
// applied as a gorm scope on the database store and as PostgREST
// limit/offset parameters on the REST store.
package pagination

import (
	"net/url"
	"strconv"

	"gorm.io/gorm"
)

// Page size bounds for log listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest holds pagination parameters parsed from query strings.
type PageRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Normalized returns the request with defaults filled in and the page size
// capped, so callers that skipped binding still get a bounded window.
func (p PageRequest) Normalized() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PageSize < 1:
		p.PageSize = DefaultPageSize
	case p.PageSize > MaxPageSize:
		p.PageSize = MaxPageSize
	}
	return p
}

// Window returns the LIMIT and OFFSET of the normalized page.
func (p PageRequest) Window() (limit, offset int) {
	n := p.Normalized()
	return n.PageSize, (n.Page - 1) * n.PageSize
}

// Scope applies the window to a gorm query.
func (p PageRequest) Scope() func(db *gorm.DB) *gorm.DB {
	limit, offset := p.Window()
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(offset).Limit(limit)
	}
}

// Query adds the window to PostgREST query parameters.
func (p PageRequest) Query(q url.Values) url.Values {
	if q == nil {
		q = url.Values{}
	}
	limit, offset := p.Window()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return q
}

// PageResponse is one page of the log with its position in the whole.
type PageResponse[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

// NewPageResponse wraps data fetched for req. A nil slice is rendered as [].
func NewPageResponse[T any](data []T, req PageRequest, totalItems int64) PageResponse[T] {
	req = req.Normalized()
	if data == nil {
		data = []T{}
	}
	size := int64(req.PageSize)
	totalPages := int((totalItems + size - 1) / size)
	return PageResponse[T]{
		Data:       data,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasMore:    req.Page < totalPages,
	}
}
