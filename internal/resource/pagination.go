package resource

import (
	"math"

	"go-gin-resource-api/internal/docstore"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// PaginationOptions drives Repository.Paginate. When All is set, Page,
// Limit and Cursor are ignored and every matching record is returned.
type PaginationOptions struct {
	Page    int
	Limit   int
	Filters []docstore.Filter
	OrderBy *docstore.OrderBy
	Cursor  string
	All     bool
}

func (o PaginationOptions) withDefaults() PaginationOptions {
	if o.Page < 1 {
		o.Page = DefaultPage
	}
	if o.Limit < 1 {
		o.Limit = DefaultLimit
	}
	return o
}

// offset is (Page-1)*Limit; ok is false when it does not fit in an int.
func (o PaginationOptions) offset() (int, bool) {
	if o.Page-1 > math.MaxInt/o.Limit {
		return 0, false
	}
	return (o.Page - 1) * o.Limit, true
}

// Meta describes the returned window.
type Meta struct {
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalItems int64  `json:"totalItems"`
	TotalPages int    `json:"totalPages"`
	HasNext    bool   `json:"hasNext"`
	HasPrev    bool   `json:"hasPrev"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// PaginationResult is built per request and never stored.
type PaginationResult[T any] struct {
	Data []T   `json:"data"`
	Meta *Meta `json:"meta"`
}

// NewMeta computes the page counters:
// totalPages = ceil(total/limit), hasNext = page < totalPages, hasPrev = page > 1,
// and an empty result set has no pages and no neighbours.
func NewMeta(page, limit int, total int64) Meta {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if total < 0 {
		total = 0
	}
	m := Meta{Page: page, Limit: limit, TotalItems: total}
	if total == 0 {
		return m
	}
	m.TotalPages = int((total + int64(limit) - 1) / int64(limit))
	m.HasNext = page < m.TotalPages
	m.HasPrev = page > 1
	return m
}
