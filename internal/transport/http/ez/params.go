package ez

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"go-gin-resource-api/internal/core/errs"
	"go-gin-resource-api/internal/docstore"
	"go-gin-resource-api/internal/resource"
)

// DefaultMaxLimit 单页上限
const DefaultMaxLimit = 100

// Query parameter names understood by ParsePagination.
const (
	ParamPage    = "page"
	ParamLimit   = "limit"
	ParamAll     = "all"
	ParamCursor  = "cursor"
	ParamOrderBy = "orderBy"
	ParamOrder   = "order"
	ParamFilter  = "filter"
)

// ParsePagination reads the listing options from the query string.
//
//	?page=2&limit=20&orderBy=createdAt&order=desc&filter=status:eq:pending&filter=tokens:gt:10
//
// Every malformed value is reported as one FieldError in a single BadRequest.
// A limit above maxLimit is clamped, not rejected.
func ParsePagination(c *gin.Context, maxLimit int) (resource.PaginationOptions, error) {
	if maxLimit < 1 {
		maxLimit = DefaultMaxLimit
	}
	opts := resource.PaginationOptions{Page: resource.DefaultPage, Limit: resource.DefaultLimit}
	var bad []errs.FieldError

	if v, ok := c.GetQuery(ParamPage); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 1 {
			bad = append(bad, invalid(ParamPage, "page must be a positive integer"))
		} else {
			opts.Page = n
		}
	}
	if v, ok := c.GetQuery(ParamLimit); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 1 {
			bad = append(bad, invalid(ParamLimit, "limit must be a positive integer"))
		} else {
			opts.Limit = min(n, maxLimit)
		}
	}
	if v, ok := c.GetQuery(ParamAll); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			bad = append(bad, invalid(ParamAll, "all must be true or false"))
		} else {
			opts.All = b
		}
	}
	opts.Cursor = strings.TrimSpace(c.Query(ParamCursor))

	if field := strings.TrimSpace(c.Query(ParamOrderBy)); field != "" {
		dir, err := docstore.ParseDirection(c.Query(ParamOrder))
		if err != nil {
			bad = append(bad, invalid(ParamOrder, "order must be asc or desc"))
		} else {
			opts.OrderBy = &docstore.OrderBy{Field: field, Direction: dir}
		}
	}

	// 偏移量 (page-1)*limit 不能溢出
	if opts.Page-1 > math.MaxInt/opts.Limit {
		bad = append(bad, invalid(ParamPage, "page is out of range"))
	}

	for _, raw := range c.QueryArray(ParamFilter) {
		f, err := parseFilter(raw)
		if err != nil {
			bad = append(bad, invalid(ParamFilter, err.Error()))
			continue
		}
		opts.Filters = append(opts.Filters, f)
	}

	if len(bad) > 0 {
		return opts, errs.BadRequest("Invalid query parameters", bad...)
	}
	return opts, nil
}

// parseFilter 格式 key:op:value，value 可含冒号
func parseFilter(raw string) (docstore.Filter, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 || strings.TrimSpace(parts[0]) == "" {
		return docstore.Filter{}, fmt.Errorf("filter %q must look like key:op:value", raw)
	}
	op, err := docstore.ParseOperator(parts[1])
	if err != nil {
		return docstore.Filter{}, err
	}
	return docstore.Filter{Key: strings.TrimSpace(parts[0]), Op: op, Value: parts[2]}, nil
}

func invalid(field, msg string) errs.FieldError {
	return errs.FieldError{Field: field, Code: "invalid", Message: msg}
}
