package util

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const DefaultPageSize = 10

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int64 `json:"pages"`
	Limit int   `json:"limit"`
}

func Calculate(page, limit int) (offset, size int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = DefaultPageSize
	}
	offset = (page - 1) * limit
	return offset, limit
}

func Paginate(total int64, page, limit int) Pagination {
	pages := (total + int64(limit) - 1) / int64(limit)
	return Pagination{Total: total, Page: page, Pages: pages, Limit: limit}
}

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// PageParams reads page/limit query params and returns the normalized
// page, limit and offset.
func PageParams(c echo.Context) (page, limit, offset int) {
	page = ParseIntDefault(c.QueryParam("page"), 1)
	limit = ParseIntDefault(c.QueryParam("limit"), DefaultPageSize)
	if page < 1 {
		page = 1
	}
	offset, limit = Calculate(page, limit)
	return page, limit, offset
}
