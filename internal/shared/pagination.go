package shared

import (
	"math"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NormalizePage applies defaults to page/limit, caps limit at MaxLimit and
// rejects negative values.
func NormalizePage(page, limit int) (int, int, error) {
	if page < 0 {
		return 0, 0, Validation("INVALID_PAGINATION", "page must be positive")
	}
	if limit < 0 {
		return 0, 0, Validation("INVALID_PAGINATION", "limit must be positive")
	}
	if page == 0 {
		page = DefaultPage
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit, nil
}

// ParsePageParams reads raw page and limit query values. Empty values yield
// zero so NormalizePage can apply defaults.
func ParsePageParams(rawPage, rawLimit string) (int, int, error) {
	var out [2]int
	for i, raw := range []string{rawPage, rawLimit} {
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, Validation("INVALID_PAGINATION", "page and limit must be integers")
		}
		out[i] = v
	}
	return out[0], out[1], nil
}

// Offset returns the row offset for a normalised page/limit pair.
func Offset(page, limit int) int {
	return (page - 1) * limit
}

// NewPagination computes pagination metadata.
func NewPagination(page, limit, total int) Pagination {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if page <= 0 {
		page = DefaultPage
	}
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// Page is a generic paginated result.
type Page[T any] struct {
	Data []T `json:"data"`
	Pagination
}
