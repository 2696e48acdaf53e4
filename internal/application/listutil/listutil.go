package listutil

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = 24

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{12, 24, 48, 96}

// Params carries paging, sorting and search parsed from a request.
type Params struct {
	Page    int    // 1-indexed
	PerPage int    // one of PerPageOptions
	Sort    string // empty when the column is not allowed
	Desc    bool
	Search  string // lower-cased, trimmed
}

// Parse extracts page, per_page, sort, dir and q from URL query values.
// PRE: allowedSort lists the sortable column names
// POST: returns Params with defaults applied; unknown sort columns are dropped
func Parse(q url.Values, allowedSort []string) Params {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if !contains(PerPageOptions, perPage) {
		perPage = DefaultPerPage
	}
	sort := q.Get("sort")
	if !contains(allowedSort, sort) {
		sort = ""
	}
	return Params{
		Page:    page,
		PerPage: perPage,
		Sort:    sort,
		Desc:    q.Get("dir") == "desc",
		Search:  strings.ToLower(strings.TrimSpace(q.Get("q"))),
	}
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: TotalPages >= 1; Page clamped to [1, TotalPages]
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	page = min(max(page, 1), totalPages)
	return PageInfo{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Offset returns the index of the first row on the current page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Slice returns the rows of items that fall on the page described by p.
// PRE: p was built by NewPageInfo with Total == len(items)
// POST: returns a subslice of at most p.PerPage rows
func Slice[T any](items []T, p PageInfo) []T {
	start := min(p.Offset(), len(items))
	end := min(start+p.PerPage, len(items))
	return items[start:end]
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
