package pagination

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/agentfashion/storefront/pkg/types"
)

const (
	// DefaultPageSize is the standard page size when one is not provided.
	DefaultPageSize = 20
	// MaxPageSize caps how many rows any listing can request.
	MaxPageSize = 100
)

// Params holds page-based pagination inputs.
type Params struct {
	Page     int
	PageSize int
}

// Normalize enforces a 1-based page and the default and maximum sizes.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	p.PageSize = NormalizePageSize(p.PageSize)
	return p
}

// NormalizePageSize enforces the configured default and maximum page sizes.
func NormalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// Offset returns the number of rows to skip for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Window returns the [start, end) bounds of the page within total rows.
func (p Params) Window(total int) (int, int) {
	n := p.Normalize()
	start := n.Offset()
	if start > total {
		start = total
	}
	end := start + n.PageSize
	if end > total {
		end = total
	}
	return start, end
}

// Info builds listing metadata for total rows.
func (p Params) Info(total int) types.PageInfo {
	n := p.Normalize()
	pages := 0
	if total > 0 {
		pages = (total + n.PageSize - 1) / n.PageSize
	}
	return types.PageInfo{
		TotalCount:  total,
		CurrentPage: n.Page,
		TotalPages:  pages,
		HasNext:     n.Page < pages,
		HasPrevious: n.Page > 1,
	}
}

// Values encodes the params as page/page_size query parameters. Zero values are omitted.
func (p Params) Values() url.Values {
	values := url.Values{}
	if p.Page > 0 {
		values.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		values.Set("page_size", strconv.Itoa(p.PageSize))
	}
	return values
}

// FromValues reads page/page_size from a query string. Missing or malformed
// values fall back to defaults.
func FromValues(values url.Values) Params {
	return Params{
		Page:     atoi(values.Get("page")),
		PageSize: atoi(values.Get("page_size")),
	}.Normalize()
}

func atoi(raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return v
}
