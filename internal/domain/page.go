package domain

import (
	"encoding/json"
	"slices"
)

// AllowedPageSizes lists the page sizes a list view may request.
// Any other value falls back to DefaultPageSize.
var AllowedPageSizes = []int{10, 20, 30, 40, 50, 100}

// DefaultPageSize is the smallest allowed page size.
const DefaultPageSize = 10

// Window constants for the page-number sequence. A page is listed when it is
// one of the first leftEdge pages, one of the last rightEdge pages, or falls
// inside the window around the current page.
const (
	leftEdge     = 2
	leftCurrent  = 2
	rightCurrent = 2
	rightEdge    = 2
)

// PageRequest carries page/page-size values from the HTTP layer to the repo layer.
// Page is 1-indexed. PageSize is always one of AllowedPageSizes.
type PageRequest struct {
	Page     int
	PageSize int
}

// NewPageRequest builds a PageRequest from optional HTTP query params.
// Nil or out-of-range values fall back to page=1 and DefaultPageSize.
func NewPageRequest(page, pageSize *int) PageRequest {
	p := PageRequest{Page: 1, PageSize: DefaultPageSize}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if pageSize != nil {
		p.PageSize = sanitizePageSize(*pageSize)
	}
	return p
}

// PageLink is one entry in a rendered page-number sequence: either a page
// number or a gap marker standing for an elided range.
type PageLink struct {
	Number int
	Gap    bool
}

// MarshalJSON renders a page number as a JSON number and a gap as null.
func (l PageLink) MarshalJSON() ([]byte, error) {
	if l.Gap {
		return []byte("null"), nil
	}
	return json.Marshal(l.Number)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (l *PageLink) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*l = PageLink{Gap: true}
		return nil
	}
	*l = PageLink{}
	return json.Unmarshal(b, &l.Number)
}

// PageResult is the navigation state of one page of a list.
// It is derived entirely from the Paginate inputs.
type PageResult struct {
	CurrentPage int        `json:"current_page"`
	PageSize    int        `json:"page_size"`
	TotalItems  int        `json:"total_items"`
	TotalPages  int        `json:"total_pages"`
	HasPrevious bool       `json:"has_previous"`
	HasNext     bool       `json:"has_next"`
	PageNumbers []PageLink `json:"page_numbers"`
}

// Paginate turns a possibly out-of-range page request into a renderable
// pagination state. It never fails: a bad page or page size degrades to the
// nearest sane value.
func Paginate(page, pageSize, totalItems int) PageResult {
	pageSize = sanitizePageSize(pageSize)
	if totalItems < 0 {
		totalItems = 0
	}

	totalPages := 0
	if totalItems > 0 {
		totalPages = (totalItems + pageSize - 1) / pageSize
	}

	current := 1
	if totalPages > 0 {
		current = min(max(page, 1), totalPages)
	}

	return PageResult{
		CurrentPage: current,
		PageSize:    pageSize,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		HasPrevious: current > 1,
		HasNext:     totalPages > 0 && current < totalPages,
		PageNumbers: pageNumbers(current, totalPages),
	}
}

// PaginateRequest is Paginate for an already sanitised PageRequest.
func PaginateRequest(req PageRequest, totalItems int) PageResult {
	return Paginate(req.Page, req.PageSize, totalItems)
}

// Offset returns the zero-based index of the first item on the current page.
func (p PageResult) Offset() int {
	return (p.CurrentPage - 1) * p.PageSize
}

// Bounds returns the [lo, hi) slice bounds of the current page within an
// in-memory sequence of n items.
func (p PageResult) Bounds(n int) (lo, hi int) {
	lo = min(p.Offset(), n)
	hi = min(lo+p.PageSize, n)
	return lo, hi
}

// PageOf returns the items of the current page. The returned slice shares
// its backing array with items.
func PageOf[T any](p PageResult, items []T) []T {
	lo, hi := p.Bounds(len(items))
	return items[lo:hi]
}

func sanitizePageSize(size int) int {
	if slices.Contains(AllowedPageSizes, size) {
		return size
	}
	return DefaultPageSize
}

func pageNumbers(current, totalPages int) []PageLink {
	links := make([]PageLink, 0, leftEdge+leftCurrent+rightCurrent+rightEdge+2)
	last := 0
	for n := 1; n <= totalPages; n++ {
		inWindow := n > current-leftCurrent-1 && n < current+rightCurrent
		if n > leftEdge && !inWindow && n <= totalPages-rightEdge {
			continue
		}
		if last != 0 && n != last+1 {
			links = append(links, PageLink{Gap: true})
		}
		links = append(links, PageLink{Number: n})
		last = n
	}
	return links
}
