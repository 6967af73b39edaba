package pagination

import (
	"net/url"
	"strconv"

	"gorm.io/gorm"
)

const (
	// DefaultPageSize is used when page_size is not provided.
	DefaultPageSize = 20
	// MaxPageSize caps page_size.
	MaxPageSize = 100
)

// PageRequest holds pagination parameters parsed from query strings.
type PageRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// FromQuery reads page and page_size from q. A page that is not a positive
// integer is reported with ok == false. An unusable page_size falls back to
// DefaultPageSize and is capped at MaxPageSize.
func FromQuery(q url.Values) (req PageRequest, ok bool) {
	req.Page = 1
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return req, false
		}
		req.Page = page
	}

	req.PageSize = DefaultPageSize
	if size, err := strconv.Atoi(q.Get("page_size")); err == nil && size > 0 {
		req.PageSize = min(size, MaxPageSize)
	}
	return req, true
}

// Defaults fills in default values when page or page_size are not provided.
func (p *PageRequest) Defaults() {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = DefaultPageSize
	}
}

// Offset returns the SQL OFFSET for the current page.
func (p *PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// InRange reports whether the requested page exists for count rows. The
// first page always exists, even when there are no rows.
func (p *PageRequest) InRange(count int64) bool {
	return p.Page == 1 || int64(p.Offset()) < count
}

// PageResponse wraps one page of results with the total row count and
// links to the neighbouring pages.
type PageResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`

	page     int
	pageSize int
}

// NewPageResponse creates a PageResponse from the given results and total count.
func NewPageResponse[T any](results []T, page, pageSize int, count int64) PageResponse[T] {
	if results == nil {
		results = []T{}
	}
	return PageResponse[T]{
		Count:    count,
		Results:  results,
		page:     page,
		pageSize: pageSize,
	}
}

// HasNext reports whether a page follows this one.
func (p *PageResponse[T]) HasNext() bool {
	return int64(p.page*p.pageSize) < p.Count
}

// HasPrevious reports whether a page precedes this one.
func (p *PageResponse[T]) HasPrevious() bool {
	return p.page > 1
}

// SetLinks fills Next and Previous with copies of requestURL whose page
// parameter points at the neighbouring pages. Other query parameters are
// preserved.
func (p *PageResponse[T]) SetLinks(requestURL *url.URL) {
	p.Next, p.Previous = nil, nil
	if p.HasNext() {
		next := pageURL(requestURL, p.page+1)
		p.Next = &next
	}
	if p.HasPrevious() {
		prev := pageURL(requestURL, p.page-1)
		p.Previous = &prev
	}
}

func pageURL(base *url.URL, page int) string {
	u := *base
	q := u.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Paginate returns a GORM scope that applies OFFSET and LIMIT for the given page request.
func Paginate(req PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(req.Offset()).Limit(req.PageSize)
	}
}
