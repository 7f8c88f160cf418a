package pagination

import (
	"math"
	"net/http"
	"strconv"
)

// PageSize is fixed for every listing.
const PageSize = 5

type Meta struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
}

// Page is the envelope returned by list endpoints.
type Page[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

// Clamp normalises a requested page number: anything below 1 becomes 1.
func Clamp(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// TotalPages returns ceil(count/size), never less than 1.
func TotalPages(count, size int) int {
	if size <= 0 {
		size = PageSize
	}
	pages := (count + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// Offset returns the row offset of a clamped page. It saturates at
// math.MaxInt so a huge page number still lands past the last row.
func Offset(page, size int) int {
	page = Clamp(page)
	if size > 0 && page-1 > math.MaxInt/size {
		return math.MaxInt
	}
	return (page - 1) * size
}

// NewPage builds the envelope. A page past the end yields an empty, non-nil data slice.
func NewPage[T any](rows []T, page, count int) Page[T] {
	if rows == nil {
		rows = []T{}
	}
	return Page[T]{
		Data: rows,
		Meta: Meta{
			CurrentPage: Clamp(page),
			TotalPages:  TotalPages(count, PageSize),
		},
	}
}

// ParsePage reads ?page=N; missing or malformed values become 1.
func ParsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		return 1
	}
	return Clamp(page)
}
