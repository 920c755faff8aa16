package pagination

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage = 1
	MinSize     = 1
)

// Params holds the list state carried in the query string
type Params struct {
	Query string
	Page  int
}

// Parse extracts q and page from the query string. A search submission carries no
// page, so changing the query always lands on page 1.
func Parse(c *gin.Context) Params {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	if err != nil || page < 1 {
		page = DefaultPage
	}

	return Params{
		Query: strings.TrimSpace(c.Query("q")),
		Page:  page,
	}
}

// Page is one slice of a client-side paginated collection
type Page[T any] struct {
	Items      []T
	Number     int
	Size       int
	TotalItems int
	TotalPages int
	// Offset is the index of Items[0] in the paginated collection
	Offset int
}

// Paginate slices items into pages of size and returns the requested page, clamped
// into range. Size below MinSize is treated as MinSize.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size < MinSize {
		size = MinSize
	}
	total := len(items)
	totalPages := (total + size - 1) / size

	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	return Page[T]{
		Items:      items[start:end],
		Number:     page,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages,
		Offset:     start,
	}
}

// HasPrev is false on the first page
func (p Page[T]) HasPrev() bool {
	return p.Number > 1
}

// HasNext is false on the last page
func (p Page[T]) HasNext() bool {
	return p.Number < p.TotalPages
}

func (p Page[T]) Prev() int {
	if p.HasPrev() {
		return p.Number - 1
	}
	return p.Number
}

func (p Page[T]) Next() int {
	if p.HasNext() {
		return p.Number + 1
	}
	return p.Number
}

// Numbers lists every page number for direct jumps
func (p Page[T]) Numbers() []int {
	nums := make([]int, p.TotalPages)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}

// Empty reports whether the page has nothing to show
func (p Page[T]) Empty() bool {
	return len(p.Items) == 0
}
