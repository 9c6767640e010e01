// Package pagination computes page windows and page-number strips over an
// in-memory collection.
package pagination

const (
	// Ellipsis marks a gap in the visible page numbers
	Ellipsis = -1

	// MaxVisiblePages is the largest page count shown without compression
	MaxVisiblePages = 7

	DefaultPageSize = 20
)

// PageSizeOptions are the page sizes offered to the user
var PageSizeOptions = []int{10, 20, 50, 100}

// Window is the half-open index range [StartIndex, EndIndex) of a page
type Window struct {
	StartIndex int `json:"startIndex"`
	EndIndex   int `json:"endIndex"`
}

// TotalPages returns ceil(totalItems/pageSize), or 0 for an empty collection
// or a non-positive page size
func TotalPages(totalItems, pageSize int) int {
	if totalItems <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalItems + pageSize - 1) / pageSize
}

// Paginate returns the index window of currentPage
func Paginate(totalItems, pageSize, currentPage int) Window {
	if totalItems < 0 {
		totalItems = 0
	}
	if pageSize <= 0 {
		return Window{}
	}

	start := (currentPage - 1) * pageSize
	if start < 0 {
		start = 0
	}
	if start > totalItems {
		start = totalItems
	}

	end := start + pageSize
	if end > totalItems {
		end = totalItems
	}
	return Window{StartIndex: start, EndIndex: end}
}

// ClampPage forces requested into [1, totalPages]. With no pages the result
// is 1.
func ClampPage(requested, totalItems, pageSize int) int {
	totalPages := TotalPages(totalItems, pageSize)
	if requested > totalPages {
		requested = totalPages
	}
	if requested < 1 {
		requested = 1
	}
	return requested
}

// VisiblePageNumbers returns the page labels to display. Up to
// MaxVisiblePages pages are listed in full; beyond that the first and last
// pages frame a window of two pages either side of currentPage, with
// Ellipsis standing in for any gap.
func VisiblePageNumbers(currentPage, totalPages int) []int {
	pages := make([]int, 0, MaxVisiblePages+2)

	if totalPages <= MaxVisiblePages {
		for i := 1; i <= totalPages; i++ {
			pages = append(pages, i)
		}
		return pages
	}

	start := max(1, currentPage-2)
	end := min(totalPages, currentPage+2)

	if start > 1 {
		pages = append(pages, 1)
		if start > 2 {
			pages = append(pages, Ellipsis)
		}
	}

	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}

	if end < totalPages {
		if end < totalPages-1 {
			pages = append(pages, Ellipsis)
		}
		pages = append(pages, totalPages)
	}

	return pages
}

// IsValidPageSize reports whether size is one of PageSizeOptions
func IsValidPageSize(size int) bool {
	for _, option := range PageSizeOptions {
		if option == size {
			return true
		}
	}
	return false
}

// State is the pagination position over a collection
type State struct {
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
}

// NewState builds a state with currentPage clamped to the valid range
func NewState(totalItems, pageSize, currentPage int) State {
	return State{
		CurrentPage: ClampPage(currentPage, totalItems, pageSize),
		PageSize:    pageSize,
		TotalItems:  totalItems,
		TotalPages:  TotalPages(totalItems, pageSize),
	}
}

// Window returns the index window of the current page
func (s State) Window() Window {
	return Paginate(s.TotalItems, s.PageSize, s.CurrentPage)
}

// PageNumbers returns the visible page labels for the current page
func (s State) PageNumbers() []int {
	return VisiblePageNumbers(s.CurrentPage, s.TotalPages)
}

// GoTo moves to page, clamped
func (s State) GoTo(page int) State {
	return NewState(s.TotalItems, s.PageSize, page)
}

func (s State) Next() State     { return s.GoTo(s.CurrentPage + 1) }
func (s State) Previous() State { return s.GoTo(s.CurrentPage - 1) }
func (s State) First() State    { return s.GoTo(1) }
func (s State) Last() State     { return s.GoTo(s.TotalPages) }

func (s State) CanGoNext() bool     { return s.CurrentPage < s.TotalPages }
func (s State) CanGoPrevious() bool { return s.CurrentPage > 1 }

// WithPageSize changes the page size and returns to the first page
func (s State) WithPageSize(pageSize int) State {
	return NewState(s.TotalItems, pageSize, 1)
}
