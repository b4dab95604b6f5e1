package listing

// PageSize is the fixed number of listings per page.
const PageSize = 12

// Window describes one page of a sorted, filtered collection.
type Window struct {
	Page      int
	PageCount int
	Total     int
	HasNext   bool
	HasPrev   bool
}

// Paginate returns the 1-based page of items clipped to the collection.
// Pages outside the collection, including page < 1, yield an empty slice.
func Paginate[T any](items []T, page, size int) []T {
	if size <= 0 || page < 1 {
		return []T{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

// PageCount is the number of non-empty pages for total items.
func PageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// NewWindow computes navigation state for page over total items.
func NewWindow(page, total, size int) Window {
	return Window{
		Page:      page,
		PageCount: PageCount(total, size),
		Total:     total,
		HasNext:   page >= 1 && page*size < total,
		HasPrev:   page > 1,
	}
}
