package table

// WindowSize is the maximum number of page buttons shown at once.
const WindowSize = 5

// Pagination is the caller-owned paging state. The table never changes it; it
// only validates navigation requests and reports them through the callbacks.
type Pagination struct {
	CurrentPage      int
	TotalPages       int
	PageSize         int
	TotalItems       int
	OnPageChange     func(page int)
	OnPageSizeChange func(size int)
}

// TotalPages returns ceil(totalItems/pageSize).
func TotalPages(totalItems, pageSize int) int {
	if totalItems <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalItems + pageSize - 1) / pageSize
}

// PageWindow returns the page numbers to show around current: 1..5 at the
// start, total-4..total at the end and current-2..current+2 in between.
func PageWindow(current, total int) []int {
	if total <= 0 {
		return nil
	}
	if total <= WindowSize {
		pages := make([]int, total)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages
	}

	start := current - WindowSize/2
	if start < 1 {
		start = 1
	}
	if start+WindowSize-1 > total {
		start = total - WindowSize + 1
	}

	pages := make([]int, WindowSize)
	for i := range pages {
		pages[i] = start + i
	}
	return pages
}

// Ellipsis reports whether the pager shows a truncation marker. It does not
// depend on where the window sits.
func Ellipsis(total int) bool {
	return total > WindowSize
}
