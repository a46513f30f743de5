package listview

// Page is one page of records plus pagination metadata.
type Page[T any] struct {
	Items       []T
	CurrentPage int
	PageSize    int
	TotalItems  int
	TotalPages  int
}

// TotalPages is ceil(total/size); a non-positive size yields 0.
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// NewPage builds a page from server metadata. Items beyond size are dropped so
// len(Items) <= PageSize always holds.
func NewPage[T any](items []T, current, size, total int) Page[T] {
	if size <= 0 {
		size = max(len(items), DefaultPageSize)
	}
	if len(items) > size {
		items = items[:size]
	}
	if total < len(items) {
		total = len(items)
	}
	if current < 1 {
		current = 1
	}
	return Page[T]{
		Items:       items,
		CurrentPage: current,
		PageSize:    size,
		TotalItems:  total,
		TotalPages:  TotalPages(total, size),
	}
}

// Paginate slices an in-memory set. page is clamped into [1, TotalPages].
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(items)
	pages := TotalPages(total, size)
	if page > pages {
		page = pages
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	end := min(start+size, total)
	var slice []T
	if start < end {
		slice = items[start:end]
	}
	return Page[T]{
		Items:       slice,
		CurrentPage: page,
		PageSize:    size,
		TotalItems:  total,
		TotalPages:  pages,
	}
}

func (p Page[T]) HasPrev() bool { return p.CurrentPage > 1 }

func (p Page[T]) HasNext() bool { return p.CurrentPage < p.TotalPages }

// From and To are the 1-based positions shown as "Showing 11 to 20 of 45".
func (p Page[T]) From() int {
	if len(p.Items) == 0 {
		return 0
	}
	return (p.CurrentPage-1)*p.PageSize + 1
}

func (p Page[T]) To() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.From() + len(p.Items) - 1
}
