// Package paging slices ordered collections into fixed-size pages.
package paging

// TotalPages returns ceil(n/size), never less than 1. A non-positive size counts as one page.
func TotalPages(n, size int) int {
	if size <= 0 || n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Paginate returns page index (zero-based) of items. Out-of-range pages and
// non-positive sizes yield an empty slice. The result shares memory with items.
func Paginate[T any](items []T, index, size int) []T {
	if size <= 0 || index < 0 {
		return []T{}
	}

	start := index * size
	if start >= len(items) || start/size != index {
		return []T{}
	}
	end := min(start+size, len(items))

	return items[start:end:end]
}

// Page describes one page of a collection.
type Page[T any] struct {
	Items      []T
	Index      int
	Size       int
	Total      int
	TotalPages int
}

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool {
	return p.Index+1 < p.TotalPages
}

// HasPrev reports whether a page precedes this one.
func (p Page[T]) HasPrev() bool {
	return p.Index > 0
}

// New builds the page at index, clamping the index into the valid range.
func New[T any](items []T, index, size int) Page[T] {
	total := TotalPages(len(items), size)
	index = max(0, min(index, total-1))

	return Page[T]{
		Items:      Paginate(items, index, size),
		Index:      index,
		Size:       size,
		Total:      len(items),
		TotalPages: total,
	}
}
