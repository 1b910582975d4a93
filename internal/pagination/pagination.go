package pagination

import "fmt"

// Page is one slice of an ordered list. Index is zero based.
type Page[T any] struct {
	Items      []T
	Index      int
	Size       int
	TotalPages int
	HasPrev    bool
	HasNext    bool
}

// Paginate returns page index of items split into pages of size. An index
// outside the valid range is clamped to the nearest page.
func Paginate[T any](items []T, size, index int) Page[T] {
	if size <= 0 {
		size = 1
	}

	total := (len(items) + size - 1) / size

	if index >= total {
		index = total - 1
	}

	if index < 0 {
		index = 0
	}

	start := index * size
	end := min(start+size, len(items))

	var visible []T
	if start < end {
		visible = items[start:end]
	}

	return Page[T]{
		Items:      visible,
		Index:      index,
		Size:       size,
		TotalPages: total,
		HasPrev:    index > 0,
		HasNext:    index < total-1,
	}
}

// Offset is the position of the page's first item in the full list.
func (p Page[T]) Offset() int {
	return p.Index * p.Size
}

func (p Page[T]) Label() string {
	if p.TotalPages == 0 {
		return "Page 0/0"
	}

	return fmt.Sprintf("Page %d/%d", p.Index+1, p.TotalPages)
}
