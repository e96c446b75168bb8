package tgui

import "fmt"

// Page is one window over a larger list of items.
type Page[T any] struct {
	Items   []T
	Index   int // 0-based, clamped
	HasPrev bool
	HasNext bool
}

// Paginate returns the requested page. page is 0-based; size must be
// positive and is defaulted when it is not.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = 10
	}
	if page < 0 {
		page = 0
	}
	total := len(items)
	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return Page[T]{
		Items:   items[start:end],
		Index:   page,
		HasPrev: page > 0,
		HasNext: end < total,
	}
}

// PageLabel returns a compact pagination label. page is 0-based.
func PageLabel(page, size, total int) string {
	if size <= 0 {
		size = 10
	}
	if total <= 0 {
		return "Стр. 1/1"
	}
	pages := (total + size - 1) / size
	if page < 0 {
		page = 0
	}
	if page >= pages {
		page = pages - 1
	}
	return fmt.Sprintf("Стр. %d/%d", page+1, pages)
}
