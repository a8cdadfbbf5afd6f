// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package grid computes the visible page of a filtered collection. It is
// independent of rendering.
package grid

// DefaultPageSize is the page size of the paper grid.
const DefaultPageSize = 12

// Window is one page of a collection. StartIndex and EndIndex are a
// half-open range into the full collection.
type Window[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`
}

// Paginate returns page (1-based) of items. A page below 1 is treated as
// page 1 and a non-positive size as DefaultPageSize. A page past the end
// yields an empty window positioned at Total.
func Paginate[T any](items []T, page, size int) Window[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	total := len(items)
	w := Window[T]{
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: TotalPages(total, size),
	}

	start := pageStart(page, size, total)
	end := start + min(size, total-start)

	w.StartIndex = start
	w.EndIndex = end
	w.Items = items[start:end]
	return w
}

// TotalPages returns ceil(total/size), or 0 for an empty collection.
func TotalPages(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 0
	}
	return (total-1)/size + 1
}

// ClampPage bounds page to [1, totalPages]. With no pages it returns 1.
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// HasPrev reports whether a previous page exists.
func (w Window[T]) HasPrev() bool { return w.Page > 1 }

// HasNext reports whether a following page exists.
func (w Window[T]) HasNext() bool { return w.Page < w.TotalPages }

// Len returns the number of items on this page.
func (w Window[T]) Len() int { return w.EndIndex - w.StartIndex }

// PageNumbers returns the page buttons a pager shows: the first max pages,
// then the last page when it is not already included and the current page
// is not within two of the end.
func (w Window[T]) PageNumbers(max int) []int {
	n := min(max, w.TotalPages)
	pages := make([]int, 0, n+1)
	for i := 1; i <= n; i++ {
		pages = append(pages, i)
	}
	if w.TotalPages > max && w.Page < w.TotalPages-2 {
		pages = append(pages, w.TotalPages)
	}
	return pages
}

// ServerWindow wraps one page that was paginated elsewhere, such as a
// backend page of a larger result set. total is the size of the full set.
func ServerWindow[T any](items []T, page, size, total int) Window[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	start := pageStart(page, size, total)
	return Window[T]{
		Items:      items,
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: TotalPages(total, size),
		StartIndex: start,
		EndIndex:   start + min(len(items), total-start),
	}
}

// pageStart returns the offset of page within total items, or total when
// the page lies past the end.
func pageStart(page, size, total int) int {
	if page-1 > total/size {
		return total
	}
	return min((page-1)*size, total)
}
