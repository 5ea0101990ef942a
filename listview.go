package main

import "strings"

// pageInfo describes the derived pagination state of a listView.
type pageInfo struct {
	CurrentPage   int
	TotalPages    int
	TotalCount    int
	FilteredCount int
}

// listView holds a full in-memory collection plus the search and pagination
// state that derives the visible slice. Any change to the query or to the
// backing collection resets the current page to 1; page navigation clamps to
// [1, totalPages] and is a no-op at the boundaries.
type listView[T any] struct {
	items    []T
	query    string
	page     int
	pageSize int
	match    func(item T, query string) bool
}

func newListView[T any](pageSize int, match func(item T, query string) bool) *listView[T] {
	if pageSize < 1 {
		pageSize = adminDefaultPerPage
	}
	return &listView[T]{
		page:     1,
		pageSize: pageSize,
		match:    match,
	}
}

// SetItems replaces the backing collection wholesale and resets to page 1.
func (v *listView[T]) SetItems(items []T) {
	v.items = items
	v.page = 1
}

// SetQuery updates the search term. Any change, including to the empty string,
// resets the current page to 1.
func (v *listView[T]) SetQuery(query string) {
	if v.query == query {
		return
	}
	v.query = query
	v.page = 1
}

func (v *listView[T]) Query() string { return v.query }

func (v *listView[T]) filtered() []T {
	query := strings.TrimSpace(v.query)
	if query == "" || v.match == nil {
		return v.items
	}
	matched := make([]T, 0, len(v.items))
	for _, item := range v.items {
		if v.match(item, query) {
			matched = append(matched, item)
		}
	}
	return matched
}

// Page returns the pagination metadata for the current filter state. The
// current page is clamped on every call so a shrunken result set can never
// leave the view past its last page.
func (v *listView[T]) Page() pageInfo {
	filtered := v.filtered()
	totalPages := 0
	if len(filtered) > 0 {
		totalPages = (len(filtered) + v.pageSize - 1) / v.pageSize
	}
	v.clampPage(totalPages)
	return pageInfo{
		CurrentPage:   v.page,
		TotalPages:    totalPages,
		TotalCount:    len(v.items),
		FilteredCount: len(filtered),
	}
}

// Visible returns the slice of the filtered collection for the current page.
// Its length never exceeds the page size; an empty filter result yields an
// empty slice, signalling the explicit no-results state.
func (v *listView[T]) Visible() []T {
	filtered := v.filtered()
	totalPages := 0
	if len(filtered) > 0 {
		totalPages = (len(filtered) + v.pageSize - 1) / v.pageSize
	}
	v.clampPage(totalPages)
	if len(filtered) == 0 {
		return []T{}
	}
	start := (v.page - 1) * v.pageSize
	end := start + v.pageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end]
}

// Next advances one page; a no-op on the last page.
func (v *listView[T]) Next() {
	if v.page < v.Page().TotalPages {
		v.page++
	}
}

// Prev goes back one page; a no-op on the first page.
func (v *listView[T]) Prev() {
	if v.page > 1 {
		v.page--
	}
}

// GoTo jumps to page n, clamped to [1, totalPages]. With an empty result set
// the page stays at 1.
func (v *listView[T]) GoTo(n int) {
	total := v.Page().TotalPages
	if n < 1 {
		n = 1
	}
	if total > 0 && n > total {
		n = total
	}
	if total == 0 {
		n = 1
	}
	v.page = n
}

func (v *listView[T]) clampPage(totalPages int) {
	if v.page < 1 {
		v.page = 1
	}
	if totalPages > 0 && v.page > totalPages {
		v.page = totalPages
	}
	if totalPages == 0 {
		v.page = 1
	}
}

// matchAnyField builds a case-insensitive substring predicate over the given
// field extractors.
func matchAnyField[T any](fields ...func(T) string) func(T, string) bool {
	return func(item T, query string) bool {
		needle := strings.ToLower(strings.TrimSpace(query))
		if needle == "" {
			return true
		}
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field(item)), needle) {
				return true
			}
		}
		return false
	}
}
