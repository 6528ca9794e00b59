// Package pager slices an ordered collection into one-item pages for
// inline browsing. Order is caller-defined and must be stable across
// repeated calls for the same input.
package pager

import "errors"

// ErrIndexOutOfRange reports an index outside [1, total]. An out-of-range
// index is a caller bug (stale pagination button, empty collection), not a
// condition to clamp silently.
var ErrIndexOutOfRange = errors.New("pager: page index out of range")

// Page is a single-item window into a collection.
type Page[T any] struct {
	Item    T
	Index   int
	Total   int
	HasPrev bool
	HasNext bool
}

// Paginate returns the page at the 1-based index. Callers must guarantee a
// non-empty collection; with no items every index is out of range.
func Paginate[T any](items []T, index int) (Page[T], error) {
	if index < 1 || index > len(items) {
		return Page[T]{}, ErrIndexOutOfRange
	}
	return Page[T]{
		Item:    items[index-1],
		Index:   index,
		Total:   len(items),
		HasPrev: index > 1,
		HasNext: index < len(items),
	}, nil
}
