// Package hashvec provides HashVec, a keyed container whose items live in a
// slice that can be kept in ascending order.
//
// Lookups by key are O(1) through a position index. Items can be appended with
// Insert, which leaves the order alone, or placed with InsertOrdered, which
// keeps the backing slice sorted by the container's comparison function.
// Mixing the two modes on one HashVec is allowed, but only InsertOrdered (or an
// explicit Sort) restores ascending order afterwards.
package hashvec

import (
	"cmp"
	"iter"
	"slices"
)

type entry[K comparable, T any] struct {
	key  K
	item T
}

// HashVec maps keys to items stored in a slice.
// The zero value is not usable; create instances with New or NewOrdered.
type HashVec[K comparable, T any] struct {
	index   map[K]int // key -> position in entries
	entries []entry[K, T]
	compare func(a, b T) int
}

// New creates an empty HashVec ordered by compare. compare follows the
// cmp.Compare convention and also defines item equality (compare(a, b) == 0).
func New[K comparable, T any](compare func(a, b T) int) *HashVec[K, T] {
	return &HashVec[K, T]{
		index:   make(map[K]int),
		compare: compare,
	}
}

// NewOrdered creates an empty HashVec using the natural ordering of T.
func NewOrdered[K comparable, T cmp.Ordered]() *HashVec[K, T] {
	return New[K, T](cmp.Compare[T])
}

// Len returns the number of stored items.
func (h *HashVec[K, T]) Len() int {
	return len(h.entries)
}

// Insert stores item under key without touching the order of the slice.
// An existing item is overwritten in place only when it differs from item.
// It returns the item's position.
func (h *HashVec[K, T]) Insert(key K, item T) int {
	if i, ok := h.index[key]; ok {
		h.replace(i, item)
		return i
	}
	h.entries = append(h.entries, entry[K, T]{key: key, item: item})
	i := len(h.entries) - 1
	h.index[key] = i
	return i
}

// InsertOrdered stores item under key and keeps the slice in ascending order.
// If the slice is unsorted it is sorted first, so positions returned by
// earlier calls are no longer valid. An existing key whose item compares
// equal to the new one keeps its position; otherwise the old entry is removed
// and the new item placed like a fresh one. A new item goes before the first
// stored item that is not less than it.
func (h *HashVec[K, T]) InsertOrdered(key K, item T) int {
	if !h.IsSorted() {
		h.Sort()
	}
	if i, ok := h.index[key]; ok {
		if h.compare(h.entries[i].item, item) == 0 {
			return i
		}
		h.entries = slices.Delete(h.entries, i, i+1)
		delete(h.index, key)
		h.reindex(i)
	}

	i := slices.IndexFunc(h.entries, func(e entry[K, T]) bool {
		return h.compare(e.item, item) >= 0
	})
	if i < 0 {
		i = len(h.entries)
	}
	h.entries = slices.Insert(h.entries, i, entry[K, T]{key: key, item: item})
	h.reindex(i)
	return i
}

// IsSorted reports whether the slice is in ascending order.
func (h *HashVec[K, T]) IsSorted() bool {
	return slices.IsSortedFunc(h.entries, h.compareEntries)
}

// Sort puts the slice in ascending order and rebuilds the key index.
// Items that compare equal keep their relative order.
func (h *HashVec[K, T]) Sort() {
	slices.SortStableFunc(h.entries, h.compareEntries)
	h.reindex(0)
}

// Contains reports whether key is present.
func (h *HashVec[K, T]) Contains(key K) bool {
	_, ok := h.index[key]
	return ok
}

// Get returns the item stored under key.
func (h *HashVec[K, T]) Get(key K) (T, bool) {
	i, ok := h.index[key]
	if !ok {
		var zero T
		return zero, false
	}
	return h.entries[i].item, true
}

// GetMut returns a pointer to the item stored under key. The pointer is
// invalidated by the next insert or sort.
func (h *HashVec[K, T]) GetMut(key K) (*T, bool) {
	i, ok := h.index[key]
	if !ok {
		return nil, false
	}
	return &h.entries[i].item, true
}

// Position returns the current position of key in the slice.
func (h *HashVec[K, T]) Position(key K) (int, bool) {
	i, ok := h.index[key]
	return i, ok
}

// GetIndex returns the item at position i. Out-of-range positions report false.
func (h *HashVec[K, T]) GetIndex(i int) (T, bool) {
	if i < 0 || i >= len(h.entries) {
		var zero T
		return zero, false
	}
	return h.entries[i].item, true
}

// GetIndexMut returns a pointer to the item at position i. The pointer is
// invalidated by the next insert or sort.
func (h *HashVec[K, T]) GetIndexMut(i int) (*T, bool) {
	if i < 0 || i >= len(h.entries) {
		return nil, false
	}
	return &h.entries[i].item, true
}

// KeyAt returns the key of the item at position i.
func (h *HashVec[K, T]) KeyAt(i int) (K, bool) {
	if i < 0 || i >= len(h.entries) {
		var zero K
		return zero, false
	}
	return h.entries[i].key, true
}

// All iterates positions and items in slice order.
func (h *HashVec[K, T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := range h.entries {
			if !yield(i, h.entries[i].item) {
				return
			}
		}
	}
}

// AllMut iterates positions and item pointers in slice order. The loop body
// must not insert into or sort the HashVec.
func (h *HashVec[K, T]) AllMut() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := range h.entries {
			if !yield(i, &h.entries[i].item) {
				return
			}
		}
	}
}

// Items returns a copy of the items in slice order.
func (h *HashVec[K, T]) Items() []T {
	items := make([]T, len(h.entries))
	for i, e := range h.entries {
		items[i] = e.item
	}
	return items
}

func (h *HashVec[K, T]) replace(i int, item T) {
	if h.compare(h.entries[i].item, item) != 0 {
		h.entries[i].item = item
	}
}

// reindex refreshes the stored positions of every entry from position from on.
func (h *HashVec[K, T]) reindex(from int) {
	for i := from; i < len(h.entries); i++ {
		h.index[h.entries[i].key] = i
	}
}

func (h *HashVec[K, T]) compareEntries(a, b entry[K, T]) int {
	return h.compare(a.item, b.item)
}
