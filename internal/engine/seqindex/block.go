package seqindex

import "slices"

// Block is fixed-capacity leaf storage. It is the only place item data lives.
// A block is owned by exactly one level-0 node.
type Block[T any] struct {
	items []T // len is the item count, cap is the block capacity
}

// newBlock allocates an empty block with room for capacity items.
func newBlock[T any](capacity int) *Block[T] {
	return &Block[T]{items: make([]T, 0, capacity)}
}

// Len returns the number of items in the block.
func (b *Block[T]) Len() int {
	return len(b.items)
}

// Cap returns the block capacity.
func (b *Block[T]) Cap() int {
	return cap(b.items)
}

// Free returns the remaining capacity.
func (b *Block[T]) Free() int {
	return cap(b.items) - len(b.items)
}

// Items returns the block contents. The slice aliases the block.
func (b *Block[T]) Items() []T {
	return b.items
}

// Write appends as many leading elements of data as fit and returns the
// number written. The caller resubmits the remainder elsewhere.
func (b *Block[T]) Write(data []T) int {
	n := min(b.Free(), len(data))
	b.items = append(b.items, data[:n]...)
	return n
}

// Split truncates the block at offset at and returns a copy of the tail.
func (b *Block[T]) Split(at int) []T {
	if at >= len(b.items) {
		return nil
	}
	tail := make([]T, len(b.items)-at)
	copy(tail, b.items[at:])
	clear(b.items[at:])
	b.items = b.items[:at]
	return tail
}

// insertAt places data at offset off. The caller guarantees it fits.
func (b *Block[T]) insertAt(off int, data []T) {
	if len(b.items)+len(data) > cap(b.items) {
		panic("seqindex: block overflow on insert")
	}
	b.items = slices.Insert(b.items, off, data...)
}

// removeRange drops items [from, to).
func (b *Block[T]) removeRange(from, to int) {
	b.items = slices.Delete(b.items, from, to)
}

// absorb appends all of other's items. The caller guarantees they fit.
func (b *Block[T]) absorb(other *Block[T]) {
	if len(b.items)+len(other.items) > cap(b.items) {
		panic("seqindex: block overflow on merge")
	}
	b.items = append(b.items, other.items...)
}

// reset empties the block, releasing item references.
func (b *Block[T]) reset() {
	clear(b.items)
	b.items = b.items[:0]
}
