package seqindex

import "iter"

// Iterator walks items forward from a starting rank.
// The behaviour is unspecified if the index is mutated during iteration.
type Iterator[T any] struct {
	x       *Index[T]
	cur     nodeID
	off     int
	rank    int
	end     int
	item    T
	started bool
}

// Iter returns an iterator positioned before the item at start.
// Out-of-range starts are clamped to [0, Len()].
func (x *Index[T]) Iter(start int) *Iterator[T] {
	return x.iterRange(start, x.length)
}

func (x *Index[T]) iterRange(start, end int) *Iterator[T] {
	end = min(max(end, 0), x.length)
	start = min(max(start, 0), end)
	it := &Iterator[T]{x: x, cur: nilNode, rank: start, end: end}
	if start < end {
		it.cur, it.off = x.seek(start)
	}
	return it
}

// Next advances to the next item.
// Returns true if there is an item, false if iteration is complete.
func (it *Iterator[T]) Next() bool {
	if it.started {
		it.rank++
		it.off++
	}
	it.started = true
	if it.rank >= it.end || it.cur == nilNode {
		it.cur = nilNode
		return false
	}
	nodes := it.x.arena.nodes
	for it.off >= nodes[it.cur].block.Len() {
		it.cur = nodes[it.cur].next
		it.off = 0
		if it.cur == nilNode {
			return false
		}
	}
	it.item = nodes[it.cur].block.items[it.off]
	return true
}

// Item returns the current item.
func (it *Iterator[T]) Item() T {
	return it.item
}

// Rank returns the rank of the current item.
func (it *Iterator[T]) Rank() int {
	return it.rank
}

// All yields every item with its rank.
func (x *Index[T]) All() iter.Seq2[int, T] {
	return x.Range(0, x.length)
}

// Range yields the items in [start, end) with their ranks.
// Out-of-range bounds are clamped.
func (x *Index[T]) Range(start, end int) iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		it := x.iterRange(start, end)
		for it.Next() {
			if !yield(it.Rank(), it.Item()) {
				return
			}
		}
	}
}

// Blocks yields the contents of each level-0 block in order. The slices
// alias the index and must not be modified or retained across mutations.
func (x *Index[T]) Blocks() iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		if x.height == 0 {
			return
		}
		for id := x.tower[0]; id != nilNode; id = x.arena.nodes[id].next {
			if !yield(x.arena.nodes[id].block.items) {
				return
			}
		}
	}
}
