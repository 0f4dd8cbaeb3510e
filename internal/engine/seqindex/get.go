package seqindex

import "fmt"

// Get copies the items in [start, end) into out and returns how many were
// written, which is min(end-start, len(out)). It never allocates and never
// modifies the index.
func (x *Index[T]) Get(start, end int, out []T) (int, error) {
	if err := x.checkRange("get", start, end); err != nil {
		return 0, err
	}
	want := min(end-start, len(out))
	if want == 0 {
		return 0, nil
	}

	cur, off := x.seek(start)
	n := 0
	for n < want {
		if cur == nilNode {
			panic("seqindex: level 0 ended before the requested range")
		}
		n += copy(out[n:want], x.arena.nodes[cur].block.items[off:])
		off = 0
		cur = x.arena.nodes[cur].next
	}
	return n, nil
}

// At returns the item at rank.
func (x *Index[T]) At(rank int) (T, error) {
	var zero T
	if rank < 0 || rank >= x.length {
		return zero, fmt.Errorf("at %d with length %d: %w", rank, x.length, ErrIndexOutOfBounds)
	}
	cur, off := x.seek(rank)
	return x.arena.nodes[cur].block.items[off], nil
}

// Slice returns a copy of the items in [start, end).
func (x *Index[T]) Slice(start, end int) ([]T, error) {
	if err := x.checkRange("slice", start, end); err != nil {
		return nil, err
	}
	out := make([]T, end-start)
	n, err := x.Get(start, end, out)
	return out[:n], err
}

// Items returns a copy of the whole sequence. Use sparingly for large
// indexes.
func (x *Index[T]) Items() []T {
	out, _ := x.Slice(0, x.length)
	return out
}
