package seqindex

import (
	"fmt"
	"slices"
)

// Insert places items so that the item previously at rank at, if any,
// follows them. Inserting at Len() appends.
//
// When the located block has room the items are written in place and only
// the weights above it change. Otherwise the block's items and the incoming
// ones are redistributed over the block and new blocks chained behind it,
// and each new block is promoted into upper lanes by the leveler. The node budget is checked
// before anything is modified, so ErrOutOfMemory leaves the index intact.
func (x *Index[T]) Insert(at int, items []T) error {
	if at < 0 || at > x.length {
		return fmt.Errorf("insert at %d with length %d: %w", at, x.length, ErrIndexOutOfBounds)
	}
	if len(items) == 0 {
		return nil
	}
	if x.height == 0 {
		return x.insertEmpty(items)
	}

	delta := len(items)
	off := x.locate(at, &x.mark, true)
	leaf := x.mark.nodes[0]
	blk := x.arena.nodes[leaf].block

	if blk.Len()+delta <= x.capacity {
		blk.insertAt(off, items)
		x.linkLeaf(leaf, x.arena.nodes[leaf].next)
		x.raise(nil, nil, nil, delta)
		x.length += delta
		return nil
	}

	// The block keeps the first keep items of the combined run and the rest
	// moves into new blocks. A run that fits in two blocks is halved so
	// neither side ends up below half full.
	total := blk.Len() + delta
	keep := x.capacity
	if total <= 2*x.capacity {
		keep = (total + 1) / 2
	}
	spill := total - keep
	leaves := x.leavesFor(spill)
	levels, spines, top := x.drawLevels(leaves)
	growth := max(0, top+1-x.height)
	if err := x.arena.reserve(leaves + spines + growth); err != nil {
		return fmt.Errorf("insert %d items at %d: %w", delta, at, err)
	}

	run := slices.Insert(blk.Split(0), off, items...)
	blk.Write(run[:keep])
	rest := run[keep:]

	head, n := x.fromSlice(rest, x.arena.nodes[leaf].next)
	if n != leaves {
		panic(fmt.Sprintf("seqindex: built %d leaves, reserved %d", n, leaves))
	}
	x.linkLeaf(leaf, head)

	x.length += delta
	cols, starts := x.columns(head, n, x.mark.starts[0]+blk.Len())
	x.raise(cols, starts, levels, delta)
	return nil
}

// insertEmpty builds the first lane from items.
func (x *Index[T]) insertEmpty(items []T) error {
	leaves := x.leavesFor(len(items))
	// The head column is the permanent left edge of every lane; only the
	// blocks after it draw levels.
	levels, spines, top := x.drawLevels(leaves - 1)
	if err := x.arena.reserve(leaves + spines + top); err != nil {
		return fmt.Errorf("insert %d items into empty index: %w", len(items), err)
	}

	head, _ := x.fromSlice(items, nilNode)
	x.tower[0] = head
	x.height = 1
	x.length = len(items)
	x.mark.nodes[0] = head
	x.mark.starts[0] = 0

	first := x.arena.nodes[head].next
	cols, starts := x.columns(first, leaves-1, x.arena.nodes[head].block.Len())
	x.raise(cols, starts, levels, 0)
	return nil
}

// Append adds items at the end of the sequence.
func (x *Index[T]) Append(items []T) error {
	return x.Insert(x.length, items)
}

// Replace substitutes items for the range [start, end). The new items are
// inserted before the old range is removed, so a failed insertion leaves
// the index unchanged and the removal itself cannot fail.
func (x *Index[T]) Replace(start, end int, items []T) error {
	if err := x.checkRange("replace", start, end); err != nil {
		return err
	}
	if err := x.Insert(end, items); err != nil {
		return err
	}
	return x.Delete(start, end)
}

// columns lists n consecutive level-0 nodes from first together with the
// rank at which each starts.
func (x *Index[T]) columns(first nodeID, n, start int) ([]nodeID, []int) {
	cols := make([]nodeID, n)
	starts := make([]int, n)
	id := first
	for i := range n {
		cols[i] = id
		starts[i] = start
		start += x.arena.nodes[id].block.Len()
		id = x.arena.nodes[id].next
	}
	return cols, starts
}

// raise splices promoted columns into the upper lanes and widens the
// bookmarked spans by delta items.
//
// cols holds level-0 nodes that were inserted directly after the bookmarked
// level-0 node, starts their ranks after the insertion and levels the height
// each column reaches. For every lane the new spine nodes go right after the
// bookmarked node: it is the last node starting before the insertion point,
// and the node that followed it starts after every new column.
func (x *Index[T]) raise(cols []nodeID, starts []int, levels []int, delta int) {
	top := 0
	for _, lvl := range levels {
		top = max(top, lvl)
	}
	for x.height <= top {
		x.growTower()
		x.mark.nodes[x.height-1] = x.tower[x.height-1]
		x.mark.starts[x.height-1] = 0
	}

	for level := 1; level < x.height; level++ {
		prev := x.mark.nodes[level]
		prevStart := x.mark.starts[level]
		after := x.arena.nodes[prev].next
		afterStart := 0
		if after != nilNode {
			afterStart = prevStart + x.arena.nodes[after].weight + delta
		}

		for i := range cols {
			if levels[i] < level {
				continue
			}
			c := x.makeSpine(level, cols[i])
			x.link(prev, c, starts[i]-prevStart)
			cols[i] = c
			prev, prevStart = c, starts[i]
		}
		x.link(prev, after, afterStart-prevStart)
	}
}
