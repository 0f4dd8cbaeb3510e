package seqindex

// Delete removes the items in [start, end). Deleting an empty range is a
// no-op.
//
// Blocks fully covered by the range are unlinked; the blocks at either edge
// are trimmed. An edge block left below half full is merged with its
// successor when the two fit in one block. Spine nodes standing on a
// removed block are removed with it, and the spans of the surviving nodes
// around the range are recomputed lane by lane.
func (x *Index[T]) Delete(start, end int) error {
	if err := x.checkRange("delete", start, end); err != nil {
		return err
	}
	if start == end {
		return nil
	}
	if start == 0 && end == x.length {
		x.Destroy()
		return nil
	}

	n := end - start
	off := x.locate(start, &x.mark, true)
	first := x.mark.nodes[0]
	blk := x.arena.nodes[first].block

	// Ranks below are in pre-deletion coordinates. limit is the start of
	// the furthest level-0 node that was removed or modified; spans of
	// nodes starting after it only shift.
	limit := x.mark.starts[0]
	pos := limit + blk.Len()

	take := min(blk.Len()-off, n)
	blk.removeRange(off, off+take)
	remaining := n - take

	trimmed := nilNode
	trimmedStart := 0
	cur := x.arena.nodes[first].next
	for remaining > 0 {
		if cur == nilNode {
			panic("seqindex: delete ran past the last block")
		}
		cb := x.arena.nodes[cur].block
		limit = pos
		if cb.Len() <= remaining {
			remaining -= cb.Len()
			pos += cb.Len()
			next := x.arena.nodes[cur].next
			x.arena.nodes[first].next = next
			x.kill(cur)
			cur = next
			continue
		}
		trimmed, trimmedStart = cur, pos
		pos += cb.Len()
		cb.removeRange(0, remaining)
		remaining = 0
	}
	// pos is now the start of the first untouched level-0 node.

	half := x.capacity / 2
	fits := func(a, b nodeID) bool {
		la := x.arena.nodes[a].block.Len()
		lb := x.arena.nodes[b].block.Len()
		return la+lb <= x.capacity && (la < half || lb < half)
	}
	absorbNext := func(id nodeID) (nodeID, bool) {
		next := x.arena.nodes[id].next
		if next == nilNode {
			return nilNode, false
		}
		if x.arena.nodes[id].block.Len() > 0 && !fits(id, next) {
			return nilNode, false
		}
		x.arena.nodes[id].block.absorb(x.arena.nodes[next].block)
		x.arena.nodes[id].next = x.arena.nodes[next].next
		x.kill(next)
		return next, true
	}

	// The first block is only emptied when start is 0; it is the head of
	// level 0 and must stay, so it takes over its successor's items.
	// Otherwise it keeps at least one item and may merge when underfilled.
	if merged, ok := absorbNext(first); ok {
		if merged == trimmed {
			limit = max(limit, trimmedStart)
			trimmed = nilNode
		} else {
			limit = max(limit, pos)
		}
	}
	if trimmed != nilNode {
		if _, ok := absorbNext(trimmed); ok {
			limit = max(limit, pos)
		}
	}
	if blk.Len() == 0 {
		panic("seqindex: head block left empty")
	}

	x.linkLeaf(first, x.arena.nodes[first].next)
	if trimmed != nilNode {
		x.linkLeaf(trimmed, x.arena.nodes[trimmed].next)
	}

	for level := 1; level < x.height; level++ {
		x.repairLane(level, start, end, limit)
	}
	x.length -= n
	x.bury()
	x.shrinkTower()
	return nil
}

// repairLane removes spine nodes standing on killed nodes of the lane below
// and recomputes the spans between the bookmarked node and the first
// survivor starting after limit.
func (x *Index[T]) repairLane(level, start, end, limit int) {
	n := end - start
	shift := func(p int) int {
		switch {
		case p <= start:
			return p
		case p <= end:
			return start
		default:
			return p - n
		}
	}

	prev := x.mark.nodes[level]
	prevStart := x.mark.starts[level]
	pos := prevStart
	for cur := x.arena.nodes[prev].next; cur != nilNode; {
		pos += x.arena.nodes[cur].weight
		next := x.arena.nodes[cur].next
		if x.arena.nodes[x.arena.nodes[cur].down].dead {
			x.arena.nodes[prev].next = next
			x.kill(cur)
			cur = next
			continue
		}
		x.link(prev, cur, shift(pos)-shift(prevStart))
		if pos > limit {
			return
		}
		prev, prevStart = cur, pos
		cur = next
	}
}
