package seqindex

import "fmt"

// bookmark is the per-level trail left by locate: for each level below the
// tower height, the node the descent dropped from and the rank at which that
// node's span starts.
type bookmark struct {
	nodes  []nodeID
	starts []int
}

// Position describes where a rank falls in level 0.
type Position struct {
	Rank   int // the rank that was located
	Block  int // ordinal of the level-0 block, counting from 0
	Start  int // rank of the first item in that block
	Offset int // Rank - Start
}

// locate descends the tower from the top lane to level 0, filling bm, and
// returns the offset of rank inside the located level-0 block.
//
// At every level the walk prefers a horizontal step: it follows next while
// the next node's span starts at or before rank. With leftBias the walk stops
// before a node starting exactly at rank, so for rank > 0 the located block
// contains rank-1 and the offset is in [1, count]. Mutations use that form
// because it never needs a level-0 predecessor.
func (x *Index[T]) locate(rank int, bm *bookmark, leftBias bool) int {
	nodes := x.arena.nodes
	cur := x.tower[x.height-1]
	seen := 0
	for level := x.height - 1; ; level-- {
		for {
			next := nodes[cur].next
			if next == nilNode {
				break
			}
			at := seen + nodes[next].weight
			if at > rank || (leftBias && at == rank) {
				break
			}
			seen = at
			cur = next
		}
		bm.nodes[level] = cur
		bm.starts[level] = seen
		if level == 0 {
			break
		}
		cur = nodes[cur].down
		if cur == nilNode || int(nodes[cur].level) != level-1 {
			panic(fmt.Sprintf("seqindex: broken spine at level %d", level))
		}
	}

	off := rank - seen
	if b := nodes[cur].block; b == nil || off < 0 || off > b.Len() {
		panic(fmt.Sprintf("seqindex: rank %d resolved outside its block", rank))
	}
	return off
}

// seek is locate without a bookmark. It never allocates.
func (x *Index[T]) seek(rank int) (nodeID, int) {
	nodes := x.arena.nodes
	cur := x.tower[x.height-1]
	seen := 0
	for {
		for {
			next := nodes[cur].next
			if next == nilNode || seen+nodes[next].weight > rank {
				break
			}
			seen += nodes[next].weight
			cur = next
		}
		if nodes[cur].level == 0 {
			return cur, rank - seen
		}
		cur = nodes[cur].down
	}
}

// Locate reports the level-0 block holding rank. A rank equal to Len()
// resolves to the end of the last block. The descent is expected O(log n);
// computing the block ordinal walks level 0, so this is meant for
// diagnostics and tests rather than hot paths. Locate only reads the
// index, so concurrent calls are safe while nothing mutates it.
func (x *Index[T]) Locate(rank int) (Position, error) {
	if rank < 0 || rank > x.length {
		return Position{}, fmt.Errorf("locate %d with length %d: %w", rank, x.length, ErrIndexOutOfBounds)
	}
	if x.height == 0 {
		return Position{Rank: rank}, nil
	}
	leaf, off := x.seek(rank)

	ordinal := 0
	for id := x.tower[0]; id != leaf; id = x.arena.nodes[id].next {
		ordinal++
	}
	return Position{
		Rank:   rank,
		Block:  ordinal,
		Start:  rank - off,
		Offset: off,
	}, nil
}
