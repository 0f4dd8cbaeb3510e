package seqindex

import "fmt"

// Stats summarises the shape of an index.
type Stats struct {
	Length        int     // total items
	Height        int     // non-empty lanes
	BlockCapacity int     // k
	Blocks        int     // level-0 nodes
	Nodes         int     // live nodes across all lanes
	LaneSizes     []int   // nodes per lane, level 0 first
	Fill          float64 // Length / (Blocks * k)
	MinBlock      int     // smallest block count
	MaxBlock      int     // largest block count
}

// Stats walks every lane and reports its size.
func (x *Index[T]) Stats() Stats {
	s := Stats{
		Length:        x.length,
		Height:        x.height,
		BlockCapacity: x.capacity,
		Nodes:         x.arena.live,
		LaneSizes:     make([]int, x.height),
	}
	for level := 0; level < x.height; level++ {
		for id := x.tower[level]; id != nilNode; id = x.arena.nodes[id].next {
			s.LaneSizes[level]++
			if level != 0 {
				continue
			}
			c := x.arena.nodes[id].block.Len()
			if s.Blocks == 0 || c < s.MinBlock {
				s.MinBlock = c
			}
			s.MaxBlock = max(s.MaxBlock, c)
			s.Blocks++
		}
	}
	if s.Blocks > 0 {
		s.Fill = float64(s.Length) / float64(s.Blocks*x.capacity)
	}
	return s
}

// Check verifies every structural invariant and returns the first violation
// found. It walks the whole structure and is meant for tests and debugging.
func (x *Index[T]) Check() error {
	if x.height == 0 {
		if x.length != 0 {
			return fmt.Errorf("empty tower holds length %d", x.length)
		}
		if x.arena.live != 0 {
			return fmt.Errorf("empty tower holds %d live nodes", x.arena.live)
		}
		return nil
	}

	// starts maps every node of the level just verified to its rank.
	starts := make(map[nodeID]int)
	seen := 0
	total := 0
	var prev nodeID = nilNode
	for id := x.tower[0]; id != nilNode; id = x.arena.nodes[id].next {
		n := x.arena.nodes[id]
		switch {
		case n.dead:
			return fmt.Errorf("level 0 reaches released node %d", id)
		case n.level != 0 || n.block == nil || n.down != nilNode:
			return fmt.Errorf("level 0 node %d is not a leaf", id)
		case n.block.Len() == 0:
			return fmt.Errorf("level 0 node %d holds an empty block", id)
		case n.block.Len() > x.capacity || n.block.Cap() != x.capacity:
			return fmt.Errorf("level 0 node %d holds %d/%d items", id, n.block.Len(), n.block.Cap())
		}
		if prev != nilNode && n.weight != x.arena.nodes[prev].block.Len() {
			return fmt.Errorf("level 0 node %d weight %d, predecessor holds %d", id, n.weight, x.arena.nodes[prev].block.Len())
		}
		starts[id] = seen
		seen += n.block.Len()
		total++
		prev = id
	}
	if seen != x.length {
		return fmt.Errorf("blocks hold %d items, length is %d", seen, x.length)
	}

	for level := 1; level < x.height; level++ {
		head := x.tower[level]
		if head == nilNode {
			return fmt.Errorf("tower slot %d empty below height %d", level, x.height)
		}
		if x.arena.nodes[head].down != x.tower[level-1] {
			return fmt.Errorf("lane %d head does not stand on lane %d head", level, level-1)
		}
		next := make(map[nodeID]int)
		last := -1
		prev = nilNode
		for id := head; id != nilNode; id = x.arena.nodes[id].next {
			n := x.arena.nodes[id]
			if n.dead || int(n.level) != level || n.block != nil {
				return fmt.Errorf("lane %d node %d is malformed", level, id)
			}
			at, ok := starts[n.down]
			if !ok {
				return fmt.Errorf("lane %d node %d stands on a node outside lane %d", level, id, level-1)
			}
			if at <= last {
				return fmt.Errorf("lane %d node %d out of order", level, id)
			}
			if prev != nilNode && n.weight != at-last {
				return fmt.Errorf("lane %d node %d weight %d, span is %d", level, id, n.weight, at-last)
			}
			next[id] = at
			last = at
			prev = id
			total++
		}
		if level == x.height-1 && prev == head {
			return fmt.Errorf("top lane %d holds only its head", level)
		}
		starts = next
	}

	for level := x.height; level < len(x.tower); level++ {
		if x.tower[level] != nilNode {
			return fmt.Errorf("tower slot %d set above height %d", level, x.height)
		}
	}
	if total != x.arena.live {
		return fmt.Errorf("%d nodes reachable, %d live", total, x.arena.live)
	}
	return nil
}
