package seqindex

// nodeID addresses a node in the arena.
type nodeID int32

// nilNode marks an absent reference.
const nilNode nodeID = -1

// node is an element of a lane.
//
// Exactly one of down and block is set: level-0 nodes own a block, nodes
// above level 0 reference a node in the lane below. The weight is the item
// count of the predecessor's span in the same lane, so a forward walk adds
// a node's weight before stepping into it.
type node[T any] struct {
	next   nodeID
	down   nodeID
	block  *Block[T]
	weight int
	level  uint8
	dead   bool
}

// arena stores nodes by index and recycles freed slots.
type arena[T any] struct {
	nodes []node[T]
	free  []nodeID
	live  int
	limit int // 0 means unlimited
}

// reserve reports whether n more nodes fit in the budget.
func (a *arena[T]) reserve(n int) error {
	if a.limit > 0 && a.live+n > a.limit {
		return ErrOutOfMemory
	}
	return nil
}

// alloc returns a fresh node at the given level.
// Any pointer into the arena is invalid after alloc.
func (a *arena[T]) alloc(level int) nodeID {
	var id nodeID
	if n := len(a.free); n > 0 {
		id = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		id = nodeID(len(a.nodes))
		a.nodes = append(a.nodes, node[T]{})
	}
	a.nodes[id] = node[T]{
		next:  nilNode,
		down:  nilNode,
		level: uint8(level),
	}
	a.live++
	return id
}

// release frees a node slot. It never follows down or block references.
func (a *arena[T]) release(id nodeID) {
	a.nodes[id] = node[T]{next: nilNode, down: nilNode, dead: true}
	a.free = append(a.free, id)
	a.live--
}

// reset drops every node.
func (a *arena[T]) reset() {
	clear(a.nodes)
	a.nodes = a.nodes[:0]
	a.free = a.free[:0]
	a.live = 0
}

// makeLeaf wraps an owned block as a new level-0 node.
func (x *Index[T]) makeLeaf(b *Block[T]) nodeID {
	id := x.arena.alloc(0)
	x.arena.nodes[id].block = b
	return id
}

// makeSpine creates a node at level referencing below.
func (x *Index[T]) makeSpine(level int, below nodeID) nodeID {
	id := x.arena.alloc(level)
	x.arena.nodes[id].down = below
	return id
}

// link makes succ follow id and records span, the item count of id's span,
// as succ's weight. Every change of a next reference goes through here so
// that the weight can never lag behind the topology.
func (x *Index[T]) link(id, succ nodeID, span int) {
	x.arena.nodes[id].next = succ
	if succ != nilNode {
		x.arena.nodes[succ].weight = span
	}
}

// linkLeaf is link for level-0 nodes, whose span is their block's count.
func (x *Index[T]) linkLeaf(id, succ nodeID) {
	x.link(id, succ, x.arena.nodes[id].block.Len())
}

// leavesFor returns the number of blocks fromSlice builds for n items.
func (x *Index[T]) leavesFor(n int) int {
	return (n + x.capacity - 1) / x.capacity
}

// fromSlice builds a chain of level-0 nodes holding data and continuing
// into tail. The chain is built back to front so each link has its successor
// in place; every block is full except the front one, which holds the
// len(data) mod k remainder. It returns the new head and the node count.
func (x *Index[T]) fromSlice(data []T, tail nodeID) (nodeID, int) {
	head := tail
	count := 0
	for end := len(data); end > 0; {
		start := max(end-x.capacity, 0)

		b := x.pool.get()
		b.Write(data[start:end])
		id := x.makeLeaf(b)
		x.linkLeaf(id, head)

		head = id
		count++
		end = start
	}
	return head, count
}

// destroyLane frees every node of a lane front to back. Level-0 nodes
// hand their blocks back to the pool; down references are never followed.
func (x *Index[T]) destroyLane(head nodeID) {
	for id := head; id != nilNode; {
		n := &x.arena.nodes[id]
		next := n.next
		if n.block != nil {
			x.pool.put(n.block)
		}
		x.arena.release(id)
		id = next
	}
}

// kill marks an unlinked node for release at the end of a deletion.
// Upper lanes are repaired before bury runs and recognise references to it.
func (x *Index[T]) kill(id nodeID) {
	x.arena.nodes[id].dead = true
	x.graveyard = append(x.graveyard, id)
}

// bury releases every killed node.
func (x *Index[T]) bury() {
	for _, id := range x.graveyard {
		if b := x.arena.nodes[id].block; b != nil {
			x.pool.put(b)
		}
		x.arena.release(id)
	}
	clear(x.graveyard)
	x.graveyard = x.graveyard[:0]
}
