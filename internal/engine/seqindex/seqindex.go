package seqindex

import (
	"fmt"

	"go.uber.org/zap"
)

// Index is an ordered sequence of items addressed by rank.
//
// The tower holds the head node of every lane. The head of level 0 is the
// first block of the sequence, and the head of each upper lane references
// the head below it, so every lane starts at rank 0.
type Index[T any] struct {
	tower     []nodeID // one slot per possible level; unused slots are nilNode
	height    int      // first empty tower slot
	length    int      // total item count
	capacity  int      // k
	maxLevels int

	arena   arena[T]
	pool    *blockPool[T]
	leveler Leveler
	logger  *zap.Logger

	// scratch reused by mutations
	mark      bookmark
	graveyard []nodeID
}

// New creates an empty index. A block capacity below MinBlockCapacity is
// raised to MinBlockCapacity; use NewChecked to reject it instead.
func New[T any](opts ...Option) *Index[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.capacity = max(o.capacity, MinBlockCapacity)
	return newIndex[T](o)
}

// NewChecked creates an empty index, rejecting invalid block capacities.
func NewChecked[T any](opts ...Option) (*Index[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.capacity < MinBlockCapacity {
		return nil, fmt.Errorf("block capacity %d: %w", o.capacity, ErrInvalidCapacity)
	}
	return newIndex[T](o), nil
}

func newIndex[T any](o options) *Index[T] {
	x := &Index[T]{
		tower:     make([]nodeID, o.maxLevels),
		capacity:  o.capacity,
		maxLevels: o.maxLevels,
		pool:      newBlockPool[T](o.capacity),
		leveler:   newLeveler(o),
		logger:    o.logger,
		mark: bookmark{
			nodes:  make([]nodeID, o.maxLevels),
			starts: make([]int, o.maxLevels),
		},
	}
	if x.logger == nil {
		x.logger = zap.NewNop()
	}
	x.arena.limit = o.nodeLimit
	for i := range x.tower {
		x.tower[i] = nilNode
	}
	return x
}

// Len returns the total number of items.
func (x *Index[T]) Len() int {
	return x.length
}

// IsEmpty returns true if the index holds no items.
func (x *Index[T]) IsEmpty() bool {
	return x.length == 0
}

// Height returns the number of non-empty lanes.
func (x *Index[T]) Height() int {
	return x.height
}

// BlockCapacity returns k.
func (x *Index[T]) BlockCapacity() int {
	return x.capacity
}

// Destroy releases every block and node. Level 0 is walked once, returning
// blocks to the pool, then each upper lane is walked once without following
// down references. The index is empty and reusable afterwards.
func (x *Index[T]) Destroy() {
	for level := 0; level < x.height; level++ {
		x.destroyLane(x.tower[level])
		x.tower[level] = nilNode
	}
	if x.arena.live != 0 {
		panic(fmt.Sprintf("seqindex: %d nodes unreachable after destroy", x.arena.live))
	}
	x.arena.reset()
	x.height = 0
	x.length = 0
}

// Clear removes all items. It is Destroy under a name that reads better at
// call sites that keep using the index.
func (x *Index[T]) Clear() {
	x.Destroy()
}

// growTower adds a lane above the current top whose head references the
// current top head. The caller has reserved the node.
func (x *Index[T]) growTower() {
	level := x.height
	if level == 0 || level >= x.maxLevels {
		panic("seqindex: tower growth out of range")
	}
	x.tower[level] = x.makeSpine(level, x.tower[level-1])
	x.height++
	x.logger.Debug("tower grown",
		zap.Int("height", x.height),
		zap.Int("length", x.length))
}

// shrinkTower drops top lanes that hold nothing but their head.
func (x *Index[T]) shrinkTower() {
	for x.height > 1 {
		top := x.tower[x.height-1]
		if x.arena.nodes[top].next != nilNode {
			return
		}
		x.arena.release(top)
		x.tower[x.height-1] = nilNode
		x.height--
		x.logger.Debug("tower shrunk",
			zap.Int("height", x.height),
			zap.Int("length", x.length))
	}
}

// checkRange validates a half-open range against the current length.
func (x *Index[T]) checkRange(op string, start, end int) error {
	if start < 0 || start > end || end > x.length {
		return fmt.Errorf("%s [%d, %d) with length %d: %w", op, start, end, x.length, ErrIndexOutOfBounds)
	}
	return nil
}
