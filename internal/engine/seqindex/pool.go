package seqindex

import "sync"

// blockPool recycles blocks of a single capacity.
// Blocks released by Delete and Destroy return here so that insert-heavy
// workloads after a large deletion do not reallocate leaf storage.
type blockPool[T any] struct {
	capacity int
	pool     sync.Pool
}

// newBlockPool creates a pool handing out blocks of the given capacity.
func newBlockPool[T any](capacity int) *blockPool[T] {
	p := &blockPool[T]{capacity: capacity}
	p.pool.New = func() any {
		return newBlock[T](capacity)
	}
	return p
}

// get retrieves an empty block from the pool.
func (p *blockPool[T]) get() *Block[T] {
	b := p.pool.Get().(*Block[T])
	b.items = b.items[:0]
	return b
}

// put returns a block to the pool.
// The block should not be used after calling this method.
func (p *blockPool[T]) put(b *Block[T]) {
	if b == nil || cap(b.items) != p.capacity {
		return
	}
	// Clear references to allow GC of item data
	b.reset()
	p.pool.Put(b)
}
