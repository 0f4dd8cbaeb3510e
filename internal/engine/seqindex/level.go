package seqindex

import "math/rand/v2"

// Leveler decides how many upper lanes a new level-0 node is promoted into.
// Level returns a value in [0, top].
type Leveler interface {
	Level(top int) int
}

// RandomLeveler promotes a node into each next lane with probability 1/k,
// which keeps expected search depth at O(log_k n) and expected horizontal
// steps per lane near k.
type RandomLeveler struct {
	k   int
	rng *rand.Rand
}

// NewRandomLeveler creates a geometric leveler for block capacity k.
func NewRandomLeveler(k int, seed uint64) *RandomLeveler {
	return &RandomLeveler{
		k:   max(k, MinBlockCapacity),
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Level implements Leveler.
func (l *RandomLeveler) Level(top int) int {
	lvl := 0
	for lvl < top && l.rng.IntN(l.k) == 0 {
		lvl++
	}
	return lvl
}

// DeterministicLeveler promotes every k-th node it is asked about once,
// every k²-th node twice, and so on. Depth bounds are worst case rather than
// expected, but only for append-like workloads; mid-sequence insertions still
// get the same asymptotics on average.
type DeterministicLeveler struct {
	k     uint64
	count uint64
}

// NewDeterministicLeveler creates a counting leveler for block capacity k.
func NewDeterministicLeveler(k int) *DeterministicLeveler {
	return &DeterministicLeveler{k: uint64(max(k, MinBlockCapacity))}
}

// Level implements Leveler.
func (l *DeterministicLeveler) Level(top int) int {
	l.count++
	lvl := 0
	for c := l.count; lvl < top && c%l.k == 0; c /= l.k {
		lvl++
	}
	return lvl
}

// newLeveler builds the leveler selected by opts.
func newLeveler(o options) Leveler {
	if o.leveler != nil {
		return o.leveler
	}
	if o.leveling == LevelingDeterministic {
		return NewDeterministicLeveler(o.capacity)
	}
	seed := o.seed
	if !o.seeded {
		seed = rand.Uint64()
	}
	return NewRandomLeveler(o.capacity, seed)
}

// drawLevels asks the leveler for n promotion heights and returns them with
// the number of spine nodes they imply and the highest level drawn.
func (x *Index[T]) drawLevels(n int) (levels []int, spines, top int) {
	levels = make([]int, n)
	for i := range levels {
		lvl := x.leveler.Level(x.maxLevels - 1)
		lvl = min(max(lvl, 0), x.maxLevels-1)
		levels[i] = lvl
		spines += lvl
		top = max(top, lvl)
	}
	return levels, spines, top
}
