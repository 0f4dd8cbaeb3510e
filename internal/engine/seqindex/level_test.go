package seqindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterministicLeveler(t *testing.T) {
	l := NewDeterministicLeveler(3)
	var got []int
	for i := 0; i < 27; i++ {
		got = append(got, l.Level(10))
	}
	want := []int{
		0, 0, 1, 0, 0, 1, 0, 0, 2,
		0, 0, 1, 0, 0, 1, 0, 0, 2,
		0, 0, 1, 0, 0, 1, 0, 0, 3,
	}
	assert.Equal(t, want, got)
}

func TestDeterministicLevelerCapped(t *testing.T) {
	l := NewDeterministicLeveler(2)
	top := 0
	for i := 0; i < 1024; i++ {
		top = max(top, l.Level(3))
	}
	assert.Equal(t, 3, top)
}

func TestRandomLevelerDistribution(t *testing.T) {
	const k, draws = 4, 40000
	l := NewRandomLeveler(k, 12345)
	promoted := 0
	for i := 0; i < draws; i++ {
		lvl := l.Level(20)
		assert.GreaterOrEqual(t, lvl, 0)
		assert.LessOrEqual(t, lvl, 20)
		if lvl > 0 {
			promoted++
		}
	}
	// Expect draws/k promotions; allow a generous margin.
	assert.InDelta(t, draws/k, promoted, draws/k/5)
}

func TestRandomLevelerSeeded(t *testing.T) {
	a := NewRandomLeveler(8, 77)
	b := NewRandomLeveler(8, 77)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Level(10), b.Level(10))
	}
}

type fixedLeveler int

func (f fixedLeveler) Level(top int) int { return min(int(f), top) }

func TestCustomLevelerIsClamped(t *testing.T) {
	x := New[int](WithBlockCapacity(2), WithMaxLevels(4), WithLeveler(fixedLeveler(10)))
	assert.NoError(t, x.Insert(0, make([]int, 20)))
	assert.NoError(t, x.Check())
	assert.Equal(t, 4, x.Height())
}
