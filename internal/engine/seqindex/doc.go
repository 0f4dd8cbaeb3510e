// Package seqindex provides an order-statistics sequence index: an ordered
// sequence of items supporting insertion, deletion and ranged reads by rank
// in expected logarithmic time.
//
// Items live in fixed-capacity blocks rather than single-item nodes. Each
// block is owned by one node of the bottom lane (level 0), and sparser lanes
// are layered above it. A node above level 0 is a spine node: it references a
// node one level below and records, on its successor, how many items the
// lane skips over when following its next link. Summing those weights while
// walking forward yields a running rank, which is what makes lookup by rank
// logarithmic.
//
// Key properties:
//   - Insert, Delete and Get locate their target by descending the tower of
//     lanes from the top level to level 0
//   - Blocks are kept between half full and full in steady state; deletions
//     merge underfilled neighbours
//   - Nodes live in an arena and reference each other by index, so spine
//     references never own what they point at
//   - Promotion into upper lanes is geometric with probability 1/k by default,
//     or deterministic (every k-th node) when requested
//
// Basic usage:
//
//	idx := seqindex.New[byte](seqindex.WithBlockCapacity(64))
//	_ = idx.Insert(0, []byte("hello world"))
//	_ = idx.Delete(5, 11)            // "hello"
//	buf := make([]byte, idx.Len())
//	n, _ := idx.Get(0, idx.Len(), buf)
//
// An Index is not safe for concurrent use. Mutations need exclusive access;
// reads only need the absence of concurrent mutation. The engine package
// wraps an Index with locking for callers that need it.
package seqindex
