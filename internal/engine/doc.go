// Package engine provides a thread-safe sequence engine built on the
// seqindex order-statistics index.
//
// The engine is the facade that combines the index with undo/redo history,
// snapshots and logging.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - seqindex: block-backed multi-lane skip list addressed by rank
//   - history: undo/redo stacks of insert and delete operations
//   - snapshot: checksummed msgpack encoding of the item sequence
//
// # Thread Safety
//
// All Engine operations are thread-safe. The engine uses a read-write mutex
// to allow concurrent reads while serializing writes.
//
// # Basic Usage
//
//	e, err := engine.New[rune](engine.WithContent([]rune("Hello, World!")))
//	if err != nil {
//		return err
//	}
//
//	e.Replace(7, 12, []rune("Go")) // "Hello, Go!"
//	e.Undo()                       // "Hello, World!"
//
// # Undo Groups
//
// Edits between BeginGroup and EndGroup undo as one unit:
//
//	e.BeginGroup("swap")
//	e.Delete(0, 3)
//	e.Insert(5, moved)
//	e.EndGroup()
//
// # Snapshots
//
// Snapshot writes the whole sequence to an io.Writer; Restore replaces the
// contents from such a stream and clears history:
//
//	var buf bytes.Buffer
//	e.Snapshot(&buf)
//	e.Restore(&buf)
package engine
