// Package history provides undo/redo for edits to an ordered sequence.
//
// # Operations
//
// An Operation is one insert or delete together with the items it placed
// or removed, so it can always be inverted:
//
//	op := history.NewDeleteOperation(4, removed)
//	op.Invert() // inserts removed back at rank 4
//
// # History Stack
//
// History keeps bounded undo and redo stacks of operations applied to any
// Target (anything with Insert and Delete):
//
//	h := history.New[rune](1000)
//	h.Execute(history.NewInsertOperation(0, []rune("hi")), idx)
//	h.Undo(idx)
//	h.Redo(idx)
//
// # Grouping
//
// Operations recorded between BeginGroup and EndGroup undo and redo as one
// unit, inverted in reverse order:
//
//	h.BeginGroup("move")
//	// ... several edits ...
//	h.EndGroup()
package history
