package history

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxEntries is used when a non-positive limit is given.
const DefaultMaxEntries = 1000

// undoEntry is one undo unit: a single operation or a closed group.
type undoEntry[T any] struct {
	name      string
	ops       OperationList[T]
	timestamp time.Time
}

func (e *undoEntry[T]) info() OperationInfo {
	desc := e.name
	if desc == "" {
		if len(e.ops) == 1 {
			desc = e.ops[0].Description()
		} else {
			desc = fmt.Sprintf("%d operations", len(e.ops))
		}
	}
	return OperationInfo{
		Description: desc,
		Timestamp:   e.timestamp,
		Delta:       e.ops.Delta(),
	}
}

// History manages undo/redo state for a sequence.
type History[T any] struct {
	mu sync.Mutex

	undoStack []*undoEntry[T]
	redoStack []*undoEntry[T]

	// Grouping state
	grouping  bool
	groupName string
	groupOps  OperationList[T]

	maxEntries int
}

// New creates a history that keeps at most maxEntries undo units.
func New[T any](maxEntries int) *History[T] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History[T]{
		maxEntries: maxEntries,
	}
}

// Execute applies op to t and records it.
func (h *History[T]) Execute(op Operation[T], t Target[T]) error {
	if err := op.Apply(t); err != nil {
		return err
	}
	h.Push(op)
	return nil
}

// Push records an operation that has already been applied.
// Clears the redo stack. No-op operations are dropped.
func (h *History[T]) Push(op Operation[T]) {
	if op.IsNoop() {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		h.groupOps = append(h.groupOps, op)
		return
	}

	h.pushLocked(&undoEntry[T]{ops: OperationList[T]{op}, timestamp: op.Timestamp})
}

// PushGroup records already applied operations as a single undo unit.
// Inside an open group they join that group instead.
func (h *History[T]) PushGroup(name string, ops ...Operation[T]) {
	ops = slices.DeleteFunc(slices.Clone(ops), Operation[T].IsNoop)
	if len(ops) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		h.groupOps = append(h.groupOps, ops...)
		return
	}

	h.pushLocked(&undoEntry[T]{name: name, ops: ops, timestamp: time.Now()})
}

func (h *History[T]) pushLocked(e *undoEntry[T]) {
	h.undoStack = append(h.undoStack, e)
	h.redoStack = nil

	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		clear(h.undoStack[:excess])
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo reverts the last undo unit on t.
// The lock is released while t is modified.
func (h *History[T]) Undo(t Target[T]) error {
	h.mu.Lock()
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToUndo
	}

	entry := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.mu.Unlock()

	if err := entry.ops.Invert().Apply(t); err != nil {
		h.mu.Lock()
		h.undoStack = append(h.undoStack, entry)
		h.mu.Unlock()
		return fmt.Errorf("undo: %w", err)
	}

	h.mu.Lock()
	h.redoStack = append(h.redoStack, entry)
	h.mu.Unlock()
	return nil
}

// Redo reapplies the last undone unit on t.
// The lock is released while t is modified.
func (h *History[T]) Redo(t Target[T]) error {
	h.mu.Lock()
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToRedo
	}

	entry := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.mu.Unlock()

	if err := entry.ops.Apply(t); err != nil {
		h.mu.Lock()
		h.redoStack = append(h.redoStack, entry)
		h.mu.Unlock()
		return fmt.Errorf("redo: %w", err)
	}

	h.mu.Lock()
	h.undoStack = append(h.undoStack, entry)
	h.mu.Unlock()
	return nil
}

// CanUndo returns true if undo is available.
func (h *History[T]) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History[T]) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo units available.
func (h *History[T]) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo units available.
func (h *History[T]) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// BeginGroup starts a group. Operations pushed until EndGroup form a
// single undo unit. Nested calls are ignored.
func (h *History[T]) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		return
	}

	h.grouping = true
	h.groupName = name
	h.groupOps = nil
}

// EndGroup closes the current group. An empty group records nothing.
func (h *History[T]) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return
	}
	h.grouping = false

	if len(h.groupOps) > 0 {
		h.pushLocked(&undoEntry[T]{
			name:      h.groupName,
			ops:       h.groupOps,
			timestamp: time.Now(),
		})
	}
	h.groupOps = nil
}

// CancelGroup drops the current group without recording it.
// Operations already applied stay applied.
func (h *History[T]) CancelGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.grouping = false
	h.groupOps = nil
}

// IsGrouping returns true if a group is open.
func (h *History[T]) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// Clear removes all undo/redo history.
func (h *History[T]) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.groupOps = nil
}

// UndoInfo describes the undo units, oldest first.
func (h *History[T]) UndoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]OperationInfo, len(h.undoStack))
	for i, entry := range h.undoStack {
		result[i] = entry.info()
	}
	return result
}

// RedoInfo describes the redo units, oldest first.
func (h *History[T]) RedoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]OperationInfo, len(h.redoStack))
	for i, entry := range h.redoStack {
		result[i] = entry.info()
	}
	return result
}

// PeekUndo describes the next undo unit without removing it.
func (h *History[T]) PeekUndo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return OperationInfo{}, false
	}
	return h.undoStack[len(h.undoStack)-1].info(), true
}

// PeekRedo describes the next redo unit without removing it.
func (h *History[T]) PeekRedo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return OperationInfo{}, false
	}
	return h.redoStack[len(h.redoStack)-1].info(), true
}

// SetMaxEntries changes the undo limit, dropping the oldest units if needed.
func (h *History[T]) SetMaxEntries(n int) {
	if n <= 0 {
		n = DefaultMaxEntries
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = n
	if len(h.undoStack) > n {
		excess := len(h.undoStack) - n
		clear(h.undoStack[:excess])
		h.undoStack = h.undoStack[excess:]
	}
}

// MaxEntries returns the undo limit.
func (h *History[T]) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
