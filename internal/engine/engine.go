package engine

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/blocklane/internal/engine/history"
	"github.com/dshills/blocklane/internal/engine/seqindex"
	"github.com/dshills/blocklane/internal/engine/snapshot"
)

// Re-export commonly used types for convenience.
type (
	// Stats describes the shape of the index.
	Stats = seqindex.Stats

	// OperationInfo describes an undo or redo entry.
	OperationInfo = history.OperationInfo
)

// Engine is the main facade over one sequence index.
// It combines the index with undo/redo and snapshots into a unified,
// thread-safe API.
type Engine[T any] struct {
	mu sync.RWMutex

	idx     *seqindex.Index[T]
	history *history.History[T]
	logger  *zap.Logger

	// Configuration
	indexOpts []seqindex.Option
	readOnly  bool
	closed    bool
}

// New creates a new Engine with the given options.
func New[T any](opts ...Option) (*Engine[T], error) {
	s := settings{
		maxUndoEntries: DefaultMaxUndoEntries,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	e := &Engine[T]{
		history:  history.New[T](s.maxUndoEntries),
		logger:   s.logger,
		readOnly: s.readOnly,
	}
	e.indexOpts = append([]seqindex.Option{seqindex.WithLogger(s.logger.Named("index"))}, s.indexOpts...)

	var err error
	if e.idx, err = seqindex.NewChecked[T](e.indexOpts...); err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	if s.content != nil {
		items, ok := s.content.([]T)
		if !ok {
			var want []T
			return nil, fmt.Errorf("%T for engine of %T: %w", s.content, want, ErrContentType)
		}
		if err := e.idx.Insert(0, items); err != nil {
			return nil, fmt.Errorf("load initial content: %w", err)
		}
	}

	e.logger.Debug("engine created",
		zap.Int("length", e.idx.Len()),
		zap.Int("block_capacity", e.idx.BlockCapacity()),
		zap.Bool("read_only", e.readOnly))
	return e, nil
}

// ============================================================================
// Read Operations
// ============================================================================

// Len returns the number of items.
func (e *Engine[T]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.idx.Len()
}

// IsEmpty returns true if the engine holds no items.
func (e *Engine[T]) IsEmpty() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.idx.IsEmpty()
}

// Get copies the items in [start, end) into out and returns how many were
// written.
func (e *Engine[T]) Get(start, end int, out []T) (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return 0, ErrClosed
	}
	return e.idx.Get(start, end, out)
}

// Slice returns a copy of the items in [start, end).
func (e *Engine[T]) Slice(start, end int) ([]T, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, ErrClosed
	}
	return e.idx.Slice(start, end)
}

// At returns the item at rank.
func (e *Engine[T]) At(rank int) (T, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		var zero T
		return zero, ErrClosed
	}
	return e.idx.At(rank)
}

// Items returns a copy of the whole sequence.
func (e *Engine[T]) Items() []T {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.idx.Items()
}

// Each calls fn for the items in [start, end) in order until fn returns
// false. The engine is read-locked for the duration, so fn must not edit it.
func (e *Engine[T]) Each(start, end int, fn func(rank int, item T) bool) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return ErrClosed
	}
	if start < 0 || start > end || end > e.idx.Len() {
		return fmt.Errorf("each [%d, %d) with length %d: %w", start, end, e.idx.Len(), ErrIndexOutOfBounds)
	}
	for rank, item := range e.idx.Range(start, end) {
		if !fn(rank, item) {
			break
		}
	}
	return nil
}

// Stats reports the shape of the index.
func (e *Engine[T]) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.idx.Stats()
}

// Check verifies the index invariants.
func (e *Engine[T]) Check() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return ErrClosed
	}
	return e.idx.Check()
}

// ============================================================================
// Write Operations
// ============================================================================

// writable reports why the engine cannot be edited, if it cannot.
func (e *Engine[T]) writable() error {
	if e.closed {
		return ErrClosed
	}
	if e.readOnly {
		return ErrReadOnly
	}
	return nil
}

// fail logs a failed operation and returns err.
func (e *Engine[T]) fail(op string, err error, fields ...zap.Field) error {
	e.logger.Warn(op+" failed", append(fields,
		zap.Int("length", e.idx.Len()),
		zap.Error(err))...)
	return err
}

// Insert places items before rank at.
func (e *Engine[T]) Insert(at int, items []T) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.writable(); err != nil {
		return err
	}
	return e.insertLocked(at, items)
}

func (e *Engine[T]) insertLocked(at int, items []T) error {
	if err := e.idx.Insert(at, items); err != nil {
		return e.fail("insert", err, zap.Int("rank", at), zap.Int("count", len(items)))
	}
	e.history.Push(history.NewInsertOperation(at, slices.Clone(items)))

	e.logger.Debug("insert",
		zap.Int("rank", at),
		zap.Int("count", len(items)),
		zap.Int("length", e.idx.Len()))
	return nil
}

// Append adds items at the end.
func (e *Engine[T]) Append(items []T) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.writable(); err != nil {
		return err
	}
	return e.insertLocked(e.idx.Len(), items)
}

// Delete removes the items in [start, end).
func (e *Engine[T]) Delete(start, end int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.writable(); err != nil {
		return err
	}

	removed, err := e.idx.Slice(start, end)
	if err != nil {
		return e.fail("delete", err, zap.Int("rank", start), zap.Int("end", end))
	}
	if err := e.idx.Delete(start, end); err != nil {
		return e.fail("delete", err, zap.Int("rank", start), zap.Int("end", end))
	}
	e.history.Push(history.NewDeleteOperation(start, removed))

	e.logger.Debug("delete",
		zap.Int("rank", start),
		zap.Int("count", len(removed)),
		zap.Int("length", e.idx.Len()))
	return nil
}

// Replace substitutes items for [start, end). It either fully succeeds or
// leaves the contents unchanged, and undoes as one unit.
func (e *Engine[T]) Replace(start, end int, items []T) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.writable(); err != nil {
		return err
	}

	removed, err := e.idx.Slice(start, end)
	if err != nil {
		return e.fail("replace", err, zap.Int("rank", start), zap.Int("end", end))
	}
	if err := e.idx.Replace(start, end, items); err != nil {
		return e.fail("replace", err, zap.Int("rank", start), zap.Int("end", end), zap.Int("count", len(items)))
	}
	e.history.PushGroup("replace",
		history.NewDeleteOperation(start, removed),
		history.NewInsertOperation(start, slices.Clone(items)))

	e.logger.Debug("replace",
		zap.Int("rank", start),
		zap.Int("removed", len(removed)),
		zap.Int("count", len(items)),
		zap.Int("length", e.idx.Len()))
	return nil
}

// Clear removes all items and resets history.
func (e *Engine[T]) Clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.writable(); err != nil {
		return err
	}
	e.idx.Clear()
	e.history.Clear()
	e.logger.Debug("cleared")
	return nil
}

// SetContent replaces all items and resets history. On failure the old
// contents are kept.
func (e *Engine[T]) SetContent(items []T) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.writable(); err != nil {
		return err
	}

	fresh, err := seqindex.NewChecked[T](e.indexOpts...)
	if err != nil {
		return e.fail("set content", err)
	}
	if err := fresh.Insert(0, items); err != nil {
		return e.fail("set content", err, zap.Int("count", len(items)))
	}
	e.swapLocked(fresh)
	e.logger.Debug("content set", zap.Int("length", e.idx.Len()))
	return nil
}

// swapLocked replaces the index and drops all history.
func (e *Engine[T]) swapLocked(fresh *seqindex.Index[T]) {
	e.idx.Destroy()
	e.idx = fresh
	e.history.Clear()
}

// ============================================================================
// Undo/Redo Operations
// ============================================================================

// Undo undoes the last edit or group.
func (e *Engine[T]) Undo() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.writable(); err != nil {
		return err
	}
	if err := e.history.Undo(e.idx); err != nil {
		if errors.Is(err, ErrNothingToUndo) {
			return err
		}
		return e.fail("undo", err)
	}
	e.logger.Debug("undo", zap.Int("length", e.idx.Len()))
	return nil
}

// Redo redoes the last undone edit or group.
func (e *Engine[T]) Redo() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.writable(); err != nil {
		return err
	}
	if err := e.history.Redo(e.idx); err != nil {
		if errors.Is(err, ErrNothingToRedo) {
			return err
		}
		return e.fail("redo", err)
	}
	e.logger.Debug("redo", zap.Int("length", e.idx.Len()))
	return nil
}

// CanUndo returns true if undo is available.
func (e *Engine[T]) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (e *Engine[T]) CanRedo() bool {
	return e.history.CanRedo()
}

// UndoCount returns the number of available undo entries.
func (e *Engine[T]) UndoCount() int {
	return e.history.UndoCount()
}

// RedoCount returns the number of available redo entries.
func (e *Engine[T]) RedoCount() int {
	return e.history.RedoCount()
}

// UndoInfo describes the undo entries, oldest first.
func (e *Engine[T]) UndoInfo() []OperationInfo {
	return e.history.UndoInfo()
}

// BeginGroup starts a new undo group.
// All edits until EndGroup will be undone as a single unit.
func (e *Engine[T]) BeginGroup(name string) {
	e.history.BeginGroup(name)
}

// EndGroup ends the current undo group.
func (e *Engine[T]) EndGroup() {
	e.history.EndGroup()
}

// CancelGroup cancels the current undo group without recording it.
// Edits already made stay in place.
func (e *Engine[T]) CancelGroup() {
	e.history.CancelGroup()
}

// ClearHistory removes all undo/redo history.
func (e *Engine[T]) ClearHistory() {
	e.history.Clear()
}

// ============================================================================
// Snapshots
// ============================================================================

// Snapshot writes every item to w as a checksummed frame.
func (e *Engine[T]) Snapshot(w io.Writer) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return ErrClosed
	}
	if err := snapshot.Encode[T](w, e.idx, e.idx.BlockCapacity()); err != nil {
		return e.fail("snapshot", err)
	}
	e.logger.Debug("snapshot written", zap.Int("length", e.idx.Len()))
	return nil
}

// Restore replaces the contents with a snapshot read from r and clears
// history. On failure the current contents are kept.
func (e *Engine[T]) Restore(r io.Reader) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.writable(); err != nil {
		return err
	}

	snap, err := snapshot.Decode[T](r)
	if err != nil {
		return e.fail("restore", err)
	}
	fresh, err := seqindex.NewChecked[T](e.indexOpts...)
	if err != nil {
		return e.fail("restore", err)
	}
	if err := snap.Restore(fresh); err != nil {
		return e.fail("restore", err, zap.Int("count", snap.Len()))
	}
	e.swapLocked(fresh)

	e.logger.Debug("snapshot restored",
		zap.Int("length", e.idx.Len()),
		zap.Int("snapshot_block_capacity", snap.BlockCapacity))
	return nil
}

// ============================================================================
// Lifecycle
// ============================================================================

// IsReadOnly returns true if the engine rejects edits.
func (e *Engine[T]) IsReadOnly() bool {
	return e.readOnly
}

// Close releases the index. Afterwards every call that can fail returns
// ErrClosed, and Len, Items and Stats report an empty sequence. Closing twice
// is a no-op.
func (e *Engine[T]) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.idx.Destroy()
	e.history.Clear()
	e.logger.Debug("engine closed")
	return nil
}
