package engine

import (
	"errors"

	"github.com/dshills/blocklane/internal/engine/history"
	"github.com/dshills/blocklane/internal/engine/seqindex"
)

// Errors returned by engine operations.
var (
	// ErrReadOnly indicates an operation was attempted on a read-only engine.
	ErrReadOnly = errors.New("engine is read-only")

	// ErrClosed indicates the engine has been closed.
	ErrClosed = errors.New("engine is closed")

	// ErrContentType indicates WithContent was given items of another type.
	ErrContentType = errors.New("initial content has the wrong item type")

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = history.ErrNothingToUndo

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = history.ErrNothingToRedo

	// ErrIndexOutOfBounds indicates a rank or range outside the sequence.
	ErrIndexOutOfBounds = seqindex.ErrIndexOutOfBounds

	// ErrOutOfMemory indicates the node budget cannot cover an edit.
	ErrOutOfMemory = seqindex.ErrOutOfMemory
)
