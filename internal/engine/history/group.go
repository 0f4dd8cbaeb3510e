package history

// GroupScope groups operations until End is called.
// Usage:
//
//	defer h.GroupScope("reorder").End()
type GroupScope[T any] struct {
	history *History[T]
	active  bool
}

// GroupScope starts a new group scope.
func (h *History[T]) GroupScope(name string) *GroupScope[T] {
	h.BeginGroup(name)
	return &GroupScope[T]{
		history: h,
		active:  true,
	}
}

// End ends the group scope. Only the first call has effect.
func (g *GroupScope[T]) End() {
	if g.active {
		g.history.EndGroup()
		g.active = false
	}
}

// Cancel cancels the group scope without recording it.
func (g *GroupScope[T]) Cancel() {
	if g.active {
		g.history.CancelGroup()
		g.active = false
	}
}

// Transaction runs fn within a group. If fn fails the group is cancelled.
func (h *History[T]) Transaction(name string, fn func() error) error {
	h.BeginGroup(name)

	if err := fn(); err != nil {
		h.CancelGroup()
		return err
	}

	h.EndGroup()
	return nil
}

// ExecuteGrouped applies ops to t as a single undo unit. If one fails, the
// ones already applied are rolled back and nothing is recorded.
func (h *History[T]) ExecuteGrouped(name string, t Target[T], ops ...Operation[T]) error {
	switch len(ops) {
	case 0:
		return nil
	case 1:
		return h.Execute(ops[0], t)
	}

	if err := OperationList[T](ops).Apply(t); err != nil {
		return err
	}

	h.PushGroup(name, ops...)
	return nil
}

// Checkpoint represents a point in history that can be returned to.
type Checkpoint struct {
	undoDepth int
}

// CreateCheckpoint creates a checkpoint at the current history position.
func (h *History[T]) CreateCheckpoint() Checkpoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Checkpoint{undoDepth: len(h.undoStack)}
}

// UndoToCheckpoint undoes every unit recorded since cp.
func (h *History[T]) UndoToCheckpoint(cp Checkpoint, t Target[T]) error {
	for h.UndoCount() > cp.undoDepth {
		if err := h.Undo(t); err != nil {
			return err
		}
	}
	return nil
}

// RedoToCheckpoint redoes units until the undo depth reaches cp, as far as
// the redo stack allows.
func (h *History[T]) RedoToCheckpoint(cp Checkpoint, t Target[T]) error {
	for h.UndoCount() < cp.undoDepth && h.CanRedo() {
		if err := h.Redo(t); err != nil {
			return err
		}
	}
	return nil
}
