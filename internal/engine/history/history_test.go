package history

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/dshills/blocklane/internal/engine/seqindex"
)

var errBounds = errors.New("out of bounds")

// sliceTarget is a plain slice used as the edited sequence.
type sliceTarget struct {
	items []int
	// failures makes the n-th call (1-based) fail; zero never fails.
	failures int
	calls    int
}

func (s *sliceTarget) fail() bool {
	s.calls++
	return s.failures != 0 && s.calls == s.failures
}

func (s *sliceTarget) Insert(at int, items []int) error {
	if s.fail() || at < 0 || at > len(s.items) {
		return errBounds
	}
	s.items = slices.Insert(s.items, at, items...)
	return nil
}

func (s *sliceTarget) Delete(start, end int) error {
	if s.fail() || start < 0 || end > len(s.items) || start > end {
		return errBounds
	}
	s.items = slices.Delete(s.items, start, end)
	return nil
}

func newTarget(items ...int) *sliceTarget {
	return &sliceTarget{items: items}
}

func ins(rank int, items ...int) Operation[int] {
	return NewInsertOperation(rank, items)
}

func del(rank int, removed ...int) Operation[int] {
	return NewDeleteOperation(rank, removed)
}

// Operation Tests

func TestNewOperation(t *testing.T) {
	op := ins(5, 1, 2, 3)
	if op.Kind != KindInsert || op.Rank != 5 || op.End() != 8 {
		t.Errorf("got %+v", op)
	}
	if op.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
	if op.IsNoop() {
		t.Error("should not be a no-op")
	}
	if !ins(3).IsNoop() {
		t.Error("empty insert should be a no-op")
	}
}

func TestOperationDelta(t *testing.T) {
	tests := []struct {
		name     string
		op       Operation[int]
		expected int
	}{
		{"insert", ins(0, 1, 2, 3), 3},
		{"delete", del(0, 1, 2), -2},
		{"empty", ins(4), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op.Delta(); got != tt.expected {
				t.Errorf("Delta() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestOperationInvert(t *testing.T) {
	op := del(2, 7, 8)
	inv := op.Invert()
	if inv.Kind != KindInsert || inv.Rank != 2 || !slices.Equal(inv.Items, []int{7, 8}) {
		t.Errorf("inverted op wrong: %+v", inv)
	}
	if inv.Invert().Kind != KindDelete {
		t.Error("double invert should be a delete")
	}
}

func TestOperationApplyRoundTrip(t *testing.T) {
	tgt := newTarget(1, 2, 3, 4, 5)
	op := del(1, 2, 3)
	if err := op.Apply(tgt); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(tgt.items, []int{1, 4, 5}) {
		t.Fatalf("after delete: %v", tgt.items)
	}
	if err := op.Invert().Apply(tgt); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(tgt.items, []int{1, 2, 3, 4, 5}) {
		t.Errorf("after invert: %v", tgt.items)
	}
}

func TestOperationApplyWrapsError(t *testing.T) {
	err := ins(10, 1).Apply(newTarget())
	if !errors.Is(err, errBounds) {
		t.Fatalf("got %v", err)
	}
	if err.Error() != "insert at 10: out of bounds" {
		t.Errorf("message %q", err.Error())
	}
}

func TestOperationClone(t *testing.T) {
	op := ins(0, 1, 2)
	clone := op.Clone()
	op.Items[0] = 100
	if clone.Items[0] != 1 {
		t.Error("clone shares items")
	}
}

func TestOperationDescription(t *testing.T) {
	tests := []struct {
		op       Operation[int]
		expected string
	}{
		{ins(3, 9), "insert 1 item at 3"},
		{del(0, 1, 2, 3), "delete 3 items at 0"},
	}
	for _, tt := range tests {
		if got := tt.op.Description(); got != tt.expected {
			t.Errorf("Description() = %q, want %q", got, tt.expected)
		}
	}
	if got := Kind(9).String(); got != "kind(9)" {
		t.Errorf("unknown kind = %q", got)
	}
}

func TestOperationListApplyRollsBack(t *testing.T) {
	tgt := newTarget(1, 2, 3)
	ops := OperationList[int]{ins(0, 0), del(3, 3), ins(99, 4)}
	if err := ops.Apply(tgt); !errors.Is(err, errBounds) {
		t.Fatalf("got %v", err)
	}
	if !slices.Equal(tgt.items, []int{1, 2, 3}) {
		t.Errorf("not rolled back: %v", tgt.items)
	}
}

func TestOperationListInvert(t *testing.T) {
	ops := OperationList[int]{ins(0, 1), del(5, 2, 3)}
	inv := ops.Invert()
	if inv[0].Kind != KindInsert || inv[0].Rank != 5 || inv[1].Kind != KindDelete || inv[1].Rank != 0 {
		t.Errorf("inverted list wrong: %+v", inv)
	}
	if ops.Delta() != -1 || inv.Delta() != 1 {
		t.Errorf("Delta() = %d / %d", ops.Delta(), inv.Delta())
	}
}

// History Tests

func TestHistoryPushAndUndo(t *testing.T) {
	tgt := newTarget(1, 2, 3)
	h := New[int](100)

	if err := h.Execute(ins(3, 4, 5), tgt); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(tgt.items, []int{1, 2, 3, 4, 5}) {
		t.Fatalf("after execute: %v", tgt.items)
	}

	if err := h.Undo(tgt); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(tgt.items, []int{1, 2, 3}) {
		t.Errorf("after undo: %v", tgt.items)
	}
}

func TestHistoryRedo(t *testing.T) {
	tgt := newTarget(1, 2, 3)
	h := New[int](100)

	h.Execute(del(0, 1), tgt)
	h.Undo(tgt)
	if err := h.Redo(tgt); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(tgt.items, []int{2, 3}) {
		t.Errorf("after redo: %v", tgt.items)
	}
	if h.CanRedo() || !h.CanUndo() {
		t.Error("stacks out of step after redo")
	}
}

func TestHistoryRedoClearedOnPush(t *testing.T) {
	tgt := newTarget()
	h := New[int](100)

	h.Execute(ins(0, 1), tgt)
	h.Undo(tgt)
	if !h.CanRedo() {
		t.Fatal("should be able to redo")
	}
	h.Execute(ins(0, 2), tgt)
	if h.CanRedo() {
		t.Error("redo should be cleared after a new push")
	}
}

func TestHistoryNoopNotRecorded(t *testing.T) {
	h := New[int](100)
	h.Push(ins(0))
	if h.CanUndo() {
		t.Error("no-op should not be recorded")
	}
}

func TestHistoryMaxEntries(t *testing.T) {
	tgt := newTarget()
	h := New[int](3)
	for i := range 5 {
		h.Execute(ins(i, i), tgt)
	}
	if h.UndoCount() != 3 {
		t.Errorf("UndoCount() = %d, want 3", h.UndoCount())
	}

	h.SetMaxEntries(2)
	if h.UndoCount() != 2 || h.MaxEntries() != 2 {
		t.Errorf("after SetMaxEntries: %d / %d", h.UndoCount(), h.MaxEntries())
	}
	if New[int](0).MaxEntries() != DefaultMaxEntries {
		t.Error("non-positive limit should use the default")
	}
}

func TestHistoryErrors(t *testing.T) {
	h := New[int](100)
	tgt := newTarget()
	if err := h.Undo(tgt); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo() = %v", err)
	}
	if err := h.Redo(tgt); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo() = %v", err)
	}
}

func TestHistoryUndoFailureKeepsEntry(t *testing.T) {
	tgt := newTarget()
	h := New[int](100)
	h.Execute(ins(0, 1, 2), tgt)

	tgt.calls, tgt.failures = 0, 1
	if err := h.Undo(tgt); !errors.Is(err, errBounds) {
		t.Fatalf("Undo() = %v", err)
	}
	if h.UndoCount() != 1 || h.CanRedo() {
		t.Error("failed undo should leave the entry on the undo stack")
	}

	tgt.failures = 0
	if err := h.Undo(tgt); err != nil {
		t.Fatal(err)
	}
	if len(tgt.items) != 0 {
		t.Errorf("after undo: %v", tgt.items)
	}
}

func TestHistoryClear(t *testing.T) {
	tgt := newTarget()
	h := New[int](100)
	h.Execute(ins(0, 1), tgt)
	h.Execute(ins(0, 2), tgt)
	h.Undo(tgt)
	h.Clear()
	if h.CanUndo() || h.CanRedo() {
		t.Error("history should be empty after Clear")
	}
}

func TestHistoryGrouping(t *testing.T) {
	tgt := newTarget(1, 2, 3, 4)
	h := New[int](100)

	h.BeginGroup("move")
	h.BeginGroup("nested is ignored")
	h.Execute(del(0, 1), tgt)
	h.Execute(ins(3, 1), tgt)
	h.EndGroup()

	if !slices.Equal(tgt.items, []int{2, 3, 4, 1}) {
		t.Fatalf("after group: %v", tgt.items)
	}
	if h.UndoCount() != 1 {
		t.Fatalf("UndoCount() = %d, want 1", h.UndoCount())
	}

	h.Undo(tgt)
	if !slices.Equal(tgt.items, []int{1, 2, 3, 4}) {
		t.Errorf("after undo: %v", tgt.items)
	}
	h.Redo(tgt)
	if !slices.Equal(tgt.items, []int{2, 3, 4, 1}) {
		t.Errorf("after redo: %v", tgt.items)
	}
}

func TestHistoryEmptyGroup(t *testing.T) {
	h := New[int](100)
	h.BeginGroup("nothing")
	if !h.IsGrouping() {
		t.Fatal("should be grouping")
	}
	h.EndGroup()
	if h.IsGrouping() || h.CanUndo() {
		t.Error("empty group should record nothing")
	}
}

func TestHistoryCancelGroup(t *testing.T) {
	tgt := newTarget()
	h := New[int](100)

	h.BeginGroup("cancelled")
	h.Execute(ins(0, 1), tgt)
	h.CancelGroup()

	if h.CanUndo() {
		t.Error("cancelled group should not be recorded")
	}
	if !slices.Equal(tgt.items, []int{1}) {
		t.Error("cancel must not revert applied edits")
	}
}

func TestHistoryGroupScope(t *testing.T) {
	tgt := newTarget()
	h := New[int](100)

	func() {
		defer h.GroupScope("scoped").End()
		h.Execute(ins(0, 1), tgt)
		h.Execute(ins(1, 2), tgt)
	}()

	if h.UndoCount() != 1 {
		t.Errorf("UndoCount() = %d, want 1", h.UndoCount())
	}

	g := h.GroupScope("cancel")
	h.Execute(ins(0, 3), tgt)
	g.Cancel()
	g.End()
	if h.UndoCount() != 1 {
		t.Errorf("cancelled scope recorded: %d", h.UndoCount())
	}
}

func TestHistoryTransaction(t *testing.T) {
	tgt := newTarget()
	h := New[int](100)

	err := h.Transaction("ok", func() error {
		return h.Execute(ins(0, 1, 2), tgt)
	})
	if err != nil || h.UndoCount() != 1 {
		t.Fatalf("Transaction() = %v, count %d", err, h.UndoCount())
	}

	boom := errors.New("boom")
	err = h.Transaction("fails", func() error {
		h.Execute(ins(0, 3), tgt)
		return boom
	})
	if !errors.Is(err, boom) || h.UndoCount() != 1 {
		t.Errorf("failed transaction: %v, count %d", err, h.UndoCount())
	}
}

func TestHistoryExecuteGrouped(t *testing.T) {
	tgt := newTarget(1, 2, 3)
	h := New[int](100)

	if err := h.ExecuteGrouped("swap", tgt, del(0, 1), ins(1, 1)); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(tgt.items, []int{2, 1, 3}) || h.UndoCount() != 1 {
		t.Fatalf("after grouped: %v, count %d", tgt.items, h.UndoCount())
	}

	err := h.ExecuteGrouped("bad", tgt, ins(0, 9), ins(50, 9))
	if !errors.Is(err, errBounds) {
		t.Fatalf("got %v", err)
	}
	if !slices.Equal(tgt.items, []int{2, 1, 3}) || h.UndoCount() != 1 {
		t.Errorf("failed group leaked: %v, count %d", tgt.items, h.UndoCount())
	}
}

func TestHistoryPushGroup(t *testing.T) {
	h := New[int](100)
	h.PushGroup("empty", ins(0), del(0))
	if h.CanUndo() {
		t.Fatal("group of no-ops should record nothing")
	}

	h.PushGroup("pair", ins(0, 1), del(0, 1))
	if h.UndoCount() != 1 {
		t.Fatalf("UndoCount() = %d, want 1", h.UndoCount())
	}

	// Inside an open group the operations join it.
	h.BeginGroup("outer")
	h.PushGroup("inner", ins(0, 2), ins(1, 3))
	h.Push(ins(2, 4))
	h.EndGroup()
	info, _ := h.PeekUndo()
	if h.UndoCount() != 2 || info.Description != "outer" || info.Delta != 3 {
		t.Errorf("got %d entries, top %+v", h.UndoCount(), info)
	}
}

func TestHistoryUndoInfo(t *testing.T) {
	tgt := newTarget()
	h := New[int](100)
	h.Execute(ins(0, 1, 2), tgt)
	h.BeginGroup("pair")
	h.Execute(ins(0, 3), tgt)
	h.Execute(del(0, 3), tgt)
	h.EndGroup()
	h.BeginGroup("")
	h.Execute(ins(0, 4), tgt)
	h.Execute(ins(0, 5), tgt)
	h.EndGroup()

	info := h.UndoInfo()
	want := []string{"insert 2 items at 0", "pair", "2 operations"}
	if len(info) != len(want) {
		t.Fatalf("len(UndoInfo()) = %d", len(info))
	}
	for i, w := range want {
		if info[i].Description != w {
			t.Errorf("info[%d] = %q, want %q", i, info[i].Description, w)
		}
	}
	if info[0].Delta != 2 || info[1].Delta != 0 || info[2].Delta != 2 {
		t.Errorf("deltas %d %d %d", info[0].Delta, info[1].Delta, info[2].Delta)
	}

	h.Undo(tgt)
	if r := h.RedoInfo(); len(r) != 1 || r[0].Description != "2 operations" {
		t.Errorf("RedoInfo() = %+v", r)
	}
}

func TestHistoryPeek(t *testing.T) {
	tgt := newTarget()
	h := New[int](100)
	if _, ok := h.PeekUndo(); ok {
		t.Error("PeekUndo on empty history")
	}
	h.Execute(ins(0, 1), tgt)
	info, ok := h.PeekUndo()
	if !ok || info.Description != "insert 1 item at 0" {
		t.Errorf("PeekUndo() = %+v, %v", info, ok)
	}
	if h.UndoCount() != 1 {
		t.Error("peek should not remove")
	}
	if _, ok := h.PeekRedo(); ok {
		t.Error("PeekRedo on empty redo stack")
	}
	h.Undo(tgt)
	if _, ok := h.PeekRedo(); !ok {
		t.Error("PeekRedo after undo")
	}
}

func TestHistoryCheckpoint(t *testing.T) {
	tgt := newTarget()
	h := New[int](100)
	h.Execute(ins(0, 1), tgt)
	cp := h.CreateCheckpoint()
	h.Execute(ins(1, 2), tgt)
	h.Execute(ins(2, 3), tgt)
	after := h.CreateCheckpoint()

	if err := h.UndoToCheckpoint(cp, tgt); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(tgt.items, []int{1}) {
		t.Errorf("after UndoToCheckpoint: %v", tgt.items)
	}
	if err := h.RedoToCheckpoint(after, tgt); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(tgt.items, []int{1, 2, 3}) {
		t.Errorf("after RedoToCheckpoint: %v", tgt.items)
	}
}

func TestHistoryOverIndex(t *testing.T) {
	x := seqindex.New[int](seqindex.WithBlockCapacity(4), seqindex.WithSeed(3))
	h := New[int](100)

	items := make([]int, 40)
	for i := range items {
		items[i] = i
	}
	if err := h.Execute(ins(0, items...), x); err != nil {
		t.Fatal(err)
	}

	for step := range 10 {
		rank := (step * 7) % (x.Len() - 2)
		removed, err := x.Slice(rank, rank+3)
		if err != nil {
			t.Fatal(err)
		}
		if err := h.Execute(del(rank, removed...), x); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
	}
	if x.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", x.Len())
	}

	for h.UndoCount() > 1 {
		if err := h.Undo(x); err != nil {
			t.Fatal(err)
		}
	}
	if err := x.Check(); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(x.Items(), items) {
		t.Errorf("undo did not restore contents: %v", x.Items())
	}
	for i := 0; h.CanRedo(); i++ {
		if err := h.Redo(x); err != nil {
			t.Fatal(fmt.Errorf("redo %d: %w", i, err))
		}
	}
	if x.Len() != 10 {
		t.Errorf("Len() after redo = %d, want 10", x.Len())
	}
}
