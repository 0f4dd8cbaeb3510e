package history

import (
	"fmt"
	"slices"
	"time"
)

// Target is the sequence an operation is applied to.
type Target[T any] interface {
	Insert(at int, items []T) error
	Delete(start, end int) error
}

// Kind identifies what an operation does to the sequence.
type Kind uint8

const (
	// KindInsert places Items before Rank.
	KindInsert Kind = iota
	// KindDelete removes Items, which started at Rank.
	KindDelete
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInsert:
		return "insert"
	case KindDelete:
		return "delete"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Operation represents a single undoable edit.
// A delete keeps the removed items so it can be inverted.
type Operation[T any] struct {
	Kind      Kind
	Rank      int       // first rank touched
	Items     []T       // inserted or removed items
	Timestamp time.Time // when the operation occurred
}

// NewInsertOperation creates an operation for an insertion.
func NewInsertOperation[T any](rank int, items []T) Operation[T] {
	return Operation[T]{
		Kind:      KindInsert,
		Rank:      rank,
		Items:     items,
		Timestamp: time.Now(),
	}
}

// NewDeleteOperation creates an operation for a deletion of removed,
// which started at rank.
func NewDeleteOperation[T any](rank int, removed []T) Operation[T] {
	return Operation[T]{
		Kind:      KindDelete,
		Rank:      rank,
		Items:     removed,
		Timestamp: time.Now(),
	}
}

// IsNoop returns true if this operation makes no changes.
func (op Operation[T]) IsNoop() bool {
	return len(op.Items) == 0
}

// Delta returns the change in sequence length.
func (op Operation[T]) Delta() int {
	if op.Kind == KindDelete {
		return -len(op.Items)
	}
	return len(op.Items)
}

// End returns the rank just past the items the operation covers.
func (op Operation[T]) End() int {
	return op.Rank + len(op.Items)
}

// Invert returns an operation that undoes this one.
func (op Operation[T]) Invert() Operation[T] {
	inv := op
	inv.Timestamp = time.Now()
	if op.Kind == KindInsert {
		inv.Kind = KindDelete
	} else {
		inv.Kind = KindInsert
	}
	return inv
}

// Apply performs the operation on t.
func (op Operation[T]) Apply(t Target[T]) error {
	if op.IsNoop() {
		return nil
	}
	var err error
	switch op.Kind {
	case KindInsert:
		err = t.Insert(op.Rank, op.Items)
	case KindDelete:
		err = t.Delete(op.Rank, op.End())
	default:
		err = fmt.Errorf("unknown operation %s", op.Kind)
	}
	if err != nil {
		return fmt.Errorf("%s at %d: %w", op.Kind, op.Rank, err)
	}
	return nil
}

// Clone creates a copy of the operation that shares no items with it.
func (op Operation[T]) Clone() Operation[T] {
	op.Items = slices.Clone(op.Items)
	return op
}

// Description returns a short human-readable description.
func (op Operation[T]) Description() string {
	if len(op.Items) == 1 {
		return fmt.Sprintf("%s 1 item at %d", op.Kind, op.Rank)
	}
	return fmt.Sprintf("%s %d items at %d", op.Kind, len(op.Items), op.Rank)
}

// OperationInfo provides read-only info about an undo entry.
type OperationInfo struct {
	Description string    // group name or operation description
	Timestamp   time.Time // when the entry was recorded
	Delta       int       // positive for insertions, negative for deletions
}

// OperationList is a collection of operations that are undone together.
type OperationList[T any] []Operation[T]

// Invert returns a list of inverse operations in reverse order.
func (ops OperationList[T]) Invert() OperationList[T] {
	result := make(OperationList[T], len(ops))
	for i, op := range ops {
		result[len(ops)-1-i] = op.Invert()
	}
	return result
}

// Delta returns the total change in sequence length.
func (ops OperationList[T]) Delta() int {
	total := 0
	for _, op := range ops {
		total += op.Delta()
	}
	return total
}

// Apply performs the operations in order. On failure the operations
// already applied are rolled back and the error is returned.
func (ops OperationList[T]) Apply(t Target[T]) error {
	for i, op := range ops {
		if err := op.Apply(t); err != nil {
			for j := i - 1; j >= 0; j-- {
				if rerr := ops[j].Invert().Apply(t); rerr != nil {
					return fmt.Errorf("%w (rollback failed: %v)", err, rerr)
				}
			}
			return err
		}
	}
	return nil
}
