package sptr

import (
	"fmt"
	"reflect"

	"github.com/boboxa2010/SmartPointers/internal/ctrlblock"
)

// WeakPtr observes an object owned by SharedPtr handles without keeping
// it alive. It counts only in the weak count of the control block, which
// keeps the block (not the payload) from being freed.
//
// The observed address is not usable on its own: once the payload is
// destroyed it refers to a torn-down object. Lock is the only way back to
// the object.
//
// The zero value is an empty, expired observer.
type WeakPtr[T any] struct {
	observed *T
	block    ctrlblock.Block
}

// NewWeak returns an observer of p's object. An empty p yields an empty
// observer.
func NewWeak[T any](p SharedPtr[T]) WeakPtr[T] {
	if p.block == nil {
		return WeakPtr[T]{}
	}
	ctrlblock.AcquireWeak(p.block)
	return WeakPtr[T]{observed: p.observed, block: p.block}
}

// Clone returns another observer of the same object. The payload is not
// consulted, so cloning an expired observer is fine.
func (w WeakPtr[T]) Clone() WeakPtr[T] {
	if w.block != nil {
		ctrlblock.AcquireWeak(w.block)
	}
	return w
}

// Move transfers w's reference to the returned observer, leaving w empty.
func (w *WeakPtr[T]) Move() WeakPtr[T] {
	out := *w
	*w = WeakPtr[T]{}
	return out
}

// Release drops w's reference and leaves w empty. If it was the last
// reference of any kind to the block, the block is freed.
func (w *WeakPtr[T]) Release() {
	b := w.block
	if b == nil {
		return
	}
	*w = WeakPtr[T]{}
	ctrlblock.ReleaseWeak(b)
}

// Reset is Release.
func (w *WeakPtr[T]) Reset() { w.Release() }

// Assign makes w observe other's object, releasing what w observed before.
func (w *WeakPtr[T]) Assign(other WeakPtr[T]) {
	old := *w
	*w = other.Clone()
	old.Release()
}

// MoveFrom transfers other's reference into w. other is left empty.
func (w *WeakPtr[T]) MoveFrom(other *WeakPtr[T]) {
	if w == other {
		return
	}
	old := *w
	*w = other.Move()
	old.Release()
}

// Swap exchanges the contents of w and other.
func (w *WeakPtr[T]) Swap(other *WeakPtr[T]) {
	*w, *other = *other, *w
}

// UseCount returns the number of owning handles of the observed object.
func (w WeakPtr[T]) UseCount() uint {
	if w.block == nil {
		return 0
	}
	return w.block.UseCount()
}

// Expired reports whether w is empty or its payload was destroyed.
func (w WeakPtr[T]) Expired() bool {
	return ctrlblock.Expired(w.block)
}

// Lock returns an owning handle to the observed object, or an empty handle
// if w has expired.
func (w WeakPtr[T]) Lock() SharedPtr[T] {
	p, err := FromWeak(w)
	if err != nil {
		return SharedPtr[T]{}
	}
	return p
}

// OwnerBefore orders observers by control block. See SharedPtr.OwnerBefore.
func (w WeakPtr[T]) OwnerBefore(o Owner) bool {
	return ownerLess(w.block, o.ownerBlock())
}

// SameOwner reports whether w and o share a control block.
func (w WeakPtr[T]) SameOwner(o Owner) bool {
	return w.block == o.ownerBlock()
}

// String implements fmt.Stringer.
func (w WeakPtr[T]) String() string {
	return fmt.Sprintf("WeakPtr[%s]{use=%d expired=%t}",
		reflect.TypeFor[T]().String(), w.UseCount(), w.Expired())
}

func (w WeakPtr[T]) ownerBlock() ctrlblock.Block { return w.block }
