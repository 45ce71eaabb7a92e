package sptr

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/boboxa2010/SmartPointers/internal/ctrlblock"
)

// SharedPtr is an owning handle to a T managed by a control block.
//
// The zero value is an empty handle. A SharedPtr participates in the
// strong count of its block; copies made with Clone add to it and Release
// removes from it. The payload is destroyed when the strong count drops
// to zero.
//
// The observed address usually is the managed object itself, but handles
// built by Alias observe a sub-object while keeping the whole owner alive.
type SharedPtr[T any] struct {
	observed *T
	block    ctrlblock.Block
}

// NewShared adopts p, which must point to an object nobody else owns or
// tears down. The control block is allocated separately from *p.
//
// If *T embeds EnableSharedFromThis[T], its self observer is populated.
// NewShared(nil) returns an empty handle.
func NewShared[T any](p *T) SharedPtr[T] {
	if p == nil {
		return SharedPtr[T]{}
	}
	b := ctrlblock.NewPointer(p, teardown[T])
	bindSelf(p, b)
	return SharedPtr[T]{observed: p, block: b}
}

// MakeShared allocates a control block with embedded storage for a T,
// copies v into it and returns the first owning handle. One allocation.
func MakeShared[T any](v T) SharedPtr[T] {
	return MakeSharedFunc(func(p *T) { *p = v })
}

// MakeSharedFunc is like MakeShared but constructs the value in place:
// ctor receives the address of the zeroed embedded storage. The address
// stays valid for the lifetime of the payload, so ctor may record it.
func MakeSharedFunc[T any](ctor func(*T)) SharedPtr[T] {
	b := ctrlblock.NewHolder(ctor, teardown[T])
	p := b.Get()
	bindSelf(p, b)
	return SharedPtr[T]{observed: p, block: b}
}

// Alias returns a handle that shares owner's control block (adding one
// strong reference) but observes p. Typical use is a handle to a field:
//
//	field := sptr.Alias(owner, &owner.Get().Member)
//
// The aliased handle keeps the whole owner alive. An empty owner yields
// an empty handle.
func Alias[T, U any](owner SharedPtr[U], p *T) SharedPtr[T] {
	if owner.block == nil {
		return SharedPtr[T]{}
	}
	ctrlblock.Acquire(owner.block)
	return SharedPtr[T]{observed: p, block: owner.block}
}

// AliasMove is like Alias but takes over owner's reference instead of
// adding one. owner is left empty.
func AliasMove[T, U any](owner *SharedPtr[U], p *T) SharedPtr[T] {
	if owner.block == nil {
		return SharedPtr[T]{}
	}
	out := SharedPtr[T]{observed: p, block: owner.block}
	*owner = SharedPtr[U]{}
	return out
}

// FromWeak returns a new owning handle for w's object, or ErrBadWeakPtr if
// w is empty or expired.
func FromWeak[T any](w WeakPtr[T]) (SharedPtr[T], error) {
	if !ctrlblock.TryAcquire(w.block) {
		return SharedPtr[T]{}, ErrBadWeakPtr
	}
	return SharedPtr[T]{observed: w.observed, block: w.block}, nil
}

// Get returns the observed address, nil for an empty handle.
func (p SharedPtr[T]) Get() *T { return p.observed }

// UseCount returns the number of owning handles sharing p's block, 0 for
// an empty handle.
func (p SharedPtr[T]) UseCount() uint {
	if p.block == nil {
		return 0
	}
	return p.block.UseCount()
}

// Unique reports whether p is the only owning handle.
func (p SharedPtr[T]) Unique() bool { return p.UseCount() == 1 }

// Valid reports whether p owns anything.
func (p SharedPtr[T]) Valid() bool { return p.block != nil }

// Clone returns another owning handle to the same object.
func (p SharedPtr[T]) Clone() SharedPtr[T] {
	if p.block != nil {
		ctrlblock.Acquire(p.block)
	}
	return p
}

// Move transfers p's reference to the returned handle and leaves p empty.
// The strong count does not change.
func (p *SharedPtr[T]) Move() SharedPtr[T] {
	out := *p
	*p = SharedPtr[T]{}
	return out
}

// Release drops p's reference and leaves p empty. If p was the last owner
// the payload is destroyed; if no WeakPtr remains either, the control block
// is freed as well. Releasing an empty handle does nothing.
func (p *SharedPtr[T]) Release() {
	b := p.block
	if b == nil {
		return
	}
	*p = SharedPtr[T]{}
	ctrlblock.Release(b)
}

// Reset is Release.
func (p *SharedPtr[T]) Reset() { p.Release() }

// ResetTo releases p's current reference and adopts ptr as NewShared does.
func (p *SharedPtr[T]) ResetTo(ptr *T) {
	old := *p
	*p = NewShared(ptr)
	old.Release()
}

// Assign makes p share other's object, releasing what p held before.
// Self-assignment is safe.
func (p *SharedPtr[T]) Assign(other SharedPtr[T]) {
	old := *p
	*p = other.Clone()
	old.Release()
}

// MoveFrom transfers other's reference into p, releasing what p held
// before. other is left empty.
func (p *SharedPtr[T]) MoveFrom(other *SharedPtr[T]) {
	if p == other {
		return
	}
	old := *p
	*p = other.Move()
	old.Release()
}

// Swap exchanges the contents of p and other. Counts are unchanged.
func (p *SharedPtr[T]) Swap(other *SharedPtr[T]) {
	*p, *other = *other, *p
}

// Weak returns a new observer of p's object.
func (p SharedPtr[T]) Weak() WeakPtr[T] { return NewWeak(p) }

// OwnerBefore orders handles by control block rather than by observed
// address. Two handles are in the same owner group iff neither is
// OwnerBefore the other.
func (p SharedPtr[T]) OwnerBefore(o Owner) bool {
	return ownerLess(p.block, o.ownerBlock())
}

// SameOwner reports whether p and o share a control block. Two empty
// handles share the (absent) block.
func (p SharedPtr[T]) SameOwner(o Owner) bool {
	return p.block == o.ownerBlock()
}

// String implements fmt.Stringer.
func (p SharedPtr[T]) String() string {
	return fmt.Sprintf("SharedPtr[%s]{%p use=%d}",
		reflect.TypeFor[T]().String(), p.observed, p.UseCount())
}

func (p SharedPtr[T]) ownerBlock() ctrlblock.Block { return p.block }

// Equal reports whether a and b observe the same address. Two empty
// handles are equal. Handles of one owner group aliasing different
// sub-objects are not; use SameOwner for group membership.
func Equal[T, U any](a SharedPtr[T], b SharedPtr[U]) bool {
	return unsafe.Pointer(a.observed) == unsafe.Pointer(b.observed)
}
