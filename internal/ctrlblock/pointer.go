package ctrlblock

import "reflect"

// Pointer is a control block for a payload that already exists at an
// independent address.
type Pointer[T any] struct {
	Base
	ptr     *T
	destroy func(*T)
}

// NewPointer adopts ptr. The block starts in StateCreated with strong=1.
//
// destroy, if non-nil, is called with ptr when the payload is destroyed.
// Afterwards the block drops ptr so the payload memory becomes unreachable
// from the block.
func NewPointer[T any](ptr *T, destroy func(*T)) *Pointer[T] {
	b := &Pointer[T]{ptr: ptr, destroy: destroy}
	b.init(KindPointer)
	notify(EventAllocated, b)
	return b
}

// Get returns the adopted address, or nil once the payload is destroyed.
func (b *Pointer[T]) Get() *T { return b.ptr }

// DestroyPayload runs the teardown hook and drops the address.
func (b *Pointer[T]) DestroyPayload() {
	p := b.ptr
	b.ptr = nil
	if b.destroy != nil && p != nil {
		b.destroy(p)
	}
}

// TypeName returns the payload pointer type.
func (b *Pointer[T]) TypeName() string {
	return reflect.TypeFor[*T]().String()
}
