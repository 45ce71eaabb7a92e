package ctrlblock

import "reflect"

// Holder is a control block that embeds its payload. Block and payload
// share one allocation.
type Holder[T any] struct {
	Base
	value   T
	destroy func(*T)
}

// NewHolder allocates a block and constructs the payload in its storage.
//
// ctor receives the address of the zero-valued embedded storage and may
// initialize it in place; a nil ctor leaves the zero value. The block
// starts in StateCreated with strong=1.
func NewHolder[T any](ctor func(*T), destroy func(*T)) *Holder[T] {
	b := &Holder[T]{destroy: destroy}
	b.init(KindHolder)
	if ctor != nil {
		ctor(&b.value)
	}
	notify(EventAllocated, b)
	return b
}

// Get returns the address of the embedded payload. The address is stable
// for the lifetime of the block.
func (b *Holder[T]) Get() *T { return &b.value }

// DestroyPayload runs the teardown hook over the embedded storage and
// resets it to the zero value. The storage itself goes away with the block.
func (b *Holder[T]) DestroyPayload() {
	if b.destroy != nil {
		b.destroy(&b.value)
	}
	var zero T
	b.value = zero
}

// TypeName returns the payload pointer type.
func (b *Holder[T]) TypeName() string {
	return reflect.TypeFor[*T]().String()
}
