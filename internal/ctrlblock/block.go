package ctrlblock

import (
	"fmt"
	"sync/atomic"
)

// Block is the polymorphic control block interface.
//
// The set of implementations is closed: Pointer and Holder. Both embed
// Base, which carries the counters and the state machine, and supply
// DestroyPayload and TypeName.
type Block interface {
	// Increment adds one strong reference.
	Increment()
	// Decrement removes one strong reference without tearing anything down.
	// Handles use Release instead.
	Decrement()
	// IncrementWeak adds one weak reference.
	IncrementWeak()
	// DecrementWeak removes one weak reference without freeing the block.
	// Handles use ReleaseWeak instead.
	DecrementWeak()

	// UseCount returns the strong count.
	UseCount() uint
	// WeakCount returns the weak count.
	WeakCount() uint

	// ID returns the process-unique block identifier. IDs increase
	// monotonically in allocation order and are never reused.
	ID() uint64
	// Kind returns the block representation.
	Kind() Kind
	// State returns the current lifecycle phase.
	State() State
	// TypeName returns the payload type, e.g. "*main.Node".
	TypeName() string

	// DestroyPayload tears down the payload. Called exactly once by
	// Release on the strong 1→0 transition.
	DestroyPayload()

	base() *Base
}

// nextID hands out block IDs. Atomic so that blocks allocated on
// different goroutines still get distinct IDs.
var nextID atomic.Uint64

// Base holds the two counters and the lifecycle state of a block.
type Base struct {
	strong uint
	weak   uint
	id     uint64
	kind   Kind
	state  State

	// destroying is set while DestroyPayload runs so that weak releases
	// issued by the payload teardown itself cannot free the block early.
	destroying bool
}

func (b *Base) init(kind Kind) {
	b.strong = 1
	b.id = nextID.Add(1)
	b.kind = kind
	b.state = StateCreated
}

func (b *Base) base() *Base { return b }

// Increment adds one strong reference.
func (b *Base) Increment() {
	switch b.state {
	case StateFreed:
		panic(fmt.Sprintf("ctrlblock: increment on freed block %d", b.id))
	case StatePayloadDead:
		panic(fmt.Sprintf("ctrlblock: increment on expired block %d", b.id))
	case StateCreated:
		b.state = StateLive
	}
	if b.strong == 0 {
		panic(fmt.Sprintf("ctrlblock: increment resurrects block %d", b.id))
	}
	b.strong++
}

// Decrement removes one strong reference.
func (b *Base) Decrement() {
	if b.strong == 0 {
		panic(fmt.Sprintf("ctrlblock: strong count underflow on block %d", b.id))
	}
	b.strong--
}

// IncrementWeak adds one weak reference.
func (b *Base) IncrementWeak() {
	switch b.state {
	case StateFreed:
		panic(fmt.Sprintf("ctrlblock: weak increment on freed block %d", b.id))
	case StateCreated:
		b.state = StateLive
	}
	b.weak++
}

// DecrementWeak removes one weak reference.
func (b *Base) DecrementWeak() {
	if b.weak == 0 {
		panic(fmt.Sprintf("ctrlblock: weak count underflow on block %d", b.id))
	}
	b.weak--
}

// UseCount returns the strong count.
func (b *Base) UseCount() uint { return b.strong }

// WeakCount returns the weak count.
func (b *Base) WeakCount() uint { return b.weak }

// ID returns the block identifier.
func (b *Base) ID() uint64 { return b.id }

// Kind returns the block representation.
func (b *Base) Kind() Kind { return b.kind }

// State returns the lifecycle phase.
func (b *Base) State() State { return b.state }

// Acquire adds a strong reference to b.
func Acquire(b Block) {
	b.Increment()
}

// TryAcquire adds a strong reference only if the payload is still alive.
//
// The check and the increment are one step: a caller that gets true owns
// exactly one new strong reference, a caller that gets false owns nothing.
func TryAcquire(b Block) bool {
	if b == nil || b.UseCount() == 0 {
		return false
	}
	b.Increment()
	return true
}

// AcquireWeak adds a weak reference to b.
func AcquireWeak(b Block) {
	b.IncrementWeak()
}

// Release drops one strong reference and performs whatever teardown the
// new counts call for.
//
// The decrement completes before DestroyPayload runs, so observers queried
// from inside the payload teardown already report expired.
func Release(b Block) {
	b.Decrement()
	if b.UseCount() == 0 {
		destroy(b)
	}
	maybeFree(b)
}

// ReleaseWeak drops one weak reference and frees the block if it was the
// last reference of any kind.
func ReleaseWeak(b Block) {
	b.DecrementWeak()
	maybeFree(b)
}

// Expired reports whether b is nil or its payload has been destroyed.
func Expired(b Block) bool {
	return b == nil || b.UseCount() == 0
}

func destroy(b Block) {
	base := b.base()
	base.state = StatePayloadDead
	base.destroying = true
	func() {
		defer func() { base.destroying = false }()
		b.DestroyPayload()
	}()
	notify(EventPayloadDestroyed, b)
}

func maybeFree(b Block) {
	base := b.base()
	if base.destroying || base.state == StateFreed {
		return
	}
	if base.strong != 0 || base.weak != 0 {
		return
	}
	base.state = StateFreed
	notify(EventFreed, b)
}
