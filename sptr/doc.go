// Package sptr provides shared-ownership smart pointers: a reference
// counted owning handle (SharedPtr), a non-owning observer (WeakPtr) and
// an embeddable capability for objects that need handles to themselves
// (EnableSharedFromThis).
//
// # Quick Start
//
//	type Conn struct {
//		sptr.EnableSharedFromThis[Conn]
//		fd int
//	}
//
//	func (c *Conn) Destroy() { syscall.Close(c.fd) }
//
//	p := sptr.MakeShared(Conn{fd: fd}) // one allocation, strong=1
//	q := p.Clone()                     // strong=2
//	w := p.Weak()                      // weak=1
//
//	q.Release()                        // strong=1
//	p.Release()                        // strong=0: Conn.Destroy runs
//
//	w.Expired()                        // true
//	w.Lock().Valid()                   // false
//	w.Release()                        // weak=0: control block freed
//
// # Handles Are Values With Explicit Copy
//
// Go has neither copy constructors nor destructors, so the counted
// operations are explicit:
//
//	C++                  Go
//	SharedPtr q = p;     q := p.Clone()
//	SharedPtr q(move(p)) q := p.Move()
//	q = p;               q.Assign(p)
//	q = move(p);         q.MoveFrom(&p)
//	~SharedPtr()         p.Release()   (or defer p.Release())
//
// A plain Go assignment "q := p" duplicates the handle without counting
// it. Exactly one of the two copies may then be released.
//
// # Payload Teardown
//
// When the last strong handle is released the payload is destroyed:
// if *T implements Destroyer its Destroy method runs, otherwise if *T
// implements io.Closer its Close method runs (errors are logged, see
// SetLogger). The control block then drops its reference to the payload.
// The block itself lives on until the last WeakPtr is released too.
//
// # Construction
//
//   - MakeShared / MakeSharedFunc: payload and control block in one
//     allocation; the value is built directly in the block.
//   - NewShared: adopt an existing *T. The caller gives up ownership;
//     adopting one address twice creates two independent owner groups and
//     destroys the payload twice. cmd/sptrcheck detects the common forms.
//   - Alias: a handle sharing another handle's lifetime but pointing at
//     a sub-object, such as a field of the owned struct.
//
// # Debugging
//
// SMARTPTR_DEBUG=track=1 records the allocation stack of every control
// block; WriteLeakReport prints the blocks still referenced. See
// EnableTracking, SetObserver and the metrics sub-package for Prometheus
// counters.
//
// # Thread Safety
//
// None. Counters are not atomic. All handles sharing a control block must
// be used from one goroutine at a time, and the payload is reachable
// without locking through every live SharedPtr.
package sptr
