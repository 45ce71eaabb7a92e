// Package ctrlblock implements the control block shared by every SharedPtr
// and WeakPtr handle that manages one resource.
//
// A control block is a small heap object holding two counters:
//   - strong: number of owning handles keeping the payload alive
//   - weak: number of observers keeping only the block alive
//
// Two representations exist behind the Block interface:
//
//	Pointer[T]: the payload was allocated independently and the block
//	            holds its address (two allocations per resource).
//	Holder[T]:  the payload is embedded in the block and constructed in
//	            place (one allocation per resource).
//
// # Teardown
//
// Teardown is two-phase and driven only by the counters:
//
//	strong 1→0            → DestroyPayload (exactly once)
//	strong==0 && weak==0  → block freed    (exactly once)
//
// The phases are tracked by an explicit State machine:
//
//	Created ──► Live ──► PayloadDead ──► Freed
//	   │          │                        ▲
//	   └──────────┴────────────────────────┘  (weak already 0)
//
// Handles never call Decrement/DecrementWeak directly; they go through
// Release and ReleaseWeak, which own the transitions. TryAcquire is the
// primitive behind WeakPtr.Lock.
//
// # Contract Violations
//
// The block does not recover from misuse. Counter underflow, increments on
// a freed block and resurrecting an expired payload panic with a message
// prefixed "ctrlblock:".
//
// # Thread Safety
//
// None. Counters are plain integers and callers must serialize access to
// every handle sharing a block.
package ctrlblock
