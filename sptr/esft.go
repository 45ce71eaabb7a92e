package sptr

import "github.com/boboxa2010/SmartPointers/internal/ctrlblock"

// EnableSharedFromThis lets a managed object hand out new handles to
// itself. Embed it in the managed type, parameterized with that type:
//
//	type Session struct {
//		sptr.EnableSharedFromThis[Session]
//		id string
//	}
//
//	func (s *Session) Register(r *Registry) error {
//		self, err := s.SharedFromThis()
//		if err != nil {
//			return err
//		}
//		r.Add(self)
//		return nil
//	}
//
// NewShared, MakeShared and MakeSharedFunc populate the embedded observer
// when they create the first owner of the object.
type EnableSharedFromThis[T any] struct {
	weakThis WeakPtr[T]
}

// SharedFromThis returns a new owning handle to the enclosing object.
//
// It fails with ErrNotOwned if no SharedPtr ever owned the object and
// with ErrBadWeakPtr if its owners are gone, which is what a Destroy hook
// calling it observes.
func (e *EnableSharedFromThis[T]) SharedFromThis() (SharedPtr[T], error) {
	if e.weakThis.block == nil {
		return SharedPtr[T]{}, ErrNotOwned
	}
	return FromWeak(e.weakThis)
}

// WeakFromThis returns a new observer of the enclosing object. It is empty
// if the object was never owned.
func (e *EnableSharedFromThis[T]) WeakFromThis() WeakPtr[T] {
	return e.weakThis.Clone()
}

// selfBinder is the capability the constructors look for. Its methods are
// promoted from the embedded EnableSharedFromThis.
type selfBinder interface {
	bindSelf(b ctrlblock.Block, self any)
	releaseSelf()
}

// bindSelf records the first owner of self. A second adoption of the same
// object (a contract violation) leaves the first binding in place. A
// binding copied in from another object never held a count and is
// overwritten.
func (e *EnableSharedFromThis[T]) bindSelf(b ctrlblock.Block, self any) {
	p, ok := self.(*T)
	if !ok {
		return
	}
	if e.weakThis.block != nil && e.weakThis.observed == p {
		return
	}
	ctrlblock.AcquireWeak(b)
	e.weakThis = WeakPtr[T]{observed: p, block: b}
}

func (e *EnableSharedFromThis[T]) releaseSelf() {
	e.weakThis.Release()
}

func bindSelf[T any](p *T, b ctrlblock.Block) {
	if sb, ok := any(p).(selfBinder); ok {
		sb.bindSelf(b, p)
	}
}
