package sptr

import "errors"

var (
	// ErrBadWeakPtr is returned when a strong handle is requested from a
	// WeakPtr whose payload has already been destroyed, or from an empty one.
	ErrBadWeakPtr = errors.New("sptr: bad weak pointer")

	// ErrNotOwned is returned by SharedFromThis when no SharedPtr has ever
	// owned the object.
	ErrNotOwned = errors.New("sptr: object is not owned by any SharedPtr")
)
