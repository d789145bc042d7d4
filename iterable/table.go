// Package iterable defines the iterable capability and a reusable cursor.
//
// An iterable exposes positional access through a Table and keeps a single
// registered iterator, which it notifies about every structural change.
// Cursor is an iterator that works with any iterable:
//
//	c := iterable.NewCursor()
//	if err := c.Attach(arr.Iterable()); err != nil { ... }
//	for idx, elem := range c.All() {
//		...
//	}
//	c.Detach()
package iterable

import (
	"github.com/wippyai/containers"
	"github.com/wippyai/containers/errors"
	"github.com/wippyai/containers/iterator"
)

// Ref addresses an iterable state in a Space together with its table.
type Ref struct {
	Table *Table
	Space containers.Space
	Addr  containers.Ptr
}

// IsZero reports whether r addresses nothing.
func (r Ref) IsZero() bool {
	return r.Table == nil && r.Space == nil && r.Addr == containers.Null
}

// Table is the iterable dispatch table. A nil slot is unsupported.
//
// Element functions return the address of an element, or Null when the
// requested position is past either end.
type Table struct {
	Name string

	RegisterIterator   func(r Ref, it iterator.Iterator) error
	UnregisterIterator func(r Ref, it iterator.Iterator) error

	FirstElement    func(r Ref) (containers.Ptr, error)
	LastElement     func(r Ref) (containers.Ptr, error)
	NextElement     func(r Ref, index uint32, cur containers.Ptr) (containers.Ptr, error)
	PreviousElement func(r Ref, index uint32, cur containers.Ptr) (containers.Ptr, error)

	// GetElementAt resolves index. curIndex and cur describe the caller's
	// current position when it has one (iterator.InvalidIndex and Null
	// otherwise), which lets the iterable walk from there.
	GetElementAt func(r Ref, index, curIndex uint32, cur containers.Ptr) (containers.Ptr, error)

	GetElementCount func(r Ref) uint32
}

func check(op string, r Ref) error {
	if r.Table == nil {
		return errors.NilHandle(errors.PhaseIterable, op, "table")
	}
	if r.Space == nil {
		return errors.NilHandle(errors.PhaseIterable, op, "space")
	}
	if r.Addr == containers.Null {
		return errors.NilHandle(errors.PhaseIterable, op, "iterable")
	}
	return nil
}

// Register attaches it as the iterable's observer. Registering the
// iterator that is already registered is a no-op; any other iterator is
// rejected while the slot is taken.
func Register(r Ref, it iterator.Iterator) error {
	if err := check("RegisterIterator", r); err != nil {
		return err
	}
	if it == nil {
		return errors.NilHandle(errors.PhaseIterable, "RegisterIterator", "iterator")
	}
	if r.Table.RegisterIterator == nil {
		return errors.Unsupported(errors.PhaseIterable, "RegisterIterator")
	}
	return r.Table.RegisterIterator(r, it)
}

// Unregister detaches it. It is rejected when it is not the registered
// iterator.
func Unregister(r Ref, it iterator.Iterator) error {
	if err := check("UnregisterIterator", r); err != nil {
		return err
	}
	if it == nil {
		return errors.NilHandle(errors.PhaseIterable, "UnregisterIterator", "iterator")
	}
	if r.Table.UnregisterIterator == nil {
		return errors.Unsupported(errors.PhaseIterable, "UnregisterIterator")
	}
	return r.Table.UnregisterIterator(r, it)
}

// First returns the first element, or Null when empty.
func First(r Ref) (containers.Ptr, error) {
	if err := check("FirstElement", r); err != nil {
		return containers.Null, err
	}
	if r.Table.FirstElement == nil {
		return containers.Null, errors.Unsupported(errors.PhaseIterable, "FirstElement")
	}
	return r.Table.FirstElement(r)
}

// Last returns the last element, or Null when empty.
func Last(r Ref) (containers.Ptr, error) {
	if err := check("LastElement", r); err != nil {
		return containers.Null, err
	}
	if r.Table.LastElement == nil {
		return containers.Null, errors.Unsupported(errors.PhaseIterable, "LastElement")
	}
	return r.Table.LastElement(r)
}

// Next returns the element after the one at index, or Null at the end.
func Next(r Ref, index uint32, cur containers.Ptr) (containers.Ptr, error) {
	if err := check("NextElement", r); err != nil {
		return containers.Null, err
	}
	if r.Table.NextElement == nil {
		return containers.Null, errors.Unsupported(errors.PhaseIterable, "NextElement")
	}
	return r.Table.NextElement(r, index, cur)
}

// Previous returns the element before the one at index, or Null at the
// start.
func Previous(r Ref, index uint32, cur containers.Ptr) (containers.Ptr, error) {
	if err := check("PreviousElement", r); err != nil {
		return containers.Null, err
	}
	if r.Table.PreviousElement == nil {
		return containers.Null, errors.Unsupported(errors.PhaseIterable, "PreviousElement")
	}
	return r.Table.PreviousElement(r, index, cur)
}

// ElementAt returns the element at index, or Null past the end.
func ElementAt(r Ref, index, curIndex uint32, cur containers.Ptr) (containers.Ptr, error) {
	if err := check("GetElementAt", r); err != nil {
		return containers.Null, err
	}
	if r.Table.GetElementAt == nil {
		return containers.Null, errors.Unsupported(errors.PhaseIterable, "GetElementAt")
	}
	return r.Table.GetElementAt(r, index, curIndex, cur)
}

// Count returns the number of elements.
func Count(r Ref) (uint32, error) {
	if err := check("GetElementCount", r); err != nil {
		return 0, err
	}
	if r.Table.GetElementCount == nil {
		return 0, errors.Unsupported(errors.PhaseIterable, "GetElementCount")
	}
	return r.Table.GetElementCount(r), nil
}
