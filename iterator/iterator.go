// Package iterator defines the observer side of iteration.
//
// An iterable keeps at most one registered Iterator and tells it about every
// structural change it makes to itself. The Notify functions validate the
// index arithmetic before the callback runs, so an iterator never sees a
// notification that does not fit the new size.
package iterator

import (
	"math"

	"github.com/wippyai/containers/errors"
	"github.com/wippyai/containers/resource"
)

// InvalidIndex marks an iterator that has no position.
const InvalidIndex uint32 = math.MaxUint32

// Iterator receives notifications from the iterable it is registered with.
type Iterator interface {
	// InvalidateIteration drops the current position.
	InvalidateIteration() error

	// UpdateIteration re-derives element addresses after the iterable's
	// storage moved. Positions are unchanged.
	UpdateIteration() error

	// OnInsertion reports count elements inserted at index; newSize is the
	// size after the insertion.
	OnInsertion(index, count, newSize uint32) error

	// OnRemoval reports count elements removed at index; newSize is the
	// size after the removal.
	OnRemoval(index, count, newSize uint32) error

	// OnDestruction is sent once, right before the iterable releases its
	// storage. The iterator must not call back into the iterable.
	OnDestruction() error
}

// CheckInsertion validates insertion arguments against the new size.
func CheckInsertion(index, count, newSize uint32) error {
	if count == 0 {
		return errors.InvalidParameter(errors.PhaseIterator, "OnInsertion", "zero count")
	}
	if uint64(index)+uint64(count) > uint64(newSize) {
		return errors.OutOfRange(errors.PhaseIterator, "OnInsertion", index, count, newSize)
	}
	return nil
}

// CheckRemoval validates removal arguments against the new size.
func CheckRemoval(index, count, newSize uint32) error {
	if count == 0 {
		return errors.InvalidParameter(errors.PhaseIterator, "OnRemoval", "zero count")
	}
	if index > newSize {
		return errors.OutOfRange(errors.PhaseIterator, "OnRemoval", index, count, newSize)
	}
	return nil
}

// Invalidate sends InvalidateIteration.
func Invalidate(it Iterator) error {
	if it == nil {
		return errors.NilHandle(errors.PhaseIterator, "InvalidateIteration", "iterator")
	}
	return it.InvalidateIteration()
}

// Update sends UpdateIteration.
func Update(it Iterator) error {
	if it == nil {
		return errors.NilHandle(errors.PhaseIterator, "UpdateIteration", "iterator")
	}
	return it.UpdateIteration()
}

// NotifyInsertion validates and sends OnInsertion.
func NotifyInsertion(it Iterator, index, count, newSize uint32) error {
	if it == nil {
		return errors.NilHandle(errors.PhaseIterator, "OnInsertion", "iterator")
	}
	if err := CheckInsertion(index, count, newSize); err != nil {
		return err
	}
	return it.OnInsertion(index, count, newSize)
}

// NotifyRemoval validates and sends OnRemoval.
func NotifyRemoval(it Iterator, index, count, newSize uint32) error {
	if it == nil {
		return errors.NilHandle(errors.PhaseIterator, "OnRemoval", "iterator")
	}
	if err := CheckRemoval(index, count, newSize); err != nil {
		return err
	}
	return it.OnRemoval(index, count, newSize)
}

// NotifyDestruction sends OnDestruction.
func NotifyDestruction(it Iterator) error {
	if it == nil {
		return errors.NilHandle(errors.PhaseIterator, "OnDestruction", "iterator")
	}
	return it.OnDestruction()
}

var iterators = resource.NewTyped[Iterator](resource.Global(), resource.KindIterator)

// Register stores it in the global registry so an iterable in linear memory
// can refer to it by handle.
func Register(it Iterator) resource.Handle {
	if it == nil {
		return 0
	}
	return iterators.Intern(it)
}

// Unregister gives back a handle taken by Register.
func Unregister(h resource.Handle) bool {
	return iterators.Release(h)
}

// Lookup resolves an iterator handle.
func Lookup(h resource.Handle) (Iterator, bool) {
	return iterators.Get(h)
}
