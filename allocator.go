package containers

import (
	"github.com/wippyai/containers/errors"
)

// Allocator hands out blocks of a Space. Alloc reports exhaustion by
// returning Null; Free accepts only blocks previously returned by the same
// allocator.
//
// The remaining allocator operations are optional slots expressed as the
// Initializer, Cleaner, ZeroAllocator and UsabilityChecker interfaces. An
// allocator that does not implement one of them has an empty slot, and the
// checked dispatch functions in this file report it instead of calling it.
type Allocator interface {
	Alloc(size uint32) Ptr
	Free(p Ptr) error
	Space() Space
}

// Initializer prepares an allocator for use.
type Initializer interface {
	Init() error
}

// Cleaner releases everything an allocator handed out.
type Cleaner interface {
	Cleanup() error
}

// ZeroAllocator returns zero-filled blocks.
type ZeroAllocator interface {
	AllocZero(size uint32) Ptr
}

// UsabilityChecker reports whether an allocator can currently serve requests.
type UsabilityChecker interface {
	IsUsable() bool
}

// InitAllocator calls the allocator's Init slot.
func InitAllocator(a Allocator) error {
	if a == nil {
		return errors.NilHandle(errors.PhaseAllocator, "Init", "allocator")
	}
	i, ok := a.(Initializer)
	if !ok {
		return errors.InvalidParameter(errors.PhaseAllocator, "Init", "allocator has no Init slot")
	}
	return i.Init()
}

// CleanupAllocator calls the allocator's Cleanup slot.
func CleanupAllocator(a Allocator) error {
	if a == nil {
		return errors.NilHandle(errors.PhaseAllocator, "Cleanup", "allocator")
	}
	c, ok := a.(Cleaner)
	if !ok {
		return errors.InvalidParameter(errors.PhaseAllocator, "Cleanup", "allocator has no Cleanup slot")
	}
	return c.Cleanup()
}

// Alloc requests size bytes. It returns Null for a nil allocator, a zero
// size, or exhaustion.
func Alloc(a Allocator, size uint32) Ptr {
	if a == nil || size == 0 {
		return Null
	}
	return a.Alloc(size)
}

// AllocZero requests size zero-filled bytes. An allocator without the
// AllocZero slot yields Null.
func AllocZero(a Allocator, size uint32) Ptr {
	if a == nil || size == 0 {
		return Null
	}
	z, ok := a.(ZeroAllocator)
	if !ok {
		return Null
	}
	return z.AllocZero(size)
}

// Free releases a block.
func Free(a Allocator, p Ptr) error {
	if a == nil {
		return errors.NilHandle(errors.PhaseAllocator, "Free", "allocator")
	}
	if p == Null {
		return errors.NilHandle(errors.PhaseAllocator, "Free", "block")
	}
	return a.Free(p)
}

// IsUsable reports whether the allocator can serve requests. A missing slot
// reads as unusable.
func IsUsable(a Allocator) bool {
	if a == nil {
		return false
	}
	u, ok := a.(UsabilityChecker)
	if !ok {
		return false
	}
	return u.IsUsable()
}

// SpaceOf returns the space an allocator serves, or nil.
func SpaceOf(a Allocator) Space {
	if a == nil {
		return nil
	}
	return a.Space()
}
