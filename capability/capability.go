// Package capability resolves one capability of an object from another.
//
// An object that exposes several capabilities (a growable array is both a
// container and an iterable, and carries an allocator) answers Query through
// its own dispatch table. Callers never need to know its concrete type.
package capability

// Tag names a capability.
type Tag uint8

const (
	Allocator Tag = iota + 1
	Container
	Iterator
	Iterable
	Custom
)

func (t Tag) String() string {
	switch t {
	case Allocator:
		return "allocator"
	case Container:
		return "container"
	case Iterator:
		return "iterator"
	case Iterable:
		return "iterable"
	case Custom:
		return "custom"
	}
	return "unknown"
}

// Valid reports whether t is one of the defined tags.
func (t Tag) Valid() bool {
	return t >= Allocator && t <= Custom
}

// Provider is implemented by objects that can hand out their capabilities.
// Capability returns nil when the object does not support tag or its
// dispatch table is missing.
type Provider interface {
	Capability(tag Tag) any
}

// Query returns the capability tag of p, or nil when p is nil, tag is
// unknown, or p does not support it.
func Query(p Provider, tag Tag) any {
	if p == nil || !tag.Valid() {
		return nil
	}
	return p.Capability(tag)
}

// As queries p and converts the result to T.
func As[T any](p Provider, tag Tag) (T, bool) {
	var zero T
	v := Query(p, tag)
	if v == nil {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
