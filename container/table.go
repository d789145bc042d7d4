package container

import (
	"github.com/wippyai/containers"
	"github.com/wippyai/containers/capability"
	"github.com/wippyai/containers/resource"
)

// Ref addresses a container state stored in a Space. The first four bytes
// of the state hold the registry handle of the container's Table; zero
// means the state is not initialized.
type Ref struct {
	Space containers.Space
	Addr  containers.Ptr
}

// Table is the container dispatch table. A nil slot means the container
// kind does not support the operation; the checked functions in this
// package report that as an unsupported error instead of calling it.
type Table struct {
	// Name identifies the container kind in errors and logs.
	Name string

	// StateSize is the number of bytes one container state occupies. An
	// outer container holding these as elements needs at least this element
	// size.
	StateSize uint32

	// Interface answers capability queries for a ref of this kind.
	Interface func(r Ref, tag capability.Tag) any

	Initialize  func(r Ref, elemSize uint32, alloc containers.Allocator, nested *Table) error
	Erase       func(r Ref) error
	Destroy     func(r Ref) error
	Copy        func(dst, src Ref) error
	Move        func(dst, src Ref) error
	InsertRange func(r Ref, index, count uint32, elements containers.Ptr) error
	RemoveRange func(r Ref, index, count uint32) error
	SwapValues  func(r Ref, i, j uint32) error

	AccessElement func(r Ref, index uint32) (containers.Ptr, error)

	IsValid            func(r Ref) bool
	IsEmpty            func(r Ref) bool
	IsElementContainer func(r Ref) bool
	GetSize            func(r Ref) uint32
	GetElementSize     func(r Ref) uint32
	GetMaxElements     func(r Ref) uint32
	GetAllocator       func(r Ref) containers.Allocator
	GetNestedTable     func(r Ref) *Table
}

var tables = resource.NewTyped[*Table](resource.Global(), resource.KindContainerTable)

// Register takes a reference to t in the global registry and returns its
// handle. Container implementations store the handle at the start of every
// state they initialize and call Unregister when the state is destroyed.
func Register(t *Table) resource.Handle {
	if t == nil {
		return 0
	}
	return tables.Intern(t)
}

// Unregister gives back a reference taken by Register.
func Unregister(h resource.Handle) bool {
	return tables.Release(h)
}

// Lookup resolves a table handle.
func Lookup(h resource.Handle) (*Table, bool) {
	return tables.Get(h)
}

// Capability resolves a capability of the container through its own table.
func (r Ref) Capability(tag capability.Tag) any {
	t, err := TableOf(r)
	if err != nil || t.Interface == nil {
		return nil
	}
	return t.Interface(r, tag)
}

// Element returns the ref of the nested container stored at p in the same
// space.
func (r Ref) Element(p containers.Ptr) Ref {
	return Ref{Space: r.Space, Addr: p}
}

var _ capability.Provider = Ref{}
