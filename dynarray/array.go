package dynarray

import (
	"github.com/wippyai/containers"
	"github.com/wippyai/containers/capability"
	"github.com/wippyai/containers/container"
	"github.com/wippyai/containers/errors"
	"github.com/wippyai/containers/iterable"
)

// Array is a handle to a growable array state in a Space. The state itself
// lives in the space, so several handles may address the same array and a
// handle stays valid while the state is initialized.
type Array struct {
	ref   container.Ref
	owner containers.Allocator // set when the state block was allocated by New
}

// At returns a handle for the state at addr.
func At(space containers.Space, addr containers.Ptr) *Array {
	return &Array{ref: container.Ref{Space: space, Addr: addr}}
}

// Init initializes the state at addr, which must have HeaderSize bytes
// available. nested is the table of the elements when they are containers
// themselves and nil for plain elements.
func Init(space containers.Space, addr containers.Ptr, elemSize uint32, alloc containers.Allocator, nested *container.Table) (*Array, error) {
	a := At(space, addr)
	if err := container.Initialize(Table, a.ref, elemSize, alloc, nested); err != nil {
		return nil, err
	}
	return a, nil
}

// New allocates a state block from alloc and initializes an empty array in
// it. Destroy gives the block back.
func New(alloc containers.Allocator, elemSize uint32, nested *container.Table) (*Array, error) {
	const op = "New"
	space := containers.SpaceOf(alloc)
	if space == nil {
		return nil, errors.NilHandle(errors.PhaseContainer, op, "allocator")
	}
	addr := containers.Alloc(alloc, HeaderSize)
	if addr == containers.Null {
		return nil, errors.AllocationFailed(errors.PhaseContainer, op, HeaderSize)
	}
	a, err := Init(space, addr, elemSize, alloc, nested)
	if err != nil {
		_ = containers.Free(alloc, addr)
		return nil, err
	}
	a.owner = alloc
	return a, nil
}

// NewWithSize creates an array of n elements. Plain elements copy
// defaultValue, or are zeroed when it is Null; container elements require
// it.
func NewWithSize(alloc containers.Allocator, elemSize, n uint32, defaultValue containers.Ptr, nested *container.Table) (*Array, error) {
	return newThen(alloc, elemSize, nested, func(a *Array) error {
		return a.Resize(n, defaultValue)
	})
}

// NewWithValue creates an array of n copies of value.
func NewWithValue(alloc containers.Allocator, elemSize, n uint32, value containers.Ptr, nested *container.Table) (*Array, error) {
	if value == containers.Null {
		return nil, errors.NilHandle(errors.PhaseContainer, "NewWithValue", "value")
	}
	return newThen(alloc, elemSize, nested, func(a *Array) error {
		if n == 0 {
			return nil
		}
		return a.Assign(n, value)
	})
}

// NewWithCopy creates a deep copy of src using src's allocator.
func NewWithCopy(src *Array) (*Array, error) {
	s, err := src.open("NewWithCopy")
	if err != nil {
		return nil, err
	}
	return newThen(s.alloc, s.h.elemSize, s.nested, func(a *Array) error {
		return a.Copy(src)
	})
}

// NewWithArray creates an array holding copies of the n elements at first.
func NewWithArray(alloc containers.Allocator, first containers.Ptr, n, elemSize uint32, nested *container.Table) (*Array, error) {
	return newThen(alloc, elemSize, nested, func(a *Array) error {
		if n == 0 {
			return nil
		}
		return a.InsertRange(0, n, first)
	})
}

func newThen(alloc containers.Allocator, elemSize uint32, nested *container.Table, fill func(*Array) error) (*Array, error) {
	a, err := New(alloc, elemSize, nested)
	if err != nil {
		return nil, err
	}
	if err := fill(a); err != nil {
		_ = a.Destroy()
		return nil, err
	}
	return a, nil
}

func (a *Array) open(op string) (*state, error) {
	if a == nil {
		return nil, errors.NilHandle(errors.PhaseContainer, op, "array")
	}
	return open(op, a.ref)
}

// Space returns the space the state lives in.
func (a *Array) Space() containers.Space { return a.ref.Space }

// Addr returns the address of the state.
func (a *Array) Addr() containers.Ptr { return a.ref.Addr }

// Container returns the container capability ref of the array.
func (a *Array) Container() container.Ref { return a.ref }

// Iterable returns the iterable capability ref of the array.
func (a *Array) Iterable() iterable.Ref {
	return iterable.Ref{Table: IterableTable, Space: a.ref.Space, Addr: a.ref.Addr}
}

// Capability resolves a capability of the array.
func (a *Array) Capability(tag capability.Tag) any {
	return a.ref.Capability(tag)
}

// Destroy releases the elements, the buffer and, for arrays made by New,
// the state block. The registered iterator is told once.
func (a *Array) Destroy() error {
	if a == nil {
		return errors.NilHandle(errors.PhaseContainer, "Destroy", "array")
	}
	err := container.Destroy(a.ref)
	if a.owner != nil {
		if ferr := containers.Free(a.owner, a.ref.Addr); ferr != nil && err == nil {
			err = ferr
		}
		a.owner = nil
	}
	return err
}

// Erase removes every element and keeps the capacity.
func (a *Array) Erase() error { return container.Erase(a.ref) }

// Clear removes every element and releases the buffer.
func (a *Array) Clear() error { return clearArray(a.ref) }

// ZeroMemory wipes the state without releasing anything it owns. Use it on
// fresh memory before Init, never on a live array.
func (a *Array) ZeroMemory() error {
	if err := checkHeader("ZeroMemory", a.ref); err != nil {
		return err
	}
	return writeHeader("ZeroMemory", a.ref, header{})
}

// Resize sets the number of elements. See NewWithSize for how new elements
// are filled.
func (a *Array) Resize(n uint32, defaultValue containers.Ptr) error {
	s, err := a.open("Resize")
	if err != nil {
		return err
	}
	return s.resize("Resize", n, defaultValue, false)
}

// LazyResize is Resize that leaves new plain elements undefined and does
// not clear vacated slots.
func (a *Array) LazyResize(n uint32, defaultValue containers.Ptr) error {
	s, err := a.open("LazyResize")
	if err != nil {
		return err
	}
	return s.resize("LazyResize", n, defaultValue, true)
}

// Reserve makes room for at least n elements.
func (a *Array) Reserve(n uint32) error {
	s, err := a.open("Reserve")
	if err != nil {
		return err
	}
	return s.reserve("Reserve", n)
}

// ShrinkToFit releases unused capacity.
func (a *Array) ShrinkToFit() error {
	s, err := a.open("ShrinkToFit")
	if err != nil {
		return err
	}
	return s.reallocate("ShrinkToFit", s.h.count)
}

// Push appends a copy of the element at value. A Null value appends a
// zeroed plain element.
func (a *Array) Push(value containers.Ptr) error {
	s, err := a.open("Push")
	if err != nil {
		return err
	}
	return s.insert("Push", s.h.count, 1, source{ptr: value})
}

// PushBytes appends plain elements from Go memory; b holds whole elements.
func (a *Array) PushBytes(b []byte) error {
	s, err := a.open("PushBytes")
	if err != nil {
		return err
	}
	if len(b) == 0 || uint32(len(b))%s.h.elemSize != 0 {
		return errors.InvalidParameter(errors.PhaseContainer, "PushBytes", "partial element")
	}
	return s.insert("PushBytes", s.h.count, uint32(len(b))/s.h.elemSize, source{raw: b})
}

// Pop removes the last element. When out is not Null the element is moved
// there, otherwise it is destroyed.
func (a *Array) Pop(out containers.Ptr) error { return a.pop("Pop", false, false, out) }

// LazyPop is Pop that leaves the vacated slot as it was.
func (a *Array) LazyPop(out containers.Ptr) error { return a.pop("LazyPop", false, true, out) }

// PopFront removes the first element, see Pop.
func (a *Array) PopFront(out containers.Ptr) error { return a.pop("PopFront", true, false, out) }

// LazyPopFront is PopFront that leaves the vacated slot as it was.
func (a *Array) LazyPopFront(out containers.Ptr) error {
	return a.pop("LazyPopFront", true, true, out)
}

func (a *Array) pop(op string, front, lazy bool, out containers.Ptr) error {
	s, err := a.open(op)
	if err != nil {
		return err
	}
	return s.pop(op, front, lazy, out)
}

// AccessElement returns the address of element index.
func (a *Array) AccessElement(index uint32) (containers.Ptr, error) {
	return container.AccessElement(a.ref, index)
}

// Assign replaces the contents with n copies of value.
func (a *Array) Assign(n uint32, value containers.Ptr) error {
	s, err := a.open("Assign")
	if err != nil {
		return err
	}
	return s.assign("Assign", n, value)
}

// AssignBlock overwrites the n elements starting at first with copies of
// value.
func (a *Array) AssignBlock(first, n uint32, value containers.Ptr) error {
	s, err := a.open("AssignBlock")
	if err != nil {
		return err
	}
	return s.assignBlock("AssignBlock", first, n, value)
}

// AssignRange overwrites elements first through last inclusive.
func (a *Array) AssignRange(first, last uint32, value containers.Ptr) error {
	s, err := a.open("AssignRange")
	if err != nil {
		return err
	}
	if last < first {
		return errors.InvalidParameter(errors.PhaseContainer, "AssignRange", "last before first")
	}
	return s.assignBlock("AssignRange", first, last-first+1, value)
}

// Copy replaces the contents with a deep copy of src.
func (a *Array) Copy(src *Array) error {
	if src == nil {
		return errors.NilHandle(errors.PhaseContainer, "Copy", "source")
	}
	return container.Copy(a.ref, src.ref)
}

// Move takes over src's elements, leaving src empty.
func (a *Array) Move(src *Array) error {
	if src == nil {
		return errors.NilHandle(errors.PhaseContainer, "Move", "source")
	}
	return container.Move(a.ref, src.ref)
}

// CopyArray replaces the contents with copies of the n elements at first.
func (a *Array) CopyArray(first containers.Ptr, n, elemSize uint32) error {
	const op = "CopyArray"
	s, err := a.open(op)
	if err != nil {
		return err
	}
	if elemSize != s.h.elemSize {
		return errors.InvalidParameter(errors.PhaseContainer, op, "element size mismatch")
	}
	if n == 0 {
		return errors.InvalidParameter(errors.PhaseContainer, op, "zero count")
	}
	if first == containers.Null {
		return errors.NilHandle(errors.PhaseContainer, op, "elements")
	}
	fresh, err := s.build(op, first, n, false)
	if err != nil {
		return err
	}
	return s.install(op, fresh, n)
}

// InsertElement inserts a copy of the element at value before index.
func (a *Array) InsertElement(index uint32, value containers.Ptr) error {
	return a.InsertRange(index, 1, value)
}

// InsertRange inserts copies of the n elements at first before index.
func (a *Array) InsertRange(index, n uint32, first containers.Ptr) error {
	return container.InsertRange(a.ref, index, n, first)
}

// InsertBytes inserts plain elements from Go memory before index.
func (a *Array) InsertBytes(index uint32, b []byte) error {
	s, err := a.open("InsertBytes")
	if err != nil {
		return err
	}
	if len(b) == 0 || uint32(len(b))%s.h.elemSize != 0 {
		return errors.InvalidParameter(errors.PhaseContainer, "InsertBytes", "partial element")
	}
	return s.insert("InsertBytes", index, uint32(len(b))/s.h.elemSize, source{raw: b})
}

// InsertArray inserts copies of every element of src before index.
func (a *Array) InsertArray(index uint32, src *Array) error {
	if src == nil {
		return errors.NilHandle(errors.PhaseContainer, "InsertArray", "source")
	}
	return insertArray("InsertArray", a.ref, src.ref, index)
}

// AppendCopy appends copies of every element of src.
func (a *Array) AppendCopy(src *Array) error {
	if src == nil {
		return errors.NilHandle(errors.PhaseContainer, "AppendCopy", "source")
	}
	return insertArray("AppendCopy", a.ref, src.ref, a.Size())
}

// AppendMove moves every element of src to the end, leaving src empty.
func (a *Array) AppendMove(src *Array) error {
	if src == nil {
		return errors.NilHandle(errors.PhaseContainer, "AppendMove", "source")
	}
	return appendMove(a.ref, src.ref)
}

// RemoveElement removes the element at index.
func (a *Array) RemoveElement(index uint32) error {
	return remove("RemoveElement", a.ref, index, 1, false, containers.Null)
}

// LazyRemoveElement is RemoveElement that leaves the vacated slot as it was.
func (a *Array) LazyRemoveElement(index uint32) error {
	return remove("LazyRemoveElement", a.ref, index, 1, true, containers.Null)
}

// RemoveRange removes n elements starting at index.
func (a *Array) RemoveRange(index, n uint32) error {
	return container.RemoveRange(a.ref, index, n)
}

// LazyRemoveRange is RemoveRange that leaves vacated slots as they were.
func (a *Array) LazyRemoveRange(index, n uint32) error {
	return remove("LazyRemoveRange", a.ref, index, n, true, containers.Null)
}

// Reverse reverses the order of the elements.
func (a *Array) Reverse() error {
	s, err := a.open("Reverse")
	if err != nil {
		return err
	}
	return s.reverse("Reverse")
}

// SwapValues exchanges elements i and j.
func (a *Array) SwapValues(i, j uint32) error {
	return container.SwapValues(a.ref, i, j)
}

// Front returns the first element, or Null when empty.
func (a *Array) Front() containers.Ptr {
	p, _ := iterable.First(a.Iterable())
	return p
}

// Back returns the last element, or Null when empty.
func (a *Array) Back() containers.Ptr {
	p, _ := iterable.Last(a.Iterable())
	return p
}

// Data returns the start of the buffer, or Null when nothing is reserved.
func (a *Array) Data() containers.Ptr {
	s, err := a.open("Data")
	if err != nil {
		return containers.Null
	}
	return containers.Ptr(s.h.data)
}

// Get returns a copy of the bytes of element index.
func (a *Array) Get(index uint32) ([]byte, error) {
	s, err := a.open("Get")
	if err != nil {
		return nil, err
	}
	if index >= s.h.count {
		return nil, errors.OutOfRange(errors.PhaseContainer, "Get", index, 1, s.h.count)
	}
	b, err := s.ref.Space.Read(uint32(s.slot(index)), s.h.elemSize)
	if err != nil {
		return nil, errors.Propagate(errors.PhaseContainer, "Get", err)
	}
	return append([]byte(nil), b...), nil
}

// Set overwrites plain element index with b.
func (a *Array) Set(index uint32, b []byte) error {
	const op = "Set"
	s, err := a.open(op)
	if err != nil {
		return err
	}
	if s.nested != nil {
		return errors.InvalidParameter(errors.PhaseContainer, op, "elements are containers")
	}
	if uint32(len(b)) != s.h.elemSize {
		return errors.InvalidParameter(errors.PhaseContainer, op, "value is not one element")
	}
	if index >= s.h.count {
		return errors.OutOfRange(errors.PhaseContainer, op, index, 1, s.h.count)
	}
	return errors.Propagate(errors.PhaseContainer, op, s.ref.Space.Write(uint32(s.slot(index)), b))
}

// Element returns a handle for the nested array at index.
func (a *Array) Element(index uint32) (*Array, error) {
	s, err := a.open("Element")
	if err != nil {
		return nil, err
	}
	if s.nested != Table {
		return nil, errors.InvalidParameter(errors.PhaseContainer, "Element", "elements are not growable arrays")
	}
	if index >= s.h.count {
		return nil, errors.OutOfRange(errors.PhaseContainer, "Element", index, 1, s.h.count)
	}
	return At(s.ref.Space, s.slot(index)), nil
}

// IsValid reports whether the state is an initialized, consistent array.
func (a *Array) IsValid() bool { return container.IsValid(a.ref) }

// IsEmpty reports whether the array has no elements. An invalid array is
// empty.
func (a *Array) IsEmpty() bool {
	empty, err := container.IsEmpty(a.ref)
	return err != nil || empty
}

// IsElementContainer reports whether the elements are containers.
func (a *Array) IsElementContainer() bool {
	v, _ := container.IsElementContainer(a.ref)
	return v
}

// Size returns the number of elements.
func (a *Array) Size() uint32 {
	n, _ := container.GetSize(a.ref)
	return n
}

// Capacity returns the number of elements the buffer holds.
func (a *Array) Capacity() uint32 {
	s, err := a.open("GetCapacity")
	if err != nil {
		return 0
	}
	return s.h.capacity
}

// MaxElements returns the largest element count the array supports.
func (a *Array) MaxElements() uint32 {
	n, _ := container.GetMaxElements(a.ref)
	return n
}

// ElementSize returns the size of one element.
func (a *Array) ElementSize() uint32 {
	n, _ := container.GetElementSize(a.ref)
	return n
}

// Allocator returns the allocator the array draws from.
func (a *Array) Allocator() containers.Allocator {
	v, _ := container.GetAllocator(a.ref)
	return v
}

// NestedTable returns the table of container elements, or nil.
func (a *Array) NestedTable() *container.Table {
	v, _ := container.GetNestedTable(a.ref)
	return v
}

var _ capability.Provider = (*Array)(nil)
