package container

import (
	"github.com/wippyai/containers"
	"github.com/wippyai/containers/errors"
	"github.com/wippyai/containers/resource"
)

func checkRef(op string, r Ref, size uint32) error {
	if r.Space == nil {
		return errors.NilHandle(errors.PhaseContainer, op, "space")
	}
	if r.Addr == containers.Null {
		return errors.NilHandle(errors.PhaseContainer, op, "container")
	}
	if size < 4 {
		size = 4
	}
	if uint64(r.Addr)+uint64(size) > uint64(r.Space.Size()) {
		return errors.InvalidParameter(errors.PhaseContainer, op, "container state outside its space")
	}
	return nil
}

func resolve(op string, r Ref) (*Table, error) {
	if err := checkRef(op, r, 4); err != nil {
		return nil, err
	}
	h, err := r.Space.ReadU32(uint32(r.Addr))
	if err != nil {
		return nil, errors.Propagate(errors.PhaseContainer, op, err)
	}
	if h == 0 {
		return nil, errors.InvalidParameter(errors.PhaseContainer, op, "container not initialized")
	}
	t, ok := Lookup(resource.Handle(h))
	if !ok {
		return nil, errors.InvalidHandle(errors.PhaseContainer, op, h)
	}
	return t, nil
}

// TableOf returns the dispatch table of an initialized container.
func TableOf(r Ref) (*Table, error) {
	return resolve("TableOf", r)
}

// Initialize prepares the state at r as a container of kind t. nested is
// required for containers whose elements are containers and must be nil
// otherwise.
func Initialize(t *Table, r Ref, elemSize uint32, alloc containers.Allocator, nested *Table) error {
	const op = "Initialize"
	if t == nil {
		return errors.NilHandle(errors.PhaseContainer, op, "table")
	}
	if t.Initialize == nil {
		return errors.Unsupported(errors.PhaseContainer, op)
	}
	if err := checkRef(op, r, t.StateSize); err != nil {
		return err
	}
	if elemSize == 0 {
		return errors.InvalidParameter(errors.PhaseContainer, op, "zero element size")
	}
	if alloc == nil {
		return errors.NilHandle(errors.PhaseContainer, op, "allocator")
	}
	if nested != nil && elemSize < nested.StateSize {
		return errors.New(errors.PhaseContainer, errors.KindInvalidParameter).
			Op(op).
			Detail("element size %d smaller than nested %s state (%d bytes)", elemSize, nested.Name, nested.StateSize).
			Build()
	}
	return t.Initialize(r, elemSize, alloc, nested)
}

// Erase empties the container without necessarily releasing capacity.
func Erase(r Ref) error {
	t, err := resolve("Erase", r)
	if err != nil {
		return err
	}
	if t.Erase == nil {
		return errors.Unsupported(errors.PhaseContainer, "Erase")
	}
	return t.Erase(r)
}

// Destroy releases everything the container owns and leaves the state
// uninitialized.
func Destroy(r Ref) error {
	t, err := resolve("Destroy", r)
	if err != nil {
		return err
	}
	if t.Destroy == nil {
		return errors.Unsupported(errors.PhaseContainer, "Destroy")
	}
	return t.Destroy(r)
}

func pair(op string, dst, src Ref) (*Table, error) {
	t, err := resolve(op, dst)
	if err != nil {
		return nil, err
	}
	st, err := resolve(op, src)
	if err != nil {
		return nil, err
	}
	if st != t {
		return nil, errors.New(errors.PhaseContainer, errors.KindInvalidParameter).
			Op(op).
			Detail("container kinds differ: %s and %s", t.Name, st.Name).
			Build()
	}
	return t, nil
}

// Copy replaces the contents of dst with a deep copy of src. Both must be
// initialized containers of the same kind.
func Copy(dst, src Ref) error {
	t, err := pair("Copy", dst, src)
	if err != nil {
		return err
	}
	if t.Copy == nil {
		return errors.Unsupported(errors.PhaseContainer, "Copy")
	}
	if dst == src {
		return nil
	}
	return t.Copy(dst, src)
}

// Move transfers the resources of src into dst, leaving src an empty shell.
func Move(dst, src Ref) error {
	t, err := pair("Move", dst, src)
	if err != nil {
		return err
	}
	if t.Move == nil {
		return errors.Unsupported(errors.PhaseContainer, "Move")
	}
	if dst == src {
		return nil
	}
	return t.Move(dst, src)
}

// InsertRange inserts count elements read from elements at index. elements
// may be Null only when the elements are not containers.
func InsertRange(r Ref, index, count uint32, elements containers.Ptr) error {
	t, err := resolve("InsertRange", r)
	if err != nil {
		return err
	}
	if t.InsertRange == nil {
		return errors.Unsupported(errors.PhaseContainer, "InsertRange")
	}
	if count == 0 {
		return errors.InvalidParameter(errors.PhaseContainer, "InsertRange", "zero count")
	}
	if elements == containers.Null && t.IsElementContainer != nil && t.IsElementContainer(r) {
		return errors.InvalidParameter(errors.PhaseContainer, "InsertRange", "container elements need a source")
	}
	return t.InsertRange(r, index, count, elements)
}

// RemoveRange removes count elements at index.
func RemoveRange(r Ref, index, count uint32) error {
	t, err := resolve("RemoveRange", r)
	if err != nil {
		return err
	}
	if t.RemoveRange == nil {
		return errors.Unsupported(errors.PhaseContainer, "RemoveRange")
	}
	if count == 0 {
		return errors.InvalidParameter(errors.PhaseContainer, "RemoveRange", "zero count")
	}
	return t.RemoveRange(r, index, count)
}

// SwapValues exchanges the stored bytes of two elements.
func SwapValues(r Ref, i, j uint32) error {
	t, err := resolve("SwapValues", r)
	if err != nil {
		return err
	}
	if t.SwapValues == nil {
		return errors.Unsupported(errors.PhaseContainer, "SwapValues")
	}
	return t.SwapValues(r, i, j)
}

// AccessElement returns the address of the element slot at index.
func AccessElement(r Ref, index uint32) (containers.Ptr, error) {
	t, err := resolve("AccessElement", r)
	if err != nil {
		return containers.Null, err
	}
	if t.AccessElement == nil {
		return containers.Null, errors.Unsupported(errors.PhaseContainer, "AccessElement")
	}
	return t.AccessElement(r, index)
}

// IsValid reports whether r is an initialized container in a consistent
// state. Any dispatch failure reads as false.
func IsValid(r Ref) bool {
	t, err := resolve("IsValid", r)
	if err != nil || t.IsValid == nil {
		return false
	}
	return t.IsValid(r)
}

func query[T any](op string, r Ref, slot func(*Table) func(Ref) T) (T, error) {
	var zero T
	t, err := resolve(op, r)
	if err != nil {
		return zero, err
	}
	fn := slot(t)
	if fn == nil {
		return zero, errors.Unsupported(errors.PhaseContainer, op)
	}
	return fn(r), nil
}

// IsEmpty reports whether the container holds no elements.
func IsEmpty(r Ref) (bool, error) {
	return query("IsEmpty", r, func(t *Table) func(Ref) bool { return t.IsEmpty })
}

// IsElementContainer reports whether the elements are themselves containers.
func IsElementContainer(r Ref) (bool, error) {
	return query("IsElementContainer", r, func(t *Table) func(Ref) bool { return t.IsElementContainer })
}

// GetSize returns the element count.
func GetSize(r Ref) (uint32, error) {
	return query("GetSize", r, func(t *Table) func(Ref) uint32 { return t.GetSize })
}

// GetElementSize returns the fixed element size.
func GetElementSize(r Ref) (uint32, error) {
	return query("GetElementSize", r, func(t *Table) func(Ref) uint32 { return t.GetElementSize })
}

// GetMaxElements returns the largest element count the container supports.
func GetMaxElements(r Ref) (uint32, error) {
	return query("GetMaxElements", r, func(t *Table) func(Ref) uint32 { return t.GetMaxElements })
}

// GetAllocator returns the allocator the container draws from.
func GetAllocator(r Ref) (containers.Allocator, error) {
	return query("GetAllocator", r, func(t *Table) func(Ref) containers.Allocator { return t.GetAllocator })
}

// GetNestedTable returns the table of the element containers, or nil.
func GetNestedTable(r Ref) (*Table, error) {
	return query("GetNestedTable", r, func(t *Table) func(Ref) *Table { return t.GetNestedTable })
}
