package dynarray

import (
	"github.com/wippyai/containers"
	"github.com/wippyai/containers/container"
	"github.com/wippyai/containers/errors"
	"github.com/wippyai/containers/iterator"
)

// source describes where inserted elements come from.
type source struct {
	ptr       containers.Ptr // first element, Null zero-fills plain elements
	broadcast bool           // every new element copies the one at ptr
	raw       []byte         // Go-side element bytes
	lazy      bool           // leave new plain elements unfilled
}

func (src source) at(s *state, j uint32) containers.Ptr {
	if src.broadcast {
		return src.ptr
	}
	return src.ptr.Add(s.span(j))
}

func (src source) extent(s *state, n uint32) uint32 {
	if src.broadcast {
		return s.h.elemSize
	}
	return s.span(n)
}

// insert opens a gap of n elements at index and fills it from src.
func insert(op string, r container.Ref, index, n uint32, src source) error {
	s, err := open(op, r)
	if err != nil {
		return err
	}
	return s.insert(op, index, n, src)
}

func (s *state) insert(op string, index, n uint32, src source) error {
	if n == 0 {
		return errors.InvalidParameter(errors.PhaseContainer, op, "zero count")
	}
	if index > s.h.count {
		return errors.OutOfRange(errors.PhaseContainer, op, index, n, s.h.count)
	}
	if uint64(s.h.count)+uint64(n) > uint64(s.maxElements()) {
		return errors.InvalidParameter(errors.PhaseContainer, op, "element count exceeds maximum")
	}
	if err := iterator.CheckInsertion(index, n, s.h.count+n); err != nil {
		return errors.Propagate(errors.PhaseContainer, op, err)
	}
	if s.nested != nil && (src.ptr == containers.Null || src.raw != nil) {
		return errors.InvalidParameter(errors.PhaseContainer, op, "container elements need a source container")
	}
	if src.raw != nil && uint64(len(src.raw)) != uint64(s.span(n)) {
		return errors.New(errors.PhaseContainer, errors.KindInvalidParameter).
			Op(op).
			Detail("%d bytes for %d elements of %d bytes", len(src.raw), n, s.h.elemSize).
			Build()
	}

	// sources inside the buffer would move or be overwritten, stage them
	if size := src.extent(s, n); src.ptr != containers.Null && s.inBuffer(src.ptr, size) {
		scratch := containers.Alloc(s.alloc, size)
		if scratch == containers.Null {
			return errors.AllocationFailed(errors.PhaseContainer, op, size)
		}
		defer s.release(scratch)
		if err := s.eng.Copy(scratch, src.ptr, size); err != nil {
			return errors.Propagate(errors.PhaseContainer, op, err)
		}
		src.ptr = scratch
	}

	count := s.h.count
	if err := s.grow(op, count+n); err != nil {
		return err
	}
	if index < count {
		s.detachNested(index, count)
		if err := s.eng.Copy(s.slot(index+n), s.slot(index), s.span(count-index)); err != nil {
			return errors.Propagate(errors.PhaseContainer, op, err)
		}
	}

	if err := s.fill(index, n, src); err != nil {
		// close the gap again
		if index < count {
			_ = s.eng.Copy(s.slot(index), s.slot(index+n), s.span(count-index))
		}
		_ = s.eng.Zero(s.slot(count), s.span(n))
		return errors.Propagate(errors.PhaseContainer, op, err)
	}

	s.h.count = count + n
	if err := s.save(op); err != nil {
		return err
	}
	return s.notifyInsertion(op, index, n)
}

// fill writes n new elements at index. Nested containers are constructed
// one by one; on failure the ones already built are destroyed.
func (s *state) fill(index, n uint32, src source) error {
	switch {
	case s.nested != nil:
		if err := s.eng.Zero(s.slot(index), s.span(n)); err != nil {
			return err
		}
		for j := uint32(0); j < n; j++ {
			if err := s.construct(s.elemRef(s.slot(index+j)), s.elemRef(src.at(s, j))); err != nil {
				for k := uint32(0); k < j; k++ {
					_ = container.Destroy(s.elemRef(s.slot(index + k)))
				}
				return err
			}
		}
		return nil
	case src.raw != nil:
		return s.ref.Space.Write(uint32(s.slot(index)), src.raw)
	case src.lazy:
		return nil
	case src.ptr == containers.Null:
		return s.eng.Zero(s.slot(index), s.span(n))
	case src.broadcast:
		return s.eng.SetArray(s.slot(index), src.ptr, s.h.elemSize, n)
	default:
		return s.eng.Copy(s.slot(index), src.ptr, s.span(n))
	}
}

// remove deletes n elements at index. When out is set the elements are
// transferred there instead of destroyed. Lazy removal leaves the vacated
// slots as they were.
func remove(op string, r container.Ref, index, n uint32, lazy bool, out containers.Ptr) error {
	s, err := open(op, r)
	if err != nil {
		return err
	}
	return s.remove(op, index, n, lazy, out)
}

func (s *state) remove(op string, index, n uint32, lazy bool, out containers.Ptr) error {
	if n == 0 {
		return errors.InvalidParameter(errors.PhaseContainer, op, "zero count")
	}
	if uint64(index)+uint64(n) > uint64(s.h.count) {
		return errors.OutOfRange(errors.PhaseContainer, op, index, n, s.h.count)
	}
	total := s.span(n)
	if out != containers.Null {
		if uint64(out)+uint64(total) > uint64(s.ref.Space.Size()) {
			return errors.InvalidParameter(errors.PhaseContainer, op, "output outside its space")
		}
		if s.inBuffer(out, total) {
			return errors.InvalidParameter(errors.PhaseContainer, op, "output overlaps the array")
		}
	}
	count := s.h.count
	if err := iterator.CheckRemoval(index, n, count-n); err != nil {
		return errors.Propagate(errors.PhaseContainer, op, err)
	}

	var first error
	if out != containers.Null {
		s.detachNested(index, index+n)
		if err := s.eng.Copy(out, s.slot(index), total); err != nil {
			return errors.Propagate(errors.PhaseContainer, op, err)
		}
	} else {
		first = s.destroyElements(op, index, index+n)
	}

	if tail := count - index - n; tail > 0 {
		s.detachNested(index+n, count)
		if err := s.eng.Copy(s.slot(index), s.slot(index+n), s.span(tail)); err != nil {
			return errors.Propagate(errors.PhaseContainer, op, err)
		}
	}
	s.h.count = count - n
	if !lazy {
		if err := s.eng.Zero(s.slot(s.h.count), total); err != nil {
			return errors.Propagate(errors.PhaseContainer, op, err)
		}
	}
	if err := s.save(op); err != nil {
		return err
	}
	if err := s.notifyRemoval(op, index, n); err != nil {
		return err
	}
	return first
}

func (s *state) pop(op string, front, lazy bool, out containers.Ptr) error {
	if s.h.count == 0 {
		return errors.InvalidParameter(errors.PhaseContainer, op, "array is empty")
	}
	index := s.h.count - 1
	if front {
		index = 0
	}
	return s.remove(op, index, 1, lazy, out)
}

// resize sets the element count. New plain elements copy value, or are
// zeroed when value is Null; lazy growth leaves them undefined. New nested
// elements always copy value.
func (s *state) resize(op string, n uint32, value containers.Ptr, lazy bool) error {
	count := s.h.count
	switch {
	case n == count:
		return nil
	case n < count:
		return s.remove(op, n, count-n, lazy, containers.Null)
	}
	if s.nested != nil && value == containers.Null {
		return errors.InvalidParameter(errors.PhaseContainer, op, "container elements need a default value")
	}
	src := source{ptr: value, broadcast: true}
	if lazy && s.nested == nil {
		src = source{lazy: true}
	}
	return s.insert(op, count, n-count, src)
}

func (s *state) reserve(op string, n uint32) error {
	if n <= s.h.capacity {
		return nil
	}
	return s.reallocate(op, n)
}

// assign replaces the contents with n copies of value.
func (s *state) assign(op string, n uint32, value containers.Ptr) error {
	if n == 0 {
		return errors.InvalidParameter(errors.PhaseContainer, op, "zero count")
	}
	if value == containers.Null {
		return errors.NilHandle(errors.PhaseContainer, op, "value")
	}
	fresh, err := s.build(op, value, n, true)
	if err != nil {
		return err
	}
	return s.install(op, fresh, n)
}

// assignBlock overwrites n existing elements starting at first with copies
// of value.
func (s *state) assignBlock(op string, first, n uint32, value containers.Ptr) error {
	if n == 0 {
		return errors.InvalidParameter(errors.PhaseContainer, op, "zero count")
	}
	if value == containers.Null {
		return errors.NilHandle(errors.PhaseContainer, op, "value")
	}
	if uint64(first)+uint64(n) > uint64(s.h.count) {
		return errors.OutOfRange(errors.PhaseContainer, op, first, n, s.h.count)
	}
	if s.nested == nil {
		return errors.Propagate(errors.PhaseContainer, op, s.eng.SetArray(s.slot(first), value, s.h.elemSize, n))
	}

	// build the replacements before touching the old elements
	fresh, err := s.build(op, value, n, true)
	if err != nil {
		return err
	}
	defer s.release(fresh)
	destroyErr := s.destroyElements(op, first, first+n)
	if err := s.eng.Copy(s.slot(first), fresh, s.span(n)); err != nil {
		return errors.Propagate(errors.PhaseContainer, op, err)
	}
	return destroyErr
}

func (s *state) reverse(op string) error {
	count := s.h.count
	s.detachNested(0, count)
	for i, j := uint32(0), count; i+1 < j; i, j = i+1, j-1 {
		if err := s.eng.Swap(s.slot(i), s.slot(j-1), s.h.elemSize, s.alloc); err != nil {
			return errors.Propagate(errors.PhaseContainer, op, err)
		}
	}
	return s.notifyInvalidate(op)
}

func swapValues(r container.Ref, i, j uint32) error {
	const op = "SwapValues"
	s, err := open(op, r)
	if err != nil {
		return err
	}
	if i >= s.h.count {
		return errors.OutOfRange(errors.PhaseContainer, op, i, 1, s.h.count)
	}
	if j >= s.h.count {
		return errors.OutOfRange(errors.PhaseContainer, op, j, 1, s.h.count)
	}
	if i == j {
		return nil
	}
	s.detachNested(i, i+1)
	s.detachNested(j, j+1)
	return errors.Propagate(errors.PhaseContainer, op, s.eng.Swap(s.slot(i), s.slot(j), s.h.elemSize, s.alloc))
}

func accessElement(r container.Ref, index uint32) (containers.Ptr, error) {
	const op = "AccessElement"
	s, err := open(op, r)
	if err != nil {
		return containers.Null, err
	}
	if index >= s.h.count {
		return containers.Null, errors.OutOfRange(errors.PhaseContainer, op, index, 1, s.h.count)
	}
	return s.slot(index), nil
}

// insertArray copies every element of src into dst at index.
func insertArray(op string, dst, src container.Ref, index uint32) error {
	d, err := open(op, dst)
	if err != nil {
		return err
	}
	s, err := open(op, src)
	if err != nil {
		return err
	}
	if err := compatible(op, d, s); err != nil {
		return err
	}
	if index > d.h.count {
		return errors.OutOfRange(errors.PhaseContainer, op, index, s.h.count, d.h.count)
	}
	if s.h.count == 0 {
		return nil
	}
	return d.insert(op, index, s.h.count, source{ptr: containers.Ptr(s.h.data)})
}

// appendMove transfers every element of src to the end of dst, leaving src
// empty.
func appendMove(dst, src container.Ref) error {
	const op = "AppendMove"
	if dst == src {
		return errors.InvalidParameter(errors.PhaseContainer, op, "array appended to itself")
	}
	d, err := open(op, dst)
	if err != nil {
		return err
	}
	s, err := open(op, src)
	if err != nil {
		return err
	}
	if err := compatible(op, d, s); err != nil {
		return err
	}
	if d.inBuffer(src.Addr, HeaderSize) {
		return errors.InvalidParameter(errors.PhaseContainer, op, "source lives inside the destination")
	}
	if d.nested != nil && d.h.alloc != s.h.alloc {
		return errors.InvalidParameter(errors.PhaseContainer, op, "nested elements cannot change allocator")
	}
	n := s.h.count
	if n == 0 {
		return nil
	}
	if uint64(d.h.count)+uint64(n) > uint64(d.maxElements()) {
		return errors.InvalidParameter(errors.PhaseContainer, op, "element count exceeds maximum")
	}

	count := d.h.count
	if err := d.grow(op, count+n); err != nil {
		return err
	}
	s.detachNested(0, n)
	if err := d.eng.Copy(d.slot(count), s.slot(0), s.span(n)); err != nil {
		return errors.Propagate(errors.PhaseContainer, op, err)
	}
	if err := s.eng.Zero(s.slot(0), s.span(n)); err != nil {
		return errors.Propagate(errors.PhaseContainer, op, err)
	}
	d.h.count = count + n
	s.h.count = 0
	if err := d.save(op); err != nil {
		return err
	}
	if err := s.save(op); err != nil {
		return err
	}
	if err := d.notifyInsertion(op, count, n); err != nil {
		return err
	}
	return s.notifyRemoval(op, 0, n)
}
