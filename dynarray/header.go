package dynarray

import (
	"encoding/binary"
	"math"

	"go.uber.org/zap"

	"github.com/wippyai/containers"
	"github.com/wippyai/containers/container"
	"github.com/wippyai/containers/errors"
	"github.com/wippyai/containers/iterator"
	"github.com/wippyai/containers/memops"
	"github.com/wippyai/containers/resource"
)

// HeaderSize is the size of an array state. Arrays of arrays use it (or
// more) as their element size.
const HeaderSize = 32

// State layout, little-endian u32 fields.
const (
	offTable    = 0  // container table handle, 0 = uninitialized
	offElemSize = 4  // element size in bytes
	offCount    = 8  // element count
	offCapacity = 12 // reserved elements
	offData     = 16 // buffer, Null iff capacity is 0
	offAlloc    = 20 // allocator handle
	offNested   = 24 // nested container table handle, 0 = plain elements
	offIter     = 28 // registered iterator handle, 0 = none
)

const minCapacity = 4

type header struct {
	table    uint32
	elemSize uint32
	count    uint32
	capacity uint32
	data     uint32
	alloc    uint32
	nested   uint32
	iter     uint32
}

func (h *header) decode(b []byte) {
	h.table = binary.LittleEndian.Uint32(b[offTable:])
	h.elemSize = binary.LittleEndian.Uint32(b[offElemSize:])
	h.count = binary.LittleEndian.Uint32(b[offCount:])
	h.capacity = binary.LittleEndian.Uint32(b[offCapacity:])
	h.data = binary.LittleEndian.Uint32(b[offData:])
	h.alloc = binary.LittleEndian.Uint32(b[offAlloc:])
	h.nested = binary.LittleEndian.Uint32(b[offNested:])
	h.iter = binary.LittleEndian.Uint32(b[offIter:])
}

func (h *header) encode(b []byte) {
	binary.LittleEndian.PutUint32(b[offTable:], h.table)
	binary.LittleEndian.PutUint32(b[offElemSize:], h.elemSize)
	binary.LittleEndian.PutUint32(b[offCount:], h.count)
	binary.LittleEndian.PutUint32(b[offCapacity:], h.capacity)
	binary.LittleEndian.PutUint32(b[offData:], h.data)
	binary.LittleEndian.PutUint32(b[offAlloc:], h.alloc)
	binary.LittleEndian.PutUint32(b[offNested:], h.nested)
	binary.LittleEndian.PutUint32(b[offIter:], h.iter)
}

var allocators = resource.NewTyped[containers.Allocator](resource.Global(), resource.KindAllocator)

// engineConfig drives element transfers.
var engineConfig = memops.DefaultConfig()

// state is a decoded array header plus the values its handles resolve to.
// Operations load it, work on it and save it back.
type state struct {
	ref    container.Ref
	h      header
	alloc  containers.Allocator
	nested *container.Table
	eng    *memops.Engine
}

func checkHeader(op string, r container.Ref) error {
	if r.Space == nil {
		return errors.NilHandle(errors.PhaseContainer, op, "space")
	}
	if r.Addr == containers.Null {
		return errors.NilHandle(errors.PhaseContainer, op, "array")
	}
	if uint64(r.Addr)+HeaderSize > uint64(r.Space.Size()) {
		return errors.InvalidParameter(errors.PhaseContainer, op, "array state outside its space")
	}
	return nil
}

func readHeader(op string, r container.Ref) (header, error) {
	var h header
	if err := checkHeader(op, r); err != nil {
		return h, err
	}
	b, err := r.Space.Read(uint32(r.Addr), HeaderSize)
	if err != nil {
		return h, errors.Propagate(errors.PhaseContainer, op, err)
	}
	h.decode(b)
	return h, nil
}

func writeHeader(op string, r container.Ref, h header) error {
	var b [HeaderSize]byte
	h.encode(b[:])
	if err := r.Space.Write(uint32(r.Addr), b[:]); err != nil {
		return errors.Propagate(errors.PhaseContainer, op, err)
	}
	return nil
}

// open loads an initialized array state.
func open(op string, r container.Ref) (*state, error) {
	h, err := readHeader(op, r)
	if err != nil {
		return nil, err
	}
	if h.table == 0 {
		return nil, errors.InvalidParameter(errors.PhaseContainer, op, "array not initialized")
	}
	t, ok := container.Lookup(resource.Handle(h.table))
	if !ok {
		return nil, errors.InvalidHandle(errors.PhaseContainer, op, h.table)
	}
	if t != Table {
		return nil, errors.New(errors.PhaseContainer, errors.KindInvalidParameter).
			Op(op).
			Detail("state at %#x is a %s, not a growable array", uint32(r.Addr), t.Name).
			Build()
	}
	alloc, ok := allocators.Get(resource.Handle(h.alloc))
	if !ok {
		return nil, errors.InvalidHandle(errors.PhaseContainer, op, h.alloc)
	}
	s := &state{
		ref:   r,
		h:     h,
		alloc: alloc,
		eng:   memops.New(r.Space, engineConfig),
	}
	if h.nested != 0 {
		if s.nested, ok = container.Lookup(resource.Handle(h.nested)); !ok {
			return nil, errors.InvalidHandle(errors.PhaseContainer, op, h.nested)
		}
	}
	if h.elemSize == 0 {
		return nil, errors.InvalidParameter(errors.PhaseContainer, op, "corrupt state: zero element size")
	}
	return s, nil
}

func (s *state) save(op string) error {
	return writeHeader(op, s.ref, s.h)
}

func (s *state) slot(i uint32) containers.Ptr {
	return containers.Ptr(s.h.data + i*s.h.elemSize)
}

func (s *state) span(n uint32) uint32 {
	return n * s.h.elemSize
}

func (s *state) maxElements() uint32 {
	return math.MaxUint32 / s.h.elemSize
}

func (s *state) elemRef(p containers.Ptr) container.Ref {
	return container.Ref{Space: s.ref.Space, Addr: p}
}

// inBuffer reports whether [p, p+n) touches the reserved buffer.
func (s *state) inBuffer(p containers.Ptr, n uint32) bool {
	if s.h.data == 0 || n == 0 {
		return false
	}
	lo, hi := uint64(s.h.data), uint64(s.h.data)+uint64(s.span(s.h.capacity))
	return uint64(p) < hi && lo < uint64(p)+uint64(n)
}

func (s *state) observer() iterator.Iterator {
	if s.h.iter == 0 {
		return nil
	}
	it, ok := iterator.Lookup(resource.Handle(s.h.iter))
	if !ok {
		return nil
	}
	return it
}

func (s *state) notifyUpdate(op string) error {
	if it := s.observer(); it != nil {
		return errors.Propagate(errors.PhaseIterator, op, iterator.Update(it))
	}
	return nil
}

func (s *state) notifyInvalidate(op string) error {
	if it := s.observer(); it != nil {
		return errors.Propagate(errors.PhaseIterator, op, iterator.Invalidate(it))
	}
	return nil
}

func (s *state) notifyInsertion(op string, index, count uint32) error {
	if it := s.observer(); it != nil {
		return errors.Propagate(errors.PhaseIterator, op, iterator.NotifyInsertion(it, index, count, s.h.count))
	}
	return nil
}

func (s *state) notifyRemoval(op string, index, count uint32) error {
	if it := s.observer(); it != nil {
		return errors.Propagate(errors.PhaseIterator, op, iterator.NotifyRemoval(it, index, count, s.h.count))
	}
	return nil
}

// forgetObserver sends the one-shot destruction notice and drops the
// registration without the iterator calling back.
func forgetObserver(space containers.Space, addr containers.Ptr, handle uint32) {
	if handle == 0 {
		return
	}
	if it, ok := iterator.Lookup(resource.Handle(handle)); ok {
		if err := iterator.NotifyDestruction(it); err != nil {
			Logger().Warn("iterator rejected destruction notice",
				zap.Uint32("array", uint32(addr)),
				zap.Error(err),
			)
		}
	}
	iterator.Unregister(resource.Handle(handle))
	_ = space.WriteU32(uint32(addr)+offIter, 0)
}

// detachNested drops the iterators registered with nested arrays in slots
// [from, to) before those states move to another address.
func (s *state) detachNested(from, to uint32) {
	if s.nested != Table {
		return
	}
	for i := from; i < to; i++ {
		p := s.slot(i)
		h, err := s.ref.Space.ReadU32(uint32(p) + offIter)
		if err != nil || h == 0 {
			continue
		}
		forgetObserver(s.ref.Space, p, h)
	}
}

// destroyElements destroys the nested containers in slots [from, to).
// Slots that hold no initialized container are skipped.
func (s *state) destroyElements(op string, from, to uint32) error {
	if s.nested == nil {
		return nil
	}
	var first error
	for i := from; i < to; i++ {
		p := s.slot(i)
		h, err := s.ref.Space.ReadU32(uint32(p))
		if err != nil || h == 0 {
			continue
		}
		if err := container.Destroy(s.elemRef(p)); err != nil && first == nil {
			first = errors.Propagate(errors.PhaseContainer, op, err)
		}
	}
	return first
}

// reallocate moves the elements into a buffer of exactly newCap elements.
func (s *state) reallocate(op string, newCap uint32) error {
	if newCap == s.h.capacity {
		return nil
	}
	if newCap < s.h.count {
		return errors.InvalidParameter(errors.PhaseContainer, op, "capacity below element count")
	}
	if newCap > s.maxElements() {
		return errors.New(errors.PhaseContainer, errors.KindInvalidParameter).
			Op(op).
			Detail("capacity %d exceeds maximum of %d elements", newCap, s.maxElements()).
			Build()
	}

	old := containers.Ptr(s.h.data)
	fresh := containers.Null
	if newCap > 0 {
		size := s.span(newCap)
		fresh = containers.Alloc(s.alloc, size)
		if fresh == containers.Null {
			return errors.AllocationFailed(errors.PhaseContainer, op, size)
		}
		if s.h.count > 0 {
			s.detachNested(0, s.h.count)
			if err := s.eng.Copy(fresh, old, s.span(s.h.count)); err != nil {
				s.release(fresh)
				return errors.Propagate(errors.PhaseContainer, op, err)
			}
		}
	}
	s.release(old)

	Logger().Debug("array buffer reallocated",
		zap.Uint32("array", uint32(s.ref.Addr)),
		zap.Uint32("from_capacity", s.h.capacity),
		zap.Uint32("to_capacity", newCap),
		zap.Uint32("data", uint32(fresh)),
	)

	s.h.data = uint32(fresh)
	s.h.capacity = newCap
	if err := s.save(op); err != nil {
		return err
	}
	return s.notifyUpdate(op)
}

// grow makes room for required elements using the growth policy.
func (s *state) grow(op string, required uint32) error {
	if required <= s.h.capacity {
		return nil
	}
	max := s.maxElements()
	if required > max {
		return errors.New(errors.PhaseContainer, errors.KindInvalidParameter).
			Op(op).
			Detail("%d elements exceed maximum of %d", required, max).
			Build()
	}
	next := uint64(s.h.capacity) * 2
	if next < uint64(required) {
		next = uint64(required)
	}
	if next < minCapacity {
		next = minCapacity
	}
	if next > uint64(max) {
		next = uint64(max)
	}
	return s.reallocate(op, uint32(next))
}

// release frees a block, logging rather than failing.
func (s *state) release(p containers.Ptr) {
	if p == containers.Null {
		return
	}
	if err := containers.Free(s.alloc, p); err != nil {
		Logger().Warn("failed to release array block",
			zap.Uint32("array", uint32(s.ref.Addr)),
			zap.Uint32("block", uint32(p)),
			zap.Error(err),
		)
	}
}

// construct initializes the state at dst as a copy of the nested container
// at src.
func (s *state) construct(dst, src container.Ref) error {
	es, err := container.GetElementSize(src)
	if err != nil {
		return err
	}
	nt, err := container.GetNestedTable(src)
	if err != nil {
		return err
	}
	if err := container.Initialize(s.nested, dst, es, s.alloc, nt); err != nil {
		return err
	}
	if err := container.Copy(dst, src); err != nil {
		_ = container.Destroy(dst)
		return err
	}
	return nil
}

// build fills a fresh buffer with n elements read from src. Consecutive
// source elements are used unless broadcast is set, in which case every
// element copies the one at src. A Null src zero-fills plain elements.
func (s *state) build(op string, src containers.Ptr, n uint32, broadcast bool) (containers.Ptr, error) {
	if n == 0 {
		return containers.Null, nil
	}
	if n > s.maxElements() {
		return containers.Null, errors.InvalidParameter(errors.PhaseContainer, op, "element count exceeds maximum")
	}
	size := s.span(n)
	fresh := containers.Alloc(s.alloc, size)
	if fresh == containers.Null {
		return containers.Null, errors.AllocationFailed(errors.PhaseContainer, op, size)
	}

	var err error
	switch {
	case s.nested != nil:
		if err = s.eng.Zero(fresh, size); err != nil {
			break
		}
		for j := uint32(0); j < n; j++ {
			from := src
			if !broadcast {
				from = src.Add(s.span(j))
			}
			if err = s.construct(s.elemRef(fresh.Add(s.span(j))), s.elemRef(from)); err != nil {
				for k := uint32(0); k < j; k++ {
					_ = container.Destroy(s.elemRef(fresh.Add(s.span(k))))
				}
				break
			}
		}
	case src == containers.Null:
		err = s.eng.Zero(fresh, size)
	case broadcast:
		err = s.eng.SetArray(fresh, src, s.h.elemSize, n)
	default:
		err = s.eng.Copy(fresh, src, size)
	}
	if err != nil {
		s.release(fresh)
		return containers.Null, errors.Propagate(errors.PhaseContainer, op, err)
	}
	return fresh, nil
}

// install replaces the contents with a buffer produced by build.
func (s *state) install(op string, fresh containers.Ptr, n uint32) error {
	first := s.destroyElements(op, 0, s.h.count)
	s.release(containers.Ptr(s.h.data))
	s.h.data = uint32(fresh)
	s.h.count = n
	s.h.capacity = n
	if err := s.save(op); err != nil {
		return err
	}
	if err := s.notifyInvalidate(op); err != nil {
		return err
	}
	return first
}
