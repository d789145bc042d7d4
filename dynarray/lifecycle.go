package dynarray

import (
	"github.com/wippyai/containers"
	"github.com/wippyai/containers/container"
	"github.com/wippyai/containers/errors"
	"github.com/wippyai/containers/resource"
)

// initialize writes a fresh empty state. Arguments were validated by
// container.Initialize.
func initialize(r container.Ref, elemSize uint32, alloc containers.Allocator, nested *container.Table) error {
	const op = "Initialize"
	if alloc.Space() != r.Space {
		return errors.InvalidParameter(errors.PhaseContainer, op, "allocator serves a different space")
	}
	h := header{elemSize: elemSize}
	h.table = uint32(container.Register(Table))
	h.alloc = uint32(allocators.Intern(alloc))
	if nested != nil {
		h.nested = uint32(container.Register(nested))
	}
	if h.table == 0 || h.alloc == 0 || (nested != nil && h.nested == 0) {
		releaseHandles(h)
		return errors.New(errors.PhaseContainer, errors.KindGeneralFailure).
			Op(op).
			Detail("registry refused array handles").
			Build()
	}
	if err := writeHeader(op, r, h); err != nil {
		releaseHandles(h)
		return err
	}
	return nil
}

func releaseHandles(h header) {
	if h.nested != 0 {
		container.Unregister(resource.Handle(h.nested))
	}
	if h.alloc != 0 {
		allocators.Release(resource.Handle(h.alloc))
	}
	if h.table != 0 {
		container.Unregister(resource.Handle(h.table))
	}
}

// destroy releases everything the state owns and leaves it uninitialized.
// The registered iterator gets a single destruction notice.
func destroy(r container.Ref) error {
	const op = "Destroy"
	s, err := open(op, r)
	if err != nil {
		return err
	}
	forgetObserver(r.Space, r.Addr, s.h.iter)
	s.h.iter = 0

	first := s.destroyElements(op, 0, s.h.count)
	s.release(containers.Ptr(s.h.data))
	releaseHandles(s.h)
	if err := writeHeader(op, r, header{}); err != nil && first == nil {
		first = err
	}
	return first
}

func erase(r container.Ref) error {
	const op = "Erase"
	s, err := open(op, r)
	if err != nil {
		return err
	}
	return s.erase(op)
}

func (s *state) erase(op string) error {
	first := s.destroyElements(op, 0, s.h.count)
	if s.h.count > 0 {
		if err := s.eng.Zero(s.slot(0), s.span(s.h.count)); err != nil {
			return errors.Propagate(errors.PhaseContainer, op, err)
		}
	}
	s.h.count = 0
	if err := s.save(op); err != nil {
		return err
	}
	if err := s.notifyInvalidate(op); err != nil {
		return err
	}
	return first
}

// clearArray empties the array and releases its buffer.
func clearArray(r container.Ref) error {
	const op = "Clear"
	s, err := open(op, r)
	if err != nil {
		return err
	}
	if err := s.erase(op); err != nil {
		return err
	}
	return s.reallocate(op, 0)
}

// compatible reports whether elements of b can be stored in a.
func compatible(op string, a, b *state) error {
	if a.h.elemSize != b.h.elemSize {
		return errors.New(errors.PhaseContainer, errors.KindInvalidParameter).
			Op(op).
			Detail("element size %d does not match %d", b.h.elemSize, a.h.elemSize).
			Build()
	}
	if a.nested != b.nested {
		return errors.InvalidParameter(errors.PhaseContainer, op, "nested container kinds differ")
	}
	return nil
}

// copyFrom replaces dst's contents with a deep copy of src's.
func copyFrom(dst, src container.Ref) error {
	const op = "Copy"
	if dst == src {
		return nil
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
	fresh, err := d.build(op, containers.Ptr(s.h.data), s.h.count, false)
	if err != nil {
		return err
	}
	return d.install(op, fresh, s.h.count)
}

// moveFrom hands src's buffer to dst. src stays initialized and empty; dst
// adopts src's allocator since the buffer came from it.
func moveFrom(dst, src container.Ref) error {
	const op = "Move"
	if dst == src {
		return nil
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

	first := d.destroyElements(op, 0, d.h.count)
	d.release(containers.Ptr(d.h.data))
	if d.h.alloc != s.h.alloc {
		h := allocators.Intern(s.alloc)
		if h == 0 {
			return errors.New(errors.PhaseContainer, errors.KindGeneralFailure).
				Op(op).
				Detail("registry refused allocator handle").
				Build()
		}
		allocators.Release(resource.Handle(d.h.alloc))
		d.h.alloc = uint32(h)
		d.alloc = s.alloc
	}
	d.h.data, d.h.count, d.h.capacity = s.h.data, s.h.count, s.h.capacity
	s.h.data, s.h.count, s.h.capacity = 0, 0, 0

	if err := d.save(op); err != nil {
		return err
	}
	if err := s.save(op); err != nil {
		return err
	}
	if err := d.notifyInvalidate(op); err != nil {
		return err
	}
	if err := s.notifyInvalidate(op); err != nil {
		return err
	}
	return first
}
