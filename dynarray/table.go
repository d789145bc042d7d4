package dynarray

import (
	"github.com/wippyai/containers"
	"github.com/wippyai/containers/capability"
	"github.com/wippyai/containers/container"
	"github.com/wippyai/containers/errors"
	"github.com/wippyai/containers/iterable"
	"github.com/wippyai/containers/iterator"
	"github.com/wippyai/containers/resource"
)

var (
	// Table dispatches the container capability of growable arrays. Pass
	// it as the nested table to build arrays of arrays.
	Table *container.Table

	// IterableTable dispatches the iterable capability of growable arrays.
	IterableTable *iterable.Table
)

func init() {
	Table = &container.Table{
		Name:      "dynarray",
		StateSize: HeaderSize,
		Interface: queryInterface,

		Initialize: initialize,
		Erase:      erase,
		Destroy:    destroy,
		Copy:       copyFrom,
		Move:       moveFrom,
		InsertRange: func(r container.Ref, index, count uint32, elements containers.Ptr) error {
			return insert("InsertRange", r, index, count, source{ptr: elements})
		},
		RemoveRange: func(r container.Ref, index, count uint32) error {
			return remove("RemoveRange", r, index, count, false, containers.Null)
		},
		SwapValues:    swapValues,
		AccessElement: accessElement,

		IsValid: isValid,
		IsEmpty: func(r container.Ref) bool {
			s, err := open("IsEmpty", r)
			return err != nil || s.h.count == 0
		},
		IsElementContainer: func(r container.Ref) bool {
			s, err := open("IsElementContainer", r)
			return err == nil && s.nested != nil
		},
		GetSize: func(r container.Ref) uint32 {
			return field("GetSize", r, func(s *state) uint32 { return s.h.count })
		},
		GetElementSize: func(r container.Ref) uint32 {
			return field("GetElementSize", r, func(s *state) uint32 { return s.h.elemSize })
		},
		GetMaxElements: func(r container.Ref) uint32 {
			return field("GetMaxElements", r, (*state).maxElements)
		},
		GetAllocator: func(r container.Ref) containers.Allocator {
			s, err := open("GetAllocator", r)
			if err != nil {
				return nil
			}
			return s.alloc
		},
		GetNestedTable: func(r container.Ref) *container.Table {
			s, err := open("GetNestedTable", r)
			if err != nil {
				return nil
			}
			return s.nested
		},
	}

	IterableTable = &iterable.Table{
		Name:               "dynarray",
		RegisterIterator:   registerIterator,
		UnregisterIterator: unregisterIterator,
		FirstElement: func(r iterable.Ref) (containers.Ptr, error) {
			return element("FirstElement", r, func(s *state) (uint32, bool) { return 0, s.h.count > 0 })
		},
		LastElement: func(r iterable.Ref) (containers.Ptr, error) {
			return element("LastElement", r, func(s *state) (uint32, bool) { return s.h.count - 1, s.h.count > 0 })
		},
		NextElement: func(r iterable.Ref, index uint32, _ containers.Ptr) (containers.Ptr, error) {
			return element("NextElement", r, func(s *state) (uint32, bool) {
				return index + 1, uint64(index)+1 < uint64(s.h.count)
			})
		},
		PreviousElement: func(r iterable.Ref, index uint32, _ containers.Ptr) (containers.Ptr, error) {
			return element("PreviousElement", r, func(s *state) (uint32, bool) {
				return index - 1, index > 0 && index <= s.h.count
			})
		},
		// positional access is constant time, the caller's position is not needed
		GetElementAt: func(r iterable.Ref, index, _ uint32, _ containers.Ptr) (containers.Ptr, error) {
			return element("GetElementAt", r, func(s *state) (uint32, bool) { return index, index < s.h.count })
		},
		GetElementCount: func(r iterable.Ref) uint32 {
			return field("GetElementCount", containerRef(r), func(s *state) uint32 { return s.h.count })
		},
	}
}

func containerRef(r iterable.Ref) container.Ref {
	return container.Ref{Space: r.Space, Addr: r.Addr}
}

func queryInterface(r container.Ref, tag capability.Tag) any {
	switch tag {
	case capability.Container:
		return r
	case capability.Iterable:
		return iterable.Ref{Table: IterableTable, Space: r.Space, Addr: r.Addr}
	case capability.Allocator:
		s, err := open("Interface", r)
		if err != nil {
			return nil
		}
		return s.alloc
	}
	return nil
}

func field(op string, r container.Ref, get func(*state) uint32) uint32 {
	s, err := open(op, r)
	if err != nil {
		return 0
	}
	return get(s)
}

func element(op string, r iterable.Ref, pick func(*state) (uint32, bool)) (containers.Ptr, error) {
	s, err := open(op, containerRef(r))
	if err != nil {
		return containers.Null, err
	}
	i, ok := pick(s)
	if !ok {
		return containers.Null, nil
	}
	return s.slot(i), nil
}

func isValid(r container.Ref) bool {
	s, err := open("IsValid", r)
	if err != nil {
		return false
	}
	h := s.h
	return h.count <= h.capacity &&
		(h.data == 0) == (h.capacity == 0) &&
		h.capacity <= s.maxElements()
}

func registerIterator(r iterable.Ref, it iterator.Iterator) error {
	const op = "RegisterIterator"
	s, err := open(op, containerRef(r))
	if err != nil {
		return err
	}
	if s.h.iter != 0 {
		if cur, ok := iterator.Lookup(resource.Handle(s.h.iter)); ok && cur == it {
			return nil
		}
		return errors.InvalidParameter(errors.PhaseIterable, op, "another iterator is registered")
	}
	h := iterator.Register(it)
	if h == 0 {
		return errors.New(errors.PhaseIterable, errors.KindGeneralFailure).
			Op(op).
			Detail("registry refused iterator handle").
			Build()
	}
	s.h.iter = uint32(h)
	return s.save(op)
}

func unregisterIterator(r iterable.Ref, it iterator.Iterator) error {
	const op = "UnregisterIterator"
	s, err := open(op, containerRef(r))
	if err != nil {
		return err
	}
	cur, ok := iterator.Lookup(resource.Handle(s.h.iter))
	if s.h.iter == 0 || !ok || cur != it {
		return errors.InvalidParameter(errors.PhaseIterable, op, "iterator is not registered")
	}
	iterator.Unregister(resource.Handle(s.h.iter))
	s.h.iter = 0
	return s.save(op)
}
