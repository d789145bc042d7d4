package container

import (
	"testing"

	"github.com/wippyai/containers"
	"github.com/wippyai/containers/capability"
	"github.com/wippyai/containers/errors"
	"github.com/wippyai/containers/memory"
	"github.com/wippyai/containers/resource"
)

var box, other *Table

func init() {
	box = boxKind()
	other = otherKind()
}

// boxKind is a one-element container: {table u32, value u32}.
func boxKind() *Table {
	return &Table{
		Name:      "box",
		StateSize: 8,
		Initialize: func(r Ref, elemSize uint32, _ containers.Allocator, _ *Table) error {
			if elemSize != 4 {
				return errors.InvalidParameter(errors.PhaseContainer, "Initialize", "box holds 4 bytes")
			}
			_ = r.Space.WriteU32(uint32(r.Addr)+4, 0)
			return r.Space.WriteU32(uint32(r.Addr), uint32(Register(box)))
		},
		Destroy: func(r Ref) error {
			h, _ := r.Space.ReadU32(uint32(r.Addr))
			Unregister(resource.Handle(h))
			return r.Space.WriteU32(uint32(r.Addr), 0)
		},
		Copy: func(dst, src Ref) error {
			v, _ := src.Space.ReadU32(uint32(src.Addr) + 4)
			return dst.Space.WriteU32(uint32(dst.Addr)+4, v)
		},
		GetSize:        func(Ref) uint32 { return 1 },
		IsValid:        func(Ref) bool { return true },
		GetElementSize: func(Ref) uint32 { return 4 },
		AccessElement: func(r Ref, index uint32) (containers.Ptr, error) {
			if index != 0 {
				return containers.Null, errors.OutOfRange(errors.PhaseContainer, "AccessElement", index, 1, 1)
			}
			return r.Addr.Add(4), nil
		},
		Interface: func(r Ref, tag capability.Tag) any {
			if tag == capability.Container {
				return r
			}
			return nil
		},
	}
}

// otherKind has the same shape but is a different kind.
func otherKind() *Table {
	return &Table{
		Name:      "other",
		StateSize: 8,
		Initialize: func(r Ref, _ uint32, _ containers.Allocator, _ *Table) error {
			return r.Space.WriteU32(uint32(r.Addr), uint32(Register(other)))
		},
		Copy: func(Ref, Ref) error { return nil },
	}
}

type nopAlloc struct{ space containers.Space }

func (a nopAlloc) Alloc(uint32) containers.Ptr { return containers.Null }
func (a nopAlloc) Free(containers.Ptr) error   { return nil }
func (a nopAlloc) Space() containers.Space     { return a.space }

func setup(t *testing.T) (containers.Space, containers.Allocator) {
	t.Helper()
	s := memory.NewLinear(memory.DefaultLinearConfig())
	return s, nopAlloc{space: s}
}

func TestInitializeAndDispatch(t *testing.T) {
	space, alloc := setup(t)
	r := Ref{Space: space, Addr: 64}

	if err := Initialize(box, r, 4, alloc, nil); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	tbl, err := TableOf(r)
	if err != nil || tbl != box {
		t.Fatalf("TableOf = %v, %v", tbl, err)
	}

	n, err := GetSize(r)
	if err != nil || n != 1 {
		t.Fatalf("GetSize = %d, %v", n, err)
	}
	if !IsValid(r) {
		t.Fatal("IsValid = false")
	}

	p, err := AccessElement(r, 0)
	if err != nil || p != 68 {
		t.Fatalf("AccessElement = %d, %v", p, err)
	}
	if _, err := AccessElement(r, 1); !errors.Is(err, errors.ErrInvalidParameter) {
		t.Fatalf("AccessElement(1) error = %v", err)
	}

	if got := capability.Query(r, capability.Container); got != r {
		t.Fatalf("Query(Container) = %v", got)
	}
	if got := capability.Query(r, capability.Iterable); got != nil {
		t.Fatalf("Query(Iterable) = %v, want nil", got)
	}

	if err := Destroy(r); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if IsValid(r) {
		t.Fatal("destroyed container should not be valid")
	}
	if got := capability.Query(r, capability.Container); got != nil {
		t.Fatal("destroyed container should answer no capabilities")
	}
}

func TestEmptySlotsAreUnsupported(t *testing.T) {
	space, alloc := setup(t)
	r := Ref{Space: space, Addr: 64}
	if err := Initialize(box, r, 4, alloc, nil); err != nil {
		t.Fatal(err)
	}
	defer Destroy(r)

	tests := []struct {
		name string
		run  func() error
	}{
		{"Erase", func() error { return Erase(r) }},
		{"Move", func() error { return Move(r, Ref{Space: space, Addr: 64}) }},
		{"InsertRange", func() error { return InsertRange(r, 0, 1, 8) }},
		{"RemoveRange", func() error { return RemoveRange(r, 0, 1) }},
		{"SwapValues", func() error { return SwapValues(r, 0, 0) }},
		{"IsEmpty", func() error { _, err := IsEmpty(r); return err }},
		{"IsElementContainer", func() error { _, err := IsElementContainer(r); return err }},
		{"GetMaxElements", func() error { _, err := GetMaxElements(r); return err }},
		{"GetAllocator", func() error { _, err := GetAllocator(r); return err }},
		{"GetNestedTable", func() error { _, err := GetNestedTable(r); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if !errors.Is(err, errors.ErrUnsupported) {
				t.Fatalf("error = %v, want unsupported", err)
			}
			if errors.StatusOf(err) != errors.StatusUnsupported {
				t.Fatalf("status = %v", errors.StatusOf(err))
			}
		})
	}

	if err := Initialize(&Table{Name: "empty"}, Ref{Space: space, Addr: 128}, 4, alloc, nil); !errors.Is(err, errors.ErrUnsupported) {
		t.Fatalf("Initialize through an empty slot: %v", err)
	}
}

func TestInitializeValidation(t *testing.T) {
	space, alloc := setup(t)

	tests := []struct {
		name   string
		table  *Table
		ref    Ref
		elem   uint32
		alloc  containers.Allocator
		nested *Table
	}{
		{"nil table", nil, Ref{Space: space, Addr: 64}, 4, alloc, nil},
		{"nil space", box, Ref{Addr: 64}, 4, alloc, nil},
		{"null address", box, Ref{Space: space}, 4, alloc, nil},
		{"state past end", box, Ref{Space: space, Addr: containers.Ptr(space.Size() - 4)}, 4, alloc, nil},
		{"zero element size", box, Ref{Space: space, Addr: 64}, 0, alloc, nil},
		{"nil allocator", box, Ref{Space: space, Addr: 64}, 4, nil, nil},
		{"element smaller than nested state", box, Ref{Space: space, Addr: 64}, 4, alloc, &Table{Name: "big", StateSize: 32}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Initialize(tt.table, tt.ref, tt.elem, tt.alloc, tt.nested)
			if !errors.Is(err, errors.ErrInvalidParameter) {
				t.Fatalf("error = %v, want invalid parameter", err)
			}
		})
	}
}

func TestResolveFailures(t *testing.T) {
	space, _ := setup(t)

	// zeroed state
	if _, err := GetSize(Ref{Space: space, Addr: 256}); !errors.Is(err, errors.ErrInvalidParameter) {
		t.Fatalf("uninitialized: %v", err)
	}

	// a handle nothing was registered under
	_ = space.WriteU32(256, 0xFFFFFF)
	_, err := GetSize(Ref{Space: space, Addr: 256})
	if !errors.Is(err, errors.ErrInvalidHandle) {
		t.Fatalf("dangling handle: %v", err)
	}
}

func TestCopyRequiresSameKind(t *testing.T) {
	space, alloc := setup(t)
	a := Ref{Space: space, Addr: 64}
	b := Ref{Space: space, Addr: 96}
	c := Ref{Space: space, Addr: 128}

	if err := Initialize(box, a, 4, alloc, nil); err != nil {
		t.Fatal(err)
	}
	if err := Initialize(box, b, 4, alloc, nil); err != nil {
		t.Fatal(err)
	}
	if err := Initialize(other, c, 4, alloc, nil); err != nil {
		t.Fatal(err)
	}

	_ = space.WriteU32(68, 1234)
	if err := Copy(b, a); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if v, _ := space.ReadU32(100); v != 1234 {
		t.Fatalf("copied value = %d", v)
	}

	if err := Copy(c, a); !errors.Is(err, errors.ErrInvalidParameter) {
		t.Fatalf("Copy across kinds: %v", err)
	}
	if err := Move(c, a); !errors.Is(err, errors.ErrInvalidParameter) {
		t.Fatalf("Move across kinds: %v", err)
	}
}

func TestRegisterInterns(t *testing.T) {
	h1 := Register(box)
	h2 := Register(box)
	defer Unregister(h1)
	defer Unregister(h2)

	if h1 == 0 || h1 != h2 {
		t.Fatalf("Register = %d, %d", h1, h2)
	}
	if got, ok := Lookup(h1); !ok || got != box {
		t.Fatal("Lookup failed")
	}
	if Register(nil) != 0 {
		t.Fatal("Register(nil) should return 0")
	}
}
