package iterable

import (
	"testing"

	"github.com/wippyai/containers"
	"github.com/wippyai/containers/errors"
	"github.com/wippyai/containers/iterator"
	"github.com/wippyai/containers/memory"
)

// fake is an iterable whose elements are 4-byte slots starting at base.
type fake struct {
	base     containers.Ptr
	count    uint32
	observer iterator.Iterator
}

func (f *fake) at(i uint32) containers.Ptr {
	if i >= f.count {
		return containers.Null
	}
	return f.base.Add(4 * i)
}

// insert and remove mutate first and notify afterwards.
func (f *fake) insert(i, k uint32) error {
	f.count += k
	return iterator.NotifyInsertion(f.observer, i, k, f.count)
}

func (f *fake) remove(i, k uint32) error {
	f.count -= k
	return iterator.NotifyRemoval(f.observer, i, k, f.count)
}

func (f *fake) relocate(base containers.Ptr) error {
	f.base = base
	return iterator.Update(f.observer)
}

func fakeTable(f *fake) *Table {
	return &Table{
		Name: "fake",
		RegisterIterator: func(_ Ref, it iterator.Iterator) error {
			if f.observer != nil && f.observer != it {
				return errors.InvalidParameter(errors.PhaseIterable, "RegisterIterator", "slot taken")
			}
			f.observer = it
			return nil
		},
		UnregisterIterator: func(_ Ref, it iterator.Iterator) error {
			if f.observer != it {
				return errors.InvalidParameter(errors.PhaseIterable, "UnregisterIterator", "not registered")
			}
			f.observer = nil
			return nil
		},
		FirstElement: func(Ref) (containers.Ptr, error) { return f.at(0), nil },
		LastElement: func(Ref) (containers.Ptr, error) {
			if f.count == 0 {
				return containers.Null, nil
			}
			return f.at(f.count - 1), nil
		},
		NextElement:     func(_ Ref, i uint32, _ containers.Ptr) (containers.Ptr, error) { return f.at(i + 1), nil },
		PreviousElement: func(_ Ref, i uint32, _ containers.Ptr) (containers.Ptr, error) { return f.at(i - 1), nil },
		GetElementAt: func(_ Ref, i, _ uint32, _ containers.Ptr) (containers.Ptr, error) {
			return f.at(i), nil
		},
		GetElementCount: func(Ref) uint32 { return f.count },
	}
}

func newFake(count uint32) (*fake, Ref) {
	f := &fake{base: 64, count: count}
	space := memory.NewLinear(memory.DefaultLinearConfig())
	return f, Ref{Table: fakeTable(f), Space: space, Addr: 8}
}

func TestCursor_Walk(t *testing.T) {
	_, r := newFake(4)
	c := NewCursor()
	if err := c.Attach(r); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	var seen []uint32
	for i, p := range c.All() {
		if p != containers.Ptr(64+4*i) {
			t.Fatalf("element %d at %d", i, p)
		}
		seen = append(seen, i)
	}
	if len(seen) != 4 {
		t.Fatalf("visited %v", seen)
	}
	if c.Valid() {
		t.Fatal("cursor should be past the end")
	}

	if !c.Last() || c.Index() != 3 {
		t.Fatalf("Last: index %d", c.Index())
	}
	if !c.Prev() || c.Index() != 2 {
		t.Fatalf("Prev: index %d", c.Index())
	}
	if !c.Seek(0) || c.Element() != 64 {
		t.Fatalf("Seek(0): %d", c.Element())
	}
	if c.Prev() {
		t.Fatal("Prev before the first element should fail")
	}
	if c.Seek(9) {
		t.Fatal("Seek past the end should fail")
	}
	if c.Err() != nil {
		t.Fatalf("Err = %v", c.Err())
	}
}

func TestCursor_Empty(t *testing.T) {
	_, r := newFake(0)
	c := NewCursor()
	if err := c.Attach(r); err != nil {
		t.Fatal(err)
	}
	if c.First() || c.Last() {
		t.Fatal("empty iterable has no positions")
	}
	if c.Index() != iterator.InvalidIndex || c.Element() != containers.Null {
		t.Fatal("unpositioned cursor should report InvalidIndex and Null")
	}
}

func TestCursor_FollowsInsertion(t *testing.T) {
	tests := []struct {
		name      string
		at, count uint32
		wantIndex uint32
	}{
		{"before", 0, 2, 4},
		{"at position", 2, 1, 3},
		{"after", 3, 5, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, r := newFake(4)
			c := NewCursor()
			_ = c.Attach(r)
			c.Seek(2)

			if err := f.insert(tt.at, tt.count); err != nil {
				t.Fatalf("insert: %v", err)
			}
			if c.Index() != tt.wantIndex {
				t.Fatalf("index = %d, want %d", c.Index(), tt.wantIndex)
			}
			if c.Element() != f.at(tt.wantIndex) {
				t.Fatal("element address not re-derived")
			}
		})
	}
}

func TestCursor_FollowsRemoval(t *testing.T) {
	tests := []struct {
		name      string
		at, count uint32
		valid     bool
		wantIndex uint32
	}{
		{"before", 0, 2, true, 1},
		{"current", 3, 1, false, iterator.InvalidIndex},
		{"range covering current", 1, 3, false, iterator.InvalidIndex},
		{"after", 4, 2, true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, r := newFake(6)
			c := NewCursor()
			_ = c.Attach(r)
			c.Seek(3)

			if err := f.remove(tt.at, tt.count); err != nil {
				t.Fatalf("remove: %v", err)
			}
			if c.Valid() != tt.valid || c.Index() != tt.wantIndex {
				t.Fatalf("valid = %v index = %d, want %v %d", c.Valid(), c.Index(), tt.valid, tt.wantIndex)
			}
		})
	}
}

func TestCursor_UpdateAndInvalidate(t *testing.T) {
	f, r := newFake(3)
	c := NewCursor()
	_ = c.Attach(r)
	c.Seek(1)

	if err := f.relocate(1024); err != nil {
		t.Fatal(err)
	}
	if c.Index() != 1 || c.Element() != 1028 {
		t.Fatalf("after relocation: index %d element %d", c.Index(), c.Element())
	}

	_ = iterator.Invalidate(f.observer)
	if c.Valid() {
		t.Fatal("invalidated cursor should have no position")
	}
	if !c.Attached() {
		t.Fatal("invalidation keeps the registration")
	}
}

func TestCursor_Destruction(t *testing.T) {
	f, r := newFake(3)
	c := NewCursor()
	_ = c.Attach(r)
	c.First()

	if err := iterator.NotifyDestruction(f.observer); err != nil {
		t.Fatal(err)
	}
	if c.Attached() || c.Valid() {
		t.Fatal("destroyed target should detach the cursor")
	}
	if !c.Target().IsZero() {
		t.Fatal("target should be forgotten")
	}
	// no call back into the iterable: the registration is still recorded there
	if f.observer != c {
		t.Fatal("cursor must not unregister during destruction")
	}
	if err := c.Detach(); err != nil {
		t.Fatalf("Detach after destruction: %v", err)
	}
}

func TestCursor_SingleSlot(t *testing.T) {
	f, r := newFake(2)
	a, b := NewCursor(), NewCursor()

	if err := a.Attach(r); err != nil {
		t.Fatal(err)
	}
	if err := Register(r, a); err != nil {
		t.Fatalf("re-registering the same iterator: %v", err)
	}
	if err := b.Attach(r); !errors.Is(err, errors.ErrInvalidParameter) {
		t.Fatalf("second iterator: %v", err)
	}
	if b.Attached() {
		t.Fatal("rejected cursor should stay unattached")
	}

	if err := a.Detach(); err != nil {
		t.Fatal(err)
	}
	if f.observer != nil {
		t.Fatal("Detach should unregister")
	}
	if err := b.Attach(r); err != nil {
		t.Fatalf("attach after the slot is free: %v", err)
	}
}

func TestCursor_RejectsBadNotifications(t *testing.T) {
	c := NewCursor()
	if err := c.OnInsertion(3, 2, 4); !errors.Is(err, errors.ErrInvalidParameter) {
		t.Fatalf("OnInsertion: %v", err)
	}
	if err := c.OnRemoval(5, 1, 4); !errors.Is(err, errors.ErrInvalidParameter) {
		t.Fatalf("OnRemoval: %v", err)
	}
}

func TestDispatch_Validation(t *testing.T) {
	space := memory.NewLinear(memory.DefaultLinearConfig())
	empty := Ref{Table: &Table{}, Space: space, Addr: 8}

	if _, err := First(empty); !errors.Is(err, errors.ErrUnsupported) {
		t.Fatalf("First on empty table: %v", err)
	}
	if _, err := Count(empty); !errors.Is(err, errors.ErrUnsupported) {
		t.Fatalf("Count on empty table: %v", err)
	}
	if err := Register(empty, NewCursor()); !errors.Is(err, errors.ErrUnsupported) {
		t.Fatalf("Register on empty table: %v", err)
	}
	if _, err := First(Ref{}); !errors.Is(err, errors.ErrInvalidParameter) {
		t.Fatalf("First on zero ref: %v", err)
	}
	if err := Register(empty, nil); !errors.Is(err, errors.ErrInvalidParameter) {
		t.Fatalf("Register(nil): %v", err)
	}
}
