package iterable

import (
	"iter"

	"github.com/wippyai/containers"
	"github.com/wippyai/containers/errors"
	"github.com/wippyai/containers/iterator"
)

// Cursor is an iterator over any iterable. It keeps its position across
// insertions and removals it is told about:
//
//   - insertion at or before the position moves it forward by count
//   - removal of the current element drops the position
//   - removal before the position moves it back by count
//   - relocation re-derives the element address
//   - destruction detaches without calling back
//
// Navigation methods report whether the cursor is positioned afterwards.
// The first error they hit is kept in Err.
type Cursor struct {
	target   Ref
	attached bool
	index    uint32
	elem     containers.Ptr
	err      error
}

// NewCursor returns an unattached cursor.
func NewCursor() *Cursor {
	return &Cursor{index: iterator.InvalidIndex}
}

// Attach registers the cursor with r, detaching from any previous target.
func (c *Cursor) Attach(r Ref) error {
	if c.attached {
		if err := c.Detach(); err != nil {
			return err
		}
	}
	if err := Register(r, c); err != nil {
		return err
	}
	c.target = r
	c.attached = true
	c.reset()
	c.err = nil
	return nil
}

// Detach unregisters the cursor. Detaching an unattached cursor is a no-op.
func (c *Cursor) Detach() error {
	if !c.attached {
		return nil
	}
	err := Unregister(c.target, c)
	c.target = Ref{}
	c.attached = false
	c.reset()
	return err
}

// Attached reports whether the cursor is registered with an iterable.
func (c *Cursor) Attached() bool {
	return c.attached
}

// Target returns the iterable the cursor is attached to.
func (c *Cursor) Target() Ref {
	return c.target
}

// Valid reports whether the cursor is positioned on an element.
func (c *Cursor) Valid() bool {
	return c.attached && c.index != iterator.InvalidIndex
}

// Index returns the current position, or iterator.InvalidIndex.
func (c *Cursor) Index() uint32 {
	if !c.Valid() {
		return iterator.InvalidIndex
	}
	return c.index
}

// Element returns the address of the current element, or Null.
func (c *Cursor) Element() containers.Ptr {
	if !c.Valid() {
		return containers.Null
	}
	return c.elem
}

// Err returns the first error a navigation method ran into.
func (c *Cursor) Err() error {
	return c.err
}

func (c *Cursor) reset() {
	c.index = iterator.InvalidIndex
	c.elem = containers.Null
}

func (c *Cursor) settle(index uint32, p containers.Ptr, err error) bool {
	if err != nil {
		if c.err == nil {
			c.err = err
		}
		c.reset()
		return false
	}
	if p == containers.Null {
		c.reset()
		return false
	}
	c.index = index
	c.elem = p
	return true
}

// First moves to the first element.
func (c *Cursor) First() bool {
	if !c.attached {
		return false
	}
	p, err := First(c.target)
	return c.settle(0, p, err)
}

// Last moves to the last element.
func (c *Cursor) Last() bool {
	if !c.attached {
		return false
	}
	n, err := Count(c.target)
	if err != nil || n == 0 {
		return c.settle(0, containers.Null, err)
	}
	p, err := Last(c.target)
	return c.settle(n-1, p, err)
}

// Next moves one element forward.
func (c *Cursor) Next() bool {
	if !c.Valid() {
		return false
	}
	p, err := Next(c.target, c.index, c.elem)
	return c.settle(c.index+1, p, err)
}

// Prev moves one element back.
func (c *Cursor) Prev() bool {
	if !c.Valid() {
		return false
	}
	if c.index == 0 {
		c.reset()
		return false
	}
	p, err := Previous(c.target, c.index, c.elem)
	return c.settle(c.index-1, p, err)
}

// Seek moves to index.
func (c *Cursor) Seek(index uint32) bool {
	if !c.attached || index == iterator.InvalidIndex {
		return false
	}
	p, err := ElementAt(c.target, index, c.index, c.elem)
	return c.settle(index, p, err)
}

// All iterates from the first element to the last. Stopping early leaves
// the cursor on the last element yielded.
func (c *Cursor) All() iter.Seq2[uint32, containers.Ptr] {
	return func(yield func(uint32, containers.Ptr) bool) {
		for ok := c.First(); ok; ok = c.Next() {
			if !yield(c.index, c.elem) {
				return
			}
		}
	}
}

// rederive looks up the element at the current index again.
func (c *Cursor) rederive() error {
	if !c.Valid() {
		return nil
	}
	p, err := ElementAt(c.target, c.index, iterator.InvalidIndex, containers.Null)
	if err != nil {
		c.reset()
		return err
	}
	if p == containers.Null {
		c.reset()
		return nil
	}
	c.elem = p
	return nil
}

// InvalidateIteration drops the position.
func (c *Cursor) InvalidateIteration() error {
	c.reset()
	return nil
}

// UpdateIteration re-derives the element address.
func (c *Cursor) UpdateIteration() error {
	return c.rederive()
}

// OnInsertion shifts the position past the inserted elements.
func (c *Cursor) OnInsertion(index, count, newSize uint32) error {
	if err := iterator.CheckInsertion(index, count, newSize); err != nil {
		return err
	}
	if !c.Valid() {
		return nil
	}
	if index <= c.index {
		if uint64(c.index)+uint64(count) >= uint64(newSize) {
			c.reset()
			return errors.OutOfRange(errors.PhaseIterator, "OnInsertion", c.index, count, newSize)
		}
		c.index += count
	}
	return c.rederive()
}

// OnRemoval drops or shifts the position.
func (c *Cursor) OnRemoval(index, count, newSize uint32) error {
	if err := iterator.CheckRemoval(index, count, newSize); err != nil {
		return err
	}
	if !c.Valid() {
		return nil
	}
	switch {
	case c.index < index:
	case uint64(c.index) < uint64(index)+uint64(count):
		c.reset()
		return nil
	default:
		c.index -= count
	}
	return c.rederive()
}

// OnDestruction forgets the target without calling back into it.
func (c *Cursor) OnDestruction() error {
	c.target = Ref{}
	c.attached = false
	c.reset()
	return nil
}

var _ iterator.Iterator = (*Cursor)(nil)
