package resource

import (
	"errors"
	"reflect"
	"sync"
)

var (
	ErrClosed = errors.New("resource backend closed")
	ErrFull   = errors.New("resource backend handle space exhausted")
)

// LocalBackend is an in-memory handle store with reference counts and an
// identity index for interned values.
type LocalBackend struct {
	entries  []entry
	freeList []Handle
	index    map[internKey]Handle
	mu       sync.RWMutex
	closed   bool
}

type entry struct {
	value    any
	kind     Kind
	refs     uint32
	interned bool
	valid    bool
}

type internKey struct {
	value any
	kind  Kind
}

// NewLocalBackend creates a new in-memory backend.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{
		entries:  make([]entry, 0, 64),
		freeList: make([]Handle, 0, 16),
		index:    make(map[internKey]Handle),
	}
}

// interned values must be usable as map keys
func internable(value any) bool {
	if value == nil {
		return false
	}
	return reflect.TypeOf(value).Comparable()
}

func (b *LocalBackend) store(e entry) (Handle, error) {
	if len(b.freeList) > 0 {
		handle := b.freeList[len(b.freeList)-1]
		b.freeList = b.freeList[:len(b.freeList)-1]
		b.entries[handle-1] = e
		return handle, nil
	}
	if uint64(len(b.entries)) >= uint64(^uint32(0)) {
		return 0, ErrFull
	}
	b.entries = append(b.entries, e)
	return Handle(len(b.entries)), nil
}

// Create stores a value and returns a new handle.
func (b *LocalBackend) Create(kind Kind, value any) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}
	return b.store(entry{kind: kind, value: value, refs: 1, valid: true})
}

// Intern returns the existing handle for value, taking a reference, or
// stores it. created reports whether a new entry was made.
func (b *LocalBackend) Intern(kind Kind, value any) (handle Handle, created bool, err error) {
	if !internable(value) {
		h, err := b.Create(kind, value)
		return h, err == nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, false, ErrClosed
	}

	key := internKey{value: value, kind: kind}
	if h, ok := b.index[key]; ok {
		b.entries[h-1].refs++
		return h, false, nil
	}
	h, err := b.store(entry{kind: kind, value: value, refs: 1, interned: true, valid: true})
	if err != nil {
		return 0, false, err
	}
	b.index[key] = h
	return h, true, nil
}

func (b *LocalBackend) lookup(handle Handle) *entry {
	if handle == 0 {
		return nil
	}
	idx := handle - 1
	if int(idx) >= len(b.entries) {
		return nil
	}
	e := &b.entries[idx]
	if !e.valid {
		return nil
	}
	return e
}

// Get retrieves a value by handle.
func (b *LocalBackend) Get(handle Handle) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e := b.lookup(handle)
	if e == nil {
		return nil, false
	}
	return e.value, true
}

// Kind returns the kind a handle was registered with.
func (b *LocalBackend) Kind(handle Handle) (Kind, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e := b.lookup(handle)
	if e == nil {
		return KindNone, false
	}
	return e.kind, true
}

// Refs returns the reference count of a handle.
func (b *LocalBackend) Refs(handle Handle) uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e := b.lookup(handle)
	if e == nil {
		return 0
	}
	return e.refs
}

func (b *LocalBackend) release(handle Handle, e *entry) any {
	value := e.value
	if e.interned {
		delete(b.index, internKey{value: value, kind: e.kind})
	}
	*e = entry{}
	b.freeList = append(b.freeList, handle)
	return value
}

// Unref drops one reference. It returns (value, true) when that was the
// last one and the entry is gone.
func (b *LocalBackend) Unref(handle Handle) (any, bool, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.lookup(handle)
	if e == nil {
		return nil, false, false
	}
	e.refs--
	if e.refs > 0 {
		return nil, false, true
	}
	return b.release(handle, e), true, true
}

// Drop removes a value regardless of its reference count.
func (b *LocalBackend) Drop(handle Handle) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.lookup(handle)
	if e == nil {
		return nil, false
	}
	return b.release(handle, e), true
}

// Close releases all values.
func (b *LocalBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for i := range b.entries {
		if b.entries[i].valid {
			if d, ok := b.entries[i].value.(Dropper); ok {
				d.Drop()
			}
		}
	}

	b.entries = nil
	b.freeList = nil
	b.index = nil
	return nil
}

// Len returns the number of registered values.
func (b *LocalBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.entries) - len(b.freeList)
}

// Each iterates over all registered values.
func (b *LocalBackend) Each(fn func(Handle, Kind, any) bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i, e := range b.entries {
		if e.valid {
			if !fn(Handle(i+1), e.kind, e.value) {
				break
			}
		}
	}
}
