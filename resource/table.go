package resource

import (
	"sync"
)

// Registry implements the Table interface using a LocalBackend for storage.
// It is safe for concurrent use.
type Registry struct {
	backend   *LocalBackend
	observers []Observer
	obsMu     sync.RWMutex
	closed    bool
	closeMu   sync.RWMutex
}

// NewTable creates a new registry with a LocalBackend.
func NewTable() *Registry {
	return &Registry{
		backend: NewLocalBackend(),
	}
}

var (
	global     *Registry
	globalOnce sync.Once
)

// Global returns the process-wide registry. Handles written into linear
// memory by the container packages resolve through it.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewTable()
	})
	return global
}

func (t *Registry) isClosed() bool {
	t.closeMu.RLock()
	defer t.closeMu.RUnlock()
	return t.closed
}

// Insert adds a value and returns a fresh handle, or 0 when closed.
func (t *Registry) Insert(kind Kind, value any) Handle {
	if t.isClosed() {
		return 0
	}

	handle, err := t.backend.Create(kind, value)
	if err != nil {
		return 0
	}

	t.notify(Event{
		Type:   EventCreated,
		Handle: handle,
		Kind:   kind,
		Value:  value,
	})

	return handle
}

// Intern returns the handle already assigned to value under kind, or
// registers it. Every call takes a reference.
func (t *Registry) Intern(kind Kind, value any) Handle {
	if t.isClosed() {
		return 0
	}

	handle, created, err := t.backend.Intern(kind, value)
	if err != nil {
		return 0
	}

	if created {
		t.notify(Event{
			Type:   EventCreated,
			Handle: handle,
			Kind:   kind,
			Value:  value,
		})
	}

	return handle
}

// Get retrieves a value by handle.
func (t *Registry) Get(handle Handle) (any, bool) {
	return t.backend.Get(handle)
}

// GetTyped retrieves a value only if it was registered with kind.
func (t *Registry) GetTyped(handle Handle, kind Kind) (any, bool) {
	actual, ok := t.backend.Kind(handle)
	if !ok || actual != kind {
		return nil, false
	}
	return t.backend.Get(handle)
}

// Refs returns the number of outstanding references to handle.
func (t *Registry) Refs(handle Handle) uint32 {
	return t.backend.Refs(handle)
}

// Release drops one reference. The value leaves the registry with its last
// reference. It reports whether handle was valid.
func (t *Registry) Release(handle Handle) bool {
	kind, _ := t.backend.Kind(handle)
	value, dropped, ok := t.backend.Unref(handle)
	if !ok {
		return false
	}
	if dropped {
		t.dropped(handle, kind, value)
	}
	return true
}

// Remove drops a value regardless of outstanding references and returns
// (value, true) if found.
func (t *Registry) Remove(handle Handle) (any, bool) {
	kind, _ := t.backend.Kind(handle)
	value, ok := t.backend.Drop(handle)
	if !ok {
		return nil, false
	}
	t.dropped(handle, kind, value)
	return value, true
}

func (t *Registry) dropped(handle Handle, kind Kind, value any) {
	if d, ok := value.(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{
		Type:   EventDropped,
		Handle: handle,
		Kind:   kind,
		Value:  value,
	})
}

// Subscribe adds an observer for lifecycle events.
func (t *Registry) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Registry) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered values.
func (t *Registry) Len() int {
	return t.backend.Len()
}

// Clear drops all values.
func (t *Registry) Clear() {
	// Collect handles first to avoid holding lock during Remove
	var handles []Handle
	t.backend.Each(func(h Handle, _ Kind, _ any) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		t.Remove(h)
	}
}

// Close releases all values and stops accepting registrations.
func (t *Registry) Close() error {
	t.closeMu.Lock()
	t.closed = true
	t.closeMu.Unlock()

	return t.backend.Close()
}

func (t *Registry) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}

var _ Table = (*Registry)(nil)
