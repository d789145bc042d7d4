package resource

// Typed gives type-safe access to the values of one kind in a registry.
type Typed[T comparable] struct {
	table *Registry
	kind  Kind
}

// NewTyped creates a typed view of table for kind.
func NewTyped[T comparable](table *Registry, kind Kind) *Typed[T] {
	return &Typed[T]{table: table, kind: kind}
}

// Kind returns the kind this view reads and writes.
func (t *Typed[T]) Kind() Kind {
	return t.kind
}

// Intern registers value, or takes another reference to its existing handle.
func (t *Typed[T]) Intern(value T) Handle {
	return t.table.Intern(t.kind, value)
}

// Get retrieves a value by handle.
func (t *Typed[T]) Get(handle Handle) (T, bool) {
	var zero T
	v, ok := t.table.GetTyped(handle, t.kind)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Release drops one reference to handle.
func (t *Typed[T]) Release(handle Handle) bool {
	if _, ok := t.table.GetTyped(handle, t.kind); !ok {
		return false
	}
	return t.table.Release(handle)
}

// Len returns the number of values of this kind.
func (t *Typed[T]) Len() int {
	count := 0
	t.table.backend.Each(func(_ Handle, k Kind, _ any) bool {
		if k == t.kind {
			count++
		}
		return true
	})
	return count
}

// Each iterates over the values of this kind.
func (t *Typed[T]) Each(fn func(Handle, T) bool) {
	t.table.backend.Each(func(h Handle, k Kind, v any) bool {
		if k != t.kind {
			return true
		}
		typed, ok := v.(T)
		if !ok {
			return true
		}
		return fn(h, typed)
	})
}
