package resource

// Handle is an opaque reference to a value in a registry.
// Handle 0 is reserved and always invalid.
type Handle uint32

// Kind tags what a registered value is, so a handle read back from memory
// can be checked before use.
type Kind uint32

const (
	KindNone Kind = iota
	KindContainerTable
	KindIterableTable
	KindAllocator
	KindIterator
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindContainerTable:
		return "container-table"
	case KindIterableTable:
		return "iterable-table"
	case KindAllocator:
		return "allocator"
	case KindIterator:
		return "iterator"
	case KindCustom:
		return "custom"
	}
	return "none"
}

// Event types for registry lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

// Event represents a registry lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	Kind   Kind
	Type   EventType
}

// Observer receives notifications about registry lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// Backend provides the underlying storage for registered values.
type Backend interface {
	// Create stores a value and returns a handle.
	Create(kind Kind, value any) (Handle, error)

	// Get retrieves a value by handle.
	Get(handle Handle) (any, bool)

	// Drop removes a value regardless of its reference count.
	Drop(handle Handle) (any, bool)

	// Close releases all values held by the backend.
	Close() error
}

// Table maps handles to Go values that are referenced from linear memory.
type Table interface {
	// Insert adds a value and returns a fresh handle.
	Insert(kind Kind, value any) Handle

	// Intern returns the handle already assigned to value, or registers it.
	// Each call takes a reference that Release gives back.
	Intern(kind Kind, value any) Handle

	// Get retrieves a value by handle.
	Get(handle Handle) (any, bool)

	// GetTyped retrieves a value only if it was registered with kind.
	GetTyped(handle Handle, kind Kind) (any, bool)

	// Release drops one reference and removes the value at zero.
	Release(handle Handle) bool

	// Remove drops a value regardless of outstanding references.
	Remove(handle Handle) (any, bool)

	// Subscribe adds an observer for lifecycle events.
	Subscribe(Observer)

	// Unsubscribe removes an observer.
	Unsubscribe(Observer)

	// Len returns the number of registered values.
	Len() int

	// Clear drops all values.
	Clear()

	// Close releases all values and stops accepting registrations.
	Close() error
}

// Dropper is optionally implemented by values that need cleanup when they
// leave the registry.
type Dropper interface {
	Drop()
}
