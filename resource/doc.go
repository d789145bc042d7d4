// Package resource maps uint32 handles to Go values.
//
// Containers keep their state in linear memory, which can only hold
// numbers. Values such as dispatch tables, allocators and iterators are
// registered here and the resulting handle is written into memory instead.
//
// # Handles
//
//	table := resource.NewTable()
//
//	// Intern a value: the same value always gets the same handle
//	h := table.Intern(resource.KindAllocator, alloc)
//
//	// Kind-checked retrieval of a handle read back from memory
//	v, ok := table.GetTyped(h, resource.KindAllocator)
//
//	// Give the reference back; the value leaves with its last reference
//	table.Release(h)
//
// Handle 0 is never issued, so a zeroed word in memory reads as "no value".
// Released handles are reused.
//
// # Observers
//
// Observers are told about every value that enters or leaves a table:
//
//	table.Subscribe(obs) // obs.OnResourceEvent(resource.Event)
//
// # Concurrency
//
// A Registry is safe for concurrent use. It is the only shared structure in
// this module; everything that lives in linear memory is single-owner.
package resource
