// Package containers provides allocator-agnostic generic containers that live
// entirely inside a linear address space.
//
// Containers, their elements and every buffer they own are bytes in a Space;
// a Ptr is an offset into that space. Nothing is garbage collected: blocks
// come from a caller-supplied Allocator and are returned to it explicitly.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	containers/          Root package with Ptr, Space and the Allocator capability
//	├── memory/          Space backends (Go heap, wazero linear memory)
//	├── memops/          Memory engine: copy, set, compare, swap, move-and-clear
//	├── alloc/           Free-list and bump allocators over a Space
//	├── capability/      Capability tags and the capability query
//	├── container/       Container dispatch table and checked dispatch
//	├── iterator/        Iterator (observer) capability
//	├── iterable/        Iterable dispatch table and the generic Cursor
//	├── dynarray/        Growable array implementing Container and Iterable
//	├── textutil/        ANSI and UTF-16 string helpers over memops
//	├── resource/        Handle registry for Go values referenced from the space
//	└── errors/          Structured error types and the status taxonomy
//
// # Quick Start
//
// Create a space, an allocator and an array of 4-byte elements:
//
//	space := memory.NewLinear(memory.DefaultLinearConfig())
//	a := alloc.NewFreeList(space, alloc.DefaultConfig())
//	if err := containers.InitAllocator(a); err != nil {
//	    log.Fatal(err)
//	}
//
//	arr, err := dynarray.New(a, 4, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer arr.Destroy()
//
//	v := a.Alloc(4)
//	space.WriteU32(uint32(v), 42)
//	arr.Push(v)
//
// # Nested Containers
//
// Arrays of arrays are created with the nested dispatch table and an element
// size of at least the nested header size:
//
//	outer, _ := dynarray.New(a, dynarray.HeaderSize, dynarray.Table)
//
// Inserting into such an array initializes each new slot through the nested
// table and deep-copies the supplied source array into it.
//
// # Thread Safety
//
// Nothing in the core locks. Every operation assumes exclusive access to the
// containers, allocators and iterators it touches for the duration of the
// call; callers sharing them across goroutines must synchronize externally.
// Only the handle registry in package resource is safe for concurrent use.
package containers
