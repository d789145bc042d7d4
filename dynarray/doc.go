// Package dynarray implements a growable array of fixed-size elements whose
// state and buffer live in a containers.Space.
//
// The 32-byte state holds little-endian u32 fields: container table handle,
// element size, count, capacity, buffer address, allocator handle, nested
// table handle and registered iterator handle. Because the state has a
// fixed size, arrays can hold other containers, arrays included, as
// elements:
//
//	outer, _ := dynarray.New(alloc, dynarray.HeaderSize, dynarray.Table)
//	inner, _ := dynarray.New(alloc, 4, nil)
//	_ = inner.PushBytes([]byte{1, 0, 0, 0})
//	_ = outer.Push(inner.Addr()) // deep copy
//
// Growth takes max(required, 2*capacity, 4) elements. Every buffer
// relocation is reported to the registered iterator with UpdateIteration,
// insertions and removals with their index, count and the new size, and
// whole-content replacement with InvalidateIteration. Iterators registered
// with nested arrays are detached with a destruction notice whenever the
// outer array moves their state.
//
// Arrays are not safe for concurrent use.
package dynarray
