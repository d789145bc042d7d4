// Package alloc provides allocators that satisfy containers.Allocator.
//
// FreeList is a general purpose first-fit allocator with coalescing. Bump is
// an arena for short-lived work where blocks are released in bulk.
//
// Both allocate 8-byte aligned blocks from a Space starting at Config.Base,
// grow the space on demand, never return Null for a successful request, and
// reject Free of a pointer they did not hand out with a not-allocated error.
// They are not safe for concurrent use.
package alloc
