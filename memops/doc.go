// Package memops is the memory engine: byte-exact copy, set, compare, swap
// and move-and-clear over a containers.Space.
//
// # Fast Path
//
// With SizeOptimization on, a transfer of n bytes is split into an unaligned
// head, a run of naturally aligned words and an unaligned tail. The word size
// is the widest one not exceeding Config.BusWidth for which both pointers
// share the same alignment remainder (any remainder when UnalignedAccess is
// set). Edges are finished byte by byte, or with Recursive by the next
// smaller word size. Words are read and written little-endian, so every path
// produces the same bytes as the matching Basic function:
//
//	e := memops.New(space, memops.DefaultConfig())
//	err := e.Copy(dst, src, n)      // overlap-safe
//	same, err := e.Compare(a, b, n) // equality only
//
// # Swap
//
// Swap moves up to Config.SwapThreshold bytes through a fixed scratch array
// and borrows a block from the supplied allocator above that. The block is
// released on every return path.
package memops
