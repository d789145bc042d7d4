package alloc

import (
	"go.uber.org/zap"

	"github.com/wippyai/containers"
	"github.com/wippyai/containers/errors"
	"github.com/wippyai/containers/memops"
)

const (
	headerSize = 8
	minBlock   = headerSize + Alignment

	blockFree uint32 = 0
	blockUsed uint32 = 1
)

// FreeList is a first-fit allocator over a Space.
//
// Blocks are laid out back to back from Base. Each block starts with an
// 8-byte header {size u32, state u32} stored in the space; size includes the
// header. Freed neighbours are coalesced, and a free block at the top of the
// heap is returned to the unused area.
type FreeList struct {
	space  containers.Space
	engine *memops.Engine
	cfg    Config

	top   uint32            // end of the last block
	live  map[uint32]uint32 // payload -> requested size
	stats Stats
	ready bool
}

// NewFreeList creates a free-list allocator over space.
func NewFreeList(space containers.Space, cfg Config) *FreeList {
	cfg = cfg.normalized()
	f := &FreeList{
		space: space,
		cfg:   cfg,
	}
	if space != nil {
		f.engine = memops.New(space, cfg.Memops)
	}
	f.reset()
	return f
}

func (f *FreeList) reset() {
	f.top = f.cfg.Base
	f.live = make(map[uint32]uint32)
	f.ready = f.space != nil
}

// Space returns the space blocks live in.
func (f *FreeList) Space() containers.Space {
	return f.space
}

// Init prepares the allocator, discarding any previous blocks.
func (f *FreeList) Init() error {
	if f.space == nil {
		return errors.NilHandle(errors.PhaseAllocator, "Init", "space")
	}
	f.reset()
	return nil
}

// Cleanup releases every block at once. The allocator stays usable.
func (f *FreeList) Cleanup() error {
	if f.space == nil {
		return errors.NilHandle(errors.PhaseAllocator, "Cleanup", "space")
	}
	f.stats.Frees += uint64(len(f.live))
	f.stats.LiveBlocks = 0
	f.stats.LiveBytes = 0
	f.reset()
	return nil
}

// IsUsable reports whether the allocator has a space to serve from.
func (f *FreeList) IsUsable() bool {
	return f.ready
}

// Stats returns a snapshot of the allocator counters.
func (f *FreeList) Stats() Stats {
	return f.stats
}

func (f *FreeList) header(block uint32) (size, state uint32) {
	size, _ = f.space.ReadU32(block)
	state, _ = f.space.ReadU32(block + 4)
	return size, state
}

func (f *FreeList) setHeader(block, size, state uint32) {
	_ = f.space.WriteU32(block, size)
	_ = f.space.WriteU32(block+4, state)
}

// Alloc returns a block of at least size bytes, or Null.
func (f *FreeList) Alloc(size uint32) containers.Ptr {
	if !f.ready || size == 0 {
		return containers.Null
	}
	need64 := uint64(align(size)) + headerSize
	if size > ^uint32(0)-Alignment || need64 > uint64(^uint32(0)) {
		f.stats.Failures++
		return containers.Null
	}
	need := uint32(need64)

	var last uint32
	lastFree := false
	for b := f.cfg.Base; b < f.top; {
		bsize, state := f.header(b)
		if state == blockFree && bsize >= need {
			f.split(b, bsize, need)
			return f.commit(b, size)
		}
		last, lastFree = b, state == blockFree
		b += bsize
	}

	// extend the heap, reusing a free block at the top
	start := f.top
	if lastFree {
		start = last
	}
	end := uint64(start) + uint64(need)
	if !reserve(f.space, f.cfg, end, &f.stats) {
		f.stats.Failures++
		Logger().Debug("allocation failed",
			zap.Uint32("size", size),
			zap.Uint32("top", f.top),
		)
		return containers.Null
	}
	f.setHeader(start, need, blockUsed)
	f.top = uint32(end)
	return f.commit(start, size)
}

func (f *FreeList) split(block, bsize, need uint32) {
	if bsize-need >= minBlock {
		f.setHeader(block+need, bsize-need, blockFree)
		bsize = need
	}
	f.setHeader(block, bsize, blockUsed)
}

func (f *FreeList) commit(block, size uint32) containers.Ptr {
	p := block + headerSize
	f.live[p] = size
	f.stats.Allocs++
	f.stats.LiveBlocks++
	f.stats.LiveBytes += uint64(size)
	return containers.Ptr(p)
}

// AllocZero returns a zero-filled block of at least size bytes, or Null.
func (f *FreeList) AllocZero(size uint32) containers.Ptr {
	p := f.Alloc(size)
	if p == containers.Null {
		return p
	}
	if err := f.engine.Zero(p, size); err != nil {
		Logger().Warn("zero fill failed", zap.Uint32("ptr", uint32(p)), zap.Error(err))
		_ = f.Free(p)
		return containers.Null
	}
	return p
}

// Free releases a block returned by Alloc or AllocZero.
func (f *FreeList) Free(p containers.Ptr) error {
	if p == containers.Null {
		return errors.NilHandle(errors.PhaseAllocator, "Free", "block")
	}
	size, ok := f.live[uint32(p)]
	if !ok {
		return errors.NotAllocated(errors.PhaseAllocator, "Free", uint32(p))
	}
	delete(f.live, uint32(p))
	f.stats.Frees++
	f.stats.LiveBlocks--
	f.stats.LiveBytes -= uint64(size)

	block := uint32(p) - headerSize
	bsize, _ := f.header(block)

	// merge with following free blocks
	for next := block + bsize; next < f.top; next = block + bsize {
		nsize, state := f.header(next)
		if state != blockFree {
			break
		}
		bsize += nsize
	}

	// merge with the preceding block when it is free
	for b := f.cfg.Base; b < block; {
		psize, state := f.header(b)
		if b+psize == block {
			if state == blockFree {
				block = b
				bsize += psize
			}
			break
		}
		b += psize
	}

	if block+bsize >= f.top {
		f.top = block
		return nil
	}
	f.setHeader(block, bsize, blockFree)
	return nil
}

// Owns reports whether p is a live block of this allocator.
func (f *FreeList) Owns(p containers.Ptr) bool {
	_, ok := f.live[uint32(p)]
	return ok
}

// BlockSize returns the requested size of a live block.
func (f *FreeList) BlockSize(p containers.Ptr) (uint32, bool) {
	size, ok := f.live[uint32(p)]
	return size, ok
}

var (
	_ containers.Allocator        = (*FreeList)(nil)
	_ containers.Initializer      = (*FreeList)(nil)
	_ containers.Cleaner          = (*FreeList)(nil)
	_ containers.ZeroAllocator    = (*FreeList)(nil)
	_ containers.UsabilityChecker = (*FreeList)(nil)
)
