package alloc

import (
	"go.uber.org/zap"

	"github.com/wippyai/containers"
	"github.com/wippyai/containers/errors"
	"github.com/wippyai/containers/memops"
)

// Bump is an append-only arena allocator. Allocation advances a pointer;
// Free only gives memory back when it releases the most recent block.
// Cleanup rewinds the whole arena.
type Bump struct {
	space  containers.Space
	engine *memops.Engine
	cfg    Config

	next  uint32
	live  map[uint32]uint32 // payload -> requested size
	stack []uint32          // live blocks in allocation order
	stats Stats
}

// NewBump creates an arena over space.
func NewBump(space containers.Space, cfg Config) *Bump {
	cfg = cfg.normalized()
	b := &Bump{space: space, cfg: cfg}
	if space != nil {
		b.engine = memops.New(space, cfg.Memops)
	}
	b.rewind()
	return b
}

func (b *Bump) rewind() {
	b.next = b.cfg.Base
	b.live = make(map[uint32]uint32)
	b.stack = b.stack[:0]
}

// Space returns the space blocks live in.
func (b *Bump) Space() containers.Space {
	return b.space
}

// Init prepares the arena, discarding previous blocks.
func (b *Bump) Init() error {
	if b.space == nil {
		return errors.NilHandle(errors.PhaseAllocator, "Init", "space")
	}
	b.rewind()
	return nil
}

// Cleanup rewinds the arena.
func (b *Bump) Cleanup() error {
	if b.space == nil {
		return errors.NilHandle(errors.PhaseAllocator, "Cleanup", "space")
	}
	b.stats.Frees += uint64(len(b.live))
	b.stats.LiveBlocks = 0
	b.stats.LiveBytes = 0
	b.rewind()
	return nil
}

// IsUsable reports whether the arena has a space to serve from.
func (b *Bump) IsUsable() bool {
	return b.space != nil
}

// Stats returns a snapshot of the arena counters.
func (b *Bump) Stats() Stats {
	return b.stats
}

// Used returns the number of arena bytes between Base and the bump pointer.
func (b *Bump) Used() uint32 {
	return b.next - b.cfg.Base
}

// Alloc returns a block of at least size bytes, or Null.
func (b *Bump) Alloc(size uint32) containers.Ptr {
	if b.space == nil || size == 0 || size > ^uint32(0)-Alignment {
		return containers.Null
	}
	end := uint64(b.next) + uint64(align(size))
	if end > uint64(^uint32(0)) || !reserve(b.space, b.cfg, end, &b.stats) {
		b.stats.Failures++
		Logger().Debug("arena exhausted",
			zap.Uint32("size", size),
			zap.Uint32("next", b.next),
		)
		return containers.Null
	}
	p := b.next
	b.next = uint32(end)
	b.live[p] = size
	b.stack = append(b.stack, p)
	b.stats.Allocs++
	b.stats.LiveBlocks++
	b.stats.LiveBytes += uint64(size)
	return containers.Ptr(p)
}

// AllocZero returns a zero-filled block of at least size bytes, or Null.
func (b *Bump) AllocZero(size uint32) containers.Ptr {
	p := b.Alloc(size)
	if p == containers.Null {
		return p
	}
	if err := b.engine.Zero(p, size); err != nil {
		Logger().Warn("zero fill failed", zap.Uint32("ptr", uint32(p)), zap.Error(err))
		_ = b.Free(p)
		return containers.Null
	}
	return p
}

// Free releases a block. Space is reclaimed only while the released blocks
// form the top of the arena.
func (b *Bump) Free(p containers.Ptr) error {
	if p == containers.Null {
		return errors.NilHandle(errors.PhaseAllocator, "Free", "block")
	}
	size, ok := b.live[uint32(p)]
	if !ok {
		return errors.NotAllocated(errors.PhaseAllocator, "Free", uint32(p))
	}
	delete(b.live, uint32(p))
	b.stats.Frees++
	b.stats.LiveBlocks--
	b.stats.LiveBytes -= uint64(size)

	for len(b.stack) > 0 {
		top := b.stack[len(b.stack)-1]
		if _, alive := b.live[top]; alive {
			break
		}
		b.stack = b.stack[:len(b.stack)-1]
		b.next = top
	}
	return nil
}

var (
	_ containers.Allocator        = (*Bump)(nil)
	_ containers.Initializer      = (*Bump)(nil)
	_ containers.Cleaner          = (*Bump)(nil)
	_ containers.ZeroAllocator    = (*Bump)(nil)
	_ containers.UsabilityChecker = (*Bump)(nil)
)
