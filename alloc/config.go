package alloc

import (
	"github.com/wippyai/containers/memops"
)

// Alignment of every block handed out.
const Alignment = 8

// Config holds allocator configuration
type Config struct {
	// Base is the first offset the allocator may use. Rounded up to
	// Alignment and never below Alignment, so Null is never handed out.
	Base uint32

	// Limit is the end offset the allocator may use. 0 means the whole
	// space, growing it as needed.
	Limit uint32

	// GrowPages is the minimum number of pages requested per space growth.
	GrowPages uint32

	// Memops configures the engine used for zero-filled allocations.
	Memops memops.Config
}

// DefaultConfig returns a configuration that manages the whole space from
// offset 8 and grows one page at a time.
func DefaultConfig() Config {
	return Config{
		Base:      Alignment,
		Limit:     0,
		GrowPages: 1,
		Memops:    memops.DefaultConfig(),
	}
}

func (c Config) normalized() Config {
	if c.Base < Alignment {
		c.Base = Alignment
	}
	c.Base = align(c.Base)
	if c.Limit != 0 {
		c.Limit &^= Alignment - 1
	}
	if c.GrowPages == 0 {
		c.GrowPages = 1
	}
	return c
}

func align(n uint32) uint32 {
	return (n + Alignment - 1) &^ (Alignment - 1)
}

// Stats reports allocator counters.
type Stats struct {
	Allocs     uint64
	Frees      uint64
	Failures   uint64
	Grows      uint64
	LiveBlocks int
	LiveBytes  uint64
}
