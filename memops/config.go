package memops

// Width is a transfer granularity in bytes.
type Width uint32

// Supported data-bus widths.
const (
	Width8  Width = 1
	Width16 Width = 2
	Width32 Width = 4
	Width64 Width = 8
)

// StackSwapSize is the largest swap served from the fixed scratch array.
const StackSwapSize = 256

// Config selects how the engine decomposes transfers.
type Config struct {
	// BusWidth is the widest word the fast path moves at once.
	BusWidth Width

	// SizeOptimization enables the word-sized fast path. When false every
	// operation runs byte by byte.
	SizeOptimization bool

	// Recursive delegates unaligned edges to the next smaller width instead
	// of finishing them byte by byte.
	Recursive bool

	// UnalignedAccess allows word transfers between pointers whose
	// alignment remainders differ.
	UnalignedAccess bool

	// SwapThreshold is the largest size swapped through the stack scratch
	// array. Larger swaps borrow scratch from an allocator. Clamped to
	// StackSwapSize.
	SwapThreshold uint32
}

// DefaultConfig returns a 64-bit bus with iterative decomposition.
func DefaultConfig() Config {
	return Config{
		BusWidth:         Width64,
		SizeOptimization: true,
		Recursive:        false,
		UnalignedAccess:  false,
		SwapThreshold:    StackSwapSize,
	}
}

func (c Config) normalized() Config {
	switch {
	case c.BusWidth >= Width64:
		c.BusWidth = Width64
	case c.BusWidth >= Width32:
		c.BusWidth = Width32
	case c.BusWidth >= Width16:
		c.BusWidth = Width16
	default:
		c.BusWidth = Width8
	}
	if c.SwapThreshold == 0 || c.SwapThreshold > StackSwapSize {
		c.SwapThreshold = StackSwapSize
	}
	return c
}
