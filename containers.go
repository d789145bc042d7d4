package containers

// Ptr is an address in a Space. Null is never a valid block address.
type Ptr uint32

// Null is the absent pointer.
const Null Ptr = 0

// PageSize is the unit in which spaces grow.
const PageSize = 65536

// Add returns p advanced by n bytes.
func (p Ptr) Add(n uint32) Ptr {
	return p + Ptr(n)
}

// IsNull reports whether p is the absent pointer.
func (p Ptr) IsNull() bool {
	return p == Null
}

// Memory represents byte-addressable linear memory
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU16(offset uint32) (uint16, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU16(offset uint32, value uint16) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// MemorySizer provides the current size of linear memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Space is the address space containers and their elements live in.
//
// View returns a slice aliasing [offset, offset+length). The slice stays
// valid until the next Grow; callers re-fetch views after anything that may
// allocate.
type Space interface {
	Memory
	MemorySizer
	View(offset uint32, length uint32) ([]byte, error)
	// Grow extends the space by deltaPages pages and returns the previous
	// size in pages.
	Grow(deltaPages uint32) (uint32, error)
}
