package memory

import (
	"encoding/binary"

	"github.com/wippyai/containers"
	"github.com/wippyai/containers/errors"
)

// LinearConfig holds configuration for a Go-heap backed space
type LinearConfig struct {
	// InitialPages is the size of the space at creation, in 64 KiB pages.
	InitialPages uint32

	// MaxPages bounds Grow. 0 means 65535 pages (just under 4 GiB).
	MaxPages uint32
}

// DefaultLinearConfig returns a one-page space that may grow to 64 MiB.
func DefaultLinearConfig() LinearConfig {
	return LinearConfig{
		InitialPages: 1,
		MaxPages:     1024,
	}
}

const maxAddressablePages = 65535

// Linear is a Space backed by a Go byte slice.
type Linear struct {
	buf      []byte
	maxPages uint32
}

// NewLinear creates a Go-heap backed space.
func NewLinear(cfg LinearConfig) *Linear {
	maxPages := cfg.MaxPages
	if maxPages == 0 || maxPages > maxAddressablePages {
		maxPages = maxAddressablePages
	}
	initial := cfg.InitialPages
	if initial > maxPages {
		initial = maxPages
	}
	return &Linear{
		buf:      make([]byte, int(initial)*containers.PageSize),
		maxPages: maxPages,
	}
}

// Size returns the space size in bytes.
func (l *Linear) Size() uint32 {
	return uint32(len(l.buf))
}

// Pages returns the space size in pages.
func (l *Linear) Pages() uint32 {
	return uint32(len(l.buf) / containers.PageSize)
}

// Grow extends the space by deltaPages. Existing views are invalidated.
func (l *Linear) Grow(deltaPages uint32) (uint32, error) {
	prev := l.Pages()
	if deltaPages == 0 {
		return prev, nil
	}
	if deltaPages > l.maxPages-prev {
		return prev, errors.New(errors.PhaseMemory, errors.KindGeneralFailure).
			Op("Grow").
			Detail("cannot grow %d pages by %d (limit %d)", prev, deltaPages, l.maxPages).
			Build()
	}
	next := make([]byte, int(prev+deltaPages)*containers.PageSize)
	copy(next, l.buf)
	l.buf = next
	return prev, nil
}

func (l *Linear) bounds(op string, offset, length uint32) error {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(l.buf)) {
		return errors.New(errors.PhaseMemory, errors.KindInvalidParameter).
			Op(op).
			Detail("offset=%d length=%d beyond size %d", offset, length, len(l.buf)).
			Build()
	}
	return nil
}

// View returns a slice aliasing the requested range.
func (l *Linear) View(offset, length uint32) ([]byte, error) {
	if err := l.bounds("View", offset, length); err != nil {
		return nil, err
	}
	return l.buf[offset : offset+length : offset+length], nil
}

// Read reads bytes from memory. The result aliases the space.
func (l *Linear) Read(offset, length uint32) ([]byte, error) {
	return l.View(offset, length)
}

// Write writes bytes to memory.
func (l *Linear) Write(offset uint32, data []byte) error {
	if err := l.bounds("Write", offset, uint32(len(data))); err != nil {
		return err
	}
	copy(l.buf[offset:], data)
	return nil
}

// ReadU8 reads an unsigned 8-bit value.
func (l *Linear) ReadU8(offset uint32) (uint8, error) {
	if err := l.bounds("ReadU8", offset, 1); err != nil {
		return 0, err
	}
	return l.buf[offset], nil
}

// ReadU16 reads an unsigned 16-bit little-endian value.
func (l *Linear) ReadU16(offset uint32) (uint16, error) {
	if err := l.bounds("ReadU16", offset, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(l.buf[offset:]), nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (l *Linear) ReadU32(offset uint32) (uint32, error) {
	if err := l.bounds("ReadU32", offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(l.buf[offset:]), nil
}

// ReadU64 reads an unsigned 64-bit little-endian value.
func (l *Linear) ReadU64(offset uint32) (uint64, error) {
	if err := l.bounds("ReadU64", offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(l.buf[offset:]), nil
}

// WriteU8 writes an unsigned 8-bit value.
func (l *Linear) WriteU8(offset uint32, value uint8) error {
	if err := l.bounds("WriteU8", offset, 1); err != nil {
		return err
	}
	l.buf[offset] = value
	return nil
}

// WriteU16 writes an unsigned 16-bit little-endian value.
func (l *Linear) WriteU16(offset uint32, value uint16) error {
	if err := l.bounds("WriteU16", offset, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(l.buf[offset:], value)
	return nil
}

// WriteU32 writes an unsigned 32-bit little-endian value.
func (l *Linear) WriteU32(offset uint32, value uint32) error {
	if err := l.bounds("WriteU32", offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(l.buf[offset:], value)
	return nil
}

// WriteU64 writes an unsigned 64-bit little-endian value.
func (l *Linear) WriteU64(offset uint32, value uint64) error {
	if err := l.bounds("WriteU64", offset, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(l.buf[offset:], value)
	return nil
}

var _ containers.Space = (*Linear)(nil)
