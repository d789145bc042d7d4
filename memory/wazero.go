package memory

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/containers"
	"github.com/wippyai/containers/errors"
)

// Wazero adapts a wazero api.Memory to containers.Space.
type Wazero struct {
	Mem api.Memory

	rt  wazero.Runtime
	mod api.Module
}

// WrapMemory wraps an existing wazero memory. The caller keeps ownership of
// the module that defines it.
func WrapMemory(mem api.Memory) *Wazero {
	if mem == nil {
		return nil
	}
	return &Wazero{Mem: mem}
}

// NewWazeroSpace instantiates a memory-only module in a dedicated wazero
// runtime and returns a space over its exported memory. maxPages of 0 leaves
// the memory unbounded up to the runtime limit.
func NewWazeroSpace(ctx context.Context, pages, maxPages uint32) (*Wazero, error) {
	if maxPages != 0 && pages > maxPages {
		return nil, errors.InvalidParameter(errors.PhaseMemory, "NewWazeroSpace", "initial pages exceed maximum")
	}

	cfg := wazero.NewRuntimeConfig()
	if maxPages != 0 {
		cfg = cfg.WithMemoryLimitPages(maxPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)

	mod, err := rt.Instantiate(ctx, memoryModule(pages, maxPages))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Wrap(errors.PhaseMemory, errors.KindGeneralFailure, err, "NewWazeroSpace")
	}

	mem := mod.ExportedMemory(exportName)
	if mem == nil {
		_ = rt.Close(ctx)
		return nil, errors.New(errors.PhaseMemory, errors.KindGeneralFailure).
			Op("NewWazeroSpace").
			Detail("module exports no %q", exportName).
			Build()
	}

	return &Wazero{Mem: mem, rt: rt, mod: mod}, nil
}

// Close releases the runtime created by NewWazeroSpace. It is a no-op for
// wrapped memories.
func (m *Wazero) Close(ctx context.Context) error {
	if m.rt == nil {
		return nil
	}
	err := m.rt.Close(ctx)
	m.rt = nil
	m.mod = nil
	return err
}

func outOfBounds(op string, offset, length uint32) error {
	return errors.New(errors.PhaseMemory, errors.KindInvalidParameter).
		Op(op).
		Detail("memory access out of bounds: offset=%d, length=%d", offset, length).
		Build()
}

// Size returns the memory size in bytes.
func (m *Wazero) Size() uint32 {
	return m.Mem.Size()
}

// Grow extends the memory by deltaPages.
func (m *Wazero) Grow(deltaPages uint32) (uint32, error) {
	prev, ok := m.Mem.Grow(deltaPages)
	if !ok {
		return prev, errors.New(errors.PhaseMemory, errors.KindGeneralFailure).
			Op("Grow").
			Detail("cannot grow memory by %d pages", deltaPages).
			Build()
	}
	return prev, nil
}

// View returns a slice aliasing the requested range of the wasm memory.
func (m *Wazero) View(offset, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, outOfBounds("View", offset, length)
	}
	return data, nil
}

// Read reads bytes from memory.
func (m *Wazero) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, outOfBounds("Read", offset, length)
	}
	return data, nil
}

// Write writes bytes to memory.
func (m *Wazero) Write(offset uint32, data []byte) error {
	if !m.Mem.Write(offset, data) {
		return outOfBounds("Write", offset, uint32(len(data)))
	}
	return nil
}

// ReadU8 reads an unsigned 8-bit value.
func (m *Wazero) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.Mem.ReadByte(offset)
	if !ok {
		return 0, outOfBounds("ReadU8", offset, 1)
	}
	return v, nil
}

// ReadU16 reads an unsigned 16-bit little-endian value.
func (m *Wazero) ReadU16(offset uint32) (uint16, error) {
	v, ok := m.Mem.ReadUint16Le(offset)
	if !ok {
		return 0, outOfBounds("ReadU16", offset, 2)
	}
	return v, nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (m *Wazero) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.Mem.ReadUint32Le(offset)
	if !ok {
		return 0, outOfBounds("ReadU32", offset, 4)
	}
	return v, nil
}

// ReadU64 reads an unsigned 64-bit little-endian value.
func (m *Wazero) ReadU64(offset uint32) (uint64, error) {
	v, ok := m.Mem.ReadUint64Le(offset)
	if !ok {
		return 0, outOfBounds("ReadU64", offset, 8)
	}
	return v, nil
}

// WriteU8 writes an unsigned 8-bit value.
func (m *Wazero) WriteU8(offset uint32, value uint8) error {
	if !m.Mem.WriteByte(offset, value) {
		return outOfBounds("WriteU8", offset, 1)
	}
	return nil
}

// WriteU16 writes an unsigned 16-bit little-endian value.
func (m *Wazero) WriteU16(offset uint32, value uint16) error {
	if !m.Mem.WriteUint16Le(offset, value) {
		return outOfBounds("WriteU16", offset, 2)
	}
	return nil
}

// WriteU32 writes an unsigned 32-bit little-endian value.
func (m *Wazero) WriteU32(offset uint32, value uint32) error {
	if !m.Mem.WriteUint32Le(offset, value) {
		return outOfBounds("WriteU32", offset, 4)
	}
	return nil
}

// WriteU64 writes an unsigned 64-bit little-endian value.
func (m *Wazero) WriteU64(offset uint32, value uint64) error {
	if !m.Mem.WriteUint64Le(offset, value) {
		return outOfBounds("WriteU64", offset, 8)
	}
	return nil
}

var _ containers.Space = (*Wazero)(nil)
