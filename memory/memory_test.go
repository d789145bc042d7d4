package memory

import (
	"bytes"
	"context"
	"testing"

	"github.com/wippyai/containers"
)

// memoryWASM is a minimal WASM module with 1 page of memory exported as "memory"
var memoryWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: 1 page, no max
	0x07, 0x0a, 0x01, // export section: 10 bytes, 1 export
	0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, // name: "memory" (6 bytes + string)
	0x02, 0x00, // kind: memory, index 0
}

func TestMemoryModule_Encoding(t *testing.T) {
	got := memoryModule(1, 0)
	if !bytes.Equal(got, memoryWASM) {
		t.Fatalf("memoryModule(1, 0) = % x\nwant % x", got, memoryWASM)
	}

	withMax := memoryModule(2, 300)
	// limits: count, flag, min, max (300 = 0xac 0x02)
	wantLimits := []byte{0x05, 0x05, 0x01, 0x01, 0x02, 0xac, 0x02}
	if !bytes.Equal(withMax[8:8+len(wantLimits)], wantLimits) {
		t.Errorf("memory section = % x, want % x", withMax[8:8+len(wantLimits)], wantLimits)
	}
}

func spaces(t *testing.T) map[string]containers.Space {
	t.Helper()
	ctx := context.Background()

	wz, err := NewWazeroSpace(ctx, 1, 4)
	if err != nil {
		t.Fatalf("NewWazeroSpace: %v", err)
	}
	t.Cleanup(func() { _ = wz.Close(ctx) })

	return map[string]containers.Space{
		"linear": NewLinear(LinearConfig{InitialPages: 1, MaxPages: 4}),
		"wazero": wz,
	}
}

func TestSpace_ReadWrite(t *testing.T) {
	for name, s := range spaces(t) {
		t.Run(name, func(t *testing.T) {
			if s.Size() != containers.PageSize {
				t.Fatalf("Size = %d, want %d", s.Size(), containers.PageSize)
			}

			if err := s.Write(16, []byte{1, 2, 3, 4}); err != nil {
				t.Fatalf("Write: %v", err)
			}
			got, err := s.Read(16, 4)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if !bytes.Equal(got, []byte{1, 2, 3, 4}) {
				t.Errorf("Read = %v", got)
			}

			if err := s.WriteU8(100, 0xAB); err != nil {
				t.Fatal(err)
			}
			if err := s.WriteU16(102, 0x1234); err != nil {
				t.Fatal(err)
			}
			if err := s.WriteU32(104, 0xDEADBEEF); err != nil {
				t.Fatal(err)
			}
			if err := s.WriteU64(112, 0x0102030405060708); err != nil {
				t.Fatal(err)
			}

			if v, _ := s.ReadU8(100); v != 0xAB {
				t.Errorf("ReadU8 = %#x", v)
			}
			if v, _ := s.ReadU16(102); v != 0x1234 {
				t.Errorf("ReadU16 = %#x", v)
			}
			if v, _ := s.ReadU32(104); v != 0xDEADBEEF {
				t.Errorf("ReadU32 = %#x", v)
			}
			if v, _ := s.ReadU64(112); v != 0x0102030405060708 {
				t.Errorf("ReadU64 = %#x", v)
			}

			// little-endian layout
			raw, _ := s.Read(104, 4)
			if !bytes.Equal(raw, []byte{0xEF, 0xBE, 0xAD, 0xDE}) {
				t.Errorf("U32 layout = % x", raw)
			}
		})
	}
}

func TestSpace_ViewAliases(t *testing.T) {
	for name, s := range spaces(t) {
		t.Run(name, func(t *testing.T) {
			v, err := s.View(32, 8)
			if err != nil {
				t.Fatalf("View: %v", err)
			}
			v[0] = 0x7F
			if b, _ := s.ReadU8(32); b != 0x7F {
				t.Errorf("write through view not visible: %#x", b)
			}
		})
	}
}

func TestSpace_OutOfBounds(t *testing.T) {
	for name, s := range spaces(t) {
		t.Run(name, func(t *testing.T) {
			size := s.Size()
			if _, err := s.Read(size-2, 4); err == nil {
				t.Error("Read past end should fail")
			}
			if err := s.WriteU32(size-3, 1); err == nil {
				t.Error("WriteU32 past end should fail")
			}
			if _, err := s.View(size, 1); err == nil {
				t.Error("View past end should fail")
			}
			if _, err := s.ReadU64(^uint32(0)); err == nil {
				t.Error("ReadU64 at max offset should fail")
			}
		})
	}
}

func TestSpace_Grow(t *testing.T) {
	for name, s := range spaces(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.WriteU32(8, 77); err != nil {
				t.Fatal(err)
			}

			prev, err := s.Grow(2)
			if err != nil {
				t.Fatalf("Grow: %v", err)
			}
			if prev != 1 {
				t.Errorf("previous pages = %d, want 1", prev)
			}
			if s.Size() != 3*containers.PageSize {
				t.Errorf("Size = %d", s.Size())
			}
			if v, _ := s.ReadU32(8); v != 77 {
				t.Errorf("content lost across Grow: %d", v)
			}

			if _, err := s.Grow(5); err == nil {
				t.Error("Grow beyond the page limit should fail")
			}
		})
	}
}

func TestLinear_Limits(t *testing.T) {
	l := NewLinear(LinearConfig{InitialPages: 8, MaxPages: 2})
	if l.Pages() != 2 {
		t.Errorf("initial pages clamped to max: got %d", l.Pages())
	}

	unbounded := NewLinear(LinearConfig{InitialPages: 0})
	if unbounded.Size() != 0 {
		t.Errorf("Size = %d", unbounded.Size())
	}
	if _, err := unbounded.Grow(1); err != nil {
		t.Errorf("Grow: %v", err)
	}
}

func TestWrapMemory_Nil(t *testing.T) {
	if WrapMemory(nil) != nil {
		t.Error("expected nil for nil memory")
	}
}

func TestNewWazeroSpace_InvalidLimits(t *testing.T) {
	if _, err := NewWazeroSpace(context.Background(), 4, 2); err == nil {
		t.Error("initial pages above maximum should fail")
	}
}

func TestWazero_CloseIdempotent(t *testing.T) {
	ctx := context.Background()
	s, err := NewWazeroSpace(ctx, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
