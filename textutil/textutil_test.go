package textutil

import (
	"testing"

	"github.com/wippyai/containers"
	"github.com/wippyai/containers/errors"
	"github.com/wippyai/containers/memory"
)

// place writes b at a fixed offset of a fresh space.
func place(t *testing.T, b []byte) (*memory.Linear, containers.Ptr) {
	t.Helper()
	space := memory.NewLinear(memory.DefaultLinearConfig())
	const at = 64
	if err := space.Write(at, b); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return space, at
}

func TestCodePointTypeOf(t *testing.T) {
	tests := []struct {
		unit uint16
		want CodePointType
	}{
		{0x0041, BMP},
		{0xD7FF, BMP},
		{0xD800, SurrogateHigh},
		{0xDBFF, SurrogateHigh},
		{0xDC00, SurrogateLow},
		{0xDFFF, SurrogateLow},
		{0xE000, BMP},
		{0xFFFF, BMP},
	}
	for _, tt := range tests {
		if got := CodePointTypeOf(tt.unit); got != tt.want {
			t.Errorf("CodePointTypeOf(%#x) = %s, want %s", tt.unit, got, tt.want)
		}
	}
	if !IsSurrogatePair(0xD83D, 0xDE00) {
		t.Error("D83D DE00 is a pair")
	}
	if IsSurrogatePair(0xDE00, 0xD83D) {
		t.Error("reversed units are not a pair")
	}
	if Invalid.String() != "invalid" {
		t.Errorf("Invalid.String() = %q", Invalid.String())
	}
}

func TestStrLenANSI(t *testing.T) {
	space, p := place(t, []byte("hello\x00"))

	tests := []struct {
		name       string
		max        uint32
		requireNUL bool
		want       uint32
		wantErr    bool
	}{
		{"terminated", 100, true, 5, false},
		{"exact limit with terminator", 5, true, 5, false},
		{"terminator beyond limit", 4, true, 0, true},
		{"limit without terminator", 3, false, 3, false},
		{"limit past string", 10, false, 5, false},
		{"zero limit", 0, false, 0, false},
		{"limit too large", MaxANSILength + 1, false, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StrLenANSI(space, p, tt.max, tt.requireNUL)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrInvalidParameter) {
					t.Errorf("err = %v, want invalid parameter", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("StrLenANSI = %d, want %d", got, tt.want)
			}
		})
	}

	if _, err := StrLenANSI(space, containers.Null, 10, true); err == nil {
		t.Error("Null string accepted")
	}
}

func TestStrLenANSI_RunsOffSpace(t *testing.T) {
	space := memory.NewLinear(memory.DefaultLinearConfig())
	end := containers.Ptr(space.Size() - 3)
	if err := space.Write(uint32(end), []byte("abc")); err != nil {
		t.Fatal(err)
	}
	if _, err := StrLenANSI(space, end, 100, true); err == nil {
		t.Error("unterminated string at the end of the space accepted")
	}
}

func TestWideLengths(t *testing.T) {
	// "a😀b": a, surrogate pair, b
	space, p := place(t, EncodeWide("a\U0001F600b"))

	n, err := StrLenWide(space, p, 100, true)
	if err != nil || n != 3 {
		t.Fatalf("StrLenWide = %d, %v; want 3 code points", n, err)
	}

	units, cps, err := WideCharLen(space, p, 100, true)
	if err != nil || units != 4 || cps != 3 {
		t.Fatalf("WideCharLen = %d units %d code points, %v; want 4, 3", units, cps, err)
	}

	if _, _, err := WideCharLen(space, p, 2, false); err == nil {
		t.Error("pair split by the limit accepted")
	}
	if units, cps, err := WideCharLen(space, p, 1, false); err != nil || units != 1 || cps != 1 {
		t.Errorf("WideCharLen limit 1 = %d, %d, %v", units, cps, err)
	}
	if _, err := StrLenWide(space, p, 2, true); err == nil {
		t.Error("missing terminator within limit accepted")
	}

	bad, q := place(t, []byte{0x00, 0xD8, 0x41, 0x00, 0x00, 0x00})
	if _, err := StrLenWide(bad, q, 100, true); !errors.Is(err, errors.ErrInvalidParameter) {
		t.Errorf("unpaired surrogate: err = %v", err)
	}
	if _, _, err := WideCharLen(bad, q, 100, true); !errors.Is(err, errors.ErrInvalidParameter) {
		t.Errorf("unpaired surrogate: err = %v", err)
	}
}

func TestCompareANSI(t *testing.T) {
	space := memory.NewLinear(memory.DefaultLinearConfig())
	write := func(at uint32, s string) containers.Ptr {
		if err := space.Write(at, append([]byte(s), 0)); err != nil {
			t.Fatal(err)
		}
		return containers.Ptr(at)
	}
	abc := write(100, "abc")
	abc2 := write(200, "abc")
	abcd := write(300, "abcd")
	abx := write(400, "abx")

	tests := []struct {
		name   string
		a, b   containers.Ptr
		max    uint32
		strict bool
		want   bool
	}{
		{"equal", abc, abc2, 100, true, true},
		{"prefix strict", abc, abcd, 100, true, false},
		{"prefix relaxed", abc, abcd, 100, false, true},
		{"differ", abc, abx, 100, false, false},
		{"differ past limit", abc, abx, 2, false, true},
		{"zero limit", abc, abx, 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CompareANSI(space, tt.a, tt.b, tt.max, tt.strict)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("CompareANSI = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := CompareANSI(space, abc, containers.Null, 10, false); !errors.Is(err, errors.ErrInvalidParameter) {
		t.Errorf("Null operand: err = %v", err)
	}
}

func TestCompareWide(t *testing.T) {
	space := memory.NewLinear(memory.DefaultLinearConfig())
	write := func(at uint32, s string) containers.Ptr {
		if err := space.Write(at, EncodeWide(s)); err != nil {
			t.Fatal(err)
		}
		return containers.Ptr(at)
	}
	a := write(100, "hé\U0001F600")
	b := write(200, "hé\U0001F600")
	c := write(300, "hé")

	if eq, err := CompareWide(space, a, b, 100, true); err != nil || !eq {
		t.Errorf("equal strings: %v, %v", eq, err)
	}
	if eq, err := CompareWide(space, a, c, 100, true); err != nil || eq {
		t.Errorf("strict prefix: %v, %v", eq, err)
	}
	if eq, err := CompareWide(space, a, c, 100, false); err != nil || !eq {
		t.Errorf("relaxed prefix: %v, %v", eq, err)
	}
	if _, err := CompareWide(space, a, b, MaxWideChars+1, false); err == nil {
		t.Error("limit too large accepted")
	}
}

func TestDecodeWide(t *testing.T) {
	for _, s := range []string{"", "plain", "héllo", "\U0001F600 \U0001F680"} {
		space, p := place(t, EncodeWide(s))
		got, err := DecodeWide(space, p, MaxWideChars)
		if err != nil {
			t.Fatalf("DecodeWide(%q): %v", s, err)
		}
		if got != s {
			t.Errorf("DecodeWide = %q, want %q", got, s)
		}
	}
}
