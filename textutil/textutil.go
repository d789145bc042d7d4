// Package textutil measures and compares NUL-terminated strings stored in a
// containers.Space. ANSI strings are single bytes; wide strings are UTF-16
// little-endian code units, where a code point takes one unit or a
// surrogate pair.
//
// None of the helpers modify the strings. Lengths are limited so that a
// string always fits a 32-bit address space.
package textutil

import (
	"encoding/binary"
	"unicode/utf16"

	"github.com/wippyai/containers"
	"github.com/wippyai/containers/errors"
	"github.com/wippyai/containers/memops"
)

const (
	MaxANSILength = 0x1FFFFFFF // characters
	MaxWideLength = 0x07FFFFFF // code points
	MaxWideChars  = 0x0FFFFFFE // code units

	// InvalidLength is reported by callers that fold errors into a length.
	InvalidLength = ^uint32(0)
)

const (
	surrogateHighMin = 0xD800
	surrogateHighMax = 0xDBFF
	surrogateLowMin  = 0xDC00
	surrogateLowMax  = 0xDFFF
)

// CodePointType classifies a UTF-16 code unit.
type CodePointType uint8

const (
	Invalid CodePointType = iota
	BMP
	SurrogateHigh
	SurrogateLow
)

func (t CodePointType) String() string {
	switch t {
	case BMP:
		return "bmp"
	case SurrogateHigh:
		return "surrogate_high"
	case SurrogateLow:
		return "surrogate_low"
	}
	return "invalid"
}

// IsBMP reports whether u is a code point on its own.
func IsBMP(u uint16) bool {
	return u < surrogateHighMin || u > surrogateLowMax
}

// IsSurrogatePair reports whether lead and trail form one code point.
func IsSurrogatePair(lead, trail uint16) bool {
	return lead >= surrogateHighMin && lead <= surrogateHighMax &&
		trail >= surrogateLowMin && trail <= surrogateLowMax
}

// CodePointTypeOf classifies u.
func CodePointTypeOf(u uint16) CodePointType {
	switch {
	case IsBMP(u):
		return BMP
	case u <= surrogateHighMax:
		return SurrogateHigh
	case u >= surrogateLowMin:
		return SurrogateLow
	}
	return Invalid
}

// tail returns the bytes from p to the end of the space.
func tail(op string, space containers.Space, p containers.Ptr) ([]byte, error) {
	if space == nil {
		return nil, errors.NilHandle(errors.PhaseText, op, "space")
	}
	if p == containers.Null {
		return nil, errors.NilHandle(errors.PhaseText, op, "string")
	}
	size := space.Size()
	if uint32(p) >= size {
		return nil, errors.InvalidParameter(errors.PhaseText, op, "string outside its space")
	}
	b, err := space.Read(uint32(p), size-uint32(p))
	if err != nil {
		return nil, errors.Propagate(errors.PhaseText, op, err)
	}
	return b, nil
}

func unterminated(op string) error {
	return errors.InvalidParameter(errors.PhaseText, op, "string is not terminated within the limit")
}

func truncated(op string) error {
	return errors.InvalidParameter(errors.PhaseText, op, "string runs past the end of its space")
}

// StrLenANSI returns the number of characters before the NUL, looking at no
// more than maxChars of them. With requireNUL the terminator must follow
// within the limit, which may inspect maxChars+1 bytes; without it a
// string of maxChars characters is accepted as is.
func StrLenANSI(space containers.Space, p containers.Ptr, maxChars uint32, requireNUL bool) (uint32, error) {
	const op = "StrLenANSI"
	if maxChars > MaxANSILength {
		return 0, errors.InvalidParameter(errors.PhaseText, op, "limit exceeds MaxANSILength")
	}
	b, err := tail(op, space, p)
	if err != nil {
		return 0, err
	}
	for i := uint32(0); i < maxChars || (requireNUL && i == maxChars); i++ {
		if uint64(i) >= uint64(len(b)) {
			return 0, truncated(op)
		}
		if b[i] == 0 {
			return i, nil
		}
		if i == maxChars {
			return 0, unterminated(op)
		}
	}
	return maxChars, nil
}

func unit(b []byte, i uint32) (uint16, bool) {
	off := uint64(i) * 2
	if off+2 > uint64(len(b)) {
		return 0, false
	}
	return binary.LittleEndian.Uint16(b[off:]), true
}

// StrLenWide returns the number of code points before the NUL, looking at
// no more than maxCodePoints of them. Unpaired surrogates are rejected.
func StrLenWide(space containers.Space, p containers.Ptr, maxCodePoints uint32, requireNUL bool) (uint32, error) {
	const op = "StrLenWide"
	if maxCodePoints > MaxWideLength {
		return 0, errors.InvalidParameter(errors.PhaseText, op, "limit exceeds MaxWideLength")
	}
	b, err := tail(op, space, p)
	if err != nil {
		return 0, err
	}
	pos := uint32(0)
	for n := uint32(0); n < maxCodePoints || (requireNUL && n == maxCodePoints); n++ {
		u, ok := unit(b, pos)
		if !ok {
			return 0, truncated(op)
		}
		if u == 0 {
			return n, nil
		}
		if n == maxCodePoints {
			return 0, unterminated(op)
		}
		pos++
		if IsBMP(u) {
			continue
		}
		next, ok := unit(b, pos)
		if !ok || !IsSurrogatePair(u, next) {
			return 0, errors.InvalidParameter(errors.PhaseText, op, "unpaired surrogate")
		}
		pos++
	}
	return maxCodePoints, nil
}

// WideCharLen returns the number of code units and code points before the
// NUL, looking at no more than maxChars code units. A surrogate pair must
// fit within the limit.
func WideCharLen(space containers.Space, p containers.Ptr, maxChars uint32, requireNUL bool) (units, codePoints uint32, err error) {
	const op = "WideCharLen"
	if maxChars > MaxWideChars {
		return 0, 0, errors.InvalidParameter(errors.PhaseText, op, "limit exceeds MaxWideChars")
	}
	b, err := tail(op, space, p)
	if err != nil {
		return 0, 0, err
	}
	i := uint32(0)
	for ; i < maxChars || (requireNUL && i == maxChars); i++ {
		u, ok := unit(b, i)
		if !ok {
			return 0, 0, truncated(op)
		}
		if u == 0 {
			return i, codePoints, nil
		}
		if i == maxChars {
			return 0, 0, unterminated(op)
		}
		codePoints++
		if IsBMP(u) {
			continue
		}
		next, ok := unit(b, i+1)
		if uint64(i)+1 >= uint64(maxChars) || !ok || !IsSurrogatePair(u, next) {
			return 0, 0, errors.InvalidParameter(errors.PhaseText, op, "unpaired surrogate")
		}
		i++
	}
	return i, codePoints, nil
}

// CompareANSI reports whether two terminated strings agree in their first
// maxChars characters. In strict mode strings of different length never
// agree; otherwise the shorter length bounds the comparison.
func CompareANSI(space containers.Space, a, b containers.Ptr, maxChars uint32, strict bool) (bool, error) {
	const op = "CompareANSI"
	if maxChars > MaxANSILength {
		return false, errors.InvalidParameter(errors.PhaseText, op, "limit exceeds MaxANSILength")
	}
	la, err := StrLenANSI(space, a, MaxANSILength, true)
	if err != nil {
		return false, errors.Propagate(errors.PhaseText, op, err)
	}
	lb, err := StrLenANSI(space, b, MaxANSILength, true)
	if err != nil {
		return false, errors.Propagate(errors.PhaseText, op, err)
	}
	if strict && la != lb {
		return false, nil
	}
	return compare(op, space, a, b, min(la, lb, maxChars))
}

// CompareWide is CompareANSI for wide strings, with maxChars counted in
// code units. Strict mode also requires equal code point counts.
func CompareWide(space containers.Space, a, b containers.Ptr, maxChars uint32, strict bool) (bool, error) {
	const op = "CompareWide"
	if maxChars > MaxWideChars {
		return false, errors.InvalidParameter(errors.PhaseText, op, "limit exceeds MaxWideChars")
	}
	ua, ca, err := WideCharLen(space, a, MaxWideChars, true)
	if err != nil {
		return false, errors.Propagate(errors.PhaseText, op, err)
	}
	ub, cb, err := WideCharLen(space, b, MaxWideChars, true)
	if err != nil {
		return false, errors.Propagate(errors.PhaseText, op, err)
	}
	if strict && (ua != ub || ca != cb) {
		return false, nil
	}
	return compare(op, space, a, b, 2*min(ua, ub, maxChars))
}

func compare(op string, space containers.Space, a, b containers.Ptr, n uint32) (bool, error) {
	if n == 0 {
		return true, nil
	}
	eq, err := memops.New(space, memops.DefaultConfig()).Compare(a, b, n)
	if err != nil {
		return false, errors.Propagate(errors.PhaseText, op, err)
	}
	return eq, nil
}

// DecodeWide returns the terminated wide string at p as Go text.
func DecodeWide(space containers.Space, p containers.Ptr, maxChars uint32) (string, error) {
	units, _, err := WideCharLen(space, p, maxChars, true)
	if err != nil {
		return "", err
	}
	if units == 0 {
		return "", nil
	}
	b, err := space.Read(uint32(p), 2*units)
	if err != nil {
		return "", errors.Propagate(errors.PhaseText, "DecodeWide", err)
	}
	u := make([]uint16, units)
	for i := range u {
		u[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return string(utf16.Decode(u)), nil
}

// EncodeWide returns s as terminated UTF-16 little-endian bytes.
func EncodeWide(s string) []byte {
	u := utf16.Encode([]rune(s))
	b := make([]byte, 2*len(u)+2)
	for i, v := range u {
		binary.LittleEndian.PutUint16(b[2*i:], v)
	}
	return b
}
