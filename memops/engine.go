package memops

import (
	"encoding/binary"

	"go.uber.org/zap"

	"github.com/wippyai/containers"
	"github.com/wippyai/containers/errors"
)

// Engine performs byte-exact transfers inside one Space.
//
// Every operation rejects a Null pointer or a zero length with an
// invalid-parameter error, and treats identical source and destination as
// a successful no-op. Ranges that run past the end of the space are
// rejected before anything is written.
type Engine struct {
	space containers.Space
	cfg   Config
}

// New creates an engine over space.
func New(space containers.Space, cfg Config) *Engine {
	return &Engine{space: space, cfg: cfg.normalized()}
}

// Space returns the space the engine operates on.
func (e *Engine) Space() containers.Space {
	return e.space
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) check(op string, p containers.Ptr, n uint32) error {
	if e == nil || e.space == nil {
		return errors.NilHandle(errors.PhaseMemory, op, "space")
	}
	if p == containers.Null {
		return errors.NilHandle(errors.PhaseMemory, op, "pointer")
	}
	if n == 0 {
		return errors.InvalidParameter(errors.PhaseMemory, op, "zero length")
	}
	if uint64(p)+uint64(n) > uint64(e.space.Size()) {
		return errors.New(errors.PhaseMemory, errors.KindInvalidParameter).
			Op(op).
			Value(uint32(p)).
			Detail("range %#x+%d beyond space size %d", uint32(p), n, e.space.Size()).
			Build()
	}
	return nil
}

func (e *Engine) check2(op string, a, b containers.Ptr, n uint32) error {
	if err := e.check(op, a, n); err != nil {
		return err
	}
	return e.check(op, b, n)
}

// view returns the whole space. Indices into it are Ptr values.
func (e *Engine) view(op string) ([]byte, error) {
	buf, err := e.space.View(0, e.space.Size())
	if err != nil {
		return nil, errors.Propagate(errors.PhaseMemory, op, err)
	}
	return buf, nil
}

func load(buf []byte, off, w uint32) uint64 {
	switch w {
	case 8:
		return binary.LittleEndian.Uint64(buf[off:])
	case 4:
		return uint64(binary.LittleEndian.Uint32(buf[off:]))
	case 2:
		return uint64(binary.LittleEndian.Uint16(buf[off:]))
	}
	return uint64(buf[off])
}

func store(buf []byte, off, w uint32, v uint64) {
	switch w {
	case 8:
		binary.LittleEndian.PutUint64(buf[off:], v)
	case 4:
		binary.LittleEndian.PutUint32(buf[off:], uint32(v))
	case 2:
		binary.LittleEndian.PutUint16(buf[off:], uint16(v))
	default:
		buf[off] = byte(v)
	}
}

// split describes one level of decomposition: head bytes, word chunks and
// tail bytes. For a reverse transfer head is the high end and is processed
// first.
type split struct {
	w      uint32
	head   uint32
	chunks uint32
	tail   uint32
}

// granularity picks the widest word not exceeding max for which the range
// holds at least one word and, unless unaligned access is allowed, both
// pointers share an alignment remainder.
func (e *Engine) granularity(max Width, d, s, n uint32, paired bool) uint32 {
	w := uint32(max)
	for w > 1 {
		if n >= w && (!paired || e.cfg.UnalignedAccess || d%w == s%w) {
			break
		}
		w >>= 1
	}
	return w
}

func decompose(w, d, n uint32, reverse bool) split {
	var head uint32
	if reverse {
		head = (d + n) % w
	} else {
		head = (w - d%w) % w
	}
	if head > n {
		head = n
	}
	tail := (n - head) % w
	return split{w: w, head: head, chunks: (n - head - tail) / w, tail: tail}
}

// Copy moves n bytes from src to dst. Overlapping ranges are handled like
// memmove: when dst lies inside (src, src+n) the copy runs back to front.
func (e *Engine) Copy(dst, src containers.Ptr, n uint32) error {
	if err := e.check2("Copy", dst, src, n); err != nil {
		return err
	}
	if dst == src {
		return nil
	}
	buf, err := e.view("Copy")
	if err != nil {
		return err
	}
	d, s := uint32(dst), uint32(src)
	reverse := d > s && d < s+n
	if !e.cfg.SizeOptimization {
		copyBytes(buf, d, s, n, reverse)
		return nil
	}
	e.copyRange(buf, e.cfg.BusWidth, d, s, n, reverse)
	return nil
}

// CopyBasic is Copy without the word fast path.
func (e *Engine) CopyBasic(dst, src containers.Ptr, n uint32) error {
	if err := e.check2("CopyBasic", dst, src, n); err != nil {
		return err
	}
	if dst == src {
		return nil
	}
	buf, err := e.view("CopyBasic")
	if err != nil {
		return err
	}
	d, s := uint32(dst), uint32(src)
	copyBytes(buf, d, s, n, d > s && d < s+n)
	return nil
}

func copyBytes(buf []byte, d, s, n uint32, reverse bool) {
	if reverse {
		for i := n; i > 0; i-- {
			buf[d+i-1] = buf[s+i-1]
		}
		return
	}
	for i := uint32(0); i < n; i++ {
		buf[d+i] = buf[s+i]
	}
}

func (e *Engine) copyRange(buf []byte, max Width, d, s, n uint32, reverse bool) {
	if n == 0 {
		return
	}
	w := e.granularity(max, d, s, n, true)
	if w == 1 {
		copyBytes(buf, d, s, n, reverse)
		return
	}
	sp := decompose(w, d, n, reverse)

	edge := func(d, s, n uint32) {
		if e.cfg.Recursive {
			e.copyRange(buf, Width(w>>1), d, s, n, reverse)
		} else {
			copyBytes(buf, d, s, n, reverse)
		}
	}

	if reverse {
		// high end first, then words descending, then the low end
		edge(d+n-sp.head, s+n-sp.head, sp.head)
		for i := sp.chunks; i > 0; i-- {
			off := sp.tail + (i-1)*w
			store(buf, d+off, w, load(buf, s+off, w))
		}
		edge(d, s, sp.tail)
		return
	}

	edge(d, s, sp.head)
	for i := uint32(0); i < sp.chunks; i++ {
		off := sp.head + i*w
		store(buf, d+off, w, load(buf, s+off, w))
	}
	tailOff := n - sp.tail
	edge(d+tailOff, s+tailOff, sp.tail)
}

// Set fills n bytes at dst with value.
func (e *Engine) Set(dst containers.Ptr, value byte, n uint32) error {
	if err := e.check("Set", dst, n); err != nil {
		return err
	}
	buf, err := e.view("Set")
	if err != nil {
		return err
	}
	if !e.cfg.SizeOptimization {
		setBytes(buf, uint32(dst), value, n)
		return nil
	}
	e.setRange(buf, e.cfg.BusWidth, uint32(dst), value, n)
	return nil
}

// SetBasic is Set without the word fast path.
func (e *Engine) SetBasic(dst containers.Ptr, value byte, n uint32) error {
	if err := e.check("SetBasic", dst, n); err != nil {
		return err
	}
	buf, err := e.view("SetBasic")
	if err != nil {
		return err
	}
	setBytes(buf, uint32(dst), value, n)
	return nil
}

// Zero clears n bytes at dst.
func (e *Engine) Zero(dst containers.Ptr, n uint32) error {
	return e.Set(dst, 0, n)
}

// ZeroBasic is Zero without the word fast path.
func (e *Engine) ZeroBasic(dst containers.Ptr, n uint32) error {
	return e.SetBasic(dst, 0, n)
}

func setBytes(buf []byte, d uint32, value byte, n uint32) {
	for i := uint32(0); i < n; i++ {
		buf[d+i] = value
	}
}

func (e *Engine) setRange(buf []byte, max Width, d uint32, value byte, n uint32) {
	if n == 0 {
		return
	}
	w := e.granularity(max, d, d, n, false)
	if w == 1 {
		setBytes(buf, d, value, n)
		return
	}
	sp := decompose(w, d, n, false)

	edge := func(d, n uint32) {
		if e.cfg.Recursive {
			e.setRange(buf, Width(w>>1), d, value, n)
		} else {
			setBytes(buf, d, value, n)
		}
	}

	pattern := uint64(value) * 0x0101010101010101
	edge(d, sp.head)
	for i := uint32(0); i < sp.chunks; i++ {
		store(buf, d+sp.head+i*w, w, pattern)
	}
	edge(d+n-sp.tail, sp.tail)
}

// SetArray writes count copies of the elemSize-byte value at value into
// consecutive slots starting at dst. The value is read once before anything
// is written, so it may live inside the destination range.
func (e *Engine) SetArray(dst, value containers.Ptr, elemSize, count uint32) error {
	total, pattern, err := e.arrayArgs("SetArray", dst, value, elemSize, count)
	if err != nil {
		return err
	}
	buf, err := e.view("SetArray")
	if err != nil {
		return err
	}
	d := uint32(dst)
	copy(buf[d:d+elemSize], pattern)
	filled := elemSize
	for filled < total {
		chunk := filled
		if chunk > total-filled {
			chunk = total - filled
		}
		if e.cfg.SizeOptimization {
			e.copyRange(buf, e.cfg.BusWidth, d+filled, d, chunk, false)
		} else {
			copyBytes(buf, d+filled, d, chunk, false)
		}
		filled += chunk
	}
	return nil
}

// SetArrayBasic is SetArray without the word fast path.
func (e *Engine) SetArrayBasic(dst, value containers.Ptr, elemSize, count uint32) error {
	_, pattern, err := e.arrayArgs("SetArrayBasic", dst, value, elemSize, count)
	if err != nil {
		return err
	}
	buf, err := e.view("SetArrayBasic")
	if err != nil {
		return err
	}
	d := uint32(dst)
	for i := uint32(0); i < count; i++ {
		for j := uint32(0); j < elemSize; j++ {
			buf[d+i*elemSize+j] = pattern[j]
		}
	}
	return nil
}

func (e *Engine) arrayArgs(op string, dst, value containers.Ptr, elemSize, count uint32) (uint32, []byte, error) {
	if count == 0 {
		return 0, nil, errors.InvalidParameter(errors.PhaseMemory, op, "zero count")
	}
	if err := e.check(op, value, elemSize); err != nil {
		return 0, nil, err
	}
	total := uint64(elemSize) * uint64(count)
	if total > uint64(^uint32(0)) {
		return 0, nil, errors.InvalidParameter(errors.PhaseMemory, op, "element size times count overflows")
	}
	if err := e.check(op, dst, uint32(total)); err != nil {
		return 0, nil, err
	}
	src, err := e.space.View(uint32(value), elemSize)
	if err != nil {
		return 0, nil, errors.Propagate(errors.PhaseMemory, op, err)
	}
	pattern := make([]byte, elemSize)
	copy(pattern, src)
	return uint32(total), pattern, nil
}

// Compare reports whether the n bytes at a and b are equal. It stops at the
// first differing word.
func (e *Engine) Compare(a, b containers.Ptr, n uint32) (bool, error) {
	if err := e.check2("Compare", a, b, n); err != nil {
		return false, err
	}
	if a == b {
		return true, nil
	}
	buf, err := e.view("Compare")
	if err != nil {
		return false, err
	}
	if !e.cfg.SizeOptimization {
		return compareBytes(buf, uint32(a), uint32(b), n), nil
	}
	return e.compareRange(buf, e.cfg.BusWidth, uint32(a), uint32(b), n), nil
}

// CompareBasic is Compare without the word fast path.
func (e *Engine) CompareBasic(a, b containers.Ptr, n uint32) (bool, error) {
	if err := e.check2("CompareBasic", a, b, n); err != nil {
		return false, err
	}
	if a == b {
		return true, nil
	}
	buf, err := e.view("CompareBasic")
	if err != nil {
		return false, err
	}
	return compareBytes(buf, uint32(a), uint32(b), n), nil
}

func compareBytes(buf []byte, a, b, n uint32) bool {
	for i := uint32(0); i < n; i++ {
		if buf[a+i] != buf[b+i] {
			return false
		}
	}
	return true
}

func (e *Engine) compareRange(buf []byte, max Width, a, b, n uint32) bool {
	if n == 0 {
		return true
	}
	w := e.granularity(max, a, b, n, true)
	if w == 1 {
		return compareBytes(buf, a, b, n)
	}
	sp := decompose(w, a, n, false)

	edge := func(a, b, n uint32) bool {
		if e.cfg.Recursive {
			return e.compareRange(buf, Width(w>>1), a, b, n)
		}
		return compareBytes(buf, a, b, n)
	}

	if !edge(a, b, sp.head) {
		return false
	}
	for i := uint32(0); i < sp.chunks; i++ {
		off := sp.head + i*w
		if load(buf, a+off, w) != load(buf, b+off, w) {
			return false
		}
	}
	tailOff := n - sp.tail
	return edge(a+tailOff, b+tailOff, sp.tail)
}

// MoveAndClear copies n bytes from src to dst and zeroes the part of the
// source range the copy did not overwrite.
func (e *Engine) MoveAndClear(dst, src containers.Ptr, n uint32) error {
	if err := e.check2("MoveAndClear", dst, src, n); err != nil {
		return err
	}
	if dst == src {
		return nil
	}
	if err := e.Copy(dst, src, n); err != nil {
		return err
	}
	d, s := uint32(dst), uint32(src)
	switch {
	case d > s && d < s+n:
		return e.Zero(src, d-s)
	case s > d && s < d+n:
		return e.Zero(containers.Ptr(d+n), s-d)
	}
	return e.Zero(src, n)
}

// Swap exchanges n bytes between a and b. Sizes up to the configured
// threshold use a fixed scratch array; larger ones borrow scratch from alloc.
func (e *Engine) Swap(a, b containers.Ptr, n uint32, alloc containers.Allocator) error {
	if n <= e.cfg.SwapThreshold {
		return e.SwapStack(a, b, n)
	}
	return e.SwapHeap(a, b, n, alloc)
}

func (e *Engine) swapArgs(op string, a, b containers.Ptr, n uint32) error {
	if err := e.check2(op, a, b, n); err != nil {
		return err
	}
	if a != b && uint32(a) < uint32(b)+n && uint32(b) < uint32(a)+n {
		return errors.InvalidParameter(errors.PhaseMemory, op, "overlapping regions")
	}
	return nil
}

// SwapStack exchanges up to StackSwapSize bytes through a fixed array.
func (e *Engine) SwapStack(a, b containers.Ptr, n uint32) error {
	if err := e.swapArgs("SwapStack", a, b, n); err != nil {
		return err
	}
	if n > StackSwapSize {
		return errors.New(errors.PhaseMemory, errors.KindInvalidParameter).
			Op("SwapStack").
			Detail("size %d exceeds stack scratch of %d bytes", n, StackSwapSize).
			Build()
	}
	if a == b {
		return nil
	}
	buf, err := e.view("SwapStack")
	if err != nil {
		return err
	}
	var tmp [StackSwapSize]byte
	x, y := uint32(a), uint32(b)
	copy(tmp[:n], buf[x:x+n])
	copy(buf[x:x+n], buf[y:y+n])
	copy(buf[y:y+n], tmp[:n])
	return nil
}

// SwapHeap exchanges n bytes through a scratch block from alloc. The block
// is released on every path.
func (e *Engine) SwapHeap(a, b containers.Ptr, n uint32, alloc containers.Allocator) (err error) {
	if err := e.swapArgs("SwapHeap", a, b, n); err != nil {
		return err
	}
	if alloc == nil {
		return errors.NilHandle(errors.PhaseMemory, "SwapHeap", "allocator")
	}
	if alloc.Space() != e.space {
		return errors.InvalidParameter(errors.PhaseMemory, "SwapHeap", "allocator serves a different space")
	}
	if a == b {
		return nil
	}

	scratch := containers.Alloc(alloc, n)
	if scratch == containers.Null {
		return errors.AllocationFailed(errors.PhaseMemory, "SwapHeap", n)
	}
	Logger().Debug("heap swap",
		zap.Uint32("size", n),
		zap.Uint32("scratch", uint32(scratch)),
	)
	defer func() {
		if ferr := containers.Free(alloc, scratch); ferr != nil {
			Logger().Warn("failed to release swap scratch",
				zap.Uint32("scratch", uint32(scratch)),
				zap.Error(ferr),
			)
			if err == nil {
				err = errors.Propagate(errors.PhaseMemory, "SwapHeap", ferr)
			}
		}
	}()

	if err := e.Copy(scratch, a, n); err != nil {
		return err
	}
	if err := e.Copy(a, b, n); err != nil {
		return err
	}
	return e.Copy(b, scratch, n)
}
