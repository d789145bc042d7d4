package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/containers"
	"github.com/wippyai/containers/alloc"
	"github.com/wippyai/containers/dynarray"
	"github.com/wippyai/containers/memory"
)

// session is one array of unsigned integers in a fresh space.
type session struct {
	space containers.Space
	alloc *alloc.FreeList
	arr   *dynarray.Array
	elem  uint32
	close func() error
}

func newSpace(ctx context.Context, backend string) (containers.Space, func() error, error) {
	switch backend {
	case "", "linear":
		return memory.NewLinear(memory.DefaultLinearConfig()), func() error { return nil }, nil
	case "wazero":
		w, err := memory.NewWazeroSpace(ctx, 1, 1024)
		if err != nil {
			return nil, nil, err
		}
		return w, func() error { return w.Close(ctx) }, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q (want linear or wazero)", backend)
}

func newSession(ctx context.Context, backend string, elem uint32) (*session, error) {
	switch elem {
	case 1, 2, 4, 8:
	default:
		return nil, fmt.Errorf("element size %d not supported (want 1, 2, 4 or 8)", elem)
	}
	space, closeSpace, err := newSpace(ctx, backend)
	if err != nil {
		return nil, err
	}
	a := alloc.NewFreeList(space, alloc.DefaultConfig())
	arr, err := dynarray.New(a, elem, nil)
	if err != nil {
		_ = closeSpace()
		return nil, err
	}
	return &session{space: space, alloc: a, arr: arr, elem: elem, close: closeSpace}, nil
}

func (s *session) Close() error {
	err := s.arr.Destroy()
	if cerr := s.close(); err == nil {
		err = cerr
	}
	return err
}

func (s *session) encode(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:s.elem]
}

func (s *session) decode(b []byte) uint64 {
	var full [8]byte
	copy(full[:], b)
	return binary.LittleEndian.Uint64(full[:])
}

// scratch stores v in a temporary block for operations that take an
// element address.
func (s *session) scratch(v uint64) (containers.Ptr, func(), error) {
	p := s.alloc.Alloc(s.elem)
	if p == containers.Null {
		return containers.Null, nil, fmt.Errorf("out of memory")
	}
	if err := s.space.Write(uint32(p), s.encode(v)); err != nil {
		_ = s.alloc.Free(p)
		return containers.Null, nil, err
	}
	return p, func() { _ = s.alloc.Free(p) }, nil
}

func parseArgs(cmd string, args []string, n int) ([]uint64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s takes %d argument(s), got %d", cmd, n, len(args))
	}
	out := make([]uint64, n)
	for i, a := range args {
		v, err := strconv.ParseUint(a, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: bad number %q", cmd, a)
		}
		out[i] = v
	}
	return out, nil
}

func u32(v uint64) uint32 {
	if v > uint64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(v)
}

// apply runs one command such as "push:1" or "remove:0:2".
func (s *session) apply(command string) error {
	fields := strings.Split(strings.TrimSpace(command), ":")
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "push":
		v, err := parseArgs(cmd, args, 1)
		if err != nil {
			return err
		}
		return s.arr.PushBytes(s.encode(v[0]))
	case "insert":
		v, err := parseArgs(cmd, args, 2)
		if err != nil {
			return err
		}
		p, free, err := s.scratch(v[1])
		if err != nil {
			return err
		}
		defer free()
		return s.arr.InsertElement(u32(v[0]), p)
	case "set":
		v, err := parseArgs(cmd, args, 2)
		if err != nil {
			return err
		}
		return s.arr.Set(u32(v[0]), s.encode(v[1]))
	case "fill":
		v, err := parseArgs(cmd, args, 2)
		if err != nil {
			return err
		}
		p, free, err := s.scratch(v[1])
		if err != nil {
			return err
		}
		defer free()
		return s.arr.Assign(u32(v[0]), p)
	case "remove":
		if len(args) == 1 {
			args = append(args, "1")
		}
		v, err := parseArgs(cmd, args, 2)
		if err != nil {
			return err
		}
		return s.arr.RemoveRange(u32(v[0]), u32(v[1]))
	case "swap":
		v, err := parseArgs(cmd, args, 2)
		if err != nil {
			return err
		}
		return s.arr.SwapValues(u32(v[0]), u32(v[1]))
	case "resize", "reserve":
		v, err := parseArgs(cmd, args, 1)
		if err != nil {
			return err
		}
		if cmd == "resize" {
			return s.arr.Resize(u32(v[0]), containers.Null)
		}
		return s.arr.Reserve(u32(v[0]))
	}

	if len(args) != 0 {
		return fmt.Errorf("%s takes no arguments", cmd)
	}
	switch cmd {
	case "pop":
		return s.arr.Pop(containers.Null)
	case "popfront":
		return s.arr.PopFront(containers.Null)
	case "reverse":
		return s.arr.Reverse()
	case "shrink":
		return s.arr.ShrinkToFit()
	case "erase":
		return s.arr.Erase()
	case "clear":
		return s.arr.Clear()
	}
	return fmt.Errorf("unknown command %q", cmd)
}

// run applies a comma-separated script, reporting every step to each.
func (s *session) run(script string, each func(cmd string, err error)) error {
	for _, cmd := range strings.Split(script, ",") {
		if strings.TrimSpace(cmd) == "" {
			continue
		}
		err := s.apply(cmd)
		each(strings.TrimSpace(cmd), err)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *session) values() ([]uint64, error) {
	out := make([]uint64, 0, s.arr.Size())
	for i := uint32(0); i < s.arr.Size(); i++ {
		b, err := s.arr.Get(i)
		if err != nil {
			return nil, err
		}
		out = append(out, s.decode(b))
	}
	return out, nil
}

func (s *session) String() string {
	vals, err := s.values()
	if err != nil {
		return "error: " + err.Error()
	}
	return fmt.Sprintf("%v size=%d capacity=%d", vals, s.arr.Size(), s.arr.Capacity())
}
