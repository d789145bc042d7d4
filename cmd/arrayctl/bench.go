package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/wippyai/containers"
	"github.com/wippyai/containers/alloc"
	"github.com/wippyai/containers/memops"
)

type benchResult struct {
	name         string
	basic, fast  time.Duration
	outputsAgree bool
}

// bench times the byte-wise and word-wise memory primitives on size-byte
// regions and checks that both produce the same bytes.
func bench(space containers.Space, size uint32, rounds int, w io.Writer) error {
	if size == 0 {
		return fmt.Errorf("size must be positive")
	}
	a := alloc.NewFreeList(space, alloc.DefaultConfig())
	src, dstBasic, dstFast := a.Alloc(size), a.Alloc(size), a.Alloc(size)
	if src == containers.Null || dstBasic == containers.Null || dstFast == containers.Null {
		return fmt.Errorf("cannot allocate three %d-byte regions", size)
	}
	defer func() {
		_ = a.Free(src)
		_ = a.Free(dstBasic)
		_ = a.Free(dstFast)
	}()

	rng := rand.New(rand.NewPCG(1, uint64(size)))
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(rng.Uint32())
	}
	if err := space.Write(uint32(src), data); err != nil {
		return err
	}

	e := memops.New(space, memops.DefaultConfig())
	timeIt := func(fn func() error) (time.Duration, error) {
		start := time.Now()
		for i := 0; i < rounds; i++ {
			if err := fn(); err != nil {
				return 0, err
			}
		}
		return time.Since(start), nil
	}
	same := func() (bool, error) {
		return e.CompareBasic(dstBasic, dstFast, size)
	}

	var results []benchResult
	add := func(name string, basic, fast func() error, check func() (bool, error)) error {
		tb, err := timeIt(basic)
		if err != nil {
			return fmt.Errorf("%s basic: %w", name, err)
		}
		tf, err := timeIt(fast)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		ok, err := check()
		if err != nil {
			return err
		}
		results = append(results, benchResult{name: name, basic: tb, fast: tf, outputsAgree: ok})
		return nil
	}

	if err := add("copy",
		func() error { return e.CopyBasic(dstBasic, src, size) },
		func() error { return e.Copy(dstFast, src, size) },
		same,
	); err != nil {
		return err
	}
	if err := add("set",
		func() error { return e.SetBasic(dstBasic, 0xA5, size) },
		func() error { return e.Set(dstFast, 0xA5, size) },
		same,
	); err != nil {
		return err
	}
	var eqBasic, eqFast bool
	if err := add("compare",
		func() (err error) { eqBasic, err = e.CompareBasic(dstBasic, dstFast, size); return err },
		func() (err error) { eqFast, err = e.Compare(dstBasic, dstFast, size); return err },
		func() (bool, error) { return eqBasic == eqFast, nil },
	); err != nil {
		return err
	}

	fmt.Fprintf(w, "%-8s %14s %14s %8s %s\n", "op", "basic", "optimized", "speedup", "agree")
	for _, r := range results {
		speedup := float64(r.basic) / float64(max(r.fast, 1))
		fmt.Fprintf(w, "%-8s %14s %14s %7.2fx %v\n", r.name, r.basic, r.fast, speedup, r.outputsAgree)
	}
	for _, r := range results {
		if !r.outputsAgree {
			return fmt.Errorf("%s: optimized and basic results differ", r.name)
		}
	}
	return nil
}
