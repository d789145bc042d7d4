package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/containers/alloc"
	"github.com/wippyai/containers/dynarray"
	"github.com/wippyai/containers/memops"
)

func main() {
	var (
		backend     = flag.String("backend", "linear", "Address space backend (linear or wazero)")
		elem        = flag.Uint("elem", 4, "Element size in bytes (1, 2, 4 or 8)")
		ops         = flag.String("ops", "", "Commands to run, e.g. push:1,push:2,insert:1:99,remove:0:1")
		benchMode   = flag.Bool("bench", false, "Compare basic and optimized memory primitives")
		size        = flag.Uint("size", 1<<16, "Region size in bytes for -bench")
		rounds      = flag.Int("rounds", 100, "Repetitions per primitive for -bench")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Log allocator and array activity")
	)
	flag.Parse()

	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer l.Sync()
		memops.SetLogger(l.Named("memops"))
		alloc.SetLogger(l.Named("alloc"))
		dynarray.SetLogger(l.Named("dynarray"))
	}

	ctx := context.Background()
	var err error
	switch {
	case *benchMode:
		err = runBench(ctx, *backend, uint32(*size), *rounds)
	case *interactive:
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			err = fmt.Errorf("interactive mode needs a terminal")
			break
		}
		err = runInteractive(ctx, *backend, uint32(*elem))
	case *ops != "":
		err = runScript(ctx, *backend, uint32(*elem), *ops)
	default:
		fmt.Fprintln(os.Stderr, "Usage: arrayctl [-backend linear|wazero] [-elem 4] -ops push:1,insert:0:7,...")
		fmt.Fprintln(os.Stderr, "       arrayctl -bench [-size N] [-rounds N]")
		fmt.Fprintln(os.Stderr, "       arrayctl -i  (interactive mode)")
		fmt.Fprintln(os.Stderr, "Commands: push:v insert:i:v set:i:v fill:n:v remove:i[:n] swap:i:j")
		fmt.Fprintln(os.Stderr, "          resize:n reserve:n pop popfront reverse shrink erase clear")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runScript(ctx context.Context, backend string, elem uint32, script string) error {
	s, err := newSession(ctx, backend, elem)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.run(script, func(cmd string, err error) {
		if err != nil {
			fmt.Printf("%-16s error: %v\n", cmd, err)
			return
		}
		fmt.Printf("%-16s %s\n", cmd, s)
	})
}

func runBench(ctx context.Context, backend string, size uint32, rounds int) error {
	space, closeSpace, err := newSpace(ctx, backend)
	if err != nil {
		return err
	}
	defer closeSpace()
	fmt.Printf("Backend: %s, region: %d bytes, rounds: %d\n\n", backend, size, rounds)
	return bench(space, size, rounds, os.Stdout)
}
