// Package memory provides Space backends for containers.
//
// # Go Heap
//
// Linear keeps the space in a Go byte slice that grows page by page:
//
//	space := memory.NewLinear(memory.DefaultLinearConfig())
//
// # WebAssembly Linear Memory
//
// Wazero adapts a wazero api.Memory, so containers can live inside the
// memory of a WebAssembly instance:
//
//	space := memory.WrapMemory(instance.ExportedMemory("memory"))
//
// NewWazeroSpace creates a standalone memory by instantiating a module that
// only exports one:
//
//	space, err := memory.NewWazeroSpace(ctx, 1, 256)
//	defer space.Close(ctx)
//
// Views returned by either backend alias the underlying memory and become
// stale after Grow.
package memory
