// Package container defines the container capability.
//
// A container kind is described by a Table of operation slots. A container
// instance is a state in linear memory whose first word is the registry
// handle of its Table, so every call resolves through the object's own
// table:
//
//	err := container.Initialize(dynarray.Table, ref, 4, alloc, nil)
//	n, err := container.GetSize(ref)
//	err = container.InsertRange(ref, 0, 3, src)
//
// A nil slot is reported as an unsupported error (errors.ErrUnsupported),
// distinct from the operation failing. Precondition violations are
// reported as invalid-parameter errors before anything is changed.
//
// Containers whose elements are containers are initialized with the nested
// kind's Table. Their element size must cover the nested StateSize, and
// elements can only be inserted by copying an existing container.
package container
