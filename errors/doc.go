// Package errors provides structured error types for the containers module.
//
// Errors are categorized by Phase (the layer that reported the error) and
// Kind (the status category). Every Kind maps to one numeric Status, so the
// status taxonomy of the container framework is preserved:
//
//	success, general failure, invalid parameter, invalid handle,
//	memory not allocated, unsupported
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseContainer, errors.KindInvalidParameter).
//		Op("InsertRange").
//		Detail("index %d beyond size %d", idx, size).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfRange(errors.PhaseContainer, "RemoveRange", 4, 2, 5)
//	err := errors.Unsupported(errors.PhaseContainer, "SwapValues")
//
// Sentinels match on kind alone, regardless of phase:
//
//	if errors.Is(err, cerrors.ErrUnsupported) { ... }
//
// StatusOf converts any error into a Status for callers that need the
// numeric code.
package errors
