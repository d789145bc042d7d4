package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which layer reported the error
type Phase string

const (
	PhaseMemory    Phase = "memory"    // memory engine
	PhaseAllocator Phase = "allocator" // allocator capability
	PhaseDispatch  Phase = "dispatch"  // capability lookup
	PhaseContainer Phase = "container" // container capability
	PhaseIterator  Phase = "iterator"  // iterator notifications
	PhaseIterable  Phase = "iterable"  // iterable capability
	PhaseText      Phase = "text"      // string helpers
)

// Kind categorizes the error. Every kind maps to exactly one Status.
type Kind string

const (
	KindGeneralFailure   Kind = "general_failure"
	KindInvalidParameter Kind = "invalid_parameter"
	KindInvalidHandle    Kind = "invalid_handle"
	KindNotAllocated     Kind = "not_allocated"
	KindUnsupported      Kind = "unsupported"
)

// Status is the numeric result code reported at API boundaries.
type Status int32

const (
	StatusSuccess            Status = 0
	StatusGeneralFailure     Status = -1
	StatusInvalidParameter   Status = -2
	StatusInvalidHandle      Status = -3
	StatusMemoryNotAllocated Status = -4
	StatusUnsupported        Status = -5
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusGeneralFailure:
		return "general failure"
	case StatusInvalidParameter:
		return "invalid parameter"
	case StatusInvalidHandle:
		return "invalid handle"
	case StatusMemoryNotAllocated:
		return "memory not allocated"
	case StatusUnsupported:
		return "unsupported"
	}
	return fmt.Sprintf("status(%d)", int32(s))
}

// Sentinels for errors.Is. They carry no phase, so they match any phase.
var (
	ErrGeneralFailure   = &Error{Kind: KindGeneralFailure}
	ErrInvalidParameter = &Error{Kind: KindInvalidParameter}
	ErrInvalidHandle    = &Error{Kind: KindInvalidHandle}
	ErrNotAllocated     = &Error{Kind: KindNotAllocated}
	ErrUnsupported      = &Error{Kind: KindUnsupported}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without a phase
// matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Status returns the numeric status for this error's kind.
func (e *Error) Status() Status {
	return kindStatus(e.Kind)
}

func kindStatus(k Kind) Status {
	switch k {
	case KindInvalidParameter:
		return StatusInvalidParameter
	case KindInvalidHandle:
		return StatusInvalidHandle
	case KindNotAllocated:
		return StatusMemoryNotAllocated
	case KindUnsupported:
		return StatusUnsupported
	}
	return StatusGeneralFailure
}

// StatusOf maps any error to a Status. nil is success; errors outside this
// package are general failures.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Status()
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return StatusGeneralFailure
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Op sets the failing operation name
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidParameter creates a precondition violation error
func InvalidParameter(phase Phase, op, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidParameter,
		Op:     op,
		Detail: detail,
	}
}

// NilHandle creates an invalid-parameter error for an absent handle
func NilHandle(phase Phase, op, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidParameter,
		Op:     op,
		Detail: fmt.Sprintf("nil %s", what),
	}
}

// OutOfRange creates an invalid-parameter error for an index combination
// outside [0, length)
func OutOfRange(phase Phase, op string, index, count, length uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidParameter,
		Op:     op,
		Detail: fmt.Sprintf("range [%d, +%d) out of bounds (length %d)", index, count, length),
		Value:  index,
	}
}

// InvalidHandle creates an error for a handle that does not resolve
func InvalidHandle(phase Phase, op string, handle uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidHandle,
		Op:     op,
		Detail: fmt.Sprintf("handle %d does not resolve", handle),
		Value:  handle,
	}
}

// Unsupported creates an error for an empty dispatch slot
func Unsupported(phase Phase, op string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Op:     op,
		Detail: "operation not supported by this dispatch table",
	}
}

// AllocationFailed creates a resource exhaustion error
func AllocationFailed(phase Phase, op string, size uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindGeneralFailure,
		Op:     op,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
		Value:  size,
	}
}

// NotAllocated creates an error for releasing a block the allocator never
// handed out
func NotAllocated(phase Phase, op string, ptr uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotAllocated,
		Op:     op,
		Detail: fmt.Sprintf("block at %#x was not allocated here", ptr),
		Value:  ptr,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, op string) *Error {
	return &Error{
		Phase: phase,
		Kind:  kind,
		Op:    op,
		Cause: cause,
	}
}

// Propagate re-labels err with op while keeping its kind, so callers can
// report where a nested failure surfaced.
func Propagate(phase Phase, op string, err error) error {
	if err == nil {
		return nil
	}
	kind := KindGeneralFailure
	if e, ok := err.(*Error); ok {
		kind = e.Kind
	}
	return &Error{
		Phase: phase,
		Kind:  kind,
		Op:    op,
		Cause: err,
	}
}
