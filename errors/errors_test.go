package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseContainer,
				Kind:   KindInvalidParameter,
				Op:     "InsertRange",
				Detail: "index beyond size",
			},
			contains: []string{"[container]", "invalid_parameter", "InsertRange", "index beyond size"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseMemory,
				Kind:  KindGeneralFailure,
			},
			contains: []string{"[memory]", "general_failure"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseAllocator,
				Kind:   KindGeneralFailure,
				Detail: "space full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[allocator]", "general_failure", "space full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseMemory,
		Kind:  KindGeneralFailure,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not follow the cause chain")
	}
}

func TestError_Is(t *testing.T) {
	err := Unsupported(PhaseContainer, "SwapValues")

	if !errors.Is(err, ErrUnsupported) {
		t.Error("sentinel without phase should match on kind")
	}
	if errors.Is(err, ErrInvalidParameter) {
		t.Error("different kind should not match")
	}
	if !errors.Is(err, &Error{Phase: PhaseContainer, Kind: KindUnsupported}) {
		t.Error("same phase and kind should match")
	}
	if errors.Is(err, &Error{Phase: PhaseIterable, Kind: KindUnsupported}) {
		t.Error("different phase should not match")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if !errors.Is(wrapped, ErrUnsupported) {
		t.Error("errors.Is should see through fmt wrapping")
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want Status
	}{
		{nil, StatusSuccess},
		{errors.New("plain"), StatusGeneralFailure},
		{InvalidParameter(PhaseMemory, "Copy", "nil pointer"), StatusInvalidParameter},
		{InvalidHandle(PhaseDispatch, "Lookup", 7), StatusInvalidHandle},
		{NotAllocated(PhaseAllocator, "Free", 0x40), StatusMemoryNotAllocated},
		{Unsupported(PhaseContainer, "Move"), StatusUnsupported},
		{AllocationFailed(PhaseAllocator, "Alloc", 16), StatusGeneralFailure},
		{fmt.Errorf("ctx: %w", NotAllocated(PhaseAllocator, "Free", 8)), StatusMemoryNotAllocated},
	}

	for _, tt := range tests {
		if got := StatusOf(tt.err); got != tt.want {
			t.Errorf("StatusOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestPropagate_KeepsKind(t *testing.T) {
	inner := Unsupported(PhaseContainer, "Copy")
	outer := Propagate(PhaseContainer, "InsertRange", inner)

	if !errors.Is(outer, ErrUnsupported) {
		t.Fatalf("propagated error lost its kind: %v", outer)
	}
	if StatusOf(outer) != StatusUnsupported {
		t.Errorf("StatusOf = %v", StatusOf(outer))
	}
	if Propagate(PhaseContainer, "x", nil) != nil {
		t.Error("Propagate(nil) should be nil")
	}
}

func TestBuilder(t *testing.T) {
	err := New(PhaseIterator, KindInvalidParameter).
		Op("OnInsertion").
		Detail("index %d + count %d > size %d", 3, 2, 4).
		Value(3).
		Build()

	if err.Op != "OnInsertion" {
		t.Errorf("Op = %q", err.Op)
	}
	if err.Detail != "index 3 + count 2 > size 4" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Status() != StatusInvalidParameter {
		t.Errorf("Status = %v", err.Status())
	}
}

func TestStatus_String(t *testing.T) {
	if StatusMemoryNotAllocated.String() != "memory not allocated" {
		t.Errorf("got %q", StatusMemoryNotAllocated.String())
	}
	if Status(-42).String() != "status(-42)" {
		t.Errorf("got %q", Status(-42).String())
	}
}

func TestIsAsKindOf(t *testing.T) {
	inner := NotAllocated(PhaseAllocator, "Free", 0x40)
	outer := fmt.Errorf("releasing scratch: %w", inner)

	if !Is(outer, ErrNotAllocated) {
		t.Fatal("Is should see through fmt wrapping")
	}
	var e *Error
	if !As(outer, &e) || e != inner {
		t.Fatal("As should find the wrapped *Error")
	}
	if KindOf(outer) != KindNotAllocated {
		t.Errorf("KindOf = %s", KindOf(outer))
	}
	if KindOf(fmt.Errorf("plain")) != KindGeneralFailure {
		t.Error("foreign errors are general failures")
	}
}
