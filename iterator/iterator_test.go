package iterator

import (
	"testing"

	"github.com/wippyai/containers/errors"
)

type recorder struct {
	calls []string
}

func (r *recorder) InvalidateIteration() error { r.calls = append(r.calls, "invalidate"); return nil }
func (r *recorder) UpdateIteration() error     { r.calls = append(r.calls, "update"); return nil }
func (r *recorder) OnInsertion(i, k, n uint32) error {
	r.calls = append(r.calls, "insert")
	return nil
}
func (r *recorder) OnRemoval(i, k, n uint32) error {
	r.calls = append(r.calls, "remove")
	return nil
}
func (r *recorder) OnDestruction() error { r.calls = append(r.calls, "destroy"); return nil }

func TestNotifyInsertion(t *testing.T) {
	tests := []struct {
		name               string
		index, count, size uint32
		wantErr            bool
	}{
		{"append", 3, 2, 5, false},
		{"front", 0, 1, 1, false},
		{"exceeds new size", 4, 2, 5, true},
		{"zero count", 0, 0, 5, true},
		{"overflow", InvalidIndex, 2, 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			err := NotifyInsertion(r, tt.index, tt.count, tt.size)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrInvalidParameter) {
					t.Fatalf("error = %v, want invalid parameter", err)
				}
				if len(r.calls) != 0 {
					t.Fatal("rejected notification reached the iterator")
				}
				return
			}
			if err != nil || len(r.calls) != 1 || r.calls[0] != "insert" {
				t.Fatalf("err = %v, calls = %v", err, r.calls)
			}
		})
	}
}

func TestNotifyRemoval(t *testing.T) {
	tests := []struct {
		name               string
		index, count, size uint32
		wantErr            bool
	}{
		{"middle", 1, 2, 2, false},
		{"everything", 0, 4, 0, false},
		{"index past new size", 3, 1, 2, true},
		{"zero count", 0, 0, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			err := NotifyRemoval(r, tt.index, tt.count, tt.size)
			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNilIterator(t *testing.T) {
	checks := []error{
		Invalidate(nil),
		Update(nil),
		NotifyInsertion(nil, 0, 1, 1),
		NotifyRemoval(nil, 0, 1, 0),
		NotifyDestruction(nil),
	}
	for i, err := range checks {
		if !errors.Is(err, errors.ErrInvalidParameter) {
			t.Errorf("check %d: error = %v", i, err)
		}
	}
}

func TestForwarding(t *testing.T) {
	r := &recorder{}
	_ = Invalidate(r)
	_ = Update(r)
	_ = NotifyDestruction(r)
	want := []string{"invalidate", "update", "destroy"}
	for i, c := range want {
		if r.calls[i] != c {
			t.Fatalf("calls = %v, want %v", r.calls, want)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := &recorder{}
	h := Register(r)
	if h == 0 {
		t.Fatal("Register returned 0")
	}
	if Register(r) != h {
		t.Fatal("Register should intern")
	}
	got, ok := Lookup(h)
	if !ok || got != Iterator(r) {
		t.Fatal("Lookup failed")
	}
	Unregister(h)
	Unregister(h)
	if _, ok := Lookup(h); ok {
		t.Fatal("Lookup after releasing every reference should fail")
	}
	if Register(nil) != 0 {
		t.Fatal("Register(nil) should return 0")
	}
}
