package capability

import "testing"

type multi struct {
	table map[Tag]any
}

func (m *multi) Capability(tag Tag) any {
	if m == nil || m.table == nil {
		return nil
	}
	return m.table[tag]
}

func TestQuery(t *testing.T) {
	obj := &multi{table: map[Tag]any{
		Container: "container-view",
		Iterable:  42,
	}}

	tests := []struct {
		name string
		p    Provider
		tag  Tag
		want any
	}{
		{"supported", obj, Container, "container-view"},
		{"other supported", obj, Iterable, 42},
		{"unsupported", obj, Allocator, nil},
		{"unknown tag", obj, Tag(99), nil},
		{"zero tag", obj, Tag(0), nil},
		{"nil provider", nil, Container, nil},
		{"missing table", &multi{}, Container, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Query(tt.p, tt.tag); got != tt.want {
				t.Errorf("Query = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAs(t *testing.T) {
	obj := &multi{table: map[Tag]any{Iterable: 42}}

	n, ok := As[int](obj, Iterable)
	if !ok || n != 42 {
		t.Fatalf("As[int] = %d, %v", n, ok)
	}
	if _, ok := As[string](obj, Iterable); ok {
		t.Fatal("As with the wrong type should fail")
	}
	if _, ok := As[int](obj, Container); ok {
		t.Fatal("As of an unsupported tag should fail")
	}
}

func TestTag_String(t *testing.T) {
	for tag, want := range map[Tag]string{
		Allocator: "allocator",
		Container: "container",
		Iterator:  "iterator",
		Iterable:  "iterable",
		Custom:    "custom",
		Tag(0):    "unknown",
	} {
		if got := tag.String(); got != want {
			t.Errorf("Tag(%d).String() = %q, want %q", tag, got, want)
		}
	}
}
