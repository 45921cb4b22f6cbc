package format

import (
	"reflect"
	"testing"
)

func TestIndentStackDecrease(t *testing.T) {
	tests := []struct {
		name    string
		parts   []int
		k       int
		want    []int
		dropped int
	}{
		{name: "partial top", parts: []int{2, 3}, k: 1, want: []int{2, 2}},
		{name: "exact top", parts: []int{2, 3}, k: 3, want: []int{2}},
		{name: "spills into next", parts: []int{2, 3}, k: 4, want: []int{1}},
		{name: "everything", parts: []int{2, 3}, k: 5, want: []int{}},
		{name: "past empty", parts: []int{2, 3}, k: 8, want: []int{}, dropped: 3},
		{name: "empty stack", parts: nil, k: 2, want: nil, dropped: 2},
		{name: "zero", parts: []int{1}, k: 0, want: []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := indentStack{parts: append([]int(nil), tt.parts...)}
			dropped := s.decrease(tt.k)
			if dropped != tt.dropped {
				t.Errorf("dropped = %d, want %d", dropped, tt.dropped)
			}
			if len(s.parts) != len(tt.want) || (len(tt.want) > 0 && !reflect.DeepEqual(s.parts, tt.want)) {
				t.Errorf("parts = %v, want %v", s.parts, tt.want)
			}
			for _, p := range s.parts {
				if p <= 0 {
					t.Errorf("non-positive entry in %v", s.parts)
				}
			}
		})
	}
}

func TestIndentStackLevel(t *testing.T) {
	var s indentStack
	s.push(2)
	s.push(0)
	s.push(1)
	if got := s.level(false); got != 3 {
		t.Errorf("cumulative level = %d, want 3", got)
	}
	if got := s.level(true); got != 2 {
		t.Errorf("progressive level = %d, want 2", got)
	}
}

func TestCharSet(t *testing.T) {
	s := NewCharSet("})")
	if !s.Contains('}') || !s.Contains(')') || s.Contains('{') {
		t.Errorf("unexpected membership for %q", s.String())
	}
	if got := s.String(); got != ")}" {
		t.Errorf("String() = %q, want %q", got, ")}")
	}
}
