package history

import (
	"reflect"
	"testing"
)

func TestDescribeFields(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  []FieldDescriptor
	}{
		{name: "nil", value: nil, want: nil},
		{name: "empty map", value: map[string]any{}, want: nil},
		{
			name: "nested map",
			value: map[string]any{
				"title": "a",
				"meta":  map[string]any{"count": 2, "empty": map[string]any{}},
				"tags":  []any{"x"},
				"none":  nil,
			},
			want: []FieldDescriptor{
				{Path: "meta.count", Type: "int"},
				{Path: "meta.empty", Type: "map[string]any"},
				{Path: "none", Type: "nil"},
				{Path: "tags", Type: "[]string"},
				{Path: "title", Type: "string"},
			},
		},
		{name: "scalar", value: 3, want: []FieldDescriptor{{Type: "int"}}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := DescribeFields(tc.value); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("unexpected descriptors:\n got %+v\nwant %+v", got, tc.want)
			}
		})
	}
}

func TestStackDescribe(t *testing.T) {
	s := NewStack[map[string]any]()
	if got := s.Describe(); got != nil {
		t.Fatalf("expected nil descriptors on empty stack, got %+v", got)
	}
	_ = s.Append(map[string]any{"x": 1})
	want := []FieldDescriptor{{Path: "x", Type: "int"}}
	if got := s.Describe(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected descriptors %+v", got)
	}
}
