package history

import (
	"fmt"
	"sort"
	"strings"
)

// FieldDescriptor describes a dotted field path of a snapshot and its Go type.
type FieldDescriptor struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// Describe lists the leaf field paths of the current snapshot. Only nested
// map[string]any values are walked; any other snapshot is reported as a
// single descriptor with an empty path.
func (s *Stack[T]) Describe() []FieldDescriptor {
	if s.cursor < 0 {
		return nil
	}
	return DescribeFields(s.entries[s.cursor])
}

// DescribeFields lists the leaf field paths of value in lexical order.
func DescribeFields(value any) []FieldDescriptor {
	if m, ok := value.(map[string]any); ok {
		return deriveFieldDescriptors(m, "")
	}
	if value == nil {
		return nil
	}
	return []FieldDescriptor{{Type: typeName(value)}}
}

func deriveFieldDescriptors(value any, prefix string) []FieldDescriptor {
	switch typed := value.(type) {
	case map[string]any:
		if len(typed) == 0 {
			if prefix == "" {
				return nil
			}
			return []FieldDescriptor{{
				Path: prefix,
				Type: "map[string]any",
			}}
		}
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var fields []FieldDescriptor
		for _, key := range keys {
			fields = append(fields, deriveFieldDescriptors(typed[key], joinPath(prefix, key))...)
		}
		return fields
	case []any:
		elementType := "any"
		if len(typed) > 0 {
			elementType = typeName(typed[0])
		}
		return []FieldDescriptor{{
			Path: prefix,
			Type: "[]" + elementType,
		}}
	default:
		return []FieldDescriptor{{
			Path: prefix,
			Type: typeName(typed),
		}}
	}
}

func typeName(value any) string {
	if value == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", value)
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}
