package layering

import (
	"fmt"
	"reflect"
	"sort"
)

// Union returns the top-level field union of base and override. Fields present
// in override win; fields only present in base are kept. Nested values are
// replaced wholesale, never merged recursively.
//
// For maps a field is present when its key exists. A struct carries every
// field, so override's exported fields always win, zero values included.
// Pointers and interfaces are
// followed to their element. Any other kind, or a mismatch between the two
// dynamic types, resolves to a copy of override.
func Union[T any](base, override T) T {
	var zero T
	merged := unionValue(reflect.ValueOf(base), reflect.ValueOf(override))
	if !merged.IsValid() {
		return zero
	}
	return convertTo[T](merged)
}

func unionValue(base, override reflect.Value) reflect.Value {
	if !override.IsValid() {
		return cloneValue(base)
	}
	if !base.IsValid() || base.Type() != override.Type() {
		return cloneValue(override)
	}

	switch override.Kind() {
	case reflect.Pointer:
		if override.IsNil() {
			return cloneValue(base)
		}
		if base.IsNil() {
			return cloneValue(override)
		}
		merged := unionValue(base.Elem(), override.Elem())
		result := reflect.New(override.Type().Elem())
		result.Elem().Set(merged)
		return result
	case reflect.Interface:
		if override.IsNil() {
			return cloneValue(base)
		}
		if base.IsNil() {
			return cloneValue(override)
		}
		merged := unionValue(base.Elem(), override.Elem())
		wrapped := reflect.New(override.Type()).Elem()
		wrapped.Set(merged)
		return wrapped
	case reflect.Map:
		if override.IsNil() {
			return cloneValue(base)
		}
		result := reflect.MakeMapWithSize(override.Type(), base.Len()+override.Len())
		elemType := override.Type().Elem()
		iter := base.MapRange()
		for iter.Next() {
			result.SetMapIndex(iter.Key(), cloneElem(iter.Value(), elemType))
		}
		iter = override.MapRange()
		for iter.Next() {
			result.SetMapIndex(iter.Key(), cloneElem(iter.Value(), elemType))
		}
		return result
	case reflect.Struct:
		return cloneValue(override)
	default:
		return cloneValue(override)
	}
}

// Fields lists the top-level field names Union treats as present in value,
// sorted. Map keys are formatted with fmt.Sprint; struct fields use their Go
// name. Values without fields report nil.
func Fields(value any) []string {
	v := reflect.ValueOf(value)
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil
	}

	var names []string
	switch v.Kind() {
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			names = append(names, fmt.Sprint(iter.Key().Interface()))
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			names = append(names, t.Field(i).Name)
		}
	default:
		return nil
	}
	sort.Strings(names)
	return names
}
