// Package layering holds the reflection helpers used to store and combine
// history snapshots: a structural deep copy and a shallow, top-level field
// union.
//
// Only plain data is supported. Cyclic references are not detected, funcs and
// channels are copied by reference, and unexported struct fields are copied
// shallowly so values such as time.Time keep their state.
package layering

import "reflect"

// Clone returns a structural deep copy of value. Maps, slices, arrays,
// pointers and exported struct fields are copied recursively so the result
// shares no mutable storage with the input.
func Clone[T any](value T) T {
	var zero T
	cloned := cloneValue(reflect.ValueOf(value))
	if !cloned.IsValid() {
		return zero
	}
	return convertTo[T](cloned)
}

func convertTo[T any](v reflect.Value) T {
	var zero T
	target := reflect.TypeOf((*T)(nil)).Elem()
	if v.Type() == target {
		return v.Interface().(T)
	}
	if target.Kind() == reflect.Interface {
		if v.Type().Implements(target) {
			return v.Interface().(T)
		}
		return zero
	}
	if !v.Type().ConvertibleTo(target) {
		return zero
	}
	result := reflect.New(target).Elem()
	result.Set(v.Convert(target))
	return result.Interface().(T)
}

func cloneValue(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.New(v.Type().Elem())
		clone.Elem().Set(cloneValue(v.Elem()))
		return clone
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		elem := cloneValue(v.Elem())
		if !elem.IsValid() {
			return reflect.Zero(v.Type())
		}
		wrapped := reflect.New(v.Type()).Elem()
		wrapped.Set(elem)
		return wrapped
	case reflect.Struct:
		clone := reflect.New(v.Type()).Elem()
		clone.Set(v)
		for i := 0; i < v.NumField(); i++ {
			field := clone.Field(i)
			if !field.CanSet() {
				continue
			}
			field.Set(cloneValue(v.Field(i)))
		}
		return clone
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			clone.SetMapIndex(iter.Key(), cloneElem(iter.Value(), v.Type().Elem()))
		}
		return clone
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	case reflect.Array:
		clone := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	default:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		return out
	}
}

// cloneElem clones a map element. Map values of interface type come back from
// MapRange as the interface itself, but a nil entry must stay a typed zero.
func cloneElem(v reflect.Value, elemType reflect.Type) reflect.Value {
	cloned := cloneValue(v)
	if !cloned.IsValid() {
		return reflect.Zero(elemType)
	}
	return cloned
}
