package typeinfo

import (
	"fmt"
	"reflect"
)

// EmbedPath returns the index path of the embedded base struct inside derived.
// Both arguments are struct types. The embedded field may be B or *B and
// every embedding on the way must be exported.
func EmbedPath(derived, base reflect.Type) ([]int, bool) {
	if derived.Kind() != reflect.Struct || base.Kind() != reflect.Struct {
		return nil, false
	}

	for _, sf := range reflect.VisibleFields(derived) {
		if !sf.Anonymous || !sf.IsExported() || !reachable(derived, sf.Index) {
			continue
		}

		if sf.Type == base || (sf.Type.Kind() == reflect.Pointer && sf.Type.Elem() == base) {
			return sf.Index, true
		}
	}

	return nil, false
}

// Assignable reports whether a value of type from can stand in for type to:
// identical types, or from embeds to (pointer-ness must match).
func Assignable(from, to reflect.Type) bool {
	_, err := Upcaster(from, to)
	return err == nil
}

// Upcaster returns a function converting a value of type from into the
// embedded value of type to. For pointers the result addresses the embedded
// struct inside the original value, so writes through it are visible.
func Upcaster(from, to reflect.Type) (func(reflect.Value) reflect.Value, error) {
	if from == to {
		return func(v reflect.Value) reflect.Value { return v }, nil
	}

	if (from.Kind() == reflect.Pointer) != (to.Kind() == reflect.Pointer) {
		return nil, fmt.Errorf("%s and %s differ in pointer-ness", from, to)
	}

	derived, base := Deref(from), Deref(to)

	index, ok := EmbedPath(derived, base)
	if !ok {
		return nil, fmt.Errorf("%s does not embed %s", derived, base)
	}

	if from.Kind() == reflect.Pointer {
		return func(v reflect.Value) reflect.Value {
			if !v.IsValid() || v.IsNil() {
				return reflect.Zero(to)
			}

			field, err := v.Elem().FieldByIndexErr(index)
			if err != nil {
				return reflect.Zero(to)
			}

			if field.Kind() == reflect.Pointer {
				return field
			}

			return field.Addr()
		}, nil
	}

	return func(v reflect.Value) reflect.Value {
		if !v.IsValid() {
			return reflect.Zero(to)
		}

		field, err := v.FieldByIndexErr(index)
		if err != nil {
			return reflect.Zero(to)
		}

		if field.Kind() == reflect.Pointer {
			if field.IsNil() {
				return reflect.Zero(to)
			}

			return field.Elem()
		}

		return field
	}, nil
}
