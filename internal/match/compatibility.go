package match

import (
	"reflect"

	"typemapper/internal/common"
	"typemapper/internal/typeinfo"
)

// TypeCompatibility represents how a source member type reaches a destination member type.
type TypeCompatibility int

const (
	// TypeIncompatible means the types cannot be mapped.
	TypeIncompatible TypeCompatibility = iota
	// TypeNested means both sides are objects (or both collections) and are
	// mapped through the registry.
	TypeNested
	// TypePointerLift means a pointer must be dereferenced or a value's address taken.
	TypePointerLift
	// TypeConvertible means types are convertible using Go's type conversion.
	TypeConvertible
	// TypeAssignable means the source type can be directly assigned to the target.
	TypeAssignable
	// TypeIdentical means the types are exactly the same.
	TypeIdentical
)

const (
	VerdictIdentical    = "identical"
	VerdictAssignable   = "assignable"
	VerdictConvertible  = "convertible"
	VerdictPointerLift  = "pointer_lift"
	VerdictNested       = "nested"
	VerdictIncompatible = "incompatible"
)

// String returns a human-readable name for the compatibility level.
func (c TypeCompatibility) String() string {
	switch c {
	case TypeIdentical:
		return VerdictIdentical
	case TypeAssignable:
		return VerdictAssignable
	case TypeConvertible:
		return VerdictConvertible
	case TypePointerLift:
		return VerdictPointerLift
	case TypeNested:
		return VerdictNested
	case TypeIncompatible:
		return VerdictIncompatible
	default:
		return common.UnknownStr
	}
}

// Direct returns true when the value can be stored without the registry.
func (c TypeCompatibility) Direct() bool {
	return c >= TypePointerLift
}

// TypeCompatibilityResult contains detailed information about type compatibility.
type TypeCompatibilityResult struct {
	Compatibility TypeCompatibility
	Reason        string
	SourceType    string
	TargetType    string
}

// Classify determines how a source type reaches a target type.
func Classify(source, target reflect.Type) TypeCompatibilityResult {
	res := TypeCompatibilityResult{
		SourceType: source.String(),
		TargetType: target.String(),
	}

	switch {
	case source == target:
		res.Compatibility, res.Reason = TypeIdentical, "types are identical"
	case source.AssignableTo(target):
		res.Compatibility, res.Reason = TypeAssignable, "source is assignable to target"
	case safelyConvertible(source, target):
		res.Compatibility, res.Reason = TypeConvertible, "source is convertible to target"
	case liftable(source, target):
		res.Compatibility, res.Reason = TypePointerLift, "requires pointer dereference or address"
	case typeinfo.IsObject(source) && typeinfo.IsObject(target):
		res.Compatibility, res.Reason = TypeNested, "both types are objects"
	case typeinfo.IsCollection(source) && typeinfo.IsCollection(target):
		res.Compatibility, res.Reason = TypeNested, "both types are collections"
	default:
		res.Compatibility, res.Reason = TypeIncompatible, "types are not compatible"
	}

	return res
}

// safelyConvertible accepts numeric<->numeric and same-kind conversions only.
// Go also allows int->string and string<->[]byte which rarely mean what a
// member copy intends. Struct conversions are left to the registry so that
// registered rules apply.
func safelyConvertible(source, target reflect.Type) bool {
	if !source.ConvertibleTo(target) {
		return false
	}

	if IsNumericKind(source.Kind()) && IsNumericKind(target.Kind()) {
		return true
	}

	switch source.Kind() {
	case reflect.Pointer, reflect.Struct:
		return false
	default:
		return source.Kind() == target.Kind()
	}
}

func liftable(source, target reflect.Type) bool {
	if source.Kind() == reflect.Pointer && target.Kind() != reflect.Pointer {
		e := source.Elem()
		return e == target || e.AssignableTo(target) || safelyConvertible(e, target)
	}

	if source.Kind() != reflect.Pointer && target.Kind() == reflect.Pointer {
		e := target.Elem()
		return source == e || source.AssignableTo(e) || safelyConvertible(source, e)
	}

	return false
}

// IsNumericKind returns true for integer, float and complex kinds.
func IsNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	default:
		return false
	}
}

// Convert stores v into a value of type target according to the verdict.
// The second result is false when v cannot be converted (e.g. a nil pointer
// dereference yields the zero value and true).
func Convert(v reflect.Value, target reflect.Type) (reflect.Value, bool) {
	if !v.IsValid() {
		return reflect.Zero(target), true
	}

	source := v.Type()

	switch {
	case source == target:
		return v, true
	case source.AssignableTo(target):
		out := reflect.New(target).Elem()
		out.Set(v)

		return out, true
	case safelyConvertible(source, target):
		return v.Convert(target), true
	case source.Kind() == reflect.Pointer && target.Kind() != reflect.Pointer && liftable(source, target):
		if v.IsNil() {
			return reflect.Zero(target), true
		}

		return Convert(v.Elem(), target)
	case source.Kind() != reflect.Pointer && target.Kind() == reflect.Pointer && liftable(source, target):
		inner, ok := Convert(v, target.Elem())
		if !ok {
			return reflect.Value{}, false
		}

		ptr := reflect.New(target.Elem())
		ptr.Elem().Set(inner)

		return ptr, true
	default:
		return reflect.Value{}, false
	}
}
