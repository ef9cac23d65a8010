package typeinfo

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrMemberNotFound is returned when a path segment names no member.
var ErrMemberNotFound = errors.New("member not found")

// Path is a resolved chain of member accesses starting at an object type.
type Path struct {
	Names []string // Resolved member names, one per segment
	Steps []Field
}

// Type returns the type of the value the path yields.
func (p Path) Type() reflect.Type {
	if len(p.Steps) == 0 {
		return nil
	}

	return p.Steps[len(p.Steps)-1].Type
}

// String returns the dotted form of the path.
func (p Path) String() string {
	return strings.Join(p.Names, ".")
}

// Len returns the number of member accesses.
func (p Path) Len() int {
	return len(p.Steps)
}

// ResolvePath resolves member names against root, descending through
// struct and pointer-to-struct members.
func ResolvePath(root reflect.Type, names []string, caseSensitive bool) (Path, error) {
	if len(names) == 0 {
		return Path{}, errors.New("empty path")
	}

	var p Path

	current := root
	for i, name := range names {
		s, ok := Of(current)
		if !ok {
			return Path{}, fmt.Errorf("cannot access %q on non-struct type %s", name, current)
		}

		f, ok := s.Lookup(name, caseSensitive)
		if !ok {
			return Path{}, fmt.Errorf("%w: %q in %s", ErrMemberNotFound, strings.Join(names[:i+1], "."), s.Type)
		}

		p.Names = append(p.Names, f.Name)
		p.Steps = append(p.Steps, f)
		current = f.Type
	}

	return p, nil
}

// FindFlattened searches a nested path whose concatenated member names equal
// the concatenation of tokens, e.g. ["Address", "City"] for "AddressCity".
// Only paths of two or more steps are reported.
func FindFlattened(root reflect.Type, tokens []string, caseSensitive bool) (Path, bool) {
	p, ok := findFlattened(root, tokens, caseSensitive, 0)
	if !ok || p.Len() < 2 {
		return Path{}, false
	}

	return p, true
}

func findFlattened(root reflect.Type, tokens []string, caseSensitive bool, depth int) (Path, bool) {
	s, ok := Of(root)
	if !ok || depth > 8 {
		return Path{}, false
	}

	for i := 1; i <= len(tokens); i++ {
		f, ok := s.Lookup(strings.Join(tokens[:i], ""), caseSensitive)
		if !ok {
			continue
		}

		if i == len(tokens) {
			return Path{Names: []string{f.Name}, Steps: []Field{f}}, true
		}

		rest, ok := findFlattened(f.Type, tokens[i:], caseSensitive, depth+1)
		if !ok {
			continue
		}

		return Path{
			Names: append([]string{f.Name}, rest.Names...),
			Steps: append([]Field{f}, rest.Steps...),
		}, true
	}

	return Path{}, false
}

// Get reads the path from v. The second result is false when a nil pointer
// is met before the last member.
func (p Path) Get(v reflect.Value) (reflect.Value, bool) {
	for _, step := range p.Steps {
		var ok bool

		v, ok = indirect(v)
		if !ok {
			return reflect.Value{}, false
		}

		field, err := v.FieldByIndexErr(step.Index)
		if err != nil {
			return reflect.Value{}, false
		}

		v = field
	}

	return v, true
}

func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}, false
		}

		v = v.Elem()
	}

	return v, v.IsValid()
}

// FieldForSet returns the settable member at index inside the struct v,
// allocating nil embedded pointers along the way. The result is invalid when
// a nil embedded pointer cannot be allocated (unexported embedding).
func FieldForSet(v reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !v.CanSet() {
					return reflect.Value{}
				}

				v.Set(reflect.New(v.Type().Elem()))
			}

			v = v.Elem()
		}

		v = v.Field(x)
	}

	return v
}
