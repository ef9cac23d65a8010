package typeinfo

import (
	"reflect"
	"strings"
	"sync"
)

// Field describes one member of a struct.
type Field struct {
	Name      string
	Type      reflect.Type
	Index     []int // Full index path from the outer struct (see reflect.Value.FieldByIndex)
	Anonymous bool
}

// Promoted returns true if the field is reached through an embedded struct.
func (f Field) Promoted() bool {
	return len(f.Index) > 1
}

// Struct is the cached member table of a struct type.
type Struct struct {
	Type   reflect.Type // Always of kind reflect.Struct
	Fields []Field

	byName map[string]int
	byFold map[string]int
}

var cache sync.Map // reflect.Type -> *Struct

// Of returns the member table for a struct or pointer-to-struct type.
// The second result is false for any other type.
func Of(t reflect.Type) (*Struct, bool) {
	st := Deref(t)
	if st == nil || st.Kind() != reflect.Struct {
		return nil, false
	}

	if cached, ok := cache.Load(st); ok {
		return cached.(*Struct), true
	}

	s := build(st)
	actual, _ := cache.LoadOrStore(st, s)

	return actual.(*Struct), true
}

func build(st reflect.Type) *Struct {
	s := &Struct{
		Type:   st,
		byName: make(map[string]int),
		byFold: make(map[string]int),
	}

	for _, sf := range reflect.VisibleFields(st) {
		if !sf.IsExported() || !reachable(st, sf.Index) {
			continue
		}

		s.Fields = append(s.Fields, Field{
			Name:      sf.Name,
			Type:      sf.Type,
			Index:     sf.Index,
			Anonymous: sf.Anonymous,
		})
	}

	for i, f := range s.Fields {
		s.byName[f.Name] = i

		folded := strings.ToLower(f.Name)
		if _, taken := s.byFold[folded]; !taken {
			s.byFold[folded] = i
		}
	}

	return s
}

// reachable reports whether every embedded field on the way to index is
// exported. Values read through an unexported embedding are read-only.
func reachable(st reflect.Type, index []int) bool {
	for i := 1; i < len(index); i++ {
		if !st.FieldByIndex(index[:i]).IsExported() {
			return false
		}
	}

	return true
}

// Lookup finds a member by name. An exact match always wins; with
// caseSensitive=false a case-folded match is tried next.
func (s *Struct) Lookup(name string, caseSensitive bool) (Field, bool) {
	if i, ok := s.byName[name]; ok {
		return s.Fields[i], true
	}

	if caseSensitive {
		return Field{}, false
	}

	if i, ok := s.byFold[strings.ToLower(name)]; ok {
		return s.Fields[i], true
	}

	return Field{}, false
}

// Names returns all member names in declaration order.
func (s *Struct) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}

	return names
}

// Members returns the fields a mapper assigns individually: embedded structs
// are skipped because their promoted fields are listed on their own.
func (s *Struct) Members() []Field {
	result := make([]Field, 0, len(s.Fields))

	for _, f := range s.Fields {
		if f.Anonymous && IsObject(f.Type) {
			continue
		}

		result = append(result, f)
	}

	return result
}

// Deref strips one level of pointer.
func Deref(t reflect.Type) reflect.Type {
	if t != nil && t.Kind() == reflect.Pointer {
		return t.Elem()
	}

	return t
}

// IsObject returns true for structs and pointers to structs.
func IsObject(t reflect.Type) bool {
	t = Deref(t)
	return t != nil && t.Kind() == reflect.Struct
}

// IsCollection returns true for slices and arrays (the enumerable kinds).
// []byte is treated as a scalar.
func IsCollection(t reflect.Type) bool {
	if t == nil {
		return false
	}

	switch t.Kind() {
	case reflect.Slice:
		return t.Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return true
	default:
		return false
	}
}

// IsNillable returns true for kinds whose zero value is nil.
func IsNillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// IsAbsent reports whether v holds no value: invalid, or a nil of a nillable kind.
func IsAbsent(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}

	return IsNillable(v.Type()) && v.IsNil()
}
