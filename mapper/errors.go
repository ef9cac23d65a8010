package mapper

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Error kinds. Every error returned by the registry matches one of them with errors.Is.
var (
	ErrAlreadyRegistered             = errors.New("mapping already registered")
	ErrInvalidCollectionRegistration = errors.New("collection types cannot be registered directly")
	ErrBaseNotRegistered             = errors.New("base mapping is not registered")
	ErrMappingNotFound               = errors.New("no mapping found")
	ErrCompilation                   = errors.New("mapping compilation failed")
	ErrUnsupportedType               = errors.New("unsupported type")
	ErrNotAssignable                 = errors.New("type does not embed base type")
	ErrAlreadyCompiled               = errors.New("mapping already compiled")
	ErrInvalidProfile                = errors.New("invalid mapping profile")
)

// Error describes a failure concerning one type pair.
type Error struct {
	Kind   error
	Source reflect.Type
	Dest   reflect.Type
	Member string // Destination member, if the failure concerns one
	Err    error  // Underlying cause, may be nil
}

func newError(kind error, src, dst reflect.Type, member string, cause error) *Error {
	return &Error{Kind: kind, Source: src, Dest: dst, Member: member, Err: cause}
}

func (e *Error) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s -> %s", typeName(e.Source), typeName(e.Dest))

	if e.Member != "" {
		fmt.Fprintf(&b, " (member %s)", e.Member)
	}

	b.WriteString(": ")
	b.WriteString(e.Kind.Error())

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}
