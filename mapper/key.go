package mapper

import (
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// Key identifies an ordered (source, destination) type pair.
// reflect.Type values are unique per type, so two keys are equal exactly
// when both sides are the same types.
type Key struct {
	Source reflect.Type
	Dest   reflect.Type
}

// KeyOf builds the key for a type pair.
func KeyOf(src, dst reflect.Type) Key {
	return Key{Source: src, Dest: dst}
}

// KeyFor builds the key for the type pair (S, D).
func KeyFor[S, D any]() Key {
	return KeyOf(reflect.TypeFor[S](), reflect.TypeFor[D]())
}

func (k Key) String() string {
	return typeName(k.Source) + " -> " + typeName(k.Dest)
}

// Fingerprint is a compact hash of both type names, used as a log field.
// It is not unique and is never used for lookups.
func (k Key) Fingerprint() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(typeName(k.Source))
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(typeName(k.Dest))

	return d.Sum64()
}
