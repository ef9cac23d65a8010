// Package typeinfo provides cached runtime introspection of mappable types.
//
// A mappable object type is a struct or a pointer to a struct. Members are the
// exported visible fields of the struct, promoted fields of embedded structs
// included.
//
// Key types:
//   - Struct: cached member table of a struct type
//   - Field: member name, type and full index path
//   - Path: a resolved chain of member accesses with nil guards
package typeinfo
