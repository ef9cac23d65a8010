package analyze

import (
	"go/types"
	"reflect"
	"slices"
	"strings"

	"typemapper/internal/common"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "typemapper/examples/store"
	Name    string // e.g., "Order"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// TypeKind represents the kind of a type.
type TypeKind int

const (
	TypeKindUnknown  TypeKind = iota
	TypeKindBasic             // int, string, bool, etc.
	TypeKindStruct            // struct type
	TypeKindPointer           // pointer to another type
	TypeKindSlice             // slice of another type
	TypeKindArray             // array of another type
	TypeKindMap               // map type
	TypeKindAlias             // named type wrapping another
	TypeKindExternal          // external/opaque type (e.g., time.Time)
)

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	switch k {
	case TypeKindBasic:
		return "basic"
	case TypeKindStruct:
		return "struct"
	case TypeKindPointer:
		return "pointer"
	case TypeKindSlice:
		return "slice"
	case TypeKindArray:
		return "array"
	case TypeKindMap:
		return "map"
	case TypeKindAlias:
		return "alias"
	case TypeKindExternal:
		return "external"
	default:
		return common.UnknownStr
	}
}

// TypeInfo describes a Go type in the type graph.
type TypeInfo struct {
	ID         TypeID      // Unique identifier (empty for unnamed types like *T or []T)
	Kind       TypeKind    // Kind of type
	Underlying *TypeInfo   // For named non-struct types, the underlying type
	ElemType   *TypeInfo   // For pointers, slices, arrays and maps, the element type
	Fields     []FieldInfo // For structs, the list of exported fields
	GoType     types.Type  // The original go/types.Type
}

// IsNamed returns true if this type has a name (TypeID is set).
func (t *TypeInfo) IsNamed() bool {
	return t.ID.Name != ""
}

// Deref strips pointers.
func (t *TypeInfo) Deref() *TypeInfo {
	for t != nil && t.Kind == TypeKindPointer && t.ElemType != nil {
		t = t.ElemType
	}

	return t
}

// FindField finds a field by name, including fields promoted through
// embedded structs. Shallower fields win, as in Go selectors; an ambiguous
// name at the shallowest depth yields nil.
func (t *TypeInfo) FindField(name string, caseSensitive bool) *FieldInfo {
	level := []*TypeInfo{t.Deref()}
	seen := map[*TypeInfo]bool{}

	for len(level) > 0 {
		var (
			found *FieldInfo
			count int
			next  []*TypeInfo
		)

		for _, st := range level {
			if st == nil || st.Kind != TypeKindStruct || seen[st] {
				continue
			}

			seen[st] = true

			for i := range st.Fields {
				f := &st.Fields[i]
				if sameName(f.Name, name, caseSensitive) {
					found = f
					count++
				}

				if f.Embedded {
					next = append(next, f.Type.Deref())
				}
			}
		}

		switch {
		case count == 1:
			return found
		case count > 1:
			return nil
		}

		level = next
	}

	return nil
}

// FieldNames returns the names of all fields reachable from t, promoted
// fields included, sorted.
func (t *TypeInfo) FieldNames() []string {
	var names []string

	t.walkFields(map[*TypeInfo]bool{}, func(f *FieldInfo) {
		if !slices.Contains(names, f.Name) {
			names = append(names, f.Name)
		}
	})

	slices.Sort(names)

	return names
}

// Embeds reports whether base is t itself or embedded in t at any depth.
func (t *TypeInfo) Embeds(base *TypeInfo) bool {
	t, base = t.Deref(), base.Deref()
	if t == nil || base == nil {
		return false
	}

	if t == base || (t.IsNamed() && t.ID == base.ID) {
		return true
	}

	found := false

	t.walkFields(map[*TypeInfo]bool{}, func(f *FieldInfo) {
		if !f.Embedded {
			return
		}

		if et := f.Type.Deref(); et != nil && (et == base || (et.IsNamed() && et.ID == base.ID)) {
			found = true
		}
	})

	return found
}

func (t *TypeInfo) walkFields(seen map[*TypeInfo]bool, fn func(f *FieldInfo)) {
	st := t.Deref()
	if st == nil || st.Kind != TypeKindStruct || seen[st] {
		return
	}

	seen[st] = true

	for i := range st.Fields {
		f := &st.Fields[i]
		fn(f)

		if f.Embedded {
			f.Type.walkFields(seen, fn)
		}
	}
}

func sameName(a, b string, caseSensitive bool) bool {
	if caseSensitive {
		return a == b
	}

	return strings.EqualFold(a, b)
}

// FieldInfo describes a struct field.
type FieldInfo struct {
	Name     string            // Go field name
	Exported bool              // Whether the field is exported
	Type     *TypeInfo         // Field type
	Tag      reflect.StructTag // Raw struct tag
	Embedded bool              // Whether the field is embedded (anonymous)
	Index    int               // Field index in the struct
}

// TypeGraph holds all analyzed types from loaded packages.
type TypeGraph struct {
	// Types maps TypeID to TypeInfo for all named types.
	Types map[TypeID]*TypeInfo
	// Packages maps package paths to their package info.
	Packages map[string]*PackageInfo
}

// NewTypeGraph creates a new empty TypeGraph.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Types:    make(map[TypeID]*TypeInfo),
		Packages: make(map[string]*PackageInfo),
	}
}

// GetType returns the TypeInfo for a given TypeID, or nil if not found.
func (g *TypeGraph) GetType(id TypeID) *TypeInfo {
	return g.Types[id]
}

// SortedIDs returns the IDs of all named types ordered by package path and name.
func (g *TypeGraph) SortedIDs() []TypeID {
	ids := make([]TypeID, 0, len(g.Types))
	for id := range g.Types {
		ids = append(ids, id)
	}

	slices.SortFunc(ids, func(a, b TypeID) int {
		return strings.Compare(a.String(), b.String())
	})

	return ids
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path  string   // Import path
	Name  string   // Package name
	Types []TypeID // Named types defined in this package
}
