package analyze

import (
	"strings"

	"typemapper/internal/common"
)

// TypeString returns the type as written in Go source, with package paths
// shortened to their alias ("store.Order", "[]*store.OrderItem").
func TypeString(t *TypeInfo) string {
	if t == nil {
		return "<nil>"
	}

	if t.IsNamed() {
		if alias := common.PkgAlias(t.ID.PkgPath); alias != "" {
			return alias + "." + t.ID.Name
		}

		return t.ID.Name
	}

	switch t.Kind {
	case TypeKindPointer:
		return "*" + TypeString(t.ElemType)
	case TypeKindSlice:
		return "[]" + TypeString(t.ElemType)
	case TypeKindStruct:
		return "struct{...}"
	default:
		if t.GoType != nil {
			return t.GoType.String()
		}

		return common.UnknownStr
	}
}

// MemberPath is one member reachable from a root struct.
type MemberPath struct {
	Path  string // e.g. "Customer.Address.City" or "Items[].Name"
	Field *FieldInfo
}

// MemberPaths lists the member paths of root up to maxDepth levels of
// nesting, depth first in field order. Members of slice elements are marked
// with "[]"; embedded structs contribute their fields under the promoted
// name as well.
func MemberPaths(root *TypeInfo, maxDepth int) []MemberPath {
	var out []MemberPath

	collectPaths(root.Deref(), nil, 0, maxDepth, map[*TypeInfo]bool{}, &out)

	return out
}

func collectPaths(t *TypeInfo, prefix []string, depth, maxDepth int, active map[*TypeInfo]bool, out *[]MemberPath) {
	if t == nil || t.Kind != TypeKindStruct || depth > maxDepth || active[t] {
		return
	}

	active[t] = true
	defer delete(active, t)

	for i := range t.Fields {
		f := &t.Fields[i]
		path := append(append([]string(nil), prefix...), f.Name)

		*out = append(*out, MemberPath{Path: strings.Join(path, "."), Field: f})

		if f.Embedded {
			collectPaths(f.Type.Deref(), prefix, depth, maxDepth, active, out)
			continue
		}

		elem := f.Type.Deref()
		if elem != nil && elem.Kind == TypeKindSlice {
			path[len(path)-1] += "[]"
			elem = elem.ElemType.Deref()
		}

		collectPaths(elem, path, depth+1, maxDepth, active, out)
	}
}
