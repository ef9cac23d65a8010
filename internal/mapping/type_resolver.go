package mapping

import (
	"strings"

	"typemapper/internal/analyze"
	"typemapper/internal/common"
)

// ResolveTypeID resolves a type ID string like:
// - "store.Order" (short)
// - "typemapper/examples/store.Order" (full)
// - "Order" (name only, first match wins).
//
// A leading "*" is ignored: profiles name struct types.
func ResolveTypeID(typeIDStr string, graph *analyze.TypeGraph) *analyze.TypeInfo {
	if graph == nil {
		return nil
	}

	pkgStr, name := common.SplitQualified(strings.TrimPrefix(typeIDStr, "*"))
	if name == "" {
		return nil
	}

	if pkgStr == "" {
		for _, id := range graph.SortedIDs() {
			if id.Name == name {
				return graph.Types[id]
			}
		}

		return nil
	}

	// Exact match for fully qualified import paths.
	if t := graph.GetType(analyze.TypeID{PkgPath: pkgStr, Name: name}); t != nil {
		return t
	}

	// Suffix match for short forms like "store.Order".
	for _, id := range graph.SortedIDs() {
		if id.Name != name {
			continue
		}

		if id.PkgPath == pkgStr || strings.HasSuffix(id.PkgPath, "/"+pkgStr) {
			return graph.Types[id]
		}
	}

	return nil
}
