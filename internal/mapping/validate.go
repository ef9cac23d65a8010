package mapping

import (
	"fmt"
	"strings"

	"typemapper/internal/analyze"
	"typemapper/internal/diagnostic"
	"typemapper/internal/match"
)

// ValidateStructure checks a profile without type information: required
// names, path syntax, duplicate pairs, members governed by more than one
// rule, and base pairs declared after the mappings using them.
func ValidateStructure(pf *ProfileFile) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if pf == nil {
		res.AddError("profile_is_nil", "mapping profile is nil", "", "")
		return res
	}

	declared := make(map[TypePair]int, len(pf.TypeMappings))

	for i := range pf.TypeMappings {
		tm := &pf.TypeMappings[i]
		tp := tm.Pair()

		if tm.Source == "" || tm.Target == "" {
			res.AddError("missing_type", "mapping must specify both source and target", tp, "")
			continue
		}

		pair := TypePair{Source: tm.Source, Target: tm.Target}
		if _, dup := declared[pair]; dup {
			res.AddError("duplicate_mapping", fmt.Sprintf("mapping %s is declared more than once", tp), tp, "")
			continue
		}

		declared[pair] = i

		validateBaseOrder(res, tm, declared)
		validateRuleSyntax(res, tm)
	}

	return res
}

func validateBaseOrder(res *diagnostic.Diagnostics, tm *TypeMapping, declared map[TypePair]int) {
	if tm.BaseOn == nil {
		return
	}

	tp := tm.Pair()

	switch {
	case tm.BaseOn.Source == "" || tm.BaseOn.Target == "":
		res.AddError("invalid_base_on", "base_on must specify both source and target", tp, "")
	case *tm.BaseOn == TypePair{Source: tm.Source, Target: tm.Target}:
		res.AddError("invalid_base_on", "mapping cannot be based on itself", tp, "")
	default:
		if _, ok := declared[*tm.BaseOn]; !ok {
			res.AddInfo("external_base_on",
				fmt.Sprintf("base mapping %s is not declared earlier in the profile and must already be registered", tm.BaseOn),
				tp, "")
		}
	}
}

func validateRuleSyntax(res *diagnostic.Diagnostics, tm *TypeMapping) {
	tp := tm.Pair()
	governed := make(map[string]string)

	claim := func(target, by string) {
		if _, err := ParseMemberPath(target); err != nil || strings.Contains(target, ".") {
			res.AddError("invalid_target_member", fmt.Sprintf("%s target %q must be a single member name", by, target), tp, target)
			return
		}

		if prev, ok := governed[target]; ok {
			res.AddWarning("conflicting_rules",
				fmt.Sprintf("member %q is configured by %s and %s; the %s rule wins", target, prev, by, by),
				tp, target)
		}

		governed[target] = by
	}

	for _, ref := range tm.Members {
		if _, err := ParseMemberPath(ref.Source); err != nil {
			res.AddError("invalid_source_path", err.Error(), tp, ref.Target)
		}

		claim(ref.Target, "members")
	}

	for _, v := range tm.Values {
		claim(v.Target, "values")
	}

	for _, ig := range tm.Ignore {
		claim(ig, "ignore")
	}
}

// Validate validates a profile against the given type graph. Besides the
// structural checks it resolves every type and member path.
func Validate(pf *ProfileFile, graph *analyze.TypeGraph) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	res.Merge(ValidateStructure(pf))

	if pf == nil {
		return res
	}

	if graph == nil {
		res.AddError("graph_is_nil", "type graph is nil", "", "")
		return res
	}

	for i := range pf.TypeMappings {
		tm := &pf.TypeMappings[i]
		tp := tm.Pair()

		srcT := resolveStruct(res, graph, tm.Source, "source", tp)
		dstT := resolveStruct(res, graph, tm.Target, "target", tp)

		if srcT == nil || dstT == nil {
			continue
		}

		caseSensitive := effectiveCaseSensitive(pf, tm)

		for _, ref := range tm.Members {
			if err := validatePathAgainstType(ref.Target, dstT, caseSensitive); err != nil {
				res.AddError("invalid_target_member", fmt.Sprintf("invalid target member: %v", err), tp, ref.Target)
			}

			if err := validatePathAgainstType(ref.Source, srcT, caseSensitive); err != nil {
				res.AddError("invalid_source_path", fmt.Sprintf("invalid source path: %v", err), tp, ref.Source)
			}
		}

		for _, v := range tm.Values {
			if err := validatePathAgainstType(v.Target, dstT, caseSensitive); err != nil {
				res.AddError("invalid_value_member", fmt.Sprintf("invalid value member: %v", err), tp, v.Target)
			}
		}

		for _, ig := range tm.Ignore {
			if err := validatePathAgainstType(ig, dstT, caseSensitive); err != nil {
				res.AddError("invalid_ignore_member", fmt.Sprintf("invalid ignore member: %v", err), tp, ig)
			}
		}

		if tm.BaseOn != nil {
			validateBaseEmbedding(res, graph, tm, srcT, dstT)
		}
	}

	return res
}

func resolveStruct(res *diagnostic.Diagnostics, graph *analyze.TypeGraph, id, role, tp string) *analyze.TypeInfo {
	t := ResolveTypeID(id, graph)
	if t == nil {
		res.AddError(strings.ReplaceAll(role, " ", "_")+"_type_not_found", fmt.Sprintf("%s type %q not found", role, id), tp, id)
		return nil
	}

	if t.Deref().Kind != analyze.TypeKindStruct {
		res.AddError(strings.ReplaceAll(role, " ", "_")+"_type_not_struct", fmt.Sprintf("%s type %q is a %s, not a struct", role, id, t.Kind), tp, id)
		return nil
	}

	return t
}

func validateBaseEmbedding(res *diagnostic.Diagnostics, graph *analyze.TypeGraph, tm *TypeMapping, srcT, dstT *analyze.TypeInfo) {
	tp := tm.Pair()

	srcBase := resolveStruct(res, graph, tm.BaseOn.Source, "base source", tp)
	dstBase := resolveStruct(res, graph, tm.BaseOn.Target, "base target", tp)

	if srcBase != nil && !srcT.Embeds(srcBase) {
		res.AddError("base_not_embedded", fmt.Sprintf("%s does not embed %s", tm.Source, tm.BaseOn.Source), tp, "")
	}

	if dstBase != nil && !dstT.Embeds(dstBase) {
		res.AddError("base_not_embedded", fmt.Sprintf("%s does not embed %s", tm.Target, tm.BaseOn.Target), tp, "")
	}
}

func effectiveCaseSensitive(pf *ProfileFile, tm *TypeMapping) bool {
	switch {
	case tm.CaseSensitive != nil:
		return *tm.CaseSensitive
	case pf.CaseSensitive != nil:
		return *pf.CaseSensitive
	default:
		return false
	}
}

func validatePathAgainstType(pathStr string, typeInfo *analyze.TypeInfo, caseSensitive bool) error {
	fp, err := ParseMemberPath(pathStr)
	if err != nil {
		return err
	}

	current := typeInfo
	for _, seg := range fp.Segments {
		if current == nil {
			return fmt.Errorf("nil type while resolving %q", seg.Name)
		}

		// Auto-deref pointers (matches mapping behavior).
		current = current.Deref()

		if current.Kind != analyze.TypeKindStruct {
			return fmt.Errorf("cannot access member %q on non-struct kind %s", seg.Name, current.Kind)
		}

		fld := current.FindField(seg.Name, caseSensitive)
		if fld == nil {
			msg := fmt.Sprintf("member %q not found in %s", seg.Name, current.ID)
			if hints := match.Suggest(seg.Name, current.FieldNames(), 3); len(hints) > 0 {
				msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(hints, ", "))
			}

			return fmt.Errorf("%s", msg)
		}

		if !fld.Exported {
			return fmt.Errorf("member %q is not exported", seg.Name)
		}

		current = fld.Type
	}

	return nil
}
