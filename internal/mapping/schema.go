package mapping

import (
	"strings"
)

// ProfileFile represents the root of a YAML mapping profile.
type ProfileFile struct {
	// Version of the profile schema, checked against SupportedVersions.
	Version string `yaml:"version,omitempty"`

	// CaseSensitive is the default member name matching of the profile's
	// mappings. Unset means the registry default.
	CaseSensitive *bool `yaml:"case_sensitive,omitempty"`

	// TypeMappings is the ordered list of registrations. A mapping that is
	// based on another pair must come after it.
	TypeMappings []TypeMapping `yaml:"mappings"`
}

// TypeMapping describes the registration of one source/target type pair.
type TypeMapping struct {
	// Source type identifier (e.g., "store.Order" or full import path).
	Source string `yaml:"source"`

	// Target type identifier (e.g., "warehouse.Order" or full import path).
	Target string `yaml:"target"`

	// BaseOn copies the configuration of an earlier registered pair whose
	// types are embedded in Source and Target.
	BaseOn *TypePair `yaml:"base_on,omitempty"`

	// CaseSensitive overrides the profile default for this pair.
	CaseSensitive *bool `yaml:"case_sensitive,omitempty"`

	// Flatten enables matching AddressCity to Address.City.
	Flatten bool `yaml:"flatten,omitempty"`

	// Members maps target members to source paths, in file order.
	// Example: { ID: OrderID, City: Address.City }
	Members MemberMap `yaml:"members,omitempty"`

	// Values assigns constants to target members. Each value is decoded
	// into the type of its member when the profile is applied.
	Values ValueMap `yaml:"values,omitempty"`

	// Ignore lists target members left untouched.
	Ignore StringOrArray `yaml:"ignore,omitempty"`
}

// Pair returns the "source->target" label used in diagnostics.
func (tm *TypeMapping) Pair() string {
	return tm.Source + "->" + tm.Target
}

// TypePair names a source and a target type.
type TypePair struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

func (p TypePair) String() string {
	return p.Source + "->" + p.Target
}

// MemberRef maps one target member to a source path.
type MemberRef struct {
	Target string
	Source string
}

// MemberMap is an ordered YAML mapping of target member to source path.
type MemberMap []MemberRef

// Targets returns the target members in order.
func (m MemberMap) Targets() []string {
	out := make([]string, len(m))
	for i, ref := range m {
		out[i] = ref.Target
	}

	return out
}

// StringOrArray is a type that can be unmarshaled from either a string or an array of strings.
// This allows YAML fields to accept both "field" and ["field1", "field2"].
type StringOrArray []string

// PathSegment represents a parsed segment of a member path.
type PathSegment struct {
	// Name is the member name.
	Name string

	// IsSlice indicates this segment accesses slice elements (e.g., "Items[]").
	IsSlice bool
}

// FieldPath represents a parsed member path like "Address.City".
type FieldPath struct {
	Segments []PathSegment
}

// String returns the path as a string.
func (p FieldPath) String() string {
	var sb strings.Builder

	for i, seg := range p.Segments {
		if i > 0 {
			sb.WriteString(".")
		}

		sb.WriteString(seg.Name)

		if seg.IsSlice {
			sb.WriteString("[]")
		}
	}

	return sb.String()
}

// Names returns the member names of the path without slice markers.
func (p FieldPath) Names() []string {
	names := make([]string, len(p.Segments))
	for i, seg := range p.Segments {
		names[i] = seg.Name
	}

	return names
}

// HasSlice returns true if any segment addresses slice elements.
func (p FieldPath) HasSlice() bool {
	for _, seg := range p.Segments {
		if seg.IsSlice {
			return true
		}
	}

	return false
}

// IsSimple returns true if this is a simple single-member path (no nesting, no slices).
func (p FieldPath) IsSimple() bool {
	return len(p.Segments) == 1 && !p.Segments[0].IsSlice
}

// Equals returns true if two paths are equal.
func (p FieldPath) Equals(other FieldPath) bool {
	if len(p.Segments) != len(other.Segments) {
		return false
	}

	for i, seg := range p.Segments {
		if seg != other.Segments[i] {
			return false
		}
	}

	return true
}
