package mapper

import "typemapper/internal/common"

// Mode selects the compiled variant of a mapping.
type Mode uint8

const (
	// AllocateNew builds a fresh destination for every call.
	AllocateNew Mode = 1 << iota
	// PopulateExisting writes into a destination supplied by the caller.
	PopulateExisting

	// AllModes selects both variants.
	AllModes = AllocateNew | PopulateExisting
)

func (m Mode) String() string {
	switch m {
	case AllocateNew:
		return "allocate-new"
	case PopulateExisting:
		return "populate-existing"
	case AllModes:
		return "all"
	default:
		return common.UnknownStr
	}
}

// Has reports whether m includes every bit of other.
func (m Mode) Has(other Mode) bool {
	return m&other == other
}

// modes expands m into its single-mode values, allocate-new first.
func (m Mode) modes() []Mode {
	var out []Mode

	for _, single := range []Mode{AllocateNew, PopulateExisting} {
		if m.Has(single) {
			out = append(out, single)
		}
	}

	return out
}
