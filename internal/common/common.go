// Package common holds small helpers shared by the internal packages.
package common

import (
	"path"
	"strings"
)

// UnknownStr is returned by String methods for out-of-range enum values.
const UnknownStr = "unknown"

// PkgAlias returns the package alias (last element of path) for a given package path.
// Returns empty string if pkgPath is empty.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	return path.Base(pkgPath)
}

// SplitQualified splits "pkg/path.Name" into its package path and type name.
// A name without a dot yields an empty package path.
func SplitQualified(qualified string) (pkgPath, name string) {
	lastDot := strings.LastIndex(qualified, ".")
	if lastDot < 0 {
		return "", qualified
	}

	return qualified[:lastDot], qualified[lastDot+1:]
}

// First returns the first element of the slice and true, or the zero value and false if empty.
func First[S ~[]E, E any](s S) (E, bool) {
	if len(s) == 0 {
		var zero E
		return zero, false
	}

	return s[0], true
}
