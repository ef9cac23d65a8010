// Package match provides member-name matching helpers for the mapper.
//
// Key functions:
//   - Tokenize: splits a CamelCase member name for flattened matching
//   - Classify: decides how a source member type reaches a destination member type
//   - Suggest: ranks known member names closest to an unknown one
package match
