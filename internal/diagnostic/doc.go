// Package diagnostic provides structured errors, warnings and notes
// reported while checking mapping profiles.
//
// Diagnostics are collected rather than returned one by one so that a single
// check reports every problem of a profile.
package diagnostic
