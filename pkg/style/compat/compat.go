// Package compat checks whether a style's declared schema major version
// can render a given tileset.
//
// A tileset declares a semantic-version-like string in its archive
// metadata; a theme is written against one schema major version. The
// check is advisory: a mismatch produces a warning message, never an
// error, and unknown tileset majors are assumed forward-compatible. It
// re-runs whenever the resolved archive's metadata or the selected style
// version changes.
package compat

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ReferenceURL points readers of a mismatch warning at the schema
// compatibility matrix.
const ReferenceURL = "https://tilebound.dev/docs/schema-compatibility"

// Table maps a style major version to the set of tileset schema majors
// that style can render.
type Table map[int][]int

// DefaultTable covers the published tileset schema lineage: v2 styles
// still render both schema generations, v3 styles dropped the legacy
// layer names.
var DefaultTable = Table{
	2: {2, 3},
	3: {3},
}

// Result is the outcome of a compatibility check. It is derived state,
// recomputed on change and never persisted.
type Result struct {
	Compatible bool
	Message    string // set only when incompatible
}

// Check decides compatibility of a style major version against a
// tileset's declared version string using [DefaultTable].
func Check(styleMajor int, tilesetVersion string) Result {
	return DefaultTable.Check(styleMajor, tilesetVersion)
}

// Check decides compatibility against this table.
//
// The tileset major is the integer before the version string's first
// separator. A version that doesn't parse, or a tileset major the table
// doesn't know at all, is indeterminate and treated as compatible —
// unknown tileset versions are assumed forward-compatible rather than
// flagged. A known tileset major outside the style's renderable set is
// a mismatch, reported with both versions and the reference URL.
func (t Table) Check(styleMajor int, tilesetVersion string) Result {
	tilesetMajor, ok := parseMajor(tilesetVersion)
	if !ok || !t.knows(tilesetMajor) {
		return Result{Compatible: true}
	}
	if slices.Contains(t[styleMajor], tilesetMajor) {
		return Result{Compatible: true}
	}
	return Result{
		Compatible: false,
		Message: fmt.Sprintf(
			"style v%d does not support tileset schema v%d (tileset version %s); see %s",
			styleMajor, tilesetMajor, tilesetVersion, ReferenceURL),
	}
}

// knows reports whether any style in the table targets tilesetMajor.
func (t Table) knows(tilesetMajor int) bool {
	for _, majors := range t {
		if slices.Contains(majors, tilesetMajor) {
			return true
		}
	}
	return false
}

// parseMajor extracts the integer before the first separator of a
// semantic-version-like string. "3.5.0" → 3, "3" → 3, "v3.1" → 3.
func parseMajor(version string) (int, bool) {
	s := strings.TrimPrefix(strings.TrimSpace(version), "v")
	if i := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return 0, false
	}
	major, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return major, true
}
