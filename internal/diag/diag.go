// Package diag defines the non-fatal diagnostics a render run can produce.
// Diagnostics are isolated to the area that raised them and never stop
// processing of other areas.
package diag

import (
	"fmt"
	"sort"
)

// Kind classifies a recoverable problem found during a run.
type Kind string

const (
	// UnresolvedTexture means an area's floor texture has no decoded image;
	// the area is drawn with a flat fill instead.
	UnresolvedTexture Kind = "unresolved_texture"
	// MalformedSector means an area's boundary edges did not all close into
	// loops; only the closed loops are drawn.
	MalformedSector Kind = "malformed_sector"
	// DegenerateLoop means a closed loop had no area or crossed itself and
	// was dropped.
	DegenerateLoop Kind = "degenerate_loop"
)

// NoArea is the Area value for diagnostics not tied to a single area.
const NoArea = -1

// Diagnostic is one recoverable problem.
type Diagnostic struct {
	Kind Kind
	// Area is the index of the area the problem belongs to, or NoArea.
	Area int
	// Detail is a human readable description.
	Detail string
}

// String renders the diagnostic as a single warning line.
func (d Diagnostic) String() string {
	if d.Area == NoArea {
		return fmt.Sprintf("%s: %s", d.Kind, d.Detail)
	}
	return fmt.Sprintf("%s: area %d: %s", d.Kind, d.Area, d.Detail)
}

// Sort orders diagnostics by area, then kind, then detail.
//
// Postcondition: ds is sorted in place; the order is a total order, so the
// result does not depend on the order the diagnostics were produced in.
func Sort(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.Area != b.Area {
			return a.Area < b.Area
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Detail < b.Detail
	})
}

// Count returns how many diagnostics of kind k are in ds.
func Count(ds []Diagnostic, k Kind) int {
	n := 0
	for _, d := range ds {
		if d.Kind == k {
			n++
		}
	}
	return n
}
