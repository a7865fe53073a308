// Package level provides the static level model: vertices, wall segments,
// side bindings, and areas.
package level

import (
	"fmt"
	"math"
	"sort"
)

// MaxBrightness is the largest brightness an area may record.
const MaxBrightness = 255

// Vertex is a point in level units. The Y axis points up.
type Vertex struct {
	X float64
	Y float64
}

// SideBinding links one side of a wall segment to the area on that side.
type SideBinding struct {
	// Area is the index of the area on this side.
	Area int
	// Lower, Middle, and Upper are the wall texture ids for the three faces.
	Lower  string
	Middle string
	Upper  string
	// OffsetX and OffsetY are the wall texture offsets.
	OffsetX int
	OffsetY int
}

// WallSegment is a directed boundary segment between two vertices. The area
// bound by Front lies to the right of Start->End.
type WallSegment struct {
	Start int
	End   int
	Front SideBinding
	// Back is nil for single-sided segments.
	Back *SideBinding
}

// DoubleSided reports whether the segment has a back side.
func (s WallSegment) DoubleSided() bool {
	return s.Back != nil
}

// Area is a region of the level with uniform floor, ceiling, and light.
type Area struct {
	FloorHeight    int
	CeilingHeight  int
	FloorTexture   string
	CeilingTexture string
	// Brightness is in [0, MaxBrightness].
	Brightness int
	// Tag is an opaque grouping tag.
	Tag int
	// FloorRotation rotates the floor texture, in degrees counter-clockwise.
	// Zero for almost every area.
	FloorRotation float64
}

// Level is one fully loaded map.
type Level struct {
	Name     string
	Vertices []Vertex
	Segments []WallSegment
	Areas    []Area
}

// Validate checks the level's referential and range invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (l *Level) Validate() error {
	if len(l.Vertices) == 0 {
		return fmt.Errorf("level %q: must contain at least one vertex", l.Name)
	}
	for i, v := range l.Vertices {
		if !finite(v.X) || !finite(v.Y) {
			return fmt.Errorf("level %q: vertex %d: coordinates must be finite, got (%v, %v)", l.Name, i, v.X, v.Y)
		}
	}
	for i, a := range l.Areas {
		if a.Brightness < 0 || a.Brightness > MaxBrightness {
			return fmt.Errorf("level %q: area %d: brightness must be 0-%d, got %d", l.Name, i, MaxBrightness, a.Brightness)
		}
		if !finite(a.FloorRotation) {
			return fmt.Errorf("level %q: area %d: floor rotation must be finite, got %v", l.Name, i, a.FloorRotation)
		}
	}
	for i, s := range l.Segments {
		if err := l.checkVertex(s.Start); err != nil {
			return fmt.Errorf("level %q: segment %d: start: %w", l.Name, i, err)
		}
		if err := l.checkVertex(s.End); err != nil {
			return fmt.Errorf("level %q: segment %d: end: %w", l.Name, i, err)
		}
		if l.Vertices[s.Start] == l.Vertices[s.End] {
			return fmt.Errorf("level %q: segment %d: zero length", l.Name, i)
		}
		if err := l.checkArea(s.Front.Area); err != nil {
			return fmt.Errorf("level %q: segment %d: front: %w", l.Name, i, err)
		}
		if s.Back != nil {
			if err := l.checkArea(s.Back.Area); err != nil {
				return fmt.Errorf("level %q: segment %d: back: %w", l.Name, i, err)
			}
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (l *Level) checkVertex(i int) error {
	if i < 0 || i >= len(l.Vertices) {
		return fmt.Errorf("vertex %d out of range [0, %d)", i, len(l.Vertices))
	}
	return nil
}

func (l *Level) checkArea(i int) error {
	if i < 0 || i >= len(l.Areas) {
		return fmt.Errorf("area %d out of range [0, %d)", i, len(l.Areas))
	}
	return nil
}

// FloorTextures returns the distinct non-empty floor texture ids used by any
// area, sorted.
func (l *Level) FloorTextures() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, a := range l.Areas {
		if a.FloorTexture == "" || seen[a.FloorTexture] {
			continue
		}
		seen[a.FloorTexture] = true
		ids = append(ids, a.FloorTexture)
	}
	sort.Strings(ids)
	return ids
}
