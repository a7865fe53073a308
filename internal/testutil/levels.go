package testutil

import "github.com/cory-johannsen/mapsvg/internal/level"

// LevelBuilder assembles small levels for tests. Vertices are deduplicated
// by position, so walls meeting at a point share a vertex index.
type LevelBuilder struct {
	lvl   *level.Level
	index map[level.Vertex]int
}

// NewLevel starts an empty level with the given name.
func NewLevel(name string) *LevelBuilder {
	return &LevelBuilder{
		lvl:   &level.Level{Name: name},
		index: make(map[level.Vertex]int),
	}
}

// Area appends an area and returns its index.
func (b *LevelBuilder) Area(a level.Area) int {
	b.lvl.Areas = append(b.lvl.Areas, a)
	return len(b.lvl.Areas) - 1
}

// Vertex returns the index of the vertex at (x, y), adding it if needed.
func (b *LevelBuilder) Vertex(x, y float64) int {
	v := level.Vertex{X: x, Y: y}
	if i, ok := b.index[v]; ok {
		return i
	}
	b.lvl.Vertices = append(b.lvl.Vertices, v)
	b.index[v] = len(b.lvl.Vertices) - 1
	return b.index[v]
}

// Segment adds one segment from (x0, y0) to (x1, y1). back < 0 makes it
// single-sided.
func (b *LevelBuilder) Segment(front, back int, x0, y0, x1, y1 float64) {
	seg := level.WallSegment{
		Start: b.Vertex(x0, y0),
		End:   b.Vertex(x1, y1),
		Front: level.SideBinding{Area: front},
	}
	if back >= 0 {
		seg.Back = &level.SideBinding{Area: back}
	}
	b.lvl.Segments = append(b.lvl.Segments, seg)
}

// Wall adds single-sided segments through pts and back to pts[0]. List pts
// clockwise so the area lies on the segments' front side.
func (b *LevelBuilder) Wall(area int, pts ...level.Vertex) {
	b.Ring(area, -1, pts...)
}

// Ring adds a closed chain of segments through pts with front on front and
// back on back (back < 0 for single-sided).
func (b *LevelBuilder) Ring(front, back int, pts ...level.Vertex) {
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		b.Segment(front, back, p.X, p.Y, q.X, q.Y)
	}
}

// Chain adds single-sided segments through pts without closing the chain.
func (b *LevelBuilder) Chain(area int, pts ...level.Vertex) {
	for i := 0; i+1 < len(pts); i++ {
		b.Segment(area, -1, pts[i].X, pts[i].Y, pts[i+1].X, pts[i+1].Y)
	}
}

// Build returns the assembled level.
func (b *LevelBuilder) Build() *level.Level {
	return b.lvl
}

// Square returns the corners of an axis-aligned square listed clockwise
// (Y up), starting at (x, y).
func Square(x, y, size float64) []level.Vertex {
	return []level.Vertex{
		{X: x, Y: y},
		{X: x, Y: y + size},
		{X: x + size, Y: y + size},
		{X: x + size, Y: y},
	}
}

// NestedSquares builds n concentric squares, each its own area, where area i
// is the ring between square i and square i+1 and area n-1 the innermost
// square. Square i's walls have area i in front and area i-1 behind.
// floors gives each area's floor height.
func NestedSquares(floors []int) *level.Level {
	b := NewLevel("NESTED")
	n := len(floors)
	for i := 0; i < n; i++ {
		b.Area(level.Area{FloorHeight: floors[i], FloorTexture: "FLOOR0_1", Brightness: 160})
	}
	for i := 0; i < n; i++ {
		inset := float64(32 * i)
		size := float64(64*n) - 2*inset
		b.Ring(i, i-1, Square(inset, inset, size)...)
	}
	return b.Build()
}
