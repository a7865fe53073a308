package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/cory-johannsen/mapsvg/internal/level"
)

// areaEpsilon is the smallest absolute area a loop may have.
const areaEpsilon = 1e-9

// Loop is a closed boundary of part of an area.
type Loop struct {
	// Area owns the loop.
	Area int
	// Edges are the loop's edges in walk order; Edges[i].To == Edges[i+1].From.
	Edges []DirectedEdge
	// Ring holds the loop's points, closed (first point repeated last).
	Ring orb.Ring

	signedArea float64
	bound      orb.Bound
	interior   orb.Point
}

// NewLoop builds a Loop from a closed chain of edges.
//
// Precondition: edges is non-empty and forms a closed chain.
func NewLoop(area int, edges []DirectedEdge, verts []level.Vertex) Loop {
	ring := make(orb.Ring, 0, len(edges)+1)
	for _, e := range edges {
		v := verts[e.From]
		ring = append(ring, orb.Point{v.X, v.Y})
	}
	ring = append(ring, ring[0])
	l := Loop{
		Area:       area,
		Edges:      edges,
		Ring:       ring,
		signedArea: planar.Area(ring),
		bound:      ring.Bound(),
	}
	if l.Orientation() != 0 {
		l.interior = l.findInteriorPoint()
	}
	return l
}

// SignedArea is positive for counter-clockwise loops and negative for
// clockwise ones.
func (l Loop) SignedArea() float64 { return l.signedArea }

// AbsArea returns the loop's enclosed area.
func (l Loop) AbsArea() float64 { return math.Abs(l.signedArea) }

// Orientation returns orb.CCW, orb.CW, or 0 for a degenerate loop.
func (l Loop) Orientation() orb.Orientation {
	switch {
	case l.signedArea > areaEpsilon:
		return orb.CCW
	case l.signedArea < -areaEpsilon:
		return orb.CW
	}
	return 0
}

// Bound returns the loop's bounding box.
func (l Loop) Bound() orb.Bound { return l.bound }

// Points returns the loop's points without the closing repeat.
func (l Loop) Points() []orb.Point {
	return l.Ring[:len(l.Ring)-1]
}

// ContainsPoint reports whether p is inside the loop or on its boundary.
func (l Loop) ContainsPoint(p orb.Point) bool {
	return planar.RingContains(l.Ring, p)
}

// Degenerate reports whether the loop has no area or crosses itself.
func (l Loop) Degenerate() bool {
	return l.Orientation() == 0 || l.SelfIntersects()
}

// SelfIntersects reports whether two non-adjacent edges of the loop cross
// properly. Loops touching themselves at a shared vertex do not count.
func (l Loop) SelfIntersects() bool {
	pts := l.Points()
	n := len(pts)
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			c, d := pts[j], pts[(j+1)%n]
			if properCross(a, b, c, d) {
				return true
			}
		}
	}
	return false
}

// InteriorPoint returns a point strictly inside the loop.
//
// Precondition: the loop has non-zero area.
func (l Loop) InteriorPoint() orb.Point { return l.interior }

// findInteriorPoint nudges an edge midpoint a short way toward the loop's
// interior side until the result lies strictly inside.
func (l Loop) findInteriorPoint() orb.Point {
	pts := l.Points()
	n := len(pts)
	// The interior is on the left of a CCW walk and on the right of a CW walk.
	dir := 1.0
	if l.signedArea < 0 {
		dir = -1.0
	}
	for _, step := range []float64{1e-3, 1e-5} {
		for i := 0; i < n; i++ {
			a, b := pts[i], pts[(i+1)%n]
			dx, dy := b[0]-a[0], b[1]-a[1]
			length := math.Hypot(dx, dy)
			if length == 0 {
				continue
			}
			nudge := step * math.Min(1, length)
			mid := orb.Point{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}
			p := orb.Point{mid[0] - dir*dy/length*nudge, mid[1] + dir*dx/length*nudge}
			if l.strictlyInside(p) {
				return p
			}
		}
	}
	c, _ := planar.CentroidArea(l.Ring)
	return c
}

func (l Loop) strictlyInside(p orb.Point) bool {
	if !l.ContainsPoint(p) {
		return false
	}
	pts := l.Points()
	for i := range pts {
		if onSegment(p, pts[i], pts[(i+1)%len(pts)]) {
			return false
		}
	}
	return true
}

// Contains reports whether l strictly contains other: l encloses a larger
// area, other's interior point lies inside l, and every vertex of other lies
// inside l or on its boundary. Two loops tracing the same shape never
// contain each other.
func (l Loop) Contains(other Loop) bool {
	if l.AbsArea() <= other.AbsArea()+areaEpsilon {
		return false
	}
	lb, ob := l.bound, other.bound
	if ob.Min[0] < lb.Min[0] || ob.Min[1] < lb.Min[1] || ob.Max[0] > lb.Max[0] || ob.Max[1] > lb.Max[1] {
		return false
	}
	if !l.ContainsPoint(other.InteriorPoint()) {
		return false
	}
	for _, p := range other.Points() {
		if !l.ContainsPoint(p) {
			return false
		}
	}
	return true
}

func cross(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

// properCross reports whether segments ab and cd cross at a single point
// interior to both.
func properCross(a, b, c, d orb.Point) bool {
	d1 := cross(c, d, a)
	d2 := cross(c, d, b)
	d3 := cross(a, b, c)
	d4 := cross(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func onSegment(p, a, b orb.Point) bool {
	if math.Abs(cross(a, b, p)) > 1e-12*math.Max(1, math.Hypot(b[0]-a[0], b[1]-a[1])) {
		return false
	}
	return p[0] >= math.Min(a[0], b[0]) && p[0] <= math.Max(a[0], b[0]) &&
		p[1] >= math.Min(a[1], b[1]) && p[1] <= math.Max(a[1], b[1])
}
