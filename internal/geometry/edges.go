// Package geometry reconstructs area polygons from wall segments: it derives
// each area's directed boundary edges, chains them into closed loops,
// separates outer boundaries from holes, and orders the resulting polygons
// by spatial nesting.
//
// All coordinates are level coordinates with the Y axis pointing up. An
// area's interior lies to the right of each of its directed edges, so outer
// boundaries wind clockwise and holes wind counter-clockwise.
package geometry

import "github.com/cory-johannsen/mapsvg/internal/level"

// Side identifies which side of a wall segment produced an edge.
type Side int

const (
	Front Side = iota
	Back
)

// String returns "front" or "back".
func (s Side) String() string {
	if s == Back {
		return "back"
	}
	return "front"
}

// DirectedEdge is one boundary edge of one area.
type DirectedEdge struct {
	// From and To are vertex indices.
	From int
	To   int
	// Area owns the edge.
	Area int
	// Segment and Side record which wall segment side produced the edge.
	Segment int
	Side    Side
}

// BuildEdges derives every area's directed boundary edges. A front side
// yields an edge running Start->End, a back side one running End->Start, so
// each area's interior is on the right of all its edges.
//
// A double-sided segment with the same area on both sides contributes
// nothing: its two edges would only trace a zero-width spur.
//
// Precondition: lvl has passed Validate.
// Postcondition: len(result) == len(lvl.Areas); result[i] holds area i's
// edges in segment order.
func BuildEdges(lvl *level.Level) [][]DirectedEdge {
	edges := make([][]DirectedEdge, len(lvl.Areas))
	for i, seg := range lvl.Segments {
		if seg.Back != nil && seg.Back.Area == seg.Front.Area {
			continue
		}
		front := seg.Front.Area
		edges[front] = append(edges[front], DirectedEdge{
			From: seg.Start, To: seg.End, Area: front, Segment: i, Side: Front,
		})
		if seg.Back != nil {
			back := seg.Back.Area
			edges[back] = append(edges[back], DirectedEdge{
				From: seg.End, To: seg.Start, Area: back, Segment: i, Side: Back,
			})
		}
	}
	return edges
}
