package geometry

import (
	"math"

	"github.com/cory-johannsen/mapsvg/internal/level"
)

// LoopResult is the outcome of chaining one area's edges.
type LoopResult struct {
	Area int
	// Loops are the closed, non-degenerate loops, in the order they closed.
	Loops []Loop
	// Degenerate are closed loops dropped for having no area or crossing
	// themselves.
	Degenerate []Loop
	// Open are the edges that could not be closed into any loop.
	Open []DirectedEdge
}

// Malformed reports whether some of the area's edges never closed.
func (r LoopResult) Malformed() bool {
	return len(r.Open) > 0
}

// loopBuilder holds the working state for one area.
type loopBuilder struct {
	area    int
	edges   []DirectedEdge
	verts   []level.Vertex
	byStart map[int][]int
	visited []bool
	result  LoopResult
}

// BuildLoops chains one area's edges into closed loops.
//
// Walks start from the first unvisited edge in input order and follow
// unvisited edges leaving the current end vertex. Where several leave the
// same vertex the walk takes the one turning most sharply clockwise, which
// keeps to the area's interior and separates loops sharing a vertex the same
// way every run. When a walk reaches a vertex it already passed through, the
// chain between the two visits is closed off as its own loop and the walk
// carries on. A walk that dead-ends moves its last edge to Open and backs
// up to the previous vertex to try its remaining continuations, so a
// dangling wall never costs the loop it hangs off. Every step either
// consumes an unvisited edge or retires one to Open, so a walk never runs
// longer than twice the number of edges left.
//
// Precondition: every edge belongs to area and references a valid vertex.
// Postcondition: every input edge appears in exactly one of Loops,
// Degenerate, or Open.
func BuildLoops(area int, edges []DirectedEdge, verts []level.Vertex) LoopResult {
	b := &loopBuilder{
		area:    area,
		edges:   edges,
		verts:   verts,
		byStart: make(map[int][]int, len(edges)),
		visited: make([]bool, len(edges)),
		result:  LoopResult{Area: area},
	}
	for i, e := range edges {
		b.byStart[e.From] = append(b.byStart[e.From], i)
	}
	for i := range edges {
		if !b.visited[i] {
			b.walk(i)
		}
	}
	return b.result
}

func (b *loopBuilder) walk(start int) {
	origin := b.edges[start].From
	b.visited[start] = true
	path := []int{start}
	// seen maps a vertex to the path position of the edge leaving it.
	seen := map[int]int{origin: 0}
	cur := start
	for {
		end := b.edges[cur].To
		if end == origin {
			b.close(path)
			return
		}
		if p, ok := seen[end]; ok {
			b.close(path[p:])
			for _, e := range path[p:] {
				delete(seen, b.edges[e].From)
			}
			path = path[:p]
			cur = path[len(path)-1]
		}
		next := b.next(end, cur)
		for next < 0 {
			// Dead end: only the last edge is unclosable. Back up one vertex
			// and try whatever else leaves it.
			b.result.Open = append(b.result.Open, b.edges[cur])
			delete(seen, b.edges[cur].From)
			path = path[:len(path)-1]
			if len(path) == 0 {
				return
			}
			cur = path[len(path)-1]
			end = b.edges[cur].To
			next = b.next(end, cur)
		}
		b.visited[next] = true
		seen[end] = len(path)
		path = append(path, next)
		cur = next
	}
}

// next picks the unvisited edge leaving vertex v that turns most sharply
// clockwise from incoming. A U-turn ranks last. Ties keep input order.
// Returns -1 when no unvisited edge leaves v.
func (b *loopBuilder) next(v, incoming int) int {
	best := -1
	bestTurn := 0.0
	for _, cand := range b.byStart[v] {
		if b.visited[cand] {
			continue
		}
		turn := b.turn(incoming, cand)
		if best < 0 || turn < bestTurn {
			best, bestTurn = cand, turn
		}
	}
	return best
}

// turn returns the signed angle from edge a's direction to edge b's, in
// (-pi, pi]. Negative angles turn clockwise.
func (b *loopBuilder) turn(a, c int) float64 {
	ea, ec := b.edges[a], b.edges[c]
	ax := b.verts[ea.To].X - b.verts[ea.From].X
	ay := b.verts[ea.To].Y - b.verts[ea.From].Y
	cx := b.verts[ec.To].X - b.verts[ec.From].X
	cy := b.verts[ec.To].Y - b.verts[ec.From].Y
	angle := math.Atan2(ax*cy-ay*cx, ax*cx+ay*cy)
	if angle <= -math.Pi+1e-12 {
		angle = math.Pi
	}
	return angle
}

func (b *loopBuilder) close(path []int) {
	edges := make([]DirectedEdge, len(path))
	for i, e := range path {
		edges[i] = b.edges[e]
	}
	loop := NewLoop(b.area, edges, b.verts)
	if loop.Degenerate() {
		b.result.Degenerate = append(b.result.Degenerate, loop)
		return
	}
	b.result.Loops = append(b.result.Loops, loop)
}
