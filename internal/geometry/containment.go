package geometry

import "sort"

// Polygon is one outer loop of an area together with its holes.
type Polygon struct {
	Area  int
	Outer Loop
	Holes []Loop
	// Depth is the outer loop's depth in the containment forest of all
	// loops, set by Order.
	Depth int
	// Seq is the polygon's position among its area's polygons.
	Seq int
}

// Loops returns the outer loop followed by the holes.
func (p Polygon) Loops() []Loop {
	return append([]Loop{p.Outer}, p.Holes...)
}

// ClassifyHoles groups one area's loops into polygons. A loop is a hole of
// the nearest same-area loop that strictly contains it when that loop is an
// outer boundary of opposite winding. Every other loop is an outer boundary,
// so an area may have several disjoint outers (islands), and an island
// sitting inside another polygon's hole is its own outer.
//
// Precondition: loops all belong to one area and none is degenerate.
// Postcondition: every loop appears in exactly one polygon; polygons keep
// the order their outer loops had in loops.
func ClassifyHoles(loops []Loop) []Polygon {
	parent := nearestContainers(loops)

	// Containers are larger, so settling loops largest first means a
	// loop's container is classified before the loop itself.
	byArea := make([]int, len(loops))
	for i := range byArea {
		byArea[i] = i
	}
	sort.SliceStable(byArea, func(a, b int) bool {
		return loops[byArea[a]].AbsArea() > loops[byArea[b]].AbsArea()
	})

	holeOf := make([]int, len(loops))
	for _, i := range byArea {
		holeOf[i] = -1
		m := parent[i]
		if m >= 0 && holeOf[m] < 0 && loops[m].Orientation() != loops[i].Orientation() {
			holeOf[i] = m
		}
	}

	polyOf := make(map[int]int)
	var polys []Polygon
	for i, l := range loops {
		if holeOf[i] >= 0 {
			continue
		}
		polyOf[i] = len(polys)
		polys = append(polys, Polygon{Area: l.Area, Outer: l, Seq: len(polys)})
	}
	for i, l := range loops {
		if holeOf[i] >= 0 {
			p := polyOf[holeOf[i]]
			polys[p].Holes = append(polys[p].Holes, l)
		}
	}
	return polys
}

// nearestContainers returns, for each loop, the index of the smallest loop
// that strictly contains it, or -1. Strict containment between simple,
// non-crossing loops is nested, so the smallest container is the nearest.
func nearestContainers(loops []Loop) []int {
	parent := make([]int, len(loops))
	for i := range loops {
		parent[i] = -1
		for j := range loops {
			if i == j || !loops[j].Contains(loops[i]) {
				continue
			}
			if parent[i] < 0 || loops[j].AbsArea() < loops[parent[i]].AbsArea() {
				parent[i] = j
			}
		}
	}
	return parent
}

// Forest is the containment forest over a set of loops.
type Forest struct {
	// Parent[i] is the nearest loop strictly containing loop i, or -1.
	Parent []int
	// Depth[i] is 0 for roots and Depth[Parent[i]]+1 otherwise.
	Depth []int
}

// BuildForest computes the containment forest of loops.
//
// Postcondition: for every i with Parent[i] >= 0, loops[Parent[i]] strictly
// contains loops[i] and no loop lies strictly between them.
func BuildForest(loops []Loop) Forest {
	f := Forest{Parent: nearestContainers(loops), Depth: make([]int, len(loops))}
	for i := range loops {
		f.Depth[i] = f.depth(i)
	}
	return f
}

func (f Forest) depth(i int) int {
	d := 0
	for p := f.Parent[i]; p >= 0; p = f.Parent[p] {
		d++
	}
	return d
}

// Order sets each polygon's Depth from the containment forest over every
// loop of every polygon and returns the polygons in draw order: ascending
// depth, then ascending floor height, then area index, then Seq. A polygon
// nested inside another is therefore always drawn after it.
//
// Precondition: floor returns the floor height of an area index.
func Order(polys []Polygon, floor func(area int) int) []Polygon {
	var loops []Loop
	outer := make([]int, len(polys))
	for i, p := range polys {
		outer[i] = len(loops)
		loops = append(loops, p.Loops()...)
	}
	forest := BuildForest(loops)

	ordered := make([]Polygon, len(polys))
	copy(ordered, polys)
	for i := range ordered {
		ordered[i].Depth = forest.Depth[outer[i]]
	}
	sort.SliceStable(ordered, func(a, b int) bool {
		pa, pb := ordered[a], ordered[b]
		if pa.Depth != pb.Depth {
			return pa.Depth < pb.Depth
		}
		if fa, fb := floor(pa.Area), floor(pb.Area); fa != fb {
			return fa < fb
		}
		if pa.Area != pb.Area {
			return pa.Area < pb.Area
		}
		return pa.Seq < pb.Seq
	})
	return ordered
}
