package geometry_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/mapsvg/internal/geometry"
	"github.com/cory-johannsen/mapsvg/internal/level"
	"github.com/cory-johannsen/mapsvg/internal/testutil"
)

// polygons runs edges, loops, and hole classification over every area.
func polygons(t require.TestingT, lvl *level.Level) []geometry.Polygon {
	edges := geometry.BuildEdges(lvl)
	var polys []geometry.Polygon
	for a := range lvl.Areas {
		res := geometry.BuildLoops(a, edges[a], lvl.Vertices)
		require.Empty(t, res.Open, "area %d", a)
		polys = append(polys, geometry.ClassifyHoles(res.Loops)...)
	}
	return polys
}

func TestClassifyHoles_OuterWithHole(t *testing.T) {
	b := testutil.NewLevel("PILLAR")
	a := b.Area(level.Area{})
	b.Wall(a, testutil.Square(0, 0, 256)...)
	// A pillar: walls face outward, so the area is on their front (right)
	// side and the chain runs counter-clockwise.
	pillar := testutil.Square(96, 96, 64)
	for i, j := 0, len(pillar)-1; i < j; i, j = i+1, j-1 {
		pillar[i], pillar[j] = pillar[j], pillar[i]
	}
	b.Wall(a, pillar...)
	polys := polygons(t, b.Build())

	require.Len(t, polys, 1)
	require.Len(t, polys[0].Holes, 1)
	assert.Equal(t, orb.CW, polys[0].Outer.Orientation())
	assert.Equal(t, orb.CCW, polys[0].Holes[0].Orientation())
	assert.InDelta(t, 65536.0, polys[0].Outer.AbsArea(), 1e-9)
	assert.Len(t, polys[0].Loops(), 2)
}

func TestClassifyHoles_Islands(t *testing.T) {
	b := testutil.NewLevel("ISLANDS")
	a := b.Area(level.Area{})
	b.Wall(a, testutil.Square(0, 0, 64)...)
	b.Wall(a, testutil.Square(128, 0, 64)...)
	polys := polygons(t, b.Build())

	require.Len(t, polys, 2)
	assert.Empty(t, polys[0].Holes)
	assert.Empty(t, polys[1].Holes)
	assert.Equal(t, 0, polys[0].Seq)
	assert.Equal(t, 1, polys[1].Seq)
}

func TestClassifyHoles_SameWindingInsideIsNotHole(t *testing.T) {
	b := testutil.NewLevel("SAME")
	a := b.Area(level.Area{})
	b.Wall(a, testutil.Square(0, 0, 256)...)
	b.Wall(a, testutil.Square(96, 96, 64)...)
	polys := polygons(t, b.Build())

	require.Len(t, polys, 2)
	assert.Empty(t, polys[0].Holes)
	assert.Empty(t, polys[1].Holes)
}

func TestClassifyHoles_IslandInsideHole(t *testing.T) {
	// Room area 0 with a hole; area 0 again as an island inside the hole.
	lvl := testutil.NestedSquares([]int{0, 0, 0})
	// Rebind the innermost square's front to area 0.
	for i := range lvl.Segments {
		if lvl.Segments[i].Front.Area == 2 {
			lvl.Segments[i].Front.Area = 0
		}
	}
	edges := geometry.BuildEdges(lvl)
	res := geometry.BuildLoops(0, edges[0], lvl.Vertices)
	require.Empty(t, res.Open)
	polys := geometry.ClassifyHoles(res.Loops)

	require.Len(t, polys, 2)
	withHoles := 0
	for _, p := range polys {
		withHoles += len(p.Holes)
	}
	assert.Equal(t, 1, withHoles)
}

func TestLoop_ContainsIsStrict(t *testing.T) {
	lvl := testutil.NestedSquares([]int{0, 8})
	edges := geometry.BuildEdges(lvl)
	room := geometry.BuildLoops(0, edges[0], lvl.Vertices)
	platform := geometry.BuildLoops(1, edges[1], lvl.Vertices)
	require.Len(t, room.Loops, 2)
	require.Len(t, platform.Loops, 1)

	var outer, hole geometry.Loop
	for _, l := range room.Loops {
		if l.Orientation() == orb.CW {
			outer = l
		} else {
			hole = l
		}
	}
	p := platform.Loops[0]
	assert.True(t, outer.Contains(p))
	assert.True(t, outer.Contains(hole))
	// Same shape, opposite winding: neither contains the other.
	assert.False(t, hole.Contains(p))
	assert.False(t, p.Contains(hole))
	assert.False(t, p.Contains(outer))
}

func TestOrder_NestedPlatformDrawnAfterRoom(t *testing.T) {
	// The platform floor is lower than the room's, so only nesting puts it
	// on top.
	lvl := testutil.NestedSquares([]int{64, 0})
	polys := polygons(t, lvl)
	ordered := geometry.Order(polys, func(a int) int { return lvl.Areas[a].FloorHeight })

	require.Len(t, ordered, 2)
	assert.Equal(t, 0, ordered[0].Area)
	assert.Equal(t, 0, ordered[0].Depth)
	assert.Equal(t, 1, ordered[1].Area)
	assert.Equal(t, 1, ordered[1].Depth)
}

func TestOrder_EqualDepthTieBreak(t *testing.T) {
	b := testutil.NewLevel("SIDE")
	a0 := b.Area(level.Area{FloorHeight: 32})
	a1 := b.Area(level.Area{FloorHeight: 0})
	a2 := b.Area(level.Area{FloorHeight: 0})
	b.Wall(a0, testutil.Square(0, 0, 64)...)
	b.Wall(a1, testutil.Square(128, 0, 64)...)
	b.Wall(a2, testutil.Square(256, 0, 64)...)
	lvl := b.Build()
	ordered := geometry.Order(polygons(t, lvl), func(a int) int { return lvl.Areas[a].FloorHeight })

	require.Len(t, ordered, 3)
	assert.Equal(t, []int{a1, a2, a0}, []int{ordered[0].Area, ordered[1].Area, ordered[2].Area})
}

// TestOrder_Property_ParentBeforeChild verifies that for every pair of
// polygons where one's outer loop is the nearest container of the other's,
// the container is drawn first, whatever the floor heights.
func TestOrder_Property_ParentBeforeChild(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		floors := rapid.SliceOfN(rapid.IntRange(-512, 512), 1, 6).Draw(rt, "floors")
		lvl := testutil.NestedSquares(floors)
		ordered := geometry.Order(polygons(rt, lvl), func(a int) int { return lvl.Areas[a].FloorHeight })

		outers := make([]geometry.Loop, len(ordered))
		for i, p := range ordered {
			outers[i] = p.Outer
		}
		forest := geometry.BuildForest(outers)
		for child, parent := range forest.Parent {
			if parent >= 0 {
				assert.Less(rt, parent, child, "container must be drawn first")
			}
		}
		for i, p := range ordered {
			assert.Equal(rt, i, p.Area, "nesting order")
		}
	})
}

func TestBuildForest_Depths(t *testing.T) {
	lvl := testutil.NestedSquares([]int{0, 0, 0})
	var loops []geometry.Loop
	for _, p := range polygons(t, lvl) {
		loops = append(loops, p.Outer)
	}
	forest := geometry.BuildForest(loops)
	assert.Equal(t, []int{-1, 0, 1}, forest.Parent)
	assert.Equal(t, []int{0, 1, 2}, forest.Depth)
}
