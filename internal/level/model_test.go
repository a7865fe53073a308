package level

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func validLevel() *Level {
	return &Level{
		Name:     "MAP01",
		Vertices: []Vertex{{0, 0}, {0, 64}, {64, 64}, {64, 0}},
		Segments: []WallSegment{
			{Start: 0, End: 1, Front: SideBinding{Area: 0}},
			{Start: 1, End: 2, Front: SideBinding{Area: 0}},
			{Start: 2, End: 3, Front: SideBinding{Area: 0}},
			{Start: 3, End: 0, Front: SideBinding{Area: 0}},
		},
		Areas: []Area{{FloorTexture: "FLOOR0_1", Brightness: 160}},
	}
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, validLevel().Validate())
}

func TestValidate_NoVertices(t *testing.T) {
	lvl := validLevel()
	lvl.Vertices = nil
	lvl.Segments = nil
	assert.ErrorContains(t, lvl.Validate(), "at least one vertex")
}

func TestValidate_NonFiniteVertex(t *testing.T) {
	for name, v := range map[string]Vertex{
		"nan x":  {X: math.NaN(), Y: 0},
		"+inf y": {X: 0, Y: math.Inf(1)},
		"-inf x": {X: math.Inf(-1), Y: 64},
	} {
		t.Run(name, func(t *testing.T) {
			lvl := validLevel()
			lvl.Vertices[2] = v
			assert.ErrorContains(t, lvl.Validate(), "vertex 2: coordinates must be finite")
		})
	}
}

func TestValidate_NonFiniteRotation(t *testing.T) {
	lvl := validLevel()
	lvl.Areas[0].FloorRotation = math.NaN()
	assert.ErrorContains(t, lvl.Validate(), "area 0: floor rotation must be finite")
}

func TestValidate_VertexOutOfRange(t *testing.T) {
	lvl := validLevel()
	lvl.Segments[1].End = 9
	assert.ErrorContains(t, lvl.Validate(), "segment 1: end: vertex 9 out of range")
}

func TestValidate_ZeroLength(t *testing.T) {
	lvl := validLevel()
	lvl.Vertices = append(lvl.Vertices, Vertex{0, 0})
	lvl.Segments[0].End = 4
	assert.ErrorContains(t, lvl.Validate(), "zero length")
}

func TestValidate_AreaOutOfRange(t *testing.T) {
	lvl := validLevel()
	lvl.Segments[2].Back = &SideBinding{Area: 3}
	assert.ErrorContains(t, lvl.Validate(), "segment 2: back: area 3 out of range")

	lvl = validLevel()
	lvl.Segments[0].Front.Area = -1
	assert.ErrorContains(t, lvl.Validate(), "segment 0: front: area -1 out of range")
}

func TestValidate_Property_BrightnessBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		b := rapid.IntRange(-1000, 1000).Draw(rt, "brightness")
		lvl := validLevel()
		lvl.Areas[0].Brightness = b
		err := lvl.Validate()
		if b >= 0 && b <= MaxBrightness {
			assert.NoError(rt, err)
		} else {
			assert.Error(rt, err)
		}
	})
}

func TestFloorTextures_DistinctSorted(t *testing.T) {
	lvl := &Level{Areas: []Area{
		{FloorTexture: "NUKAGE1"},
		{FloorTexture: "FLOOR0_1"},
		{FloorTexture: ""},
		{FloorTexture: "NUKAGE1"},
	}}
	assert.Equal(t, []string{"FLOOR0_1", "NUKAGE1"}, lvl.FloorTextures())
}
