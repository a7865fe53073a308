package level

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validLevelYAML = `
level:
  name: " TEST01 "
  vertices:
    - {x: 0, y: 0}
    - {x: 0, y: 64}
    - {x: 64, y: 64}
    - {x: 64, y: 0}
    - {x: 128, y: 64}
    - {x: 128, y: 0}
  segments:
    - {start: 0, end: 1, front: {area: 0, middle: STARTAN3}}
    - {start: 1, end: 2, front: {area: 0, middle: STARTAN3}}
    - start: 2
      end: 3
      front: {area: 0, upper: STEP1, offset_x: 8}
      back: {area: 1, lower: STEP1, offset_y: -4}
    - {start: 3, end: 0, front: {area: 0, middle: STARTAN3}}
    - {start: 2, end: 4, front: {area: 1}}
    - {start: 4, end: 5, front: {area: 1}}
    - {start: 5, end: 3, front: {area: 1}}
  areas:
    - floor: 0
      ceiling: 128
      floor_texture: floor0_1
      ceiling_texture: CEIL1_1
      brightness: 160
    - floor: 24
      ceiling: 128
      floor_texture: FLOOR4_8
      brightness: 255
      tag: 7
      floor_rotation: 45
`

func TestLoadFromBytes_Valid(t *testing.T) {
	lvl, err := LoadFromBytes([]byte(validLevelYAML))
	require.NoError(t, err)

	assert.Equal(t, "TEST01", lvl.Name)
	assert.Len(t, lvl.Vertices, 6)
	assert.Len(t, lvl.Segments, 7)
	require.Len(t, lvl.Areas, 2)

	assert.Equal(t, Vertex{X: 0, Y: 64}, lvl.Vertices[1])

	shared := lvl.Segments[2]
	assert.True(t, shared.DoubleSided())
	assert.Equal(t, 0, shared.Front.Area)
	assert.Equal(t, "STEP1", shared.Front.Upper)
	assert.Equal(t, 8, shared.Front.OffsetX)
	require.NotNil(t, shared.Back)
	assert.Equal(t, 1, shared.Back.Area)
	assert.Equal(t, -4, shared.Back.OffsetY)
	assert.False(t, lvl.Segments[0].DoubleSided())

	// Texture ids are normalised to upper case.
	assert.Equal(t, "FLOOR0_1", lvl.Areas[0].FloorTexture)
	assert.Equal(t, 160, lvl.Areas[0].Brightness)
	assert.Equal(t, 24, lvl.Areas[1].FloorHeight)
	assert.Equal(t, 7, lvl.Areas[1].Tag)
	assert.Equal(t, 45.0, lvl.Areas[1].FloorRotation)
}

func TestLoadFromBytes_InvalidYAML(t *testing.T) {
	_, err := LoadFromBytes([]byte("not: [valid yaml"))
	assert.Error(t, err)
}

func TestLoadFromBytes_MissingFront(t *testing.T) {
	yaml := `
level:
  vertices: [{x: 0, y: 0}, {x: 1, y: 0}]
  segments:
    - {start: 0, end: 1}
  areas: [{brightness: 0}]
`
	_, err := LoadFromBytes([]byte(yaml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "front side is required")
}

func TestLoadFromBytes_SideWithoutArea(t *testing.T) {
	yaml := `
level:
  vertices: [{x: 0, y: 0}, {x: 1, y: 0}]
  segments:
    - {start: 0, end: 1, front: {middle: X}}
  areas: [{brightness: 0}]
`
	_, err := LoadFromBytes([]byte(yaml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "area is required")
}

func TestLoadFromBytes_BrightnessOutOfRange(t *testing.T) {
	yaml := `
level:
  vertices: [{x: 0, y: 0}]
  areas: [{brightness: 300}]
`
	_, err := LoadFromBytes([]byte(yaml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "brightness must be 0-255")
}

func TestLoadFromBytes_NonFiniteCoordinate(t *testing.T) {
	yaml := `
level:
  vertices: [{x: 0, y: 0}, {x: .nan, y: 64}, {x: 64, y: .inf}]
  areas: [{brightness: 0}]
`
	_, err := LoadFromBytes([]byte(yaml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vertex 1: coordinates must be finite")
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validLevelYAML), 0644))

	lvl, err := YAMLSource{}.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "TEST01", lvl.Name)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/level.yaml")
	assert.Error(t, err)
}
