package texture

import (
	"math"

	"github.com/paulmach/orb"
	"golang.org/x/image/math/f64"
)

// DefaultUnitsPerPixel is the world size of one texel. Floor tiles are
// 64x64 pixels covering 64x64 world units.
const DefaultUnitsPerPixel = 1.0

// Identity is the identity affine transform.
var Identity = f64.Aff3{1, 0, 0, 0, 1, 0}

// Tiling places a floor tile over the world. The tiling origin is pinned
// to world (0,0), so areas sharing a texture tile seamlessly across their
// common edges wherever they are.
type Tiling struct {
	Texture string
	// TexelWidth and TexelHeight are the tile's size in pixels.
	TexelWidth  int
	TexelHeight int
	// TileWidth and TileHeight are the tile's size in output units.
	TileWidth  float64
	TileHeight float64
	// Rotation is the floor rotation in degrees, counter-clockwise in world space.
	Rotation float64
	// WorldToTexel maps a world point (Y up) to unwrapped texel coordinates.
	WorldToTexel f64.Aff3
	// PatternTransform maps the pattern's own space onto the Y-flipped
	// output space. Identity unless the area is rotated.
	PatternTransform f64.Aff3
}

// Rotated reports whether the tiling carries a rotation.
func (t Tiling) Rotated() bool {
	return t.PatternTransform != Identity
}

// Texel returns the pixel of the tile that world point p falls on, as
// fractional coordinates in [0, TexelWidth) x [0, TexelHeight).
func (t Tiling) Texel(p orb.Point) orb.Point {
	q := Apply(t.WorldToTexel, p)
	return orb.Point{wrap(q[0], float64(t.TexelWidth)), wrap(q[1], float64(t.TexelHeight))}
}

func wrap(v, size float64) float64 {
	m := math.Mod(v, size)
	if m < 0 {
		m += size
	}
	if m == size || m == 0 {
		return 0
	}
	return m
}

// Apply transforms p by the row-major affine matrix a.
func Apply(a f64.Aff3, p orb.Point) orb.Point {
	return orb.Point{
		a[0]*p[0] + a[1]*p[1] + a[2],
		a[3]*p[0] + a[4]*p[1] + a[5],
	}
}

// Mapper computes tilings at a fixed world-to-pixel scale.
type Mapper struct {
	unitsPerPixel float64
}

// NewMapper returns a Mapper where one texel covers unitsPerPixel world
// units. Non-positive values select DefaultUnitsPerPixel.
func NewMapper(unitsPerPixel float64) Mapper {
	if unitsPerPixel <= 0 {
		unitsPerPixel = DefaultUnitsPerPixel
	}
	return Mapper{unitsPerPixel: unitsPerPixel}
}

// UnitsPerPixel returns the mapper's scale.
func (m Mapper) UnitsPerPixel() float64 {
	return m.unitsPerPixel
}

// Map computes the tiling of tile for an area with the given floor rotation.
//
// Precondition: tile is non-nil.
// Postcondition: shifting a world point by a whole number of tiles along
// either axis leaves Texel unchanged when rotation is zero.
func (m Mapper) Map(tile *Tile, rotation float64) Tiling {
	u := m.unitsPerPixel
	cos, sin := 1.0, 0.0
	if rotation != 0 {
		rad := rotation * math.Pi / 180
		cos, sin = math.Cos(rad), math.Sin(rad)
	}
	return Tiling{
		Texture:     tile.ID,
		TexelWidth:  tile.Width,
		TexelHeight: tile.Height,
		TileWidth:   float64(tile.Width) * u,
		TileHeight:  float64(tile.Height) * u,
		Rotation:    rotation,
		// Flip Y into output space, undo the pattern rotation, then scale
		// to texels.
		WorldToTexel:     f64.Aff3{cos / u, sin / u, 0, sin / u, -cos / u, 0},
		PatternTransform: f64.Aff3{cos, sin, 0, -sin, cos, 0},
	}
}
