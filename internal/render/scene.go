// Package render assembles ordered, textured, shaded polygons into a Scene:
// the abstract draw list handed to a serializer. Coordinates in a Scene are
// in output space, where Y grows downwards.
package render

import (
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/cory-johannsen/mapsvg/internal/geometry"
	"github.com/cory-johannsen/mapsvg/internal/level"
	"github.com/cory-johannsen/mapsvg/internal/texture"
)

// Prepared is one polygon in draw order with its texture and shading
// resolved.
type Prepared struct {
	Polygon geometry.Polygon
	// Texture is the area's floor texture id.
	Texture string
	// Tile is nil when Texture did not resolve; the polygon then gets the
	// flat fallback fill.
	Tile   *texture.Tile
	Tiling texture.Tiling
	Shade  float64
}

// Pattern is one tiled fill definition.
type Pattern struct {
	ID     string
	Tile   *texture.Tile
	Tiling texture.Tiling
}

// Shade is one brightness modulation definition.
type Shade struct {
	ID    string
	Value float64
}

// Item is one polygon with holes to draw.
type Item struct {
	Area    int
	Texture string
	// Outer and Holes are open rings in output space.
	Outer []orb.Point
	Holes [][]orb.Point
	// PatternID is empty when the texture did not resolve.
	PatternID string
	ShadeID   string
	Shade     float64
	// Rank is the item's position in draw order.
	Rank int
}

// Scene is the complete draw list for one level.
type Scene struct {
	Name string
	// ViewBox is the padded extent of every vertex in output space.
	ViewBox  orb.Bound
	Patterns []Pattern
	Shades   []Shade
	Items    []Item
}

// Width returns the canvas width.
func (s Scene) Width() float64 { return s.ViewBox.Max[0] - s.ViewBox.Min[0] }

// Height returns the canvas height.
func (s Scene) Height() float64 { return s.ViewBox.Max[1] - s.ViewBox.Min[1] }

// Flip maps a world point (Y up) into output space.
func Flip(p orb.Point) orb.Point {
	// 0-y rather than -y so the X axis maps to +0, not -0.
	return orb.Point{p[0], 0 - p[1]}
}

// ViewBox returns the extent of every vertex of lvl in output space, padded
// by border on each side.
//
// Precondition: lvl has at least one vertex.
func ViewBox(lvl *level.Level, border float64) orb.Bound {
	first := Flip(orb.Point{lvl.Vertices[0].X, lvl.Vertices[0].Y})
	b := orb.Bound{Min: first, Max: first}
	for _, v := range lvl.Vertices[1:] {
		b = b.Extend(Flip(orb.Point{v.X, v.Y}))
	}
	return b.Pad(border)
}

// PatternID names the pattern for a texture at a rotation. Unrotated uses
// the bare texture id so every area sharing it shares one pattern.
func PatternID(tex string, rotation float64) string {
	if rotation == 0 {
		return tex
	}
	deg := strconv.FormatFloat(rotation, 'f', -1, 64)
	deg = strings.NewReplacer("-", "m", ".", "p").Replace(deg)
	return tex + "_r" + deg
}

// Build merges prepared polygons into a Scene. prepared must already be in
// draw order; Build keeps that order, emits one Pattern per distinct
// texture and rotation actually used, and one Shade per distinct shading
// value, ascending.
//
// Postcondition: Items[i].Rank == i; every non-empty PatternID and every
// ShadeID names an entry of Patterns or Shades.
func Build(lvl *level.Level, prepared []Prepared, border float64) Scene {
	scene := Scene{Name: lvl.Name, ViewBox: ViewBox(lvl, border)}

	patterns := make(map[string]bool)
	values := make(map[float64]bool)
	for _, p := range prepared {
		values[p.Shade] = true
		if p.Tile == nil {
			continue
		}
		id := PatternID(p.Tile.ID, p.Tiling.Rotation)
		if !patterns[id] {
			patterns[id] = true
			scene.Patterns = append(scene.Patterns, Pattern{ID: id, Tile: p.Tile, Tiling: p.Tiling})
		}
	}
	sort.Slice(scene.Patterns, func(i, j int) bool { return scene.Patterns[i].ID < scene.Patterns[j].ID })

	shadeIDs := make(map[float64]string, len(values))
	for v := range values {
		scene.Shades = append(scene.Shades, Shade{Value: v})
	}
	sort.Slice(scene.Shades, func(i, j int) bool { return scene.Shades[i].Value < scene.Shades[j].Value })
	for i := range scene.Shades {
		scene.Shades[i].ID = "light" + strconv.Itoa(i)
		shadeIDs[scene.Shades[i].Value] = scene.Shades[i].ID
	}

	scene.Items = make([]Item, len(prepared))
	for i, p := range prepared {
		item := Item{
			Area:    p.Polygon.Area,
			Texture: p.Texture,
			Outer:   flipAll(p.Polygon.Outer.Points()),
			ShadeID: shadeIDs[p.Shade],
			Shade:   p.Shade,
			Rank:    i,
		}
		for _, h := range p.Polygon.Holes {
			item.Holes = append(item.Holes, flipAll(h.Points()))
		}
		if p.Tile != nil {
			item.PatternID = PatternID(p.Tile.ID, p.Tiling.Rotation)
		}
		scene.Items[i] = item
	}
	return scene
}

func flipAll(pts []orb.Point) []orb.Point {
	out := make([]orb.Point, len(pts))
	for i, p := range pts {
		out[i] = Flip(p)
	}
	return out
}
