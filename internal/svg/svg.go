// Package svg serializes a render.Scene as an SVG document.
package svg

import (
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/paulmach/orb"

	"github.com/cory-johannsen/mapsvg/internal/config"
	"github.com/cory-johannsen/mapsvg/internal/render"
)

const (
	svgNS   = "http://www.w3.org/2000/svg"
	xlinkNS = "http://www.w3.org/1999/xlink"
)

// Options controls document styling.
type Options struct {
	// Stroke outlines every polygon when non-empty.
	Stroke string
	// Fill paints a background rectangle over the view box when non-empty.
	Fill string
	// MissingFill paints polygons whose texture did not resolve.
	MissingFill string
	// Precision is the number of decimal places for coordinates.
	Precision int
}

// OptionsFromConfig maps render settings onto Options.
func OptionsFromConfig(cfg config.RenderConfig) Options {
	return Options{
		Stroke:      cfg.Stroke,
		Fill:        cfg.Fill,
		MissingFill: cfg.MissingFill,
		Precision:   cfg.Precision,
	}
}

// Document builds the SVG document for scene.
//
// Postcondition: the root <svg> holds <defs> with one <pattern> per scene
// pattern and one <filter> per shade, then one <path> per item in draw order.
func Document(scene render.Scene, opts Options) *etree.Document {
	f := formatter{precision: opts.Precision}
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("svg")
	root.CreateAttr("xmlns", svgNS)
	root.CreateAttr("xmlns:xlink", xlinkNS)
	root.CreateAttr("version", "1.1")
	root.CreateAttr("width", f.num(scene.Width()))
	root.CreateAttr("height", f.num(scene.Height()))
	root.CreateAttr("viewBox", strings.Join([]string{
		f.num(scene.ViewBox.Min[0]), f.num(scene.ViewBox.Min[1]),
		f.num(scene.Width()), f.num(scene.Height()),
	}, " "))
	if scene.Name != "" {
		root.CreateElement("title").SetText(scene.Name)
	}

	defs := root.CreateElement("defs")
	for _, p := range scene.Patterns {
		writePattern(defs, p, f)
	}
	for _, s := range scene.Shades {
		writeShade(defs, s, f)
	}

	if opts.Fill != "" {
		bg := root.CreateElement("rect")
		bg.CreateAttr("x", f.num(scene.ViewBox.Min[0]))
		bg.CreateAttr("y", f.num(scene.ViewBox.Min[1]))
		bg.CreateAttr("width", f.num(scene.Width()))
		bg.CreateAttr("height", f.num(scene.Height()))
		bg.CreateAttr("fill", opts.Fill)
	}

	for _, item := range scene.Items {
		path := root.CreateElement("path")
		path.CreateAttr("id", fmt.Sprintf("area%d_%d", item.Area, item.Rank))
		path.CreateAttr("d", f.path(item))
		path.CreateAttr("fill-rule", "evenodd")
		if item.PatternID != "" {
			path.CreateAttr("fill", "url(#"+item.PatternID+")")
		} else {
			path.CreateAttr("fill", opts.MissingFill)
		}
		if item.ShadeID != "" {
			path.CreateAttr("filter", "url(#"+item.ShadeID+")")
		}
		if opts.Stroke != "" {
			path.CreateAttr("stroke", opts.Stroke)
			path.CreateAttr("stroke-width", "1")
			path.CreateAttr("vector-effect", "non-scaling-stroke")
		}
	}

	doc.Indent(2)
	return doc
}

func writePattern(defs *etree.Element, p render.Pattern, f formatter) {
	el := defs.CreateElement("pattern")
	el.CreateAttr("id", p.ID)
	el.CreateAttr("patternUnits", "userSpaceOnUse")
	el.CreateAttr("x", "0")
	el.CreateAttr("y", "0")
	el.CreateAttr("width", f.num(p.Tiling.TileWidth))
	el.CreateAttr("height", f.num(p.Tiling.TileHeight))
	if p.Tiling.Rotated() {
		m := p.Tiling.PatternTransform
		el.CreateAttr("patternTransform", fmt.Sprintf("matrix(%s %s %s %s %s %s)",
			f.num(m[0]), f.num(m[3]), f.num(m[1]), f.num(m[4]), f.num(m[2]), f.num(m[5])))
	}

	href := "data:image/png;base64," + base64.StdEncoding.EncodeToString(p.Tile.PNG)
	img := el.CreateElement("image")
	img.CreateAttr("width", f.num(p.Tiling.TileWidth))
	img.CreateAttr("height", f.num(p.Tiling.TileHeight))
	img.CreateAttr("preserveAspectRatio", "none")
	img.CreateAttr("image-rendering", "pixelated")
	img.CreateAttr("href", href)
	img.CreateAttr("xlink:href", href)
}

func writeShade(defs *etree.Element, s render.Shade, f formatter) {
	el := defs.CreateElement("filter")
	el.CreateAttr("id", s.ID)
	el.CreateAttr("color-interpolation-filters", "sRGB")
	ct := el.CreateElement("feComponentTransfer")
	slope := formatter{precision: 6}.num(s.Value)
	for _, ch := range []string{"feFuncR", "feFuncG", "feFuncB"} {
		fn := ct.CreateElement(ch)
		fn.CreateAttr("type", "linear")
		fn.CreateAttr("slope", slope)
	}
}

// Write serializes scene to w.
func Write(w io.Writer, scene render.Scene, opts Options) error {
	if _, err := Document(scene, opts).WriteTo(w); err != nil {
		return fmt.Errorf("writing svg: %w", err)
	}
	return nil
}

// WriteFile serializes scene to path, replacing any existing file. Nothing
// is left at path if writing fails.
func WriteFile(path string, scene render.Scene, opts Options) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(out, scene, opts); err != nil {
		out.Close()
		os.Remove(path)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

type formatter struct {
	precision int
}

// num formats v rounded to the formatter's precision with no trailing zeros.
func (f formatter) num(v float64) string {
	scale := math.Pow(10, float64(f.precision))
	r := math.Round(v*scale) / scale
	if r == 0 {
		r = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func (f formatter) ring(b *strings.Builder, pts []orb.Point) {
	for i, p := range pts {
		if i == 0 {
			b.WriteString("M")
		} else {
			b.WriteString(" L")
		}
		b.WriteString(f.num(p[0]))
		b.WriteByte(' ')
		b.WriteString(f.num(p[1]))
	}
	b.WriteString(" Z")
}

// path returns the path data for an item: the outer ring then each hole,
// each as its own closed subpath.
func (f formatter) path(item render.Item) string {
	var b strings.Builder
	f.ring(&b, item.Outer)
	for _, h := range item.Holes {
		b.WriteByte(' ')
		f.ring(&b, h)
	}
	return b.String()
}
