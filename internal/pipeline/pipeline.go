// Package pipeline runs a level through every render stage: edge
// extraction, per-area loop building and hole classification, the global
// draw order, texture and light resolution, and scene assembly.
//
// Per-area and per-item work fans out over an errgroup. Each task writes
// only its own slot of a pre-sized slice, and the draw order is the single
// barrier between the two fan-outs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/mapsvg/internal/config"
	"github.com/cory-johannsen/mapsvg/internal/diag"
	"github.com/cory-johannsen/mapsvg/internal/geometry"
	"github.com/cory-johannsen/mapsvg/internal/level"
	"github.com/cory-johannsen/mapsvg/internal/light"
	"github.com/cory-johannsen/mapsvg/internal/observability"
	"github.com/cory-johannsen/mapsvg/internal/render"
	"github.com/cory-johannsen/mapsvg/internal/svg"
	"github.com/cory-johannsen/mapsvg/internal/texture"
)

// Options configures a Pipeline.
type Options struct {
	// Border pads the scene's view box on every side.
	Border float64
	// UnitsPerPixel is the world size of one texel.
	UnitsPerPixel float64
	// Light maps brightness to shading; nil uses light.Doom.
	Light *light.Model
	// Workers bounds concurrent tasks; 0 uses GOMAXPROCS.
	Workers int
	// TextureDir is where RenderFile looks for floor tiles.
	TextureDir string
	// Document styles the file RenderFile writes.
	Document svg.Options
}

// AreaOutcome is what loop building produced for one area.
type AreaOutcome struct {
	Area     int
	Polygons []geometry.Polygon
	// Open are the area's edges that never closed.
	Open []geometry.DirectedEdge
	// Degenerate are the closed loops dropped for having no area or
	// crossing themselves.
	Degenerate  []geometry.Loop
	Diagnostics []diag.Diagnostic
}

// Malformed reports whether some of the area's edges never closed.
func (o AreaOutcome) Malformed() bool {
	return len(o.Open) > 0
}

// Result is the outcome of one run.
type Result struct {
	RunID string
	Scene render.Scene
	// Areas holds one outcome per area, indexed by area.
	Areas []AreaOutcome
	// Diagnostics are every non-fatal problem of the run, sorted.
	Diagnostics []diag.Diagnostic
}

// Pipeline renders levels with fixed options.
type Pipeline struct {
	source level.Source
	opts   Options
	logger *zap.Logger
}

// New constructs a Pipeline.
//
// Precondition: source and logger must be non-nil.
// Postcondition: returns a non-nil Pipeline.
func New(source level.Source, opts Options, logger *zap.Logger) *Pipeline {
	if opts.Light == nil {
		opts.Light = light.Doom()
	}
	if opts.UnitsPerPixel <= 0 {
		opts.UnitsPerPixel = texture.DefaultUnitsPerPixel
	}
	return &Pipeline{source: source, opts: opts, logger: logger}
}

// NewFromConfig constructs a Pipeline reading YAML levels with the settings
// of cfg.
//
// Precondition: cfg has passed validation; logger must be non-nil.
// Postcondition: returns a non-nil Pipeline or an error building the light curve.
func NewFromConfig(cfg config.Config, logger *zap.Logger) (*Pipeline, error) {
	model, err := light.FromConfig(cfg.Light)
	if err != nil {
		return nil, fmt.Errorf("building light model: %w", err)
	}
	return New(level.YAMLSource{}, Options{
		Border:        cfg.Render.Border,
		UnitsPerPixel: cfg.Texture.UnitsPerPixel,
		Light:         model,
		Workers:       cfg.Pipeline.Workers,
		TextureDir:    cfg.Texture.Dir,
		Document:      svg.OptionsFromConfig(cfg.Render),
	}, logger), nil
}

func (p *Pipeline) workers() int {
	if p.opts.Workers > 0 {
		return p.opts.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Run renders lvl into a Scene using the tiles in reg. reg may be nil, in
// which case every texture is unresolved.
//
// Precondition: lvl must be non-nil.
// Postcondition: returns a Result whose Scene holds every closed polygon in
// draw order, or an *UnreadableInputError if lvl fails validation, or the
// context's error if ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context, lvl *level.Level, reg *texture.Registry) (*Result, error) {
	if err := lvl.Validate(); err != nil {
		return nil, &UnreadableInputError{Source: lvl.Name, Err: err}
	}
	runID := uuid.NewString()
	logger := observability.ForRun(p.logger, runID, lvl.Name)
	start := time.Now()
	logger.Info("render started",
		zap.Int("vertices", len(lvl.Vertices)),
		zap.Int("segments", len(lvl.Segments)),
		zap.Int("areas", len(lvl.Areas)),
		zap.String("light_curve", p.opts.Light.Name()),
	)

	done := observability.Stage(logger, "edges")
	edges := geometry.BuildEdges(lvl)
	done()

	done = observability.Stage(logger, "loops")
	outcomes, err := p.buildAreas(ctx, lvl, edges)
	done()
	if err != nil {
		return nil, err
	}

	done = observability.Stage(logger, "order")
	var polys []geometry.Polygon
	for _, o := range outcomes {
		polys = append(polys, o.Polygons...)
	}
	ordered := geometry.Order(polys, func(a int) int { return lvl.Areas[a].FloorHeight })
	done()

	done = observability.Stage(logger, "prepare")
	prepared, texDiags, err := p.prepare(ctx, lvl, ordered, reg)
	done()
	if err != nil {
		return nil, err
	}

	var diags []diag.Diagnostic
	for _, o := range outcomes {
		diags = append(diags, o.Diagnostics...)
	}
	diags = append(diags, texDiags...)
	diag.Sort(diags)

	scene := render.Build(lvl, prepared, p.opts.Border)
	observability.LogDiagnostics(logger, diags)
	logger.Info("render finished",
		zap.Int("items", len(scene.Items)),
		zap.Int("patterns", len(scene.Patterns)),
		zap.Int("diagnostics", len(diags)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Result{RunID: runID, Scene: scene, Areas: outcomes, Diagnostics: diags}, nil
}

func (p *Pipeline) buildAreas(ctx context.Context, lvl *level.Level, edges [][]geometry.DirectedEdge) ([]AreaOutcome, error) {
	outcomes := make([]AreaOutcome, len(lvl.Areas))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers())
	for a := range lvl.Areas {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[a] = resolveArea(a, edges[a], lvl.Vertices)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// resolveArea builds one area's loops and groups them into polygons.
func resolveArea(area int, edges []geometry.DirectedEdge, verts []level.Vertex) AreaOutcome {
	res := geometry.BuildLoops(area, edges, verts)
	out := AreaOutcome{
		Area:       area,
		Polygons:   geometry.ClassifyHoles(res.Loops),
		Open:       res.Open,
		Degenerate: res.Degenerate,
	}
	if res.Malformed() {
		segs := make([]int, len(res.Open))
		for i, e := range res.Open {
			segs[i] = e.Segment
		}
		out.Diagnostics = append(out.Diagnostics, diag.Diagnostic{
			Kind:   diag.MalformedSector,
			Area:   area,
			Detail: fmt.Sprintf("%d edge(s) never close into a loop (segments %v); %d loop(s) kept", len(res.Open), segs, len(res.Loops)),
		})
	}
	for _, l := range res.Degenerate {
		out.Diagnostics = append(out.Diagnostics, diag.Diagnostic{
			Kind:   diag.DegenerateLoop,
			Area:   area,
			Detail: fmt.Sprintf("dropped loop of %d edge(s) starting at vertex %d: no area or self-crossing", len(l.Edges), l.Edges[0].From),
		})
	}
	return out
}

// prepare resolves texture and shading for every ordered polygon.
// Unresolved textures are reported once per area.
func (p *Pipeline) prepare(ctx context.Context, lvl *level.Level, ordered []geometry.Polygon, reg *texture.Registry) ([]render.Prepared, []diag.Diagnostic, error) {
	mapper := texture.NewMapper(p.opts.UnitsPerPixel)
	prepared := make([]render.Prepared, len(ordered))
	missing := make([]bool, len(ordered))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers())
	for i, poly := range ordered {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			area := lvl.Areas[poly.Area]
			item := render.Prepared{
				Polygon: poly,
				Texture: area.FloorTexture,
				Shade:   p.opts.Light.Shade(area.Brightness),
			}
			if tile, ok := reg.Lookup(area.FloorTexture); ok {
				item.Tile = tile
				item.Tiling = mapper.Map(tile, area.FloorRotation)
			} else {
				missing[i] = true
			}
			prepared[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var diags []diag.Diagnostic
	reported := make(map[int]bool)
	for i, poly := range ordered {
		if !missing[i] || reported[poly.Area] {
			continue
		}
		reported[poly.Area] = true
		detail := fmt.Sprintf("floor texture %q not found; using flat fill", lvl.Areas[poly.Area].FloorTexture)
		if lvl.Areas[poly.Area].FloorTexture == "" {
			detail = "no floor texture; using flat fill"
		}
		diags = append(diags, diag.Diagnostic{Kind: diag.UnresolvedTexture, Area: poly.Area, Detail: detail})
	}
	return prepared, diags, nil
}

// RenderFile loads the level at levelPath, decodes its floor tiles from the
// configured texture directory, renders it, and writes the document to
// outPath.
//
// Postcondition: returns the run's Result with the document written, or an
// error. Load failures are *UnreadableInputError and leave outPath untouched.
func (p *Pipeline) RenderFile(ctx context.Context, levelPath, outPath string) (*Result, error) {
	lvl, err := p.source.Load(levelPath)
	if err != nil {
		return nil, &UnreadableInputError{Source: levelPath, Err: err}
	}
	reg, err := texture.LoadDir(p.opts.TextureDir, lvl.FloorTextures())
	if err != nil {
		return nil, &UnreadableInputError{Source: p.opts.TextureDir, Err: err}
	}
	p.logger.Debug("textures loaded",
		zap.String("dir", p.opts.TextureDir),
		zap.Int("resolved", reg.Len()),
		zap.Int("requested", len(lvl.FloorTextures())),
	)

	res, err := p.Run(ctx, lvl, reg)
	if err != nil {
		var unreadable *UnreadableInputError
		if errors.As(err, &unreadable) {
			unreadable.Source = levelPath
		}
		return nil, err
	}
	if err := svg.WriteFile(outPath, res.Scene, p.opts.Document); err != nil {
		return nil, err
	}
	p.logger.Info("wrote document", zap.String("run_id", res.RunID), zap.String("path", outPath))
	return res, nil
}
