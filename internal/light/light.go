// Package light maps an area's stored brightness to the shading multiplier
// applied to its floor texture.
//
// Every curve is tabulated once over [0, level.MaxBrightness] when the Model
// is built, so Shade is a pure table lookup and the same Model is applied to
// every area of a run.
package light

import (
	"fmt"
	"math"
	"os"

	"github.com/cory-johannsen/mapsvg/internal/config"
	"github.com/cory-johannsen/mapsvg/internal/level"
	"github.com/cory-johannsen/mapsvg/internal/scripting"
)

// Curve names accepted by FromConfig.
const (
	CurveDoom   = "doom"
	CurveLinear = "linear"
	CurveScript = "script"
)

// Model is an immutable brightness-to-shade table.
type Model struct {
	name  string
	table [level.MaxBrightness + 1]float64
}

// NewModel tabulates fn over every brightness level.
//
// Postcondition: Returns a Model whose Shade is non-decreasing, or a
// non-nil error if fn fails, returns a negative or non-finite value, or
// ever decreases.
func NewModel(name string, fn func(brightness int) (float64, error)) (*Model, error) {
	m := &Model{name: name}
	for b := range m.table {
		v, err := fn(b)
		if err != nil {
			return nil, fmt.Errorf("light curve %s: %w", name, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, fmt.Errorf("light curve %s: shade(%d) = %v, want a finite value >= 0", name, b, v)
		}
		if b > 0 && v < m.table[b-1] {
			return nil, fmt.Errorf("light curve %s: shade(%d) = %v is darker than shade(%d) = %v", name, b, v, b-1, m.table[b-1])
		}
		m.table[b] = v
	}
	return m, nil
}

// NewTableModel builds a Model from precomputed values, one per level.
func NewTableModel(name string, values []float64) (*Model, error) {
	if len(values) != level.MaxBrightness+1 {
		return nil, fmt.Errorf("light curve %s: got %d values, want %d", name, len(values), level.MaxBrightness+1)
	}
	return NewModel(name, func(b int) (float64, error) { return values[b], nil })
}

func mustModel(name string, fn func(int) float64) *Model {
	m, err := NewModel(name, func(b int) (float64, error) { return fn(b), nil })
	if err != nil {
		panic(err)
	}
	return m
}

// Doom returns the curve the game's software renderer approximates: light
// is quantised into 32 bands and brightened on a square law, so 255 maps to
// a little above 1.4 and dark areas fall off quickly.
func Doom() *Model {
	return mustModel(CurveDoom, func(b int) float64 {
		band := float64(b>>3) / 32
		return 1.5 * band * band
	})
}

// Linear returns brightness/255.
func Linear() *Model {
	return mustModel(CurveLinear, func(b int) float64 {
		return float64(b) / level.MaxBrightness
	})
}

// Name returns the curve name.
func (m *Model) Name() string {
	return m.name
}

// Shade returns the multiplier for brightness, clamped into range.
func (m *Model) Shade(brightness int) float64 {
	return m.table[min(max(brightness, 0), level.MaxBrightness)]
}

// FromConfig builds the Model selected by cfg. A script curve is read from
// cfg.Script and evaluated in the Lua sandbox.
//
// Precondition: cfg has passed config validation.
// Postcondition: Returns a Model or a non-nil error.
func FromConfig(cfg config.LightConfig) (*Model, error) {
	switch cfg.Curve {
	case CurveDoom, "":
		return Doom(), nil
	case CurveLinear:
		return Linear(), nil
	case CurveScript:
		src, err := os.ReadFile(cfg.Script)
		if err != nil {
			return nil, fmt.Errorf("reading light script: %w", err)
		}
		values, err := scripting.Tabulate(cfg.Script, string(src), level.MaxBrightness, cfg.InstructionLimit)
		if err != nil {
			return nil, err
		}
		return NewTableModel(cfg.Script, values)
	default:
		return nil, fmt.Errorf("unknown light curve %q", cfg.Curve)
	}
}
