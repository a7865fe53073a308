package level

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source loads a level from a format-specific location.
//
// Postcondition: returns a validated Level, or a non-nil error.
type Source interface {
	Load(path string) (*Level, error)
}

var _ Source = YAMLSource{}

// YAMLSource loads levels from the YAML level schema.
type YAMLSource struct{}

// Load implements Source.
func (YAMLSource) Load(path string) (*Level, error) {
	return LoadFromFile(path)
}

// yamlLevelFile is the top-level YAML structure for level files.
type yamlLevelFile struct {
	Level yamlLevel `yaml:"level"`
}

type yamlLevel struct {
	Name     string        `yaml:"name"`
	Vertices []yamlVertex  `yaml:"vertices"`
	Segments []yamlSegment `yaml:"segments"`
	Areas    []yamlArea    `yaml:"areas"`
}

type yamlVertex struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type yamlSegment struct {
	Start int       `yaml:"start"`
	End   int       `yaml:"end"`
	Front *yamlSide `yaml:"front"`
	Back  *yamlSide `yaml:"back"`
}

type yamlSide struct {
	Area    *int   `yaml:"area"`
	Lower   string `yaml:"lower"`
	Middle  string `yaml:"middle"`
	Upper   string `yaml:"upper"`
	OffsetX int    `yaml:"offset_x"`
	OffsetY int    `yaml:"offset_y"`
}

type yamlArea struct {
	Floor          int     `yaml:"floor"`
	Ceiling        int     `yaml:"ceiling"`
	FloorTexture   string  `yaml:"floor_texture"`
	CeilingTexture string  `yaml:"ceiling_texture"`
	Brightness     int     `yaml:"brightness"`
	Tag            int     `yaml:"tag"`
	FloorRotation  float64 `yaml:"floor_rotation"`
}

// LoadFromFile reads and validates a single level YAML file.
//
// Precondition: path must point to a YAML level file.
// Postcondition: Returns a validated Level or a non-nil error.
func LoadFromFile(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level file %s: %w", path, err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses and validates a level from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the level schema.
// Postcondition: Returns a validated Level or a non-nil error.
func LoadFromBytes(data []byte) (*Level, error) {
	var file yamlLevelFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing level YAML: %w", err)
	}

	lvl, err := convertYAMLLevel(file.Level)
	if err != nil {
		return nil, fmt.Errorf("converting level: %w", err)
	}
	if err := lvl.Validate(); err != nil {
		return nil, fmt.Errorf("validating level: %w", err)
	}
	return lvl, nil
}

// convertYAMLLevel converts the parsed YAML structures into domain types.
func convertYAMLLevel(yl yamlLevel) (*Level, error) {
	lvl := &Level{
		Name:     strings.TrimSpace(yl.Name),
		Vertices: make([]Vertex, len(yl.Vertices)),
		Segments: make([]WallSegment, 0, len(yl.Segments)),
		Areas:    make([]Area, len(yl.Areas)),
	}
	for i, yv := range yl.Vertices {
		lvl.Vertices[i] = Vertex{X: yv.X, Y: yv.Y}
	}
	for i, ys := range yl.Segments {
		if ys.Front == nil {
			return nil, fmt.Errorf("segment %d: front side is required", i)
		}
		front, err := convertYAMLSide(ys.Front)
		if err != nil {
			return nil, fmt.Errorf("segment %d: front: %w", i, err)
		}
		seg := WallSegment{Start: ys.Start, End: ys.End, Front: front}
		if ys.Back != nil {
			back, err := convertYAMLSide(ys.Back)
			if err != nil {
				return nil, fmt.Errorf("segment %d: back: %w", i, err)
			}
			seg.Back = &back
		}
		lvl.Segments = append(lvl.Segments, seg)
	}
	for i, ya := range yl.Areas {
		lvl.Areas[i] = Area{
			FloorHeight:    ya.Floor,
			CeilingHeight:  ya.Ceiling,
			FloorTexture:   strings.ToUpper(strings.TrimSpace(ya.FloorTexture)),
			CeilingTexture: strings.ToUpper(strings.TrimSpace(ya.CeilingTexture)),
			Brightness:     ya.Brightness,
			Tag:            ya.Tag,
			FloorRotation:  ya.FloorRotation,
		}
	}
	return lvl, nil
}

func convertYAMLSide(ys *yamlSide) (SideBinding, error) {
	if ys.Area == nil {
		return SideBinding{}, fmt.Errorf("area is required")
	}
	return SideBinding{
		Area:    *ys.Area,
		Lower:   ys.Lower,
		Middle:  ys.Middle,
		Upper:   ys.Upper,
		OffsetX: ys.OffsetX,
		OffsetY: ys.OffsetY,
	}, nil
}
