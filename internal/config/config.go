// Package config provides Viper-based configuration loading for the map
// renderer.
package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variable overrides, e.g. MAPSVG_RENDER_BORDER.
const EnvPrefix = "MAPSVG"

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// RenderConfig holds scene and document output settings.
type RenderConfig struct {
	// Border is the margin added around the level's extent, in world units.
	Border float64 `mapstructure:"border"`
	// Stroke is the outline colour for area boundaries; empty draws none.
	Stroke string `mapstructure:"stroke"`
	// Fill is the background colour; empty leaves the background transparent.
	Fill string `mapstructure:"fill"`
	// MissingFill is the flat colour for areas whose texture is unresolved.
	MissingFill string `mapstructure:"missing_fill"`
	// Precision is the number of decimal places written for coordinates.
	Precision int `mapstructure:"precision"`
}

// TextureConfig holds floor texture lookup settings.
type TextureConfig struct {
	// Dir is the directory holding one image file per texture id.
	Dir string `mapstructure:"dir"`
	// UnitsPerPixel is the world size of one texel.
	UnitsPerPixel float64 `mapstructure:"units_per_pixel"`
}

// LightConfig selects the brightness curve.
type LightConfig struct {
	// Curve is "doom", "linear", or "script".
	Curve string `mapstructure:"curve"`
	// Script is the Lua file defining shade(level); required when Curve is "script".
	Script string `mapstructure:"script"`
	// InstructionLimit bounds each shade call; 0 uses the scripting default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// PipelineConfig holds concurrency settings.
type PipelineConfig struct {
	// Workers bounds the per-area and per-item tasks run at once; 0 means GOMAXPROCS.
	Workers int `mapstructure:"workers"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Render   RenderConfig   `mapstructure:"render"`
	Texture  TextureConfig  `mapstructure:"texture"`
	Light    LightConfig    `mapstructure:"light"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	for _, check := range []func() []string{
		func() []string { return validateLogging(c.Logging) },
		func() []string { return validateRender(c.Render) },
		func() []string { return validateTexture(c.Texture) },
		func() []string { return validateLight(c.Light) },
		func() []string { return validatePipeline(c.Pipeline) },
	} {
		errs = append(errs, check()...)
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) []string {
	var errs []string
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of [debug, info, warn, error], got %q", l.Level))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be one of [json, console], got %q", l.Format))
	}
	return errs
}

var colorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3}|#[0-9a-fA-F]{6}|[a-zA-Z]+)$`)

func validateRender(r RenderConfig) []string {
	var errs []string
	if r.Border < 0 {
		errs = append(errs, fmt.Sprintf("render.border must be >= 0, got %g", r.Border))
	}
	for _, opt := range []struct{ key, value string }{{"render.stroke", r.Stroke}, {"render.fill", r.Fill}} {
		if opt.value != "" && !colorPattern.MatchString(opt.value) {
			errs = append(errs, fmt.Sprintf("%s must be a hex colour or colour name, got %q", opt.key, opt.value))
		}
	}
	if !colorPattern.MatchString(r.MissingFill) {
		errs = append(errs, fmt.Sprintf("render.missing_fill must be a hex colour or colour name, got %q", r.MissingFill))
	}
	if r.Precision < 0 || r.Precision > 6 {
		errs = append(errs, fmt.Sprintf("render.precision must be 0-6, got %d", r.Precision))
	}
	return errs
}

func validateTexture(t TextureConfig) []string {
	if t.UnitsPerPixel <= 0 {
		return []string{fmt.Sprintf("texture.units_per_pixel must be > 0, got %g", t.UnitsPerPixel)}
	}
	return nil
}

func validateLight(l LightConfig) []string {
	var errs []string
	switch l.Curve {
	case "doom", "linear":
	case "script":
		if l.Script == "" {
			errs = append(errs, "light.script must be set when light.curve is script")
		}
	default:
		errs = append(errs, fmt.Sprintf("light.curve must be one of [doom, linear, script], got %q", l.Curve))
	}
	if l.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("light.instruction_limit must be >= 0, got %d", l.InstructionLimit))
	}
	return errs
}

func validatePipeline(p PipelineConfig) []string {
	if p.Workers < 0 {
		return []string{fmt.Sprintf("pipeline.workers must be >= 0, got %d", p.Workers)}
	}
	return nil
}

// New returns a Viper instance carrying the defaults and environment
// overrides, with no config file attached.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Default returns the configuration built from defaults and environment
// overrides alone.
//
// Postcondition: Returns a valid Config or a non-nil error naming the
// offending environment override.
func Default() (Config, error) {
	return LoadFromViper(New())
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path behaves like Default.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := New()
	if path == "" {
		return LoadFromViper(v)
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("render.border", 8)
	v.SetDefault("render.stroke", "")
	v.SetDefault("render.fill", "")
	v.SetDefault("render.missing_fill", "#808080")
	v.SetDefault("render.precision", 3)

	v.SetDefault("texture.dir", "")
	v.SetDefault("texture.units_per_pixel", 1.0)

	v.SetDefault("light.curve", "doom")
	v.SetDefault("light.script", "")
	v.SetDefault("light.instruction_limit", 0)

	v.SetDefault("pipeline.workers", 0)
}
