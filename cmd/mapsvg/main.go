package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mapsvg/internal/config"
	"github.com/cory-johannsen/mapsvg/internal/observability"
	"github.com/cory-johannsen/mapsvg/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	levelPath := flag.String("level", "", "path to level YAML file")
	textureDir := flag.String("textures", "", "directory of floor texture images (overrides texture.dir)")
	output := flag.String("output", "", "output SVG path (default: <level>.svg)")
	border := flag.Float64("border", -1, "margin around the level in world units (overrides render.border)")
	stroke := flag.String("stroke", "", "outline colour for area boundaries (overrides render.stroke)")
	fill := flag.String("fill", "", "background colour (overrides render.fill)")
	flag.Parse()

	if *levelPath == "" {
		fmt.Fprintln(os.Stderr, "usage: mapsvg -level <file> [-config <file>] [-textures <dir>] [-output <file>] [-border n] [-stroke colour] [-fill colour]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *textureDir != "" {
		cfg.Texture.Dir = *textureDir
	}
	if *border >= 0 {
		cfg.Render.Border = *border
	}
	if *stroke != "" {
		cfg.Render.Stroke = *stroke
	}
	if *fill != "" {
		cfg.Render.Fill = *fill
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	out := *output
	if out == "" {
		out = strings.TrimSuffix(*levelPath, filepath.Ext(*levelPath)) + ".svg"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	if err := run(ctx, cfg, logger, *levelPath, out); err != nil {
		var unreadable *pipeline.UnreadableInputError
		if errors.As(err, &unreadable) {
			logger.Error("input could not be read", zap.String("source", unreadable.Source), zap.Error(unreadable.Err))
		} else {
			logger.Error("render failed", zap.Error(err))
		}
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("render complete", zap.String("output", out), zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)))
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger, levelPath, out string) error {
	p, err := pipeline.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	_, err = p.RenderFile(ctx, levelPath, out)
	return err
}
