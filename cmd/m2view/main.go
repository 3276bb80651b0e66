// Package main is the entry point for m2view, a headless player for
// skinned M2-style meshes.
//
// Usage:
//
//	m2view [-config path] [-asset model.glb] [-anim Walk] [-frames 50]
//	       [-out preview.webp] [-size 256] [-crowd 100] [-no-sort] [-once] [-debug]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/m2skin/internal/config"
	"github.com/Faultbox/m2skin/internal/logger"
	"github.com/Faultbox/m2skin/internal/viewer"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== m2view ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	v, err := viewer.New(cfg)
	if err != nil {
		logger.Error("failed to start viewer", zap.Error(err))
		os.Exit(1)
	}

	stats, err := v.Run(ctx)
	if err != nil {
		logger.Error("playback failed", zap.Error(err))
		os.Exit(1)
	}

	fmt.Printf("played %d frames on %d instance(s) in %v\n", stats.Frames, stats.Instances, stats.Elapsed)
	if stats.Output != "" {
		fmt.Printf("preview: %s\n", stats.Output)
	}
	fmt.Printf("draw order: %v\n", stats.LastOrder)
}
