package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/thywilljoshua/pdf-outline/internal/ai"
	"github.com/thywilljoshua/pdf-outline/internal/batch"
	"github.com/thywilljoshua/pdf-outline/internal/config"
	"github.com/thywilljoshua/pdf-outline/internal/outline"
	"github.com/thywilljoshua/pdf-outline/internal/source"
)

// globals are the persistent root flags.
type globals struct {
	cfgFile   string
	logLevel  string
	logFormat string
}

// app is everything a command needs, built from the loaded config.
type app struct {
	mgr    *config.Manager
	cfg    config.Config
	logger *slog.Logger
	runner *batch.Runner
}

func (g *globals) load(ctx context.Context, logOut io.Writer) (*app, error) {
	mgr, err := config.NewManager(g.cfgFile)
	if err != nil {
		return nil, err
	}
	cfg := *mgr.Get()
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}
	logger, err := cfg.Log.NewLogger(logOut)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	if f := mgr.File(); f != "" {
		logger.Debug("config loaded", "file", f)
	}

	src, err := source.New(cfg.Source.Backend, source.Options{MaxPages: cfg.Source.MaxPages, Logger: logger})
	if err != nil {
		return nil, err
	}
	cls, err := outline.New(cfg.Outline)
	if err != nil {
		return nil, err
	}
	refiner, err := ai.New(ctx, ai.Options{
		Provider:    cfg.AI.Provider,
		Model:       cfg.AI.Model,
		APIKey:      cfg.AI.ResolvedAPIKey(),
		MaxAttempts: cfg.AI.MaxAttempts,
	})
	if err != nil {
		return nil, err
	}

	runner := batch.New(src, cls, refiner, batch.Options{
		Workers:       cfg.Batch.Workers,
		Timeout:       time.Duration(cfg.Batch.DocumentTimeoutSeconds) * time.Second,
		RefineTimeout: time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
		Validate:      cfg.Output.Validate,
		Recursive:     cfg.Batch.Recursive,
	}, logger)

	return &app{mgr: mgr, cfg: cfg, logger: logger, runner: runner}, nil
}

// dirs resolves the optional [in] [out] arguments against the config.
func (a *app) dirs(args []string) (in, out string) {
	in, out = a.cfg.Batch.InputDir, a.cfg.Batch.OutputDir
	if len(args) > 0 {
		in = args[0]
	}
	if len(args) > 1 {
		out = args[1]
	}
	return in, out
}
