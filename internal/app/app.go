package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/sabberworm/wok/internal/config"
	"github.com/sabberworm/wok/internal/ctxlog"
	"github.com/sabberworm/wok/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *Config
	model    *config.Model
	loader   config.Loader
	modules  []registry.Module
}

// NewApp is the constructor for the main application. Rendered output goes to
// outW and logs to logW. It loads the configuration and registers modules
// (the core modules when none are given) into an isolated registry.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger, level := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, cfg.ConfigPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Debug {
		model.Debug = true
	}
	// Pipe traces are debug records; they must not be filtered out.
	if model.Debug && level.Level() > slog.LevelDebug {
		level.Set(slog.LevelDebug)
	}
	logger.Debug("Configuration loaded.", "options", len(model.Options), "plugins", len(model.Plugins))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules()
	}
	reg.RegisterModules(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "plugins", reg.Names())

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		config:   cfg,
		model:    model,
		loader:   loader,
		modules:  modules,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded configuration.
func (a *App) Model() *config.Model {
	return a.model
}
