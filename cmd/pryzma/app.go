// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/pryzma/pryzma/internal/config"
	"github.com/pryzma/pryzma/internal/ppm"
)

type (
	// PackageManager installs, lists and removes packages. *ppm.Installer is
	// the production implementation.
	PackageManager interface {
		Install(ctx context.Context, name string) error
		List() ([]string, error)
		Remove(name string) error
	}

	// App wires CLI services and shared dependencies. Every command handler
	// receives the App and reaches configuration and packages through it.
	App struct {
		Config   config.Provider
		Packages func(cfg *config.Config, logger *slog.Logger) PackageManager
		stdout   io.Writer
		stderr   io.Writer

		logger *slog.Logger
		level  *log.Logger

		cfgOnce sync.Once
		cfg     *config.Config
		cfgErr  error
		// configPath is the --config flag value.
		configPath string
	}

	// Dependencies are the injection points for NewApp. Nil fields get
	// production defaults.
	Dependencies struct {
		Config   config.Provider
		Packages func(cfg *config.Config, logger *slog.Logger) PackageManager
		Stdout   io.Writer
		Stderr   io.Writer
	}
)

// NewApp creates an App from deps.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:   deps.Config,
		Packages: deps.Packages,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Packages == nil {
		app.Packages = func(cfg *config.Config, logger *slog.Logger) PackageManager {
			return ppm.New(cfg.PackagesDir, cfg.PPM, ppm.WithLogger(logger))
		}
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	app.setupLogging(false)
	return app
}

// setupLogging routes slog through a charm logger on stderr.
func (a *App) setupLogging(verbose bool) {
	a.level = log.NewWithOptions(a.stderr, log.Options{Level: log.InfoLevel})
	if verbose {
		a.level.SetLevel(log.DebugLevel)
	}
	a.logger = slog.New(a.level)
	slog.SetDefault(a.logger)
}

// LoadConfig loads the configuration once per invocation. A ui.verbose
// setting raises the log level.
func (a *App) LoadConfig(ctx context.Context) (*config.Config, error) {
	a.cfgOnce.Do(func() {
		a.cfg, a.cfgErr = a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.configPath})
		if a.cfgErr == nil && a.cfg.UI.Verbose {
			a.level.SetLevel(log.DebugLevel)
		}
	})
	return a.cfg, a.cfgErr
}

func (a *App) verbose() bool {
	return a.level.GetLevel() <= log.DebugLevel
}

func (a *App) glamourStyle() string {
	if a.cfg != nil && a.cfg.UI.ColorScheme == config.ColorSchemeLight {
		return "light"
	}
	return "dark"
}
