package app

import (
	"io"
	"os"

	"metricls/internal/config"
	"metricls/internal/logging"

	"github.com/rs/zerolog"
)

// Options configures the top-level controller.
type Options struct {
	// ConfigPath points to the optional config file.
	ConfigPath string
	// Stdout receives listing output; Stderr receives logs. Both default
	// to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// App exposes high-level operations that the CLI/TUI can reuse.
type App struct {
	cfgPath string
	stdout  io.Writer
	stderr  io.Writer
}

// New constructs the shared controller facade.
func New(opts Options) *App {
	a := &App{
		cfgPath: opts.ConfigPath,
		stdout:  opts.Stdout,
		stderr:  opts.Stderr,
	}
	if a.stdout == nil {
		a.stdout = os.Stdout
	}
	if a.stderr == nil {
		a.stderr = os.Stderr
	}
	return a
}

// ConfigPath returns the configured config file path (if any).
func (a *App) ConfigPath() string {
	return a.cfgPath
}

// Config loads the effective configuration.
func (a *App) Config() (config.Config, error) {
	return config.Load(a.cfgPath)
}

func (a *App) logger(cfg config.Config, debug bool) zerolog.Logger {
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	return logging.New(a.stderr, level)
}
