package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dkoosis/flowcov/internal/config"
	"github.com/dkoosis/flowcov/internal/logging"
	"github.com/dkoosis/flowcov/pkg/checker"
	"github.com/dkoosis/flowcov/pkg/render"
)

// app holds the global flags and the pieces every command builds from them.
type app struct {
	stdout, stderr io.Writer

	configFile        string
	envFile           string
	executable        string
	onlyIfAppropriate bool
	showUncovered     bool
	timeout           time.Duration
	logLevel          string
	theme             string
	format            string
}

func (a *app) bindFlags(root *cobra.Command) {
	f := root.PersistentFlags()
	f.StringVar(&a.configFile, "config", "", "config file (default: "+config.FileName+" searched upward)")
	f.StringVar(&a.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	f.StringVar(&a.executable, "executable", "", "path to the flow executable")
	f.BoolVar(&a.onlyIfAppropriate, "only-if-appropriate", true, "skip files outside a Flow project")
	f.BoolVar(&a.showUncovered, "show-uncovered", false, "report uncovered regions")
	f.DurationVar(&a.timeout, "timeout", config.DefaultTimeout, "per-invocation timeout")
	f.StringVar(&a.logLevel, "log-level", config.DefaultLogLevel, "log level (debug|info|warn|error)")
	f.StringVar(&a.theme, "theme", config.DefaultTheme, "terminal theme (default|orca|mono)")
	f.StringVar(&a.format, "format", config.DefaultFormat, "output format (auto|terminal|llm|json)")
}

// overrides returns only the flags the user set explicitly so that env and
// file values are not masked by flag defaults.
func (a *app) overrides(cmd *cobra.Command) config.Overrides {
	var o config.Overrides
	changed := cmd.Flags().Changed
	if changed("executable") {
		o.ExecutablePath = &a.executable
	}
	if changed("only-if-appropriate") {
		o.OnlyIfAppropriate = &a.onlyIfAppropriate
	}
	if changed("show-uncovered") {
		o.ShowUncovered = &a.showUncovered
	}
	if changed("timeout") {
		o.Timeout = &a.timeout
	}
	if changed("log-level") {
		o.LogLevel = &a.logLevel
	}
	if changed("theme") {
		o.Theme = &a.theme
	}
	if changed("format") {
		o.Format = &a.format
	}
	return o
}

// resolver loads the dotenv file and returns a Resolver rooted at the
// working directory.
func (a *app) resolver(cmd *cobra.Command) (*config.Resolver, error) {
	if a.envFile != "" {
		if err := config.LoadDotEnv(a.envFile); err != nil {
			return nil, err
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("working directory: %w", err)
	}
	return &config.Resolver{StartDir: wd, File: a.configFile, Overrides: a.overrides(cmd)}, nil
}

// setup resolves the configuration and builds the logger. Failures are
// usage errors.
func (a *app) setup(cmd *cobra.Command) (*config.Resolver, config.Config, *slog.Logger, error) {
	r, err := a.resolver(cmd)
	if err != nil {
		return nil, config.Config{}, nil, &exitError{code: exitUsage, err: err}
	}
	cfg, err := r.Resolve()
	if err != nil {
		return nil, config.Config{}, nil, &exitError{code: exitUsage, err: err}
	}
	logger := logging.New(a.stderr, cfg.LogLevel)
	logger.Debug("config resolved", "file", r.Path(), "executable", cfg.ExecutablePath, "format", cfg.Format)
	return r, cfg, logger, nil
}

func (a *app) client(cfg config.Config, logger *slog.Logger) *checker.Client {
	return checker.NewClient(
		checker.WithTimeout(cfg.Timeout),
		checker.WithStopTimeout(cfg.StopTimeout),
		checker.WithLogger(logger),
	)
}

// renderer picks the output renderer; "auto" means terminal on a TTY and
// llm otherwise.
func (a *app) renderer(cfg config.Config) (render.Renderer, error) {
	format := cfg.Format
	if format == config.DefaultFormat {
		format = render.FormatLLM
		if isTTYWriter(a.stdout) {
			format = render.FormatTerminal
		}
	}
	width, _ := termSize(a.stdout)
	return render.New(format, render.ThemeByName(cfg.Theme), width)
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termSize returns the terminal dimensions for w, defaulting to 80x24.
func termSize(w io.Writer) (width, height int) {
	width, height = 80, 24
	if f, ok := w.(*os.File); ok {
		if tw, th, err := term.GetSize(int(f.Fd())); err == nil {
			if tw > 0 {
				width = tw
			}
			if th > 0 {
				height = th
			}
		}
	}
	return width, height
}
