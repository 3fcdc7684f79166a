package config

import (
	"fmt"
	"os"
	"time"
)

// Overrides carries explicitly set CLI flags. Nil fields were not set.
type Overrides struct {
	ExecutablePath    *string
	OnlyIfAppropriate *bool
	ShowUncovered     *bool
	Timeout           *time.Duration
	LogLevel          *string
	Theme             *string
	Format            *string
}

// Apply writes every set override onto cfg.
func (o Overrides) Apply(cfg *Config) {
	if o.ExecutablePath != nil {
		cfg.ExecutablePath = *o.ExecutablePath
	}
	if o.OnlyIfAppropriate != nil {
		cfg.OnlyIfAppropriate = *o.OnlyIfAppropriate
	}
	if o.ShowUncovered != nil {
		cfg.ShowUncovered = *o.ShowUncovered
	}
	if o.Timeout != nil {
		cfg.Timeout = *o.Timeout
	}
	if o.LogLevel != nil {
		cfg.LogLevel = *o.LogLevel
	}
	if o.Theme != nil {
		cfg.Theme = *o.Theme
	}
	if o.Format != nil {
		cfg.Format = *o.Format
	}
}

// Resolver produces a Config from every source with the documented
// precedence. It can be re-run to pick up file edits.
type Resolver struct {
	StartDir  string // where the upward file search begins
	File      string // explicit config file; skips the search when set
	Overrides Overrides
	Getenv    func(string) string // defaults to os.Getenv
}

// Path returns the config file Resolve reads, or "".
func (r *Resolver) Path() string {
	if r.File != "" {
		return r.File
	}
	return FindFile(r.StartDir)
}

// Resolve builds and validates the Config.
func (r *Resolver) Resolve() (Config, error) {
	cfg := Default()

	if err := LoadFile(&cfg, r.Path()); err != nil {
		return Config{}, fmt.Errorf("config file: %w", err)
	}

	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if err := ApplyEnv(&cfg, getenv); err != nil {
		return Config{}, fmt.Errorf("config env: %w", err)
	}

	r.Overrides.Apply(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
