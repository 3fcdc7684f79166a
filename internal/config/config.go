package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the project/user configuration file.
const FileName = ".flowcov.yaml"

// Config is the process-wide, user-settable configuration.
type Config struct {
	ExecutablePath     string        `yaml:"executable_path"`
	OnlyIfAppropriate  bool          `yaml:"only_if_appropriate"`
	ShowUncovered      bool          `yaml:"show_uncovered"`
	HyperclickPriority int           `yaml:"hyperclick_priority"`
	Timeout            time.Duration `yaml:"timeout"`
	StopTimeout        time.Duration `yaml:"stop_timeout"`
	LogLevel           string        `yaml:"log_level"`
	Theme              string        `yaml:"theme"`
	Format             string        `yaml:"format"`
}

// Default values.
const (
	DefaultTimeout  = 60 * time.Second
	DefaultLogLevel = "warn"
	DefaultTheme    = "default"
	DefaultFormat   = "auto"
)

// Default returns the hardcoded defaults.
func Default() Config {
	return Config{
		OnlyIfAppropriate: true,
		Timeout:           DefaultTimeout,
		StopTimeout:       DefaultTimeout,
		LogLevel:          DefaultLogLevel,
		Theme:             DefaultTheme,
		Format:            DefaultFormat,
	}
}

var (
	validFormats = map[string]bool{"auto": true, "terminal": true, "llm": true, "json": true}
	validThemes  = map[string]bool{"default": true, "orca": true, "mono": true}
	validLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
)

// Validate rejects values no component can act on.
func (c Config) Validate() error {
	var errs []error
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.StopTimeout <= 0 {
		errs = append(errs, fmt.Errorf("stop_timeout must be positive, got %s", c.StopTimeout))
	}
	if !validFormats[c.Format] {
		errs = append(errs, fmt.Errorf("unknown format %q (expected auto, terminal, llm, json)", c.Format))
	}
	if !validThemes[c.Theme] {
		errs = append(errs, fmt.Errorf("unknown theme %q (expected default, orca, mono)", c.Theme))
	}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// FindFile looks for FileName in startDir and its parents, then in the user
// config directory. Returns "" when there is none.
func FindFile(startDir string) string {
	if dir, err := filepath.Abs(startDir); err == nil {
		for {
			p := filepath.Join(dir, FileName)
			if _, err := os.Stat(p); err == nil {
				return p
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	p := filepath.Join(configHome, "flowcov", FileName)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// LoadFile unmarshals path over cfg. Keys absent from the file keep their
// current values. A missing file is not an error.
func LoadFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path) // #nosec G304 - path comes from FindFile or the user
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// LoadDotEnv seeds the process environment from a .env file. Variables
// already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables read through getenv onto cfg.
// Only non-empty values override.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	var errs []error
	setString(&cfg.ExecutablePath, getenv("FLOWCOV_EXECUTABLE_PATH"))
	setString(&cfg.LogLevel, getenv("FLOWCOV_LOG_LEVEL"))
	errs = append(errs,
		setBool(&cfg.OnlyIfAppropriate, "FLOWCOV_ONLY_IF_APPROPRIATE", getenv),
		setBool(&cfg.ShowUncovered, "FLOWCOV_SHOW_UNCOVERED", getenv),
		setInt(&cfg.HyperclickPriority, "FLOWCOV_HYPERCLICK_PRIORITY", getenv),
		setDuration(&cfg.Timeout, "FLOWCOV_TIMEOUT", getenv),
		setDuration(&cfg.StopTimeout, "FLOWCOV_STOP_TIMEOUT", getenv),
	)
	if getenv("FLOWCOV_DEBUG") != "" {
		cfg.LogLevel = "debug"
	}
	if getenv("NO_COLOR") != "" {
		cfg.Theme = "mono"
	}
	return errors.Join(errs...)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string, getenv func(string) string) error {
	v := getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setInt(dst *int, key string, getenv func(string) string) error {
	v := getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string, getenv func(string) string) error {
	v := getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
