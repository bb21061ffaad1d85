// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/xonecas/atfind/internal/filesearch"
)

// Config is the root configuration structure.
type Config struct {
	Search  filesearch.Config `toml:"search"`
	Log     LogConfig         `toml:"log"`
	History HistoryConfig     `toml:"history"`
	UI      UIConfig          `toml:"ui"`
}

// LogConfig controls the zerolog output.
type LogConfig struct {
	Level string `toml:"level"`
	// File receives log output while the composer owns the terminal.
	// Defaults to <data dir>/atfind.log.
	File string `toml:"file"`
}

// HistoryConfig holds composer input history settings.
type HistoryConfig struct {
	Enabled    bool `toml:"enabled"`
	MaxEntries int  `toml:"max_entries"`
}

// UIConfig holds user-interface settings.
type UIConfig struct {
	// SyntaxTheme is the Chroma theme used for file previews.
	// Defaults to "vulcan" if unset.
	SyntaxTheme  string `toml:"syntax_theme"`
	PreviewLines int    `toml:"preview_lines"`
}

// SyntaxThemeOrDefault returns the configured syntax theme or "vulcan" if unset.
func (u UIConfig) SyntaxThemeOrDefault() string {
	if u.SyntaxTheme == "" {
		return "vulcan"
	}
	return u.SyntaxTheme
}

// LevelOrDefault returns the parsed log level, falling back to info.
func (l LogConfig) LevelOrDefault() zerolog.Level {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil || l.Level == "" {
		return zerolog.InfoLevel
	}
	return level
}

// FileOrDefault returns the configured log file or <data dir>/atfind.log.
func (l LogConfig) FileOrDefault() (string, error) {
	if l.File != "" {
		return l.File, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "atfind.log"), nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Search:  filesearch.DefaultConfig(),
		Log:     LogConfig{Level: "info"},
		History: HistoryConfig{Enabled: true, MaxEntries: 1000},
		UI:      UIConfig{PreviewLines: 12},
	}
}

// Load reads configuration from a TOML file over the defaults and applies
// environment variable overrides. An empty path means DefaultPath; that file
// is optional, while an explicitly named file must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
	} else if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Search.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("search: %w", err))
	}

	if c.Log.Level != "" {
		if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
			errs = append(errs, fmt.Errorf("log.level=%q is invalid: %v", c.Log.Level, err))
		}
	}

	if c.History.Enabled && c.History.MaxEntries < 1 {
		errs = append(errs, fmt.Errorf("history.max_entries=%d must be at least 1", c.History.MaxEntries))
	}

	if c.UI.PreviewLines < 0 {
		errs = append(errs, fmt.Errorf("ui.preview_lines=%d must not be negative", c.UI.PreviewLines))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) error {
	var errs []error
	for _, setter := range []struct {
		env   string
		apply func(string) error
	}{
		{"ATFIND_MAX_RESULTS", func(v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			cfg.Search.MaxResults = n
			return nil
		}},
		{"ATFIND_INCLUDE_HIDDEN", func(v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			cfg.Search.IncludeHidden = b
			return nil
		}},
		{"ATFIND_LOG_LEVEL", func(v string) error {
			cfg.Log.Level = v
			return nil
		}},
		{"ATFIND_LOG_FILE", func(v string) error {
			cfg.Log.File = v
			return nil
		}},
	} {
		v := os.Getenv(setter.env)
		if v == "" {
			continue
		}
		if err := setter.apply(v); err != nil {
			errs = append(errs, fmt.Errorf("%s=%q: %w", setter.env, v, err))
		}
	}
	return errors.Join(errs...)
}

// DataDir returns the path to the atfind data directory (~/.config/atfind).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "atfind"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}

// DefaultPath returns ~/.config/atfind/config.toml.
func DefaultPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// HistoryPath returns the SQLite history database path inside the data directory.
func HistoryPath() (string, error) {
	dir, err := EnsureDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}
