// Package cli implements the atfind command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xonecas/atfind/internal/config"
	"github.com/xonecas/atfind/internal/filesearch"
)

// version is set at build time with -ldflags.
var version = "dev"

var (
	rootDir    string
	configPath string
	logLevel   string
	verbose    bool

	// cfg is loaded before every command runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "atfind",
	Short: "Find project files for @ mentions",
	Long: `atfind searches a project tree for files to reference with @ mentions.

It ranks paths with a fuzzy matcher, honors the root .gitignore and a built-in
list of build and dependency directories, and never suggests a file that the
message already references.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "project root to search")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/atfind/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "shorthand for --log-level debug")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	switch {
	case verbose:
		c.Log.Level = "debug"
	case logLevel != "":
		if _, err := zerolog.ParseLevel(logLevel); err != nil {
			return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
		}
		c.Log.Level = logLevel
	}
	cfg = c
	setupLogging(cmd.ErrOrStderr(), cfg.Log.LevelOrDefault())
	return nil
}

// setupLogging points the global zerolog logger at w.
func setupLogging(w io.Writer, level zerolog.Level) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
}

// openLogFile redirects logging to the configured log file, for commands that
// own the terminal. The caller closes the returned file.
func openLogFile() (*os.File, error) {
	path, err := cfg.Log.FileOrDefault()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	setupLogging(f, cfg.Log.LevelOrDefault())
	return f, nil
}

// openSystem starts a search system over --root using the loaded config.
func openSystem() (*filesearch.System, error) {
	sys, err := filesearch.New(rootDir, cfg.Search)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", rootDir, err)
	}
	return sys, nil
}
