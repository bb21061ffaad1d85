package cli

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xonecas/atfind/internal/config"
	"github.com/xonecas/atfind/internal/history"
	"github.com/xonecas/atfind/internal/tui"
)

var (
	composeExpand      bool
	composeExpandLines int
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Write a message with @ file mentions",
	Long: `Opens an interactive composer. Typing @ shows matching project files;
the submitted message is printed to stdout.

Controls:
  ↑/↓           - Move through suggestions, or history when none are shown
  ctrl+p/n      - Move through suggestions
  Enter, Tab    - Insert the selected file
  Enter         - Submit (a line ending in \ continues on the next line)
  Esc           - Dismiss suggestions / quit`,
	Args: cobra.NoArgs,
	RunE: runCompose,
}

func init() {
	composeCmd.Flags().BoolVar(&composeExpand, "expand", false, "append the contents of referenced files to the message")
	composeCmd.Flags().IntVar(&composeExpandLines, "expand-lines", 400, "maximum lines per expanded file")
	rootCmd.AddCommand(composeCmd)
}

func runCompose(cmd *cobra.Command, _ []string) error {
	logFile, err := openLogFile()
	if err != nil {
		return err
	}
	defer logFile.Close()

	sys, err := openSystem()
	if err != nil {
		return err
	}
	defer sys.Close()

	store, session := openHistory(sys.Root())
	defer store.Close()

	model := tui.New(sys, tui.Options{
		History:      store,
		Session:      session,
		HistoryLimit: cfg.History.MaxEntries,
		Theme:        cfg.UI.SyntaxThemeOrDefault(),
		PreviewLines: cfg.UI.PreviewLines,
		Expand:       composeExpand,
		ExpandLines:  composeExpandLines,
	})

	final, err := tea.NewProgram(model,
		tea.WithContext(cmd.Context()),
		tea.WithOutput(cmd.ErrOrStderr()),
	).Run()
	if err != nil {
		return fmt.Errorf("composer failed: %w", err)
	}

	if m, ok := final.(tui.Model); ok {
		if msg, ok := m.Result(); ok {
			fmt.Fprintln(cmd.OutOrStdout(), msg)
		}
	}
	return nil
}

// openHistory opens the history database when enabled. Failures only disable
// history; the returned store may be nil.
func openHistory(root string) (*history.Store, string) {
	if !cfg.History.Enabled {
		return nil, ""
	}
	path, err := config.HistoryPath()
	if err != nil {
		log.Warn().Err(err).Msg("history disabled")
		return nil, ""
	}
	store, err := history.Open(path, cfg.History.MaxEntries)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("history disabled")
		return nil, ""
	}
	session, _ := store.StartSession(root)
	return store, session
}
