package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Index the project and print cache statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	sys, err := openSystem()
	if err != nil {
		return err
	}
	defer sys.Close()

	start := time.Now()
	if err := sys.Refresh(); err != nil {
		return fmt.Errorf("failed to index %s: %w", sys.Root(), err)
	}
	took := time.Since(start)
	st := sys.Stats()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "root:        %s\n", sys.Root())
	fmt.Fprintf(out, "files:       %d\n", st.Files)
	fmt.Fprintf(out, "directories: %d\n", st.Directories)
	fmt.Fprintf(out, "walk errors: %d\n", st.Errors)
	fmt.Fprintf(out, "fingerprint: %016x\n", st.Fingerprint)
	fmt.Fprintf(out, "indexed in:  %s\n", took.Round(time.Microsecond))
	fmt.Fprintf(out, "ttl:         %s\n", cfg.Search.TTL())
	return nil
}
