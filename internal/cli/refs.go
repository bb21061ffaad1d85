package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xonecas/atfind/internal/filesearch"
)

var (
	refsCursor int
	refsJSON   bool
)

var refsCmd = &cobra.Command{
	Use:   "refs [text]",
	Short: "List the @ references in a message",
	Long: `Prints the unique @path references in the text, in order of appearance.

With --cursor, the reference being typed at that byte offset is left out and
the partial query under the cursor is reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runRefs,
}

func init() {
	refsCmd.Flags().IntVar(&refsCursor, "cursor", -1, "byte offset of the cursor (-1: none)")
	refsCmd.Flags().BoolVar(&refsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(refsCmd)
}

type refsOutput struct {
	References []string `json:"references"`
	Query      string   `json:"query,omitempty"`
	Searching  bool     `json:"searching"`
}

func runRefs(cmd *cobra.Command, args []string) error {
	text := args[0]
	res := refsOutput{References: filesearch.ExtractReferences(text, refsCursor)}
	if res.References == nil {
		res.References = []string{}
	}
	if refsCursor >= 0 {
		res.Query, res.Searching = filesearch.ExtractSearchQuery(text, refsCursor)
	}

	out := cmd.OutOrStdout()
	if refsJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal references: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	for _, ref := range res.References {
		fmt.Fprintln(out, ref)
	}
	if res.Searching {
		fmt.Fprintf(cmd.ErrOrStderr(), "typing: @%s\n", res.Query)
	}
	return nil
}
