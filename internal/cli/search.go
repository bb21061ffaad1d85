package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xonecas/atfind/internal/filesearch"
)

var (
	searchLimit       int
	searchJSON        bool
	searchExcludeFrom string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search project files",
	Long: `Ranks the files and directories under --root against the query.
An empty query lists every entry, directories first.

--exclude-from takes a message; every file it already references with
@path is left out of the results.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVar(&searchExcludeFrom, "exclude-from", "", "message whose @ references are excluded")
	rootCmd.AddCommand(searchCmd)
}

// searchHit is the JSON form of a result.
type searchHit struct {
	Path  string  `json:"path"`
	Abs   string  `json:"abs"`
	Score float64 `json:"score"`
	Dir   bool    `json:"dir,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := ""
	if len(args) == 1 {
		query = args[0]
	}
	if searchLimit > 0 {
		cfg.Search.MaxResults = searchLimit
	}

	sys, err := openSystem()
	if err != nil {
		return err
	}
	defer sys.Close()

	start := time.Now()
	excluded := filesearch.ExtractReferences(searchExcludeFrom, -1)
	results := sys.SearchWithExclusions(query, excluded)
	if searchLimit > 0 && len(results) > searchLimit {
		results = results[:searchLimit]
	}
	log.Debug().
		Str("query", query).
		Int("excluded", len(excluded)).
		Int("results", len(results)).
		Dur("took", time.Since(start)).
		Msg("search")

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []filesearch.SearchResult) error {
	hits := make([]searchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, searchHit{
			Path:  r.Entry.RelPath,
			Abs:   r.Entry.AbsPath,
			Score: r.Score,
			Dir:   r.Entry.IsDir,
		})
	}
	data, err := json.MarshalIndent(hits, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []filesearch.SearchResult) error {
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No matches.")
		return nil
	}
	for _, r := range results {
		path := r.Entry.RelPath
		if r.Entry.IsDir {
			path += "/"
		}
		fmt.Fprintf(out, "%.3f  %s\n", r.Score, path)
	}
	return nil
}
