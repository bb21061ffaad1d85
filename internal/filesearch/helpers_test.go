package filesearch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTree creates files under root. Paths ending in "/" become empty
// directories.
func writeTree(t testing.TB, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if strings.HasSuffix(p, "/") {
			if err := os.MkdirAll(full, 0755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("test content"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func relPaths(entries []CachedEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.RelPath)
	}
	return out
}

func resultPaths(results []SearchResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Entry.RelPath)
	}
	return out
}
