package filesearch

import (
	"reflect"
	"sort"
	"testing"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		entName string
		relPath string
		want    float64
	}{
		{"exact name", "main.go", "main.go", "cmd/main.go", 1},
		{"exact path", "cmd/main.go", "main.go", "cmd/main.go", 1},
		{"case insensitive exact", "README.md", "readme.md", "readme.md", 1},
		{"not a subsequence", "xyz", "main.go", "cmd/main.go", 0},
		{"out of order", "gm", "mg", "mg", 0},
		{"empty query", "", "main.go", "main.go", 1},
		{"empty candidate", "a", "", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.query, tt.entName, tt.relPath); got != tt.want {
				t.Errorf("Score(%q, %q, %q) = %v, want %v", tt.query, tt.entName, tt.relPath, got, tt.want)
			}
		})
	}
}

func TestScoreRange(t *testing.T) {
	queries := []string{"a", "mn", "main", "src/m", "zzzz", "s/l/x", "ü"}
	targets := [][2]string{
		{"main.go", "src/main.go"},
		{"lib.x", "src/lib.x"},
		{"über.txt", "docs/über.txt"},
		{"a", "a"},
		{"very_long_file_name_with_many_parts.go", "deeply/nested/path/very_long_file_name_with_many_parts.go"},
	}
	for _, q := range queries {
		for _, tg := range targets {
			s := Score(q, tg[0], tg[1])
			if s < 0 || s > 1 {
				t.Errorf("Score(%q, %q) = %v out of range", q, tg[1], s)
			}
		}
	}
}

func TestScoreOrdering(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		better, worse [2]string
	}{
		{
			name:   "contiguous beats scattered",
			query:  "main",
			better: [2]string{"main.go", "main.go"},
			worse:  [2]string{"my_animal.go", "my_animal.go"},
		},
		{
			name:   "segment start beats mid-word",
			query:  "lib",
			better: [2]string{"lib.rs", "src/lib.rs"},
			worse:  [2]string{"stdlib.rs", "src/stdlib.rs"},
		},
		{
			name:   "shorter candidate ranks higher",
			query:  "conf",
			better: [2]string{"conf.go", "conf.go"},
			worse:  [2]string{"configuration.go", "configuration.go"},
		},
		{
			name:   "fewer gaps beats more gaps",
			query:  "abc",
			better: [2]string{"axbxc", "axbxc"},
			worse:  [2]string{"axxbxxc", "axxbxxc"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Score(tt.query, tt.better[0], tt.better[1])
			w := Score(tt.query, tt.worse[0], tt.worse[1])
			if b <= w {
				t.Errorf("expected %q (%v) > %q (%v)", tt.better[1], b, tt.worse[1], w)
			}
		})
	}
}

func TestScorePathQuery(t *testing.T) {
	// The name alone cannot match a query containing a separator.
	if s := Score("src/ma", "main.go", "src/main.go"); s == 0 {
		t.Error("path query should match the relative path")
	}
}

func TestMatchPositions(t *testing.T) {
	tests := []struct {
		query, target string
		want          []int
	}{
		{"main", "main.go", []int{0, 1, 2, 3}},
		{"lib", "src/lib.rs", []int{4, 5, 6}},
		{"lib", "stdlib/lib.rs", []int{7, 8, 9}},
		{"mgo", "main.go", []int{0, 5, 6}},
		{"MG", "main.go", []int{0, 5}},
		{"über", "docs/Über.txt", []int{5, 6, 7, 8}},
		{"xyz", "main.go", nil},
		{"", "main.go", nil},
	}
	for _, tt := range tests {
		got := MatchPositions(tt.query, tt.target)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("MatchPositions(%q, %q) = %v, want %v", tt.query, tt.target, got, tt.want)
		}
	}
}

func TestLess(t *testing.T) {
	mk := func(rel string, score float64) SearchResult {
		return SearchResult{Entry: newCachedEntry("/"+rel, rel, false), Score: score}
	}
	results := []SearchResult{
		mk("zz/a.go", 0.5),
		mk("b.go", 0.5),
		mk("a.go", 0.5),
		mk("long/path/c.go", 0.9),
	}
	sort.SliceStable(results, func(i, j int) bool { return Less(results[i], results[j]) })

	want := []string{"long/path/c.go", "a.go", "b.go", "zz/a.go"}
	if got := resultPaths(results); !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}
