package filesearch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// ErrNotDirectory is returned when the project root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

const rebuildKey = "rebuild"

// Engine ranks project files against queries. Its cache is built lazily on the
// first query and rebuilt whenever the TTL has passed.
type Engine struct {
	root   string
	cfg    Config
	filter *ExclusionFilter
	cache  *FileCache

	includeExt map[string]bool
	excludeExt map[string]bool

	rebuilds singleflight.Group
}

// NewEngine validates root and cfg and prepares an engine. No walking happens
// until the first query or Refresh.
func NewEngine(root string, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search config: %w", err)
	}
	abs, err := checkRoot(root)
	if err != nil {
		return nil, err
	}
	filter, err := NewExclusionFilter(abs, cfg.RespectExclusionFile)
	if err != nil {
		return nil, fmt.Errorf("load exclusions: %w", err)
	}
	return &Engine{
		root:       abs,
		cfg:        cfg,
		filter:     filter,
		cache:      NewFileCache(abs, cfg.TTL(), cfg.MaxDepth),
		includeExt: extensionSet(cfg.IncludeExtensions),
		excludeExt: extensionSet(cfg.ExcludeExtensions),
	}, nil
}

// checkRoot returns the absolute root after making sure it is a readable
// directory.
func checkRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("root %s: %w", abs, ErrNotDirectory)
	}
	f, err := os.Open(abs)
	if err != nil {
		return "", fmt.Errorf("open root: %w", err)
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read root %s: %w", abs, err)
	}
	return abs, nil
}

// Root returns the absolute project root.
func (e *Engine) Root() string { return e.root }

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// Search ranks every included entry against query.
func (e *Engine) Search(query string) []SearchResult {
	return e.SearchWithExclusions(query, nil)
}

// SearchWithExclusions ranks entries against query, leaving out the excluded
// paths before truncation. Excluded paths may be relative to the root or
// absolute paths inside it.
func (e *Engine) SearchWithExclusions(query string, excluded []string) []SearchResult {
	q := e.normalizeQuery(query)
	if q == "" {
		return e.GetAllFilesWithExclusions(excluded)
	}
	snap := e.fresh()
	skip := e.exclusionSet(excluded)
	qLower := strings.ToLower(q)

	var results []SearchResult
	for _, entry := range snap.ordered {
		if skip[entry.RelPath] || !e.includeEntry(entry) {
			continue
		}
		score := scoreLower(qLower, entry.NameLower, entry.RelPathLower)
		if score == 0 || score < e.cfg.MinScoreThreshold {
			continue
		}
		results = append(results, SearchResult{Entry: entry, Score: score})
	}

	sort.Slice(results, func(i, j int) bool { return Less(results[i], results[j]) })
	if len(results) > e.cfg.MaxResults {
		results = results[:e.cfg.MaxResults]
	}
	return results
}

// GetAllFiles returns every included entry, directories first.
func (e *Engine) GetAllFiles() []SearchResult {
	return e.GetAllFilesWithExclusions(nil)
}

// GetAllFilesWithExclusions returns every included entry not in excluded,
// directories first, then by name and relative path. Results are not
// truncated.
func (e *Engine) GetAllFilesWithExclusions(excluded []string) []SearchResult {
	snap := e.fresh()
	skip := e.exclusionSet(excluded)

	results := make([]SearchResult, 0, snap.Len())
	for _, entry := range snap.ordered {
		if skip[entry.RelPath] || !e.includeEntry(entry) {
			continue
		}
		results = append(results, SearchResult{Entry: entry, Score: 1})
	}
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i].Entry, results[j].Entry
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.RelPath < b.RelPath
	})
	return results
}

// Refresh rebuilds the cache regardless of its age. It does not join a rebuild
// already in progress; it waits for it and walks again.
func (e *Engine) Refresh() error {
	return e.cache.Rebuild(IncludeFunc(e.includePath))
}

// Stats describes the current snapshot.
func (e *Engine) Stats() CacheStats { return e.cache.Stats() }

// build walks the tree without publishing. It waits for any walk in progress.
func (e *Engine) build() (*Snapshot, error) {
	return e.cache.Build(IncludeFunc(e.includePath))
}

func (e *Engine) publish(snap *Snapshot) bool { return e.cache.Publish(snap) }

// fresh returns a valid snapshot, rebuilding first when the current one is
// stale. Concurrent callers share one rebuild, and a background walk in
// progress is waited for rather than repeated. If the rebuild fails the stale
// snapshot is served.
func (e *Engine) fresh() *Snapshot {
	if !e.cache.IsValid() {
		_, err, _ := e.rebuilds.Do(rebuildKey, func() (any, error) {
			_, err := e.cache.RebuildIfStale(IncludeFunc(e.includePath))
			return nil, err
		})
		if err != nil {
			log.Warn().Err(err).Str("root", e.root).Msg("filesearch: rebuild failed, serving stale snapshot")
		}
	}
	return e.cache.Snapshot()
}

// includePath prunes the walk: exclusion patterns, hidden names and exclude
// globs.
func (e *Engine) includePath(relPath string, isDir bool) bool {
	base := path.Base(relPath)
	if !e.cfg.IncludeHidden && strings.HasPrefix(base, ".") {
		return false
	}
	if e.filter.ShouldIgnore(relPath, isDir) {
		return false
	}
	for _, g := range e.cfg.ExcludeGlobs {
		if ok, _ := doublestar.Match(g, relPath); ok {
			return false
		}
		if ok, _ := doublestar.Match(g, base); ok {
			return false
		}
	}
	return true
}

// includeEntry applies the extension filters at query time.
func (e *Engine) includeEntry(entry CachedEntry) bool {
	if len(e.includeExt) > 0 {
		if entry.IsDir {
			return false
		}
		if !e.includeExt[extension(entry.NameLower)] {
			return false
		}
	}
	if !entry.IsDir && len(e.excludeExt) > 0 && e.excludeExt[extension(entry.NameLower)] {
		return false
	}
	return true
}

func (e *Engine) exclusionSet(excluded []string) map[string]bool {
	if len(excluded) == 0 {
		return nil
	}
	set := make(map[string]bool, len(excluded))
	for _, p := range excluded {
		if n := e.normalizePath(p); n != "" {
			set[n] = true
		}
	}
	return set
}

// normalizeQuery trims query and makes an absolute path inside the root
// relative.
func (e *Engine) normalizeQuery(query string) string {
	return e.normalizePath(strings.TrimSpace(query))
}

// normalizePath turns a user-supplied path into a root-relative slash path.
// Absolute paths outside the root are returned unchanged.
func (e *Engine) normalizePath(p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(e.root, p)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			p = rel
			if p == "." {
				return ""
			}
		}
	}
	p = filepath.ToSlash(p)
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return strings.TrimSuffix(p, "/")
}

// extension returns the lowercase extension without the dot.
func extension(nameLower string) string {
	return strings.TrimPrefix(path.Ext(nameLower), ".")
}

func extensionSet(exts []string) map[string]bool {
	if len(exts) == 0 {
		return nil
	}
	set := make(map[string]bool, len(exts))
	for _, x := range exts {
		x = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(x), "."))
		if x != "" {
			set[x] = true
		}
	}
	return set
}
