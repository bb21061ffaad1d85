package filesearch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
)

// CachedEntry is one file or directory in a cache snapshot.
type CachedEntry struct {
	AbsPath string
	RelPath string // slash-separated, relative to the project root; unique per snapshot
	Name    string
	IsDir   bool

	// Size and ModTime are only recorded for non-directories.
	Size    int64
	HasSize bool
	ModTime time.Time

	NameLower    string
	RelPathLower string
}

func newCachedEntry(absPath, relPath string, isDir bool) CachedEntry {
	name := relPath
	if i := strings.LastIndexByte(relPath, '/'); i >= 0 {
		name = relPath[i+1:]
	}
	return CachedEntry{
		AbsPath:      absPath,
		RelPath:      relPath,
		Name:         name,
		IsDir:        isDir,
		NameLower:    strings.ToLower(name),
		RelPathLower: strings.ToLower(relPath),
	}
}

// WalkError records a directory or entry that could not be read during a rebuild.
type WalkError struct {
	RelPath string
	Err     error
}

// Snapshot is the immutable result of one cache rebuild.
type Snapshot struct {
	entries     map[string]CachedEntry
	ordered     []CachedEntry // sorted by RelPath
	BuiltAt     time.Time
	Errors      []WalkError
	Fingerprint uint64

	seq uint64 // order in which builds started
}

// Len returns the number of entries.
func (s *Snapshot) Len() int { return len(s.ordered) }

// Lookup returns the entry for a relative path.
func (s *Snapshot) Lookup(relPath string) (CachedEntry, bool) {
	e, ok := s.entries[relPath]
	return e, ok
}

// Entries returns the entries sorted by relative path. The slice is shared;
// callers must not modify it.
func (s *Snapshot) Entries() []CachedEntry { return s.ordered }

// Includer decides whether a path is recorded during a rebuild. Directories
// that are not included are never descended into.
type Includer interface {
	Include(relPath string, isDir bool) bool
}

// IncludeFunc adapts a function to the Includer interface.
type IncludeFunc func(relPath string, isDir bool) bool

// Include calls f(relPath, isDir).
func (f IncludeFunc) Include(relPath string, isDir bool) bool { return f(relPath, isDir) }

// CacheStats summarizes the current snapshot.
type CacheStats struct {
	Files       int
	Directories int
	Age         time.Duration
	Valid       bool
	Errors      int
	Fingerprint uint64
}

// FileCache holds the current snapshot of a project tree. Readers always see a
// complete snapshot; rebuilds publish a new one with an atomic swap. At most one
// walk runs at a time, and a snapshot never replaces one whose walk started
// later.
type FileCache struct {
	root     string
	ttl      time.Duration
	maxDepth int
	current  atomic.Pointer[Snapshot]

	walking sync.Mutex
	seq     atomic.Uint64
}

// NewFileCache creates a cache whose first validity check fails.
func NewFileCache(root string, ttl time.Duration, maxDepth int) *FileCache {
	c := &FileCache{root: root, ttl: ttl, maxDepth: maxDepth}
	c.current.Store(&Snapshot{
		entries: map[string]CachedEntry{},
		BuiltAt: time.Now().Add(-ttl),
	})
	return c
}

// IsValid reports whether the current snapshot is younger than the TTL.
func (c *FileCache) IsValid() bool {
	return time.Since(c.current.Load().BuiltAt) < c.ttl
}

// Snapshot returns the current snapshot.
func (c *FileCache) Snapshot() *Snapshot { return c.current.Load() }

// Entries returns all entries of the current snapshot.
func (c *FileCache) Entries() []CachedEntry { return c.current.Load().Entries() }

// EntriesFiltered returns the entries of the current snapshot matching pred.
func (c *FileCache) EntriesFiltered(pred func(CachedEntry) bool) []CachedEntry {
	var out []CachedEntry
	for _, e := range c.current.Load().ordered {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}

// Rebuild walks the tree and publishes the result. A walk already in progress
// is waited for, then a new one starts.
func (c *FileCache) Rebuild(inc Includer) error {
	c.walking.Lock()
	defer c.walking.Unlock()
	snap, err := c.build(inc)
	if err != nil {
		return err
	}
	c.Publish(snap)
	return nil
}

// RebuildIfStale rebuilds only when the snapshot is still stale once any walk
// in progress has finished. It reports whether it walked.
func (c *FileCache) RebuildIfStale(inc Includer) (bool, error) {
	c.walking.Lock()
	defer c.walking.Unlock()
	if c.IsValid() {
		return false, nil
	}
	snap, err := c.build(inc)
	if err != nil {
		return true, err
	}
	c.Publish(snap)
	return true, nil
}

// Publish replaces the current snapshot unless the current one comes from a
// walk that started later. It reports whether snap was published.
func (c *FileCache) Publish(snap *Snapshot) bool {
	for {
		cur := c.current.Load()
		if cur.seq > snap.seq {
			return false
		}
		if c.current.CompareAndSwap(cur, snap) {
			return true
		}
	}
}

type walkFrame struct {
	dir    string
	prefix string
	depth  int
}

// Build walks the project tree without publishing. Only a failure to read the
// root directory is returned as an error; unreadable subtrees are recorded in
// Snapshot.Errors and skipped.
func (c *FileCache) Build(inc Includer) (*Snapshot, error) {
	c.walking.Lock()
	defer c.walking.Unlock()
	return c.build(inc)
}

func (c *FileCache) build(inc Includer) (*Snapshot, error) {
	start := time.Now()
	seq := c.seq.Add(1)
	rootEntries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{entries: make(map[string]CachedEntry), seq: seq}
	stack := []walkFrame{}
	c.scanDir(snap, inc, c.root, "", 1, rootEntries, &stack)

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		dirEntries, err := os.ReadDir(frame.dir)
		if err != nil {
			snap.Errors = append(snap.Errors, WalkError{RelPath: frame.prefix, Err: err})
			log.Debug().Err(err).Str("dir", frame.prefix).Msg("filesearch: skipping unreadable directory")
			continue
		}
		c.scanDir(snap, inc, frame.dir, frame.prefix, frame.depth, dirEntries, &stack)
	}

	snap.ordered = make([]CachedEntry, 0, len(snap.entries))
	for _, e := range snap.entries {
		snap.ordered = append(snap.ordered, e)
	}
	sort.Slice(snap.ordered, func(i, j int) bool {
		return snap.ordered[i].RelPath < snap.ordered[j].RelPath
	})
	snap.Fingerprint = fingerprint(snap.ordered)
	snap.BuiltAt = time.Now()

	log.Debug().
		Int("entries", len(snap.ordered)).
		Int("errors", len(snap.Errors)).
		Uint64("seq", seq).
		Dur("took", snap.BuiltAt.Sub(start)).
		Msg("filesearch: cache rebuilt")
	return snap, nil
}

// scanDir records the children of one directory at the given depth and pushes
// included subdirectories onto the stack.
func (c *FileCache) scanDir(snap *Snapshot, inc Includer, dir, prefix string, depth int, dirEntries []os.DirEntry, stack *[]walkFrame) {
	if depth > c.maxDepth {
		return
	}
	for _, d := range dirEntries {
		name := d.Name()
		relPath := name
		if prefix != "" {
			relPath = prefix + "/" + name
		}
		absPath := filepath.Join(dir, name)

		// Symlinks are recorded as plain entries and never followed.
		isDir := d.IsDir()
		if inc != nil && !inc.Include(relPath, isDir) {
			continue
		}

		entry := newCachedEntry(absPath, relPath, isDir)
		if !isDir {
			info, err := d.Info()
			if err != nil {
				// Removed between listing and stat.
				snap.Errors = append(snap.Errors, WalkError{RelPath: relPath, Err: err})
				continue
			}
			entry.Size = info.Size()
			entry.HasSize = true
			entry.ModTime = info.ModTime()
		}
		snap.entries[relPath] = entry

		if isDir && depth < c.maxDepth {
			*stack = append(*stack, walkFrame{dir: absPath, prefix: relPath, depth: depth + 1})
		}
	}
}

// Stats summarizes the current snapshot.
func (c *FileCache) Stats() CacheStats {
	snap := c.current.Load()
	stats := CacheStats{
		Age:         time.Since(snap.BuiltAt),
		Valid:       c.IsValid(),
		Errors:      len(snap.Errors),
		Fingerprint: snap.Fingerprint,
	}
	for _, e := range snap.ordered {
		if e.IsDir {
			stats.Directories++
		} else {
			stats.Files++
		}
	}
	return stats
}

// fingerprint hashes the sorted relative paths and directory flags, so two
// snapshots of an unchanged tree hash equal.
func fingerprint(ordered []CachedEntry) uint64 {
	d := xxhash.New()
	for _, e := range ordered {
		_, _ = d.WriteString(e.RelPath)
		if e.IsDir {
			_, _ = d.WriteString("/")
		}
		_, _ = d.WriteString("\x00")
	}
	return d.Sum64()
}
