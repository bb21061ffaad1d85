// Package filesearch finds project files for "@" mentions in a chat composer.
//
// A System walks the project once per TTL into an immutable snapshot, prunes
// ignored paths during the walk, and ranks the snapshot against each query
// with a subsequence scorer. References already present in the input are left
// out of the suggestions.
package filesearch

import "github.com/rs/zerolog/log"

// System is the entry point for callers: the query surface of an Engine plus a
// background refresher.
type System struct {
	engine    *Engine
	refresher *Refresher
}

// New creates a System rooted at root.
func New(root string, cfg Config) (*System, error) {
	engine, err := NewEngine(root, cfg)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("root", engine.Root()).
		Int("max_depth", cfg.MaxDepth).
		Dur("ttl", cfg.TTL()).
		Int("patterns", len(engine.filter.patterns)).
		Msg("filesearch: system ready")
	return &System{
		engine:    engine,
		refresher: NewRefresher(engine.build, engine.publish),
	}, nil
}

// Root returns the absolute project root.
func (s *System) Root() string { return s.engine.Root() }

// Search ranks project entries against query.
func (s *System) Search(query string) []SearchResult {
	return s.engine.Search(query)
}

// SearchWithExclusions ranks project entries, leaving out excluded paths.
func (s *System) SearchWithExclusions(query string, excluded []string) []SearchResult {
	return s.engine.SearchWithExclusions(query, excluded)
}

// GetAllFiles lists every included entry.
func (s *System) GetAllFiles() []SearchResult {
	return s.engine.GetAllFiles()
}

// GetAllFilesWithExclusions lists every included entry not in excluded.
func (s *System) GetAllFilesWithExclusions(excluded []string) []SearchResult {
	return s.engine.GetAllFilesWithExclusions(excluded)
}

// Refresh rebuilds the cache synchronously.
func (s *System) Refresh() error { return s.engine.Refresh() }

// RefreshAsync schedules a background rebuild and returns immediately.
func (s *System) RefreshAsync() { s.refresher.Request() }

// Subscribe returns a channel of background refresh results.
func (s *System) Subscribe() <-chan SnapshotEvent { return s.refresher.Subscribe() }

// Stats describes the current snapshot.
func (s *System) Stats() CacheStats { return s.engine.Stats() }

// Close stops the background refresher.
func (s *System) Close() error {
	s.refresher.Close()
	return nil
}
