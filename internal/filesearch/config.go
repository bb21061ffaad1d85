package filesearch

import (
	"errors"
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Config controls walking, filtering and ranking.
type Config struct {
	MaxDepth             int      `toml:"max_depth"`
	MaxResults           int      `toml:"max_results"`
	IncludeExtensions    []string `toml:"include_extensions"`
	ExcludeExtensions    []string `toml:"exclude_extensions"`
	RespectExclusionFile bool     `toml:"respect_exclusion_file"`
	IncludeHidden        bool     `toml:"include_hidden"`
	MinScoreThreshold    float64  `toml:"min_score_threshold"`
	EnableCaching        bool     `toml:"enable_caching"`
	CacheRefreshInterval int      `toml:"cache_refresh_interval"` // seconds
	ExcludeGlobs         []string `toml:"exclude_globs"`
}

// DefaultConfig returns the built-in search configuration.
func DefaultConfig() Config {
	return Config{
		MaxDepth:             10,
		MaxResults:           50,
		ExcludeExtensions:    append([]string(nil), defaultExcludeExtensions...),
		RespectExclusionFile: true,
		MinScoreThreshold:    0.1,
		EnableCaching:        true,
		CacheRefreshInterval: 5,
	}
}

// TTL returns how long a snapshot stays valid. With caching disabled every
// query rebuilds.
func (c Config) TTL() time.Duration {
	if !c.EnableCaching {
		return 0
	}
	return time.Duration(c.CacheRefreshInterval) * time.Second
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if c.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("max_depth must be at least 1, got %d", c.MaxDepth))
	}
	if c.MaxResults < 1 {
		errs = append(errs, fmt.Errorf("max_results must be at least 1, got %d", c.MaxResults))
	}
	if c.MinScoreThreshold < 0 || c.MinScoreThreshold > 1 {
		errs = append(errs, fmt.Errorf("min_score_threshold must be in [0,1], got %v", c.MinScoreThreshold))
	}
	if c.CacheRefreshInterval < 0 {
		errs = append(errs, fmt.Errorf("cache_refresh_interval must not be negative, got %d", c.CacheRefreshInterval))
	}
	for _, g := range c.ExcludeGlobs {
		if !doublestar.ValidatePattern(g) {
			errs = append(errs, fmt.Errorf("exclude_globs: invalid pattern %q", g))
		}
	}
	return errors.Join(errs...)
}
