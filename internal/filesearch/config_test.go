package filesearch

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxDepth != 10 || cfg.MaxResults != 50 || cfg.MinScoreThreshold != 0.1 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.RespectExclusionFile || cfg.IncludeHidden || !cfg.EnableCaching {
		t.Errorf("unexpected default flags: %+v", cfg)
	}
	if got := cfg.TTL(); got != 5*time.Second {
		t.Errorf("TTL = %v, want 5s", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	cfg.ExcludeExtensions[0] = "changed"
	if DefaultConfig().ExcludeExtensions[0] == "changed" {
		t.Error("DefaultConfig must not share its extension slice")
	}
}

func TestConfigTTLCachingDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableCaching = false
	if cfg.TTL() != 0 {
		t.Errorf("TTL = %v, want 0", cfg.TTL())
	}
}

func TestConfigValidateAggregates(t *testing.T) {
	cfg := Config{
		MaxDepth:             0,
		MaxResults:           -1,
		MinScoreThreshold:    1.5,
		CacheRefreshInterval: -2,
		ExcludeGlobs:         []string{"[unterminated", "**/*.go"},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"max_depth", "max_results", "min_score_threshold", "cache_refresh_interval", "[unterminated"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
	if strings.Contains(err.Error(), "**/*.go") {
		t.Errorf("valid glob reported as invalid: %v", err)
	}
}
