package filesearch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ExclusionPattern is one parsed ignore rule.
type ExclusionPattern struct {
	Pattern string
	DirOnly bool
	Negated bool
}

// ExclusionFilter decides whether a project path is hidden from the cache.
//
// Patterns are evaluated in declaration order and the first match wins. Root
// ignore file patterns come before the built-in defaults, so a negation in the
// ignore file can re-include something a default would hide. This differs from
// gitignore, where the last matching pattern wins.
type ExclusionFilter struct {
	patterns []ExclusionPattern
}

// NewExclusionFilter builds a filter for root. When loadIgnoreFile is set the
// root .gitignore is read first; a missing file is not an error.
func NewExclusionFilter(root string, loadIgnoreFile bool) (*ExclusionFilter, error) {
	f := &ExclusionFilter{}

	if loadIgnoreFile {
		file, err := os.Open(filepath.Join(root, IgnoreFileName))
		switch {
		case err == nil:
			defer file.Close()
			patterns, err := parseIgnoreFile(file)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", IgnoreFileName, err)
			}
			f.patterns = append(f.patterns, patterns...)
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("open %s: %w", IgnoreFileName, err)
		}
	}

	for _, line := range defaultPatterns {
		if p, ok := parseExclusionPattern(line); ok {
			f.patterns = append(f.patterns, p)
		}
	}
	return f, nil
}

// NewExclusionFilterFromPatterns builds a filter from raw ignore-file lines.
// Built-in defaults are not added.
func NewExclusionFilterFromPatterns(lines ...string) *ExclusionFilter {
	f := &ExclusionFilter{}
	for _, line := range lines {
		if p, ok := parseExclusionPattern(line); ok {
			f.patterns = append(f.patterns, p)
		}
	}
	return f
}

// Patterns returns the ordered pattern list.
func (f *ExclusionFilter) Patterns() []ExclusionPattern {
	out := make([]ExclusionPattern, len(f.patterns))
	copy(out, f.patterns)
	return out
}

// ShouldIgnore reports whether relPath (slash-separated, relative to the
// project root) should be hidden.
func (f *ExclusionFilter) ShouldIgnore(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(relPath)
	base := path.Base(relPath)
	if vcsDirs[base] {
		return true
	}
	if f == nil {
		return false
	}

	for _, p := range f.patterns {
		if p.matches(relPath, base, isDir) {
			return !p.Negated
		}
	}
	return false
}

func (p ExclusionPattern) matches(relPath, base string, isDir bool) bool {
	if strings.Contains(p.Pattern, "*") {
		if p.DirOnly && !isDir {
			return false
		}
		return matchWildcard(p.Pattern, relPath) || matchWildcard(p.Pattern, base)
	}

	if base == p.Pattern {
		return isDir || !p.DirOnly
	}
	// Plain patterns match anywhere in the path, not only on segment
	// boundaries: "build" hides src/rebuild.go.
	if !strings.Contains(relPath, p.Pattern) {
		return false
	}
	if isDir || !p.DirOnly {
		return true
	}
	// A directory-only pattern must match in a parent directory.
	dir := path.Dir(relPath)
	return dir != "." && strings.Contains(dir, p.Pattern)
}

// matchWildcard matches text against a pattern where '*' stands for any run of
// characters. The first literal must be a prefix, the last a suffix, and any
// literals in between must appear in order.
func matchWildcard(pattern, text string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return text == pattern
	}

	first, last := parts[0], parts[len(parts)-1]
	if !strings.HasPrefix(text, first) {
		return false
	}
	text = text[len(first):]
	for _, mid := range parts[1 : len(parts)-1] {
		if mid == "" {
			continue
		}
		i := strings.Index(text, mid)
		if i < 0 {
			return false
		}
		text = text[i+len(mid):]
	}
	return strings.HasSuffix(text, last)
}

func parseIgnoreFile(r io.Reader) ([]ExclusionPattern, error) {
	var patterns []ExclusionPattern
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if p, ok := parseExclusionPattern(scanner.Text()); ok {
			patterns = append(patterns, p)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}

// parseExclusionPattern parses one ignore-file line. Blank lines, comments and
// lines with nothing left after stripping markers are rejected.
func parseExclusionPattern(line string) (ExclusionPattern, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ExclusionPattern{}, false
	}

	var p ExclusionPattern
	if strings.HasPrefix(line, "!") {
		p.Negated = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.DirOnly = true
		line = strings.TrimRight(line, "/")
	}
	// Anchoring is not supported; "/foo" is treated like "foo".
	line = strings.TrimLeft(line, "/")
	if line == "" {
		return ExclusionPattern{}, false
	}
	p.Pattern = line
	return p, true
}
