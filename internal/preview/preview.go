// Package preview renders the head of a file or a directory listing for the
// suggestion under the cursor in the mention picker.
package preview

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// maxPreviewBytes caps how much of a file is read.
const maxPreviewBytes = 64 * 1024

// Preview is the head of a file or the first children of a directory.
type Preview struct {
	Path      string
	Lines     []string
	IsDir     bool
	Binary    bool
	Truncated bool
}

// Load reads up to maxLines lines of the file or directory at path.
func Load(path string, maxLines int) (Preview, error) {
	p := Preview{Path: path}
	info, err := os.Stat(path)
	if err != nil {
		return p, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		p.IsDir = true
		return loadDir(p, maxLines)
	}

	f, err := os.Open(path)
	if err != nil {
		return p, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	head, err := io.ReadAll(io.LimitReader(f, maxPreviewBytes))
	if err != nil {
		return p, fmt.Errorf("read %s: %w", path, err)
	}
	if bytes.IndexByte(head, 0) >= 0 {
		p.Binary = true
		return p, nil
	}

	sc := bufio.NewScanner(bytes.NewReader(head))
	sc.Buffer(make([]byte, 0, 4096), maxPreviewBytes)
	for sc.Scan() {
		if len(p.Lines) == maxLines {
			p.Truncated = true
			break
		}
		p.Lines = append(p.Lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if !p.Truncated && int64(len(head)) < info.Size() {
		p.Truncated = true
	}
	return p, nil
}

func loadDir(p Preview, maxLines int) (Preview, error) {
	entries, err := os.ReadDir(p.Path)
	if err != nil {
		return p, fmt.Errorf("read dir %s: %w", p.Path, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > maxLines {
		names = names[:maxLines]
		p.Truncated = true
	}
	p.Lines = names
	return p, nil
}

// Render returns the preview lines, syntax highlighted with theme for files.
func (p Preview) Render(theme string) []string {
	switch {
	case p.Binary:
		return []string{"(binary file)"}
	case len(p.Lines) == 0:
		return []string{"(empty)"}
	case p.IsDir || theme == "":
		return p.Lines
	}
	block := highlight(p.Path, strings.Join(p.Lines, "\n"), theme, ThemePalette(theme).Bg)
	return splitStyled(block)
}
