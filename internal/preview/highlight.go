package preview

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// lexerFor picks a lexer by file name, then by content, and returns nil for
// plain text.
func lexerFor(path, content string) chroma.Lexer {
	lex := lexers.Match(filepath.Base(path))
	if lex == nil {
		lex = lexers.Analyse(content)
	}
	if lex == nil {
		return nil
	}
	return chroma.Coalesce(lex)
}

// Language returns the Chroma language name for path, or "text".
func Language(path string) string {
	lex := lexers.Match(filepath.Base(path))
	if lex == nil {
		return "text"
	}
	return strings.ToLower(lex.Config().Name)
}

// highlight returns text with ANSI colors from theme. bgHex ("#rrggbb") is
// re-applied after every reset so the block keeps a solid background.
func highlight(path, text, theme, bgHex string) string {
	lex := lexerFor(path, text)
	if lex == nil {
		return text
	}
	fmtr := formatters.Get("terminal16m")
	if fmtr == nil {
		fmtr = formatters.Fallback
	}
	it, err := lex.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var buf strings.Builder
	if err := fmtr.Format(&buf, styles.Get(theme), it); err != nil {
		return text
	}
	raw := strings.TrimRight(buf.String(), "\n")

	bgSeq := bgEscape(bgHex)
	return bgSeq + strings.ReplaceAll(raw, "\x1b[0m", "\x1b[0m"+bgSeq)
}

// bgEscape converts "#rrggbb" to a 24-bit background SGR sequence.
func bgEscape(hex string) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return ""
	}
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", r, g, b)
}

// splitStyled splits a highlighted block into lines that each carry the SGR
// state left open by the lines before them.
func splitStyled(block string) []string {
	lines := strings.Split(block, "\n")
	var open []string
	for i, line := range lines {
		if i > 0 && len(open) > 0 {
			lines[i] = strings.Join(open, "") + line
		}
		open = trackSGR(line, open)
	}
	return lines
}

func trackSGR(line string, open []string) []string {
	for j := 0; j+1 < len(line); j++ {
		if line[j] != '\x1b' || line[j+1] != '[' {
			continue
		}
		k := j + 2
		for k < len(line) && line[k] != 'm' && line[k] != '\x1b' {
			k++
		}
		if k >= len(line) || line[k] != 'm' {
			continue
		}
		if params := line[j+2 : k]; params == "" || params == "0" {
			open = open[:0]
		} else {
			open = append(open, line[j:k+1])
		}
		j = k
	}
	return open
}
