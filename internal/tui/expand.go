package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/atfind/internal/filesearch"
	"github.com/xonecas/atfind/internal/preview"
)

// Expand appends the contents of every file referenced in text, resolved
// against root. Each file becomes a block headed by its @ token with numbered
// lines; directories list their children. References that cannot be read are
// left as plain tokens.
func Expand(root, text string, maxLines int) string {
	refs := filesearch.ExtractReferences(text, -1)
	if len(refs) == 0 {
		return text
	}

	var sb strings.Builder
	sb.WriteString(text)
	for _, ref := range refs {
		path := ref
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, filepath.FromSlash(ref))
		}
		p, err := preview.Load(path, maxLines)
		if err != nil {
			log.Debug().Err(err).Str("ref", ref).Msg("reference not expanded")
			continue
		}
		fmt.Fprintf(&sb, "\n\n%c%s\n", filesearch.MentionMarker, ref)
		writeAttachment(&sb, p)
	}
	return sb.String()
}

func writeAttachment(sb *strings.Builder, p preview.Preview) {
	switch {
	case p.Binary:
		sb.WriteString("(binary file)")
		return
	case p.IsDir:
		sb.WriteString(strings.Join(p.Lines, "\n"))
	default:
		width := len(fmt.Sprint(len(p.Lines)))
		for i, line := range p.Lines {
			if i > 0 {
				sb.WriteByte('\n')
			}
			fmt.Fprintf(sb, "%*d| %s", width, i+1, line)
		}
	}
	if p.Truncated {
		sb.WriteString("\n…")
	}
}
