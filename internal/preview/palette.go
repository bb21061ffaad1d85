package preview

import (
	"fmt"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// Palette holds UI colors derived from a Chroma theme, so the picker and the
// preview pane match.
type Palette struct {
	Bg     string // theme background
	Fg     string // theme foreground
	Border string // 12% bg→fg
	Dim    string // 30% bg→fg, secondary text
	Muted  string // 50% bg→fg, descriptions
	Accent string // most saturated token color, used for match highlights
}

// accentCandidates are the token types searched for an accent color.
var accentCandidates = []chroma.TokenType{
	chroma.Keyword,
	chroma.NameFunction,
	chroma.NameClass,
	chroma.NameBuiltin,
	chroma.LiteralString,
	chroma.LiteralNumber,
	chroma.NameTag,
	chroma.GenericHeading,
}

// ThemePalette derives a palette from a Chroma theme name. Unknown themes
// fall back to Chroma's default style.
func ThemePalette(theme string) Palette {
	sty := styles.Get(theme)
	entry := sty.Get(chroma.Background)
	bg, fg := "#000000", "#c8c8c8"
	if entry.Background.IsSet() {
		bg = entry.Background.String()
	}
	if entry.Colour.IsSet() {
		fg = entry.Colour.String()
	}
	return Palette{
		Bg:     bg,
		Fg:     fg,
		Border: mix(bg, fg, 0.12),
		Dim:    mix(bg, fg, 0.30),
		Muted:  mix(bg, fg, 0.50),
		Accent: accent(sty, fg),
	}
}

func accent(sty *chroma.Style, fallback string) string {
	best, bestSat := fallback, 0.0
	for _, tt := range accentCandidates {
		c := sty.Get(tt).Colour
		if !c.IsSet() {
			continue
		}
		r, g, b := float64(c.Red()), float64(c.Green()), float64(c.Blue())
		hi, lo := max(r, g, b), min(r, g, b)
		if hi == 0 {
			continue
		}
		if sat := (hi - lo) / hi; sat > bestSat {
			best, bestSat = c.String(), sat
		}
	}
	return best
}

// mix interpolates between two "#rrggbb" colors.
func mix(a, b string, t float64) string {
	ar, ag, ab, _ := parseHex(a)
	br, bg, bb, _ := parseHex(b)
	lerp := func(x, y int) int {
		v := float64(x) + (float64(y)-float64(x))*t
		return int(min(max(v, 0), 255) + 0.5)
	}
	return fmt.Sprintf("#%02x%02x%02x", lerp(ar, br), lerp(ag, bg), lerp(ab, bb))
}

func parseHex(hex string) (r, g, b int, ok bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, false
	}
	if _, err := fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, 0, 0, false
	}
	return r, g, b, true
}
