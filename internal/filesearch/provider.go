package filesearch

import "strings"

// Suggestion is a search result shaped for display in a picker.
type Suggestion struct {
	Display   string // relative path, with a trailing "/" for directories
	Insert    string // text to place after the marker
	Abs       string
	Score     float64
	IsDir     bool
	Positions []int // rune indexes in Display matched by the query, from the target that ranked it
}

// Provider supplies mention suggestions.
type Provider interface {
	Suggest(query string, excluded []string) []Suggestion
}

var _ Provider = (*System)(nil)

// Suggest returns ranked suggestions for query, leaving out excluded paths.
func (s *System) Suggest(query string, excluded []string) []Suggestion {
	results := s.engine.SearchWithExclusions(query, excluded)
	q := strings.ToLower(s.engine.normalizeQuery(query))
	out := make([]Suggestion, 0, len(results))
	for _, r := range results {
		display := r.Entry.RelPath
		if r.Entry.IsDir {
			display += "/"
		}
		out = append(out, Suggestion{
			Display:   display,
			Insert:    r.Entry.RelPath,
			Abs:       r.Entry.AbsPath,
			Score:     r.Score,
			IsDir:     r.Entry.IsDir,
			Positions: entryPositions(q, r.Entry),
		})
	}
	return out
}

// Mention is the @ token under the cursor together with the files the input
// already references elsewhere.
type Mention struct {
	Query    string
	Excluded []string
}

// MentionAt looks at the input buffer around the cursor. ok is false when the
// cursor is not inside a mention.
func MentionAt(text string, cursor int) (m Mention, ok bool) {
	query, ok := ExtractSearchQuery(text, cursor)
	if !ok {
		return Mention{}, false
	}
	return Mention{Query: query, Excluded: ExtractReferences(text, cursor)}, true
}
