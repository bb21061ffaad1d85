package filesearch

import (
	"strings"
	"unicode/utf8"
)

const (
	weightMatched    = 0.5
	bonusContiguous  = 0.3
	bonusBoundary    = 0.2
	weightGapPenalty = 0.5
)

// SearchResult is one ranked candidate.
type SearchResult struct {
	Entry CachedEntry
	Score float64
}

// Score rates how well query matches a candidate, in [0,1]. The query must be
// a case-insensitive subsequence of the base name or the relative path; the
// better of the two wins. A non-matching candidate scores 0.
func Score(query, name, relPath string) float64 {
	q := strings.ToLower(query)
	return scoreLower(q, strings.ToLower(name), strings.ToLower(relPath))
}

func scoreLower(q, nameLower, relLower string) float64 {
	if q == "" {
		return 1
	}
	s, _ := matchLower(q, nameLower, false)
	if s == 1 {
		return s
	}
	if r, _ := matchLower(q, relLower, false); r > s {
		s = r
	}
	return s
}

// MatchPositions returns the rune indexes of target matched by query, or nil
// when query is not a subsequence of target.
func MatchPositions(query, target string) []int {
	q := strings.ToLower(query)
	if q == "" {
		return nil
	}
	_, pos := matchLower(q, strings.ToLower(target), true)
	return pos
}

// entryPositions returns the rune indexes of entry.RelPath matched by the
// lowercase query, taken from whichever of the name and the relative path
// decided the score.
func entryPositions(q string, entry CachedEntry) []int {
	if q == "" {
		return nil
	}
	nameScore, namePos := matchLower(q, entry.NameLower, true)
	if nameScore < 1 {
		if relScore, relPos := matchLower(q, entry.RelPathLower, true); relScore > nameScore {
			return relPos
		}
	}
	if namePos == nil {
		return nil
	}
	offset := utf8.RuneCountInString(entry.RelPath[:len(entry.RelPath)-len(entry.Name)])
	for i := range namePos {
		namePos[i] += offset
	}
	return namePos
}

// Less orders results by descending score, then shorter relative path, then
// relative path.
func Less(a, b SearchResult) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if len(a.Entry.RelPath) != len(b.Entry.RelPath) {
		return len(a.Entry.RelPath) < len(b.Entry.RelPath)
	}
	return a.Entry.RelPath < b.Entry.RelPath
}

// matchLower scores a lowercase query against a lowercase target.
//
// A contiguous occurrence is preferred, and among those one that starts a path
// segment. Otherwise the leftmost subsequence is used and the gaps between its
// first and last matched rune are penalized.
func matchLower(q, t string, wantPositions bool) (float64, []int) {
	if t == "" {
		return 0, nil
	}
	if q == t && !wantPositions {
		return 1, nil
	}
	tLen := float64(utf8.RuneCountInString(t))
	qLen := utf8.RuneCountInString(q)

	if start, boundary, ok := findContiguous(q, t); ok {
		score := weightMatched*float64(qLen)/tLen + bonusContiguous
		if boundary {
			score += bonusBoundary
		}
		var pos []int
		if wantPositions {
			first := utf8.RuneCountInString(t[:start])
			pos = make([]int, qLen)
			for i := range pos {
				pos[i] = first + i
			}
		}
		return clamp(score), pos
	}

	var pos []int
	first, last, matched := -1, -1, 0
	boundary := false
	qr, qw := utf8.DecodeRuneInString(q)
	prev := rune(-1)
	ri := 0
	for _, r := range t {
		if r == qr {
			if first < 0 {
				first = ri
				boundary = ri == 0 || prev == '/'
			}
			last = ri
			matched++
			if wantPositions {
				pos = append(pos, ri)
			}
			q = q[qw:]
			if q == "" {
				break
			}
			qr, qw = utf8.DecodeRuneInString(q)
		}
		prev = r
		ri++
	}
	if q != "" {
		return 0, nil
	}

	gaps := (last - first + 1) - matched
	score := weightMatched*float64(matched)/tLen - weightGapPenalty*float64(gaps)/tLen
	if boundary {
		score += bonusBoundary
	}
	return clamp(score), pos
}

// findContiguous returns the byte offset of q in t, preferring an occurrence
// at the start of t or right after a '/'.
func findContiguous(q, t string) (start int, boundary, ok bool) {
	start = -1
	for off := 0; off <= len(t); {
		i := strings.Index(t[off:], q)
		if i < 0 {
			break
		}
		at := off + i
		if at == 0 || t[at-1] == '/' {
			return at, true, true
		}
		if start < 0 {
			start = at
		}
		_, w := utf8.DecodeRuneInString(t[at:])
		off = at + w
	}
	return start, false, start >= 0
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
