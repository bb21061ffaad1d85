package filesearch

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MentionMarker starts a file reference in free text.
const MentionMarker = '@'

// ExtractReferences returns the unique paths referenced as "@path" in text, in
// order of first appearance. A marker counts only at the start of text or
// after whitespace, and the token runs to the next whitespace. A bare "@"
// yields nothing.
//
// cursor is a byte offset into text. The token the cursor sits in (the one
// still being typed) is skipped. A negative cursor skips nothing; larger
// values are clamped to len(text).
func ExtractReferences(text string, cursor int) []string {
	if cursor > len(text) {
		cursor = len(text)
	}

	var refs []string
	for i := 0; i < len(text); {
		at := strings.IndexByte(text[i:], MentionMarker)
		if at < 0 {
			break
		}
		at += i
		start := at + 1
		end := tokenEnd(text, start)
		i = end
		if end == start {
			i = start
			continue
		}
		if at > 0 {
			if r, _ := utf8.DecodeLastRuneInString(text[:at]); !unicode.IsSpace(r) {
				continue
			}
		}
		if cursor > at && cursor <= end {
			continue
		}
		ref := text[start:end]
		if !containsString(refs, ref) {
			refs = append(refs, ref)
		}
	}
	return refs
}

// ShouldShowSearch reports whether the cursor sits in a mention token.
func ShouldShowSearch(text string, cursor int) bool {
	_, ok := ExtractSearchQuery(text, cursor)
	return ok
}

// ExtractSearchQuery returns the text between the marker and the cursor when
// the cursor sits in a mention token. A bare "@" returns an empty query.
func ExtractSearchQuery(text string, cursor int) (string, bool) {
	at, ok := mentionStart(text, cursor)
	if !ok {
		return "", false
	}
	return text[at+1 : clampCursor(text, cursor)], true
}

// CompleteReference replaces the mention token under the cursor with
// "@path " and returns the new text and cursor. The text is returned unchanged
// when the cursor is not in a mention token.
func CompleteReference(text string, cursor int, path string) (string, int) {
	cursor = clampCursor(text, cursor)
	at, ok := mentionStart(text, cursor)
	if !ok {
		return text, cursor
	}
	end := tokenEnd(text, cursor)
	rest := text[end:]
	insert := string(MentionMarker) + path
	if r, _ := utf8.DecodeRuneInString(rest); rest == "" || !unicode.IsSpace(r) {
		insert += " "
	} else {
		// Reuse the existing separator.
		_, w := utf8.DecodeRuneInString(rest)
		insert += rest[:w]
		rest = rest[w:]
	}
	return text[:at] + insert + rest, at + len(insert)
}

// mentionStart returns the byte offset of the marker that begins the
// whitespace-delimited token ending at the cursor.
func mentionStart(text string, cursor int) (int, bool) {
	if text == "" || cursor < 0 {
		return 0, false
	}
	cursor = clampCursor(text, cursor)
	start := strings.LastIndexFunc(text[:cursor], unicode.IsSpace)
	if start < 0 {
		start = 0
	} else {
		_, w := utf8.DecodeRuneInString(text[start:])
		start += w
	}
	if start >= len(text) || text[start] != MentionMarker {
		return 0, false
	}
	if cursor == start {
		// Cursor is before the marker.
		return 0, false
	}
	return start, true
}

func tokenEnd(text string, from int) int {
	if i := strings.IndexFunc(text[from:], unicode.IsSpace); i >= 0 {
		return from + i
	}
	return len(text)
}

func clampCursor(text string, cursor int) int {
	switch {
	case cursor < 0:
		return 0
	case cursor > len(text):
		return len(text)
	}
	return cursor
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
