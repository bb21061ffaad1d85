package tui

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	tea "charm.land/bubbletea/v2"

	"github.com/xonecas/atfind/internal/filesearch"
)

// byteCursor converts the rune cursor into a byte offset into Text().
func (m *Model) byteCursor() int {
	n := 0
	for _, r := range m.input[:m.cursor] {
		n += utf8.RuneLen(r)
	}
	return n
}

// setText replaces the buffer; cursor is a byte offset into text.
func (m *Model) setText(text string, cursor int) {
	cursor = min(max(cursor, 0), len(text))
	m.input = []rune(text)
	m.cursor = utf8.RuneCountInString(text[:cursor])
}

func (m *Model) insertText(s string) tea.Cmd {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	rs := []rune(s)
	if len(rs) == 0 {
		return nil
	}
	m.input = slices.Insert(m.input, m.cursor, rs...)
	m.cursor += len(rs)
	return m.edited()
}

// edited runs after every change to the buffer.
func (m *Model) edited() tea.Cmd {
	m.dismissed = false
	return m.syncPicker()
}

// syncPicker opens the picker while the cursor sits in a mention and feeds it
// the query and the files already referenced elsewhere in the buffer.
func (m *Model) syncPicker() tea.Cmd {
	mention, ok := filesearch.MentionAt(m.Text(), m.byteCursor())
	if !ok || m.dismissed {
		m.pickerOpen = false
		return nil
	}
	m.pickerOpen = true
	return m.picker.SetQuery(mention.Query, mention.Excluded)
}

func cursorLeft(m *Model) {
	if m.cursor > 0 {
		m.cursor--
	}
}

func cursorRight(m *Model) {
	if m.cursor < len(m.input) {
		m.cursor++
	}
}

func cursorHome(m *Model) { m.cursor = 0 }

func cursorEnd(m *Model) { m.cursor = len(m.input) }

func (m *Model) deleteBack() {
	if m.cursor > 0 {
		m.input = slices.Delete(m.input, m.cursor-1, m.cursor)
		m.cursor--
	}
}

func (m *Model) deleteForward() {
	if m.cursor < len(m.input) {
		m.input = slices.Delete(m.input, m.cursor, m.cursor+1)
	}
}

// deleteWord removes the word before the cursor and the spaces after it.
func (m *Model) deleteWord() {
	i := m.cursor
	for i > 0 && unicode.IsSpace(m.input[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(m.input[i-1]) {
		i--
	}
	m.input = slices.Delete(m.input, i, m.cursor)
	m.cursor = i
}

func (m *Model) deleteToStart() {
	m.input = slices.Delete(m.input, 0, m.cursor)
	m.cursor = 0
}

func (m *Model) deleteToEnd() {
	m.input = m.input[:m.cursor]
}
