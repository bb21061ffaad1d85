package tui

import (
	"fmt"
	"strings"
	"unicode"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/xonecas/atfind/internal/filesearch"
)

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

const (
	defaultWidth = 80
	promptText   = "> "
	indentText   = "  "
)

func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}
	return tea.NewView(m.renderContent())
}

// renderContent stacks the picker (when open) above the input and status lines.
func (m Model) renderContent() string {
	width := m.width
	if width == 0 {
		width = defaultWidth
	}

	var b strings.Builder
	if m.pickerOpen {
		b.WriteString(m.picker.View(width))
		b.WriteByte('\n')
	}
	b.WriteString(m.renderInput())
	b.WriteByte('\n')
	b.WriteString(m.renderStatus(width))
	return b.String()
}

func (m Model) renderInput() string {
	mask := mentionMask(m.input)

	var b strings.Builder
	b.WriteString(m.styles.Prompt.Render(promptText))

	var run []rune
	runMention := false
	flush := func() {
		if len(run) == 0 {
			return
		}
		style := m.styles.Text
		if runMention {
			style = m.styles.Mention
		}
		b.WriteString(style.Render(string(run)))
		run = run[:0]
	}

	for i, r := range m.input {
		if i == m.cursor {
			flush()
			if r != '\n' {
				b.WriteString(m.styles.Cursor.Render(string(r)))
				continue
			}
			b.WriteString(m.styles.Cursor.Render(" "))
		}
		if r == '\n' {
			flush()
			b.WriteString("\n" + indentText)
			continue
		}
		if mask[i] != runMention {
			flush()
			runMention = mask[i]
		}
		run = append(run, r)
	}
	flush()
	if m.cursor == len(m.input) {
		b.WriteString(m.styles.Cursor.Render(" "))
	}
	return b.String()
}

func (m Model) renderStatus(width int) string {
	if m.status != "" {
		return ansi.Truncate(m.styles.Error.Render(m.status), width, "…")
	}
	parts := []string{
		m.search.Root(),
		fmt.Sprintf("%d entries", m.indexed),
		"@ mention",
		"enter send",
		"↑↓ history",
		"esc quit",
	}
	return ansi.Truncate(m.styles.Status.Render(strings.Join(parts, " · ")), width, "…")
}

// mentionMask marks the runes that belong to @ mention tokens.
func mentionMask(input []rune) []bool {
	mask := make([]bool, len(input))
	in := false
	for i, r := range input {
		switch {
		case unicode.IsSpace(r):
			in = false
		case r == filesearch.MentionMarker && (i == 0 || unicode.IsSpace(input[i-1])):
			in = true
		}
		mask[i] = in
	}
	return mask
}
