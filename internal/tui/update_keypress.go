package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/atfind/internal/filesearch"
	"github.com/xonecas/atfind/internal/tui/mention"
)

type keyHandler func(*Model) (tea.Model, tea.Cmd)

// handleKeyPress routes a key to the picker when it wants it, then to the
// composer bindings, and finally inserts printable text.
func (m Model) handleKeyPress(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.pickerOpen && m.picker.WantsKey(msg) {
		return m.handlePickerKey(msg)
	}
	if handler := keyPressHandlers[msg.Keystroke()]; handler != nil {
		return handler(&m)
	}
	if msg.Text != "" {
		return m, m.insertText(msg.Text)
	}
	return m, nil
}

var keyPressHandlers = map[string]keyHandler{
	"ctrl+c":      (*Model).handleQuit,
	"esc":         (*Model).handleQuit,
	"ctrl+d":      (*Model).handleCtrlD,
	"enter":       (*Model).handleEnter,
	"ctrl+j":      (*Model).handleNewline,
	"shift+enter": (*Model).handleNewline,
	"alt+enter":   (*Model).handleNewline,
	"up":          (*Model).handleHistoryPrev,
	"down":        (*Model).handleHistoryNext,
	"tab":         (*Model).handleNoop,
	"left":        moveCursor(cursorLeft),
	"right":       moveCursor(cursorRight),
	"home":        moveCursor(cursorHome),
	"ctrl+a":      moveCursor(cursorHome),
	"end":         moveCursor(cursorEnd),
	"ctrl+e":      moveCursor(cursorEnd),
	"backspace":   edit((*Model).deleteBack),
	"delete":      edit((*Model).deleteForward),
	"ctrl+w":      edit((*Model).deleteWord),
	"ctrl+u":      edit((*Model).deleteToStart),
	"ctrl+k":      edit((*Model).deleteToEnd),
}

func (m *Model) handlePickerKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	action, cmd := m.picker.HandleMsg(msg)
	switch a := action.(type) {
	case mention.ActionClose:
		m.pickerOpen = false
		m.dismissed = true
	case mention.ActionSelect:
		text, cursor := filesearch.CompleteReference(m.Text(), m.byteCursor(), a.Suggestion.Insert)
		m.setText(text, cursor)
		log.Debug().Str("path", a.Suggestion.Insert).Msg("mention completed")
		return *m, m.edited()
	}
	return *m, cmd
}

func (m *Model) handleQuit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return *m, tea.Quit
}

// handleCtrlD quits on an empty buffer and deletes forward otherwise.
func (m *Model) handleCtrlD() (tea.Model, tea.Cmd) {
	if len(m.input) == 0 {
		return m.handleQuit()
	}
	m.deleteForward()
	return *m, m.edited()
}

// handleEnter submits the message. A line ending in a backslash continues on
// a new line instead.
func (m *Model) handleEnter() (tea.Model, tea.Cmd) {
	text, cursor := m.Text(), m.byteCursor()
	before := strings.TrimRight(text[:cursor], " \t")
	if strings.HasSuffix(before, `\`) {
		before = before[:len(before)-1] + "\n"
		m.setText(before+text[cursor:], len(before))
		return *m, m.edited()
	}

	msg := strings.TrimSpace(text)
	if msg == "" {
		return *m, nil
	}
	m.store.Add(m.session, msg)
	m.nav.Push(msg)

	m.result = msg
	if m.opts.Expand {
		m.result = Expand(m.search.Root(), msg, m.opts.ExpandLines)
	}
	m.submitted = true
	m.quitting = true
	log.Debug().
		Int("references", len(filesearch.ExtractReferences(msg, -1))).
		Bool("expanded", m.opts.Expand).
		Msg("message submitted")
	return *m, tea.Quit
}

func (m *Model) handleNewline() (tea.Model, tea.Cmd) {
	return *m, m.insertText("\n")
}

func (m *Model) handleHistoryPrev() (tea.Model, tea.Cmd) {
	if entry, ok := m.nav.Previous(m.Text()); ok {
		m.recall(entry)
	}
	return *m, nil
}

func (m *Model) handleHistoryNext() (tea.Model, tea.Cmd) {
	if entry, ok := m.nav.Next(); ok {
		m.recall(entry)
	}
	return *m, nil
}

// recall replaces the buffer with a history entry without opening the picker.
func (m *Model) recall(entry string) {
	m.setText(entry, len(entry))
	m.pickerOpen = false
}

func (m *Model) handleNoop() (tea.Model, tea.Cmd) {
	return *m, nil
}

func moveCursor(move func(*Model)) keyHandler {
	return func(m *Model) (tea.Model, tea.Cmd) {
		move(m)
		return *m, m.syncPicker()
	}
}

func edit(op func(*Model)) keyHandler {
	return func(m *Model) (tea.Model, tea.Cmd) {
		op(m)
		return *m, m.edited()
	}
}
