package tui

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/atfind/internal/filesearch"
)

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// -- Window resize -------------------------------------------------------
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	// -- Paste ---------------------------------------------------------------
	case tea.PasteMsg:
		return m, m.insertText(msg.Content)

	// -- Keyboard ------------------------------------------------------------
	case tea.KeyPressMsg:
		return m.handleKeyPress(msg)

	// -- Background index refresh --------------------------------------------
	case snapshotMsg:
		return m, m.handleSnapshot(filesearch.SnapshotEvent(msg))
	case snapshotClosedMsg:
		m.events = nil
		return m, nil
	}

	// Debounce timers and spinner ticks belong to the picker.
	if m.pickerOpen {
		_, cmd := m.picker.HandleMsg(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleSnapshot(ev filesearch.SnapshotEvent) tea.Cmd {
	if ev.Err != nil {
		log.Warn().Err(ev.Err).Msg("background index refresh failed")
		m.status = fmt.Sprintf("index error: %v", ev.Err)
		return waitForSnapshot(m.events)
	}
	m.indexed = ev.Entries
	m.status = ""

	cmds := []tea.Cmd{waitForSnapshot(m.events)}
	if ev.Changed && m.pickerOpen {
		cmds = append(cmds, m.picker.Rerun())
	}
	return tea.Batch(cmds...)
}
