package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/xonecas/atfind/internal/filesearch"
)

// ---------------------------------------------------------------------------
// ELM messages
// ---------------------------------------------------------------------------

// snapshotMsg carries a finished background refresh.
type snapshotMsg filesearch.SnapshotEvent

// snapshotClosedMsg is sent once the subscription channel is closed.
type snapshotClosedMsg struct{}

// waitForSnapshot blocks on the next refresh event.
func waitForSnapshot(ch <-chan filesearch.SnapshotEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return snapshotClosedMsg{}
		}
		return snapshotMsg(ev)
	}
}
