package history

import "strings"

// Navigator walks through past inputs with up/down keys. Entries are held
// newest first. The input being edited when navigation starts is kept so that
// walking back past the newest entry restores it.
type Navigator struct {
	entries  []string
	pos      int // len(entries) when not navigating
	draft    string
	maxItems int
}

// NewNavigator creates a navigator over entries (newest first), keeping at most
// maxItems.
func NewNavigator(entries []string, maxItems int) *Navigator {
	n := &Navigator{entries: append([]string(nil), entries...), maxItems: maxItems}
	n.trim()
	n.Reset()
	return n
}

// Push records a new input. Blank input and a repeat of the newest entry are
// skipped. Navigation is reset either way.
func (n *Navigator) Push(text string) bool {
	defer n.Reset()
	if strings.TrimSpace(text) == "" {
		return false
	}
	if len(n.entries) > 0 && n.entries[0] == text {
		return false
	}
	n.entries = append([]string{text}, n.entries...)
	n.trim()
	return true
}

// Previous moves to an older entry. current is the text in the input box and
// is remembered when navigation starts.
func (n *Navigator) Previous(current string) (string, bool) {
	if n.pos == len(n.entries) {
		if len(n.entries) == 0 {
			return "", false
		}
		n.draft = current
		n.pos = 0
		return n.entries[0], true
	}
	if n.pos+1 < len(n.entries) {
		n.pos++
		return n.entries[n.pos], true
	}
	return "", false
}

// Next moves to a newer entry, ending at the remembered draft.
func (n *Navigator) Next() (string, bool) {
	switch {
	case n.pos == len(n.entries):
		return "", false
	case n.pos > 0:
		n.pos--
		return n.entries[n.pos], true
	default:
		n.pos = len(n.entries)
		return n.draft, true
	}
}

// Reset leaves navigation mode.
func (n *Navigator) Reset() {
	n.pos = len(n.entries)
	n.draft = ""
}

// IsNavigating reports whether an entry is currently shown.
func (n *Navigator) IsNavigating() bool { return n.pos < len(n.entries) }

// Len returns the number of entries.
func (n *Navigator) Len() int { return len(n.entries) }

func (n *Navigator) trim() {
	if n.maxItems > 0 && len(n.entries) > n.maxItems {
		n.entries = n.entries[:n.maxItems]
	}
}
