// Package mention implements the suggestion popup shown while the user types
// an @ mention in the composer.
package mention

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/atfind/internal/filesearch"
	"github.com/xonecas/atfind/internal/preview"
)

// Action is the result of handling a message. nil means no action.
type Action any

// ActionClose signals the picker should be dismissed.
type ActionClose struct{}

// ActionSelect signals a suggestion was chosen.
type ActionSelect struct{ Suggestion filesearch.Suggestion }

// Colors holds the theme colors for the picker.
type Colors struct {
	Fg     string
	Bg     string
	Dim    string
	Accent string
	SelFg  string
	SelBg  string
	Border string
}

// ColorsFromPalette maps a theme palette onto picker colors.
func ColorsFromPalette(p preview.Palette) Colors {
	return Colors{
		Fg:     p.Fg,
		Bg:     p.Bg,
		Dim:    p.Muted,
		Accent: p.Accent,
		SelFg:  p.Bg,
		SelBg:  p.Accent,
		Border: p.Dim,
	}
}

const (
	debounceDelay = 40 * time.Millisecond

	// maxVisible caps the rows shown at once; the list scrolls past it.
	maxVisible = 8

	minPreviewWidth = 72
)

// debounceMsg is sent after the debounce timer fires.
type debounceMsg struct{ seq int }

// resultsMsg carries the suggestions for the query scheduled as seq.
type resultsMsg struct {
	seq   int
	items []filesearch.Suggestion
}

// previewMsg carries the rendered head of abs.
type previewMsg struct {
	abs   string
	lines []string
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Close  key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "previous")),
	Down:   key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "next")),
	Select: key.NewBinding(key.WithKeys("enter", "tab"), key.WithHelp("enter", "insert")),
	Close:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
}

// Model is the suggestion list for the mention under the cursor.
type Model struct {
	provider filesearch.Provider

	query    string
	excluded []string
	items    []filesearch.Suggestion
	selected int
	seq      int // debounce sequence counter
	pending  bool
	spinner  spinner.Model

	colors Colors

	theme        string
	previewLines int
	previewFor   string
	preview      []string
}

// New creates a picker backed by provider.
func New(provider filesearch.Provider, colors Colors) Model {
	return Model{
		provider: provider,
		colors:   colors,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(colors.Accent))),
		),
	}
}

// SetPreview enables a preview pane of up to lines lines, highlighted with
// theme. lines <= 0 disables it.
func (m *Model) SetPreview(theme string, lines int) {
	m.theme = theme
	m.previewLines = lines
	m.previewFor = ""
	m.preview = nil
}

// SetQuery schedules a search for query. Only the latest query is run once
// the debounce delay passes.
func (m *Model) SetQuery(query string, excluded []string) tea.Cmd {
	if m.seq > 0 && query == m.query && slices.Equal(excluded, m.excluded) {
		return nil
	}
	m.query = query
	m.excluded = slices.Clone(excluded)
	m.seq++

	cmds := []tea.Cmd{m.debounceCmd()}
	if !m.pending {
		m.pending = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Rerun schedules the current query again, for when the file list changed.
func (m *Model) Rerun() tea.Cmd {
	if m.seq == 0 {
		return nil
	}
	m.seq++
	m.pending = true
	return m.debounceCmd()
}

func (m *Model) debounceCmd() tea.Cmd {
	seq := m.seq
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq}
	})
}

// Query returns the query of the latest SetQuery call.
func (m *Model) Query() string { return m.query }

// Pending reports whether a search is waiting on the debounce timer.
func (m *Model) Pending() bool { return m.pending }

// Items returns the current suggestions.
func (m *Model) Items() []filesearch.Suggestion { return m.items }

// Selected returns the highlighted suggestion.
func (m *Model) Selected() (filesearch.Suggestion, bool) {
	if m.selected < 0 || m.selected >= len(m.items) {
		return filesearch.Suggestion{}, false
	}
	return m.items[m.selected], true
}

// WantsKey reports whether the picker consumes msg. Navigation and selection
// keys pass through to the composer while the list is empty.
func (m *Model) WantsKey(msg tea.KeyPressMsg) bool {
	if key.Matches(msg, keys.Close) {
		return true
	}
	return len(m.items) > 0 && key.Matches(msg, keys.Up, keys.Down, keys.Select)
}

// HandleMsg processes a tea.Msg and returns an optional Action.
// The second return is a tea.Cmd the parent must dispatch.
func (m *Model) HandleMsg(msg tea.Msg) (Action, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	case debounceMsg:
		if msg.seq != m.seq {
			return nil, nil
		}
		return nil, m.searchCmd()
	case resultsMsg:
		if msg.seq != m.seq {
			return nil, nil
		}
		m.items = msg.items
		m.selected = 0
		m.pending = false
		return nil, m.loadPreview()
	case previewMsg:
		if msg.abs == m.previewFor {
			m.preview = msg.lines
		}
		return nil, nil
	case spinner.TickMsg:
		if !m.pending {
			return nil, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return nil, cmd
	}
	return nil, nil
}

// searchCmd runs the current query off the update loop. A stale or missing
// cache is rebuilt there, not while handling input.
func (m *Model) searchCmd() tea.Cmd {
	provider, query, excluded, seq := m.provider, m.query, m.excluded, m.seq
	return func() tea.Msg {
		start := time.Now()
		items := provider.Suggest(query, excluded)
		log.Debug().
			Str("query", query).
			Int("results", len(items)).
			Dur("took", time.Since(start)).
			Msg("mention search")
		return resultsMsg{seq: seq, items: items}
	}
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (Action, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Close):
		return ActionClose{}, nil
	case key.Matches(msg, keys.Select):
		if sel, ok := m.Selected(); ok {
			return ActionSelect{Suggestion: sel}, nil
		}
	case key.Matches(msg, keys.Up):
		if m.selected > 0 {
			m.selected--
			return nil, m.loadPreview()
		}
	case key.Matches(msg, keys.Down):
		if m.selected < len(m.items)-1 {
			m.selected++
			return nil, m.loadPreview()
		}
	}
	return nil, nil
}

// loadPreview reads the selected suggestion in the background. The previous
// preview stays on screen until the new one arrives.
func (m *Model) loadPreview() tea.Cmd {
	sel, ok := m.Selected()
	if m.previewLines <= 0 || !ok {
		m.previewFor, m.preview = "", nil
		return nil
	}
	if sel.Abs == m.previewFor {
		return nil
	}
	m.previewFor = sel.Abs
	abs, lines, theme := sel.Abs, m.previewLines, m.theme
	return func() tea.Msg {
		p, err := preview.Load(abs, lines)
		if err != nil {
			log.Debug().Err(err).Str("path", abs).Msg("preview unavailable")
			return previewMsg{abs: abs, lines: []string{"(unavailable)"}}
		}
		return previewMsg{abs: abs, lines: p.Render(theme)}
	}
}

// View renders the picker box at most width columns wide.
func (m *Model) View(width int) string {
	if width < 24 {
		width = 24
	}
	innerW := width - 4 // border + padding

	listW := innerW
	showPreview := len(m.preview) > 0 && width >= minPreviewWidth
	if showPreview {
		listW = innerW * 45 / 100
	}

	rows := m.renderList(listW)
	content := strings.Join(append([]string{m.renderHeader(listW)}, rows...), "\n")

	bg := lipgloss.Color(m.colors.Bg)
	if showPreview {
		sepStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors.Border)).Background(bg)
		h := max(len(rows)+1, min(len(m.preview), maxVisible+1))
		sep := make([]string, h)
		for i := range sep {
			sep[i] = sepStyle.Render(" │ ")
		}
		previewW := innerW - listW - 3
		content = lipgloss.JoinHorizontal(lipgloss.Top,
			content,
			strings.Join(sep, "\n"),
			strings.Join(m.renderPreview(previewW, h), "\n"),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.colors.Border)).
		BorderBackground(bg).
		Foreground(lipgloss.Color(m.colors.Fg)).
		Background(bg).
		Padding(0, 1).
		Render(content)
}

func (m *Model) renderHeader(w int) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors.Dim))
	status := dimStyle.Render(countLabel(len(m.items)))
	if m.pending {
		status = m.spinner.View()
	}
	head := string(filesearch.MentionMarker) + m.query + "  " + status
	return fit(head, w)
}

func countLabel(n int) string {
	switch n {
	case 0:
		return "no matches"
	case 1:
		return "1 match"
	}
	return strconv.Itoa(n) + " matches"
}

func (m *Model) renderList(w int) []string {
	if len(m.items) == 0 {
		return nil
	}
	visible := min(len(m.items), maxVisible)
	scrollOff := 0
	if m.selected >= visible {
		scrollOff = m.selected - visible + 1
	}

	accent := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors.Accent)).Bold(true)
	dirStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors.Dim))
	selStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.colors.SelFg)).
		Background(lipgloss.Color(m.colors.SelBg))

	lines := make([]string, 0, visible)
	for i := scrollOff; i < scrollOff+visible; i++ {
		item := m.items[i]
		if i == m.selected {
			lines = append(lines, selStyle.Render(fitLeft(item.Display, w)))
			continue
		}
		line := highlightRunes(item.Display, item.Positions, accent)
		if item.IsDir {
			line = dirStyle.Render("▸ ") + line
		}
		lines = append(lines, fitLeft(line, w))
	}
	return lines
}

func (m *Model) renderPreview(w, h int) []string {
	lines := make([]string, 0, h)
	for _, l := range m.preview {
		if len(lines) == h {
			break
		}
		lines = append(lines, fit(l, w))
	}
	for len(lines) < h {
		lines = append(lines, strings.Repeat(" ", w))
	}
	return lines
}

// highlightRunes styles the runes of s at the given indexes.
func highlightRunes(s string, positions []int, style lipgloss.Style) string {
	if len(positions) == 0 {
		return s
	}
	var b strings.Builder
	next := 0
	for i, r := range []rune(s) {
		if next < len(positions) && positions[next] == i {
			b.WriteString(style.Render(string(r)))
			next++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// fit truncates s on the right and pads it to exactly w cells.
func fit(s string, w int) string {
	s = ansi.Truncate(s, w, "…")
	if pad := w - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// fitLeft is fit for paths: the head is dropped so the file name stays visible.
func fitLeft(s string, w int) string {
	if over := ansi.StringWidth(s) - w; over > 0 {
		s = ansi.TruncateLeft(s, over+1, "…")
	}
	return fit(s, w)
}
