// Package tui implements the composer: a single input line where typing @
// opens a file picker and enter submits the message.
package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/xonecas/atfind/internal/filesearch"
	"github.com/xonecas/atfind/internal/history"
	"github.com/xonecas/atfind/internal/preview"
	"github.com/xonecas/atfind/internal/tui/mention"
)

const (
	defaultExpandLines  = 400
	defaultHistoryLimit = 1000
)

// Searcher is the part of filesearch.System the composer uses.
type Searcher interface {
	filesearch.Provider
	Root() string
	Stats() filesearch.CacheStats
	RefreshAsync()
	Subscribe() <-chan filesearch.SnapshotEvent
}

// Options configures the composer.
type Options struct {
	History      *history.Store // nil disables persistence
	Session      string
	HistoryLimit int

	Theme        string
	PreviewLines int

	// Expand appends the referenced files to the submitted message.
	Expand      bool
	ExpandLines int
}

// Model is the composer model.
type Model struct {
	width  int
	height int

	search  Searcher
	events  <-chan filesearch.SnapshotEvent
	indexed int // entries in the latest snapshot
	status  string

	picker     mention.Model
	pickerOpen bool
	dismissed  bool // esc closed the picker; stays closed until the next edit

	input  []rune
	cursor int

	store   *history.Store
	session string
	nav     *history.Navigator

	opts   Options
	styles styles

	result    string
	submitted bool
	quitting  bool
}

// New creates a composer over search.
func New(search Searcher, opts Options) Model {
	if opts.ExpandLines <= 0 {
		opts.ExpandLines = defaultExpandLines
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = defaultHistoryLimit
	}
	palette := preview.ThemePalette(opts.Theme)

	picker := mention.New(search, mention.ColorsFromPalette(palette))
	picker.SetPreview(opts.Theme, opts.PreviewLines)

	return Model{
		search:  search,
		events:  search.Subscribe(),
		indexed: indexedEntries(search.Stats()),
		picker:  picker,
		store:   opts.History,
		session: opts.Session,
		nav:     history.NewNavigator(opts.History.Texts(opts.HistoryLimit), opts.HistoryLimit),
		opts:    opts,
		styles:  newStyles(palette),
	}
}

// Init warms the file cache in the background.
func (m Model) Init() tea.Cmd {
	m.search.RefreshAsync()
	return waitForSnapshot(m.events)
}

// Result returns the submitted message. ok is false when the composer was
// cancelled.
func (m Model) Result() (message string, ok bool) {
	return m.result, m.submitted
}

// Text returns the current input buffer.
func (m Model) Text() string { return string(m.input) }

// PickerOpen reports whether the mention picker is showing.
func (m Model) PickerOpen() bool { return m.pickerOpen }

func indexedEntries(st filesearch.CacheStats) int {
	return st.Files + st.Directories
}
