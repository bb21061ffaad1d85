package mention

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/xonecas/atfind/internal/filesearch"
)

var testColors = Colors{Fg: "#dddddd", Bg: "#111111", Dim: "#666666", Accent: "#ff8800", SelFg: "#ffffff", SelBg: "#444444", Border: "#555555"}

type fakeProvider struct {
	items []filesearch.Suggestion
	calls []string
	excl  [][]string
}

func (f *fakeProvider) Suggest(query string, excluded []string) []filesearch.Suggestion {
	f.calls = append(f.calls, query)
	f.excl = append(f.excl, excluded)
	var out []filesearch.Suggestion
	for _, it := range f.items {
		if strings.Contains(it.Display, query) {
			out = append(out, it)
		}
	}
	return out
}

func newProvider() *fakeProvider {
	return &fakeProvider{items: []filesearch.Suggestion{
		{Display: "src/main.go", Insert: "src/main.go", Score: 0.9},
		{Display: "src/util.go", Insert: "src/util.go", Score: 0.8},
		{Display: "docs/", Insert: "docs", IsDir: true, Score: 0.5},
	}}
}

func keyPress(ch rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: ch, Text: string(ch)}
}

func special(name string) tea.KeyPressMsg {
	switch name {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	default:
		return tea.KeyPressMsg{}
	}
}

// settle runs the pending search as if the debounce timer fired, then feeds
// the results and any preview back into the model.
func settle(m *Model) {
	_, cmd := m.HandleMsg(debounceMsg{seq: m.seq})
	drain(m, cmd)
}

// drain runs cmd and every command that follows from its messages.
func drain(m *Model, cmd tea.Cmd) {
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = m.HandleMsg(msg)
	}
}

func TestSetQueryDebounces(t *testing.T) {
	p := newProvider()
	m := New(p, testColors)

	if cmd := m.SetQuery("src", nil); cmd == nil {
		t.Fatal("expected a debounce command")
	}
	if !m.Pending() {
		t.Error("should be pending until the timer fires")
	}
	if len(p.calls) != 0 {
		t.Errorf("search ran before debounce: %v", p.calls)
	}

	settle(&m)
	if m.Pending() {
		t.Error("should not be pending after the search")
	}
	if len(m.Items()) != 2 {
		t.Errorf("got %d items, want 2", len(m.Items()))
	}
}

func TestStaleDebounceIgnored(t *testing.T) {
	p := newProvider()
	m := New(p, testColors)

	m.SetQuery("s", nil)
	stale := m.seq
	m.SetQuery("src/u", []string{"src/main.go"})

	m.HandleMsg(debounceMsg{seq: stale})
	if len(p.calls) != 0 {
		t.Fatalf("stale timer triggered a search: %v", p.calls)
	}

	settle(&m)
	if len(p.calls) != 1 || p.calls[0] != "src/u" {
		t.Fatalf("calls = %v, want [src/u]", p.calls)
	}
	if len(p.excl[0]) != 1 || p.excl[0][0] != "src/main.go" {
		t.Errorf("exclusions not forwarded: %v", p.excl[0])
	}
}

func TestSearchRunsInCommand(t *testing.T) {
	p := newProvider()
	m := New(p, testColors)
	m.SetQuery("src", nil)

	_, cmd := m.HandleMsg(debounceMsg{seq: m.seq})
	if cmd == nil {
		t.Fatal("expected a search command")
	}
	if len(p.calls) != 0 {
		t.Fatal("the provider must not be called while handling the timer")
	}
	if !m.Pending() {
		t.Error("still pending until the results arrive")
	}

	drain(&m, cmd)
	if len(p.calls) != 1 || len(m.Items()) != 2 || m.Pending() {
		t.Errorf("calls = %v, items = %d, pending = %v", p.calls, len(m.Items()), m.Pending())
	}
}

func TestStaleResultsIgnored(t *testing.T) {
	p := newProvider()
	m := New(p, testColors)

	m.SetQuery("src", nil)
	_, old := m.HandleMsg(debounceMsg{seq: m.seq})
	m.SetQuery("docs", nil)

	// Results for "src" arrive after the query changed.
	m.HandleMsg(old())
	if len(m.Items()) != 0 || !m.Pending() {
		t.Fatalf("stale results applied: %d items", len(m.Items()))
	}

	settle(&m)
	if len(m.Items()) != 1 || m.Items()[0].Insert != "docs" {
		t.Errorf("items = %+v", m.Items())
	}
}

func TestSetQueryUnchanged(t *testing.T) {
	m := New(newProvider(), testColors)
	m.SetQuery("src", []string{"a"})
	if cmd := m.SetQuery("src", []string{"a"}); cmd != nil {
		t.Error("identical query should not schedule another search")
	}
	if cmd := m.SetQuery("src", []string{"b"}); cmd == nil {
		t.Error("changed exclusions should schedule a search")
	}
}

func TestNavigationAndSelect(t *testing.T) {
	m := New(newProvider(), testColors)
	m.SetQuery("", nil)
	settle(&m)

	m.HandleMsg(special("up"))
	if sel, _ := m.Selected(); sel.Display != "src/main.go" {
		t.Errorf("up at top moved selection to %q", sel.Display)
	}

	m.HandleMsg(special("down"))
	m.HandleMsg(special("down"))
	m.HandleMsg(special("down"))
	a, _ := m.HandleMsg(special("enter"))
	sel, ok := a.(ActionSelect)
	if !ok {
		t.Fatalf("expected ActionSelect, got %T", a)
	}
	if sel.Suggestion.Insert != "docs" || !sel.Suggestion.IsDir {
		t.Errorf("selected %+v, want docs dir", sel.Suggestion)
	}

	m.HandleMsg(special("up"))
	a, _ = m.HandleMsg(special("tab"))
	if sel, ok := a.(ActionSelect); !ok || sel.Suggestion.Insert != "src/util.go" {
		t.Errorf("tab selected %#v", a)
	}
}

func TestEscapeCloses(t *testing.T) {
	m := New(newProvider(), testColors)
	a, _ := m.HandleMsg(special("esc"))
	if _, ok := a.(ActionClose); !ok {
		t.Fatalf("expected ActionClose, got %T", a)
	}
}

func TestEnterWithNoItems(t *testing.T) {
	m := New(newProvider(), testColors)
	m.SetQuery("zzz", nil)
	settle(&m)

	if m.WantsKey(special("enter")) {
		t.Error("enter should pass through when the list is empty")
	}
	if a, _ := m.HandleMsg(special("enter")); a != nil {
		t.Errorf("expected no action, got %T", a)
	}
}

func TestWantsKey(t *testing.T) {
	m := New(newProvider(), testColors)
	m.SetQuery("", nil)
	settle(&m)

	tests := []struct {
		msg  tea.KeyPressMsg
		want bool
	}{
		{special("esc"), true},
		{special("enter"), true},
		{special("tab"), true},
		{special("up"), true},
		{special("down"), true},
		{keyPress('a'), false},
		{keyPress(' '), false},
	}
	for _, tt := range tests {
		if got := m.WantsKey(tt.msg); got != tt.want {
			t.Errorf("WantsKey(%q) = %v, want %v", tt.msg.String(), got, tt.want)
		}
	}
}

func TestViewListsItems(t *testing.T) {
	m := New(newProvider(), testColors)
	m.SetQuery("", nil)
	settle(&m)

	out := ansi.Strip(m.View(60))
	for _, want := range []string{"@", "3 matches", "src/main.go", "src/util.go", "docs/"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestViewPreview(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("first line\nsecond line\n"), 0644); err != nil {
		t.Fatal(err)
	}
	p := &fakeProvider{items: []filesearch.Suggestion{{Display: "notes.txt", Insert: "notes.txt", Abs: path}}}
	m := New(p, testColors)
	m.SetPreview("", 5)
	m.SetQuery("notes", nil)
	settle(&m)

	out := ansi.Strip(m.View(100))
	if !strings.Contains(out, "first line") {
		t.Errorf("preview missing from view:\n%s", out)
	}

	narrow := ansi.Strip(m.View(40))
	if strings.Contains(narrow, "first line") {
		t.Error("preview should be hidden on narrow terminals")
	}
}

func TestPreviewFollowsSelection(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(a, []byte("alpha\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("bravo\n"), 0644); err != nil {
		t.Fatal(err)
	}
	p := &fakeProvider{items: []filesearch.Suggestion{
		{Display: "a.txt", Insert: "a.txt", Abs: a},
		{Display: "b.txt", Insert: "b.txt", Abs: b},
	}}
	m := New(p, testColors)
	m.SetPreview("", 3)
	m.SetQuery("txt", nil)
	settle(&m)
	if !strings.Contains(ansi.Strip(strings.Join(m.preview, "\n")), "alpha") {
		t.Fatalf("preview = %q", m.preview)
	}

	_, cmd := m.HandleMsg(special("down"))
	if cmd == nil {
		t.Fatal("moving the selection should load a preview")
	}
	// A preview for a file that is no longer selected is dropped.
	m.HandleMsg(previewMsg{abs: a, lines: []string{"old"}})
	if strings.Contains(strings.Join(m.preview, ""), "old") {
		t.Error("stale preview applied")
	}

	drain(&m, cmd)
	if !strings.Contains(ansi.Strip(strings.Join(m.preview, "\n")), "bravo") {
		t.Errorf("preview = %q", m.preview)
	}
}

func testStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true)
}

func TestHighlightRunes(t *testing.T) {
	got := ansi.Strip(highlightRunes("main.go", []int{0, 2}, testStyle()))
	if got != "main.go" {
		t.Errorf("highlight changed the text: %q", got)
	}
	if highlightRunes("main.go", nil, testStyle()) != "main.go" {
		t.Error("no positions should return the input")
	}
}

func TestFitLeftKeepsFileName(t *testing.T) {
	got := fitLeft("very/long/directory/path/to/main.go", 12)
	if ansi.StringWidth(got) != 12 {
		t.Errorf("width = %d, want 12", ansi.StringWidth(got))
	}
	if !strings.HasSuffix(got, "main.go") || !strings.HasPrefix(got, "…") {
		t.Errorf("fitLeft = %q", got)
	}
	if got := fit("ab", 4); got != "ab  " {
		t.Errorf("fit = %q", got)
	}
}

func TestRerun(t *testing.T) {
	p := newProvider()
	m := New(p, testColors)
	if cmd := m.Rerun(); cmd != nil {
		t.Error("nothing to rerun before the first query")
	}

	m.SetQuery("src", nil)
	settle(&m)
	p.items = append(p.items, filesearch.Suggestion{Display: "src/new.go", Insert: "src/new.go"})

	if cmd := m.Rerun(); cmd == nil {
		t.Fatal("expected a debounce command")
	}
	settle(&m)
	if len(p.calls) != 2 || len(m.Items()) != 3 {
		t.Errorf("calls = %v, items = %d", p.calls, len(m.Items()))
	}
}
