package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/tabsweep/pkg/browser/memory"
	"github.com/entrhq/tabsweep/pkg/tabs"
	"github.com/entrhq/tabsweep/pkg/types"
)

const fixture = `
current_window: 1
windows:
  - id: 1
    tabs:
      - {id: 1, url: "https://go.dev/", title: "The Go Programming Language"}
      - {id: 2, url: "https://go.dev/", title: "The Go Programming Language"}
      - {id: 3, url: "https://news.test/#top", title: "Morning News"}
  - id: 2
    tabs:
      - {id: 4, url: "https://go.dev/", title: "The Go Programming Language"}
      - {id: 5, url: "https://blog.test/post", title: "A Post"}
bookmarks:
  - title: Bar
    children:
      - {title: News, url: "https://news.test/"}
`

type harness struct {
	m       *model
	browser *memory.Browser
	copied  []string
}

func newHarness(t *testing.T, scope tabs.Scope) *harness {
	t.Helper()
	f, err := memory.Parse([]byte(fixture))
	require.NoError(t, err)
	b, err := memory.New(f)
	require.NoError(t, err)

	h := &harness{browser: b}
	session := tabs.NewSession(b, tabs.Options{})
	h.m = newModel(context.Background(), session, Options{Scope: scope})
	h.m.copyText = func(s string) error {
		h.copied = append(h.copied, s)
		return nil
	}
	h.m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	h.run(h.m.loadTabs())
	return h
}

// run executes cmd and feeds its message back into the model.
func (h *harness) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	h.m.Update(cmd())
}

func (h *harness) key(k tea.KeyType) tea.Cmd {
	_, cmd := h.m.Update(tea.KeyMsg{Type: k})
	return cmd
}

func (h *harness) typeText(s string) {
	h.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func urls(list []tabs.Tab) []string {
	var out []string
	for _, tab := range list {
		out = append(out, tab.URL)
	}
	return out
}

func TestLoadAndSearch(t *testing.T) {
	h := newHarness(t, tabs.ScopeCurrentWindow)

	assert.False(t, h.m.busy)
	assert.Equal(t, "5 tabs open, 1 duplicate URL.", h.m.status)
	assert.Len(t, h.m.results, 3)

	h.typeText("news")
	assert.Equal(t, []string{"https://news.test/#top"}, urls(h.m.results))

	h.key(tea.KeyTab)
	assert.Equal(t, tabs.ScopeAllWindows, h.m.scope)
	assert.Len(t, h.m.results, 1)

	h.m.input.SetValue("")
	h.m.refresh()
	assert.Len(t, h.m.results, 5)
}

func TestCursorMovement(t *testing.T) {
	h := newHarness(t, tabs.ScopeCurrentWindow)

	h.key(tea.KeyUp)
	assert.Equal(t, 0, h.m.cursor)
	h.key(tea.KeyDown)
	h.key(tea.KeyDown)
	h.key(tea.KeyDown)
	assert.Equal(t, 2, h.m.cursor)

	h.typeText("morning")
	assert.Equal(t, 0, h.m.cursor, "typing resets the selection")
}

func TestDeduplicateAndUndo(t *testing.T) {
	h := newHarness(t, tabs.ScopeAllWindows)

	cmd := h.key(tea.KeyCtrlD)
	require.NotNil(t, cmd)
	assert.True(t, h.m.busy)
	h.run(cmd)

	assert.False(t, h.m.busy)
	assert.Equal(t, "Closed 2 duplicate tabs.", h.m.status)
	assert.False(t, h.m.statusIsError)
	assert.Len(t, h.m.results, 3)
	assert.Equal(t, 3, h.browser.TabCount())

	h.run(h.key(tea.KeyCtrlZ))
	assert.Equal(t, "Restored 2 tabs.", h.m.status)
	assert.Len(t, h.m.results, 5)
	assert.Equal(t, 5, h.browser.TabCount())

	assert.Nil(t, h.key(tea.KeyCtrlZ))
	assert.Equal(t, "Nothing to undo.", h.m.status)
	assert.False(t, h.m.statusIsError)
}

func TestCloseUnbookmarked(t *testing.T) {
	h := newHarness(t, tabs.ScopeCurrentWindow)

	h.run(h.key(tea.KeyCtrlB))
	assert.Equal(t, "Closed 2 unbookmarked tabs. (kept 1 bookmarked)", h.m.status)
	assert.Equal(t, []string{"https://news.test/#top"}, h.browser.URLs(1))
}

func TestCloseUnbookmarked_PermissionMissing(t *testing.T) {
	b, err := memory.New(&memory.Fixture{
		NoBookmarkPermission: true,
		Windows:              []memory.FixtureWindow{{ID: 1, Tabs: []memory.FixtureTab{{URL: "https://a.test/"}}}},
	})
	require.NoError(t, err)
	m := newModel(context.Background(), tabs.NewSession(b, tabs.Options{}), Options{})
	m.Update(m.loadTabs()())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	m.Update(cmd())
	assert.True(t, m.statusIsError)
	assert.Equal(t, "Error: read bookmarks: bookmarks permission is missing", m.status)
	assert.Equal(t, 1, b.TabCount())
}

func TestBusyRejectsSecondOperation(t *testing.T) {
	h := newHarness(t, tabs.ScopeAllWindows)
	h.m.busy = true

	assert.Nil(t, h.key(tea.KeyCtrlD))
	assert.True(t, h.m.statusIsError)
	assert.Equal(t, "Error: another operation is in progress", h.m.status)
	assert.Equal(t, 5, h.browser.TabCount())
}

func TestCopyURL(t *testing.T) {
	h := newHarness(t, tabs.ScopeCurrentWindow)
	h.key(tea.KeyDown)
	h.key(tea.KeyDown)

	h.key(tea.KeyCtrlY)
	assert.Equal(t, []string{"https://news.test/#top"}, h.copied)
	assert.Equal(t, "Copied https://news.test/#top", h.m.status)

	h.m.copyText = func(string) error { return errors.New("no clipboard") }
	h.key(tea.KeyCtrlY)
	assert.True(t, h.m.statusIsError)
}

func TestSwitchToTabQuits(t *testing.T) {
	h := newHarness(t, tabs.ScopeAllWindows)
	h.typeText("post")
	require.Len(t, h.m.results, 1)

	cmd := h.key(tea.KeyEnter)
	require.NotNil(t, cmd)
	_, quit := h.m.Update(cmd())
	require.NotNil(t, quit)
	assert.IsType(t, tea.QuitMsg{}, quit())
	assert.True(t, h.m.shouldQuit)

	win, err := h.browser.CurrentWindow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tabs.WindowID(2), win.ID)
}

func TestSessionEventsUpdateLoadingMessage(t *testing.T) {
	h := newHarness(t, tabs.ScopeAllWindows)

	h.m.Update(types.NewOperationStartEvent(tabs.OpUndoLastClose, "Restoring 3 tabs..."))
	assert.NotEqual(t, "Restoring 3 tabs...", h.m.loadingMessage, "ignored while idle")

	h.m.busy = true
	h.m.Update(types.NewOperationProgressEvent(tabs.OpCloseUnbookmarked, "Closing unbookmarked tabs..."))
	assert.Equal(t, "Closing unbookmarked tabs...", h.m.loadingMessage)
}

func TestView(t *testing.T) {
	h := newHarness(t, tabs.ScopeAllWindows)

	out := h.m.View()
	assert.Contains(t, out, "tabsweep")
	assert.Contains(t, out, "Scope: all windows")
	assert.Contains(t, out, "[W2]")
	assert.Contains(t, out, "[dup]")
	assert.Contains(t, out, "Morning News")

	h.typeText("zzz")
	assert.Contains(t, h.m.View(), "No matching tabs.")
}

func TestEventSinkNeverBlocks(t *testing.T) {
	e := NewExecutor(Options{})
	sink := e.EventSink()
	for i := 0; i < eventBuffer*2; i++ {
		sink(types.NewUpdateBusyEvent(i%2 == 0))
	}
	assert.Len(t, e.events, eventBuffer)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "", truncate("abc", 0))
}
