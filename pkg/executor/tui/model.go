package tui

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/tabsweep/pkg/tabs"
)

// model represents the state of the popup.
type model struct {
	// Bubble Tea components
	input   textinput.Model
	spinner spinner.Model

	// Engine integration
	ctx     context.Context
	session *tabs.Session
	logger  tabs.Logger

	// Customization
	header string

	// Search state
	scope   tabs.Scope
	results []tabs.Tab
	cursor  int
	offset  int

	// Status line
	busy           bool
	loadingMessage string
	status         string
	statusIsError  bool

	// Window dimensions
	width  int
	height int
	ready  bool

	// copyText writes to the system clipboard.
	copyText func(string) error

	// Application state
	shouldQuit bool
}

// tabsLoadedMsg signals the end of the initial load.
type tabsLoadedMsg struct{ err error }

// closeDoneMsg carries the outcome of a dedup or close-unbookmarked run.
type closeDoneMsg struct {
	op      string
	summary string
	err     error
}

// undoDoneMsg carries the outcome of an undo.
type undoDoneMsg struct {
	summary string
	err     error
}

// switchDoneMsg reports a switch to the selected tab.
type switchDoneMsg struct{ err error }

func newModel(ctx context.Context, session *tabs.Session, opts Options) *model {
	ti := textinput.New()
	ti.Placeholder = "Search tabs by title or URL"
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	logger := opts.Logger
	if logger == nil {
		logger = discardLogger{}
	}
	scope := opts.Scope
	if scope == "" {
		scope = tabs.ScopeCurrentWindow
	}

	return &model{
		input:          ti,
		spinner:        sp,
		ctx:            ctx,
		session:        session,
		logger:         logger,
		header:         opts.Header,
		scope:          scope,
		busy:           true,
		loadingMessage: "Loading tabs...",
		copyText:       clipboard.WriteAll,
	}
}

// Init starts the spinner and loads the tabs.
func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.loadTabs())
}

// selected returns the highlighted tab.
func (m *model) selected() (tabs.Tab, bool) {
	if m.cursor < 0 || m.cursor >= len(m.results) {
		return tabs.Tab{}, false
	}
	return m.results[m.cursor], true
}

// refresh reruns the search against the session and clamps the cursor.
func (m *model) refresh() {
	results, err := m.session.SearchTabs(m.scope, m.input.Value())
	if err != nil {
		m.setError(tabs.DescribeError(err))
		results = nil
	}
	m.results = results
	if m.cursor >= len(m.results) {
		m.cursor = len(m.results) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.clampOffset()
}

func (m *model) toggleScope() {
	if m.scope == tabs.ScopeAllWindows {
		m.scope = tabs.ScopeCurrentWindow
	} else {
		m.scope = tabs.ScopeAllWindows
	}
	m.cursor = 0
	m.offset = 0
	m.refresh()
}

func (m *model) moveCursor(delta int) {
	if len(m.results) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.results) {
		m.cursor = len(m.results) - 1
	}
	m.clampOffset()
}

// clampOffset keeps the cursor inside the visible list window.
func (m *model) clampOffset() {
	rows := m.listRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *model) setStatus(text string) {
	m.status = text
	m.statusIsError = false
}

func (m *model) setError(text string) {
	m.status = text
	m.statusIsError = true
}
