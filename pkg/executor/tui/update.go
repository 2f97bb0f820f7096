package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/tabsweep/pkg/tabs"
	"github.com/entrhq/tabsweep/pkg/types"
)

// Update handles all state updates for the popup.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.shouldQuit {
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-8, 10)
		m.ready = true
		m.clampOffset()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case *types.SessionEvent:
		m.handleSessionEvent(msg)
		return m, nil

	case tabsLoadedMsg:
		m.busy = false
		if msg.err != nil {
			m.logger.Errorf("popup load failed: %v", msg.err)
			m.setError(tabs.DescribeError(msg.err))
		} else {
			m.setStatus(m.loadedStatus())
		}
		m.refresh()
		return m, nil

	case closeDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.setError(tabs.DescribeError(msg.err))
		} else {
			m.setStatus(msg.summary)
		}
		m.refresh()
		return m, nil

	case undoDoneMsg:
		m.busy = false
		switch {
		case errors.Is(msg.err, tabs.ErrNothingToUndo):
			m.setStatus(tabs.DescribeError(msg.err))
		case msg.err != nil:
			m.setError(tabs.DescribeError(msg.err))
		default:
			m.setStatus(msg.summary)
		}
		m.refresh()
		return m, nil

	case switchDoneMsg:
		if msg.err != nil {
			m.setError(tabs.DescribeError(msg.err))
			return m, nil
		}
		m.shouldQuit = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey intercepts the popup shortcuts before the search box sees them;
// several of them (ctrl+b, ctrl+d, tab, up, down) are editing keys there.
func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.shouldQuit = true
		return m, tea.Quit

	case "up", "ctrl+p":
		m.moveCursor(-1)
		return m, nil

	case "down", "ctrl+n":
		m.moveCursor(1)
		return m, nil

	case "pgup":
		m.moveCursor(-m.listRows())
		return m, nil

	case "pgdown":
		m.moveCursor(m.listRows())
		return m, nil

	case "tab":
		m.toggleScope()
		return m, nil

	case "enter":
		tab, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.switchTo(tab)

	case "ctrl+y":
		m.copySelected()
		return m, nil

	case "ctrl+d":
		return m.startOperation("Scanning for duplicate tabs...", m.deduplicate())

	case "ctrl+b":
		return m.startOperation("Loading bookmarks...", m.closeUnbookmarked())

	case "ctrl+z":
		if !m.session.CanUndo() {
			m.setStatus(tabs.DescribeError(tabs.ErrNothingToUndo))
			return m, nil
		}
		return m.startOperation("Restoring tabs...", m.undo())

	case "ctrl+r":
		return m.startOperation("Loading tabs...", m.loadTabs())
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.cursor = 0
		m.offset = 0
		m.refresh()
	}
	return m, cmd
}

// startOperation runs cmd unless an operation is already running.
func (m *model) startOperation(status string, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if m.busy {
		m.setError(tabs.DescribeError(tabs.ErrOperationInProgress))
		return m, nil
	}
	m.busy = true
	m.loadingMessage = status
	m.status = ""
	return m, cmd
}

func (m *model) copySelected() {
	tab, ok := m.selected()
	if !ok || tab.URL == "" {
		return
	}
	if err := m.copyText(tab.URL); err != nil {
		m.logger.Warnf("copy url failed: %v", err)
		m.setError("Error: copy URL: " + err.Error())
		return
	}
	m.setStatus("Copied " + tab.URL)
}

// handleSessionEvent mirrors session progress on the status line. Busy
// state is owned by the model; events may arrive after the operation's
// result.
func (m *model) handleSessionEvent(event *types.SessionEvent) {
	switch {
	case event.IsStatusEvent():
		if m.busy {
			m.loadingMessage = event.Content
		}
	case event.IsErrorEvent():
		m.logger.Debugf("session reported %s failure: %v", event.Operation, event.Error)
	case event.Type == types.EventTypeOperationComplete:
		m.logger.Debugf("%s finished: %s", event.Operation, event.Content)
	}
}

func (m *model) loadedStatus() string {
	n := len(m.session.Tabs())
	dups := m.session.DuplicateCount()
	if dups == 0 {
		return pluralize(n, "tab", "tabs") + " open."
	}
	return pluralize(n, "tab", "tabs") + " open, " + pluralize(dups, "duplicate URL", "duplicate URLs") + "."
}
