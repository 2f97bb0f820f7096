package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/tabsweep/pkg/tabs"
)

func (m *model) loadTabs() tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		return tabsLoadedMsg{err: session.LoadTabs(ctx)}
	}
}

func (m *model) deduplicate() tea.Cmd {
	session, ctx, scope := m.session, m.ctx, m.scope
	return func() tea.Msg {
		result, err := session.Deduplicate(ctx, scope)
		return closeDoneMsg{op: tabs.OpDeduplicate, summary: tabs.DescribeDedup(result), err: err}
	}
}

func (m *model) closeUnbookmarked() tea.Cmd {
	session, ctx, scope := m.session, m.ctx, m.scope
	return func() tea.Msg {
		result, err := session.CloseUnbookmarked(ctx, scope)
		return closeDoneMsg{op: tabs.OpCloseUnbookmarked, summary: tabs.DescribeUnbookmarked(result), err: err}
	}
}

func (m *model) undo() tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		result, err := session.UndoLastClose(ctx)
		return undoDoneMsg{summary: tabs.DescribeRestore(result), err: err}
	}
}

func (m *model) switchTo(tab tabs.Tab) tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		return switchDoneMsg{err: session.SwitchToTab(ctx, tab)}
	}
}
