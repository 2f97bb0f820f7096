package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/tabsweep/pkg/tabs"
)

// chromeLines is the height of everything except the tab list: header,
// bordered input box, scope line, status line and key help.
const chromeLines = 7

// View renders the popup.
func (m *model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	sections := []string{
		m.buildHeader(),
		inputBoxStyle.Width(max(m.width-4, 10)).Render(m.input.View()),
		m.buildScopeLine(),
		m.buildList(),
		m.buildStatusLine(),
		tipsStyle.Render("  enter switch • tab scope • ctrl+d dedup • ctrl+b close unbookmarked • ctrl+z undo • ctrl+y copy URL • esc quit"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *model) buildHeader() string {
	if m.header != "" {
		return headerStyle.Render(m.header)
	}
	return headerStyle.Render("tabsweep")
}

func (m *model) buildScopeLine() string {
	scope := "current window"
	if m.scope == tabs.ScopeAllWindows {
		scope = "all windows"
	}
	line := fmt.Sprintf("  Scope: %s • %s", scope, pluralize(len(m.results), "match", "matches"))
	if m.session.CanUndo() {
		line += " • undo available"
	}
	return tipsStyle.Render(line)
}

func (m *model) buildList() string {
	rows := m.listRows()
	if len(m.results) == 0 {
		empty := "  No matching tabs."
		if m.busy {
			empty = ""
		}
		return urlStyle.Render(empty) + strings.Repeat("\n", rows-1)
	}

	end := min(m.offset+rows, len(m.results))
	lines := make([]string, 0, rows)
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(m.results[i], i == m.cursor))
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m *model) renderRow(tab tabs.Tab, selected bool) string {
	var b strings.Builder
	if selected {
		b.WriteString(selectedStyle.Render("> "))
	} else {
		b.WriteString("  ")
	}

	used := 2
	if m.scope == tabs.ScopeAllWindows {
		if n := m.session.WindowNumber(tab.WindowID); n > 0 {
			badge := fmt.Sprintf("[W%d] ", n)
			b.WriteString(windowBadgeStyle.Render(badge))
			used += len(badge)
		}
	}
	if m.session.IsDuplicate(tab.URL) {
		b.WriteString(duplicateBadgeStyle.Render("[dup] "))
		used += len("[dup] ")
	}
	if tab.Pinned {
		b.WriteString(windowBadgeStyle.Render("[pin] "))
		used += len("[pin] ")
	}

	avail := max(m.width-used, 20)
	titleWidth := avail * 3 / 5
	title := tab.Title
	if strings.TrimSpace(title) == "" {
		title = "(untitled)"
	}
	title = truncate(title, titleWidth)
	url := truncate(tab.URL, avail-lipgloss.Width(title)-2)

	base := titleStyle
	if selected {
		base = selectedStyle
	}
	b.WriteString(highlight(title, m.input.Value(), base))
	if url != "" {
		b.WriteString("  ")
		b.WriteString(highlight(url, m.input.Value(), urlStyle))
	}
	return b.String()
}

func (m *model) buildStatusLine() string {
	switch {
	case m.busy:
		return statusBarStyle.Render(fmt.Sprintf("%s %s", m.spinner.View(), m.loadingMessage))
	case m.status == "":
		return statusBarStyle.Render("")
	case m.statusIsError:
		return statusBarStyle.Render(errorStyle.Render(m.status))
	default:
		return statusBarStyle.Render(successStyle.Render(m.status))
	}
}

// listRows is how many tabs fit on screen.
func (m *model) listRows() int {
	if !m.ready {
		return 10
	}
	return max(m.height-chromeLines, 1)
}

// highlight styles the query matches in text.
func highlight(text, query string, base lipgloss.Style) string {
	var b strings.Builder
	for _, seg := range tabs.Highlight(text, query) {
		if seg.Match {
			b.WriteString(matchStyle.Render(seg.Text))
			continue
		}
		b.WriteString(base.Render(seg.Text))
	}
	return b.String()
}

// truncate shortens s to at most width cells, marking the cut with "…".
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
