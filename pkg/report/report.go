// Package report renders tab listings for the command line, as plain text or
// as a standalone HTML page. Matches of the search query are highlighted and
// every row carries its window number and duplicate mark.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/entrhq/tabsweep/pkg/tabs"
)

// Format selects a renderer.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatHTML:
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

// Row is one rendered tab.
type Row struct {
	Tab          tabs.Tab
	WindowNumber int
	Duplicate    bool
}

// Listing is the input of a renderer.
type Listing struct {
	// Heading is shown above the rows, e.g. the command that produced them.
	Heading string
	// Query is highlighted in titles and URLs. Empty disables highlighting.
	Query string
	Rows  []Row
	// Summary is an optional trailing status line.
	Summary string
}

// Annotator is the part of a session a listing needs.
type Annotator interface {
	WindowNumber(id tabs.WindowID) int
	IsDuplicate(url string) bool
}

// Rows annotates tabs with their window number and duplicate mark.
func Rows(a Annotator, list []tabs.Tab) []Row {
	rows := make([]Row, 0, len(list))
	for _, tab := range list {
		rows = append(rows, Row{
			Tab:          tab,
			WindowNumber: a.WindowNumber(tab.WindowID),
			Duplicate:    a.IsDuplicate(tab.URL),
		})
	}
	return rows
}

// Render writes l in the given format.
func Render(w io.Writer, format Format, l Listing) error {
	switch format {
	case FormatHTML:
		return HTML(w, l)
	case FormatText, "":
		return Text(w, l)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// displayTitle falls back to the URL for untitled tabs.
func displayTitle(tab tabs.Tab) string {
	if strings.TrimSpace(tab.Title) != "" {
		return tab.Title
	}
	if tab.URL != "" {
		return tab.URL
	}
	return "(untitled)"
}

func badges(r Row) []string {
	var out []string
	if r.WindowNumber > 0 {
		out = append(out, fmt.Sprintf("W%d", r.WindowNumber))
	}
	if r.Tab.Pinned {
		out = append(out, "pinned")
	}
	if r.Duplicate {
		out = append(out, "dup")
	}
	return out
}
