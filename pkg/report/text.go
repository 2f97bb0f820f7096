package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/entrhq/tabsweep/pkg/tabs"
)

// Text writes one block per tab: badges and title, then the indented URL.
// Untitled tabs show the URL once. Query matches are wrapped in asterisks.
func Text(w io.Writer, l Listing) error {
	bw := bufio.NewWriter(w)

	if l.Heading != "" {
		fmt.Fprintln(bw, l.Heading)
		fmt.Fprintln(bw)
	}
	if len(l.Rows) == 0 {
		fmt.Fprintln(bw, "No tabs found.")
	}
	for _, r := range l.Rows {
		prefix := ""
		if b := badges(r); len(b) > 0 {
			prefix = "[" + strings.Join(b, "] [") + "] "
		}
		fmt.Fprintf(bw, "%s%s\n", prefix, markText(displayTitle(r.Tab), l.Query))
		if r.Tab.URL != "" && strings.TrimSpace(r.Tab.Title) != "" {
			fmt.Fprintf(bw, "    %s\n", markText(r.Tab.URL, l.Query))
		}
	}
	if l.Summary != "" {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, l.Summary)
	}
	return bw.Flush()
}

func markText(text, query string) string {
	var b strings.Builder
	for _, seg := range tabs.Highlight(text, query) {
		if seg.Match {
			b.WriteString("*" + seg.Text + "*")
			continue
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}
