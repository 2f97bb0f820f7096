package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/entrhq/tabsweep/pkg/tabs"
)

const stylesheet = `body{font-family:sans-serif;margin:2em;color:#222}
ul{list-style:none;padding:0}
li{margin:0 0 .8em}
.url{display:block;color:#666;font-size:.85em;word-break:break-all}
.badge{display:inline-block;border-radius:3px;padding:0 .4em;margin-right:.4em;font-size:.75em;background:#e8e8f0}
.badge.dup{background:#f6d6a8}
.badge.pinned{background:#cde6cd}
mark{background:#fff2a8}
.summary{margin-top:1.5em;font-weight:bold}`

// HTML writes a standalone page. The document is built as a node tree and
// serialized by html.Render, so titles and URLs are always escaped.
func HTML(w io.Writer, l Listing) error {
	if err := html.Render(w, Document(l)); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}

// Document builds the report as an HTML node tree.
func Document(l Listing) *html.Node {
	heading := l.Heading
	if heading == "" {
		heading = "Tabs"
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html)
	doc.AppendChild(root)

	head := element(atom.Head)
	meta := element(atom.Meta)
	meta.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}
	head.AppendChild(meta)
	head.AppendChild(withText(element(atom.Title), heading))
	head.AppendChild(withText(element(atom.Style), stylesheet))
	root.AppendChild(head)

	body := element(atom.Body)
	body.AppendChild(withText(element(atom.H1), heading))

	if len(l.Rows) == 0 {
		body.AppendChild(withText(element(atom.P), "No tabs found."))
	} else {
		list := element(atom.Ul)
		for _, r := range l.Rows {
			list.AppendChild(rowNode(r, l.Query))
		}
		body.AppendChild(list)
	}

	if l.Summary != "" {
		summary := withText(element(atom.P), l.Summary)
		summary.Attr = []html.Attribute{{Key: "class", Val: "summary"}}
		body.AppendChild(summary)
	}

	root.AppendChild(body)
	return doc
}

func rowNode(r Row, query string) *html.Node {
	li := element(atom.Li)
	if r.Duplicate {
		li.Attr = append(li.Attr, html.Attribute{Key: "class", Val: "duplicate"})
	}

	for _, b := range badges(r) {
		span := withText(element(atom.Span), b)
		class := "badge"
		if b == "dup" || b == "pinned" {
			class += " " + b
		}
		span.Attr = []html.Attribute{{Key: "class", Val: class}}
		li.AppendChild(span)
	}

	title := element(atom.A)
	if r.Tab.URL != "" && !tabs.IsProtected(r.Tab.URL) && isWebURL(r.Tab.URL) {
		title.Attr = []html.Attribute{{Key: "href", Val: r.Tab.URL}}
	}
	appendHighlighted(title, displayTitle(r.Tab), query)
	li.AppendChild(title)

	if r.Tab.URL != "" {
		url := element(atom.Span)
		url.Attr = []html.Attribute{{Key: "class", Val: "url"}}
		appendHighlighted(url, r.Tab.URL, query)
		li.AppendChild(url)
	}
	return li
}

// isWebURL keeps javascript: and similar schemes out of href attributes.
func isWebURL(raw string) bool {
	lowered := strings.ToLower(raw)
	return strings.HasPrefix(lowered, "http://") ||
		strings.HasPrefix(lowered, "https://") ||
		strings.HasPrefix(lowered, "file://")
}

func appendHighlighted(parent *html.Node, text, query string) {
	for _, seg := range tabs.Highlight(text, query) {
		if seg.Match {
			parent.AppendChild(withText(element(atom.Mark), seg.Text))
			continue
		}
		parent.AppendChild(&html.Node{Type: html.TextNode, Data: seg.Text})
	}
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func withText(n *html.Node, text string) *html.Node {
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}
