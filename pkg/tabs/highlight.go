package tabs

import (
	"strings"
	"unicode"
)

// Segment is a run of text that either matches the search query or not.
type Segment struct {
	Text  string
	Match bool
}

// Highlight splits text into segments around every case-insensitive
// occurrence of query. An empty query yields the whole text unmatched.
func Highlight(text, query string) []Segment {
	q := []rune(strings.TrimSpace(query))
	if len(q) == 0 || text == "" {
		if text == "" {
			return nil
		}
		return []Segment{{Text: text}}
	}
	for i, r := range q {
		q[i] = unicode.ToLower(r)
	}

	runes := []rune(text)
	var segments []Segment
	start := 0
	for i := 0; i+len(q) <= len(runes); {
		if !matchFold(runes[i:i+len(q)], q) {
			i++
			continue
		}
		if i > start {
			segments = append(segments, Segment{Text: string(runes[start:i])})
		}
		segments = append(segments, Segment{Text: string(runes[i : i+len(q)]), Match: true})
		i += len(q)
		start = i
	}
	if start < len(runes) {
		segments = append(segments, Segment{Text: string(runes[start:])})
	}
	return segments
}

func matchFold(window, lowerQuery []rune) bool {
	for i, r := range window {
		if unicode.ToLower(r) != lowerQuery[i] {
			return false
		}
	}
	return true
}
