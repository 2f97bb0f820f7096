package tabs

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// protectedPrefixes are the browser-owned schemes that are never closed.
var protectedPrefixes = []string{
	"chrome://",
	"edge://",
	"about:",
	"devtools://",
	"chrome-extension://",
	"moz-extension://",
}

// Classifier decides whether a URL is protected. The built-in schemes are
// always protected; extra glob patterns can only add to them.
type Classifier struct {
	patterns []glob.Glob
	sources  []string
}

// NewClassifier compiles the extra protected patterns. Patterns are matched
// against the lower-cased URL, so they should be written in lower case.
func NewClassifier(patterns ...string) (*Classifier, error) {
	c := &Classifier{}
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid protected pattern %q: %w", pattern, err)
		}
		c.patterns = append(c.patterns, g)
		c.sources = append(c.sources, pattern)
	}
	return c, nil
}

// Patterns returns the configured extra patterns.
func (c *Classifier) Patterns() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.sources...)
}

// IsProtected reports whether url must never be closed automatically.
func (c *Classifier) IsProtected(rawURL string) bool {
	lowered := strings.ToLower(rawURL)
	for _, prefix := range protectedPrefixes {
		if strings.HasPrefix(lowered, prefix) {
			return true
		}
	}
	if c == nil {
		return false
	}
	for _, g := range c.patterns {
		if g.Match(lowered) {
			return true
		}
	}
	return false
}

// IsEligible reports whether tab may be closed by dedup or
// close-unbookmarked.
func (c *Classifier) IsEligible(tab Tab) bool {
	return skipReasonOf(c, tab) == skipNone
}

// IsProtected reports whether url belongs to a built-in protected scheme.
func IsProtected(rawURL string) bool {
	return (*Classifier)(nil).IsProtected(rawURL)
}

// NormalizeForBookmarkLookup drops the fragment so that two URLs differing
// only after '#' name the same bookmark. Input that does not parse as an
// absolute URL is returned unchanged.
func NormalizeForBookmarkLookup(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Host = strings.ToLower(u.Host)
	if u.Host != "" && u.Path == "" && u.Opaque == "" {
		u.Path = "/"
		u.RawPath = ""
	}
	return u.String()
}

type skipReason int

const (
	skipNone skipReason = iota
	skipNoURL
	skipPinned
	skipProtected
)

// skipReasonOf applies the eligibility rule in the order the counters are
// reported: missing URL first, then pinned, then protected.
func skipReasonOf(c *Classifier, tab Tab) skipReason {
	switch {
	case tab.URL == "":
		return skipNoURL
	case tab.Pinned:
		return skipPinned
	case c.IsProtected(tab.URL):
		return skipProtected
	default:
		return skipNone
	}
}

// SkipCounts tallies ineligible tabs by reason.
type SkipCounts struct {
	Pinned    int `json:"pinned"`
	Protected int `json:"protected"`
	NoURL     int `json:"no_url"`
}

// Total returns the number of skipped tabs.
func (s SkipCounts) Total() int {
	return s.Pinned + s.Protected + s.NoURL
}

func (s *SkipCounts) add(reason skipReason) {
	switch reason {
	case skipNoURL:
		s.NoURL++
	case skipPinned:
		s.Pinned++
	case skipProtected:
		s.Protected++
	}
}

func (s *SkipCounts) merge(other SkipCounts) {
	s.Pinned += other.Pinned
	s.Protected += other.Protected
	s.NoURL += other.NoURL
}
