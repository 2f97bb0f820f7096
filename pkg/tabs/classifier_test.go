package tabs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsProtected(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"chrome://settings", true},
		{"CHROME://history", true},
		{"edge://flags", true},
		{"about:blank", true},
		{"About:Preferences", true},
		{"devtools://devtools/bundled/inspector.html", true},
		{"chrome-extension://abcdef/popup.html", true},
		{"moz-extension://1234/options.html", true},
		{"https://example.com", false},
		{"http://chrome.example.com", false},
		{"file:///tmp/a.html", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, IsProtected(tt.url))
		})
	}
}

func TestClassifier_ExtraPatterns(t *testing.T) {
	c, err := NewClassifier("https://mail.google.com/*", "  ", "*.internal.example/*")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://mail.google.com/*", "*.internal.example/*"}, c.Patterns())
	assert.True(t, c.IsProtected("https://mail.google.com/mail/u/0"))
	assert.True(t, c.IsProtected("HTTPS://MAIL.GOOGLE.COM/x"))
	assert.True(t, c.IsProtected("https://wiki.internal.example/page"))
	assert.True(t, c.IsProtected("chrome://settings"), "built-in schemes stay protected")
	assert.False(t, c.IsProtected("https://example.com/"))
}

func TestNewClassifier_InvalidPattern(t *testing.T) {
	_, err := NewClassifier("https://[unclosed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid protected pattern")
}

func TestClassifier_IsEligible(t *testing.T) {
	c, err := NewClassifier()
	require.NoError(t, err)

	assert.True(t, c.IsEligible(Tab{ID: 1, URL: "https://a.test/"}))
	assert.False(t, c.IsEligible(Tab{ID: 1, URL: ""}))
	assert.False(t, c.IsEligible(Tab{ID: 1, URL: "https://a.test/", Pinned: true}))
	assert.False(t, c.IsEligible(Tab{ID: 1, URL: "about:blank"}))
}

func TestNormalizeForBookmarkLookup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips fragment", "https://x.test/y#frag", "https://x.test/y"},
		{"keeps query", "https://x.test/y?q=1#top", "https://x.test/y?q=1"},
		{"no fragment", "https://x.test/y", "https://x.test/y"},
		{"empty fragment", "https://x.test/y#", "https://x.test/y"},
		{"adds root path", "https://x.test", "https://x.test/"},
		{"lowercases host", "https://X.Test/Path", "https://x.test/Path"},
		{"empty", "", ""},
		{"relative stays unchanged", "not a url#frag", "not a url#frag"},
		{"unparseable stays unchanged", "http://[::1%zz/#x", "http://[::1%zz/#x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeForBookmarkLookup(tt.in))
		})
	}
}

func TestNormalizeForBookmarkLookup_FragmentVariantsAgree(t *testing.T) {
	a := NormalizeForBookmarkLookup("https://docs.test/guide#install")
	b := NormalizeForBookmarkLookup("https://docs.test/guide#usage")
	c := NormalizeForBookmarkLookup("https://docs.test/guide")
	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
}
