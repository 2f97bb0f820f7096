package browser

import (
	"time"
)

const (
	// DefaultTimeout bounds each Playwright call.
	DefaultTimeout = 10 * time.Second

	// waitUntilCommit returns from navigation as soon as the response
	// starts, which is all a restored tab needs.
	waitUntilCommit = "commit"
)

// Options configures how the Manager obtains a browser.
type Options struct {
	// RemoteURL attaches to a running Chromium over CDP instead of
	// launching one, e.g. http://127.0.0.1:9222.
	RemoteURL string

	Headless bool

	// Timeout bounds each Playwright call. Zero means DefaultTimeout.
	Timeout time.Duration

	// BookmarksFile is the Chrome Bookmarks file backing BookmarkTree.
	BookmarksFile string

	// SkipInstall skips downloading the driver and browsers on Initialize.
	SkipInstall bool
}

func (o Options) timeoutMillis() float64 {
	if o.Timeout <= 0 {
		return float64(DefaultTimeout / time.Millisecond)
	}
	return float64(o.Timeout / time.Millisecond)
}
