// Package browser drives a Chromium instance through Playwright and exposes
// it as a tabs.Browser.
//
// # Model
//
// Playwright has no notion of OS windows, so each browser context stands in
// for a window and each page in it for a tab. IDs are handed out by the
// Backend the first time it sees a context or page and stay stable for the
// life of the process. A tab's index is its position in the context's page
// list.
//
// # Limitations
//
//   - Pages cannot be pinned, so every tab reports Pinned false.
//   - Index hints on CreateTab are ignored; new pages are appended.
//   - Playwright cannot read bookmarks. BookmarkTree reads the configured
//     Chrome Bookmarks file and reports tabs.ErrPermissionUnavailable when
//     there is none.
//
// # Lifecycle
//
// A Manager owns the Playwright driver. Launch starts Chromium (or attaches
// over CDP when a remote URL is set) and returns a Backend; Shutdown closes
// the browser and stops the driver.
package browser
