package tabs

import (
	"context"
	"fmt"
)

// TabID identifies a tab within the browser.
type TabID int64

// WindowID identifies a browser window.
type WindowID int64

const (
	// TabIDNone marks a tab that has no usable id.
	TabIDNone TabID = -1

	// WindowIDNone marks an unknown or absent window.
	WindowIDNone WindowID = -1

	// IndexUnknown marks a snapshot whose original position was not known.
	IndexUnknown = -1
)

// Tab is a read-only snapshot of a browser tab.
type Tab struct {
	ID       TabID    `json:"id" yaml:"id"`
	URL      string   `json:"url" yaml:"url"`
	Title    string   `json:"title" yaml:"title"`
	WindowID WindowID `json:"window_id" yaml:"window_id"`
	Index    int      `json:"index" yaml:"index"`
	Pinned   bool     `json:"pinned" yaml:"pinned"`
	Active   bool     `json:"active" yaml:"active"`
}

// Window is a browser window.
type Window struct {
	ID      WindowID `json:"id"`
	Focused bool     `json:"focused"`
}

// TabSnapshot is the restore record captured right before a tab is closed.
// It is never modified after creation.
type TabSnapshot struct {
	URL      string   `json:"url"`
	WindowID WindowID `json:"window_id"`
	Index    int      `json:"index"`
}

// HasWindow reports whether the snapshot knows its origin window.
func (s TabSnapshot) HasWindow() bool {
	return s.WindowID != WindowIDNone
}

// HasIndex reports whether the snapshot knows its original position.
func (s TabSnapshot) HasIndex() bool {
	return s.Index >= 0
}

// SnapshotOf captures the restore record for a tab. The second return value
// is false for tabs without a URL, which cannot be restored.
func SnapshotOf(tab Tab) (TabSnapshot, bool) {
	if tab.URL == "" {
		return TabSnapshot{}, false
	}
	index := tab.Index
	if index < 0 {
		index = IndexUnknown
	}
	return TabSnapshot{URL: tab.URL, WindowID: tab.WindowID, Index: index}, true
}

// BookmarkNode is one node of the bookmark forest. Folders have children,
// bookmarks have a URL; a node may in principle have both.
type BookmarkNode struct {
	Title    string          `json:"title,omitempty" yaml:"title,omitempty"`
	URL      string          `json:"url,omitempty" yaml:"url,omitempty"`
	Children []*BookmarkNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// TabFilter narrows ListTabs. A zero filter lists every tab.
type TabFilter struct {
	// WindowID limits the listing to one window when set.
	WindowID *WindowID
}

// CreateWindowOptions configures CreateWindow.
type CreateWindowOptions struct {
	URLs    []string
	Focused bool
}

// CreateTabOptions configures CreateTab.
type CreateTabOptions struct {
	WindowID WindowID
	URL      string
	// Index is a position hint; nil lets the browser append the tab.
	Index  *int
	Active bool
}

// Browser is the collaborator the engine drives. Every method may block and
// every call fails or succeeds independently of the others.
type Browser interface {
	// ListTabs returns the tabs matching filter.
	ListTabs(ctx context.Context, filter TabFilter) ([]Tab, error)

	// CurrentWindow returns the window the user is looking at.
	CurrentWindow(ctx context.Context) (Window, error)

	// GetWindow returns the window or an error wrapping ErrNotFound.
	GetWindow(ctx context.Context, id WindowID) (Window, error)

	// CreateWindow opens a new window seeded with the given URLs.
	CreateWindow(ctx context.Context, opts CreateWindowOptions) (Window, error)

	// CreateTab opens a tab in an existing window.
	CreateTab(ctx context.Context, opts CreateTabOptions) (Tab, error)

	// CloseTab closes a tab.
	CloseTab(ctx context.Context, id TabID) error

	// BookmarkTree returns the bookmark forest or an error wrapping
	// ErrPermissionUnavailable when bookmarks cannot be read.
	BookmarkTree(ctx context.Context) ([]*BookmarkNode, error)

	// FocusWindow brings a window to the front.
	FocusWindow(ctx context.Context, id WindowID) error

	// ActivateTab makes a tab the active tab of its window.
	ActivateTab(ctx context.Context, id TabID) error
}

// Scope selects which tabs an operation looks at.
type Scope string

const (
	// ScopeCurrentWindow restricts an operation to the current window.
	ScopeCurrentWindow Scope = "current"

	// ScopeAllWindows covers every window.
	ScopeAllWindows Scope = "all"
)

// ParseScope validates a scope string.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeCurrentWindow, ScopeAllWindows:
		return Scope(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScope, s)
	}
}
