// Package memory is an in-process tabs.Browser loaded from a YAML fixture.
// It backs demos, the CLI's -fixture mode and tests, and can be told to fail
// specific calls.
package memory

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/tabsweep/pkg/tabs"
)

// Fixture is the YAML document describing a browser.
type Fixture struct {
	CurrentWindow tabs.WindowID        `yaml:"current_window"`
	Windows       []FixtureWindow      `yaml:"windows"`
	Bookmarks     []*tabs.BookmarkNode `yaml:"bookmarks"`
	// NoBookmarkPermission makes BookmarkTree report the capability missing.
	NoBookmarkPermission bool     `yaml:"no_bookmark_permission"`
	Failures             Failures `yaml:"failures"`
}

// FixtureWindow is one window and its tabs in order.
type FixtureWindow struct {
	ID   tabs.WindowID `yaml:"id"`
	Tabs []FixtureTab  `yaml:"tabs"`
}

// FixtureTab is one tab. A zero ID is assigned on load.
type FixtureTab struct {
	ID     tabs.TabID `yaml:"id"`
	URL    string     `yaml:"url"`
	Title  string     `yaml:"title"`
	Pinned bool       `yaml:"pinned"`
	Active bool       `yaml:"active"`
}

// Failures selects calls that fail. URL lists match the URL being closed or
// opened.
type Failures struct {
	ListTabs     bool     `yaml:"list_tabs"`
	CloseURLs    []string `yaml:"close_urls"`
	CreateTabs   []string `yaml:"create_tab_urls"`
	CreateWindow bool     `yaml:"create_window"`
	// CreateWindowBulk fails only windows opened with more than one URL.
	CreateWindowBulk bool `yaml:"create_window_bulk"`
}

// ErrInjected is returned by calls selected in Failures.
var ErrInjected = fmt.Errorf("injected failure: %w", tabs.ErrCollaboratorUnavailable)

// Browser is the in-memory browser.
type Browser struct {
	mu        sync.Mutex
	order     []tabs.WindowID
	windows   map[tabs.WindowID][]tabs.Tab
	current   tabs.WindowID
	focused   tabs.WindowID
	forest    []*tabs.BookmarkNode
	noPerm    bool
	failures  Failures
	nextTab   tabs.TabID
	nextWin   tabs.WindowID
	closeFail map[string]bool
	tabFail   map[string]bool
}

var _ tabs.Browser = (*Browser)(nil)

// Parse decodes a YAML fixture.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

// Load reads a fixture file and builds a browser from it.
func Load(path string) (*Browser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return New(f)
}

// New builds a browser from a fixture. Window and tab IDs must be unique;
// zero IDs are assigned.
func New(f *Fixture) (*Browser, error) {
	b := &Browser{
		windows:   make(map[tabs.WindowID][]tabs.Tab),
		forest:    f.Bookmarks,
		noPerm:    f.NoBookmarkPermission,
		failures:  f.Failures,
		focused:   tabs.WindowIDNone,
		closeFail: toSet(f.Failures.CloseURLs),
		tabFail:   toSet(f.Failures.CreateTabs),
	}

	seenTabs := make(map[tabs.TabID]bool)
	for _, w := range f.Windows {
		for _, t := range w.Tabs {
			if t.ID > b.nextTab {
				b.nextTab = t.ID
			}
		}
		if w.ID > b.nextWin {
			b.nextWin = w.ID
		}
	}

	for _, w := range f.Windows {
		id := w.ID
		if id == 0 {
			b.nextWin++
			id = b.nextWin
		}
		if _, dup := b.windows[id]; dup {
			return nil, fmt.Errorf("duplicate window id %d", id)
		}
		list := make([]tabs.Tab, 0, len(w.Tabs))
		for _, t := range w.Tabs {
			tid := t.ID
			if tid == 0 {
				b.nextTab++
				tid = b.nextTab
			}
			if seenTabs[tid] {
				return nil, fmt.Errorf("duplicate tab id %d", tid)
			}
			seenTabs[tid] = true
			list = append(list, tabs.Tab{
				ID: tid, URL: t.URL, Title: t.Title, WindowID: id,
				Pinned: t.Pinned, Active: t.Active,
			})
		}
		b.windows[id] = list
		b.order = append(b.order, id)
		b.reindex(id)
	}

	b.current = f.CurrentWindow
	if _, ok := b.windows[b.current]; !ok {
		b.current = tabs.WindowIDNone
		if len(b.order) > 0 {
			b.current = b.order[0]
		}
	}
	return b, nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

func (b *Browser) reindex(id tabs.WindowID) {
	for i := range b.windows[id] {
		b.windows[id][i].Index = i
	}
}

// SetFailures replaces the injected failures.
func (b *Browser) SetFailures(f Failures) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = f
	b.closeFail = toSet(f.CloseURLs)
	b.tabFail = toSet(f.CreateTabs)
}

// Fixture exports the current state.
func (b *Browser) Fixture() *Fixture {
	b.mu.Lock()
	defer b.mu.Unlock()

	f := &Fixture{
		CurrentWindow:        b.current,
		Bookmarks:            b.forest,
		NoBookmarkPermission: b.noPerm,
		Failures:             b.failures,
	}
	for _, id := range b.order {
		w := FixtureWindow{ID: id}
		for _, t := range b.windows[id] {
			w.Tabs = append(w.Tabs, FixtureTab{ID: t.ID, URL: t.URL, Title: t.Title, Pinned: t.Pinned, Active: t.Active})
		}
		f.Windows = append(f.Windows, w)
	}
	return f
}

// Save writes the current state as a fixture.
func (b *Browser) Save(path string) error {
	out, err := yaml.Marshal(b.Fixture())
	if err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	if err := os.WriteFile(path, out, 0600); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	return nil
}

func (b *Browser) ListTabs(ctx context.Context, filter tabs.TabFilter) ([]tabs.Tab, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures.ListTabs {
		return nil, fmt.Errorf("list tabs: %w", ErrInjected)
	}
	var out []tabs.Tab
	for _, id := range b.order {
		if filter.WindowID != nil && *filter.WindowID != id {
			continue
		}
		out = append(out, b.windows[id]...)
	}
	return out, nil
}

func (b *Browser) CurrentWindow(ctx context.Context) (tabs.Window, error) {
	if err := ctx.Err(); err != nil {
		return tabs.Window{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.windows[b.current]; !ok {
		return tabs.Window{}, fmt.Errorf("no current window: %w", tabs.ErrNotFound)
	}
	return tabs.Window{ID: b.current, Focused: true}, nil
}

func (b *Browser) GetWindow(ctx context.Context, id tabs.WindowID) (tabs.Window, error) {
	if err := ctx.Err(); err != nil {
		return tabs.Window{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.windows[id]; !ok {
		return tabs.Window{}, fmt.Errorf("window %d: %w", id, tabs.ErrNotFound)
	}
	return tabs.Window{ID: id, Focused: id == b.focused}, nil
}

func (b *Browser) CreateWindow(ctx context.Context, opts tabs.CreateWindowOptions) (tabs.Window, error) {
	if err := ctx.Err(); err != nil {
		return tabs.Window{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures.CreateWindow || (b.failures.CreateWindowBulk && len(opts.URLs) > 1) {
		return tabs.Window{}, fmt.Errorf("create window: %w", ErrInjected)
	}

	b.nextWin++
	id := b.nextWin
	urls := opts.URLs
	if len(urls) == 0 {
		urls = []string{"about:blank"}
	}
	list := make([]tabs.Tab, 0, len(urls))
	for _, url := range urls {
		b.nextTab++
		list = append(list, tabs.Tab{ID: b.nextTab, URL: url, Title: url, WindowID: id})
	}
	b.windows[id] = list
	b.order = append(b.order, id)
	b.reindex(id)
	if opts.Focused {
		b.focused = id
		b.current = id
	}
	return tabs.Window{ID: id, Focused: opts.Focused}, nil
}

func (b *Browser) CreateTab(ctx context.Context, opts tabs.CreateTabOptions) (tabs.Tab, error) {
	if err := ctx.Err(); err != nil {
		return tabs.Tab{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	list, ok := b.windows[opts.WindowID]
	if !ok {
		return tabs.Tab{}, fmt.Errorf("window %d: %w", opts.WindowID, tabs.ErrNotFound)
	}
	if b.tabFail[opts.URL] {
		return tabs.Tab{}, fmt.Errorf("create tab %s: %w", opts.URL, ErrInjected)
	}

	at := len(list)
	if opts.Index != nil && *opts.Index >= 0 && *opts.Index < at {
		at = *opts.Index
	}
	b.nextTab++
	tab := tabs.Tab{ID: b.nextTab, URL: opts.URL, Title: opts.URL, WindowID: opts.WindowID, Active: opts.Active}
	if opts.Active {
		for i := range list {
			list[i].Active = false
		}
	}
	list = append(list, tabs.Tab{})
	copy(list[at+1:], list[at:])
	list[at] = tab
	b.windows[opts.WindowID] = list
	b.reindex(opts.WindowID)
	return list[at], nil
}

// CloseTab removes a tab. A window left without tabs is removed, as a
// browser does.
func (b *Browser) CloseTab(ctx context.Context, id tabs.TabID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, wid := range b.order {
		list := b.windows[wid]
		for i, tab := range list {
			if tab.ID != id {
				continue
			}
			if b.closeFail[tab.URL] {
				return fmt.Errorf("close tab %d: %w", id, ErrInjected)
			}
			b.windows[wid] = append(list[:i:i], list[i+1:]...)
			if len(b.windows[wid]) == 0 {
				b.removeWindow(wid)
			} else {
				b.reindex(wid)
			}
			return nil
		}
	}
	return fmt.Errorf("tab %d: %w", id, tabs.ErrNotFound)
}

func (b *Browser) removeWindow(id tabs.WindowID) {
	delete(b.windows, id)
	for i, wid := range b.order {
		if wid == id {
			b.order = append(b.order[:i:i], b.order[i+1:]...)
			break
		}
	}
}

func (b *Browser) BookmarkTree(ctx context.Context) ([]*tabs.BookmarkNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.noPerm {
		return nil, tabs.ErrPermissionUnavailable
	}
	return b.forest, nil
}

func (b *Browser) FocusWindow(ctx context.Context, id tabs.WindowID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.windows[id]; !ok {
		return fmt.Errorf("window %d: %w", id, tabs.ErrNotFound)
	}
	b.focused = id
	b.current = id
	return nil
}

func (b *Browser) ActivateTab(ctx context.Context, id tabs.TabID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, wid := range b.order {
		list := b.windows[wid]
		for i := range list {
			if list[i].ID == id {
				for j := range list {
					list[j].Active = j == i
				}
				return nil
			}
		}
	}
	return fmt.Errorf("tab %d: %w", id, tabs.ErrNotFound)
}

// WindowIDs returns the open windows in creation order.
func (b *Browser) WindowIDs() []tabs.WindowID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]tabs.WindowID(nil), b.order...)
}

// URLs returns the URLs of a window in tab order.
func (b *Browser) URLs(id tabs.WindowID) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	urls := make([]string, 0, len(b.windows[id]))
	for _, tab := range b.windows[id] {
		urls = append(urls, tab.URL)
	}
	return urls
}

// TabCount returns the number of open tabs.
func (b *Browser) TabCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, list := range b.windows {
		n += len(list)
	}
	return n
}

