package tabs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// fakeBrowser is an in-memory Browser with failure injection.
type fakeBrowser struct {
	mu sync.Mutex

	windows  map[WindowID][]Tab
	current  WindowID
	nextTab  TabID
	nextWin  WindowID
	forest   []*BookmarkNode
	closed   []TabID
	focused  WindowID
	active   TabID
	calls    map[string]int
	inFlight int
	maxInFl  int

	listErr         error
	bookmarkErr     error
	closeErr        map[TabID]error
	createWindowErr func(CreateWindowOptions) error
	createTabErr    func(CreateTabOptions) error
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{
		windows:  make(map[WindowID][]Tab),
		current:  WindowIDNone,
		nextTab:  100,
		nextWin:  100,
		closeErr: make(map[TabID]error),
		calls:    make(map[string]int),
	}
}

// addTab appends a tab to a window, creating the window if needed.
func (f *fakeBrowser) addTab(id TabID, win WindowID, url string, pinned bool) Tab {
	f.mu.Lock()
	defer f.mu.Unlock()
	tab := Tab{ID: id, URL: url, Title: url, WindowID: win, Index: len(f.windows[win]), Pinned: pinned}
	f.windows[win] = append(f.windows[win], tab)
	if f.current == WindowIDNone {
		f.current = win
	}
	return tab
}

func (f *fakeBrowser) removeWindow(id WindowID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.windows, id)
}

func (f *fakeBrowser) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[call]
}

func (f *fakeBrowser) urlsIn(id WindowID) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var urls []string
	for _, tab := range f.windows[id] {
		urls = append(urls, tab.URL)
	}
	return urls
}

func (f *fakeBrowser) windowIDs() []WindowID {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []WindowID
	for id := range f.windows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (f *fakeBrowser) reindex(id WindowID) {
	for i := range f.windows[id] {
		f.windows[id][i].Index = i
	}
}

func (f *fakeBrowser) ListTabs(_ context.Context, filter TabFilter) ([]Tab, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["list"]++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []Tab
	for _, id := range sortedWindowIDs(f.windows) {
		if filter.WindowID != nil && *filter.WindowID != id {
			continue
		}
		out = append(out, f.windows[id]...)
	}
	return out, nil
}

func sortedWindowIDs(m map[WindowID][]Tab) []WindowID {
	ids := make([]WindowID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (f *fakeBrowser) CurrentWindow(context.Context) (Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == WindowIDNone {
		return Window{}, fmt.Errorf("no current window: %w", ErrNotFound)
	}
	return Window{ID: f.current, Focused: true}, nil
}

func (f *fakeBrowser) GetWindow(_ context.Context, id WindowID) (Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["get_window"]++
	if _, ok := f.windows[id]; !ok {
		return Window{}, fmt.Errorf("window %d: %w", id, ErrNotFound)
	}
	return Window{ID: id}, nil
}

func (f *fakeBrowser) CreateWindow(_ context.Context, opts CreateWindowOptions) (Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["create_window"]++
	if f.createWindowErr != nil {
		if err := f.createWindowErr(opts); err != nil {
			return Window{}, err
		}
	}
	f.nextWin++
	id := f.nextWin
	f.windows[id] = nil
	for _, url := range opts.URLs {
		f.nextTab++
		f.windows[id] = append(f.windows[id], Tab{ID: f.nextTab, URL: url, Title: url, WindowID: id})
	}
	f.reindex(id)
	return Window{ID: id, Focused: opts.Focused}, nil
}

func (f *fakeBrowser) CreateTab(_ context.Context, opts CreateTabOptions) (Tab, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["create_tab"]++
	if f.createTabErr != nil {
		if err := f.createTabErr(opts); err != nil {
			return Tab{}, err
		}
	}
	tabs, ok := f.windows[opts.WindowID]
	if !ok {
		return Tab{}, fmt.Errorf("window %d: %w", opts.WindowID, ErrNotFound)
	}
	f.nextTab++
	tab := Tab{ID: f.nextTab, URL: opts.URL, Title: opts.URL, WindowID: opts.WindowID}
	at := len(tabs)
	if opts.Index != nil && *opts.Index < at {
		at = *opts.Index
	}
	tabs = append(tabs, Tab{})
	copy(tabs[at+1:], tabs[at:])
	tabs[at] = tab
	f.windows[opts.WindowID] = tabs
	f.reindex(opts.WindowID)
	return f.windows[opts.WindowID][at], nil
}

func (f *fakeBrowser) CloseTab(_ context.Context, id TabID) error {
	f.mu.Lock()
	f.calls["close"]++
	f.inFlight++
	if f.inFlight > f.maxInFl {
		f.maxInFl = f.inFlight
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.closeErr[id]; ok {
		return err
	}
	for win, tabs := range f.windows {
		for i, tab := range tabs {
			if tab.ID == id {
				f.windows[win] = append(tabs[:i:i], tabs[i+1:]...)
				f.reindex(win)
				f.closed = append(f.closed, id)
				return nil
			}
		}
	}
	return fmt.Errorf("tab %d: %w", id, ErrNotFound)
}

func (f *fakeBrowser) BookmarkTree(context.Context) ([]*BookmarkNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["bookmarks"]++
	if f.bookmarkErr != nil {
		return nil, f.bookmarkErr
	}
	return f.forest, nil
}

func (f *fakeBrowser) FocusWindow(_ context.Context, id WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.windows[id]; !ok {
		return fmt.Errorf("window %d: %w", id, ErrNotFound)
	}
	f.focused = id
	return nil
}

func (f *fakeBrowser) ActivateTab(_ context.Context, id TabID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = id
	return nil
}

var errBoom = errors.New("boom")
