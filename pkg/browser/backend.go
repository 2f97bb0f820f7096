package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/tabsweep/pkg/bookmarks"
	"github.com/entrhq/tabsweep/pkg/tabs"
)

// Backend is a tabs.Browser over one Playwright browser.
type Backend struct {
	mu        sync.Mutex
	browser   playwright.Browser
	opts      Options
	logger    tabs.Logger
	bookmarks bookmarks.File

	windowIDs  map[playwright.BrowserContext]tabs.WindowID
	tabIDs     map[playwright.Page]tabs.TabID
	nextWindow tabs.WindowID
	nextTab    tabs.TabID
	focused    tabs.WindowID
	active     map[tabs.WindowID]tabs.TabID
}

var _ tabs.Browser = (*Backend)(nil)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// NewBackend wraps browser. A browser with no contexts gets one blank
// window so there is always somewhere to restore tabs into.
func NewBackend(browser playwright.Browser, opts Options, logger tabs.Logger) (*Backend, error) {
	if browser == nil {
		return nil, fmt.Errorf("no browser: %w", tabs.ErrCollaboratorUnavailable)
	}
	if logger == nil {
		logger = nopLogger{}
	}

	b := &Backend{
		browser:    browser,
		opts:       opts,
		logger:     logger,
		bookmarks:  bookmarks.File{Path: opts.BookmarksFile},
		windowIDs:  make(map[playwright.BrowserContext]tabs.WindowID),
		tabIDs:     make(map[playwright.Page]tabs.TabID),
		nextWindow: 1,
		nextTab:    1,
		focused:    tabs.WindowIDNone,
		active:     make(map[tabs.WindowID]tabs.TabID),
	}

	if len(browser.Contexts()) == 0 {
		bc, err := browser.NewContext()
		if err != nil {
			return nil, unavailable("create initial window", err)
		}
		if _, err := bc.NewPage(); err != nil {
			_ = bc.Close()
			return nil, unavailable("create initial tab", err)
		}
	}
	return b, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, tabs.ErrCollaboratorUnavailable, err)
}

func (b *Backend) windowID(bc playwright.BrowserContext) tabs.WindowID {
	id, ok := b.windowIDs[bc]
	if !ok {
		id = b.nextWindow
		b.nextWindow++
		b.windowIDs[bc] = id
	}
	return id
}

func (b *Backend) tabID(page playwright.Page) tabs.TabID {
	id, ok := b.tabIDs[page]
	if !ok {
		id = b.nextTab
		b.nextTab++
		b.tabIDs[page] = id
	}
	return id
}

func (b *Backend) contextByID(id tabs.WindowID) (playwright.BrowserContext, bool) {
	for _, bc := range b.browser.Contexts() {
		if b.windowID(bc) == id {
			return bc, true
		}
	}
	return nil, false
}

func (b *Backend) pageByID(id tabs.TabID) (playwright.Page, tabs.WindowID, bool) {
	for _, bc := range b.browser.Contexts() {
		wid := b.windowID(bc)
		for _, page := range bc.Pages() {
			if b.tabID(page) == id {
				return page, wid, true
			}
		}
	}
	return nil, tabs.WindowIDNone, false
}

func (b *Backend) navigate(page playwright.Page, url string) error {
	if url == "" || url == "about:blank" {
		return nil
	}
	waitUntil := playwright.WaitUntilState(waitUntilCommit)
	_, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: &waitUntil,
		Timeout:   playwright.Float(b.opts.timeoutMillis()),
	})
	return err
}

func (b *Backend) ListTabs(ctx context.Context, filter tabs.TabFilter) ([]tabs.Tab, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []tabs.Tab
	for _, bc := range b.browser.Contexts() {
		wid := b.windowID(bc)
		if filter.WindowID != nil && *filter.WindowID != wid {
			continue
		}
		for i, page := range bc.Pages() {
			id := b.tabID(page)
			title, err := page.Title()
			if err != nil {
				b.logger.Debugf("title of tab %d unavailable: %v", id, err)
			}
			out = append(out, tabs.Tab{
				ID:       id,
				URL:      page.URL(),
				Title:    title,
				WindowID: wid,
				Index:    i,
				Active:   b.active[wid] == id,
			})
		}
	}
	return out, nil
}

func (b *Backend) CurrentWindow(ctx context.Context) (tabs.Window, error) {
	if err := ctx.Err(); err != nil {
		return tabs.Window{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.focused != tabs.WindowIDNone {
		if _, ok := b.contextByID(b.focused); ok {
			return tabs.Window{ID: b.focused, Focused: true}, nil
		}
	}
	contexts := b.browser.Contexts()
	if len(contexts) == 0 {
		return tabs.Window{}, fmt.Errorf("no open windows: %w", tabs.ErrNotFound)
	}
	return tabs.Window{ID: b.windowID(contexts[0]), Focused: true}, nil
}

func (b *Backend) GetWindow(ctx context.Context, id tabs.WindowID) (tabs.Window, error) {
	if err := ctx.Err(); err != nil {
		return tabs.Window{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.contextByID(id); !ok {
		return tabs.Window{}, fmt.Errorf("window %d: %w", id, tabs.ErrNotFound)
	}
	return tabs.Window{ID: id, Focused: id == b.focused}, nil
}

// CreateWindow opens a new context with one page per URL. If any page fails
// the whole context is closed, matching a browser's all-or-nothing window
// creation.
func (b *Backend) CreateWindow(ctx context.Context, opts tabs.CreateWindowOptions) (tabs.Window, error) {
	if err := ctx.Err(); err != nil {
		return tabs.Window{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	bc, err := b.browser.NewContext()
	if err != nil {
		return tabs.Window{}, unavailable("create window", err)
	}

	urls := opts.URLs
	if len(urls) == 0 {
		urls = []string{""}
	}
	for _, url := range urls {
		page, err := bc.NewPage()
		if err == nil {
			err = b.navigate(page, url)
		}
		if err != nil {
			_ = bc.Close()
			return tabs.Window{}, unavailable(fmt.Sprintf("open %s in new window", url), err)
		}
	}

	id := b.windowID(bc)
	if opts.Focused {
		b.focused = id
	}
	return tabs.Window{ID: id, Focused: opts.Focused}, nil
}

// CreateTab appends a page to the window. The index hint is ignored.
func (b *Backend) CreateTab(ctx context.Context, opts tabs.CreateTabOptions) (tabs.Tab, error) {
	if err := ctx.Err(); err != nil {
		return tabs.Tab{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	bc, ok := b.contextByID(opts.WindowID)
	if !ok {
		return tabs.Tab{}, fmt.Errorf("window %d: %w", opts.WindowID, tabs.ErrNotFound)
	}

	page, err := bc.NewPage()
	if err != nil {
		return tabs.Tab{}, unavailable("create tab", err)
	}
	if err := b.navigate(page, opts.URL); err != nil {
		_ = page.Close()
		return tabs.Tab{}, unavailable("open "+opts.URL, err)
	}

	id := b.tabID(page)
	if opts.Active {
		if err := page.BringToFront(); err != nil {
			b.logger.Debugf("bring tab %d to front: %v", id, err)
		}
		b.active[opts.WindowID] = id
	}
	return tabs.Tab{
		ID:       id,
		URL:      page.URL(),
		WindowID: opts.WindowID,
		Index:    len(bc.Pages()) - 1,
		Active:   opts.Active,
	}, nil
}

func (b *Backend) CloseTab(ctx context.Context, id tabs.TabID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	page, wid, ok := b.pageByID(id)
	if !ok {
		return fmt.Errorf("tab %d: %w", id, tabs.ErrNotFound)
	}
	if err := page.Close(); err != nil {
		return unavailable(fmt.Sprintf("close tab %d", id), err)
	}
	delete(b.tabIDs, page)
	if b.active[wid] == id {
		delete(b.active, wid)
	}
	return nil
}

func (b *Backend) BookmarkTree(ctx context.Context) ([]*tabs.BookmarkNode, error) {
	return b.bookmarks.BookmarkTree(ctx)
}

func (b *Backend) FocusWindow(ctx context.Context, id tabs.WindowID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.contextByID(id); !ok {
		return fmt.Errorf("window %d: %w", id, tabs.ErrNotFound)
	}
	b.focused = id
	return nil
}

func (b *Backend) ActivateTab(ctx context.Context, id tabs.TabID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	page, wid, ok := b.pageByID(id)
	if !ok {
		return fmt.Errorf("tab %d: %w", id, tabs.ErrNotFound)
	}
	if err := page.BringToFront(); err != nil {
		return unavailable(fmt.Sprintf("activate tab %d", id), err)
	}
	b.active[wid] = id
	return nil
}
