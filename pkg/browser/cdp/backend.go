// Package cdp drives a running Chrome over the DevTools protocol with
// chromedp and exposes it as a tabs.Browser.
//
// Tabs are page targets. Window IDs are Chrome's own, taken from
// Browser.getWindowForTarget. A tab's index is its position among its
// window's targets in Target.getTargets order, which Chrome does not promise
// matches the tab strip. DevTools cannot place a tab in a given window, so
// CreateTab activates a tab of the wanted window first and lets Chrome open
// the new one beside it. Bookmarks come from the profile's Bookmarks file.
package cdp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/target"

	"github.com/entrhq/tabsweep/pkg/bookmarks"
	"github.com/entrhq/tabsweep/pkg/tabs"
)

// DefaultTimeout bounds each protocol call.
const DefaultTimeout = 10 * time.Second

// Options configures a Backend.
type Options struct {
	// Timeout bounds each protocol call. Zero means DefaultTimeout.
	Timeout time.Duration

	// BookmarksFile is the Chrome Bookmarks file backing BookmarkTree.
	BookmarksFile string

	Logger tabs.Logger
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// Backend is a tabs.Browser over a DevTools connection.
type Backend struct {
	proto     protocol
	timeout   time.Duration
	logger    tabs.Logger
	bookmarks bookmarks.File
	closer    context.CancelFunc

	mu      sync.Mutex
	ids     map[target.ID]tabs.TabID
	targets map[tabs.TabID]target.ID
	nextTab tabs.TabID
	focused tabs.WindowID
}

var _ tabs.Browser = (*Backend)(nil)

func newBackend(proto protocol, opts Options) *Backend {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	return &Backend{
		proto:     proto,
		timeout:   timeout,
		logger:    logger,
		bookmarks: bookmarks.File{Path: opts.BookmarksFile},
		ids:       make(map[target.ID]tabs.TabID),
		targets:   make(map[tabs.TabID]target.ID),
		nextTab:   1,
		focused:   tabs.WindowIDNone,
	}
}

// Close drops the DevTools connection. The browser keeps running.
func (b *Backend) Close() {
	if b.closer != nil {
		b.closer()
	}
}

func (b *Backend) call(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.timeout)
}

func unavailable(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, tabs.ErrCollaboratorUnavailable, err)
}

func (b *Backend) tabID(id target.ID) tabs.TabID {
	b.mu.Lock()
	defer b.mu.Unlock()
	tid, ok := b.ids[id]
	if !ok {
		tid = b.nextTab
		b.nextTab++
		b.ids[id] = tid
		b.targets[tid] = id
	}
	return tid
}

func (b *Backend) targetID(id tabs.TabID) (target.ID, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tid, ok := b.targets[id]
	return tid, ok
}

func (b *Backend) forget(id tabs.TabID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if tid, ok := b.targets[id]; ok {
		delete(b.ids, tid)
		delete(b.targets, id)
	}
}

type located struct {
	info   *target.Info
	window tabs.WindowID
}

// locate lists page targets with their windows. Targets whose window cannot
// be resolved (e.g. closing while we ask) are dropped.
func (b *Backend) locate(ctx context.Context) ([]located, error) {
	cctx, cancel := b.call(ctx)
	defer cancel()

	infos, err := b.proto.Targets(cctx)
	if err != nil {
		return nil, unavailable("list targets", err)
	}
	out := make([]located, 0, len(infos))
	for _, info := range infos {
		wid, err := b.proto.WindowForTarget(cctx, info.TargetID)
		if err != nil {
			b.logger.Debugf("window of target %s unavailable: %v", info.TargetID, err)
			continue
		}
		out = append(out, located{info: info, window: tabs.WindowID(wid)})
	}
	return out, nil
}

func (b *Backend) ListTabs(ctx context.Context, filter tabs.TabFilter) ([]tabs.Tab, error) {
	found, err := b.locate(ctx)
	if err != nil {
		return nil, err
	}

	positions := make(map[tabs.WindowID]int)
	var out []tabs.Tab
	for _, l := range found {
		index := positions[l.window]
		positions[l.window]++
		if filter.WindowID != nil && *filter.WindowID != l.window {
			continue
		}
		out = append(out, tabs.Tab{
			ID:       b.tabID(l.info.TargetID),
			URL:      l.info.URL,
			Title:    l.info.Title,
			WindowID: l.window,
			Index:    index,
		})
	}
	return out, nil
}

// CurrentWindow is the last window focused through this backend, else the
// window of the first page target.
func (b *Backend) CurrentWindow(ctx context.Context) (tabs.Window, error) {
	b.mu.Lock()
	focused := b.focused
	b.mu.Unlock()

	if focused != tabs.WindowIDNone {
		if _, err := b.GetWindow(ctx, focused); err == nil {
			return tabs.Window{ID: focused, Focused: true}, nil
		}
	}

	found, err := b.locate(ctx)
	if err != nil {
		return tabs.Window{}, err
	}
	if len(found) == 0 {
		return tabs.Window{}, fmt.Errorf("no open windows: %w", tabs.ErrNotFound)
	}
	return tabs.Window{ID: found[0].window, Focused: true}, nil
}

func (b *Backend) GetWindow(ctx context.Context, id tabs.WindowID) (tabs.Window, error) {
	if id == tabs.WindowIDNone {
		return tabs.Window{}, fmt.Errorf("window %d: %w", id, tabs.ErrNotFound)
	}
	cctx, cancel := b.call(ctx)
	defer cancel()

	// Chrome answers an unknown window id with a protocol error; a
	// transport failure would be indistinguishable, so both read as gone.
	if err := b.proto.WindowBounds(cctx, browser.WindowID(id)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return tabs.Window{}, ctxErr
		}
		return tabs.Window{}, fmt.Errorf("window %d: %w: %v", id, tabs.ErrNotFound, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return tabs.Window{ID: id, Focused: id == b.focused}, nil
}

// CreateWindow opens the first URL in a new window and the rest beside it.
// If any URL fails every target opened so far is closed again.
func (b *Backend) CreateWindow(ctx context.Context, opts tabs.CreateWindowOptions) (tabs.Window, error) {
	urls := opts.URLs
	if len(urls) == 0 {
		urls = []string{"about:blank"}
	}
	cctx, cancel := b.call(ctx)
	defer cancel()

	first, err := b.proto.CreateTarget(cctx, urls[0], true, !opts.Focused)
	if err != nil {
		return tabs.Window{}, unavailable("create window", err)
	}
	created := []target.ID{first}
	rollback := func() {
		for _, id := range created {
			if err := b.proto.CloseTarget(ctx, id); err != nil {
				b.logger.Warnf("close partial window target %s: %v", id, err)
			}
		}
	}

	wid, err := b.proto.WindowForTarget(cctx, first)
	if err != nil {
		rollback()
		return tabs.Window{}, unavailable("resolve new window", err)
	}

	for _, url := range urls[1:] {
		if err := b.proto.ActivateTarget(cctx, first); err != nil {
			rollback()
			return tabs.Window{}, unavailable("activate new window", err)
		}
		id, err := b.proto.CreateTarget(cctx, url, false, true)
		if err != nil {
			rollback()
			return tabs.Window{}, unavailable("open "+url+" in new window", err)
		}
		created = append(created, id)
	}

	for _, id := range created {
		b.tabID(id)
	}
	if opts.Focused {
		b.mu.Lock()
		b.focused = tabs.WindowID(wid)
		b.mu.Unlock()
	}
	return tabs.Window{ID: tabs.WindowID(wid), Focused: opts.Focused}, nil
}

// CreateTab opens url next to a tab of the requested window. The index hint
// is not supported by DevTools and is ignored.
func (b *Backend) CreateTab(ctx context.Context, opts tabs.CreateTabOptions) (tabs.Tab, error) {
	window := opts.WindowID
	found, err := b.locate(ctx)
	if err != nil {
		return tabs.Tab{}, err
	}

	var anchor *target.Info
	count := 0
	for _, l := range found {
		if l.window == window {
			if anchor == nil {
				anchor = l.info
			}
			count++
		}
	}
	if anchor == nil {
		return tabs.Tab{}, fmt.Errorf("window %d: %w", window, tabs.ErrNotFound)
	}

	cctx, cancel := b.call(ctx)
	defer cancel()

	if err := b.proto.ActivateTarget(cctx, anchor.TargetID); err != nil {
		return tabs.Tab{}, unavailable(fmt.Sprintf("activate window %d", window), err)
	}
	id, err := b.proto.CreateTarget(cctx, opts.URL, false, !opts.Active)
	if err != nil {
		return tabs.Tab{}, unavailable("open "+opts.URL, err)
	}

	landed, err := b.proto.WindowForTarget(cctx, id)
	if err == nil && tabs.WindowID(landed) != window {
		b.logger.Warnf("tab for %s opened in window %d instead of %d", opts.URL, landed, window)
		window = tabs.WindowID(landed)
	}

	return tabs.Tab{
		ID:       b.tabID(id),
		URL:      opts.URL,
		WindowID: window,
		Index:    count,
		Active:   opts.Active,
	}, nil
}

func (b *Backend) CloseTab(ctx context.Context, id tabs.TabID) error {
	tid, ok := b.targetID(id)
	if !ok {
		return fmt.Errorf("tab %d: %w", id, tabs.ErrNotFound)
	}
	cctx, cancel := b.call(ctx)
	defer cancel()

	if err := b.proto.CloseTarget(cctx, tid); err != nil {
		return unavailable(fmt.Sprintf("close tab %d", id), err)
	}
	b.forget(id)
	return nil
}

func (b *Backend) BookmarkTree(ctx context.Context) ([]*tabs.BookmarkNode, error) {
	return b.bookmarks.BookmarkTree(ctx)
}

// FocusWindow activates the first tab of the window, which raises it.
func (b *Backend) FocusWindow(ctx context.Context, id tabs.WindowID) error {
	found, err := b.locate(ctx)
	if err != nil {
		return err
	}
	for _, l := range found {
		if l.window != id {
			continue
		}
		cctx, cancel := b.call(ctx)
		defer cancel()
		if err := b.proto.ActivateTarget(cctx, l.info.TargetID); err != nil {
			return unavailable(fmt.Sprintf("focus window %d", id), err)
		}
		b.mu.Lock()
		b.focused = id
		b.mu.Unlock()
		return nil
	}
	return fmt.Errorf("window %d: %w", id, tabs.ErrNotFound)
}

func (b *Backend) ActivateTab(ctx context.Context, id tabs.TabID) error {
	tid, ok := b.targetID(id)
	if !ok {
		return fmt.Errorf("tab %d: %w", id, tabs.ErrNotFound)
	}
	cctx, cancel := b.call(ctx)
	defer cancel()

	if err := b.proto.ActivateTarget(cctx, tid); err != nil {
		return unavailable(fmt.Sprintf("activate tab %d", id), err)
	}
	return nil
}
