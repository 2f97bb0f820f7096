package tabs

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/entrhq/tabsweep/pkg/types"
)

// Operation names used in errors and events.
const (
	OpLoadTabs          = "load tabs"
	OpDeduplicate       = "deduplicate"
	OpCloseUnbookmarked = "close unbookmarked"
	OpUndoLastClose     = "undo last close"
	OpSwitchToTab       = "switch to tab"
)

// Logger is the logging surface the engine needs. *logging.Logger
// satisfies it.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// EventSink receives session progress events. It is called synchronously
// and must not call back into the session's mutating operations.
type EventSink func(*types.SessionEvent)

// Options configures a Session.
type Options struct {
	// Classifier decides protection; nil means built-in schemes only.
	Classifier *Classifier

	// CloseConcurrency bounds parallel close requests.
	CloseConcurrency int

	Logger Logger
	Events EventSink
}

// Session holds the state of one popup: the loaded tabs, the duplicate
// marks, the cached bookmark index and the batch available for undo.
type Session struct {
	browser    Browser
	classifier *Classifier
	closer     *Closer
	restorer   *Restorer
	logger     Logger
	emit       EventSink

	busy atomic.Bool

	mu            sync.RWMutex
	tabs          []Tab
	currentWindow WindowID
	duplicates    URLSet
	bookmarks     *BookmarkIndex
	lastClosed    []TabSnapshot
	undoState     UndoState
}

// NewSession creates a session driving browser.
func NewSession(browser Browser, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	emit := opts.Events
	if emit == nil {
		emit = func(*types.SessionEvent) {}
	}
	return &Session{
		browser:       browser,
		classifier:    opts.Classifier,
		closer:        NewCloser(browser, opts.Classifier, opts.CloseConcurrency, logger),
		restorer:      NewRestorer(browser, logger),
		logger:        logger,
		emit:          emit,
		currentWindow: WindowIDNone,
		duplicates:    make(URLSet),
	}
}

func (s *Session) acquire() bool {
	if !s.busy.CompareAndSwap(false, true) {
		return false
	}
	s.emit(types.NewUpdateBusyEvent(true))
	return true
}

func (s *Session) release() {
	s.busy.Store(false)
	s.emit(types.NewUpdateBusyEvent(false))
}

// Busy reports whether a mutating operation is running.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// LoadTabs refreshes the tab list and the duplicate marks.
func (s *Session) LoadTabs(ctx context.Context) error {
	if !s.acquire() {
		return opError(OpLoadTabs, ErrOperationInProgress)
	}
	defer s.release()

	if err := s.reload(ctx); err != nil {
		s.emit(types.NewOperationErrorEvent(OpLoadTabs, err))
		return opError(OpLoadTabs, err)
	}
	return nil
}

func (s *Session) reload(ctx context.Context) error {
	current := WindowIDNone
	if win, err := s.browser.CurrentWindow(ctx); err != nil {
		s.logger.Warnf("current window unavailable: %v", err)
	} else {
		current = win.ID
	}

	tabs, err := s.browser.ListTabs(ctx, TabFilter{})
	if err != nil {
		return fmt.Errorf("list tabs: %w", err)
	}
	dups := s.classifier.FindDuplicates(tabs)

	s.mu.Lock()
	s.tabs = tabs
	s.currentWindow = current
	s.duplicates = dups
	s.mu.Unlock()

	s.logger.Debugf("loaded %d tabs, %d duplicate urls, current window %d", len(tabs), len(dups), current)
	s.emit(types.NewTabsLoadedEvent(len(tabs), len(dups)))
	return nil
}

// Tabs returns a copy of the loaded tab list.
func (s *Session) Tabs() []Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Tab(nil), s.tabs...)
}

// CurrentWindow returns the window resolved by the last load, or
// WindowIDNone.
func (s *Session) CurrentWindow() WindowID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentWindow
}

// IsDuplicate reports whether url is marked as a duplicate.
func (s *Session) IsDuplicate(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return url != "" && s.duplicates.Has(url)
}

// DuplicateCount returns how many URLs are marked as duplicates.
func (s *Session) DuplicateCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.duplicates)
}

// WindowNumber returns the 1-based ordinal of a window among the loaded
// windows, or 0 if no loaded tab lives in it.
func (s *Session) WindowNumber(id WindowID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[WindowID]struct{})
	var ids []WindowID
	for _, tab := range s.tabs {
		if _, ok := seen[tab.WindowID]; ok {
			continue
		}
		seen[tab.WindowID] = struct{}{}
		ids = append(ids, tab.WindowID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for i, wid := range ids {
		if wid == id {
			return i + 1
		}
	}
	return 0
}

// SearchTabs filters the loaded tabs by scope and by a case-insensitive
// substring of the title or URL. An empty query matches every tab in scope.
// When the current window is unknown the current scope covers all tabs.
func (s *Session) SearchTabs(scope Scope, query string) ([]Tab, error) {
	if _, err := ParseScope(string(scope)); err != nil {
		return nil, err
	}

	s.mu.RLock()
	candidates := s.tabs
	if scope == ScopeCurrentWindow && s.currentWindow != WindowIDNone {
		candidates = filterWindow(s.tabs, s.currentWindow)
	}
	candidates = append([]Tab(nil), candidates...)
	s.mu.RUnlock()

	return MatchTabs(candidates, query), nil
}

// MatchTabs keeps the tabs whose title or URL contains query, ignoring case
// and surrounding whitespace.
func MatchTabs(tabs []Tab, query string) []Tab {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return tabs
	}
	matches := make([]Tab, 0, len(tabs))
	for _, tab := range tabs {
		if strings.Contains(strings.ToLower(tab.Title), q) || strings.Contains(strings.ToLower(tab.URL), q) {
			matches = append(matches, tab)
		}
	}
	return matches
}

func filterWindow(tabs []Tab, id WindowID) []Tab {
	out := make([]Tab, 0, len(tabs))
	for _, tab := range tabs {
		if tab.WindowID == id {
			out = append(out, tab)
		}
	}
	return out
}

// scopedTabs returns the tabs a closing operation may touch. Unlike search,
// the current scope with an unknown window selects nothing.
func (s *Session) scopedTabs(scope Scope) []Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if scope == ScopeAllWindows {
		return append([]Tab(nil), s.tabs...)
	}
	return filterWindow(s.tabs, s.currentWindow)
}

// Deduplicate closes every later occurrence of a URL within scope.
func (s *Session) Deduplicate(ctx context.Context, scope Scope) (CloseResult, error) {
	if _, err := ParseScope(string(scope)); err != nil {
		return CloseResult{}, opError(OpDeduplicate, err)
	}
	if !s.acquire() {
		return CloseResult{}, opError(OpDeduplicate, ErrOperationInProgress)
	}
	defer s.release()

	s.emit(types.NewOperationStartEvent(OpDeduplicate, "Scanning for duplicate tabs..."))

	part := s.classifier.PartitionDuplicates(s.scopedTabs(scope))
	result := s.closer.CloseTabs(ctx, part.Duplicates, nil)
	result.Skipped.merge(part.Skipped)

	s.finishClose(ctx, OpDeduplicate, result, DescribeDedup(result))
	return result, nil
}

// CloseUnbookmarked closes every eligible tab in scope whose URL is not
// bookmarked.
func (s *Session) CloseUnbookmarked(ctx context.Context, scope Scope) (CloseResult, error) {
	if _, err := ParseScope(string(scope)); err != nil {
		return CloseResult{}, opError(OpCloseUnbookmarked, err)
	}
	if !s.acquire() {
		return CloseResult{}, opError(OpCloseUnbookmarked, ErrOperationInProgress)
	}
	defer s.release()

	s.emit(types.NewOperationStartEvent(OpCloseUnbookmarked, "Loading bookmarks..."))

	tabs := s.scopedTabs(scope)
	index, err := s.bookmarkIndex(ctx)
	if err != nil {
		s.logger.Errorf("%s: %v", OpCloseUnbookmarked, err)
		s.emit(types.NewOperationErrorEvent(OpCloseUnbookmarked, err))
		return CloseResult{}, opError(OpCloseUnbookmarked, err)
	}

	s.emit(types.NewOperationProgressEvent(OpCloseUnbookmarked, "Closing unbookmarked tabs..."))
	result := s.closer.CloseTabs(ctx, tabs, func(tab Tab) bool {
		return index.Contains(tab.URL)
	})

	s.finishClose(ctx, OpCloseUnbookmarked, result, DescribeUnbookmarked(result))
	return result, nil
}

// BookmarkIndex returns the cached index, building it on first use.
func (s *Session) BookmarkIndex(ctx context.Context) (*BookmarkIndex, error) {
	return s.bookmarkIndex(ctx)
}

func (s *Session) bookmarkIndex(ctx context.Context) (*BookmarkIndex, error) {
	s.mu.RLock()
	cached := s.bookmarks
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	forest, err := s.browser.BookmarkTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("read bookmarks: %w", err)
	}
	index := BuildIndex(forest)

	s.mu.Lock()
	s.bookmarks = index
	s.mu.Unlock()

	s.logger.Debugf("bookmark index built with %d urls", index.Len())
	return index, nil
}

func (s *Session) finishClose(ctx context.Context, op string, result CloseResult, summary string) {
	if len(result.ClosedTabs) > 0 {
		s.mu.Lock()
		s.lastClosed = append([]TabSnapshot(nil), result.ClosedTabs...)
		s.undoState = UndoIdle
		s.mu.Unlock()
	}

	if result.Closed > 0 {
		if err := s.reload(ctx); err != nil {
			s.logger.Warnf("%s: reload after close failed: %v", op, err)
		}
	}

	s.emit(types.NewOperationCompleteEvent(op, summary).
		WithMetadata("batch_id", result.BatchID).
		WithMetadata("closed", result.Closed).
		WithMetadata("failed", result.Failed))
}

// CanUndo reports whether a closed batch is waiting to be restored.
func (s *Session) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lastClosed) > 0
}

// PendingUndo returns a copy of the batch UndoLastClose would restore.
func (s *Session) PendingUndo() []TabSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]TabSnapshot(nil), s.lastClosed...)
}

// UndoState returns the state of the most recent undo.
func (s *Session) UndoState() UndoState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.undoState
}

// UndoLastClose restores the last closed batch. Snapshots that fail to
// restore replace the batch so a later call retries only those.
func (s *Session) UndoLastClose(ctx context.Context) (RestoreResult, error) {
	if !s.acquire() {
		return RestoreResult{}, opError(OpUndoLastClose, ErrOperationInProgress)
	}
	defer s.release()

	s.mu.Lock()
	pending := append([]TabSnapshot(nil), s.lastClosed...)
	if len(pending) == 0 {
		s.mu.Unlock()
		return RestoreResult{}, opError(OpUndoLastClose, ErrNothingToUndo)
	}
	s.undoState = UndoRestoring
	s.mu.Unlock()

	s.emit(types.NewOperationStartEvent(OpUndoLastClose,
		fmt.Sprintf("Restoring %d %s...", len(pending), plural(len(pending), "tab", "tabs"))))

	result := s.restorer.Restore(ctx, pending)

	s.mu.Lock()
	s.lastClosed = append([]TabSnapshot(nil), result.FailedTabs...)
	s.undoState = result.State()
	s.mu.Unlock()

	s.logger.Infof("undo: restored %d, %d left for retry (%s)", result.Restored, len(result.FailedTabs), result.State())

	if err := s.reload(ctx); err != nil {
		s.logger.Warnf("%s: reload after restore failed: %v", OpUndoLastClose, err)
	}

	s.emit(types.NewOperationCompleteEvent(OpUndoLastClose, DescribeRestore(result)).
		WithMetadata("restored", result.Restored).
		WithMetadata("failed", len(result.FailedTabs)).
		WithMetadata("state", result.State().String()))
	return result, nil
}

// SwitchToTab focuses the tab's window and activates the tab.
func (s *Session) SwitchToTab(ctx context.Context, tab Tab) error {
	if err := s.browser.FocusWindow(ctx, tab.WindowID); err != nil {
		return opError(OpSwitchToTab, fmt.Errorf("focus window %d: %w", tab.WindowID, err))
	}
	if err := s.browser.ActivateTab(ctx, tab.ID); err != nil {
		return opError(OpSwitchToTab, fmt.Errorf("activate tab %d: %w", tab.ID, err))
	}
	return nil
}
