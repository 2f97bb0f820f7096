package tabs

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// UndoState tracks one undo operation.
type UndoState int

const (
	// UndoIdle means no restore has run since the last close.
	UndoIdle UndoState = iota
	// UndoRestoring means a restore is in flight.
	UndoRestoring
	// UndoCompleted means every snapshot was restored.
	UndoCompleted
	// UndoPartiallyRestored means some snapshots remain for a retry.
	UndoPartiallyRestored
	// UndoFullyFailed means nothing could be restored.
	UndoFullyFailed
)

func (s UndoState) String() string {
	switch s {
	case UndoIdle:
		return "idle"
	case UndoRestoring:
		return "restoring"
	case UndoCompleted:
		return "completed"
	case UndoPartiallyRestored:
		return "partially_restored"
	case UndoFullyFailed:
		return "fully_failed"
	default:
		return fmt.Sprintf("undo_state(%d)", int(s))
	}
}

// RestoreResult summarizes one restore.
type RestoreResult struct {
	// Restored is the number of tabs recreated.
	Restored int `json:"restored"`

	// FailedTabs holds the snapshots that could not be recreated. They
	// become the next undo set.
	FailedTabs []TabSnapshot `json:"failed_tabs"`
}

// State maps the result onto the terminal undo states.
func (r RestoreResult) State() UndoState {
	switch {
	case len(r.FailedTabs) == 0:
		return UndoCompleted
	case r.Restored == 0:
		return UndoFullyFailed
	default:
		return UndoPartiallyRestored
	}
}

var errNoWindowID = errors.New("browser returned a window without an id")

// Restorer recreates closed tabs.
type Restorer struct {
	browser Browser
	logger  Logger
}

// NewRestorer creates a restorer.
func NewRestorer(browser Browser, logger Logger) *Restorer {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Restorer{browser: browser, logger: logger}
}

type windowGroup struct {
	windowID  WindowID
	snapshots []TabSnapshot
}

// groupByWindow buckets snapshots by origin window in first-seen order.
// Snapshots without a URL are dropped.
func groupByWindow(snapshots []TabSnapshot) []*windowGroup {
	var groups []*windowGroup
	byID := make(map[WindowID]*windowGroup)
	for _, snap := range snapshots {
		if snap.URL == "" {
			continue
		}
		key := snap.WindowID
		if !snap.HasWindow() {
			key = WindowIDNone
		}
		g, ok := byID[key]
		if !ok {
			g = &windowGroup{windowID: key}
			byID[key] = g
			groups = append(groups, g)
		}
		g.snapshots = append(g.snapshots, snap)
	}

	for _, g := range groups {
		sort.SliceStable(g.snapshots, func(i, j int) bool {
			return sortIndex(g.snapshots[i]) < sortIndex(g.snapshots[j])
		})
	}
	return groups
}

func sortIndex(s TabSnapshot) int {
	if !s.HasIndex() {
		return 0
	}
	return s.Index
}

// Restore recreates snapshots window by window. Groups whose window still
// exists get their tabs back in place; other groups get a new unfocused
// window.
func (r *Restorer) Restore(ctx context.Context, snapshots []TabSnapshot) RestoreResult {
	var result RestoreResult
	for _, g := range groupByWindow(snapshots) {
		var restored int
		var failed []TabSnapshot
		if r.windowExists(ctx, g.windowID) {
			restored, failed = r.restoreInPlace(ctx, g)
		} else {
			restored, failed = r.restoreIntoNewWindow(ctx, g)
		}
		result.Restored += restored
		result.FailedTabs = append(result.FailedTabs, failed...)
	}
	return result
}

func (r *Restorer) windowExists(ctx context.Context, id WindowID) bool {
	if id == WindowIDNone {
		return false
	}
	if _, err := r.browser.GetWindow(ctx, id); err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.logger.Debugf("window %d probe failed, treating as gone: %v", id, err)
		}
		return false
	}
	return true
}

func (r *Restorer) restoreInPlace(ctx context.Context, g *windowGroup) (int, []TabSnapshot) {
	var restored int
	var failed []TabSnapshot
	for _, snap := range g.snapshots {
		opts := CreateTabOptions{WindowID: g.windowID, URL: snap.URL}
		if snap.HasIndex() {
			index := snap.Index
			opts.Index = &index
		}
		if _, err := r.browser.CreateTab(ctx, opts); err != nil {
			r.logger.Warnf("restore %s into window %d failed: %v", snap.URL, g.windowID, err)
			failed = append(failed, snap)
			continue
		}
		restored++
	}
	return restored, failed
}

func (r *Restorer) restoreIntoNewWindow(ctx context.Context, g *windowGroup) (int, []TabSnapshot) {
	urls := make([]string, len(g.snapshots))
	for i, snap := range g.snapshots {
		urls[i] = snap.URL
	}

	_, err := r.createWindow(ctx, urls)
	if err == nil {
		return len(urls), nil
	}
	r.logger.Warnf("bulk window restore of %d tabs failed, falling back: %v", len(urls), err)

	win, err := r.createWindow(ctx, urls[:1])
	if err != nil {
		r.logger.Errorf("fallback window restore failed: %v", err)
		return 0, append([]TabSnapshot(nil), g.snapshots...)
	}

	restored := 1
	var failed []TabSnapshot
	for _, snap := range g.snapshots[1:] {
		_, err := r.browser.CreateTab(ctx, CreateTabOptions{WindowID: win.ID, URL: snap.URL})
		if err != nil {
			r.logger.Warnf("restore %s into new window %d failed: %v", snap.URL, win.ID, err)
			failed = append(failed, snap)
			continue
		}
		restored++
	}
	return restored, failed
}

func (r *Restorer) createWindow(ctx context.Context, urls []string) (Window, error) {
	win, err := r.browser.CreateWindow(ctx, CreateWindowOptions{URLs: urls, Focused: false})
	if err != nil {
		return Window{}, err
	}
	if win.ID == WindowIDNone {
		return Window{}, errNoWindowID
	}
	return win, nil
}
