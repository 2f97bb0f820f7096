package tabs

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultCloseConcurrency bounds how many close requests are in flight.
const DefaultCloseConcurrency = 8

// CloseResult summarizes one batch close.
type CloseResult struct {
	// BatchID identifies the batch in logs and events.
	BatchID string `json:"batch_id"`

	// Closed is the number of tabs the browser confirmed closed.
	Closed int `json:"closed"`

	// Failed is the number of close requests the browser rejected.
	Failed int `json:"failed"`

	// KeptBookmarked counts eligible tabs left open because they are
	// bookmarked. Always zero for deduplication.
	KeptBookmarked int `json:"kept_bookmarked"`

	// Skipped counts ineligible tabs by reason.
	Skipped SkipCounts `json:"skipped"`

	// ClosedTabs holds a snapshot of every tab that was actually closed,
	// in input order.
	ClosedTabs []TabSnapshot `json:"closed_tabs"`
}

// Closer closes batches of tabs with settle-all semantics.
type Closer struct {
	browser     Browser
	classifier  *Classifier
	concurrency int
	logger      Logger
}

// NewCloser creates a closer. A concurrency below one uses
// DefaultCloseConcurrency.
func NewCloser(browser Browser, classifier *Classifier, concurrency int, logger Logger) *Closer {
	if concurrency < 1 {
		concurrency = DefaultCloseConcurrency
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &Closer{
		browser:     browser,
		classifier:  classifier,
		concurrency: concurrency,
		logger:      logger,
	}
}

// CloseTabs closes every eligible tab for which keep returns false. keep may
// be nil. One failed close never affects the others.
func (c *Closer) CloseTabs(ctx context.Context, tabs []Tab, keep func(Tab) bool) CloseResult {
	result := CloseResult{BatchID: uuid.New().String()}

	var targets []Tab
	for _, tab := range tabs {
		if tab.ID == TabIDNone {
			continue
		}
		if reason := skipReasonOf(c.classifier, tab); reason != skipNone {
			result.Skipped.add(reason)
			continue
		}
		if keep != nil && keep(tab) {
			result.KeptBookmarked++
			continue
		}
		targets = append(targets, tab)
	}

	if len(targets) == 0 {
		return result
	}

	// Snapshots are taken up front; the tab is gone once the close lands.
	snapshots := make([]TabSnapshot, len(targets))
	for i, tab := range targets {
		snapshots[i], _ = SnapshotOf(tab)
	}

	closed := make([]bool, len(targets))
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, tab := range targets {
		i, tab := i, tab
		g.Go(func() error {
			if err := c.browser.CloseTab(ctx, tab.ID); err != nil {
				c.logger.Warnf("batch %s: close tab %d (%s) failed: %v", result.BatchID, tab.ID, tab.URL, err)
				return nil
			}
			closed[i] = true
			return nil
		})
	}
	_ = g.Wait()

	for i, ok := range closed {
		if !ok {
			result.Failed++
			continue
		}
		result.Closed++
		result.ClosedTabs = append(result.ClosedTabs, snapshots[i])
	}

	c.logger.Infof("batch %s: closed %d, failed %d, kept %d bookmarked, skipped %d",
		result.BatchID, result.Closed, result.Failed, result.KeptBookmarked, result.Skipped.Total())
	return result
}
